package ircserver

import (
	"strconv"

	"gopkg.in/sorcix/irc.v2"
)

func init() {
	Commands["TOPIC"] = &ircCommand{
		Func:      (*IRCServer).cmdTopic,
		MinParams: 1,
	}
}

func (i *IRCServer) cmdTopic(s *Session, reply *Replyctx, msg *irc.Message) {
	channelname := msg.Params[0]
	c, ok := i.channels[ChanToLower(channelname)]
	if !ok {
		i.sendUser(s, reply, &irc.Message{
			Prefix:  i.ServerPrefix,
			Command: irc.ERR_NOSUCHCHANNEL,
			Params:  []string{s.Nick, channelname, "No such channel"},
		})
		return
	}

	if _, ok := c.members[s.Id]; !ok {
		i.sendUser(s, reply, &irc.Message{
			Prefix:  i.ServerPrefix,
			Command: irc.ERR_NOTONCHANNEL,
			Params:  []string{s.Nick, channelname, "You're not on that channel"},
		})
		return
	}

	// “TOPIC”, i.e. get the topic.
	if len(msg.Params) == 1 {
		if c.topic == "" {
			i.sendUser(s, reply, &irc.Message{
				Prefix:  i.ServerPrefix,
				Command: irc.RPL_NOTOPIC,
				Params:  []string{s.Nick, channelname, "No topic is set"},
			})
			return
		}

		i.sendUser(s, reply, &irc.Message{
			Prefix:  i.ServerPrefix,
			Command: irc.RPL_TOPIC,
			Params:  []string{s.Nick, channelname, c.topic},
		})
		i.sendUser(s, reply, &irc.Message{
			Prefix: i.ServerPrefix,
			// RPL_TOPICWHOTIME (ircu-specific, not in the RFC)
			Command: "333",
			Params:  []string{s.Nick, channelname, c.topicNick, strconv.FormatInt(c.topicTime.Unix(), 10)},
		})
		return
	}

	if c.modes['t'] && !c.members[s.Id][chanop] {
		i.sendUser(s, reply, &irc.Message{
			Prefix:  i.ServerPrefix,
			Command: irc.ERR_CHANOPRIVSNEEDED,
			Params:  []string{s.Nick, channelname, "You're not channel operator"},
		})
		return
	}

	// “TOPIC #chan :”, i.e. clear the topic. Who set the topic last (and
	// when) is intentionally kept.
	if msg.Trailing() == "" {
		c.topic = ""
		i.sendChannel(c, reply, &irc.Message{
			Prefix:  &s.ircPrefix,
			Command: irc.TOPIC,
			Params:  []string{channelname, ""},
		})
		return
	}

	c.topicNick = s.Nick
	c.topicTime = s.LastActivity
	c.topic = msg.Trailing()

	i.sendChannel(c, reply, &irc.Message{
		Prefix:  &s.ircPrefix,
		Command: irc.TOPIC,
		Params:  []string{channelname, msg.Trailing()},
	})
}
