package ircserver

import (
	"strings"

	"gopkg.in/sorcix/irc.v2"
)

func init() {
	Commands["JOIN"] = &ircCommand{
		Func:      (*IRCServer).cmdJoin,
		MinParams: 1,
	}
}

func (i *IRCServer) cmdJoin(s *Session, reply *Replyctx, msg *irc.Message) {
	// “JOIN 0” parts all channels the user is currently in.
	if msg.Params[0] == "0" {
		channelnames := make([]string, 0, len(s.Channels))
		for channelname := range s.Channels {
			channelnames = append(channelnames, i.channels[channelname].name)
		}
		if len(channelnames) == 0 {
			return
		}
		i.cmdPart(s, reply, &irc.Message{
			Command: irc.PART,
			Params:  []string{strings.Join(channelnames, ",")},
		})
		return
	}

	var keys []string
	if len(msg.Params) > 1 {
		keys = strings.Split(msg.Params[1], ",")
	}
	for idx, channelname := range strings.Split(msg.Params[0], ",") {
		var key string
		if idx <= len(keys)-1 {
			key = keys[idx]
		}
		if !IsValidChannel(channelname) {
			i.sendUser(s, reply, &irc.Message{
				Prefix:  i.ServerPrefix,
				Command: irc.ERR_NOSUCHCHANNEL,
				Params:  []string{s.Nick, channelname, "No such channel"},
			})
			continue
		}
		c, ok := i.channels[ChanToLower(channelname)]
		if !ok {
			if got, limit := uint64(len(i.channels)), i.Config.MaxChannels; got >= limit && limit > 0 {
				i.sendUser(s, reply, &irc.Message{
					Prefix:  i.ServerPrefix,
					Command: irc.ERR_NOSUCHCHANNEL,
					Params:  []string{s.Nick, channelname, "No such channel"},
				})
				continue
			}

			c = &channel{
				name:    channelname,
				members: make(map[uint64]*[maxChanMemberStatus]bool),
				invited: make(map[lcNick]bool),
			}
			i.channels[ChanToLower(channelname)] = c
		} else {
			if _, ok := c.members[s.Id]; ok {
				continue
			}
			if c.modes['i'] && !c.invited[NickToLower(s.Nick)] {
				i.sendUser(s, reply, &irc.Message{
					Prefix:  i.ServerPrefix,
					Command: irc.ERR_INVITEONLYCHAN,
					Params:  []string{s.Nick, c.name, "Cannot join channel (+i)"},
				})
				continue
			}
			if c.key != "" && key != c.key {
				i.sendUser(s, reply, &irc.Message{
					Prefix:  i.ServerPrefix,
					Command: irc.ERR_BADCHANNELKEY,
					Params:  []string{s.Nick, c.name, "Cannot join channel (+k)"},
				})
				continue
			}
			if c.isFull() {
				i.sendUser(s, reply, &irc.Message{
					Prefix:  i.ServerPrefix,
					Command: irc.ERR_CHANNELISFULL,
					Params:  []string{s.Nick, c.name, "Cannot join channel (+l)"},
				})
				continue
			}
		}
		c.members[s.Id] = &[maxChanMemberStatus]bool{}
		// If the channel did not exist before, the first joining user becomes a
		// channel operator.
		if !ok {
			c.members[s.Id][chanop] = true
		}
		// Invites are only valid once.
		delete(c.invited, NickToLower(s.Nick))
		s.Channels[ChanToLower(channelname)] = true

		i.sendChannel(c, reply, &irc.Message{
			Prefix:  &s.ircPrefix,
			Command: irc.JOIN,
			Params:  []string{channelname},
		})
		// Channel joins integrate the output of the TOPIC and NAMES commands:
		if c.topic != "" {
			i.cmdTopic(s, reply, &irc.Message{Command: irc.TOPIC, Params: []string{channelname}})
		}
		i.cmdNames(s, reply, &irc.Message{Command: irc.NAMES, Params: []string{channelname}})
	}
}
