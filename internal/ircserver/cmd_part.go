package ircserver

import (
	"strings"

	"gopkg.in/sorcix/irc.v2"
)

func init() {
	Commands["PART"] = &ircCommand{
		Func:      (*IRCServer).cmdPart,
		MinParams: 1,
	}
}

func (i *IRCServer) cmdPart(s *Session, reply *Replyctx, msg *irc.Message) {
	for _, channelname := range strings.Split(msg.Params[0], ",") {
		c, ok := i.channels[ChanToLower(channelname)]
		if !ok {
			i.sendUser(s, reply, &irc.Message{
				Prefix:  i.ServerPrefix,
				Command: irc.ERR_NOSUCHCHANNEL,
				Params:  []string{s.Nick, channelname, "No such channel"},
			})
			continue
		}

		if _, ok := c.members[s.Id]; !ok {
			i.sendUser(s, reply, &irc.Message{
				Prefix:  i.ServerPrefix,
				Command: irc.ERR_NOTONCHANNEL,
				Params:  []string{s.Nick, channelname, "You're not on that channel"},
			})
			continue
		}

		params := []string{channelname}
		if reason := msg.Trailing(); len(msg.Params) > 1 && reason != "" {
			params = append(params, reason)
		}
		i.sendChannel(c, reply, &irc.Message{
			Prefix:  &s.ircPrefix,
			Command: irc.PART,
			Params:  params,
		})

		delete(c.members, s.Id)
		i.maybeDeleteChannelLocked(c)
		delete(s.Channels, ChanToLower(channelname))
	}
}
