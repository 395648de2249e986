package ircserver

import (
	"sort"
	"strings"

	"gopkg.in/sorcix/irc.v2"
)

func init() {
	Commands["NAMES"] = &ircCommand{
		Func: (*IRCServer).cmdNames,
	}
}

func (i *IRCServer) namesReply(s *Session, reply *Replyctx, c *channel) {
	nicks := make([]string, 0, len(c.members))
	for id, perms := range c.members {
		var prefix string
		if perms[chanop] {
			prefix = prefix + string('@')
		}
		nicks = append(nicks, prefix+i.sessions[id].Nick)
	}

	sort.Strings(nicks)

	i.sendUser(s, reply, &irc.Message{
		Prefix:  i.ServerPrefix,
		Command: irc.RPL_NAMREPLY,
		Params:  []string{s.Nick, "=", c.name, strings.Join(nicks, " ")},
	})
	i.sendUser(s, reply, &irc.Message{
		Prefix:  i.ServerPrefix,
		Command: irc.RPL_ENDOFNAMES,
		Params:  []string{s.Nick, c.name, "End of /NAMES list."},
	})
}

func (i *IRCServer) cmdNames(s *Session, reply *Replyctx, msg *irc.Message) {
	if len(msg.Params) > 0 {
		for _, channelname := range strings.Split(msg.Params[0], ",") {
			if c, ok := i.channels[ChanToLower(channelname)]; ok {
				i.namesReply(s, reply, c)
			} else {
				i.sendUser(s, reply, &irc.Message{
					Prefix:  i.ServerPrefix,
					Command: irc.RPL_ENDOFNAMES,
					Params:  []string{s.Nick, channelname, "End of /NAMES list."},
				})
			}
		}
		return
	}

	channelnames := make([]string, 0, len(i.channels))
	for channelname := range i.channels {
		channelnames = append(channelnames, string(channelname))
	}
	sort.Strings(channelnames)
	for _, channelname := range channelnames {
		i.namesReply(s, reply, i.channels[lcChan(channelname)])
	}
	i.sendUser(s, reply, &irc.Message{
		Prefix:  i.ServerPrefix,
		Command: irc.RPL_ENDOFNAMES,
		Params:  []string{s.Nick, "*", "End of /NAMES list."},
	})
}
