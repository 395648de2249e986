package ircserver

import (
	"sort"
	"strconv"
	"strings"

	"gopkg.in/sorcix/irc.v2"
)

func init() {
	Commands["LIST"] = &ircCommand{
		Func: (*IRCServer).cmdList,
	}
}

func (i *IRCServer) cmdList(s *Session, reply *Replyctx, msg *irc.Message) {
	i.sendUser(s, reply, &irc.Message{
		Prefix:  i.ServerPrefix,
		Command: irc.RPL_LISTSTART,
		Params:  []string{s.Nick, "Channel", "Users  Name"},
	})

	channels := make([]string, 0, len(i.channels))
	var filter []string
	if len(msg.Params) > 0 {
		if stripped := strings.TrimSpace(msg.Params[0]); stripped != "" {
			filter = strings.Split(stripped, ",")
		}
	}
	if len(filter) > 0 {
		for _, channelname := range filter {
			lc := ChanToLower(strings.TrimSpace(channelname))
			if _, ok := i.channels[lc]; ok {
				channels = append(channels, string(lc))
			}
		}
	} else {
		for channelname := range i.channels {
			channels = append(channels, string(channelname))
		}
		sort.Strings(channels)
	}
	for _, channelname := range channels {
		c := i.channels[lcChan(channelname)]
		i.sendUser(s, reply, &irc.Message{
			Prefix:  i.ServerPrefix,
			Command: irc.RPL_LIST,
			Params:  []string{s.Nick, c.name, strconv.Itoa(len(c.members)), c.topic},
		})
	}

	i.sendUser(s, reply, &irc.Message{
		Prefix:  i.ServerPrefix,
		Command: irc.RPL_LISTEND,
		Params:  []string{s.Nick, "End of LIST"},
	})
}
