package ircserver

import (
	"sort"

	"gopkg.in/sorcix/irc.v2"
)

func init() {
	Commands["WHO"] = &ircCommand{
		Func: (*IRCServer).cmdWho,
	}
}

func (i *IRCServer) whoReply(s *Session, reply *Replyctx, target string, session *Session, perms *[maxChanMemberStatus]bool) {
	flags := "H"
	if perms != nil && perms[chanop] {
		flags += "@"
	}
	prefix := session.ircPrefix
	i.sendUser(s, reply, &irc.Message{
		Prefix:  i.ServerPrefix,
		Command: irc.RPL_WHOREPLY,
		Params:  []string{s.Nick, target, prefix.User, prefix.Host, i.ServerPrefix.Name, prefix.Name, flags, "0 " + session.Realname},
	})
}

func (i *IRCServer) cmdWho(s *Session, reply *Replyctx, msg *irc.Message) {
	if len(msg.Params) < 1 {
		i.sendUser(s, reply, &irc.Message{
			Prefix:  i.ServerPrefix,
			Command: irc.RPL_ENDOFWHO,
			Params:  []string{s.Nick, "End of /WHO list"},
		})
		return
	}

	target := msg.Params[0]

	lastmsg := &irc.Message{
		Prefix:  i.ServerPrefix,
		Command: irc.RPL_ENDOFWHO,
		Params:  []string{s.Nick, target, "End of /WHO list"},
	}

	if c, ok := i.channels[ChanToLower(target)]; ok {
		nicks := make([]string, 0, len(c.members))
		for id := range c.members {
			nicks = append(nicks, i.sessions[id].Nick)
		}
		sort.Strings(nicks)

		for _, nick := range nicks {
			session := i.nicks[NickToLower(nick)]
			i.whoReply(s, reply, c.name, session, c.members[session.Id])
		}
		i.sendUser(s, reply, lastmsg)
		return
	}

	if session, ok := i.nicks[NickToLower(target)]; ok {
		i.whoReply(s, reply, target, session, nil)
	}
	i.sendUser(s, reply, lastmsg)
}
