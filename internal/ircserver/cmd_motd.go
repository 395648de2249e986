package ircserver

import "gopkg.in/sorcix/irc.v2"

func init() {
	Commands["MOTD"] = &ircCommand{
		Func: (*IRCServer).cmdMotd,
	}
}

func (i *IRCServer) cmdMotd(s *Session, reply *Replyctx, msg *irc.Message) {
	if len(i.Config.Motd) == 0 {
		i.sendUser(s, reply, &irc.Message{
			Prefix:  i.ServerPrefix,
			Command: irc.ERR_NOMOTD,
			Params:  []string{s.Nick, "MOTD File is missing"},
		})
		return
	}
	i.sendUser(s, reply, &irc.Message{
		Prefix:  i.ServerPrefix,
		Command: irc.RPL_MOTDSTART,
		Params:  []string{s.Nick, "- " + i.ServerPrefix.Name + " Message of the day -"},
	})
	for _, line := range i.Config.Motd {
		i.sendUser(s, reply, &irc.Message{
			Prefix:  i.ServerPrefix,
			Command: irc.RPL_MOTD,
			Params:  []string{s.Nick, "- " + line},
		})
	}
	i.sendUser(s, reply, &irc.Message{
		Prefix:  i.ServerPrefix,
		Command: irc.RPL_ENDOFMOTD,
		Params:  []string{s.Nick, "End of MOTD command"},
	})
}
