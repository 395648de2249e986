package ircserver

import "gopkg.in/sorcix/irc.v2"

func init() {
	Commands["USER"] = &ircCommand{
		Func:      (*IRCServer).cmdUser,
		MinParams: 4,
	}
}

func (i *IRCServer) cmdUser(s *Session, reply *Replyctx, msg *irc.Message) {
	if s.loggedIn {
		i.sendUser(s, reply, &irc.Message{
			Prefix:  i.ServerPrefix,
			Command: irc.ERR_ALREADYREGISTRED,
			Params:  []string{s.Nick, "You may not reregister"},
		})
		return
	}

	// We keep the username and realname (some people actually set it and
	// look at it).
	s.Username = msg.Params[0]
	s.Realname = msg.Trailing()
	s.updateIrcPrefix()
	i.maybeLogin(s, reply, msg)
}
