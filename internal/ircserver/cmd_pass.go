package ircserver

import "gopkg.in/sorcix/irc.v2"

func init() {
	Commands["PASS"] = &ircCommand{
		Func:      (*IRCServer).cmdPass,
		MinParams: 1,
	}
}

func (i *IRCServer) cmdPass(s *Session, reply *Replyctx, msg *irc.Message) {
	if s.loggedIn {
		i.sendUser(s, reply, &irc.Message{
			Prefix:  i.ServerPrefix,
			Command: irc.ERR_ALREADYREGISTRED,
			Params:  []string{s.Nick, "You may not reregister"},
		})
		return
	}

	if msg.Params[0] != i.Password {
		i.sendUser(s, reply, &irc.Message{
			Prefix:  i.ServerPrefix,
			Command: irc.ERR_PASSWDMISMATCH,
			Params:  []string{"*", "Password incorrect"},
		})
		return
	}

	s.passwordOK = true
	i.maybeLogin(s, reply, msg)
}
