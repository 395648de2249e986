package ircserver

import "gopkg.in/sorcix/irc.v2"

func init() {
	Commands["CAP"] = &ircCommand{
		Func: (*IRCServer).cmdCap,
	}
}

// cmdCap accepts capability negotiation without offering any capabilities,
// so that clients which start with “CAP LS” can still register.
func (i *IRCServer) cmdCap(s *Session, reply *Replyctx, msg *irc.Message) {
}
