package ircserver

import (
	"testing"

	"gopkg.in/sorcix/irc.v2"
)

func TestMotd(t *testing.T) {
	i, ids := stdIRCServer()

	mustMatchMsg(t,
		i.ProcessMessage(ids["secure"], irc.ParseMessage("MOTD"), testTime),
		":soloircd.net 422 sECuRE :MOTD File is missing")

	i.Config.Motd = []string{"welcome", "have fun"}

	mustMatchIrcmsgs(t,
		i.ProcessMessage(ids["secure"], irc.ParseMessage("MOTD"), testTime),
		[]*irc.Message{
			irc.ParseMessage(":soloircd.net 375 sECuRE :- soloircd.net Message of the day -"),
			irc.ParseMessage(":soloircd.net 372 sECuRE :- welcome"),
			irc.ParseMessage(":soloircd.net 372 sECuRE :- have fun"),
			irc.ParseMessage(":soloircd.net 376 sECuRE :End of MOTD command"),
		})
}

func TestPing(t *testing.T) {
	i, ids := stdIRCServer()

	mustMatchMsg(t,
		i.ProcessMessage(ids["secure"], irc.ParseMessage("PING"), testTime),
		":soloircd.net 409 sECuRE :No origin specified")

	mustMatchMsg(t,
		i.ProcessMessage(ids["secure"], irc.ParseMessage("PING soloircd.net"), testTime),
		":soloircd.net PONG soloircd.net")

	mustMatchIrcmsgs(t,
		i.ProcessMessage(ids["secure"], irc.ParseMessage("PONG soloircd.net"), testTime),
		[]*irc.Message{})
}
