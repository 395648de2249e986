package ircserver

import (
	"testing"

	"gopkg.in/sorcix/irc.v2"
)

func TestKick(t *testing.T) {
	i, ids := stdIRCServer()

	i.ProcessMessage(ids["secure"], irc.ParseMessage("JOIN #test"), testTime)
	i.ProcessMessage(ids["mero"], irc.ParseMessage("JOIN #test"), testTime)

	mustMatchMsg(t,
		i.ProcessMessage(ids["secure"], irc.ParseMessage("KICK #nonexistent mero"), testTime),
		":soloircd.net 403 sECuRE #nonexistent :No such nick/channel")

	mustMatchMsg(t,
		i.ProcessMessage(ids["xeen"], irc.ParseMessage("KICK #test mero"), testTime),
		":soloircd.net 442 xeen #test :You're not on that channel")

	mustMatchMsg(t,
		i.ProcessMessage(ids["mero"], irc.ParseMessage("KICK #test sECuRE"), testTime),
		":soloircd.net 482 mero #test :You're not channel operator")

	mustMatchMsg(t,
		i.ProcessMessage(ids["secure"], irc.ParseMessage("KICK #test xeen"), testTime),
		":soloircd.net 441 sECuRE xeen #test :They aren't on that channel")

	mustMatchMsg(t,
		i.ProcessMessage(ids["secure"], irc.ParseMessage("KICK #test mero :bye bye"), testTime),
		":sECuRE!blah@192.0.2.1 KICK #test mero :bye bye")

	sMero, _ := i.GetSession(ids["mero"])
	if sMero.Channels[ChanToLower("#test")] {
		t.Fatalf("mero still in #test after being kicked")
	}
	c := i.channels[ChanToLower("#test")]
	if _, ok := c.members[ids["mero"]]; ok {
		t.Fatalf("mero still a member of #test after being kicked")
	}
}

func TestKickDefaultComment(t *testing.T) {
	i, ids := stdIRCServer()

	i.ProcessMessage(ids["secure"], irc.ParseMessage("JOIN #test"), testTime)
	i.ProcessMessage(ids["mero"], irc.ParseMessage("JOIN #test"), testTime)

	mustMatchMsg(t,
		i.ProcessMessage(ids["secure"], irc.ParseMessage("KICK #test mero"), testTime),
		":sECuRE!blah@192.0.2.1 KICK #test mero :sECuRE")
}

func TestKickLastMember(t *testing.T) {
	i, ids := stdIRCServer()

	i.ProcessMessage(ids["secure"], irc.ParseMessage("JOIN #test"), testTime)
	i.ProcessMessage(ids["mero"], irc.ParseMessage("JOIN #test"), testTime)
	i.ProcessMessage(ids["secure"], irc.ParseMessage("PART #test"), testTime)

	// Operator status is not reassigned when the last chanop leaves.
	mustMatchMsg(t,
		i.ProcessMessage(ids["mero"], irc.ParseMessage("KICK #test mero"), testTime),
		":soloircd.net 482 mero #test :You're not channel operator")

	i.ProcessMessage(ids["mero"], irc.ParseMessage("PART #test"), testTime)
	if _, ok := i.channels[ChanToLower("#test")]; ok {
		t.Fatalf("channel #test still exists after all members left")
	}
}
