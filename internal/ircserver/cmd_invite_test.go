package ircserver

import (
	"testing"

	"gopkg.in/sorcix/irc.v2"
)

func TestInvite(t *testing.T) {
	i, ids := stdIRCServer()

	mustMatchMsg(t,
		i.ProcessMessage(ids["secure"], irc.ParseMessage("INVITE mero #test"), testTime),
		":soloircd.net 442 sECuRE #test :You're not on that channel")

	i.ProcessMessage(ids["secure"], irc.ParseMessage("JOIN #test"), testTime)

	mustMatchMsg(t,
		i.ProcessMessage(ids["xeen"], irc.ParseMessage("INVITE mero #test"), testTime),
		":soloircd.net 442 xeen #test :You're not on that channel")

	mustMatchMsg(t,
		i.ProcessMessage(ids["secure"], irc.ParseMessage("INVITE nobody #test"), testTime),
		":soloircd.net 401 sECuRE nobody :No such nick/channel")

	got := i.ProcessMessage(ids["secure"], irc.ParseMessage("INVITE mero #test"), testTime)
	mustMatchIrcmsgs(t, got,
		[]*irc.Message{
			irc.ParseMessage(":soloircd.net 341 sECuRE mero #test"),
			irc.ParseMessage(":sECuRE!blah@192.0.2.1 INVITE mero #test"),
		})
	if !got.Messages[1].To[ids["mero"]] {
		t.Fatalf("INVITE not delivered to the invited user")
	}

	c := i.channels[ChanToLower("#test")]
	if !c.invited[NickToLower("mero")] {
		t.Fatalf("mero not recorded in the invite set")
	}

	i.ProcessMessage(ids["mero"], irc.ParseMessage("JOIN #test"), testTime)
	mustMatchMsg(t,
		i.ProcessMessage(ids["secure"], irc.ParseMessage("INVITE mero #test"), testTime),
		":soloircd.net 443 sECuRE mero #test :is already on channel")
}

func TestInviteOnlyRequiresChanop(t *testing.T) {
	i, ids := stdIRCServer()

	i.ProcessMessage(ids["secure"], irc.ParseMessage("JOIN #test"), testTime)
	i.ProcessMessage(ids["mero"], irc.ParseMessage("JOIN #test"), testTime)
	i.ProcessMessage(ids["secure"], irc.ParseMessage("MODE #test +i"), testTime)

	mustMatchMsg(t,
		i.ProcessMessage(ids["mero"], irc.ParseMessage("INVITE xeen #test"), testTime),
		":soloircd.net 482 mero #test :You're not channel operator")

	mustMatchIrcmsgs(t,
		i.ProcessMessage(ids["secure"], irc.ParseMessage("INVITE xeen #test"), testTime),
		[]*irc.Message{
			irc.ParseMessage(":soloircd.net 341 sECuRE xeen #test"),
			irc.ParseMessage(":sECuRE!blah@192.0.2.1 INVITE xeen #test"),
		})
}
