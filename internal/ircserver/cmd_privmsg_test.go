package ircserver

import (
	"testing"

	"gopkg.in/sorcix/irc.v2"
)

func TestPrivmsg(t *testing.T) {
	i, ids := stdIRCServer()

	mustMatchMsg(t,
		i.ProcessMessage(ids["secure"], irc.ParseMessage("PRIVMSG"), testTime),
		":soloircd.net 411 sECuRE :No recipient given (PRIVMSG)")

	mustMatchMsg(t,
		i.ProcessMessage(ids["secure"], irc.ParseMessage("PRIVMSG mero"), testTime),
		":soloircd.net 412 sECuRE :No text to send")

	mustMatchMsg(t,
		i.ProcessMessage(ids["secure"], irc.ParseMessage("PRIVMSG mero :you there?"), testTime),
		":sECuRE!blah@192.0.2.1 PRIVMSG mero :you there?")

	got := i.ProcessMessage(ids["secure"], irc.ParseMessage("PRIVMSG MeRo :case fold"), testTime)
	if len(got.Messages) != 1 || !got.Messages[0].To[ids["mero"]] {
		t.Fatalf("case-insensitive nick lookup did not deliver to mero: %v", got)
	}

	mustMatchMsg(t,
		i.ProcessMessage(ids["secure"], irc.ParseMessage("PRIVMSG nobody :you there?"), testTime),
		":soloircd.net 401 sECuRE nobody :No such nick/channel")
}

func TestPrivmsgChannel(t *testing.T) {
	i, ids := stdIRCServer()

	i.ProcessMessage(ids["secure"], irc.ParseMessage("JOIN #test"), testTime)
	i.ProcessMessage(ids["mero"], irc.ParseMessage("JOIN #test"), testTime)

	mustMatchMsg(t,
		i.ProcessMessage(ids["xeen"], irc.ParseMessage("PRIVMSG #test :hello"), testTime),
		":soloircd.net 404 xeen #test :Cannot send to channel")

	got := i.ProcessMessage(ids["secure"], irc.ParseMessage("PRIVMSG #test :hello"), testTime)
	mustMatchMsg(t, got, ":sECuRE!blah@192.0.2.1 PRIVMSG #test :hello")
	// The sender must not receive their own channel message.
	if got.Messages[0].To[ids["secure"]] {
		t.Fatalf("channel message delivered back to the sender")
	}
	if !got.Messages[0].To[ids["mero"]] {
		t.Fatalf("channel message not delivered to mero")
	}

	mustMatchMsg(t,
		i.ProcessMessage(ids["secure"], irc.ParseMessage("PRIVMSG #nonexistent :hello"), testTime),
		":soloircd.net 403 sECuRE #nonexistent :No such channel")
}

func TestPrivmsgDeadSession(t *testing.T) {
	i, ids := stdIRCServer()

	i.ProcessMessage(ids["mero"], irc.ParseMessage("QUIT :bye"), testTime)

	// No stray bytes for the dead session, only the error to the sender.
	got := i.ProcessMessage(ids["secure"], irc.ParseMessage("PRIVMSG mero :you there?"), testTime)
	mustMatchMsg(t, got, ":soloircd.net 401 sECuRE mero :No such nick/channel")
	if got.Messages[0].To[ids["mero"]] {
		t.Fatalf("message for a deleted session still routed to it")
	}
}

func TestNotice(t *testing.T) {
	i, ids := stdIRCServer()

	mustMatchMsg(t,
		i.ProcessMessage(ids["secure"], irc.ParseMessage("NOTICE mero :psst"), testTime),
		":sECuRE!blah@192.0.2.1 NOTICE mero :psst")

	mustMatchMsg(t,
		i.ProcessMessage(ids["secure"], irc.ParseMessage("NOTICE"), testTime),
		":soloircd.net 411 sECuRE :No recipient given (NOTICE)")
}
