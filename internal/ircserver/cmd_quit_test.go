package ircserver

import (
	"testing"

	"gopkg.in/sorcix/irc.v2"
)

func TestQuit(t *testing.T) {
	i, ids := stdIRCServer()

	i.ProcessMessage(ids["secure"], irc.ParseMessage("JOIN #test"), testTime)
	i.ProcessMessage(ids["mero"], irc.ParseMessage("JOIN #test"), testTime)

	got := i.ProcessMessage(ids["mero"], irc.ParseMessage("QUIT :bye"), testTime)
	mustMatchIrcmsgs(t, got,
		[]*irc.Message{
			irc.ParseMessage(":mero!foo@192.0.2.2 QUIT :bye"),
			irc.ParseMessage("ERROR :Closing Link: mero[192.0.2.2] (bye)"),
		})

	// The QUIT must go to the channel members, not back to the quitter.
	if got.Messages[0].To[ids["mero"]] {
		t.Fatalf("QUIT delivered back to the quitter")
	}
	if !got.Messages[0].To[ids["secure"]] {
		t.Fatalf("QUIT not delivered to secure")
	}
	if !got.Messages[1].To[ids["mero"]] {
		t.Fatalf("ERROR not delivered to the quitter")
	}

	if len(got.Closed) != 1 || got.Closed[0] != ids["mero"] {
		t.Fatalf("reply.Closed: got %v, want [%d]", got.Closed, ids["mero"])
	}

	// Membership was removed before the tables were cleaned up.
	c := i.channels[ChanToLower("#test")]
	if _, ok := c.members[ids["mero"]]; ok {
		t.Fatalf("mero still a member of #test after QUIT")
	}
	if _, err := i.GetSession(ids["mero"]); err != ErrNoSuchSession {
		t.Fatalf("GetSession(mero): got %v, want ErrNoSuchSession", err)
	}

	// The nickname becomes available again.
	var id uint64 = 4
	i.CreateSession(id, "192.0.2.4", testTime)
	mustMatchIrcmsgs(t,
		i.ProcessMessage(id, irc.ParseMessage("NICK mero"), testTime),
		[]*irc.Message{})
}

func TestQuitLastMember(t *testing.T) {
	i, ids := stdIRCServer()

	i.ProcessMessage(ids["secure"], irc.ParseMessage("JOIN #test"), testTime)
	i.ProcessMessage(ids["secure"], irc.ParseMessage("QUIT"), testTime)

	if _, ok := i.channels[ChanToLower("#test")]; ok {
		t.Fatalf("channel #test still exists after its only member quit")
	}
}

func TestQuitUnregistered(t *testing.T) {
	i, _ := stdIRCServer()

	var id uint64 = 4
	i.CreateSession(id, "192.0.2.4", testTime)

	got := i.ProcessMessage(id, irc.ParseMessage("QUIT"), testTime)
	if len(got.Messages) != 0 {
		t.Fatalf("QUIT before registration: got %v, want no messages", got)
	}
	if len(got.Closed) != 1 || got.Closed[0] != id {
		t.Fatalf("reply.Closed: got %v, want [%d]", got.Closed, id)
	}
}
