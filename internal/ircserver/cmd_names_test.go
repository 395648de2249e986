package ircserver

import (
	"testing"

	"gopkg.in/sorcix/irc.v2"
)

func TestNames(t *testing.T) {
	i, ids := stdIRCServer()

	i.ProcessMessage(ids["secure"], irc.ParseMessage("JOIN #test"), testTime)
	i.ProcessMessage(ids["mero"], irc.ParseMessage("JOIN #test"), testTime)
	i.ProcessMessage(ids["xeen"], irc.ParseMessage("JOIN #test"), testTime)

	mustMatchIrcmsgs(t,
		i.ProcessMessage(ids["mero"], irc.ParseMessage("NAMES #test"), testTime),
		[]*irc.Message{
			irc.ParseMessage(":soloircd.net 353 mero = #test :@sECuRE mero xeen"),
			irc.ParseMessage(":soloircd.net 366 mero #test :End of /NAMES list."),
		})

	mustMatchIrcmsgs(t,
		i.ProcessMessage(ids["mero"], irc.ParseMessage("NAMES #nonexistent"), testTime),
		[]*irc.Message{
			irc.ParseMessage(":soloircd.net 366 mero #nonexistent :End of /NAMES list."),
		})
}

func TestNamesAll(t *testing.T) {
	i, ids := stdIRCServer()

	i.ProcessMessage(ids["secure"], irc.ParseMessage("JOIN #a"), testTime)
	i.ProcessMessage(ids["mero"], irc.ParseMessage("JOIN #b"), testTime)

	mustMatchIrcmsgs(t,
		i.ProcessMessage(ids["xeen"], irc.ParseMessage("NAMES"), testTime),
		[]*irc.Message{
			irc.ParseMessage(":soloircd.net 353 xeen = #a :@sECuRE"),
			irc.ParseMessage(":soloircd.net 366 xeen #a :End of /NAMES list."),
			irc.ParseMessage(":soloircd.net 353 xeen = #b :@mero"),
			irc.ParseMessage(":soloircd.net 366 xeen #b :End of /NAMES list."),
			irc.ParseMessage(":soloircd.net 366 xeen * :End of /NAMES list."),
		})
}
