package ircserver

import (
	"strings"

	"gopkg.in/sorcix/irc.v2"
)

func init() {
	Commands["BOT"] = &ircCommand{
		Func:      (*IRCServer).cmdBot,
		MinParams: 1,
	}
}

// cmdBot judges the political orientation of whatever subject it is given:
// the byte sum of the subject decides. A channel as the first parameter
// makes the verdict public.
func (i *IRCServer) cmdBot(s *Session, reply *Replyctx, msg *irc.Message) {
	params := msg.Params
	var c *channel
	if strings.HasPrefix(params[0], "#") {
		var ok bool
		c, ok = i.channels[ChanToLower(params[0])]
		if !ok {
			i.sendUser(s, reply, &irc.Message{
				Prefix:  i.ServerPrefix,
				Command: irc.ERR_NOSUCHCHANNEL,
				Params:  []string{s.Nick, params[0], "No such channel"},
			})
			return
		}
		if _, ok := c.members[s.Id]; !ok {
			i.sendUser(s, reply, &irc.Message{
				Prefix:  i.ServerPrefix,
				Command: irc.ERR_CANNOTSENDTOCHAN,
				Params:  []string{s.Nick, c.name, "Cannot send to channel"},
			})
			return
		}
		params = params[1:]
		if len(params) == 0 {
			i.sendUser(s, reply, &irc.Message{
				Prefix:  i.ServerPrefix,
				Command: irc.ERR_NEEDMOREPARAMS,
				Params:  []string{s.Nick, "BOT", "Not enough parameters"},
			})
			return
		}
	}

	subject := strings.Join(params, " ")
	var score int
	for _, b := range []byte(subject) {
		score += int(b)
	}
	verdict := "c'est de gauche."
	if score%2 == 1 {
		verdict = "c'est de droite."
	}

	if c != nil {
		i.sendChannel(c, reply, &irc.Message{
			Prefix:  i.ServerPrefix,
			Command: irc.NOTICE,
			Params:  []string{c.name, verdict},
		})
		return
	}
	i.sendUser(s, reply, &irc.Message{
		Prefix:  i.ServerPrefix,
		Command: irc.NOTICE,
		Params:  []string{s.Nick, verdict},
	})
}
