package ircserver

import (
	"strconv"

	"gopkg.in/sorcix/irc.v2"
)

func init() {
	Commands["MODE"] = &ircCommand{
		Func:      (*IRCServer).cmdMode,
		MinParams: 1,
	}
}

func (i *IRCServer) cmdMode(s *Session, reply *Replyctx, msg *irc.Message) {
	channelname := msg.Params[0]
	c, ok := i.channels[ChanToLower(channelname)]
	if !ok {
		i.sendUser(s, reply, &irc.Message{
			Prefix:  i.ServerPrefix,
			Command: irc.ERR_NOSUCHCHANNEL,
			Params:  []string{s.Nick, channelname, "No such channel"},
		})
		return
	}

	modes := normalizeModes(msg)

	if len(modes) == 0 {
		i.sendUser(s, reply, &irc.Message{
			Prefix:  i.ServerPrefix,
			Command: irc.RPL_CHANNELMODEIS,
			Params:  append([]string{s.Nick, c.name, c.modeString()}, c.modeParams()...),
		})
		return
	}

	if perms, ok := c.members[s.Id]; !ok || !perms[chanop] {
		i.sendUser(s, reply, &irc.Message{
			Prefix:  i.ServerPrefix,
			Command: irc.ERR_CHANOPRIVSNEEDED,
			Params:  []string{s.Nick, c.name, "You're not channel operator"},
		})
		return
	}

	// Changes that could not be applied produce an error reply and are
	// skipped, the remaining changes still take effect.
	var applied modeCmds
	for _, mode := range modes {
		char := mode.Mode[1]
		newvalue := (mode.Mode[0] == '+')

		if consumesParam(rune(char), newvalue) && mode.Param == "" {
			i.sendUser(s, reply, &irc.Message{
				Prefix:  i.ServerPrefix,
				Command: irc.ERR_NEEDMOREPARAMS,
				Params:  []string{s.Nick, irc.MODE, "Not enough parameters"},
			})
			continue
		}

		switch char {
		case 'i', 't':
			c.modes[char] = newvalue

		case 'k':
			if newvalue {
				c.key = mode.Param
			} else {
				c.key = ""
			}

		case 'l':
			if newvalue {
				limit, err := strconv.Atoi(mode.Param)
				if err != nil || limit <= 0 {
					continue
				}
				c.limit = limit
			} else {
				c.limit = 0
			}

		case 'o':
			session, ok := i.nicks[NickToLower(mode.Param)]
			if !ok {
				i.sendUser(s, reply, &irc.Message{
					Prefix:  i.ServerPrefix,
					Command: irc.ERR_NOSUCHNICK,
					Params:  []string{s.Nick, mode.Param, "No such nick/channel"},
				})
				continue
			}
			perms, ok := c.members[session.Id]
			if !ok {
				i.sendUser(s, reply, &irc.Message{
					Prefix:  i.ServerPrefix,
					Command: irc.ERR_USERNOTINCHANNEL,
					Params:  []string{s.Nick, session.Nick, c.name, "They aren't on that channel"},
				})
				continue
			}
			perms[chanop] = newvalue

		default:
			i.sendUser(s, reply, &irc.Message{
				Prefix:  i.ServerPrefix,
				Command: irc.ERR_UNKNOWNMODE,
				Params:  []string{s.Nick, string(char), "is unknown mode char to me"},
			})
			continue
		}
		applied = append(applied, mode)
	}

	if len(applied) == 0 {
		return
	}
	i.sendChannel(c, reply, &irc.Message{
		Prefix:  &s.ircPrefix,
		Command: irc.MODE,
		Params:  append([]string{c.name}, applied.IRCParams()...),
	})
}
