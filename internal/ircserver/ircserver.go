// Package ircserver implements an IRC server which strictly adheres to a
// processing model where output is only ever generated in response to input,
// and only depends on state that is local to the IRC server.
//
// All state mutation happens in ProcessMessage (and the session lifecycle
// functions), which the connection multiplexer calls from a single
// goroutine. The lock exists for the status page and metrics readers.
package ircserver

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/soloircd/soloircd/internal/config"
	"gopkg.in/sorcix/irc.v2"
)

const (
	maxNickLen    = "30"
	maxChannelLen = "32"

	// Message format according to RFC2812, section 2.3.1
	// A-Z / a-z
	letter = `\x41-\x5A\x61-\x7A`
	// 0-9
	digit = `\x30-\x39`
	// "[", "]", "\", "`", "_", "^", "{", "|", "}"
	special = `\x5B-\x60\x7B-\x7D`

	// any octet except NUL, BELL, CR, LF, " ", "," and ":"
	chanstring = `\x01-\x06\x08-\x09\x0B-\x0C\x0E-\x1F\x21-\x2B\x2D-\x39\x3B-\xFF`
)

var (
	validNickRe    = regexp.MustCompile(`^[` + letter + special + `][` + letter + digit + special + `-]{0,` + maxNickLen + `}$`)
	validChannelRe = regexp.MustCompile(`^#[` + chanstring + `]{0,` + maxChannelLen + `}$`)

	// ErrNoSuchSession is returned when the session does not exist.
	ErrNoSuchSession = errors.New("No such session")

	// ErrSessionLimitReached is returned when the number of sessions exceeds the configured limit.
	ErrSessionLimitReached = errors.New("MaxSessions limit reached")
)

var messagesProcessed = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: "irc",
		Name:      "messages_processed",
		Help:      "Number of messages processed by message command",
	},
	[]string{"command"},
)

func init() {
	prometheus.MustRegister(messagesProcessed)
}

// lcChan is a lower-case channel name, e.g. “#chaos-hd”, even when the user
// sent “JOIN #Chaos-HD”. It is used to enforce using ChanToLower() on keys of
// various maps.
type lcChan string

// lcNick is a lower-case nickname, e.g. “secure”, even when the user sent
// “NICK sECuRE”. It is used to enforce using NickToLower() on keys of various
// maps.
type lcNick string

type Session struct {
	Id           uint64
	Nick         string
	Username     string
	Realname     string
	Host         string
	Channels     map[lcChan]bool
	LastActivity time.Time
	Created      int64

	// passwordOK is true once the session supplied the connection password
	// (or immediately, when the server runs without one).
	passwordOK bool

	loggedIn bool

	ircPrefix irc.Prefix
}

// updateIrcPrefix MUST be called whenever the Nick field changes.
func (s *Session) updateIrcPrefix() {
	s.ircPrefix = irc.Prefix{
		Name: s.Nick,
		User: s.Username,
		Host: s.Host,
	}
}

const (
	chanop = iota
	maxChanMemberStatus
)

type channel struct {
	// name is the (case-sensitive!) original name this channel had when it was
	// first created.
	name string

	topicNick string
	topicTime time.Time
	topic     string

	// members is keyed by session id, so that nickname changes do not
	// require any channel bookkeeping.
	members map[uint64]*[maxChanMemberStatus]bool

	// invited holds the nicknames that were invited into the channel.
	// Invitations are only valid once.
	invited map[lcNick]bool

	// We waste 65 bytes per channel for clearer code (being able to directly
	// access modes by using their letter as an index).
	modes ['z']bool

	// key is the channel key (mode +k), empty when unset.
	key string

	// limit is the maximum number of members (mode +l), 0 when unset.
	limit int
}

func (c *channel) isFull() bool {
	return c.limit > 0 && len(c.members) >= c.limit
}

// modeString returns the channel modes in the fixed order i, t, k, l,
// without mode parameters.
func (c *channel) modeString() string {
	modestr := "+"
	if c.modes['i'] {
		modestr += "i"
	}
	if c.modes['t'] {
		modestr += "t"
	}
	if c.key != "" {
		modestr += "k"
	}
	if c.limit > 0 {
		modestr += "l"
	}
	return modestr
}

// modeParams returns the parameters corresponding to modeString.
func (c *channel) modeParams() []string {
	var params []string
	if c.key != "" {
		params = append(params, c.key)
	}
	if c.limit > 0 {
		params = append(params, fmt.Sprintf("%d", c.limit))
	}
	return params
}

type IRCServer struct {
	// mu guards sessions, nicks and channels. ProcessMessage and the
	// session lifecycle functions take it for writing, the status page and
	// metrics readers for reading.
	mu sync.RWMutex

	// sessions contains all sessions, keyed by the connection handle the
	// multiplexer assigned.
	sessions map[uint64]*Session

	// nicks maps from nicknames in lower-case (e.g. NickToLower("sECuRE")) to
	// session pointers. Being able to quickly look up sessions based on their
	// nickname is handy to implement IRC commands efficiently.
	nicks map[lcNick]*Session

	// channels is a map containing the properties of every known channel (e.g.
	// topic or modes), keyed by the lower-case channel name (e.g.
	// ChanToLower(“#soloircd”)).
	channels map[lcChan]*channel

	// ServerPrefix is the prefix for output messages that come from the
	// server, as opposed to from a client.
	ServerPrefix *irc.Prefix

	// ServerCreation is the time at which the IRCServer object was created.
	// Used for the RPL_CREATED message.
	ServerCreation time.Time

	// Password is the connection password every session must supply via
	// PASS before registering. Empty means no password is required.
	Password string

	// Config contains the network configuration.
	Config config.Network
}

// NewIRCServer returns a new IRC server.
func NewIRCServer(networkname, password string, serverCreation time.Time) *IRCServer {
	return &IRCServer{
		channels:       make(map[lcChan]*channel),
		nicks:          make(map[lcNick]*Session),
		sessions:       make(map[uint64]*Session),
		ServerPrefix:   &irc.Prefix{Name: networkname},
		ServerCreation: serverCreation,
		Password:       password,
		Config:         config.DefaultConfig,
	}
}

// CreateSession creates a new session (equivalent to an IRC connection).
func (i *IRCServer) CreateSession(id uint64, host string, timestamp time.Time) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if got, limit := uint64(len(i.sessions)), i.Config.MaxSessions; got >= limit && limit > 0 {
		return ErrSessionLimitReached
	}
	i.sessions[id] = &Session{
		Id:           id,
		Host:         host,
		Channels:     make(map[lcChan]bool),
		Created:      timestamp.UnixNano(),
		LastActivity: timestamp,
		passwordOK:   i.Password == "",
	}
	return nil
}

// GetSession returns a pointer to the session specified by |id|.
func (i *IRCServer) GetSession(id uint64) (*Session, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	s, ok := i.sessions[id]
	if !ok {
		return nil, ErrNoSuchSession
	}
	return s, nil
}

// deleteSessionLocked removes |s| from every channel it is in (deleting
// channels that become empty) and from the nickname and session tables.
// s.Channels is left intact so that QUIT replies can still be routed to the
// members of the channels the session was in.
func (i *IRCServer) deleteSessionLocked(s *Session) {
	for _, c := range i.channels {
		delete(c.members, s.Id)
		i.maybeDeleteChannelLocked(c)
	}
	delete(i.nicks, NickToLower(s.Nick))
	delete(i.sessions, s.Id)
}

// ExpireSessions returns the ids of all sessions without any activity for
// longer than the configured SessionExpiration. The multiplexer turns each
// of them into a QUIT.
func (i *IRCServer) ExpireSessions(now time.Time) []uint64 {
	i.mu.RLock()
	defer i.mu.RUnlock()

	timeout := i.Config.SessionExpiration
	if timeout <= 0 {
		return nil
	}

	var expired []uint64
	for id, s := range i.sessions {
		if now.Sub(s.LastActivity) <= timeout {
			continue
		}
		expired = append(expired, id)
	}
	return expired
}

// IsValidNickname returns true if the provided nickname is valid according to
// RFC2812 (see https://tools.ietf.org/html/rfc2812#section-2.3.1), otherwise
// false.
func IsValidNickname(nick string) bool {
	return validNickRe.MatchString(nick)
}

func IsValidChannel(channel string) bool {
	return validChannelRe.MatchString(channel)
}

// NickToLower converts a nickname to lower case, following RFC2812:
//
// Because of IRC's scandanavian origin, the characters {}| are
// considered to be the lower case equivalents of the characters []\,
// respectively. This is a critical issue when determining the
// equivalence of two nicknames.
func NickToLower(nick string) lcNick {
	r := strings.NewReplacer("[", "{", "]", "}", "\\", "|")
	return lcNick(r.Replace(strings.ToLower(nick)))
}

// ChanToLower converts a channel to lower case.
func ChanToLower(channelname string) lcChan {
	return lcChan(strings.ToLower(channelname))
}

func (i *IRCServer) maybeDeleteChannelLocked(c *channel) {
	if len(c.members) > 0 {
		return
	}
	delete(i.channels, ChanToLower(c.name))
}

// Commands is the dispatch table, populated by the init functions in the
// cmd_*.go files.
var Commands = make(map[string]*ircCommand)

type ircCommand struct {
	Func func(*IRCServer, *Session, *Replyctx, *irc.Message)

	// MinParams ensures that enough parameters were specified.
	// irc.ERR_NEEDMOREPARAMS is returned in case less than MinParams
	// parameters were found, otherwise, Func is called.
	MinParams int
}

// ProcessMessage modifies state in response to 'ircmsg' and returns zero or
// more IRC messages in response, each annotated with the set of sessions it
// must be delivered to.
func (i *IRCServer) ProcessMessage(id uint64, ircmsg *irc.Message, timestamp time.Time) *Replyctx {
	i.mu.Lock()
	defer i.mu.Unlock()

	// alias for convenience
	s := i.sessions[id]
	reply := &Replyctx{session: s}
	if s == nil {
		return reply
	}
	s.LastActivity = timestamp

	if ircmsg == nil || ircmsg.Command == "" {
		return reply
	}

	command := strings.ToUpper(ircmsg.Command)

	messagesProcessed.WithLabelValues(command).Inc()

	if !s.loggedIn &&
		command != irc.NICK &&
		command != irc.USER &&
		command != irc.PASS &&
		command != irc.QUIT &&
		command != "CAP" {
		i.sendUser(s, reply, &irc.Message{
			Prefix:  i.ServerPrefix,
			Command: irc.ERR_NOTREGISTERED,
			Params:  []string{command, "You have not registered"},
		})
		return reply
	}

	cmd, ok := Commands[command]
	if !ok {
		i.sendUser(s, reply, &irc.Message{
			Prefix:  i.ServerPrefix,
			Command: irc.ERR_UNKNOWNCOMMAND,
			Params:  []string{s.Nick, command, "Unknown command"},
		})
		return reply
	}

	if len(ircmsg.Params) < cmd.MinParams {
		i.sendUser(s, reply, &irc.Message{
			Prefix:  i.ServerPrefix,
			Command: irc.ERR_NEEDMOREPARAMS,
			Params:  []string{s.Nick, command, "Not enough parameters"},
		})
		return reply
	}

	cmd.Func(i, s, reply, ircmsg)
	return reply
}

// maybeLogin marks the session as logged in once the connection password,
// nickname and username have all been supplied, and sends the welcome
// messages.
func (i *IRCServer) maybeLogin(s *Session, reply *Replyctx, msg *irc.Message) {
	if s.loggedIn || !s.passwordOK || s.Nick == "" || s.Username == "" {
		return
	}
	s.loggedIn = true

	i.sendUser(s, reply, &irc.Message{
		Prefix:  i.ServerPrefix,
		Command: irc.RPL_WELCOME,
		Params:  []string{s.Nick, "Welcome to the " + i.ServerPrefix.Name + " Internet Relay Chat Network " + s.ircPrefix.String()},
	})
	i.sendUser(s, reply, &irc.Message{
		Prefix:  i.ServerPrefix,
		Command: irc.RPL_YOURHOST,
		Params:  []string{s.Nick, "Your host is " + i.ServerPrefix.Name},
	})
	i.sendUser(s, reply, &irc.Message{
		Prefix:  i.ServerPrefix,
		Command: irc.RPL_CREATED,
		Params:  []string{s.Nick, "This server was created " + i.ServerCreation.UTC().Format(time.UnixDate)},
	})
	i.sendUser(s, reply, &irc.Message{
		Prefix:  i.ServerPrefix,
		Command: irc.RPL_MYINFO,
		Params:  []string{s.Nick, i.ServerPrefix.Name + " v1 o itkl"},
	})
	// send ISUPPORT as per
	// https://tools.ietf.org/html/draft-brocklesby-irc-isupport-03
	i.sendUser(s, reply, &irc.Message{
		Prefix:  i.ServerPrefix,
		Command: "005",
		Params: []string{
			s.Nick,
			"CHANTYPES=#",
			"CHANNELLEN=" + maxChannelLen,
			"NICKLEN=" + maxNickLen,
			"MODES=1",
			"PREFIX=(o)@",
			"are supported by this server",
		},
	})
	i.cmdMotd(s, reply, msg)
}

// GetSessions returns a copy of sessions that can be used in the status
// handler (i.e. it goes stale, but doesn’t block other operations).
func (i *IRCServer) GetSessions() map[uint64]Session {
	i.mu.RLock()
	defer i.mu.RUnlock()
	result := make(map[uint64]Session, len(i.sessions))
	for id, session := range i.sessions {
		result[id] = *session
	}
	return result
}

// NumSessions returns the current number of sessions.
func (i *IRCServer) NumSessions() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.sessions)
}

// NumChannels returns the current number of channels.
func (i *IRCServer) NumChannels() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.channels)
}

// Reply is a single IRC message to be delivered to the sessions in To.
type Reply struct {
	Data string
	To   map[uint64]bool
}

// Replyctx is a reply context, i.e. information necessary when replying to an
// IRC message. A reply context object will be passed to all cmd* functions and
// the send* functions use it to keep track of the recipients for example.
type Replyctx struct {
	session  *Session
	Messages []*Reply

	// Closed lists the ids of sessions that were deleted while processing
	// the message (QUIT). The multiplexer closes their connections after
	// delivering the replies.
	Closed []uint64

	// lastmsg tracks the last sent message, so that send() can return the same
	// message multiple times when being called in a continuation.
	lastmsg *irc.Message
}

// send converts |msg| into a Reply and appends it to |reply|.
func (i *IRCServer) send(reply *Replyctx, msg *irc.Message) *Reply {
	if reply.lastmsg == msg {
		return reply.Messages[len(reply.Messages)-1]
	}

	r := &Reply{
		Data: string(msg.Bytes()),
		To:   make(map[uint64]bool),
	}
	reply.Messages = append(reply.Messages, r)
	reply.lastmsg = msg

	return r
}

// sendUser sends |msg| to |user|.
func (i *IRCServer) sendUser(user *Session, reply *Replyctx, msg *irc.Message) *irc.Message {
	r := i.send(reply, msg)
	r.To[user.Id] = true
	return msg
}

// sendCommonChannels sends |msg| to all users which are in one of the channels
// on which |user| is in.
func (i *IRCServer) sendCommonChannels(user *Session, reply *Replyctx, msg *irc.Message) *irc.Message {
	r := i.send(reply, msg)
	for channelname := range user.Channels {
		c, ok := i.channels[channelname]
		if !ok {
			continue
		}
		for id := range c.members {
			r.To[id] = true
		}
	}
	return msg
}

// sendChannel sends |msg| to all users who are in |c|.
func (i *IRCServer) sendChannel(c *channel, reply *Replyctx, msg *irc.Message) *irc.Message {
	r := i.send(reply, msg)
	for id := range c.members {
		r.To[id] = true
	}
	return msg
}

// sendChannelButOne sends |msg| to all users who are in |c|, except for |user|.
func (i *IRCServer) sendChannelButOne(c *channel, user *Session, reply *Replyctx, msg *irc.Message) *irc.Message {
	r := i.send(reply, msg)
	for id := range c.members {
		if id == user.Id {
			continue
		}
		r.To[id] = true
	}
	return msg
}
