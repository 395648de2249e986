// Package mux accepts TCP connections, frames the byte stream into IRC
// messages and delivers replies. All connection and protocol state is owned
// by a single loop goroutine: the per-connection reader goroutines only ever
// post events into the loop's channel.
package mux

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/soloircd/soloircd/internal/ircserver"
	"github.com/stapelberg/glog"
	"gopkg.in/sorcix/irc.v2"
)

const (
	// readChunkSize bounds how many bytes a single read event carries.
	readChunkSize = 1024

	// writeChunkSize bounds how many bytes a single flush hands to the
	// kernel, so that one slow client cannot stall the loop.
	writeChunkSize = 4096

	// writeTimeout is the deadline for a single flush. A deadline error is
	// treated as the socket not being writable, the data stays buffered.
	writeTimeout = 10 * time.Millisecond
)

var (
	connectionsAccepted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Subsystem: "mux",
			Name:      "connections_accepted",
			Help:      "Number of TCP connections accepted",
		},
	)

	bytesWritten = prometheus.NewCounter(
		prometheus.CounterOpts{
			Subsystem: "mux",
			Name:      "bytes_written",
			Help:      "Number of bytes written to clients",
		},
	)
)

func init() {
	prometheus.MustRegister(connectionsAccepted)
	prometheus.MustRegister(bytesWritten)
}

// event is what the reader and accept goroutines post into the loop.
type event struct {
	// accepted is set for freshly accepted connections.
	accepted net.Conn

	id     uint64
	data   []byte
	hangup bool
}

// conn is the per-connection state owned by the loop goroutine.
type conn struct {
	id   uint64
	sock net.Conn
	host string

	// inbound accumulates bytes until at least one complete CRLF
	// terminated line is available.
	inbound []byte

	// outbound buffers bytes the socket did not accept yet.
	outbound []byte

	closing    bool
	quitReason string
}

type Mux struct {
	srv      *ircserver.IRCServer
	listener net.Listener
	events   chan event
	conns    map[uint64]*conn
	nextId   uint64
}

func New(srv *ircserver.IRCServer, listener net.Listener) *Mux {
	return &Mux{
		srv:      srv,
		listener: listener,
		events:   make(chan event),
		conns:    make(map[uint64]*conn),
	}
}

// Serve runs the accept and loop goroutines until ctx is cancelled.
func (m *Mux) Serve(ctx context.Context) error {
	go m.accept(ctx)

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.shutdown()
			return nil

		case ev := <-m.events:
			switch {
			case ev.accepted != nil:
				m.register(ev.accepted)
			case ev.hangup:
				m.hangup(ev.id, "Connection closed")
			default:
				m.data(ev.id, ev.data)
			}

		case <-ticker.C:
			m.housekeeping()
		}

		// Tear down connections at the end of the iteration, never in the
		// middle of processing a message.
		m.sweep()
	}
}

func (m *Mux) accept(ctx context.Context) {
	for {
		sock, err := m.listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			glog.Errorf("Accept: %v", err)
			continue
		}
		select {
		case m.events <- event{accepted: sock}:
		case <-ctx.Done():
			sock.Close()
			return
		}
	}
}

func (m *Mux) register(sock net.Conn) {
	connectionsAccepted.Inc()

	host, _, err := net.SplitHostPort(sock.RemoteAddr().String())
	if err != nil {
		host = sock.RemoteAddr().String()
	}

	m.nextId++
	id := m.nextId
	if err := m.srv.CreateSession(id, host, time.Now()); err != nil {
		glog.Errorf("CreateSession(%d): %v", id, err)
		sock.Write([]byte("ERROR :Too many connections\r\n"))
		sock.Close()
		return
	}

	c := &conn{id: id, sock: sock, host: host}
	m.conns[id] = c
	glog.Infof("Accepted connection %d from %s", id, sock.RemoteAddr())

	go m.read(c)
}

// read posts bounded chunks of the connection's byte stream into the events
// channel, followed by a hangup event. It never touches any state.
func (m *Mux) read(c *conn) {
	buf := make([]byte, readChunkSize)
	for {
		n, err := c.sock.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			m.events <- event{id: c.id, data: data}
		}
		if err != nil {
			m.events <- event{id: c.id, hangup: true}
			return
		}
	}
}

func (m *Mux) data(id uint64, chunk []byte) {
	c, ok := m.conns[id]
	if !ok || c.closing {
		return
	}
	c.inbound = append(c.inbound, chunk...)
	for {
		line, rest, ok := nextLine(c.inbound)
		if !ok {
			break
		}
		c.inbound = rest
		if len(line) == 0 {
			continue
		}
		reply := m.srv.ProcessMessage(id, irc.ParseMessage(string(line)), time.Now())
		m.deliver(reply)
		if c.closing {
			break
		}
	}
}

// nextLine extracts the first CRLF terminated line from buf.
func nextLine(buf []byte) (line []byte, rest []byte, ok bool) {
	idx := bytes.Index(buf, []byte("\r\n"))
	if idx == -1 {
		return nil, buf, false
	}
	return buf[:idx], buf[idx+2:], true
}

// deliver appends each reply to the outbound buffer of every recipient and
// attempts a flush, then marks the connections of deleted sessions for
// teardown.
func (m *Mux) deliver(reply *ircserver.Replyctx) {
	for _, msg := range reply.Messages {
		for id := range msg.To {
			c, ok := m.conns[id]
			if !ok || c.closing {
				continue
			}
			c.outbound = append(c.outbound, msg.Data...)
			c.outbound = append(c.outbound, '\r', '\n')
			m.flush(c)
		}
	}
	for _, id := range reply.Closed {
		if c, ok := m.conns[id]; ok {
			c.closing = true
		}
	}
}

// flush performs a single bounded write. Data the socket does not accept
// stays in the outbound buffer and is retried on the next housekeeping tick.
func (m *Mux) flush(c *conn) {
	if len(c.outbound) == 0 {
		return
	}
	limit := len(c.outbound)
	if limit > writeChunkSize {
		limit = writeChunkSize
	}
	c.sock.SetWriteDeadline(time.Now().Add(writeTimeout))
	n, err := c.sock.Write(c.outbound[:limit])
	if n > 0 {
		c.outbound = c.outbound[n:]
		bytesWritten.Add(float64(n))
	}
	if err != nil && !errors.Is(err, os.ErrDeadlineExceeded) {
		glog.Errorf("write to connection %d: %v", c.id, err)
		c.closing = true
	}
}

func (m *Mux) hangup(id uint64, reason string) {
	c, ok := m.conns[id]
	if !ok {
		return
	}
	c.closing = true
	c.quitReason = reason
}

func (m *Mux) housekeeping() {
	for _, c := range m.conns {
		m.flush(c)
	}
	timeout := m.srv.Config.SessionExpiration
	for _, id := range m.srv.ExpireSessions(time.Now()) {
		glog.Infof("Expiring session %d", id)
		m.hangup(id, fmt.Sprintf("Ping timeout (%v)", timeout))
	}
}

// sweep tears down every connection marked for closing: the session is
// deleted first (removing channel memberships and notifying the remaining
// channel members), then the socket is closed, then the record dropped.
func (m *Mux) sweep() {
	for id, c := range m.conns {
		if !c.closing {
			continue
		}
		if _, err := m.srv.GetSession(id); err == nil {
			reason := c.quitReason
			if reason == "" {
				reason = "Connection closed"
			}
			reply := m.srv.ProcessMessage(id, &irc.Message{
				Command: irc.QUIT,
				Params:  []string{reason},
			}, time.Now())
			m.deliver(reply)
		}
		c.sock.Close()
		delete(m.conns, id)
		glog.Infof("Closed connection %d", id)
	}
}

func (m *Mux) shutdown() {
	glog.Infof("Shutting down, closing %d connections", len(m.conns))
	m.listener.Close()
	for id, c := range m.conns {
		c.sock.Write([]byte("ERROR :Server shutting down\r\n"))
		c.sock.Close()
		delete(m.conns, id)
	}
}
