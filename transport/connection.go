// Package transport owns the single TCP socket a client uses to talk to
// the remote map server: dialing, the one-byte handshake, and
// deadline-bounded send/receive primitives. It deliberately does not
// offer a connection pool or round-robin endpoint selection, since a
// stateless remote map client owns exactly one connection and performs
// no request multiplexing.
package transport

import (
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/lni/dragonboat/v4/logger"
)

var log = logger.GetLogger("rmap/transport")

// handshakeByte is the single byte the client sends to open a session;
// the server replies with one opaque identifier byte that is logged but
// never validated.
const handshakeByte = 0x81

// Connection owns the client's single TCP socket. It is not safe for
// concurrent use; callers (the Exchange) serialize access the same way
// the TransactionClock is serialized, via the Client's mutex.
type Connection struct {
	Addr string

	conn       net.Conn
	serverID   byte
	serverIDOK bool
}

// NewConnection constructs a Connection without dialing. Call
// AttemptConnect or LazyConnect to actually establish the socket.
func NewConnection(addr string) *Connection {
	return &Connection{Addr: addr}
}

// Connected reports whether the connection currently holds a live
// socket. It does not probe the socket; it only reflects the last
// outcome of AttemptConnect/LazyConnect/Close.
func (c *Connection) Connected() bool {
	return c.conn != nil
}

// AttemptConnect makes a single, non-retrying connection attempt, used
// at client-construction time where a failed connect must not prevent
// the client object from existing — a stateless client must tolerate
// being constructed against an unreachable server. Failures are logged
// and swallowed; the next real operation will call LazyConnect.
func (c *Connection) AttemptConnect() {
	if err := c.dialAndHandshake(time.Now().Add(2 * time.Second)); err != nil {
		log.Warningf("initial connect to %s failed, will retry lazily: %v", c.Addr, err)
	}
}

// LazyConnect loops: close any existing socket, open a fresh one with
// TCP_NODELAY set, connect, and handshake. Network errors (any
// net.Error, which includes dial errors for an unresolvable or
// malformed address) and handshake errors are swallowed and retried
// until the deadline; any other error propagates immediately, and
// running out of time raises DeadlineExceededError.
func (c *Connection) LazyConnect(deadline time.Time) error {
	for {
		err := c.dialAndHandshake(deadline)
		if err == nil {
			return nil
		}

		var netErr net.Error
		isNetErr := errors.As(err, &netErr)
		_, isHandshake := err.(*HandshakeError)
		if !isNetErr && !isHandshake {
			return err
		}

		if !time.Now().Before(deadline) {
			return &DeadlineExceededError{Addr: c.Addr}
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func (c *Connection) dialAndHandshake(deadline time.Time) error {
	c.closeSocket()

	dialer := net.Dialer{Deadline: deadline}
	conn, err := dialer.Dial("tcp", c.Addr)
	if err != nil {
		return err
	}

	if tcpConn, ok := conn.(*net.TCPConn); ok {
		_ = tcpConn.SetNoDelay(true)
	}

	_ = conn.SetDeadline(deadline)
	if _, err := conn.Write([]byte{handshakeByte}); err != nil {
		conn.Close()
		return &HandshakeError{Err: err}
	}

	id := make([]byte, 1)
	if _, err := io.ReadFull(conn, id); err != nil {
		conn.Close()
		return &HandshakeError{Err: err}
	}
	_ = conn.SetDeadline(time.Time{})

	c.conn = conn
	c.serverID = id[0]
	c.serverIDOK = true
	log.Infof("connected to %s, server identifier=0x%02x", c.Addr, id[0])
	return nil
}

// ServerID returns the handshake identifier byte the server returned,
// for logging purposes only; it is never validated against anything.
func (c *Connection) ServerID() (byte, bool) {
	return c.serverID, c.serverIDOK
}

// SendAll writes b in full, honoring deadline. A short write loops; an
// error or a connection that goes away mid-write is reported as a
// DisconnectedError so the Exchange knows to reconnect.
func (c *Connection) SendAll(b []byte, deadline time.Time) error {
	if c.conn == nil {
		return &DisconnectedError{Op: "send", Err: fmt.Errorf("not connected")}
	}
	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	bufs := net.Buffers{b}
	if _, err := bufs.WriteTo(c.conn); err != nil {
		c.closeSocket()
		return &DisconnectedError{Op: "send", Err: err}
	}
	return nil
}

// RecvExact reads exactly n bytes, honoring deadline, and returns a
// DisconnectedError on EOF or any other read failure.
func (c *Connection) RecvExact(n int, deadline time.Time) ([]byte, error) {
	if c.conn == nil {
		return nil, &DisconnectedError{Op: "recv", Err: fmt.Errorf("not connected")}
	}
	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(c.conn, buf); err != nil {
		c.closeSocket()
		return nil, &DisconnectedError{Op: "recv", Err: err}
	}
	return buf, nil
}

// Close closes the socket if one is open. It is idempotent and
// best-effort: closing and nilling the connection field so the next
// operation reconnects from scratch.
func (c *Connection) Close() error {
	c.closeSocket()
	return nil
}

func (c *Connection) closeSocket() {
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
}
