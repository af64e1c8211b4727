package rmap

import (
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/lni/dragonboat/v4/logger"

	"github.com/ValentinKolb/rmap/asyncadapter"
	"github.com/ValentinKolb/rmap/config"
	"github.com/ValentinKolb/rmap/serializer"
	"github.com/ValentinKolb/rmap/transport"
	"github.com/ValentinKolb/rmap/wire"
)

// keepAliveInterval is how often the async adapter's worker pings an
// otherwise-idle connection with Heartbeat while it holds no pending
// task.
const keepAliveInterval = 30 * time.Second

var log = logger.GetLogger("rmap")

// Client is a stateless remote map client: one TCP connection, one
// reusable send/receive buffer, one transaction clock, and a pair of
// Serializer collaborators for K and V. Every exported operation
// acquires mu, so no two operations on the same Client are ever
// in-flight concurrently; run multiple Client instances for
// parallelism.
//
// Client also owns one lazily created single-thread executor — the
// asyncadapter.Adapter backing GetLater/PutLater/RemoveLater — created
// on first async use and shut down by Close alongside the socket.
type Client[K comparable, V any] struct {
	cfg config.ClientConfig

	keySer serializer.Serializer[K]
	valSer serializer.Serializer[V]
	objSer serializer.ObjectSerializer

	mu      sync.Mutex
	conn    *transport.Connection
	buf     *wire.FramedBuffer
	clock   wire.TransactionClock
	closed  bool
	metrics *clientMetrics

	maxEntrySize int

	asyncMu sync.Mutex
	async   *asyncadapter.Adapter
}

// New constructs a Client against cfg.RemoteAddress. Construction does
// not fail if the server is unreachable: a single connect attempt is
// made and its failure is swallowed. That attempt blocks New for up to
// two seconds (dial plus handshake); it does not run in the background.
// The first real operation will perform a full lazy-connect.
func New[K comparable, V any](cfg config.ClientConfig, keySer serializer.Serializer[K], valSer serializer.Serializer[V], objSer serializer.ObjectSerializer) *Client[K, V] {
	cfg = cfg.WithDefaults()

	c := &Client[K, V]{
		cfg:          cfg,
		keySer:       keySer,
		valSer:       valSer,
		objSer:       objSer,
		conn:         transport.NewConnection(cfg.RemoteAddress),
		buf:          wire.NewFramedBuffer(cfg.EntrySizeHint),
		metrics:      newClientMetrics(cfg.Name),
		maxEntrySize: max(cfg.EntrySizeHint, 128),
	}
	c.conn.AttemptConnect()
	return c
}

// Async returns the Client's single-thread async executor, the
// asyncadapter.Adapter backing GetLater/PutLater/RemoveLater, creating
// it (checked under asyncMu) on first use. Its worker pings the
// connection with Heartbeat every keepAliveInterval while idle.
func (c *Client[K, V]) Async() *asyncadapter.Adapter {
	c.asyncMu.Lock()
	defer c.asyncMu.Unlock()
	if c.async == nil {
		c.async = asyncadapter.New(asyncadapter.WithKeepAlive(keepAliveInterval, c.Heartbeat))
	}
	return c.async
}

// GetLater is the asynchronous counterpart to Get: it submits the call
// to the async adapter's single worker and returns immediately with a
// Future for its result.
func (c *Client[K, V]) GetLater(key K) *asyncadapter.Future[asyncadapter.Result[V]] {
	return asyncadapter.GetLater(c.Async(), func() (V, bool, error) { return c.Get(key) })
}

// PutLater is the asynchronous counterpart to Put.
func (c *Client[K, V]) PutLater(key K, value V) *asyncadapter.Future[asyncadapter.Result[V]] {
	return asyncadapter.PutLater(c.Async(), func() (V, bool, error) { return c.Put(key, value) })
}

// RemoveLater is the asynchronous counterpart to Remove.
func (c *Client[K, V]) RemoveLater(key K) *asyncadapter.Future[asyncadapter.Result[V]] {
	return asyncadapter.RemoveLater(c.Async(), func() (V, bool, error) { return c.Remove(key) })
}

// Close releases the underlying socket and, if the async executor was
// ever created, shuts its worker down with a 20-second grace period
// (asyncadapter.Adapter.Close's own shutdownGrace). It is idempotent;
// subsequent operations on a closed Client return *ClosedChannelError.
func (c *Client[K, V]) Close() error {
	c.asyncMu.Lock()
	async := c.async
	c.asyncMu.Unlock()
	if async != nil {
		if err := async.Close(); err != nil {
			log.Warningf("close: async executor shutdown: %v", err)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}

// deadline computes the per-operation deadline from the configured
// timeout, anchored to the moment the operation starts.
func (c *Client[K, V]) deadline() time.Time {
	return time.Now().Add(c.cfg.Timeout)
}

// disconnect marks the connection observably Disconnected without
// closing the Client itself, so the next operation performs a fresh
// handshake. Used by every error path that might have desynchronized
// the framing.
func (c *Client[K, V]) disconnect() {
	_ = c.conn.Close()
}

// remoteHost and remotePort split the configured remote address for
// RemoteFailure's synthetic "~ remote tcp ~ <host> <port>" frame. A
// malformed address yields the raw string and port 0 rather than
// failing a failure-path helper.
func (c *Client[K, V]) remoteHost() string {
	host, _, err := net.SplitHostPort(c.cfg.RemoteAddress)
	if err != nil {
		return c.cfg.RemoteAddress
	}
	return host
}

func (c *Client[K, V]) remotePort() int {
	_, portStr, err := net.SplitHostPort(c.cfg.RemoteAddress)
	if err != nil {
		return 0
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0
	}
	return port
}
