package speaker

import (
	"context"
	"net"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/soundmesh/wam/internal/event"
	"github.com/soundmesh/wam/internal/logging"
	"github.com/soundmesh/wam/internal/protocol"
)

// DefaultPort is the TCP port WAM speakers listen on.
const DefaultPort = 55001

const readBufferSize = 4096

// conn owns the control connection to one speaker: a single duplex TCP
// stream used for commands and notifications alike. Writes are serialized;
// a dedicated goroutine reads, decodes and publishes everything the
// speaker sends.
type conn struct {
	host        string
	port        int
	user        string
	dialTimeout time.Duration
	dispatcher  *event.Dispatcher

	mu       sync.Mutex
	netConn  net.Conn
	closing  bool
	readDone chan struct{}
}

func newConn(host string, port int, user string, d *event.Dispatcher, dialTimeout time.Duration) *conn {
	return &conn{
		host:        host,
		port:        port,
		user:        user,
		dialTimeout: dialTimeout,
		dispatcher:  d,
	}
}

func (c *conn) addr() string {
	return net.JoinHostPort(c.host, strconv.Itoa(c.port))
}

// connect dials the speaker and starts the read loop. Connecting an
// already connected conn is a no-op.
func (c *conn) connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.netConn != nil {
		return nil
	}

	dialer := &net.Dialer{Timeout: c.dialTimeout}
	nc, err := dialer.DialContext(ctx, "tcp", c.addr())
	if err != nil {
		return NewConnectionError("failed to connect to speaker", c.addr(), err)
	}

	c.netConn = nc
	c.closing = false
	c.readDone = make(chan struct{})
	go c.readLoop(nc, c.readDone)

	logging.LogConnection(c.addr(), "connected")
	c.dispatcher.Publish(event.ConnectionEvent{State: event.ConnStateConnected})
	return nil
}

// connected reports whether the control connection is established.
func (c *conn) connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.netConn != nil
}

// send writes one encoded command to the stream. Concurrent senders are
// serialized so requests can never interleave on the wire.
func (c *conn) send(cmd *protocol.Command) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.netConn == nil {
		return NewNotConnectedError(c.addr())
	}

	req := cmd.EncodeRequest(c.host, c.port, c.user)
	logging.LogRequest(c.addr(), cmd.Method, len(req))

	if _, err := c.netConn.Write(req); err != nil {
		// A failed write means the stream is gone. Close the socket so the
		// read loop exits and publishes the disconnect event.
		c.netConn.Close()
		c.netConn = nil
		return NewConnectionError("failed to send command", c.addr(), err)
	}
	return nil
}

// disconnect closes the connection and waits for the read loop to finish.
// Idempotent; safe to call on a conn that never connected.
func (c *conn) disconnect() {
	c.mu.Lock()
	if c.netConn == nil {
		c.mu.Unlock()
		return
	}
	c.closing = true
	nc := c.netConn
	c.netConn = nil
	done := c.readDone
	c.mu.Unlock()

	nc.Close()
	<-done

	logging.LogConnection(c.addr(), "disconnected")
}

func (c *conn) readLoop(nc net.Conn, done chan struct{}) {
	defer close(done)

	dec := protocol.NewStreamDecoder()
	buf := make([]byte, readBufferSize)

	for {
		n, err := nc.Read(buf)
		if n > 0 {
			logging.LogRawBytes("speaker stream", buf[:n])
			c.handleChunk(dec, buf[:n])
		}
		if err != nil {
			c.handleReadError(nc, err)
			return
		}
	}
}

func (c *conn) handleChunk(dec *protocol.StreamDecoder, chunk []byte) {
	frames, errs := dec.Feed(chunk)
	for _, err := range errs {
		logging.Warn("Discarded undecodable bytes from speaker stream",
			zap.String("speaker", c.addr()),
			zap.Error(err),
		)
		c.dispatcher.Publish(event.DecodeErrorEvent{Err: err})
	}
	for _, f := range frames {
		logging.LogFrame(c.addr(), f.API, f.Method, f.OK)
		for _, e := range event.Project(f) {
			c.dispatcher.Publish(e)
		}
		// Published last: a waiter seeing the frame knows its projected
		// events are already applied.
		c.dispatcher.Publish(event.FrameEvent{Frame: f})
	}
}

func (c *conn) handleReadError(nc net.Conn, err error) {
	c.mu.Lock()
	requested := c.closing
	// Compare before clearing: a reconnect may already have replaced the
	// socket this loop was reading from.
	if c.netConn == nc {
		c.netConn = nil
	}
	c.mu.Unlock()

	// Idempotent when disconnect or a failed send closed it already.
	nc.Close()

	if requested {
		c.dispatcher.Publish(event.ConnectionEvent{State: event.ConnStateDisconnected})
		return
	}

	logging.Error("Speaker connection lost",
		zap.String("speaker", c.addr()),
		zap.Error(err),
	)
	c.dispatcher.Publish(event.ConnectionEvent{
		State: event.ConnStateDisconnected,
		Err:   NewConnectionError("connection lost", c.addr(), err),
	})
}
