package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/timvw/zellij-autolock/internal/autolock"
)

const defaultMaxPayloadBytes = 8 * 1024

// Sink receives each accepted event. It is called from the collector's
// read goroutine and must not block for long.
type Sink func(autolock.Event)

// Collector listens on a unixgram socket and forwards valid messages to a
// sink. Malformed and oversized datagrams are dropped.
type Collector struct {
	sink Sink
	path string
	log  *zap.Logger

	MaxPayloadBytes int

	mu     sync.Mutex
	conn   *net.UnixConn
	closed bool
	done   chan struct{}
}

// NewCollector creates a collector for socketPath. A nil logger logs nothing.
func NewCollector(sink Sink, socketPath string, log *zap.Logger) *Collector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Collector{
		sink:            sink,
		path:            socketPath,
		log:             log,
		MaxPayloadBytes: defaultMaxPayloadBytes,
	}
}

// SocketPath returns the socket the collector binds.
func (c *Collector) SocketPath() string {
	return c.path
}

// Start binds the socket and reads datagrams in the background until ctx is
// cancelled. The socket file is removed on shutdown.
func (c *Collector) Start(ctx context.Context) error {
	if c.sink == nil {
		return fmt.Errorf("sink is required")
	}
	if c.path == "" {
		return fmt.Errorf("socket path is required")
	}
	if c.MaxPayloadBytes <= 0 {
		c.MaxPayloadBytes = defaultMaxPayloadBytes
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o700); err != nil {
		return fmt.Errorf("create socket dir: %w", err)
	}
	if err := os.Chmod(filepath.Dir(c.path), 0o700); err != nil {
		return fmt.Errorf("chmod socket dir: %w", err)
	}
	if err := os.Remove(c.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove stale socket: %w", err)
	}

	addr, err := net.ResolveUnixAddr("unixgram", c.path)
	if err != nil {
		return fmt.Errorf("resolve unix addr: %w", err)
	}
	conn, err := net.ListenUnixgram("unixgram", addr)
	if err != nil {
		return fmt.Errorf("listen unixgram: %w", err)
	}
	if err := os.Chmod(c.path, 0o600); err != nil {
		_ = conn.Close()
		return fmt.Errorf("chmod socket: %w", err)
	}

	done := make(chan struct{})
	c.mu.Lock()
	c.conn = conn
	c.closed = false
	c.done = done
	c.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			c.close()
		case <-done:
		}
	}()

	go c.readLoop(conn, done)

	c.log.Debug("event collector listening", zap.String("socket", c.path))
	return nil
}

// Run starts the collector and blocks until ctx is cancelled and the read
// loop has exited.
func (c *Collector) Run(ctx context.Context) error {
	if err := c.Start(ctx); err != nil {
		return err
	}
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	<-done
	return nil
}

func (c *Collector) readLoop(conn *net.UnixConn, done chan struct{}) {
	defer close(done)
	buf := make([]byte, c.MaxPayloadBytes)
	for {
		n, _, err := conn.ReadFromUnix(buf)
		if err != nil {
			if c.isClosed() {
				return
			}
			continue
		}

		// A datagram filling the buffer may have been truncated.
		if n <= 0 || n >= c.MaxPayloadBytes {
			c.log.Debug("dropping oversized datagram", zap.Int("bytes", n))
			continue
		}

		ev, err := Decode(buf[:n])
		if err != nil {
			c.log.Debug("dropping invalid datagram", zap.Error(err))
			continue
		}
		c.sink(ev)
	}
}

// Decode parses and validates one datagram.
func Decode(payload []byte) (autolock.Event, error) {
	var m Message
	if err := json.Unmarshal(payload, &m); err != nil {
		return nil, fmt.Errorf("decode message: %w", err)
	}
	return m.Event()
}

func (c *Collector) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Collector) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
		_ = os.Remove(c.path)
	}
}
