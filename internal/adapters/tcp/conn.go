// Package tcp implements ports.Dialer and ports.Conn over plain TCP sockets.
package tcp

import (
	"bufio"
	"context"
	"errors"
	"net"
	"strings"
	"sync"

	"github.com/bft-labs/camship/internal/domain"
	"github.com/bft-labs/camship/internal/ports"
)

// MaxLineLength bounds one response line, line ending included.
const MaxLineLength = 8 << 10

// ErrLineTooLong is returned by ReadLine when no line ending arrives within
// MaxLineLength bytes.
var ErrLineTooLong = errors.New("tcp: response line too long")

// Dialer opens TCP connections to the collector.
type Dialer struct{}

// NewDialer creates a TCP dialer.
func NewDialer() *Dialer {
	return &Dialer{}
}

// Dial connects to addr. Deadlines come from ctx only.
func (d *Dialer) Dial(ctx context.Context, addr string) (ports.Conn, error) {
	var nd net.Dialer
	c, err := nd.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	return NewConn(c), nil
}

// Conn adapts a net.Conn to ports.Conn.
type Conn struct {
	mu     sync.Mutex
	conn   net.Conn
	reader *bufio.Reader
	closed bool
}

// NewConn wraps an established connection.
func NewConn(c net.Conn) *Conn {
	return &Conn{conn: c, reader: bufio.NewReaderSize(c, MaxLineLength)}
}

// Write writes p in full or returns an error.
func (c *Conn) Write(p []byte) (int, error) {
	if c.isClosed() {
		return 0, domain.ErrConnClosed
	}
	return c.conn.Write(p)
}

// ReadLine reads up to and including '\n' and returns the line without
// its line ending. A line longer than MaxLineLength is dropped with
// ErrLineTooLong.
func (c *Conn) ReadLine() (string, error) {
	if c.isClosed() {
		return "", domain.ErrConnClosed
	}
	line, err := c.reader.ReadSlice('\n')
	if errors.Is(err, bufio.ErrBufferFull) {
		return "", ErrLineTooLong
	}
	return strings.TrimRight(string(line), "\r\n"), err
}

// Close closes the socket once.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}

func (c *Conn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
