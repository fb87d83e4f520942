package ports

import (
	"context"
	"io"
)

// Dialer opens connections to the collector.
type Dialer interface {
	// Dial connects to addr (host:port). The context bounds the connection
	// attempt only; it has no effect on the returned Conn.
	Dial(ctx context.Context, addr string) (Conn, error)
}

// Conn is a live, ordered, bidirectional byte stream.
// Once closed it cannot be reused: writes and reads return domain.ErrConnClosed.
type Conn interface {
	io.Writer

	// ReadLine returns the next line without its trailing CRLF or LF.
	// At end of stream it returns any partial line together with io.EOF.
	ReadLine() (string, error)

	// Close closes the connection. Closing twice is not an error.
	Close() error
}
