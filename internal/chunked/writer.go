// Package chunked writes HTTP/1.1 chunked transfer coding directly to a
// connection, one chunk per call, without buffering the body.
package chunked

import (
	"errors"
	"fmt"
	"io"
	"strconv"
)

// ErrTerminated is returned by WriteChunk after the terminating chunk was sent.
var ErrTerminated = errors.New("chunked: stream already terminated")

var crlf = []byte("\r\n")

// Writer frames payloads as chunks on w.
// It is not safe for concurrent use.
type Writer struct {
	w          io.Writer
	written    int64
	chunks     int
	terminated bool
	hdr        []byte
}

// NewWriter returns a Writer emitting chunks onto w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, hdr: make([]byte, 0, 18)}
}

// WriteChunk emits one chunk: the payload length in upper-case hex, CRLF,
// the payload and CRLF. An empty payload produces the end-of-stream marker
// and is only meaningful as the last chunk; prefer Close for that.
func (cw *Writer) WriteChunk(p []byte) error {
	if cw.terminated {
		return ErrTerminated
	}
	cw.hdr = strconv.AppendUint(cw.hdr[:0], uint64(len(p)), 16)
	cw.hdr = appendUpper(cw.hdr)
	cw.hdr = append(cw.hdr, crlf...)
	if err := cw.write(cw.hdr); err != nil {
		return fmt.Errorf("write chunk header: %w", err)
	}
	if len(p) > 0 {
		if err := cw.write(p); err != nil {
			return fmt.Errorf("write chunk payload: %w", err)
		}
	}
	if err := cw.write(crlf); err != nil {
		return fmt.Errorf("write chunk trailer: %w", err)
	}
	cw.chunks++
	if len(p) == 0 {
		cw.terminated = true
	}
	return nil
}

// Close sends the zero-length terminating chunk. It is sent at most once;
// later calls return nil without writing.
func (cw *Writer) Close() error {
	if cw.terminated {
		return nil
	}
	return cw.WriteChunk(nil)
}

// Terminated reports whether the terminating chunk has been sent.
func (cw *Writer) Terminated() bool {
	return cw.terminated
}

// Written returns the number of bytes put on the wire, framing included.
func (cw *Writer) Written() int64 {
	return cw.written
}

// Chunks returns the number of chunks written, terminator included.
func (cw *Writer) Chunks() int {
	return cw.chunks
}

func (cw *Writer) write(b []byte) error {
	n, err := cw.w.Write(b)
	cw.written += int64(n)
	if err == nil && n < len(b) {
		err = io.ErrShortWrite
	}
	return err
}

func appendUpper(b []byte) []byte {
	for i, c := range b {
		if c >= 'a' && c <= 'f' {
			b[i] = c - 'a' + 'A'
		}
	}
	return b
}
