// Package formpart lays out multipart/form-data parts for a body that is
// written one chunk at a time.
package formpart

import (
	"fmt"
	"mime"
	"strings"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// ChunkWriter is the subset of chunked.Writer the builder needs.
type ChunkWriter interface {
	WriteChunk(p []byte) error
}

// Builder produces the framing around each frame of a streamed form.
// The boundary is trusted: if it occurs inside a frame the body is corrupt.
type Builder struct {
	Boundary        string
	FieldName       string
	ContentType     string
	FilenamePattern string
}

// FormDataContentType returns the request Content-Type declaring the boundary.
func (b Builder) FormDataContentType() string {
	return mime.FormatMediaType("multipart/form-data", map[string]string{"boundary": b.Boundary})
}

// Filename returns the per-frame filename for an ordinal.
func (b Builder) Filename(ordinal int) string {
	return fmt.Sprintf(b.FilenamePattern, ordinal)
}

// PartHeader returns the boundary line and part headers for one frame,
// ending with the blank line that precedes the frame bytes.
func (b Builder) PartHeader(ordinal int) []byte {
	return b.FileHeader(b.Filename(ordinal))
}

// FileHeader is PartHeader with an explicit filename.
func (b Builder) FileHeader(filename string) []byte {
	disposition := fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(b.FieldName), quoteEscaper.Replace(filename))
	return []byte("--" + b.Boundary + "\r\n" +
		"Content-Disposition: " + disposition + "\r\n" +
		"Content-Type: " + b.ContentType + "\r\n" +
		"\r\n")
}

// PartSeparator returns the CRLF that ends a part's content.
func (b Builder) PartSeparator() []byte {
	return []byte("\r\n")
}

// Closing returns the closing delimiter line of the form.
func (b Builder) Closing() []byte {
	return []byte("--" + b.Boundary + "--\r\n")
}

// WritePart sends one frame as three chunks: header, frame bytes, separator.
func (b Builder) WritePart(w ChunkWriter, ordinal int, frame []byte) error {
	if err := w.WriteChunk(b.PartHeader(ordinal)); err != nil {
		return fmt.Errorf("part %d header: %w", ordinal, err)
	}
	// An empty frame has no chunk of its own: a zero-length chunk would end
	// the transfer.
	if len(frame) > 0 {
		if err := w.WriteChunk(frame); err != nil {
			return fmt.Errorf("part %d body: %w", ordinal, err)
		}
	}
	if err := w.WriteChunk(b.PartSeparator()); err != nil {
		return fmt.Errorf("part %d separator: %w", ordinal, err)
	}
	return nil
}

// WriteClosing sends the closing delimiter as one chunk.
func (b Builder) WriteClosing(w ChunkWriter) error {
	if err := w.WriteChunk(b.Closing()); err != nil {
		return fmt.Errorf("closing boundary: %w", err)
	}
	return nil
}
