package domain

// Frame is one captured image. The bytes are opaque to the upload core and
// are not retained after they have been written to the connection.
type Frame struct {
	data []byte
}

// NewFrame wraps captured bytes. The caller must not modify data afterwards.
func NewFrame(data []byte) Frame {
	return Frame{data: data}
}

// Bytes returns the frame payload.
func (f Frame) Bytes() []byte {
	return f.data
}

// Len returns the payload length in bytes.
func (f Frame) Len() int {
	return len(f.data)
}
