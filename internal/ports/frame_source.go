package ports

import (
	"context"

	"github.com/bft-labs/camship/internal/domain"
)

// FrameSource produces encoded images on demand.
type FrameSource interface {
	// Capture returns either a frame or an error, never both.
	// domain.ErrNoFrame signals a transient capture failure; the session
	// skips the attempt and carries on. Other errors are treated the same
	// way by the session but are logged with their cause.
	Capture(ctx context.Context) (domain.Frame, error)

	// Close releases the camera or any other resource behind the source.
	Close() error
}

// FrameSourceFunc adapts a function to the FrameSource interface.
type FrameSourceFunc func(ctx context.Context) (domain.Frame, error)

// Capture calls f(ctx).
func (f FrameSourceFunc) Capture(ctx context.Context) (domain.Frame, error) {
	return f(ctx)
}

// Close is a no-op.
func (f FrameSourceFunc) Close() error {
	return nil
}
