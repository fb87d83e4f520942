package domain

import (
	"fmt"
	"mime/multipart"
	"net"
	"strconv"
	"strings"
	"time"
)

// Defaults for the collector's streaming endpoint.
const (
	DefaultBoundary        = "----ESP32VideoBoundary"
	DefaultStreamPath      = "/upload/mjpeg"
	DefaultStillPath       = "/upload/picture"
	DefaultProbePath       = "/ping"
	DefaultFieldName       = "picture"
	DefaultContentType     = "image/jpeg"
	DefaultFilenamePattern = "frame%d.jpg"
	DefaultFrameCount      = 50
	DefaultFrameInterval   = 200 * time.Millisecond
	DefaultDialTimeout     = 10 * time.Second
)

// SessionConfig is the immutable configuration of one streaming upload.
type SessionConfig struct {
	// FrameCount is the number of capture attempts, not the number of
	// frames that will be sent.
	FrameCount int

	// Interval is the target time between the starts of two consecutive
	// capture attempts.
	Interval time.Duration

	// Boundary delimits multipart parts. It must not occur inside any frame.
	Boundary string

	Host string
	Port int
	Path string

	FieldName       string
	ContentType     string
	FilenamePattern string

	// DialTimeout bounds the initial connection attempt. It is the only
	// deadline imposed by the session itself.
	DialTimeout time.Duration
}

// DefaultSessionConfig returns a SessionConfig with the collector defaults.
// Host and Port must still be set.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		FrameCount:      DefaultFrameCount,
		Interval:        DefaultFrameInterval,
		Boundary:        DefaultBoundary,
		Path:            DefaultStreamPath,
		FieldName:       DefaultFieldName,
		ContentType:     DefaultContentType,
		FilenamePattern: DefaultFilenamePattern,
		DialTimeout:     DefaultDialTimeout,
	}
}

// Addr returns host:port.
func (c SessionConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Validate checks the configuration.
func (c SessionConfig) Validate() error {
	if c.FrameCount <= 0 {
		return fmt.Errorf("%w: frame count must be positive", ErrInvalidConfig)
	}
	if c.Interval < 0 {
		return fmt.Errorf("%w: frame interval must not be negative", ErrInvalidConfig)
	}
	if c.Host == "" {
		return fmt.Errorf("%w: host is required", ErrInvalidConfig)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, c.Port)
	}
	if c.Path == "" || c.Path[0] != '/' {
		return fmt.Errorf("%w: path must start with /", ErrInvalidConfig)
	}
	if c.FieldName == "" {
		return fmt.Errorf("%w: field name is required", ErrInvalidConfig)
	}
	if err := validateFilenamePattern(c.FilenamePattern); err != nil {
		return err
	}
	// SetBoundary enforces the RFC 2046 length and character rules.
	if err := multipart.NewWriter(nil).SetBoundary(c.Boundary); err != nil {
		return fmt.Errorf("%w: boundary: %v", ErrInvalidConfig, err)
	}
	return nil
}

// validateFilenamePattern requires exactly one integer verb, so that every
// ordinal yields a distinct, well-formed filename.
func validateFilenamePattern(pattern string) error {
	first, second := fmt.Sprintf(pattern, 0), fmt.Sprintf(pattern, 1)
	if strings.Contains(first, "%!") || first == second {
		return fmt.Errorf("%w: filename pattern %q needs exactly one integer verb such as %%d", ErrInvalidConfig, pattern)
	}
	return nil
}
