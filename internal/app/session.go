package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/bft-labs/camship/internal/chunked"
	"github.com/bft-labs/camship/internal/domain"
	"github.com/bft-labs/camship/internal/formpart"
	"github.com/bft-labs/camship/internal/ports"
	"github.com/bft-labs/camship/pkg/log"
)

// Result describes a finished streaming upload.
type Result struct {
	SessionID     string
	Lines         []string
	FramesSent    int
	FramesSkipped int
	BytesSent     int64
	Duration      time.Duration
}

// StatusLine returns the first response line, or "" if none was read.
// The session itself never interprets it.
func (r Result) StatusLine() string {
	if len(r.Lines) == 0 {
		return ""
	}
	return r.Lines[0]
}

// SessionObserver is notified synchronously from the session's goroutine.
type SessionObserver interface {
	OnStateChange(previous, current domain.State)
	OnFrameSent(ordinal, size int, waited time.Duration)
	OnFrameSkipped(ordinal int, err error)
}

// SessionOption configures optional behavior of a Session.
type SessionOption func(*Session)

// WithLogger sets the session logger.
func WithLogger(logger log.Logger) SessionOption {
	return func(s *Session) { s.logger = logger }
}

// WithClock replaces the clock used for pacing.
func WithClock(clock Clock) SessionOption {
	return func(s *Session) { s.clock = clock }
}

// WithObserver registers an observer for state changes and frame events.
func WithObserver(observer SessionObserver) SessionOption {
	return func(s *Session) { s.observer = observer }
}

// Session streams frames from a source to the collector as one chunked
// multipart/form-data POST. A Session runs once.
type Session struct {
	cfg      domain.SessionConfig
	source   ports.FrameSource
	dialer   ports.Dialer
	logger   log.Logger
	clock    Clock
	observer SessionObserver
	id       string

	state   domain.State
	conn    ports.Conn
	encoder *chunked.Writer
	parts   formpart.Builder
	pacer   *Pacer
	head    int64
	result  Result
}

// NewSession validates cfg and prepares a session in StateConnecting.
func NewSession(cfg domain.SessionConfig, source ports.FrameSource, dialer ports.Dialer, opts ...SessionOption) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if source == nil || dialer == nil {
		return nil, fmt.Errorf("%w: frame source and dialer are required", domain.ErrInvalidConfig)
	}

	s := &Session{
		cfg:    cfg,
		source: source,
		dialer: dialer,
		logger: log.NewNoopLogger(),
		clock:  SystemClock,
		state:  domain.StateConnecting,
		parts: formpart.Builder{
			Boundary:        cfg.Boundary,
			FieldName:       cfg.FieldName,
			ContentType:     cfg.ContentType,
			FilenamePattern: cfg.FilenamePattern,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.id = uuid.NewString()
	s.logger = log.With(s.logger, log.String("session", s.id))
	s.pacer = NewPacer(cfg.Interval, s.clock)
	s.result.SessionID = s.id
	return s, nil
}

// RunSession creates and runs a session in one call.
func RunSession(ctx context.Context, cfg domain.SessionConfig, source ports.FrameSource, dialer ports.Dialer, opts ...SessionOption) (Result, error) {
	s, err := NewSession(cfg, source, dialer, opts...)
	if err != nil {
		return Result{}, err
	}
	return s.Run(ctx)
}

// State returns the current session state.
func (s *Session) State() domain.State {
	return s.state
}

// Run performs the upload. ctx bounds the connection attempt only; once
// connected the session runs to completion or to a transport failure.
// On failure the returned error is a *domain.SessionError naming the state
// the session was in, and the Result holds whatever was counted so far.
func (s *Session) Run(ctx context.Context) (res Result, err error) {
	if s.state != domain.StateConnecting {
		return s.result, fmt.Errorf("session %s already ran (state %s)", s.id, s.state)
	}
	began := s.clock.Now()
	defer func() {
		s.result.Duration = s.clock.Now().Sub(began)
		res.Duration = s.result.Duration
	}()

	addr := s.cfg.Addr()
	s.logger.Info("connecting", log.String("addr", addr), log.String("path", s.cfg.Path))

	dialCtx := ctx
	if s.cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, s.cfg.DialTimeout)
		defer cancel()
	}
	conn, err := s.dialer.Dial(dialCtx, addr)
	if err != nil {
		return s.result, s.fail(fmt.Errorf("%w: dial %s: %w", domain.ErrConnect, addr, err))
	}
	s.conn = conn
	s.encoder = chunked.NewWriter(conn)

	if err := s.sendHeaders(); err != nil {
		return s.result, s.fail(err)
	}
	if err := s.transitionTo(domain.StateHeadersSent); err != nil {
		return s.result, s.fail(err)
	}

	if err := s.transitionTo(domain.StateStreaming); err != nil {
		return s.result, s.fail(err)
	}
	// Captures are not interruptible mid-session.
	captureCtx := context.WithoutCancel(ctx)
	for i := 0; i < s.cfg.FrameCount; i++ {
		if err := s.streamFrame(captureCtx, i); err != nil {
			return s.result, s.fail(err)
		}
	}

	if err := s.transitionTo(domain.StateFinalizing); err != nil {
		return s.result, s.fail(err)
	}
	if err := s.parts.WriteClosing(s.encoder); err != nil {
		return s.result, s.fail(err)
	}
	if err := s.encoder.Close(); err != nil {
		return s.result, s.fail(fmt.Errorf("terminating chunk: %w", err))
	}
	s.result.BytesSent = s.head + s.encoder.Written()

	if err := s.transitionTo(domain.StateAwaitingResponse); err != nil {
		return s.result, s.fail(err)
	}
	s.readResponse()

	if err := s.conn.Close(); err != nil {
		s.logger.Debug("close after response", log.Err(err))
	}
	if err := s.transitionTo(domain.StateClosed); err != nil {
		return s.result, s.fail(err)
	}

	s.logger.Info("upload finished",
		log.Int("sent", s.result.FramesSent),
		log.Int("skipped", s.result.FramesSkipped),
		log.Int64("bytes", s.result.BytesSent),
		log.String("status", s.result.StatusLine()),
	)
	return s.result, nil
}

func (s *Session) requestHead() string {
	return "POST " + s.cfg.Path + " HTTP/1.1\r\n" +
		"Host: " + s.cfg.Addr() + "\r\n" +
		"Content-Type: " + s.parts.FormDataContentType() + "\r\n" +
		"Connection: close\r\n" +
		"Transfer-Encoding: chunked\r\n" +
		"\r\n"
}

func (s *Session) sendHeaders() error {
	head := s.requestHead()
	n, err := io.WriteString(s.conn, head)
	s.head = int64(n)
	if err == nil && n < len(head) {
		err = io.ErrShortWrite
	}
	if err != nil {
		return fmt.Errorf("write request headers: %w", err)
	}
	return nil
}

// streamFrame runs one capture attempt. Only transport errors are returned.
func (s *Session) streamFrame(ctx context.Context, ordinal int) error {
	start, waited := s.pacer.Begin()

	frame, err := s.source.Capture(ctx)
	captured := s.clock.Now().Sub(start)
	if err != nil {
		s.result.FramesSkipped++
		if errors.Is(err, domain.ErrNoFrame) {
			s.logger.Warn("no frame captured", log.Int("ordinal", ordinal))
		} else {
			s.logger.Warn("capture failed", log.Int("ordinal", ordinal), log.Err(err))
		}
		if s.observer != nil {
			s.observer.OnFrameSkipped(ordinal, err)
		}
		return nil
	}

	if err := s.parts.WritePart(s.encoder, ordinal, frame.Bytes()); err != nil {
		return err
	}
	s.pacer.Commit()
	s.result.FramesSent++

	s.logger.Debug("frame sent",
		log.Int("ordinal", ordinal),
		log.Int("bytes", frame.Len()),
		log.Duration("capture", captured),
		log.Duration("waited", waited),
	)
	if s.observer != nil {
		s.observer.OnFrameSent(ordinal, frame.Len(), waited)
	}
	return nil
}

// readResponse collects lines until a blank line or the end of the stream.
// A read error ends the response; it does not fail the session.
func (s *Session) readResponse() {
	for {
		line, err := s.conn.ReadLine()
		if err != nil {
			if line != "" {
				s.appendLine(line)
			}
			if !errors.Is(err, io.EOF) && !errors.Is(err, domain.ErrConnClosed) {
				s.logger.Debug("response read ended", log.Err(err))
			}
			return
		}
		if line == "" {
			return
		}
		s.appendLine(line)
	}
}

func (s *Session) appendLine(line string) {
	s.result.Lines = append(s.result.Lines, line)
	s.logger.Info("response", log.String("line", line))
}

func (s *Session) transitionTo(next domain.State) error {
	prev := s.state
	if !prev.CanTransitionTo(next) {
		return fmt.Errorf("invalid session transition %s -> %s", prev, next)
	}
	s.state = next
	s.logger.Debug("session state", log.String("from", prev.String()), log.String("to", next.String()))
	if s.observer != nil {
		s.observer.OnStateChange(prev, next)
	}
	return nil
}

// fail closes the connection, moves to Aborted and wraps err with the state
// the failure happened in.
func (s *Session) fail(err error) error {
	failed := s.state
	if s.conn != nil {
		if cerr := s.conn.Close(); cerr != nil {
			s.logger.Debug("close after failure", log.Err(cerr))
		}
	}
	s.result.BytesSent = s.head
	if s.encoder != nil {
		s.result.BytesSent += s.encoder.Written()
	}
	if terr := s.transitionTo(domain.StateAborted); terr != nil {
		s.logger.Debug("abort transition", log.Err(terr))
	}
	s.logger.Error("upload aborted", log.String("state", failed.String()), log.Err(err))
	return &domain.SessionError{State: failed, Err: err}
}
