// Package camship streams camera stills to an HTTP collector as one
// chunked multipart/form-data upload.
//
// Example usage:
//
//	cfg := camship.DefaultConfig()
//	cfg.Host = "192.168.1.34"
//	cfg.Port = 5000
//	cfg.Source = camship.SourceFiles
//	cfg.Files = "/srv/frames/*.jpg"
//	res, err := camship.Stream(context.Background(), cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.StatusLine())
package camship

import (
	"context"
	"fmt"
	nethttp "net/http"
	"strings"

	httpAdapter "github.com/bft-labs/camship/internal/adapters/http"
	"github.com/bft-labs/camship/internal/adapters/source"
	"github.com/bft-labs/camship/internal/adapters/tcp"
	"github.com/bft-labs/camship/internal/app"
	"github.com/bft-labs/camship/internal/cliconfig"
	"github.com/bft-labs/camship/internal/domain"
	"github.com/bft-labs/camship/internal/ports"
	"github.com/bft-labs/camship/pkg/log"
)

// Config holds everything needed to reach the collector and capture frames.
// Use DefaultConfig() to get a Config with the collector defaults.
type Config = cliconfig.Config

// Result describes a finished streaming upload.
type Result = app.Result

// StillResult is the collector's answer to a single-shot upload.
type StillResult = httpAdapter.StillResult

// FrameSource produces one encoded image per Capture call.
type FrameSource = ports.FrameSource

// Observer receives session state changes and per-frame events.
type Observer = app.SessionObserver

// Frame source kinds accepted in Config.Source.
const (
	SourceDir     = cliconfig.SourceDir
	SourceCommand = cliconfig.SourceCommand
	SourceFiles   = cliconfig.SourceFiles
)

// DefaultConfig returns a Config with sensible default values.
// At minimum Host and a frame source must be set before calling Stream.
func DefaultConfig() Config {
	return cliconfig.DefaultConfig()
}

// Option configures Stream, Probe and UploadStill.
type Option func(*options)

type options struct {
	logger   log.Logger
	observer Observer
	source   FrameSource
	client   ports.HTTPClient
	dialer   ports.Dialer
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger log.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithObserver registers a session observer, e.g. a metrics collector.
func WithObserver(observer Observer) Option {
	return func(o *options) { o.observer = observer }
}

// WithFrameSource replaces the source that Config.Source would build.
func WithFrameSource(src FrameSource) Option {
	return func(o *options) { o.source = src }
}

// WithHTTPClient replaces the client used by Probe and UploadStill.
func WithHTTPClient(client ports.HTTPClient) Option {
	return func(o *options) { o.client = client }
}

// WithDialer replaces the TCP dialer used by Stream.
func WithDialer(dialer ports.Dialer) Option {
	return func(o *options) { o.dialer = dialer }
}

func buildOptions(cfg Config, opts []Option) options {
	o := options{logger: log.NewNoopLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.client == nil {
		o.client = &nethttp.Client{Timeout: cfg.HTTPTimeout}
	}
	if o.dialer == nil {
		o.dialer = tcp.NewDialer()
	}
	return o
}

// NewFrameSource builds the frame source selected by cfg.Source.
func NewFrameSource(cfg Config, logger log.Logger) (FrameSource, error) {
	var (
		src FrameSource
		err error
	)
	switch cfg.Source {
	case SourceDir:
		src, err = source.NewDirSource(source.DirConfig{
			Dir:     cfg.SpoolDir,
			Pattern: cfg.SpoolPattern,
			Timeout: cfg.CaptureTimeout,
			Remove:  cfg.SpoolRemove,
		}, logger)
	case SourceCommand:
		src, err = source.NewCommandSource(strings.Fields(cfg.CaptureCommand), cfg.CaptureTimeout, logger)
	case SourceFiles:
		src, err = source.NewFileSource(cfg.Files)
	default:
		err = fmt.Errorf("%w: unknown source %q", domain.ErrInvalidConfig, cfg.Source)
	}
	if err != nil {
		return nil, err
	}
	return src, nil
}

// Stream runs one streaming session: cfg.FrameCount capture attempts paced
// cfg.FrameInterval apart, posted as a single chunked request. When
// cfg.Probe is set the collector is pinged first and an unreachable
// collector aborts before any frame is captured.
//
// A session that cannot connect is retried cfg.Retries times with
// exponential backoff; a session that fails after connecting is not.
//
// Errors from a started session are *domain.SessionError values naming the
// state the session failed in.
func Stream(ctx context.Context, cfg Config, opts ...Option) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, fmt.Errorf("%w: %w", domain.ErrInvalidConfig, err)
	}
	o := buildOptions(cfg, opts)

	if cfg.Probe {
		if err := Probe(ctx, cfg, opts...); err != nil {
			return Result{}, err
		}
	}

	src := o.source
	if src == nil {
		built, err := NewFrameSource(cfg, o.logger)
		if err != nil {
			return Result{}, err
		}
		src = built
		defer func() {
			if err := src.Close(); err != nil {
				o.logger.Warn("close frame source", log.Err(err))
			}
		}()
	}

	sessionOpts := []app.SessionOption{app.WithLogger(o.logger)}
	if o.observer != nil {
		sessionOpts = append(sessionOpts, app.WithObserver(o.observer))
	}
	backoff := app.NewBackoff(app.DefaultBackoffInitial, app.DefaultBackoffMax)
	return app.RetryConnect(ctx, cfg.Retries, backoff, o.logger, func() (Result, error) {
		return app.RunSession(ctx, cfg.SessionConfig(), src, o.dialer, sessionOpts...)
	})
}

// Probe checks that the collector answers 200 on cfg.ProbePath.
func Probe(ctx context.Context, cfg Config, opts ...Option) error {
	o := buildOptions(cfg, opts)
	return httpAdapter.NewProber(o.client, o.logger).Probe(ctx, cfg.BaseURL()+cfg.ProbePath)
}

// UploadStill posts one frame to cfg.StillPath as a fixed-length
// multipart/form-data request with the browser-style still boundary.
func UploadStill(ctx context.Context, cfg Config, frame []byte, opts ...Option) (StillResult, error) {
	o := buildOptions(cfg, opts)
	return httpAdapter.NewStillUploader(o.client, o.logger).Upload(ctx, httpAdapter.StillConfig{
		URL:         cfg.BaseURL() + cfg.StillPath,
		Boundary:    httpAdapter.DefaultStillBoundary,
		FieldName:   cfg.FieldName,
		Filename:    httpAdapter.DefaultStillFilename,
		ContentType: cfg.ContentType,
	}, domain.NewFrame(frame))
}
