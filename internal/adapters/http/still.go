package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/bft-labs/camship/internal/domain"
	"github.com/bft-labs/camship/internal/formpart"
	"github.com/bft-labs/camship/internal/ports"
	"github.com/bft-labs/camship/pkg/log"
)

// Defaults for the collector's still endpoint.
const (
	DefaultStillBoundary = "----WebKitFormBoundary7MA4YWxkTrZu0gW"
	DefaultStillFilename = "esp32cam.jpg"
)

// maxResponseBody caps how much of the server's reply is kept.
const maxResponseBody = 64 << 10

// StillConfig describes a single-shot upload.
type StillConfig struct {
	URL         string
	Boundary    string
	FieldName   string
	Filename    string
	ContentType string
}

// StillResult is the server's answer to a still upload.
type StillResult struct {
	StatusCode int
	Body       string
}

// StillUploader posts one frame as a non-chunked multipart/form-data body.
type StillUploader struct {
	client ports.HTTPClient
	logger log.Logger
}

// NewStillUploader creates a still uploader.
func NewStillUploader(client ports.HTTPClient, logger log.Logger) *StillUploader {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &StillUploader{client: client, logger: logger}
}

// Upload sends frame and succeeds only on 200. The body is streamed from
// the part header, the frame and the closing delimiter without copying
// them into one buffer.
func (u *StillUploader) Upload(ctx context.Context, cfg StillConfig, frame domain.Frame) (StillResult, error) {
	parts := formpart.Builder{
		Boundary:    cfg.Boundary,
		FieldName:   cfg.FieldName,
		ContentType: cfg.ContentType,
	}
	head := parts.FileHeader(cfg.Filename)
	tail := append(parts.PartSeparator(), parts.Closing()...)

	body := io.MultiReader(bytes.NewReader(head), bytes.NewReader(frame.Bytes()), bytes.NewReader(tail))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.URL, body)
	if err != nil {
		return StillResult{}, fmt.Errorf("create request: %w", err)
	}
	req.ContentLength = int64(len(head) + frame.Len() + len(tail))
	req.Header.Set("Content-Type", parts.FormDataContentType())

	u.logger.Info("sending still", log.String("url", cfg.URL), log.Int64("bytes", req.ContentLength))
	resp, err := u.client.Do(req)
	if err != nil {
		return StillResult{}, fmt.Errorf("%w: send request: %w", domain.ErrConnect, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	res := StillResult{StatusCode: resp.StatusCode, Body: string(respBody)}
	u.logger.Info("still response", log.Int("status", res.StatusCode), log.String("body", res.Body))

	if resp.StatusCode != http.StatusOK {
		return res, fmt.Errorf("%w: server returned %d: %s", domain.ErrUnexpectedStatus, resp.StatusCode, res.Body)
	}
	return res, nil
}
