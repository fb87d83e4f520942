// Package http holds the plain net/http helpers that sit next to the
// streaming core: the reachability probe and the single-shot still upload.
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/bft-labs/camship/internal/domain"
	"github.com/bft-labs/camship/internal/ports"
	"github.com/bft-labs/camship/pkg/log"
)

// Prober checks that the collector answers before a session is started.
type Prober struct {
	client ports.HTTPClient
	logger log.Logger
}

// NewProber creates a prober.
func NewProber(client ports.HTTPClient, logger log.Logger) *Prober {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Prober{client: client, logger: logger}
}

// Probe sends GET url and succeeds only on 200.
func (p *Prober) Probe(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	p.logger.Debug("probing server", log.String("url", url))
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: probe %s: %w", domain.ErrConnect, url, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: probe %s returned %d", domain.ErrUnexpectedStatus, url, resp.StatusCode)
	}
	p.logger.Info("server is reachable", log.String("url", url))
	return nil
}
