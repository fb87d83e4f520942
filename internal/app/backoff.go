package app

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/bft-labs/camship/internal/domain"
	"github.com/bft-labs/camship/pkg/log"
)

// Default backoff configuration values.
const (
	DefaultBackoffInitial = 500 * time.Millisecond
	DefaultBackoffMax     = 10 * time.Second
)

// Backoff implements exponential backoff with jitter.
type Backoff struct {
	initial time.Duration
	max     time.Duration
	current time.Duration
	jitter  func() float64
	wait    func(ctx context.Context, d time.Duration) error
}

// NewBackoff creates a new backoff with the given initial and max durations.
func NewBackoff(initial, max time.Duration) *Backoff {
	return &Backoff{
		initial: initial,
		max:     max,
		current: initial,
		jitter:  rand.Float64,
		wait:    sleepContext,
	}
}

// Sleep waits for the current backoff duration or until ctx is done, then
// increases the duration. It returns the planned wait and ctx.Err() if the
// wait was cut short.
func (b *Backoff) Sleep(ctx context.Context) (time.Duration, error) {
	// ±20%
	jitter := float64(b.current) * 0.2 * (b.jitter()*2 - 1)
	sleep := time.Duration(float64(b.current) + jitter)

	if err := b.wait(ctx, sleep); err != nil {
		return sleep, err
	}

	b.current *= 2
	if b.current > b.max {
		b.current = b.max
	}
	return sleep, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Reset resets the backoff to the initial duration.
func (b *Backoff) Reset() {
	b.current = b.initial
}

// Current returns the current backoff duration.
func (b *Backoff) Current() time.Duration {
	return b.current
}

// RetryConnect calls run up to retries+1 times, sleeping with b between
// attempts. Only sessions that failed to connect are retried: once a
// request head has gone out the collector may hold a partial upload.
func RetryConnect(ctx context.Context, retries int, b *Backoff, logger log.Logger, run func() (Result, error)) (Result, error) {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	for attempt := 0; ; attempt++ {
		res, err := run()
		if err == nil || attempt >= retries || !connectFailure(err) {
			return res, err
		}
		if ctx.Err() != nil {
			return res, err
		}
		logger.Warn("connect failed, retrying",
			log.Int("attempt", attempt+1),
			log.Duration("backoff", b.Current()),
			log.Err(err),
		)
		if _, werr := b.Sleep(ctx); werr != nil {
			return res, err
		}
	}
}

func connectFailure(err error) bool {
	var se *domain.SessionError
	return errors.As(err, &se) && se.State == domain.StateConnecting && errors.Is(err, domain.ErrConnect)
}
