package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bft-labs/camship/internal/domain"
)

// recordingWait records backoff waits without sleeping.
type recordingWait struct {
	waits []time.Duration
}

func (r *recordingWait) wait(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.waits = append(r.waits, d)
	return nil
}

func newTestBackoff(initial, max time.Duration) (*Backoff, *recordingWait) {
	rec := &recordingWait{}
	b := NewBackoff(initial, max)
	b.wait = rec.wait
	b.jitter = func() float64 { return 0.5 } // no jitter
	return b, rec
}

func TestBackoff_Sleep(t *testing.T) {
	b, rec := newTestBackoff(100*time.Millisecond, 300*time.Millisecond)

	for i, want := range []time.Duration{100, 200, 300, 300} {
		got, err := b.Sleep(context.Background())
		if err != nil {
			t.Fatalf("sleep %d: %v", i, err)
		}
		if got != want*time.Millisecond {
			t.Errorf("sleep %d = %v, want %v", i, got, want*time.Millisecond)
		}
	}
	if got := len(rec.waits); got != 4 {
		t.Errorf("waited %d times, want 4", got)
	}

	b.Reset()
	if b.Current() != 100*time.Millisecond {
		t.Errorf("Current() after Reset = %v", b.Current())
	}
}

func TestBackoff_JitterBounds(t *testing.T) {
	b, _ := newTestBackoff(time.Second, time.Second)
	for _, j := range []float64{0, 1} {
		b.jitter = func() float64 { return j }
		got, _ := b.Sleep(context.Background())
		if got < 800*time.Millisecond || got > 1200*time.Millisecond {
			t.Errorf("jitter %v gave %v", j, got)
		}
	}
}

func TestBackoff_SleepReturnsOnCancel(t *testing.T) {
	b := NewBackoff(10*time.Second, 10*time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	start := time.Now()
	_, err := b.Sleep(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Sleep() error = %v, want context.Canceled", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Sleep() took %v after cancel", elapsed)
	}
	if b.Current() != 10*time.Second {
		t.Errorf("Current() = %v, cancelled wait must not grow the backoff", b.Current())
	}
}

func connectErr() error {
	return &domain.SessionError{State: domain.StateConnecting, Err: domain.ErrConnect}
}

func TestRetryConnect(t *testing.T) {
	streamErr := &domain.SessionError{State: domain.StateStreaming, Err: errors.New("broken pipe")}

	tests := []struct {
		name      string
		retries   int
		errs      []error
		wantCalls int
		wantErr   bool
	}{
		{name: "first attempt succeeds", retries: 3, errs: []error{nil}, wantCalls: 1},
		{name: "connect failures then success", retries: 3, errs: []error{connectErr(), connectErr(), nil}, wantCalls: 3},
		{name: "retries exhausted", retries: 2, errs: []error{connectErr(), connectErr(), connectErr(), nil}, wantCalls: 3, wantErr: true},
		{name: "mid-stream failure is not retried", retries: 3, errs: []error{streamErr, nil}, wantCalls: 1, wantErr: true},
		{name: "zero retries", retries: 0, errs: []error{connectErr(), nil}, wantCalls: 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, rec := newTestBackoff(time.Millisecond, time.Second)
			calls := 0
			_, err := RetryConnect(context.Background(), tt.retries, b, nil, func() (Result, error) {
				err := tt.errs[calls]
				calls++
				return Result{}, err
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got := len(rec.waits); got != tt.wantCalls-1 {
				t.Errorf("backoff waits = %d, want %d", got, tt.wantCalls-1)
			}
		})
	}
}

func TestRetryConnect_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b, _ := newTestBackoff(time.Millisecond, time.Second)
	calls := 0
	_, err := RetryConnect(ctx, 5, b, nil, func() (Result, error) {
		calls++
		return Result{}, connectErr()
	})
	if calls != 1 || !errors.Is(err, domain.ErrConnect) {
		t.Errorf("calls = %d, err = %v", calls, err)
	}
}

func TestRetryConnect_CancelDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	b := NewBackoff(10*time.Second, 10*time.Second)
	calls := 0

	start := time.Now()
	_, err := RetryConnect(ctx, 5, b, nil, func() (Result, error) {
		calls++
		time.AfterFunc(20*time.Millisecond, cancel)
		return Result{}, connectErr()
	})
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if !errors.Is(err, domain.ErrConnect) {
		t.Errorf("err = %v, want the connect failure", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("RetryConnect took %v after cancel", elapsed)
	}
}
