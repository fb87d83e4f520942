package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/camship/internal/domain"
)

func TestCollector_Counts(t *testing.T) {
	c := NewCollector("camship")

	c.OnFrameSent(0, 1024, 0)
	c.OnFrameSent(2, 2048, 150*time.Millisecond)
	c.OnFrameSkipped(1, domain.ErrNoFrame)
	c.OnFrameSkipped(3, errors.New("sensor timeout"))
	c.OnStateChange(domain.StateAwaitingResponse, domain.StateClosed)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.framesSent))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.framesSkipped.WithLabelValues("no_frame")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.framesSkipped.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.sessions.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.transitions.WithLabelValues("Closed")))
}

func TestCollector_AbortOutcomeNamesState(t *testing.T) {
	c := NewCollector("camship")
	c.OnStateChange(domain.StateStreaming, domain.StateAborted)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.sessions.WithLabelValues("aborted_Streaming")))
}

func TestCollector_WriteTextfile(t *testing.T) {
	c := NewCollector("camship")
	c.OnFrameSent(0, 4096, 0)

	path := filepath.Join(t.TempDir(), "camship.prom")
	require.NoError(t, c.WriteTextfile(path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(b), "camship_frames_sent_total 1"))
}
