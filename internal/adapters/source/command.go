package source

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/bft-labs/camship/internal/domain"
	"github.com/bft-labs/camship/pkg/log"
)

// CommandSource runs a capture command per frame and takes its stdout as
// the encoded image, e.g. `libcamera-still -n -t 1 -o -`.
type CommandSource struct {
	name    string
	args    []string
	timeout time.Duration
	logger  log.Logger
}

// NewCommandSource creates a source running argv[0] with argv[1:].
func NewCommandSource(argv []string, timeout time.Duration, logger log.Logger) (*CommandSource, error) {
	if len(argv) == 0 || argv[0] == "" {
		return nil, fmt.Errorf("%w: capture command is required", domain.ErrInvalidConfig)
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &CommandSource{name: argv[0], args: argv[1:], timeout: timeout, logger: logger}, nil
}

// Capture runs the command once. A failing or timed out command is a
// skipped frame, not a fatal error.
func (s *CommandSource) Capture(ctx context.Context) (domain.Frame, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, s.name, s.args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			s.logger.Debug("capture command stderr", log.String("stderr", stderr.String()))
		}
		return domain.Frame{}, fmt.Errorf("%w: %s: %v", domain.ErrNoFrame, s.name, err)
	}
	return domain.NewFrame(stdout.Bytes()), nil
}

// Close is a no-op; each capture owns its process.
func (s *CommandSource) Close() error {
	return nil
}
