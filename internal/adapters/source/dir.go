// Package source implements ports.FrameSource for the capture setups camship
// supports: a spool directory filled by an external capture program, a
// capture command run once per frame, and a fixed list of image files.
package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/camship/internal/domain"
	"github.com/bft-labs/camship/pkg/log"
)

const pendingLimit = 64

// DirConfig configures a DirSource.
type DirConfig struct {
	// Dir is the spool directory the capture program writes into.
	Dir string

	// Pattern filters file names (filepath.Match syntax). Default "*.jpg".
	Pattern string

	// Timeout is how long one capture attempt waits for a new file.
	Timeout time.Duration

	// Remove deletes each file once it has been read.
	Remove bool
}

// DirSource yields the next image file that appears in a directory.
// Files should be moved into place atomically; a file is picked up on
// create or rename.
type DirSource struct {
	cfg     DirConfig
	logger  log.Logger
	watcher *fsnotify.Watcher

	pending chan string
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

// NewDirSource starts watching cfg.Dir. Files already present are ignored.
func NewDirSource(cfg DirConfig, logger log.Logger) (*DirSource, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("%w: spool directory is required", domain.ErrInvalidConfig)
	}
	if cfg.Pattern == "" {
		cfg.Pattern = "*.jpg"
	}
	if _, err := filepath.Match(cfg.Pattern, ""); err != nil {
		return nil, fmt.Errorf("%w: pattern %q: %v", domain.ErrInvalidConfig, cfg.Pattern, err)
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(cfg.Dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", cfg.Dir, err)
	}

	s := &DirSource{
		cfg:     cfg,
		logger:  logger,
		watcher: watcher,
		pending: make(chan string, pendingLimit),
		done:    make(chan struct{}),
	}
	s.wg.Add(1)
	go s.watchLoop()
	logger.Info("watching spool directory",
		log.String("dir", cfg.Dir),
		log.String("pattern", cfg.Pattern),
		log.Bool("remove", cfg.Remove),
	)
	return s, nil
}

func (s *DirSource) watchLoop() {
	defer s.wg.Done()
	for {
		select {
		case <-s.done:
			return
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			if ok, _ := filepath.Match(s.cfg.Pattern, filepath.Base(event.Name)); !ok {
				continue
			}
			select {
			case s.pending <- event.Name:
			default:
				s.logger.Warn("spool backlog full, dropping file", log.String("file", event.Name))
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("spool watcher error", log.Err(err))
		}
	}
}

// Capture returns the contents of the next new file, or domain.ErrNoFrame
// if none shows up within the timeout.
func (s *DirSource) Capture(ctx context.Context) (domain.Frame, error) {
	var timeout <-chan time.Time
	if s.cfg.Timeout > 0 {
		t := time.NewTimer(s.cfg.Timeout)
		defer t.Stop()
		timeout = t.C
	}

	select {
	case path := <-s.pending:
		data, err := os.ReadFile(path)
		if err != nil {
			return domain.Frame{}, fmt.Errorf("%w: read %s: %v", domain.ErrNoFrame, path, err)
		}
		if s.cfg.Remove {
			if err := os.Remove(path); err != nil {
				s.logger.Warn("remove spooled frame", log.String("file", path), log.Err(err))
			}
		}
		return domain.NewFrame(data), nil
	case <-timeout:
		return domain.Frame{}, domain.ErrNoFrame
	case <-ctx.Done():
		return domain.Frame{}, fmt.Errorf("%w: %v", domain.ErrNoFrame, ctx.Err())
	case <-s.done:
		return domain.Frame{}, fmt.Errorf("%w: source closed", domain.ErrNoFrame)
	}
}

// Close stops watching the directory.
func (s *DirSource) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.watcher.Close()
		s.wg.Wait()
	})
	return err
}
