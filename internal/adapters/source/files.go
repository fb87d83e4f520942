package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bft-labs/camship/internal/domain"
)

// FileSource replays a fixed set of image files in name order, wrapping
// around at the end. It stands in for a camera in tests and dry runs.
type FileSource struct {
	paths []string
	next  int
}

// NewFileSource expands glob into the replay list.
func NewFileSource(glob string) (*FileSource, error) {
	paths, err := filepath.Glob(glob)
	if err != nil {
		return nil, fmt.Errorf("%w: glob %q: %v", domain.ErrInvalidConfig, glob, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no files match %q", domain.ErrInvalidConfig, glob)
	}
	sort.Strings(paths)
	return &FileSource{paths: paths}, nil
}

// Capture reads the next file. An unreadable file is a skipped frame.
func (s *FileSource) Capture(ctx context.Context) (domain.Frame, error) {
	path := s.paths[s.next%len(s.paths)]
	s.next++
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Frame{}, fmt.Errorf("%w: %v", domain.ErrNoFrame, err)
	}
	return domain.NewFrame(data), nil
}

// Close is a no-op.
func (s *FileSource) Close() error {
	return nil
}
