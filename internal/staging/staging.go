// Package staging persists uploaded input payloads to the staging directory
// before a prediction run. Staged files accumulate; nothing here deletes
// them.
package staging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"
)

// Stager writes uploaded payloads into a fixed staging directory with
// collision-resistant names.
type Stager struct {
	dir string
	seq atomic.Uint64

	// now is swappable for tests.
	now func() time.Time
}

// New creates a Stager rooted at dir. The directory is created lazily on
// first stage.
func New(dir string) (*Stager, error) {
	if dir == "" {
		return nil, errors.New("staging directory is required")
	}
	return &Stager{dir: dir, now: time.Now}, nil
}

// Stage writes payload verbatim and returns the absolute path of the staged
// file. The name is input_<HHMMSS>_<seq><ext>: the wall-clock token keeps
// names short and human-orderable, the monotonic sequence makes two stagings
// within the same second land in distinct files.
func (s *Stager) Stage(payload []byte, originalName string) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create staging dir: %w", err)
	}

	name := fmt.Sprintf("input_%s_%d%s",
		s.now().Format("150405"),
		s.seq.Add(1),
		filepath.Ext(originalName),
	)

	path, err := filepath.Abs(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("resolve staged path: %w", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return "", fmt.Errorf("write staged input: %w", err)
	}
	return path, nil
}

// Contains reports whether path resolves inside the staging directory. Run
// requests only accept staged inputs, so arbitrary host paths never reach
// the predictor argv.
func (s *Stager) Contains(path string) bool {
	absDir, err := filepath.Abs(s.dir)
	if err != nil {
		return false
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(absDir, absPath)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Dir returns the configured staging directory.
func (s *Stager) Dir() string {
	return s.dir
}
