package snapshot

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"

	apperrors "github.com/matzehuels/agentcanvas/pkg/errors"
)

// FileStore persists the snapshot as a single JSON file.
// The containing directory is created on first save if absent.
type FileStore struct {
	mu     sync.Mutex
	path   string
	logger *log.Logger
}

// NewFileStore creates a file-backed snapshot store at the given path.
// A nil logger discards diagnostics.
func NewFileStore(path string, logger *log.Logger) (*FileStore, error) {
	if err := apperrors.ValidateSnapshotPath(path); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &FileStore{path: path, logger: logger}, nil
}

// Path returns the snapshot file path.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Save(ctx context.Context, snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := Marshal(snap)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeSnapshotIO, err, "marshal snapshot")
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return apperrors.Wrap(apperrors.ErrCodeSnapshotIO, err, "create snapshot dir %s", dir)
		}
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeSnapshotIO, err, "write snapshot file %s", s.path)
	}
	return nil
}

func (s *FileStore) Load(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Snapshot{}, nil
		}
		return Snapshot{}, apperrors.Wrap(apperrors.ErrCodeSnapshotIO, err, "read snapshot file %s", s.path)
	}

	snap, err := Decode(data, s.logger)
	if err != nil {
		// Malformed document: start from empty rather than failing startup.
		s.logger.Warn("snapshot file is malformed, starting empty", "path", s.path, "error", err)
		return Snapshot{}, nil
	}
	return snap, nil
}

func (s *FileStore) Close() error { return nil }

var _ Store = (*FileStore)(nil)
