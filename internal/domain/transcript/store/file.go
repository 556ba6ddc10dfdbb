package store

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bytedance/sonic"

	platformerrors "voicerag-server-go/internal/platform/errors"
)

// FileStore appends one JSON object per line to a log file.
type FileStore struct {
	mu   sync.Mutex
	file *os.File
}

func NewFileStore(path string) (*FileStore, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, platformerrors.Wrap(platformerrors.KindStorage, "file store",
				"failed to create transcript directory", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindStorage, "file store",
			"failed to open transcript log", err)
	}

	return &FileStore{file: f}, nil
}

func (s *FileStore) Append(ctx context.Context, rec Record) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	line, err := sonic.Marshal(rec)
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindStorage, "file store",
			"failed to encode record", err)
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.file.Write(line); err != nil {
		return platformerrors.Wrap(platformerrors.KindStorage, "file store",
			"failed to append record", err)
	}
	return nil
}

func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}
