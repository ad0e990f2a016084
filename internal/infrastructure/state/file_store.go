package state

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
)

// FileStore keeps the state document in a single JSON file. Writes go to a
// sibling temp file first and are renamed into place.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load(ctx context.Context) (StoredState, error) {
	if err := ctx.Err(); err != nil {
		return StoredState{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Empty(), nil
	}
	if err != nil {
		return StoredState{}, crerr.Wrapf(err, "read state file %s", s.path)
	}
	return Migrate(raw)
}

func (s *FileStore) Save(ctx context.Context, st StoredState) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	st = normalize(st)
	payload, err := sonic.ConfigStd.MarshalIndent(st, "", "  ")
	if err != nil {
		return crerr.Wrap(err, "encode state")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return crerr.Wrapf(err, "create state dir %s", dir)
	}
	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return crerr.Wrap(err, "create temp state file")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		return crerr.Wrap(err, "write temp state file")
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return crerr.Wrap(err, "sync temp state file")
	}
	if err := tmp.Close(); err != nil {
		return crerr.Wrap(err, "close temp state file")
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return crerr.Wrapf(err, "replace state file %s", s.path)
	}
	return nil
}
