package remote

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/phannguyenbuu/dinh-tot-dong/internal/logging"
	"github.com/phannguyenbuu/dinh-tot-dong/internal/system"
)

// LocalStore edits config files on the local filesystem.
type LocalStore struct {
	fs system.FileSystem
}

// NewLocalStore creates a store over fsys. A nil fsys uses the OS.
func NewLocalStore(fsys system.FileSystem) *LocalStore {
	if fsys == nil {
		fsys = system.DefaultFS()
	}
	return &LocalStore{fs: fsys}
}

func (s *LocalStore) ResolvePath(ctx context.Context, candidates []string) (string, error) {
	return resolve(ctx, candidates, func(path string) error {
		info, err := s.fs.Stat(path)
		if err != nil {
			return err
		}
		if info.IsDir() {
			return fmt.Errorf("%s is a directory", path)
		}
		return nil
	})
}

func (s *LocalStore) Read(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := s.fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// Write replaces path through a temporary file and a rename, keeping the
// existing file mode. A symlink at path is followed and the file it points
// to is replaced, so sites-enabled links keep working.
func (s *LocalStore) Write(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if resolved, err := s.fs.EvalSymlinks(path); err == nil {
		if resolved != path {
			logging.Debug("writing through symlink", "link", path, "target", resolved)
		}
		path = resolved
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	perm := fs.FileMode(0644)
	if info, err := s.fs.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	tmp := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+".nginx-route.tmp")
	if err := s.fs.WriteFile(tmp, data, perm); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		s.fs.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

func (s *LocalStore) Location() string {
	return "local"
}

func (s *LocalStore) Close() error {
	return nil
}
