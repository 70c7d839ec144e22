// Package backup keeps local copies of the config as it was before each
// edit, so a change can be reverted by hand or with "nginx-route restore".
//
// Backups are plain files named <name>.backup.<YYYYmmdd_HHMMSS> in the
// backup directory, where <name> is the base name of the edited file.
package backup

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	securejoin "github.com/cyphar/filepath-securejoin"

	"github.com/phannguyenbuu/dinh-tot-dong/internal/system"
)

// TimestampFormat is the time layout used in backup file names.
const TimestampFormat = "20060102_150405"

const backupInfix = ".backup."

// maxCollisions bounds the _N suffixes tried for backups made in the same second.
const maxCollisions = 100

// Backup describes one saved copy.
type Backup struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
	Size      int64     `json:"size"`
}

// Store saves and lists backups in a directory.
type Store struct {
	dir string
	fs  system.FileSystem
}

// NewStore creates a backup store rooted at dir. A nil fsys uses the OS.
func NewStore(dir string, fsys system.FileSystem) *Store {
	if fsys == nil {
		fsys = system.DefaultFS()
	}
	return &Store{dir: dir, fs: fsys}
}

// Dir returns the backup directory.
func (s *Store) Dir() string {
	return s.dir
}

// NameFor returns the backup name for a config path: its base name.
func NameFor(configPath string) string {
	return filepath.Base(configPath)
}

// Save writes content as a new backup of name taken at the given time. An
// existing backup is never overwritten.
func (s *Store) Save(name string, content []byte, at time.Time) (*Backup, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := s.fs.MkdirAll(s.dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	stamp := at.Format(TimestampFormat)
	base := name + backupInfix + stamp

	id := base
	for n := 1; s.exists(id); n++ {
		if n > maxCollisions {
			return nil, fmt.Errorf("too many backups of %s at %s", name, stamp)
		}
		id = base + "_" + strconv.Itoa(n)
	}

	path := filepath.Join(s.dir, id)
	if err := s.fs.WriteFile(path, content, 0600); err != nil {
		return nil, fmt.Errorf("failed to write backup: %w", err)
	}

	return &Backup{
		ID:        id,
		Name:      name,
		Path:      path,
		Timestamp: at,
		Size:      int64(len(content)),
	}, nil
}

func (s *Store) exists(id string) bool {
	_, err := s.fs.Stat(filepath.Join(s.dir, id))
	return err == nil
}

// List returns backups newest first. An empty name lists every backup.
func (s *Store) List(name string) ([]Backup, error) {
	entries, err := s.fs.ReadDir(s.dir)
	if err != nil {
		if isNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var backups []Backup
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		b, ok := parseID(entry.Name())
		if !ok || (name != "" && b.Name != name) {
			continue
		}
		b.Path = filepath.Join(s.dir, b.ID)
		if info, err := entry.Info(); err == nil {
			b.Size = info.Size()
		}
		backups = append(backups, b)
	}

	sort.SliceStable(backups, func(i, j int) bool {
		if !backups[i].Timestamp.Equal(backups[j].Timestamp) {
			return backups[i].Timestamp.After(backups[j].Timestamp)
		}
		return backups[i].ID > backups[j].ID
	})
	return backups, nil
}

// Latest returns the newest backup of name.
func (s *Store) Latest(name string) (*Backup, error) {
	backups, err := s.List(name)
	if err != nil {
		return nil, err
	}
	if len(backups) == 0 {
		return nil, fmt.Errorf("no backups of %s in %s", name, s.dir)
	}
	return &backups[0], nil
}

// Load reads the backup with the given id. The id is resolved inside the
// backup directory; ids that would escape it are rejected.
func (s *Store) Load(id string) (*Backup, []byte, error) {
	b, ok := parseID(filepath.Base(id))
	if !ok || filepath.Base(id) != id {
		return nil, nil, fmt.Errorf("invalid backup id %q", id)
	}

	path, err := securejoin.SecureJoin(s.dir, id)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid backup id %q: %w", id, err)
	}

	data, err := s.fs.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read backup %s: %w", id, err)
	}

	b.Path = path
	b.Size = int64(len(data))
	return &b, data, nil
}

// parseID splits "<name>.backup.<stamp>[_N]" into its parts.
func parseID(id string) (Backup, bool) {
	i := strings.LastIndex(id, backupInfix)
	if i <= 0 {
		return Backup{}, false
	}
	name, stamp := id[:i], id[i+len(backupInfix):]

	if len(stamp) > len(TimestampFormat) {
		suffix, ok := strings.CutPrefix(stamp[len(TimestampFormat):], "_")
		if !ok {
			return Backup{}, false
		}
		if _, err := strconv.Atoi(suffix); err != nil {
			return Backup{}, false
		}
		stamp = stamp[:len(TimestampFormat)]
	}

	ts, err := time.ParseInLocation(TimestampFormat, stamp, time.Local)
	if err != nil {
		return Backup{}, false
	}
	return Backup{ID: id, Name: name, Timestamp: ts}, true
}

func validateName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid backup name %q", name)
	}
	return nil
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
