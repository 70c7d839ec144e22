package system

import (
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// MockFS implements FileSystem in memory for testing.
type MockFS struct {
	mu    sync.RWMutex
	files map[string]*mockFile
	dirs  map[string]bool
	links map[string]string

	// Error injection
	ReadFileErr  error
	WriteFileErr error
	RenameErr    error
	StatErr      error
	MkdirAllErr  error
	ReadDirErr   error
}

type mockFile struct {
	data    []byte
	mode    fs.FileMode
	modTime time.Time
}

// NewMockFS creates a new MockFS with an empty filesystem.
func NewMockFS() *MockFS {
	return &MockFS{
		files: make(map[string]*mockFile),
		dirs:  make(map[string]bool),
		links: make(map[string]string),
	}
}

// AddFile adds a file and its parent directories.
func (m *MockFS) AddFile(path string, data []byte, mode fs.FileMode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putLocked(path, data, mode)
}

// AddSymlink makes link point at target. Only the final path element is
// followed; a relative target is resolved against the link's directory.
func (m *MockFS) AddSymlink(link, target string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.links[link] = target
	for dir := filepath.Dir(link); dir != "." && dir != "/"; dir = filepath.Dir(dir) {
		m.dirs[dir] = true
	}
}

// IsSymlink reports whether path is a symlink.
func (m *MockFS) IsSymlink(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.links[path]
	return ok
}

// maxLinks matches the limit filepath.EvalSymlinks applies.
const maxLinks = 255

func (m *MockFS) resolveLocked(path string) (string, error) {
	for i := 0; i < maxLinks; i++ {
		target, ok := m.links[path]
		if !ok {
			return path, nil
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(path), target)
		}
		path = target
	}
	return "", &fs.PathError{Op: "lstat", Path: path, Err: errors.New("too many links")}
}

// GetFile returns the contents of a file in the mock filesystem.
func (m *MockFS) GetFile(path string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if resolved, err := m.resolveLocked(path); err == nil {
		path = resolved
	}
	f, ok := m.files[path]
	if !ok {
		return nil, false
	}
	return f.data, true
}

// Files returns the sorted paths of all files.
func (m *MockFS) Files() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	paths := make([]string, 0, len(m.files))
	for p := range m.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func (m *MockFS) putLocked(path string, data []byte, mode fs.FileMode) {
	buf := make([]byte, len(data))
	copy(buf, data)
	m.files[path] = &mockFile{data: buf, mode: mode, modTime: time.Now()}
	for dir := filepath.Dir(path); dir != "." && dir != "/"; dir = filepath.Dir(dir) {
		m.dirs[dir] = true
	}
}

func (m *MockFS) ReadFile(path string) ([]byte, error) {
	if m.ReadFileErr != nil {
		return nil, m.ReadFileErr
	}
	data, ok := m.GetFile(path)
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *MockFS) WriteFile(path string, data []byte, perm fs.FileMode) error {
	if m.WriteFileErr != nil {
		return m.WriteFileErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	path, err := m.resolveLocked(path)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." && dir != "/" && !m.dirs[dir] {
		return &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	m.putLocked(path, data, perm)
	return nil
}

func (m *MockFS) Rename(oldpath, newpath string) error {
	if m.RenameErr != nil {
		return m.RenameErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[oldpath]
	if !ok {
		return &fs.PathError{Op: "rename", Path: oldpath, Err: fs.ErrNotExist}
	}
	delete(m.files, oldpath)
	delete(m.links, newpath)
	m.files[newpath] = f
	return nil
}

func (m *MockFS) Remove(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[path]; ok {
		delete(m.files, path)
		return nil
	}
	if _, ok := m.links[path]; ok {
		delete(m.links, path)
		return nil
	}
	if m.dirs[path] {
		delete(m.dirs, path)
		return nil
	}
	return &fs.PathError{Op: "remove", Path: path, Err: fs.ErrNotExist}
}

func (m *MockFS) Stat(path string) (fs.FileInfo, error) {
	if m.StatErr != nil {
		return nil, m.StatErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	path, err := m.resolveLocked(path)
	if err != nil {
		return nil, err
	}
	if f, ok := m.files[path]; ok {
		return &mockFileInfo{name: filepath.Base(path), size: int64(len(f.data)), mode: f.mode, modTime: f.modTime}, nil
	}
	if m.dirs[path] {
		return &mockFileInfo{name: filepath.Base(path), isDir: true, mode: fs.ModeDir | 0755}, nil
	}
	return nil, &fs.PathError{Op: "stat", Path: path, Err: fs.ErrNotExist}
}

func (m *MockFS) MkdirAll(path string, perm fs.FileMode) error {
	if m.MkdirAllErr != nil {
		return m.MkdirAllErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for dir := path; dir != "." && dir != "/"; dir = filepath.Dir(dir) {
		m.dirs[dir] = true
	}
	return nil
}

func (m *MockFS) ReadDir(path string) ([]fs.DirEntry, error) {
	if m.ReadDirErr != nil {
		return nil, m.ReadDirErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.dirs[path] {
		return nil, &fs.PathError{Op: "readdir", Path: path, Err: fs.ErrNotExist}
	}

	var entries []fs.DirEntry
	for p, f := range m.files {
		if filepath.Dir(p) == path {
			entries = append(entries, &mockDirEntry{info: mockFileInfo{name: filepath.Base(p), size: int64(len(f.data)), mode: f.mode, modTime: f.modTime}})
		}
	}
	for p := range m.dirs {
		if filepath.Dir(p) == path {
			entries = append(entries, &mockDirEntry{info: mockFileInfo{name: filepath.Base(p), isDir: true, mode: fs.ModeDir | 0755}})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	return entries, nil
}

func (m *MockFS) EvalSymlinks(path string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	resolved, err := m.resolveLocked(path)
	if err != nil {
		return "", err
	}
	if _, ok := m.files[resolved]; !ok && !m.dirs[resolved] {
		return "", &fs.PathError{Op: "lstat", Path: resolved, Err: fs.ErrNotExist}
	}
	return resolved, nil
}

// mockFileInfo implements fs.FileInfo for testing.
type mockFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
	isDir   bool
}

func (m *mockFileInfo) Name() string       { return m.name }
func (m *mockFileInfo) Size() int64        { return m.size }
func (m *mockFileInfo) Mode() fs.FileMode  { return m.mode }
func (m *mockFileInfo) ModTime() time.Time { return m.modTime }
func (m *mockFileInfo) IsDir() bool        { return m.isDir }
func (m *mockFileInfo) Sys() interface{}   { return nil }

// mockDirEntry implements fs.DirEntry for testing.
type mockDirEntry struct {
	info mockFileInfo
}

func (m *mockDirEntry) Name() string               { return m.info.name }
func (m *mockDirEntry) IsDir() bool                { return m.info.isDir }
func (m *mockDirEntry) Type() fs.FileMode          { return m.info.mode.Type() }
func (m *mockDirEntry) Info() (fs.FileInfo, error) { info := m.info; return &info, nil }
