package mocks

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"sync"

	"github.com/user/clipforge/pkg/ports"
)

// FileSystem is an in-memory ports.FileSystem. Paths are cleaned before use
// and writing a file registers its parent directories, as the os adapter does.
type FileSystem struct {
	mu    sync.RWMutex
	files map[string][]byte
	dirs  map[string]bool

	bytesRead int64

	// WriteFileFunc overrides WriteFile, e.g. to inject a full disk.
	WriteFileFunc func(path string, data []byte) error
}

// NewFileSystem creates a new mock FileSystem.
func NewFileSystem() *FileSystem {
	return &FileSystem{
		files: make(map[string][]byte),
		dirs:  make(map[string]bool),
	}
}

func (m *FileSystem) ReadFile(path string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if data, ok := m.files[filepath.Clean(path)]; ok {
		return data, nil
	}
	return nil, fmt.Errorf("file not found: %s", path)
}

// Open returns a reader over a snapshot of the file. BytesRead counts the bytes
// read through every handle.
func (m *FileSystem) Open(path string) (io.ReadSeekCloser, error) {
	data, err := m.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &fileHandle{Reader: bytes.NewReader(data), fs: m}, nil
}

// BytesRead returns the total number of bytes read through Open handles.
func (m *FileSystem) BytesRead() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bytesRead
}

type fileHandle struct {
	*bytes.Reader
	fs *FileSystem
}

func (h *fileHandle) Read(p []byte) (int, error) {
	n, err := h.Reader.Read(p)
	h.fs.mu.Lock()
	h.fs.bytesRead += int64(n)
	h.fs.mu.Unlock()
	return n, err
}

func (h *fileHandle) Close() error { return nil }

func (m *FileSystem) WriteFile(path string, data []byte) error {
	if m.WriteFileFunc != nil {
		return m.WriteFileFunc(path, data)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	path = filepath.Clean(path)
	m.files[path] = append([]byte(nil), data...)
	m.addDirs(filepath.Dir(path))
	return nil
}

func (m *FileSystem) MkdirAll(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addDirs(filepath.Clean(path))
	return nil
}

func (m *FileSystem) addDirs(dir string) {
	for dir != "." && dir != string(filepath.Separator) && !m.dirs[dir] {
		m.dirs[dir] = true
		dir = filepath.Dir(dir)
	}
}

func (m *FileSystem) Exists(path string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	path = filepath.Clean(path)
	_, ok := m.files[path]
	return ok || m.dirs[path], nil
}

func (m *FileSystem) Remove(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = filepath.Clean(path)
	if _, ok := m.files[path]; !ok && !m.dirs[path] {
		return fmt.Errorf("file not found: %s", path)
	}
	delete(m.files, path)
	delete(m.dirs, path)
	return nil
}

// GetFile returns the contents of a file (for test verification).
func (m *FileSystem) GetFile(path string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.files[filepath.Clean(path)]
	return data, ok
}

// HasDir reports whether path was created as a directory.
func (m *FileSystem) HasDir(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dirs[filepath.Clean(path)]
}

// Paths returns all file paths in sorted order.
func (m *FileSystem) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	paths := make([]string, 0, len(m.files))
	for p := range m.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

var _ ports.FileSystem = (*FileSystem)(nil)
