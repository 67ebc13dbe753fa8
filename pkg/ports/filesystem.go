package ports

import "io"

// FileSystem abstracts file system operations used for path-backed sources,
// rendered artifacts and debug output.
type FileSystem interface {
	// ReadFile reads the entire contents of a file.
	ReadFile(path string) ([]byte, error)

	// Open opens a file for random access reads, so callers can read
	// container headers without loading the media payload.
	Open(path string) (io.ReadSeekCloser, error)

	// WriteFile writes data to a file, creating it if necessary.
	WriteFile(path string, data []byte) error

	// MkdirAll creates a directory and all parent directories.
	MkdirAll(path string) error

	// Exists checks if a file or directory exists.
	Exists(path string) (bool, error)

	// Remove deletes a file or empty directory.
	Remove(path string) error
}
