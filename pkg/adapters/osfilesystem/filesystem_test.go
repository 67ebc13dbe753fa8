package osfilesystem

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestFileSystem_WriteAndReadFile(t *testing.T) {
	fsys := New()
	path := filepath.Join(t.TempDir(), "out.mp4")

	if err := fsys.WriteFile(path, []byte("hello world")); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	data, err := fsys.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "hello world" {
		t.Errorf("got %q", data)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0644 {
		t.Errorf("mode = %v, want 0644", info.Mode().Perm())
	}
}

func TestFileSystem_WriteFileReplaces(t *testing.T) {
	fsys := New()
	dir := t.TempDir()
	path := filepath.Join(dir, "thumb.jpg")

	if err := fsys.WriteFile(path, []byte("first version")); err != nil {
		t.Fatal(err)
	}
	if err := fsys.WriteFile(path, []byte("v2")); err != nil {
		t.Fatal(err)
	}
	data, _ := fsys.ReadFile(path)
	if string(data) != "v2" {
		t.Errorf("got %q, want v2", data)
	}

	// No temporary files are left behind.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want 1", len(entries))
	}
}

func TestFileSystem_WriteFileCreatesParentDirs(t *testing.T) {
	fsys := New()
	path := filepath.Join(t.TempDir(), "a", "b", "c", "frame-0001.png")

	if err := fsys.WriteFile(path, []byte("test")); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	exists, err := fsys.Exists(path)
	if err != nil || !exists {
		t.Errorf("Exists() = %v, %v", exists, err)
	}
}

func TestFileSystem_WriteFileIntoFileFails(t *testing.T) {
	fsys := New()
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if err := fsys.WriteFile(filepath.Join(blocker, "out.webm"), []byte("x")); err == nil {
		t.Error("expected error when the parent is a regular file")
	}
}

func TestFileSystem_ExistsAndRemove(t *testing.T) {
	fsys := New()
	dir := t.TempDir()
	path := filepath.Join(dir, "debug.json")

	exists, err := fsys.Exists(path)
	if err != nil || exists {
		t.Fatalf("Exists() before write = %v, %v", exists, err)
	}
	if err := fsys.MkdirAll(filepath.Join(dir, "nested")); err != nil {
		t.Fatal(err)
	}
	if exists, _ := fsys.Exists(filepath.Join(dir, "nested")); !exists {
		t.Error("expected directory to exist")
	}

	if err := fsys.WriteFile(path, []byte("{}")); err != nil {
		t.Fatal(err)
	}
	if err := fsys.Remove(path); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if exists, _ := fsys.Exists(path); exists {
		t.Error("expected file to be removed")
	}
}

func TestFileSystem_OpenSeeks(t *testing.T) {
	fsys := New()
	path := filepath.Join(t.TempDir(), "clip.mp4")
	if err := fsys.WriteFile(path, []byte("ftypmoovmdat")); err != nil {
		t.Fatal(err)
	}

	f, err := fsys.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()

	if _, err := f.Seek(4, io.SeekStart); err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 4)
	if _, err := io.ReadFull(f, buf); err != nil {
		t.Fatal(err)
	}
	if string(buf) != "moov" {
		t.Errorf("read %q, want moov", buf)
	}

	if _, err := fsys.Open(filepath.Join(t.TempDir(), "missing.mp4")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
