package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileBackend stores the state as a single JSON document on disk.
// Saves write a temp file in the same directory, fsync it, and rename it
// over the target, so readers never observe a partial document.
type FileBackend struct {
	path string
}

// NewFileBackend returns a backend for the document at path. The file is
// created on the first Save.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

// Path returns the document path.
func (b *FileBackend) Path() string {
	return b.path
}

// Load reads and validates the document.
func (b *FileBackend) Load(ctx context.Context) (*State, error) {
	if err := ctx.Err(); err != nil {
		return nil, b.fail("load", err)
	}

	data, err := os.ReadFile(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewState(), nil
	}
	if err != nil {
		return nil, b.fail("load", err)
	}

	s, err := Decode(data)
	if err != nil {
		return nil, b.fail("load", err)
	}
	return s, nil
}

// Save atomically replaces the document with s.
func (b *FileBackend) Save(ctx context.Context, s *State) error {
	if err := ctx.Err(); err != nil {
		return b.fail("save", err)
	}

	data, err := Encode(s)
	if err != nil {
		return b.fail("save", err)
	}
	if err := writeFileAtomic(b.path, data); err != nil {
		return b.fail("save", err)
	}
	return nil
}

// Close is a no-op; FileBackend holds no open handles between calls.
func (b *FileBackend) Close() error {
	return nil
}

func (b *FileBackend) fail(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Backend: "file", Path: b.path, Err: err}
}

func writeFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err = os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
