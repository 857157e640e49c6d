package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

// BaseDir returns the root data directory (~/.lumina).
func BaseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".lumina"), nil
}

var validKey = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// FileKV stores each key as a JSON file under <base>/state.
type FileKV struct {
	dir string
}

// NewFileKV returns a FileKV rooted at base. The directory is created on the
// first write.
func NewFileKV(base string) *FileKV {
	return &FileKV{dir: filepath.Join(base, "state")}
}

// keyPath returns the file holding key.
func (f *FileKV) keyPath(key string) (string, error) {
	if !validKey.MatchString(key) {
		return "", fmt.Errorf("storage error: invalid key %q", key)
	}
	return filepath.Join(f.dir, key+".json"), nil
}

// Get reads the raw value for key, or ErrNotFound.
func (f *FileKV) Get(key string) ([]byte, error) {
	path, err := f.keyPath(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage error reading %s: %w", path, err)
	}
	return data, nil
}

// Set atomically writes value for key.
func (f *FileKV) Set(key string, value []byte) error {
	path, err := f.keyPath(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(f.dir, 0o700); err != nil {
		return fmt.Errorf("storage error creating directories: %w", err)
	}

	// Atomic write: write to temp file then rename.
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, value, 0o600); err != nil {
		return fmt.Errorf("storage error writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage error renaming temp file: %w", err)
	}
	return nil
}

// Delete removes key, returning ErrNotFound when it was never written.
func (f *FileKV) Delete(key string) error {
	path, err := f.keyPath(key)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if errors.Is(err, os.ErrNotExist) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("storage error removing %s: %w", path, err)
	}
	return nil
}

// SetBatch stages every value in a temp file before renaming any of them into
// place, so a write failure leaves all keys at their previous values.
func (f *FileKV) SetBatch(entries []Entry) error {
	type staged struct{ tmp, path string }
	var (
		renames []staged
		deletes []string
	)
	cleanup := func() {
		for _, st := range renames {
			_ = os.Remove(st.tmp)
		}
	}

	for _, e := range entries {
		path, err := f.keyPath(e.Key)
		if err != nil {
			cleanup()
			return err
		}
		if e.Value == nil {
			deletes = append(deletes, path)
			continue
		}
		if err := os.MkdirAll(f.dir, 0o700); err != nil {
			cleanup()
			return fmt.Errorf("storage error creating directories: %w", err)
		}
		tmpPath := path + ".tmp"
		if err := os.WriteFile(tmpPath, e.Value, 0o600); err != nil {
			cleanup()
			return fmt.Errorf("storage error writing temp file: %w", err)
		}
		renames = append(renames, staged{tmp: tmpPath, path: path})
	}

	for _, st := range renames {
		if err := os.Rename(st.tmp, st.path); err != nil {
			cleanup()
			return fmt.Errorf("storage error renaming temp file: %w", err)
		}
	}
	for _, path := range deletes {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("storage error removing %s: %w", path, err)
		}
	}
	return nil
}

// Quarantine moves the file for key to <file>.corrupt and returns the new path.
func (f *FileKV) Quarantine(key string) (string, error) {
	path, err := f.keyPath(key)
	if err != nil {
		return "", err
	}
	backupPath := path + ".corrupt"
	if err := os.Rename(path, backupPath); err != nil {
		return "", fmt.Errorf("storage error backing up %s: %w", path, err)
	}
	return backupPath, nil
}

// Open returns the KV for backend ("file", "sqlite" or "memory") rooted at
// base, together with a function releasing it.
func Open(backend, base string) (KV, func() error, error) {
	noop := func() error { return nil }
	switch backend {
	case "", "file":
		return NewFileKV(base), noop, nil
	case "sqlite":
		kv, err := OpenSQLite(base)
		if err != nil {
			return nil, noop, err
		}
		return kv, kv.Close, nil
	case "memory":
		return NewMemoryKV(), noop, nil
	}
	return nil, noop, fmt.Errorf("unknown storage backend %q (want file, sqlite or memory)", backend)
}
