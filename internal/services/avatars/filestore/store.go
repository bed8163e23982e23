// Package filestore persists avatar images in a single directory and names
// them by content-derived keys.
package filestore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrExists reports an exclusive write to a name that is already taken.
var ErrExists = fs.ErrExist

// Dir stores avatar files in one directory.
type Dir struct {
	root string
}

// Open prepares root for use, creating it when missing.
func Open(root string) (*Dir, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("avatar directory is required")
	}
	root = filepath.Clean(root)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create avatar directory: %w", err)
	}
	return &Dir{root: root}, nil
}

// Root returns the directory path.
func (d *Dir) Root() string {
	return d.root
}

// Path returns the location name would occupy.
func (d *Dir) Path(name string) string {
	return filepath.Join(d.root, filepath.Base(name))
}

// Exists reports whether name is stored.
func (d *Dir) Exists(name string) (bool, error) {
	info, err := os.Stat(d.Path(name))
	switch {
	case err == nil:
		return info.Mode().IsRegular(), nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("stat avatar %s: %w", name, err)
	}
}

// Put writes data under name, replacing any previous content. Readers never
// observe a partially written file.
func (d *Dir) Put(name string, data []byte) (string, error) {
	target := d.Path(name)
	tmp, err := os.CreateTemp(d.root, ".tmp-*"+Extension)
	if err != nil {
		return "", fmt.Errorf("create temp avatar: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return "", fmt.Errorf("write avatar %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", fmt.Errorf("close avatar %s: %w", name, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return "", fmt.Errorf("chmod avatar %s: %w", name, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		cleanup()
		return "", fmt.Errorf("rename avatar %s: %w", name, err)
	}
	return target, nil
}

// PutExclusive writes data under name only when name is free; otherwise it
// returns an error matching ErrExists.
func (d *Dir) PutExclusive(name string, data []byte) (string, error) {
	target := d.Path(name)
	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("avatar %s: %w", name, ErrExists)
		}
		return "", fmt.Errorf("create avatar %s: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(target)
		return "", fmt.Errorf("write avatar %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(target)
		return "", fmt.Errorf("close avatar %s: %w", name, err)
	}
	return target, nil
}

// Remove deletes name. Missing files are not an error.
func (d *Dir) Remove(name string) error {
	if err := os.Remove(d.Path(name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove avatar %s: %w", name, err)
	}
	return nil
}
