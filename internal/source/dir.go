// Package source resolves record names to bytes on the local filesystem.
package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hengadev/recordseal/internal/sealerr"
)

// Dir reads and writes named artifacts below a root directory.
type Dir struct {
	root string
}

// NewDir returns a Dir rooted at root. The directory is created on first write.
func NewDir(root string) (*Dir, error) {
	if root == "" {
		return nil, fmt.Errorf("%w: source directory cannot be empty", sealerr.ErrInvalidConfiguration)
	}
	return &Dir{root: root}, nil
}

// Root returns the directory artifacts are resolved against.
func (d *Dir) Root() string {
	return d.root
}

func (d *Dir) resolve(name string) (string, error) {
	if !filepath.IsLocal(name) {
		return "", fmt.Errorf("%w: name '%s' escapes the source directory", sealerr.ErrNotFound, name)
	}
	return filepath.Join(d.root, name), nil
}

// Ping checks that the root exists and is a directory.
func (d *Dir) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	info, err := os.Stat(d.root)
	if errors.Is(err, fs.ErrNotExist) {
		return sealerr.NewNotFoundError(d.root, sealerr.Load)
	}
	if err != nil {
		return fmt.Errorf("failed to stat '%s': %w", d.root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: source root '%s' is not a directory", sealerr.ErrInvalidConfiguration, d.root)
	}
	return nil
}

// Get returns the content stored under name.
func (d *Dir) Get(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := d.resolve(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, sealerr.NewNotFoundError(path, sealerr.Load)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read '%s': %w", path, err)
	}
	return data, nil
}

// Put atomically replaces the content stored under name.
func (d *Dir) Put(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := d.resolve(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create directory for '%s': %w", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file for '%s': %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write '%s': %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close '%s': %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move '%s' into place: %w", path, err)
	}
	return nil
}
