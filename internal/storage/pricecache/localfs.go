// internal/storage/pricecache/localfs.go
package pricecache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalFS implements Backend on the local filesystem
type LocalFS struct {
	basePath string
}

// NewLocalFS creates a new LocalFS backend
func NewLocalFS(basePath string) (*LocalFS, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("creating base path: %w", err)
	}
	return &LocalFS{basePath: basePath}, nil
}

func (l *LocalFS) fullPath(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("key %q escapes cache root", key)
	}
	return filepath.Join(l.basePath, clean), nil
}

// Write replaces the file atomically so concurrent readers never see a
// partial entry.
func (l *LocalFS) Write(ctx context.Context, key string, data []byte) error {
	fullPath, err := l.fullPath(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("creating directories: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(fullPath), ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), fullPath)
}

func (l *LocalFS) Read(ctx context.Context, key string) ([]byte, error) {
	fullPath, err := l.fullPath(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(fullPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

func (l *LocalFS) List(ctx context.Context, prefix string) ([]string, error) {
	searchPath, err := l.fullPath(prefix)
	if err != nil {
		return nil, err
	}

	keys := []string{}
	err = filepath.WalkDir(searchPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && !strings.HasPrefix(d.Name(), ".tmp-") {
			relPath, _ := filepath.Rel(l.basePath, path)
			keys = append(keys, filepath.ToSlash(relPath))
		}
		return nil
	})

	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	return keys, err
}

func (l *LocalFS) Delete(ctx context.Context, key string) error {
	fullPath, err := l.fullPath(key)
	if err != nil {
		return err
	}
	err = os.Remove(fullPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
