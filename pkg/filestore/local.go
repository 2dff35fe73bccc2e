// Package filestore provides the on-disk backing store for supporting documents.
package filestore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Local stores files under a single base directory. Stored paths returned by
// Save are relative to that directory so the base can move between deployments.
type Local struct {
	baseDir string
}

// NewLocal creates the base directory if needed and returns the store.
func NewLocal(baseDir string) (*Local, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("upload directory must not be empty")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &Local{baseDir: baseDir}, nil
}

// Save writes the reader's contents under the given name and returns the
// stored relative path.
func (l *Local) Save(ctx context.Context, name string, reader io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	target := filepath.Join(l.baseDir, filepath.Base(name))
	out, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(out, reader); err != nil {
		out.Close()
		os.Remove(target)
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(target)
		return "", fmt.Errorf("failed to close file: %w", err)
	}

	return filepath.Base(name), nil
}

// Open reads the full contents of a stored file.
func (l *Local) Open(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(l.baseDir, filepath.Base(path)))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

// Remove deletes a stored file. A missing file is not an error; the record
// is the source of truth and orphaned deletes should not block callers.
func (l *Local) Remove(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := os.Remove(filepath.Join(l.baseDir, filepath.Base(path)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove file: %w", err)
	}
	return nil
}
