package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/JustJay7/fir-manager/pkg/logger"
)

// Local stores files under a root directory
type Local struct {
	root   string
	logger *logger.Logger
	now    func() time.Time
}

func NewLocal(root string, logger *logger.Logger) (*Local, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create media root: %w", err)
	}
	return &Local{root: root, logger: logger, now: time.Now}, nil
}

func (l *Local) Save(ctx context.Context, name string, r io.Reader) (string, int64, error) {
	ref := NewRef(l.now(), name)
	fullPath := filepath.Join(l.root, filepath.FromSlash(ref))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", 0, fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	size, err := io.Copy(file, r)
	if err != nil {
		os.Remove(fullPath)
		return "", 0, fmt.Errorf("failed to save file: %w", err)
	}

	l.logger.Debug("Evidence file stored", "ref", ref, "size", size)
	return ref, size, nil
}

func (l *Local) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	if err := validRef(ref); err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(l.root, filepath.FromSlash(ref)))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: %w", ref, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, nil
}

func (l *Local) Delete(ctx context.Context, ref string) error {
	if err := validRef(ref); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(l.root, filepath.FromSlash(ref)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove file: %w", err)
	}
	return nil
}
