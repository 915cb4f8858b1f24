package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ImageStore persists an image and returns a stable public URL for it.
type ImageStore interface {
	Save(ctx context.Context, ext string, r io.Reader) (string, error)
}

// LocalImageStore writes images under dir and serves them below publicBase.
type LocalImageStore struct {
	dir        string
	publicBase string
}

func NewLocalImageStore(dir, publicBase string) (*LocalImageStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalImageStore{dir: dir, publicBase: strings.TrimSuffix(publicBase, "/")}, nil
}

func (s *LocalImageStore) Save(ctx context.Context, ext string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := uuid.NewString() + ext
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", err
	}

	return s.publicBase + "/" + name, nil
}
