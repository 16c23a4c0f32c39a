package repo

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidBlobRef — ссылка не является простым именем файла.
var ErrInvalidBlobRef = errors.New("invalid blob reference")

type fsBlobRepo struct {
	dir string
}

// NewFSBlobRepository создаёт хранилище файлов в каталоге dir (каталог создаётся при необходимости).
func NewFSBlobRepository(dir string) (BlobRepository, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &fsBlobRepo{dir: dir}, nil
}

func (r *fsBlobRepo) path(ref string) (string, error) {
	if ref == "" || ref != filepath.Base(ref) || strings.HasPrefix(ref, ".") {
		return "", ErrInvalidBlobRef
	}
	return filepath.Join(r.dir, ref), nil
}

func (r *fsBlobRepo) CreateIfAbsent(ctx context.Context, ref string, data []byte) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	p, err := r.path(ref)
	if err != nil {
		return false, err
	}
	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if errors.Is(err, fs.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(p)
		return false, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(p)
		return false, err
	}
	return true, nil
}

func (r *fsBlobRepo) Get(ctx context.Context, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := r.path(ref)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrBlobNotFound
	}
	return b, err
}

func (r *fsBlobRepo) Delete(ctx context.Context, ref string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := r.path(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
