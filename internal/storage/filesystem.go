package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// Filesystem stores files under a local root directory. It is the
// development backend and the test double for the S3 backend.
type Filesystem struct {
	root   string
	logger *slog.Logger
}

func NewFilesystem(root string, logger *slog.Logger) *Filesystem {
	if logger == nil {
		logger = slog.Default()
	}
	return &Filesystem{root: root, logger: logger}
}

func (f *Filesystem) path(directory, name string) string {
	return filepath.Join(f.root, filepath.FromSlash(directory), name)
}

func (f *Filesystem) GetFile(_ context.Context, directory, name string) (io.ReadCloser, error) {
	file, err := os.Open(f.path(directory, name))
	if err != nil {
		return nil, fmt.Errorf("open %s/%s: %w", directory, name, err)
	}
	return file, nil
}

func (f *Filesystem) SaveFile(_ context.Context, directory, name string, r io.Reader) error {
	dst := f.path(directory, name)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", directory, err)
	}
	file, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s/%s: %w", directory, name, err)
	}
	if _, err := io.Copy(file, r); err != nil {
		file.Close()
		return fmt.Errorf("write %s/%s: %w", directory, name, err)
	}
	return file.Close()
}

func (f *Filesystem) MoveFile(ctx context.Context, srcDir, srcName, dstDir, dstName string) error {
	src := f.path(srcDir, srcName)
	dst := f.path(dstDir, dstName)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dstDir, err)
	}
	if err := os.Rename(src, dst); err == nil {
		f.logger.Debug("moved file", "from", src, "to", dst)
		return nil
	}
	// Rename fails across filesystems; fall back to copy + delete.
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("move %s/%s: %w", srcDir, srcName, err)
	}
	defer in.Close()
	if err := f.SaveFile(ctx, dstDir, dstName, in); err != nil {
		return err
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("remove source %s/%s: %w", srcDir, srcName, err)
	}
	f.logger.Debug("moved file", "from", src, "to", dst)
	return nil
}

func (f *Filesystem) FileExists(_ context.Context, directory, name string) (bool, error) {
	_, err := os.Stat(f.path(directory, name))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat %s/%s: %w", directory, name, err)
}

func (f *Filesystem) DeleteFile(_ context.Context, directory, name string) error {
	err := os.Remove(f.path(directory, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete %s/%s: %w", directory, name, err)
	}
	return nil
}
