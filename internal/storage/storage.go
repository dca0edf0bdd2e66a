// Package storage abstracts where uploaded and archived documents live.
// Backends are interchangeable and selected at construction time; business
// logic never branches on the environment.
package storage

import (
	"context"
	"io"
)

// Storage is the file-storage collaborator. Directories are
// forward-slash-delimited paths relative to the backend's root; backends map
// them to their native layout.
type Storage interface {
	// GetFile opens a stored file for reading.
	GetFile(ctx context.Context, directory, name string) (io.ReadCloser, error)

	// SaveFile writes a file, creating the directory as needed and
	// replacing any previous content.
	SaveFile(ctx context.Context, directory, name string, r io.Reader) error

	// MoveFile relocates a file; the destination directory is created as
	// needed. The source is gone once MoveFile returns nil.
	MoveFile(ctx context.Context, srcDir, srcName, dstDir, dstName string) error

	// FileExists reports whether a file is present.
	FileExists(ctx context.Context, directory, name string) (bool, error)

	// DeleteFile removes a file. Deleting an absent file is not an error.
	DeleteFile(ctx context.Context, directory, name string) error
}
