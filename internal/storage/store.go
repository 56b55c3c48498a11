// Package storage abstracts file persistence for uploaded assets:
// the company logo shown on printed reports and photos attached to
// visit bookings. Two backends exist: local disk for development and
// Cloudflare R2 for production.
package storage

import (
	"context"
	"io"
)

// FileInfo describes a stored file.
type FileInfo struct {
	URL      string `json:"url"`
	FileName string `json:"fileName"`
	FileSize int64  `json:"fileSize"`
	FileType string `json:"fileType"`
}

// Store is the interface both backends implement.
type Store interface {
	// Save writes the file under the given path and returns its metadata.
	Save(ctx context.Context, path string, file io.Reader, contentType string) (*FileInfo, error)

	// Delete removes a stored file. Deleting a missing file is not an error.
	Delete(ctx context.Context, path string) error

	// URL returns the public URL for a stored path.
	URL(path string) string
}
