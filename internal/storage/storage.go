// Package storage handles image uploads for posts and profile pictures.
package storage

import (
	"context"
	"io"
)

// Storage abstracts where uploaded images live
type Storage interface {
	// Upload stores the object and returns its public URL
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)

	// Delete removes the object
	Delete(ctx context.Context, key string) error
}
