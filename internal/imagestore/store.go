// Package imagestore uploads and deletes category and product images.
package imagestore

import (
	"context"

	"github.com/utafrali/storefront/internal/domain"
)

// Folders group uploads by owner.
const (
	CategoryFolder = "categories"
	ProductFolder  = "products"
)

// File is an uploaded image that passed Check.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Store holds image binaries. Upload returns the public URL and the public
// id needed to delete the image again.
type Store interface {
	Upload(ctx context.Context, folder string, file File) (domain.Image, error)
	Delete(ctx context.Context, publicID string) error
}
