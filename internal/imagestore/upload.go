package imagestore

import (
	"fmt"

	"github.com/gabriel-vasile/mimetype"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// MaxFileSize is the largest accepted image.
const MaxFileSize = 4 << 20

var allowedTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}

// Check sniffs data and builds a File from it. The declared content type of
// the upload is ignored.
func Check(name string, data []byte, maxSize int64) (File, error) {
	if maxSize <= 0 {
		maxSize = MaxFileSize
	}
	if int64(len(data)) > maxSize {
		return File{}, apperrors.PayloadTooLarge(fmt.Sprintf("file %s exceeds %d bytes", name, maxSize))
	}
	if len(data) == 0 {
		return File{}, apperrors.InvalidInput(fmt.Sprintf("file %s is empty", name))
	}

	mt := mimetype.Detect(data)
	for _, allowed := range allowedTypes {
		if mt.Is(allowed) {
			return File{Name: name, ContentType: allowed, Data: data}, nil
		}
	}
	return File{}, apperrors.InvalidInput(fmt.Sprintf(
		"file %s has unsupported type %s; allowed formats are jpg, jpeg, png, webp and gif", name, mt.String()))
}
