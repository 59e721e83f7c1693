package http

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/utafrali/storefront/internal/imagestore"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

const (
	// multipartMemory is how much of a multipart body is held in memory
	// before parts spill to temporary files.
	multipartMemory = 8 << 20
	formOverhead    = 1 << 20
)

// parseForm reads a multipart or urlencoded body of at most maxFiles images
// plus form fields. Any other body leaves the form empty.
func parseForm(w http.ResponseWriter, r *http.Request, maxFiles int) error {
	limit := int64(maxFiles)*imagestore.MaxFileSize + formOverhead
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	err := r.ParseMultipartForm(multipartMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apperrors.PayloadTooLarge(fmt.Sprintf(
				"request payload too large; the maximum is %d bytes, reduce the number or size of images", maxErr.Limit))
		}
		return apperrors.InvalidInput("failed to parse form: " + err.Error())
	}
	return nil
}

// cleanupForm removes temporary files left by parseForm.
func cleanupForm(r *http.Request) {
	if r.MultipartForm != nil {
		_ = r.MultipartForm.RemoveAll()
	}
}

// formImages reads and sniffs the files uploaded under field.
func formImages(r *http.Request, field string, maxFiles int) ([]imagestore.File, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	headers := r.MultipartForm.File[field]
	if len(headers) > maxFiles {
		if maxFiles == 1 {
			return nil, apperrors.InvalidInput(fmt.Sprintf("only one %s may be uploaded", field))
		}
		return nil, apperrors.InvalidInput(fmt.Sprintf("at most %d %s may be uploaded", maxFiles, field))
	}

	files := make([]imagestore.File, 0, len(headers))
	for _, fh := range headers {
		f, err := readImage(fh)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

func readImage(fh *multipart.FileHeader) (imagestore.File, error) {
	if fh.Size > imagestore.MaxFileSize {
		return imagestore.File{}, apperrors.PayloadTooLarge(fmt.Sprintf("file %s exceeds %d bytes", fh.Filename, imagestore.MaxFileSize))
	}

	src, err := fh.Open()
	if err != nil {
		return imagestore.File{}, fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, imagestore.MaxFileSize+1))
	if err != nil {
		return imagestore.File{}, fmt.Errorf("read upload %s: %w", fh.Filename, err)
	}
	return imagestore.Check(fh.Filename, data, imagestore.MaxFileSize)
}

// formValue returns the trimmed value of key and whether it was sent with a
// non-blank value.
func formValue(r *http.Request, key string) (string, bool) {
	if _, ok := r.PostForm[key]; !ok {
		return "", false
	}
	v := strings.TrimSpace(r.PostForm.Get(key))
	return v, v != ""
}
