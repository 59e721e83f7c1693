package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/imagestore"
)

// ImageSource looks up stored image binaries by public id.
type ImageSource interface {
	Get(publicID string) (imagestore.File, bool)
}

// ServeImages returns a handler for GET /images/*, serving what the
// in-memory store holds.
func ServeImages(src ImageSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		file, ok := src.Get(chi.URLParam(r, "*"))
		if !ok {
			notFound(w, r)
			return
		}
		w.Header().Set("Content-Type", file.ContentType)
		w.Header().Set("Content-Length", strconv.Itoa(len(file.Data)))
		w.Header().Set("Cache-Control", "public, max-age=86400")
		w.WriteHeader(http.StatusOK)
		if r.Method != http.MethodHead {
			_, _ = w.Write(file.Data)
		}
	}
}
