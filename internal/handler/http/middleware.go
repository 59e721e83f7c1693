package http

import (
	"net/http"
	"strings"

	"github.com/utafrali/storefront/pkg/httputil"
)

// MaxJSONBodySize caps JSON request bodies.
const MaxJSONBodySize = 4<<20 + 512<<10

// ContentTypeJSON rejects write requests whose body is neither JSON nor a
// form. Requests without a Content-Type are let through.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") &&
				!strings.HasPrefix(ct, "multipart/form-data") &&
				!strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
				httputil.WriteJSON(w, http.StatusUnsupportedMediaType, httputil.ErrorResponse{
					Code:    "UNSUPPORTED_MEDIA_TYPE",
					Message: "Content-Type must be application/json or multipart/form-data",
				})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// LimitBody caps JSON request bodies at limit bytes. Multipart bodies are
// capped by the upload parser instead.
func LimitBody(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil && !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusNotFound, httputil.ErrorResponse{
		Code:    "NOT_FOUND",
		Message: "route not found",
	})
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusMethodNotAllowed, httputil.ErrorResponse{
		Code:    "METHOD_NOT_ALLOWED",
		Message: "method not allowed",
	})
}
