package middleware

import (
	"mime"
	"net/http"

	apperrors "github.com/batala/site-server-go/internal/errors"
)

const DefaultMaxJSONBody = 1 << 20

// JSONBody caps request bodies at maxSize and rejects bodies that declare a
// content type other than JSON. Cross-site form posts can only send
// form or text content types, so they never reach a handler.
func JSONBody(maxSize int64) func(http.Handler) http.Handler {
	if maxSize <= 0 {
		maxSize = DefaultMaxJSONBody
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body == nil || r.Body == http.NoBody || r.ContentLength == 0 {
				next.ServeHTTP(w, r)
				return
			}

			if ct := r.Header.Get("Content-Type"); ct != "" {
				mediaType, _, err := mime.ParseMediaType(ct)
				if err != nil || mediaType != "application/json" {
					writeError(w, apperrors.InvalidInput("Content-Type", "must be application/json"))
					return
				}
			}

			if r.ContentLength > maxSize {
				writeError(w, apperrors.PayloadTooLarge())
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxSize)
			next.ServeHTTP(w, r)
		})
	}
}
