// Package requestid assigns a correlation ID to every request. Incoming
// X-Request-ID headers are trusted (the service sits behind the product
// gateway); otherwise a fresh UUID is generated.
package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"amlgate/pkg/requestcontext"
)

const headerName = "X-Request-ID"

// Middleware injects the correlation ID into the context and echoes it on
// the response so collaborators can stitch logs together.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerName)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(headerName, id)
		ctx := requestcontext.WithRequestID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
