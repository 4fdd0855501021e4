// Package middleware carries the HTTP middleware chain: request correlation,
// request-scoped time, and actor authentication. Values land in
// requestcontext so services never touch net/http.
package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/ClarenceRuth/cipher-shipment-stream/pkg/requestcontext"
)

const requestIDHeader = "X-Request-ID"

// RequestID assigns every request a correlation ID, honoring one supplied by
// the caller, and echoes it on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		w.Header().Set(requestIDHeader, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
