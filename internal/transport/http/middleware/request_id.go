package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"backoffice/internal/platform/requestctx"
	"backoffice/internal/transport/http/shared"
)

const maxRequestIDLength = 128

// RequestID propagates X-Request-ID (or mints one) and records the client IP
// for audit entries.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" || len(reqID) > maxRequestIDLength {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", reqID)
		ctx := requestctx.WithRequestID(r.Context(), reqID)
		ctx = requestctx.WithClientIP(ctx, shared.ClientIP(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
