package shared

import (
	"errors"
	"log/slog"
	"net/http"

	"backoffice/internal/platform/requestctx"
	"backoffice/internal/transport/http/api"
)

// ErrorCase maps a domain sentinel to an HTTP status and error code.
type ErrorCase struct {
	Err    error
	Status int
	Code   string
}

// WriteError answers with the first matching case. Unmatched errors are
// logged and reported as 500 with fallbackCode.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallbackCode string, cases ...ErrorCase) {
	requestID := requestctx.GetRequestID(r.Context())
	for _, c := range cases {
		if errors.Is(err, c.Err) {
			api.Fail(w, c.Status, c.Code, err.Error(), requestID)
			return
		}
	}
	slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "requestId", requestID, "err", err)
	api.Fail(w, http.StatusInternalServerError, fallbackCode, "internal error", requestID)
}
