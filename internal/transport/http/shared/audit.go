package shared

import (
	"context"
	"log/slog"
	"net/http"

	"backoffice/internal/domain/auth"
	"backoffice/internal/platform/requestctx"
)

type Auditor interface {
	Record(ctx context.Context, companyID, actorID, action, entityType, entityID, requestID, ip string, before, after any) error
}

// Audit records a change made by user. Failures are logged, the request
// already succeeded.
func Audit(r *http.Request, auditor Auditor, user auth.UserContext, action, entityType, entityID string, before, after any) {
	if auditor == nil {
		return
	}
	ctx := r.Context()
	if err := auditor.Record(ctx, user.CompanyID, user.UserID, action, entityType, entityID,
		requestctx.GetRequestID(ctx), ClientIP(r), before, after); err != nil {
		slog.Warn("audit record failed", "action", action, "entityId", entityID, "err", err)
	}
}
