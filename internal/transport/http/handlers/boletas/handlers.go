package boletashandler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"backoffice/internal/domain/auth"
	"backoffice/internal/domain/boletas"
	"backoffice/internal/transport/http/middleware"
	"backoffice/internal/transport/http/shared"
)

type Service interface {
	List(ctx context.Context, user auth.UserContext, filter boletas.ListFilter) ([]boletas.Payslip, int, error)
	Open(ctx context.Context, user auth.UserContext, payslipID string) (boletas.Payslip, []byte, error)
}

type Handler struct {
	Service Service
	Perms   middleware.PermissionStore
	Audit   shared.Auditor
}

func NewHandler(service Service, perms middleware.PermissionStore, auditor shared.Auditor) *Handler {
	return &Handler{Service: service, Perms: perms, Audit: auditor}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/boletas", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermBoletasRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermBoletasRead, h.Perms)).Get("/{payslipID}/descarga", h.handleDownload)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	page := shared.ParsePagination(r, shared.DefaultLimit, shared.MaxLimit)
	slips, total, err := h.Service.List(r.Context(), user, boletas.ListFilter{
		EmployeeID: strings.TrimSpace(r.URL.Query().Get("employeeId")),
		PlanillaID: strings.TrimSpace(r.URL.Query().Get("planillaId")),
		Limit:      page.Limit,
		Offset:     page.Offset,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	page.Write(w, slips, total, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	slip, content, err := h.Service.Open(r.Context(), user, chi.URLParam(r, "payslipID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, user, "boletas.download", "payslip", slip.ID, nil, nil)

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+boletas.FileName(slip)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(content)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(content); err != nil {
		slog.Warn("payslip download write failed", "payslipId", slip.ID, "err", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	shared.WriteError(w, r, err, "boletas_failed",
		shared.ErrorCase{Err: boletas.ErrNotFound, Status: http.StatusNotFound, Code: "not_found"},
		shared.ErrorCase{Err: boletas.ErrForbidden, Status: http.StatusForbidden, Code: "forbidden"},
	)
}
