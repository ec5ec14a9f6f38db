package planillahandler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"backoffice/internal/domain/auth"
	"backoffice/internal/domain/planilla"
	"backoffice/internal/platform/jobs"
	"backoffice/internal/transport/http/api"
	"backoffice/internal/transport/http/middleware"
	"backoffice/internal/transport/http/shared"
)

const payEndpoint = "planilla.pagar"

type Service interface {
	Create(ctx context.Context, actor planilla.Actor, in planilla.CreateInput) (planilla.Planilla, error)
	Get(ctx context.Context, companyID, planillaID string) (planilla.Planilla, error)
	List(ctx context.Context, companyID string, filter planilla.ListFilter) ([]planilla.Planilla, int, error)
	Details(ctx context.Context, companyID, planillaID string) ([]planilla.Detail, error)
	Summary(ctx context.Context, companyID, planillaID string) (planilla.Totals, error)
	Generate(ctx context.Context, actor planilla.Actor, planillaID string) (planilla.Planilla, error)
	GenerateAsync(ctx context.Context, actor planilla.Actor, planillaID string) error
	Approve(ctx context.Context, actor planilla.Actor, planillaID string) (planilla.Planilla, error)
	Pay(ctx context.Context, actor planilla.Actor, planillaID string) (planilla.Planilla, error)
	Cancel(ctx context.Context, actor planilla.Actor, planillaID, reason string) (planilla.Planilla, error)
}

// Idempotency replays stored responses for retried requests.
type Idempotency interface {
	Check(ctx context.Context, companyID, userID, endpoint, key, requestHash string) (json.RawMessage, bool, error)
	Save(ctx context.Context, companyID, userID, endpoint, key, requestHash string, response json.RawMessage) error
}

type Handler struct {
	Service     Service
	Perms       middleware.PermissionStore
	Idempotency Idempotency
}

func NewHandler(service Service, perms middleware.PermissionStore, idem Idempotency) *Handler {
	return &Handler{Service: service, Perms: perms, Idempotency: idem}
}

type createRequest struct {
	ProjectID   string `json:"projectId"`
	PeriodStart string `json:"periodStart"`
	PeriodEnd   string `json:"periodEnd"`
	Description string `json:"description"`
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := middleware.RequirePermission(auth.PermPlanillaRead, h.Perms)
	r.Route("/planillas", func(r chi.Router) {
		r.With(read).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermPlanillaGenerate, h.Perms)).Post("/", h.handleCreate)
		r.Route("/{planillaID}", func(r chi.Router) {
			r.With(read).Get("/", h.handleGet)
			r.With(read).Get("/detalles", h.handleDetails)
			r.With(read).Get("/resumen", h.handleSummary)
			r.With(read).Get("/export/registro", h.handleExportRegister)
			r.With(read).Get("/export/asiento", h.handleExportJournal)
			r.With(middleware.RequirePermission(auth.PermPlanillaGenerate, h.Perms)).Post("/generar", h.handleGenerate)
			r.With(middleware.RequirePermission(auth.PermPlanillaApprove, h.Perms)).Post("/aprobar", h.handleApprove)
			r.With(middleware.RequirePermission(auth.PermPlanillaPay, h.Perms)).Post("/pagar", h.handlePay)
			r.With(middleware.RequirePermission(auth.PermPlanillaCancel, h.Perms)).Post("/cancelar", h.handleCancel)
		})
	})
}

func actorFrom(r *http.Request) planilla.Actor {
	user, _ := middleware.GetUser(r.Context())
	return planilla.Actor{
		UserID:    user.UserID,
		CompanyID: user.CompanyID,
		RoleName:  user.RoleName,
		RequestID: middleware.GetRequestID(r.Context()),
		IP:        shared.ClientIP(r),
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	page := shared.ParsePagination(r, shared.DefaultLimit, shared.MaxLimit)
	items, total, err := h.Service.List(r.Context(), user.CompanyID, planilla.ListFilter{
		Status:    strings.ToLower(strings.TrimSpace(r.URL.Query().Get("status"))),
		ProjectID: strings.TrimSpace(r.URL.Query().Get("projectId")),
		Limit:     page.Limit,
		Offset:    page.Offset,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	page.Write(w, items, total, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload createRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Required("periodStart", payload.PeriodStart, "is required")
	v.Required("periodEnd", payload.PeriodEnd, "is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	start, _ := v.Date("periodStart", payload.PeriodStart)
	end, _ := v.Date("periodEnd", payload.PeriodEnd)
	v.DateOrder("periodStart", start, "periodEnd", end)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	created, err := h.Service.Create(r.Context(), actorFrom(r), planilla.CreateInput{
		ProjectID:   strings.TrimSpace(payload.ProjectID),
		PeriodStart: start,
		PeriodEnd:   end,
		Description: payload.Description,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	p, err := h.Service.Get(r.Context(), user.CompanyID, chi.URLParam(r, "planillaID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, p, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDetails(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	details, err := h.Service.Details(r.Context(), user.CompanyID, chi.URLParam(r, "planillaID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, details, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	totals, err := h.Service.Summary(r.Context(), user.CompanyID, chi.URLParam(r, "planillaID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, totals, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	planillaID := chi.URLParam(r, "planillaID")
	actor := actorFrom(r)
	if async, _ := strconv.ParseBool(r.URL.Query().Get("async")); async {
		if err := h.Service.GenerateAsync(r.Context(), actor, planillaID); err != nil {
			writeError(w, r, err)
			return
		}
		api.Accepted(w, map[string]string{"planillaId": planillaID, "status": "queued"}, actor.RequestID)
		return
	}
	p, err := h.Service.Generate(r.Context(), actor, planillaID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, p, actor.RequestID)
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	p, err := h.Service.Approve(r.Context(), actorFrom(r), chi.URLParam(r, "planillaID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, p, middleware.GetRequestID(r.Context()))
}

// handlePay replays the stored response when the same Idempotency-Key is
// sent again for the same planilla.
func (h *Handler) handlePay(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)
	planillaID := chi.URLParam(r, "planillaID")
	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	requestHash := middleware.RequestHash([]byte(planillaID))

	if key != "" && h.Idempotency != nil {
		stored, found, err := h.Idempotency.Check(r.Context(), actor.CompanyID, actor.UserID, payEndpoint, key, requestHash)
		switch {
		case errors.Is(err, middleware.ErrIdempotencyConflict):
			api.Fail(w, http.StatusConflict, "idempotency_conflict", err.Error(), actor.RequestID)
			return
		case err != nil:
			slog.Warn("idempotency check failed", "planillaId", planillaID, "err", err)
		case found:
			api.Success(w, stored, actor.RequestID)
			return
		}
	}

	p, err := h.Service.Pay(r.Context(), actor, planillaID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if key != "" && h.Idempotency != nil {
		encoded, err := json.Marshal(p)
		if err == nil {
			err = h.Idempotency.Save(r.Context(), actor.CompanyID, actor.UserID, payEndpoint, key, requestHash, encoded)
		}
		if err != nil {
			slog.Warn("idempotency save failed", "planillaId", planillaID, "err", err)
		}
	}
	api.Success(w, p, actor.RequestID)
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	var payload cancelRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Required("reason", payload.Reason, "is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	p, err := h.Service.Cancel(r.Context(), actorFrom(r), chi.URLParam(r, "planillaID"), payload.Reason)
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, p, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleExportRegister(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "registro", func(buf *bytes.Buffer, details []planilla.Detail) error {
		return planilla.WriteRegister(buf, details)
	})
}

func (h *Handler) handleExportJournal(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "asiento", func(buf *bytes.Buffer, details []planilla.Detail) error {
		return planilla.WriteJournal(buf, planilla.JournalLines(details))
	})
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request, kind string, write func(*bytes.Buffer, []planilla.Detail) error) {
	user, _ := middleware.GetUser(r.Context())
	planillaID := chi.URLParam(r, "planillaID")
	details, err := h.Service.Details(r.Context(), user.CompanyID, planillaID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := write(&buf, details); err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="planilla-`+planillaID+"-"+kind+`.csv"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Warn("export write failed", "planillaId", planillaID, "err", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	shared.WriteError(w, r, err, "planilla_failed",
		shared.ErrorCase{Err: planilla.ErrNotFound, Status: http.StatusNotFound, Code: "not_found"},
		shared.ErrorCase{Err: planilla.ErrProjectNotFound, Status: http.StatusNotFound, Code: "project_not_found"},
		shared.ErrorCase{Err: planilla.ErrInvalidPeriod, Status: http.StatusBadRequest, Code: "invalid_period"},
		shared.ErrorCase{Err: planilla.ErrInvalidStatus, Status: http.StatusBadRequest, Code: "invalid_status"},
		shared.ErrorCase{Err: planilla.ErrReasonRequired, Status: http.StatusBadRequest, Code: "reason_required"},
		shared.ErrorCase{Err: planilla.ErrPeriodOverlap, Status: http.StatusConflict, Code: "period_overlap"},
		shared.ErrorCase{Err: planilla.ErrInvalidTransition, Status: http.StatusConflict, Code: "invalid_transition"},
		shared.ErrorCase{Err: planilla.ErrNotDraft, Status: http.StatusConflict, Code: "not_draft"},
		shared.ErrorCase{Err: planilla.ErrNoEmployees, Status: http.StatusConflict, Code: "no_employees"},
		shared.ErrorCase{Err: planilla.ErrNoDetails, Status: http.StatusConflict, Code: "no_details"},
		shared.ErrorCase{Err: planilla.ErrStaleDeductions, Status: http.StatusConflict, Code: "stale_deductions"},
		shared.ErrorCase{Err: planilla.ErrCalculatorMissing, Status: http.StatusServiceUnavailable, Code: "payroll_function_missing"},
		shared.ErrorCase{Err: planilla.ErrCalculatorNoResult, Status: http.StatusServiceUnavailable, Code: "payroll_function_no_result"},
		shared.ErrorCase{Err: jobs.ErrQueueFull, Status: http.StatusServiceUnavailable, Code: "queue_full"},
	)
}
