package asistenciahandler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"backoffice/internal/domain/asistencia"
	"backoffice/internal/domain/auth"
	"backoffice/internal/transport/http/api"
	"backoffice/internal/transport/http/middleware"
	"backoffice/internal/transport/http/shared"
)

type Service interface {
	Register(ctx context.Context, companyID string, rec asistencia.Record) (asistencia.Record, error)
	RegisterBatch(ctx context.Context, companyID string, records []asistencia.Record) ([]string, error)
	List(ctx context.Context, companyID string, filter asistencia.RecordFilter) ([]asistencia.Record, int, error)
	Summary(ctx context.Context, companyID, employeeID string, from, to time.Time) (asistencia.Summary, error)
	CreateDeduction(ctx context.Context, companyID string, d asistencia.Deduction) (asistencia.Deduction, error)
	ListDeductions(ctx context.Context, companyID string, filter asistencia.DeductionFilter) ([]asistencia.Deduction, int, error)
	VoidDeduction(ctx context.Context, companyID, deductionID string) (asistencia.Deduction, asistencia.Deduction, error)
}

type Handler struct {
	Service Service
	Perms   middleware.PermissionStore
	Audit   shared.Auditor
}

func NewHandler(service Service, perms middleware.PermissionStore, auditor shared.Auditor) *Handler {
	return &Handler{Service: service, Perms: perms, Audit: auditor}
}

type recordRequest struct {
	EmployeeID    string           `json:"employeeId"`
	ProjectID     string           `json:"projectId"`
	WorkDate      string           `json:"workDate"`
	State         string           `json:"state"`
	HoursWorked   *decimal.Decimal `json:"hoursWorked"`
	OvertimeHours *decimal.Decimal `json:"overtimeHours"`
	Note          string           `json:"note"`
}

type batchRequest struct {
	Records []recordRequest `json:"records"`
}

type deductionRequest struct {
	EmployeeID  string          `json:"employeeId"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := middleware.RequirePermission(auth.PermAsistenciaRead, h.Perms)
	write := middleware.RequirePermission(auth.PermAsistenciaWrite, h.Perms)
	r.Route("/asistencia", func(r chi.Router) {
		r.With(read).Get("/", h.handleList)
		r.With(write).Post("/", h.handleRegister)
		r.With(write).Post("/lote", h.handleBatch)
		r.With(read).Get("/resumen", h.handleSummary)
	})
	r.Route("/descuentos", func(r chi.Router) {
		r.With(read).Get("/", h.handleListDeductions)
		r.With(write).Post("/", h.handleCreateDeduction)
		r.With(write).Post("/{deductionID}/anular", h.handleVoidDeduction)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	q := r.URL.Query()
	v := shared.NewValidator()
	from := v.OptionalDate("from", q.Get("from"))
	to := v.OptionalDate("to", q.Get("to"))
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	page := shared.ParsePagination(r, shared.DefaultLimit, shared.MaxLimit)
	filter := asistencia.RecordFilter{
		EmployeeID: strings.TrimSpace(q.Get("employeeId")),
		ProjectID:  strings.TrimSpace(q.Get("projectId")),
		From:       deref(from),
		To:         deref(to),
		Limit:      page.Limit,
		Offset:     page.Offset,
	}
	records, total, err := h.Service.List(r.Context(), user.CompanyID, filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	page.Write(w, records, total, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	var payload recordRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	rec := payload.record(v, "")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	saved, err := h.Service.Register(r.Context(), user.CompanyID, rec)
	if err != nil {
		writeError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, user, "asistencia.register", "attendance", saved.ID, nil, saved)
	api.Created(w, saved, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleBatch(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	var payload batchRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	switch {
	case len(payload.Records) == 0:
		v.Add("records", "must contain at least one record")
	case len(payload.Records) > asistencia.MaxBatchSize:
		v.Add("records", "must contain at most "+strconv.Itoa(asistencia.MaxBatchSize)+" records")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	records := make([]asistencia.Record, 0, len(payload.Records))
	for i, item := range payload.Records {
		records = append(records, item.record(v, "records["+strconv.Itoa(i)+"]."))
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	ids, err := h.Service.RegisterBatch(r.Context(), user.CompanyID, records)
	if err != nil {
		writeError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, user, "asistencia.batch", "attendance", "", nil, map[string]any{"ids": ids})
	api.Created(w, map[string]any{"ids": ids, "count": len(ids)}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	q := r.URL.Query()
	v := shared.NewValidator()
	v.Required("employeeId", q.Get("employeeId"), "is required")
	v.Required("from", q.Get("from"), "is required")
	v.Required("to", q.Get("to"), "is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	from, _ := v.Date("from", q.Get("from"))
	to, _ := v.Date("to", q.Get("to"))
	v.DateOrder("from", from, "to", to)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	summary, err := h.Service.Summary(r.Context(), user.CompanyID, strings.TrimSpace(q.Get("employeeId")), from, to)
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, summary, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListDeductions(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	q := r.URL.Query()
	v := shared.NewValidator()
	from := v.OptionalDate("from", q.Get("from"))
	to := v.OptionalDate("to", q.Get("to"))
	v.Enum("status", q.Get("status"), asistencia.DeductionStatuses, "must be one of pendiente, aplicado, anulado")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	page := shared.ParsePagination(r, shared.DefaultLimit, shared.MaxLimit)
	deductions, total, err := h.Service.ListDeductions(r.Context(), user.CompanyID, asistencia.DeductionFilter{
		EmployeeID: strings.TrimSpace(q.Get("employeeId")),
		Status:     strings.ToLower(strings.TrimSpace(q.Get("status"))),
		From:       deref(from),
		To:         deref(to),
		Limit:      page.Limit,
		Offset:     page.Offset,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	page.Write(w, deductions, total, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateDeduction(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	var payload deductionRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "is required")
	v.Required("type", payload.Type, "is required")
	v.Enum("type", payload.Type, asistencia.DeductionTypes, "must be one of adelanto, prestamo, uniforme, judicial, otro")
	v.Positive("amount", payload.Amount)
	v.Required("date", payload.Date, "is required")
	var date time.Time
	if strings.TrimSpace(payload.Date) != "" {
		date, _ = v.Date("date", payload.Date)
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	created, err := h.Service.CreateDeduction(r.Context(), user.CompanyID, asistencia.Deduction{
		EmployeeID:  strings.TrimSpace(payload.EmployeeID),
		Type:        strings.ToLower(strings.TrimSpace(payload.Type)),
		Amount:      payload.Amount,
		Date:        date,
		Description: payload.Description,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, user, "descuentos.create", "deduction", created.ID, nil, created)
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleVoidDeduction(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	deductionID := chi.URLParam(r, "deductionID")
	before, after, err := h.Service.VoidDeduction(r.Context(), user.CompanyID, deductionID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, user, "descuentos.void", "deduction", deductionID, before, after)
	api.Success(w, after, middleware.GetRequestID(r.Context()))
}

// record converts one payload item, prefixing field names for batch items.
func (p recordRequest) record(v *shared.Validator, prefix string) asistencia.Record {
	v.Required(prefix+"employeeId", p.EmployeeID, "is required")
	v.Required(prefix+"state", p.State, "is required")
	v.Enum(prefix+"state", p.State, asistencia.States, "must be one of presente, tardanza, falta, descanso, permiso")
	v.Required(prefix+"workDate", p.WorkDate, "is required")
	var date time.Time
	if strings.TrimSpace(p.WorkDate) != "" {
		date, _ = v.Date(prefix+"workDate", p.WorkDate)
	}
	rec := asistencia.Record{
		EmployeeID: strings.TrimSpace(p.EmployeeID),
		ProjectID:  strings.TrimSpace(p.ProjectID),
		WorkDate:   date,
		State:      strings.ToLower(strings.TrimSpace(p.State)),
		Note:       p.Note,
	}
	if p.HoursWorked != nil {
		v.NonNegative(prefix+"hoursWorked", *p.HoursWorked)
		rec.HoursWorked = *p.HoursWorked
	}
	if p.OvertimeHours != nil {
		v.NonNegative(prefix+"overtimeHours", *p.OvertimeHours)
		rec.OvertimeHours = *p.OvertimeHours
	}
	return rec
}

func deref(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	shared.WriteError(w, r, err, "asistencia_failed",
		shared.ErrorCase{Err: asistencia.ErrEmployeeNotFound, Status: http.StatusNotFound, Code: "employee_not_found"},
		shared.ErrorCase{Err: asistencia.ErrDeductionNotFound, Status: http.StatusNotFound, Code: "not_found"},
		shared.ErrorCase{Err: asistencia.ErrPeriodClosed, Status: http.StatusConflict, Code: "period_closed"},
		shared.ErrorCase{Err: asistencia.ErrDeductionNotPending, Status: http.StatusConflict, Code: "deduction_not_pending"},
		shared.ErrorCase{Err: asistencia.ErrInvalidState, Status: http.StatusBadRequest, Code: "invalid_state"},
		shared.ErrorCase{Err: asistencia.ErrInvalidHours, Status: http.StatusBadRequest, Code: "invalid_hours"},
		shared.ErrorCase{Err: asistencia.ErrHoursOnAbsence, Status: http.StatusBadRequest, Code: "invalid_hours"},
		shared.ErrorCase{Err: asistencia.ErrInvalidRange, Status: http.StatusBadRequest, Code: "invalid_range"},
		shared.ErrorCase{Err: asistencia.ErrEmptyBatch, Status: http.StatusBadRequest, Code: "invalid_batch"},
		shared.ErrorCase{Err: asistencia.ErrBatchTooLarge, Status: http.StatusBadRequest, Code: "invalid_batch"},
		shared.ErrorCase{Err: asistencia.ErrInvalidDeductionType, Status: http.StatusBadRequest, Code: "invalid_type"},
		shared.ErrorCase{Err: asistencia.ErrInvalidAmount, Status: http.StatusBadRequest, Code: "invalid_amount"},
		shared.ErrorCase{Err: asistencia.ErrInvalidStatus, Status: http.StatusBadRequest, Code: "invalid_status"},
	)
}
