package personalhandler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"backoffice/internal/domain/auth"
	"backoffice/internal/domain/personal"
	"backoffice/internal/transport/http/api"
	"backoffice/internal/transport/http/middleware"
	"backoffice/internal/transport/http/shared"
)

type Service interface {
	Create(ctx context.Context, companyID string, emp personal.Employee) (personal.Employee, error)
	Get(ctx context.Context, companyID, employeeID string) (personal.Employee, error)
	GetByUserID(ctx context.Context, companyID, userID string) (personal.Employee, error)
	List(ctx context.Context, companyID string, filter personal.ListFilter) ([]personal.Employee, int, error)
	Update(ctx context.Context, companyID, employeeID string, emp personal.Employee) (personal.Employee, error)
	Cese(ctx context.Context, companyID, employeeID string, date time.Time) (personal.Employee, error)
}

type Handler struct {
	Service Service
	Perms   middleware.PermissionStore
	Audit   shared.Auditor
}

func NewHandler(service Service, perms middleware.PermissionStore, auditor shared.Auditor) *Handler {
	return &Handler{Service: service, Perms: perms, Audit: auditor}
}

type employeeRequest struct {
	DocumentNumber string           `json:"documentNumber"`
	FirstName      string           `json:"firstName"`
	LastName       string           `json:"lastName"`
	Email          string           `json:"email"`
	Phone          string           `json:"phone"`
	Position       string           `json:"position"`
	HireDate       string           `json:"hireDate"`
	Status         string           `json:"status"`
	Salary         *decimal.Decimal `json:"salary"`
	BankAccount    string           `json:"bankAccount"`
	PensionSystem  string           `json:"pensionSystem"`
	UserID         string           `json:"userId"`
}

type ceseRequest struct {
	TerminationDate string `json:"terminationDate"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequireAuth).Get("/me", h.handleMe)
	r.Route("/personal", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermPersonalRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermPersonalWrite, h.Perms)).Post("/", h.handleCreate)
		r.Route("/{employeeID}", func(r chi.Router) {
			r.With(middleware.RequirePermission(auth.PermPersonalRead, h.Perms)).Get("/", h.handleGet)
			r.With(middleware.RequirePermission(auth.PermPersonalWrite, h.Perms)).Put("/", h.handleUpdate)
			r.With(middleware.RequirePermission(auth.PermPersonalWrite, h.Perms)).Post("/cese", h.handleCese)
		})
	})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	var employee *personal.Employee
	emp, err := h.Service.GetByUserID(r.Context(), user.CompanyID, user.UserID)
	switch {
	case err == nil:
		employee = &emp
	case !errors.Is(err, personal.ErrNotFound):
		writeError(w, r, err)
		return
	}
	api.Success(w, map[string]any{
		"user": map[string]string{
			"id":        user.UserID,
			"companyId": user.CompanyID,
			"roleId":    user.RoleID,
			"role":      user.RoleName,
		},
		"employee": employee,
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	page := shared.ParsePagination(r, shared.DefaultLimit, shared.MaxLimit)
	filter := personal.ListFilter{
		Status: strings.TrimSpace(r.URL.Query().Get("status")),
		Search: r.URL.Query().Get("q"),
		Limit:  page.Limit,
		Offset: page.Offset,
	}
	employees, total, err := h.Service.List(r.Context(), user.CompanyID, filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	page.Write(w, employees, total, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	emp, err := h.Service.Get(r.Context(), user.CompanyID, chi.URLParam(r, "employeeID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, emp, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	var payload employeeRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	emp, ok := payload.employee(w, r)
	if !ok {
		return
	}

	created, err := h.Service.Create(r.Context(), user.CompanyID, emp)
	if err != nil {
		writeError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, user, "personal.create", "employee", created.ID, nil, redact(created))
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	employeeID := chi.URLParam(r, "employeeID")
	var payload employeeRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	emp, ok := payload.employee(w, r)
	if !ok {
		return
	}

	before, err := h.Service.Get(r.Context(), user.CompanyID, employeeID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	updated, err := h.Service.Update(r.Context(), user.CompanyID, employeeID, emp)
	if err != nil {
		writeError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, user, "personal.update", "employee", employeeID, redact(before), redact(updated))
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCese(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	employeeID := chi.URLParam(r, "employeeID")
	var payload ceseRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Required("terminationDate", payload.TerminationDate, "is required")
	var date time.Time
	if !v.HasIssues() {
		date, _ = v.Date("terminationDate", payload.TerminationDate)
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	updated, err := h.Service.Cese(r.Context(), user.CompanyID, employeeID, date)
	if err != nil {
		writeError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, user, "personal.cese", "employee", employeeID,
		map[string]string{"status": personal.StatusActivo},
		map[string]any{"status": updated.Status, "terminationDate": updated.TerminationDate})
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (p employeeRequest) employee(w http.ResponseWriter, r *http.Request) (personal.Employee, bool) {
	v := shared.NewValidator()
	v.Required("documentNumber", p.DocumentNumber, "is required")
	v.Required("firstName", p.FirstName, "is required")
	v.Required("lastName", p.LastName, "is required")
	v.Required("position", p.Position, "is required")
	v.Enum("position", p.Position, personal.Positions, "must be one of agente, supervisor, operador")
	v.Enum("status", p.Status, personal.Statuses, "must be one of activo, cesado, suspendido")
	v.Required("hireDate", p.HireDate, "is required")
	var hireDate time.Time
	if strings.TrimSpace(p.HireDate) != "" {
		hireDate, _ = v.Date("hireDate", p.HireDate)
	}
	if p.Salary != nil {
		v.NonNegative("salary", *p.Salary)
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return personal.Employee{}, false
	}
	return personal.Employee{
		UserID:         strings.TrimSpace(p.UserID),
		DocumentNumber: p.DocumentNumber,
		FirstName:      p.FirstName,
		LastName:       p.LastName,
		Email:          p.Email,
		Phone:          strings.TrimSpace(p.Phone),
		Position:       strings.ToLower(strings.TrimSpace(p.Position)),
		HireDate:       hireDate,
		Status:         strings.ToLower(strings.TrimSpace(p.Status)),
		Salary:         p.Salary,
		BankAccount:    p.BankAccount,
		PensionSystem:  strings.TrimSpace(p.PensionSystem),
	}, true
}

// redact strips encrypted-at-rest fields from audit snapshots.
func redact(emp personal.Employee) personal.Employee {
	emp.Salary = nil
	emp.BankAccount = ""
	return emp
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	shared.WriteError(w, r, err, "personal_failed",
		shared.ErrorCase{Err: personal.ErrNotFound, Status: http.StatusNotFound, Code: "not_found"},
		shared.ErrorCase{Err: personal.ErrDuplicateDocument, Status: http.StatusConflict, Code: "duplicate_document"},
		shared.ErrorCase{Err: personal.ErrAlreadyTerminated, Status: http.StatusConflict, Code: "already_terminated"},
		shared.ErrorCase{Err: personal.ErrInvalidPosition, Status: http.StatusBadRequest, Code: "invalid_position"},
		shared.ErrorCase{Err: personal.ErrInvalidStatus, Status: http.StatusBadRequest, Code: "invalid_status"},
		shared.ErrorCase{Err: personal.ErrInvalidTermination, Status: http.StatusBadRequest, Code: "invalid_termination"},
		shared.ErrorCase{Err: personal.ErrNegativeSalary, Status: http.StatusBadRequest, Code: "invalid_salary"},
	)
}
