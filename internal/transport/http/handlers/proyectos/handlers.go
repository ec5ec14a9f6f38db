package proyectoshandler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"backoffice/internal/domain/auth"
	"backoffice/internal/domain/proyectos"
	"backoffice/internal/transport/http/api"
	"backoffice/internal/transport/http/middleware"
	"backoffice/internal/transport/http/shared"
)

type Service interface {
	Create(ctx context.Context, companyID string, p proyectos.Project) (proyectos.Project, error)
	Get(ctx context.Context, companyID, projectID string) (proyectos.Project, error)
	List(ctx context.Context, companyID string, filter proyectos.ListFilter) ([]proyectos.Project, int, error)
	Update(ctx context.Context, companyID, projectID string, p proyectos.Project) (proyectos.Project, error)
	Assign(ctx context.Context, companyID string, a proyectos.Assignment) (proyectos.Assignment, error)
	Assignments(ctx context.Context, companyID, projectID string) ([]proyectos.Assignment, error)
	EndAssignment(ctx context.Context, companyID, projectID, assignmentID string, endDate time.Time) (proyectos.Assignment, error)
}

type Handler struct {
	Service Service
	Perms   middleware.PermissionStore
	Audit   shared.Auditor
}

func NewHandler(service Service, perms middleware.PermissionStore, auditor shared.Auditor) *Handler {
	return &Handler{Service: service, Perms: perms, Audit: auditor}
}

type projectRequest struct {
	Code              string `json:"code"`
	Name              string `json:"name"`
	ClientName        string `json:"clientName"`
	ContractStart     string `json:"contractStart"`
	ContractEnd       string `json:"contractEnd"`
	Status            string `json:"status"`
	RequiredHeadcount int    `json:"requiredHeadcount"`
}

type assignmentRequest struct {
	EmployeeID string `json:"employeeId"`
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
}

type endAssignmentRequest struct {
	EndDate string `json:"endDate"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := middleware.RequirePermission(auth.PermProyectosRead, h.Perms)
	write := middleware.RequirePermission(auth.PermProyectosWrite, h.Perms)
	r.Route("/proyectos", func(r chi.Router) {
		r.With(read).Get("/", h.handleList)
		r.With(write).Post("/", h.handleCreate)
		r.Route("/{projectID}", func(r chi.Router) {
			r.With(read).Get("/", h.handleGet)
			r.With(write).Put("/", h.handleUpdate)
			r.With(read).Get("/asignaciones", h.handleListAssignments)
			r.With(write).Post("/asignaciones", h.handleAssign)
			r.With(write).Post("/asignaciones/{assignmentID}/fin", h.handleEndAssignment)
		})
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	page := shared.ParsePagination(r, shared.DefaultLimit, shared.MaxLimit)
	projects, total, err := h.Service.List(r.Context(), user.CompanyID, proyectos.ListFilter{
		Status: strings.TrimSpace(r.URL.Query().Get("status")),
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	page.Write(w, projects, total, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	project, err := h.Service.Get(r.Context(), user.CompanyID, chi.URLParam(r, "projectID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, project, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	var payload projectRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	project, ok := payload.project(w, r)
	if !ok {
		return
	}
	created, err := h.Service.Create(r.Context(), user.CompanyID, project)
	if err != nil {
		writeError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, user, "proyectos.create", "project", created.ID, nil, created)
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	projectID := chi.URLParam(r, "projectID")
	var payload projectRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	project, ok := payload.project(w, r)
	if !ok {
		return
	}
	before, err := h.Service.Get(r.Context(), user.CompanyID, projectID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	updated, err := h.Service.Update(r.Context(), user.CompanyID, projectID, project)
	if err != nil {
		writeError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, user, "proyectos.update", "project", projectID, before, updated)
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListAssignments(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	assignments, err := h.Service.Assignments(r.Context(), user.CompanyID, chi.URLParam(r, "projectID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, assignments, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAssign(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	var payload assignmentRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "is required")
	v.Required("startDate", payload.StartDate, "is required")
	var start time.Time
	if strings.TrimSpace(payload.StartDate) != "" {
		start, _ = v.Date("startDate", payload.StartDate)
	}
	end := v.OptionalDate("endDate", payload.EndDate)
	if end != nil {
		v.DateOrder("startDate", start, "endDate", *end)
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	assignment, err := h.Service.Assign(r.Context(), user.CompanyID, proyectos.Assignment{
		ProjectID:  chi.URLParam(r, "projectID"),
		EmployeeID: strings.TrimSpace(payload.EmployeeID),
		StartDate:  start,
		EndDate:    end,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, user, "proyectos.assign", "project_assignment", assignment.ID, nil, assignment)
	api.Created(w, assignment, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleEndAssignment(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	var payload endAssignmentRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Required("endDate", payload.EndDate, "is required")
	var end time.Time
	if !v.HasIssues() {
		end, _ = v.Date("endDate", payload.EndDate)
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	assignmentID := chi.URLParam(r, "assignmentID")
	assignment, err := h.Service.EndAssignment(r.Context(), user.CompanyID, chi.URLParam(r, "projectID"), assignmentID, end)
	if err != nil {
		writeError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, user, "proyectos.assignment_end", "project_assignment", assignmentID, nil, assignment)
	api.Success(w, assignment, middleware.GetRequestID(r.Context()))
}

func (p projectRequest) project(w http.ResponseWriter, r *http.Request) (proyectos.Project, bool) {
	v := shared.NewValidator()
	v.Required("code", p.Code, "is required")
	v.Required("name", p.Name, "is required")
	v.Required("clientName", p.ClientName, "is required")
	v.Required("contractStart", p.ContractStart, "is required")
	v.Enum("status", p.Status, proyectos.Statuses, "must be one of activo, suspendido, finalizado")
	var start time.Time
	if strings.TrimSpace(p.ContractStart) != "" {
		start, _ = v.Date("contractStart", p.ContractStart)
	}
	end := v.OptionalDate("contractEnd", p.ContractEnd)
	if end != nil {
		v.DateOrder("contractStart", start, "contractEnd", *end)
	}
	if p.RequiredHeadcount < 0 {
		v.Add("requiredHeadcount", "must not be negative")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return proyectos.Project{}, false
	}
	return proyectos.Project{
		Code:              p.Code,
		Name:              p.Name,
		ClientName:        p.ClientName,
		ContractStart:     start,
		ContractEnd:       end,
		Status:            strings.ToLower(strings.TrimSpace(p.Status)),
		RequiredHeadcount: p.RequiredHeadcount,
	}, true
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	shared.WriteError(w, r, err, "proyectos_failed",
		shared.ErrorCase{Err: proyectos.ErrNotFound, Status: http.StatusNotFound, Code: "not_found"},
		shared.ErrorCase{Err: proyectos.ErrAssignmentNotFound, Status: http.StatusNotFound, Code: "assignment_not_found"},
		shared.ErrorCase{Err: proyectos.ErrEmployeeNotFound, Status: http.StatusNotFound, Code: "employee_not_found"},
		shared.ErrorCase{Err: proyectos.ErrDuplicateCode, Status: http.StatusConflict, Code: "duplicate_code"},
		shared.ErrorCase{Err: proyectos.ErrAssignmentOverlap, Status: http.StatusConflict, Code: "assignment_overlap"},
		shared.ErrorCase{Err: proyectos.ErrAssignmentEnded, Status: http.StatusConflict, Code: "assignment_ended"},
		shared.ErrorCase{Err: proyectos.ErrProjectClosed, Status: http.StatusConflict, Code: "project_closed"},
		shared.ErrorCase{Err: proyectos.ErrEmployeeNotAssignable, Status: http.StatusConflict, Code: "employee_terminated"},
		shared.ErrorCase{Err: proyectos.ErrInvalidStatus, Status: http.StatusBadRequest, Code: "invalid_status"},
		shared.ErrorCase{Err: proyectos.ErrInvalidContract, Status: http.StatusBadRequest, Code: "invalid_contract"},
		shared.ErrorCase{Err: proyectos.ErrInvalidAssignment, Status: http.StatusBadRequest, Code: "invalid_assignment"},
		shared.ErrorCase{Err: proyectos.ErrNegativeHeadcount, Status: http.StatusBadRequest, Code: "invalid_headcount"},
	)
}
