package proyectoshandler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/domain/auth"
	"backoffice/internal/domain/proyectos"
	"backoffice/internal/transport/http/handlers/handlertest"
)

type fakeService struct {
	projects    map[string]proyectos.Project
	assignments map[string]proyectos.Assignment
	assignErr   error
	lastAssign  proyectos.Assignment
}

func newFakeService() *fakeService {
	return &fakeService{
		projects: map[string]proyectos.Project{
			"p1": {ID: "p1", Code: "BCP-01", Name: "Sede central", ClientName: "Banco", Status: proyectos.StatusActivo},
		},
		assignments: map[string]proyectos.Assignment{
			"a1": {ID: "a1", ProjectID: "p1", EmployeeID: "e1", StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		},
	}
}

func (f *fakeService) Create(_ context.Context, _ string, p proyectos.Project) (proyectos.Project, error) {
	p.ID = "p2"
	f.projects[p.ID] = p
	return p, nil
}

func (f *fakeService) Get(_ context.Context, _, id string) (proyectos.Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return proyectos.Project{}, proyectos.ErrNotFound
	}
	return p, nil
}

func (f *fakeService) List(context.Context, string, proyectos.ListFilter) ([]proyectos.Project, int, error) {
	out := make([]proyectos.Project, 0, len(f.projects))
	for _, p := range f.projects {
		out = append(out, p)
	}
	return out, len(out), nil
}

func (f *fakeService) Update(_ context.Context, _, id string, p proyectos.Project) (proyectos.Project, error) {
	p.ID = id
	f.projects[id] = p
	return p, nil
}

func (f *fakeService) Assign(_ context.Context, _ string, a proyectos.Assignment) (proyectos.Assignment, error) {
	f.lastAssign = a
	if f.assignErr != nil {
		return proyectos.Assignment{}, f.assignErr
	}
	a.ID = "a2"
	f.assignments[a.ID] = a
	return a, nil
}

func (f *fakeService) Assignments(_ context.Context, _, projectID string) ([]proyectos.Assignment, error) {
	if _, ok := f.projects[projectID]; !ok {
		return nil, proyectos.ErrNotFound
	}
	out := []proyectos.Assignment{}
	for _, a := range f.assignments {
		if a.ProjectID == projectID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeService) EndAssignment(_ context.Context, _, _, id string, end time.Time) (proyectos.Assignment, error) {
	a, ok := f.assignments[id]
	if !ok {
		return proyectos.Assignment{}, proyectos.ErrAssignmentNotFound
	}
	if a.EndDate != nil {
		return proyectos.Assignment{}, proyectos.ErrAssignmentEnded
	}
	a.EndDate = &end
	f.assignments[id] = a
	return a, nil
}

func setup(role string) (*fakeService, *handlertest.Auditor, http.Handler) {
	svc := newFakeService()
	auditor := &handlertest.Auditor{}
	h := NewHandler(svc, handlertest.Perms{}, auditor)
	return svc, auditor, handlertest.Router(handlertest.User(role), func(r chi.Router) { h.RegisterRoutes(r) })
}

func TestCreateProjectValidatesContract(t *testing.T) {
	_, auditor, router := setup(auth.RoleRRHH)

	rec := handlertest.Do(router, http.MethodPost, "/proyectos",
		`{"code":"x","name":"n","clientName":"c","contractStart":"2024-05-01","contractEnd":"2024-04-01","requiredHeadcount":-1}`)
	handlertest.Expect(t, rec, http.StatusBadRequest, "contractEnd", "requiredHeadcount")

	rec = handlertest.Do(router, http.MethodPost, "/proyectos",
		`{"code":"mall-02","name":"Mall","clientName":"Retail SA","contractStart":"2024-05-01","requiredHeadcount":6}`)
	handlertest.Expect(t, rec, http.StatusCreated, `"id":"p2"`, `"requiredHeadcount":6`)
	assert.Equal(t, []string{"proyectos.create"}, auditor.Actions())
}

func TestProjectReadOnlyRoles(t *testing.T) {
	_, _, router := setup(auth.RoleContador)
	handlertest.Expect(t, handlertest.Do(router, http.MethodGet, "/proyectos", ""), http.StatusOK, `"total":1`)
	handlertest.Expect(t, handlertest.Do(router, http.MethodPut, "/proyectos/p1", `{}`), http.StatusForbidden)
	handlertest.Expect(t, handlertest.Do(router, http.MethodGet, "/proyectos/nope", ""), http.StatusNotFound, "not_found")
}

func TestAssignEmployee(t *testing.T) {
	svc, _, router := setup(auth.RoleRRHH)

	rec := handlertest.Do(router, http.MethodPost, "/proyectos/p1/asignaciones", `{"employeeId":"e2","startDate":"2024-03-01"}`)
	handlertest.Expect(t, rec, http.StatusCreated, `"id":"a2"`)
	assert.Equal(t, "p1", svc.lastAssign.ProjectID)
	assert.Nil(t, svc.lastAssign.EndDate)

	svc.assignErr = proyectos.ErrAssignmentOverlap
	rec = handlertest.Do(router, http.MethodPost, "/proyectos/p1/asignaciones", `{"employeeId":"e1","startDate":"2024-03-01","endDate":"2024-03-31"}`)
	handlertest.Expect(t, rec, http.StatusConflict, "assignment_overlap")
	require.NotNil(t, svc.lastAssign.EndDate)

	svc.assignErr = proyectos.ErrProjectClosed
	rec = handlertest.Do(router, http.MethodPost, "/proyectos/p1/asignaciones", `{"employeeId":"e1","startDate":"2024-03-01"}`)
	handlertest.Expect(t, rec, http.StatusConflict, "project_closed")

	rec = handlertest.Do(router, http.MethodGet, "/proyectos/p1/asignaciones", "")
	handlertest.Expect(t, rec, http.StatusOK, `"employeeId":"e1"`, `"employeeId":"e2"`)
}

func TestEndAssignment(t *testing.T) {
	_, auditor, router := setup(auth.RoleAdmin)

	rec := handlertest.Do(router, http.MethodPost, "/proyectos/p1/asignaciones/a1/fin", `{"endDate":"2024-06-30"}`)
	handlertest.Expect(t, rec, http.StatusOK, `"endDate":"2024-06-30T00:00:00Z"`)

	rec = handlertest.Do(router, http.MethodPost, "/proyectos/p1/asignaciones/a1/fin", `{"endDate":"2024-07-30"}`)
	handlertest.Expect(t, rec, http.StatusConflict, "assignment_ended")

	rec = handlertest.Do(router, http.MethodPost, "/proyectos/p1/asignaciones/zz/fin", `{"endDate":"2024-07-30"}`)
	handlertest.Expect(t, rec, http.StatusNotFound, "assignment_not_found")
	assert.Equal(t, []string{"proyectos.assignment_end"}, auditor.Actions())
}
