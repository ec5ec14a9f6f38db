package personalhandler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/domain/auth"
	"backoffice/internal/domain/personal"
	"backoffice/internal/transport/http/handlers/handlertest"
)

type fakeService struct {
	employees map[string]personal.Employee
	createErr error
	lastList  personal.ListFilter
}

func newFakeService() *fakeService {
	return &fakeService{employees: map[string]personal.Employee{
		"e1": {ID: "e1", CompanyID: "c1", UserID: "u-agente", DocumentNumber: "40112233", FirstName: "Ana", LastName: "Rojas",
			Position: personal.PositionAgente, Status: personal.StatusActivo, HireDate: time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)},
	}}
}

func (f *fakeService) Create(_ context.Context, companyID string, emp personal.Employee) (personal.Employee, error) {
	if f.createErr != nil {
		return personal.Employee{}, f.createErr
	}
	emp.ID = "e2"
	emp.CompanyID = companyID
	if emp.Status == "" {
		emp.Status = personal.StatusActivo
	}
	f.employees[emp.ID] = emp
	return emp, nil
}

func (f *fakeService) Get(_ context.Context, _, id string) (personal.Employee, error) {
	emp, ok := f.employees[id]
	if !ok {
		return personal.Employee{}, personal.ErrNotFound
	}
	return emp, nil
}

func (f *fakeService) GetByUserID(_ context.Context, _, userID string) (personal.Employee, error) {
	for _, emp := range f.employees {
		if emp.UserID == userID {
			return emp, nil
		}
	}
	return personal.Employee{}, personal.ErrNotFound
}

func (f *fakeService) List(_ context.Context, _ string, filter personal.ListFilter) ([]personal.Employee, int, error) {
	f.lastList = filter
	out := make([]personal.Employee, 0, len(f.employees))
	for _, emp := range f.employees {
		out = append(out, emp)
	}
	return out, len(out), nil
}

func (f *fakeService) Update(_ context.Context, _, id string, emp personal.Employee) (personal.Employee, error) {
	if _, ok := f.employees[id]; !ok {
		return personal.Employee{}, personal.ErrNotFound
	}
	emp.ID = id
	f.employees[id] = emp
	return emp, nil
}

func (f *fakeService) Cese(_ context.Context, _, id string, date time.Time) (personal.Employee, error) {
	emp, ok := f.employees[id]
	if !ok {
		return personal.Employee{}, personal.ErrNotFound
	}
	if emp.Status == personal.StatusCesado {
		return personal.Employee{}, personal.ErrAlreadyTerminated
	}
	emp.Status = personal.StatusCesado
	emp.TerminationDate = &date
	f.employees[id] = emp
	return emp, nil
}

func setup(role string) (*fakeService, *handlertest.Auditor, http.Handler) {
	svc := newFakeService()
	auditor := &handlertest.Auditor{}
	h := NewHandler(svc, handlertest.Perms{}, auditor)
	return svc, auditor, handlertest.Router(handlertest.User(role), func(r chi.Router) { h.RegisterRoutes(r) })
}

const validEmployee = `{"documentNumber":"70998877","firstName":"Luis","lastName":"Paz","position":"Supervisor","hireDate":"2024-02-01","salary":"2100.50","bankAccount":"191-22334455"}`

func TestCreateEmployee(t *testing.T) {
	svc, auditor, router := setup(auth.RoleRRHH)

	rec := handlertest.Do(router, http.MethodPost, "/personal", validEmployee)
	handlertest.Expect(t, rec, http.StatusCreated, `"id":"e2"`)
	created := svc.employees["e2"]
	assert.Equal(t, personal.PositionSupervisor, created.Position)
	require.NotNil(t, created.Salary)
	assert.Equal(t, "2100.5", created.Salary.String())
	assert.Equal(t, []string{"personal.create"}, auditor.Actions())

	rec = handlertest.Do(router, http.MethodPost, "/personal", `{"firstName":"Luis","position":"chef","hireDate":"01/02/2024"}`)
	handlertest.Expect(t, rec, http.StatusBadRequest, "validation_error", "documentNumber", "position", "hireDate")

	svc.createErr = personal.ErrDuplicateDocument
	rec = handlertest.Do(router, http.MethodPost, "/personal", validEmployee)
	handlertest.Expect(t, rec, http.StatusConflict, "duplicate_document")
}

func TestCreateEmployeeRequiresWritePermission(t *testing.T) {
	_, _, router := setup(auth.RoleSupervisor)
	rec := handlertest.Do(router, http.MethodPost, "/personal", validEmployee)
	handlertest.Expect(t, rec, http.StatusForbidden, "forbidden")

	rec = handlertest.Do(router, http.MethodGet, "/personal?status=activo&q=rojas&limit=10", "")
	handlertest.Expect(t, rec, http.StatusOK, `"total":1`, `"limit":10`)
}

func TestListPassesFilters(t *testing.T) {
	svc, _, router := setup(auth.RoleAdmin)
	rec := handlertest.Do(router, http.MethodGet, "/personal?status=cesado&q=paz&offset=5", "")
	handlertest.Expect(t, rec, http.StatusOK)
	assert.Equal(t, personal.ListFilter{Status: "cesado", Search: "paz", Limit: 50, Offset: 5}, svc.lastList)
}

func TestGetAndUpdateEmployee(t *testing.T) {
	_, auditor, router := setup(auth.RoleRRHH)

	handlertest.Expect(t, handlertest.Do(router, http.MethodGet, "/personal/missing", ""), http.StatusNotFound, "not_found")

	rec := handlertest.Do(router, http.MethodPut, "/personal/e1", validEmployee)
	handlertest.Expect(t, rec, http.StatusOK, `"firstName":"Luis"`)
	require.Len(t, auditor.Entries, 1)
	assert.Equal(t, "e1", auditor.Entries[0].EntityID)
}

func TestCese(t *testing.T) {
	_, auditor, router := setup(auth.RoleRRHH)

	handlertest.Expect(t, handlertest.Do(router, http.MethodPost, "/personal/e1/cese", `{}`), http.StatusBadRequest, "terminationDate")

	rec := handlertest.Do(router, http.MethodPost, "/personal/e1/cese", `{"terminationDate":"2024-06-30"}`)
	handlertest.Expect(t, rec, http.StatusOK, `"status":"cesado"`)

	rec = handlertest.Do(router, http.MethodPost, "/personal/e1/cese", `{"terminationDate":"2024-07-30"}`)
	handlertest.Expect(t, rec, http.StatusConflict, "already_terminated")
	assert.Equal(t, []string{"personal.cese"}, auditor.Actions())
}

func TestMe(t *testing.T) {
	_, _, router := setup(auth.RoleAgente)
	rec := handlertest.Do(router, http.MethodGet, "/me", "")
	handlertest.Expect(t, rec, http.StatusOK, `"role":"agente"`, `"documentNumber":"40112233"`)

	_, _, router = setup(auth.RoleContador)
	rec = handlertest.Do(router, http.MethodGet, "/me", "")
	handlertest.Expect(t, rec, http.StatusOK, `"employee":null`)
}
