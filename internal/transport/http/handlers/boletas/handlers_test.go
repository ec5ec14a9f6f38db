package boletashandler

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"backoffice/internal/domain/auth"
	"backoffice/internal/domain/boletas"
	"backoffice/internal/transport/http/handlers/handlertest"
)

type fakeService struct {
	lastFilter boletas.ListFilter
}

func (f *fakeService) List(_ context.Context, _ auth.UserContext, filter boletas.ListFilter) ([]boletas.Payslip, int, error) {
	f.lastFilter = filter
	return []boletas.Payslip{{ID: "b1", EmployeeName: "Rojas, Ana"}}, 1, nil
}

func (f *fakeService) Open(_ context.Context, user auth.UserContext, id string) (boletas.Payslip, []byte, error) {
	switch {
	case id != "b1":
		return boletas.Payslip{}, nil, boletas.ErrNotFound
	case user.RoleName == auth.RoleAgente && user.UserID != "u-owner":
		return boletas.Payslip{}, nil, boletas.ErrForbidden
	}
	return boletas.Payslip{ID: "b1", EmployeeName: "Rojas, Ana"}, []byte("%PDF-1.3 test"), nil
}

func setup(user *auth.UserContext) (*fakeService, *handlertest.Auditor, http.Handler) {
	svc := &fakeService{}
	auditor := &handlertest.Auditor{}
	h := NewHandler(svc, handlertest.Perms{}, auditor)
	return svc, auditor, handlertest.Router(user, func(r chi.Router) { h.RegisterRoutes(r) })
}

func TestListPayslips(t *testing.T) {
	svc, _, router := setup(handlertest.User(auth.RoleContador))
	rec := handlertest.Do(router, http.MethodGet, "/boletas?planillaId=pl1&limit=5", "")
	handlertest.Expect(t, rec, http.StatusOK, `"id":"b1"`, `"total":1`)
	assert.Equal(t, boletas.ListFilter{PlanillaID: "pl1", Limit: 5}, svc.lastFilter)
}

func TestDownloadPayslip(t *testing.T) {
	owner := handlertest.User(auth.RoleAgente)
	owner.UserID = "u-owner"
	_, auditor, router := setup(owner)

	rec := handlertest.Do(router, http.MethodGet, "/boletas/b1/descarga", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".pdf")
	assert.Equal(t, "%PDF-1.3 test", rec.Body.String())
	assert.Equal(t, []string{"boletas.download"}, auditor.Actions())

	handlertest.Expect(t, handlertest.Do(router, http.MethodGet, "/boletas/b9/descarga", ""), http.StatusNotFound, "not_found")

	_, _, router = setup(handlertest.User(auth.RoleAgente))
	handlertest.Expect(t, handlertest.Do(router, http.MethodGet, "/boletas/b1/descarga", ""), http.StatusForbidden, "forbidden")
}

func TestDownloadRequiresAuth(t *testing.T) {
	_, _, router := setup(nil)
	handlertest.Expect(t, handlertest.Do(router, http.MethodGet, "/boletas/b1/descarga", ""), http.StatusUnauthorized)
}
