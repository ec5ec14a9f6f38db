package authhandler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"backoffice/internal/domain/auth"
	"backoffice/internal/transport/http/middleware"
)

type fakeService struct {
	loginErr  error
	enableErr error
	loggedOut string
}

func (f *fakeService) Login(_ context.Context, email, password, _ string) (auth.LoginResult, error) {
	if f.loginErr != nil {
		return auth.LoginResult{}, f.loginErr
	}
	return auth.LoginResult{Token: "tok", UserID: "u1", CompanyID: "c1", Role: auth.RoleRRHH}, nil
}

func (f *fakeService) Logout(_ context.Context, user auth.UserContext) error {
	f.loggedOut = user.UserID
	return nil
}

func (f *fakeService) SetupMFA(context.Context, auth.UserContext) (auth.MFASetup, error) {
	return auth.MFASetup{}, auth.ErrMFAUnavailable
}

func (f *fakeService) EnableMFA(context.Context, auth.UserContext, string) error {
	return f.enableErr
}

func router(svc Service, user *auth.UserContext) http.Handler {
	r := chi.NewRouter()
	if user != nil {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(middleware.WithUser(req.Context(), *user)))
			})
		})
	}
	NewHandler(svc).RegisterRoutes(r)
	return r
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestLogin(t *testing.T) {
	svc := &fakeService{}
	rec := do(router(svc, nil), http.MethodPost, "/auth/login", `{"email":"RRHH@Example.com","password":"x"}`)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"token":"tok"`) {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}

	rec = do(router(svc, nil), http.MethodPost, "/auth/login", `{"email":""}`)
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "validation_error") {
		t.Fatalf("expected validation error, got %d %s", rec.Code, rec.Body.String())
	}

	svc.loginErr = auth.ErrMFARequired
	rec = do(router(svc, nil), http.MethodPost, "/auth/login", `{"email":"a@b.c","password":"x"}`)
	if rec.Code != http.StatusUnauthorized || !strings.Contains(rec.Body.String(), "mfa_required") {
		t.Fatalf("expected mfa_required, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestProtectedRoutesNeedUser(t *testing.T) {
	svc := &fakeService{}
	rec := do(router(svc, nil), http.MethodPost, "/auth/logout", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	user := &auth.UserContext{UserID: "u1", CompanyID: "c1"}
	rec = do(router(svc, user), http.MethodPost, "/auth/logout", "")
	if rec.Code != http.StatusOK || svc.loggedOut != "u1" {
		t.Fatalf("expected logout of u1, got %d %q", rec.Code, svc.loggedOut)
	}

	rec = do(router(svc, user), http.MethodPost, "/auth/mfa/setup", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without encryption key, got %d", rec.Code)
	}

	svc.enableErr = auth.ErrMFAInvalid
	rec = do(router(svc, user), http.MethodPost, "/auth/mfa/enable", `{"code":"000000"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for invalid code, got %d", rec.Code)
	}
}
