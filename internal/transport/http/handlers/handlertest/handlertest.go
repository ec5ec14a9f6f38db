// Package handlertest holds helpers shared by handler package tests.
package handlertest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"backoffice/internal/domain/auth"
	"backoffice/internal/transport/http/middleware"
)

// Perms grants every permission listed for the role name carried in RoleID.
type Perms struct{}

func (Perms) HasPermission(_ context.Context, roleID, permission string) (bool, error) {
	for _, p := range auth.RolePermissions[roleID] {
		if p == permission {
			return true, nil
		}
	}
	return false, nil
}

// User builds a user context whose RoleID resolves through Perms.
func User(role string) *auth.UserContext {
	return &auth.UserContext{UserID: "u-" + role, CompanyID: "c1", RoleID: role, RoleName: role}
}

// Router mounts routes behind a middleware that injects user, if any.
func Router(user *auth.UserContext, register func(chi.Router)) http.Handler {
	r := chi.NewRouter()
	if user != nil {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(middleware.WithUser(req.Context(), *user)))
			})
		})
	}
	register(r)
	return r
}

func Do(h http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// Expect fails the test unless rec has status and its body contains every fragment.
func Expect(t *testing.T, rec *httptest.ResponseRecorder, status int, fragments ...string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("expected status %d, got %d: %s", status, rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	for _, f := range fragments {
		if !strings.Contains(body, f) {
			t.Fatalf("expected body to contain %q: %s", f, body)
		}
	}
}

// Data decodes the data member of a success envelope into out.
func Data(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

type AuditEntry struct {
	Action   string
	Entity   string
	EntityID string
	ActorID  string
}

// Auditor records audit calls in memory.
type Auditor struct {
	mu      sync.Mutex
	Entries []AuditEntry
}

func (a *Auditor) Record(_ context.Context, _, actorID, action, entityType, entityID, _, _ string, _, _ any) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Entries = append(a.Entries, AuditEntry{Action: action, Entity: entityType, EntityID: entityID, ActorID: actorID})
	return nil
}

func (a *Auditor) Actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.Entries))
	for _, e := range a.Entries {
		out = append(out, e.Action)
	}
	return out
}
