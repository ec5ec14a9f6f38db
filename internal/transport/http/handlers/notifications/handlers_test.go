package notificationshandler

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"backoffice/internal/domain/auth"
	"backoffice/internal/domain/notifications"
	"backoffice/internal/transport/http/handlers/handlertest"
)

type fakeService struct {
	owner string
	read  []string
}

func (f *fakeService) List(_ context.Context, _, userID string, _, _ int) ([]notifications.Notification, error) {
	if userID != f.owner {
		return []notifications.Notification{}, nil
	}
	return []notifications.Notification{{ID: "n1", Type: notifications.TypeBoletaPublicada, Title: "Boleta de pago disponible"}}, nil
}

func (f *fakeService) MarkRead(_ context.Context, _, userID, id string) error {
	if userID != f.owner || id != "n1" {
		return notifications.ErrNotFound
	}
	f.read = append(f.read, id)
	return nil
}

func TestNotifications(t *testing.T) {
	user := handlertest.User(auth.RoleAgente)
	svc := &fakeService{owner: user.UserID}
	h := NewHandler(svc)
	router := handlertest.Router(user, func(r chi.Router) { h.RegisterRoutes(r) })

	handlertest.Expect(t, handlertest.Do(router, http.MethodGet, "/notificaciones", ""), http.StatusOK, `"type":"boleta_publicada"`)
	handlertest.Expect(t, handlertest.Do(router, http.MethodPost, "/notificaciones/n1/leida", ""), http.StatusOK, `"status":"read"`)
	handlertest.Expect(t, handlertest.Do(router, http.MethodPost, "/notificaciones/n2/leida", ""), http.StatusNotFound, "not_found")
	assert.Equal(t, []string{"n1"}, svc.read)

	anonymous := handlertest.Router(nil, func(r chi.Router) { h.RegisterRoutes(r) })
	handlertest.Expect(t, handlertest.Do(anonymous, http.MethodGet, "/notificaciones", ""), http.StatusUnauthorized)
}
