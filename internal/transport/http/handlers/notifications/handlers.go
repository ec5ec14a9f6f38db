package notificationshandler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"backoffice/internal/domain/notifications"
	"backoffice/internal/transport/http/api"
	"backoffice/internal/transport/http/middleware"
	"backoffice/internal/transport/http/shared"
)

type Service interface {
	List(ctx context.Context, companyID, userID string, limit, offset int) ([]notifications.Notification, error)
	MarkRead(ctx context.Context, companyID, userID, notificationID string) error
}

type Handler struct {
	Service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/notificaciones", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleList)
		r.Post("/{notificationID}/leida", h.handleMarkRead)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	page := shared.ParsePagination(r, 100, 500)
	items, err := h.Service.List(r.Context(), user.CompanyID, user.UserID, page.Limit, page.Offset)
	if err != nil {
		shared.WriteError(w, r, err, "notification_list_failed")
		return
	}
	api.Success(w, items, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	notificationID := chi.URLParam(r, "notificationID")
	if err := h.Service.MarkRead(r.Context(), user.CompanyID, user.UserID, notificationID); err != nil {
		shared.WriteError(w, r, err, "notification_update_failed",
			shared.ErrorCase{Err: notifications.ErrNotFound, Status: http.StatusNotFound, Code: "not_found"})
		return
	}
	api.Success(w, map[string]string{"status": "read"}, middleware.GetRequestID(r.Context()))
}
