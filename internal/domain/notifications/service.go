package notifications

import (
	"context"
	"log/slog"
)

type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

type Service struct {
	store StoreAPI
	// Mailer may be nil; in-app rows are written regardless.
	Mailer Mailer
	From   string
}

func New(store StoreAPI, mailer Mailer, from string) *Service {
	if from == "" {
		from = "no-reply@example.com"
	}
	return &Service{store: store, Mailer: mailer, From: from}
}

// Create stores the in-app notification and mirrors it by email. Email
// failures are logged, never returned.
func (s *Service) Create(ctx context.Context, companyID, userID, ntype, title, body string) error {
	if err := s.store.CreateNotification(ctx, companyID, userID, ntype, title, body); err != nil {
		return err
	}
	if s.Mailer == nil {
		return nil
	}

	email, err := s.store.UserEmail(ctx, companyID, userID)
	if err != nil {
		slog.Warn("notification email lookup failed", "userId", userID, "err", err)
		return nil
	}
	if email == "" {
		return nil
	}
	if err := s.Mailer.Send(ctx, s.From, email, title, body); err != nil {
		slog.Warn("notification email send failed", "userId", userID, "type", ntype, "err", err)
	}
	return nil
}

func (s *Service) List(ctx context.Context, companyID, userID string, limit, offset int) ([]Notification, error) {
	return s.store.ListNotifications(ctx, companyID, userID, limit, offset)
}

func (s *Service) MarkRead(ctx context.Context, companyID, userID, notificationID string) error {
	return s.store.MarkRead(ctx, companyID, userID, notificationID)
}
