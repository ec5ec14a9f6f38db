package notifications

import "context"

type StoreAPI interface {
	CreateNotification(ctx context.Context, companyID, userID, ntype, title, body string) error
	UserEmail(ctx context.Context, companyID, userID string) (string, error)
	ListNotifications(ctx context.Context, companyID, userID string, limit, offset int) ([]Notification, error)
	MarkRead(ctx context.Context, companyID, userID, notificationID string) error
}
