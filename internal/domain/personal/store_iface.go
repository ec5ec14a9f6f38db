package personal

import (
	"context"
	"time"
)

type StoreAPI interface {
	Create(ctx context.Context, companyID string, emp Employee) (string, error)
	Get(ctx context.Context, companyID, employeeID string) (Employee, error)
	GetByUserID(ctx context.Context, companyID, userID string) (Employee, error)
	List(ctx context.Context, companyID string, filter ListFilter) ([]Employee, int, error)
	Update(ctx context.Context, companyID, employeeID string, emp Employee) error
	Terminate(ctx context.Context, companyID, employeeID string, date time.Time) error
}
