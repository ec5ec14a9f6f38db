package planilla

import (
	"context"
	"time"
)

type StoreAPI interface {
	// InTx runs fn with a store bound to one transaction.
	InTx(ctx context.Context, fn func(tx StoreAPI) error) error
	LockCompany(ctx context.Context, companyID string) error

	Create(ctx context.Context, companyID string, in CreateInput, createdBy string) (string, error)
	Get(ctx context.Context, companyID, planillaID string) (Planilla, error)
	GetForUpdate(ctx context.Context, companyID, planillaID string) (Planilla, error)
	List(ctx context.Context, companyID string, filter ListFilter) ([]Planilla, int, error)
	HasOverlap(ctx context.Context, companyID, projectID string, start, end time.Time) (bool, error)
	ProjectExists(ctx context.Context, companyID, projectID string) (bool, error)

	ScopeEmployees(ctx context.Context, p Planilla) ([]ScopedEmployee, error)
	AttendanceTotals(ctx context.Context, companyID, employeeID string, start, end time.Time) (AttendanceTotals, error)
	PendingDeductions(ctx context.Context, companyID, employeeID string, start, end time.Time) ([]DeductionRef, error)
	Calculate(ctx context.Context, employeeID string, start, end time.Time) (Components, error)

	DeleteDetails(ctx context.Context, planillaID string) error
	InsertDetail(ctx context.Context, companyID, planillaID string, d Detail) error
	LinkDeductions(ctx context.Context, planillaID string, deductionIDs []string) error
	SaveGeneration(ctx context.Context, companyID, planillaID string, totals Totals, actorID string) error
	Details(ctx context.Context, companyID, planillaID string) ([]Detail, error)

	UpdateStatus(ctx context.Context, companyID, planillaID, status, actorID, reason string) error
	ApplyDeductions(ctx context.Context, companyID, planillaID string) (linked, applied int, err error)
	CreatePayslips(ctx context.Context, companyID, planillaID string) (int, error)
	DetailUserIDs(ctx context.Context, companyID, planillaID string) ([]string, error)

	RecordAudit(ctx context.Context, actor Actor, action, planillaID string, before, after any) error
}
