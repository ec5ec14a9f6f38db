package asistencia

import (
	"context"
	"time"
)

type StoreAPI interface {
	EmployeeExists(ctx context.Context, companyID, employeeID string) (bool, error)
	PeriodClosed(ctx context.Context, companyID, employeeID string, date time.Time) (bool, error)
	UpsertRecords(ctx context.Context, companyID string, records []Record) ([]string, error)
	ListRecords(ctx context.Context, companyID string, filter RecordFilter) ([]Record, int, error)
	EmployeeRecords(ctx context.Context, companyID, employeeID string, from, to time.Time) ([]Record, error)

	CreateDeduction(ctx context.Context, companyID string, d Deduction) (string, error)
	GetDeduction(ctx context.Context, companyID, deductionID string) (Deduction, error)
	ListDeductions(ctx context.Context, companyID string, filter DeductionFilter) ([]Deduction, int, error)
	VoidDeduction(ctx context.Context, companyID, deductionID string) (bool, error)
}
