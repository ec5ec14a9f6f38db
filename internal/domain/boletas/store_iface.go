package boletas

import "context"

type StoreAPI interface {
	List(ctx context.Context, companyID string, filter ListFilter) ([]Payslip, int, error)
	Get(ctx context.Context, companyID, payslipID string) (Payslip, error)
	Data(ctx context.Context, companyID, payslipID string) (SlipData, error)
	Unrendered(ctx context.Context, companyID, planillaID string) ([]string, error)
	SetFile(ctx context.Context, companyID, payslipID, fileURL string) error
	EmployeeIDForUser(ctx context.Context, companyID, userID string) (string, error)
}
