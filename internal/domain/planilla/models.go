package planilla

import (
	"time"

	"github.com/shopspring/decimal"
)

type Planilla struct {
	ID                   string          `json:"id"`
	CompanyID            string          `json:"companyId"`
	ProjectID            string          `json:"projectId,omitempty"`
	ProjectName          string          `json:"projectName,omitempty"`
	PeriodStart          time.Time       `json:"periodStart"`
	PeriodEnd            time.Time       `json:"periodEnd"`
	Description          string          `json:"description,omitempty"`
	Status               string          `json:"status"`
	TotalIngresos        decimal.Decimal `json:"totalIngresos"`
	TotalDescuentos      decimal.Decimal `json:"totalDescuentos"`
	TotalNeto            decimal.Decimal `json:"totalNeto"`
	TotalAporteEmpleador decimal.Decimal `json:"totalAporteEmpleador"`
	EmployeeCount        int             `json:"employeeCount"`
	CreatedBy            string          `json:"createdBy,omitempty"`
	GeneratedAt          *time.Time      `json:"generatedAt,omitempty"`
	GeneratedBy          string          `json:"generatedBy,omitempty"`
	ApprovedAt           *time.Time      `json:"approvedAt,omitempty"`
	ApprovedBy           string          `json:"approvedBy,omitempty"`
	PaidAt               *time.Time      `json:"paidAt,omitempty"`
	PaidBy               string          `json:"paidBy,omitempty"`
	CancelledAt          *time.Time      `json:"cancelledAt,omitempty"`
	CancelledBy          string          `json:"cancelledBy,omitempty"`
	CancelReason         string          `json:"cancelReason,omitempty"`
	CreatedAt            time.Time       `json:"createdAt"`
	UpdatedAt            time.Time       `json:"updatedAt"`
}

// Detail is one employee's line in a planilla.
type Detail struct {
	ID                   string          `json:"id"`
	EmployeeID           string          `json:"employeeId"`
	EmployeeName         string          `json:"employeeName,omitempty"`
	DocumentNumber       string          `json:"documentNumber,omitempty"`
	DaysWorked           int             `json:"daysWorked"`
	Absences             int             `json:"absences"`
	Tardies              int             `json:"tardies"`
	OvertimeHours        decimal.Decimal `json:"overtimeHours"`
	BasicPay             decimal.Decimal `json:"basicPay"`
	OvertimePay          decimal.Decimal `json:"overtimePay"`
	Bonuses              decimal.Decimal `json:"bonuses"`
	StatutoryDeductions  decimal.Decimal `json:"statutoryDeductions"`
	EmployerContribution decimal.Decimal `json:"employerContribution"`
	RegisteredDeductions decimal.Decimal `json:"registeredDeductions"`
	TotalIngresos        decimal.Decimal `json:"totalIngresos"`
	TotalDescuentos      decimal.Decimal `json:"totalDescuentos"`
	Neto                 decimal.Decimal `json:"neto"`
	Warnings             []string        `json:"warnings"`
}

// Components is the output of the database payroll function.
type Components struct {
	BasicPay             decimal.Decimal
	OvertimePay          decimal.Decimal
	Bonuses              decimal.Decimal
	StatutoryDeductions  decimal.Decimal
	EmployerContribution decimal.Decimal
}

type AttendanceTotals struct {
	Records       int
	DaysWorked    int
	Absences      int
	Tardies       int
	OvertimeHours decimal.Decimal
}

type ScopedEmployee struct {
	ID             string
	FullName       string
	DocumentNumber string
	BankAccount    string
	UserID         string
}

type DeductionRef struct {
	ID     string
	Amount decimal.Decimal
}

type Totals struct {
	Ingresos        decimal.Decimal `json:"totalIngresos"`
	Descuentos      decimal.Decimal `json:"totalDescuentos"`
	Neto            decimal.Decimal `json:"totalNeto"`
	AporteEmpleador decimal.Decimal `json:"totalAporteEmpleador"`
	EmployeeCount   int             `json:"employeeCount"`
	Warnings        map[string]int  `json:"warnings"`
}

type ListFilter struct {
	Status    string
	ProjectID string
	Limit     int
	Offset    int
}

type CreateInput struct {
	ProjectID   string
	PeriodStart time.Time
	PeriodEnd   time.Time
	Description string
}

// Actor identifies who performs an operation, for audit and stamps.
type Actor struct {
	UserID    string
	CompanyID string
	RoleName  string
	RequestID string
	IP        string
}

type JournalLine struct {
	Account string
	Debit   decimal.Decimal
	Credit  decimal.Decimal
}
