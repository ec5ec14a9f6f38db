package boletas

import (
	"time"

	"github.com/shopspring/decimal"
)

type Payslip struct {
	ID           string          `json:"id"`
	PlanillaID   string          `json:"planillaId"`
	EmployeeID   string          `json:"employeeId"`
	EmployeeName string          `json:"employeeName"`
	PeriodStart  time.Time       `json:"periodStart"`
	PeriodEnd    time.Time       `json:"periodEnd"`
	Neto         decimal.Decimal `json:"neto"`
	Rendered     bool            `json:"rendered"`
	FileURL      string          `json:"-"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// SlipData is everything printed on one payslip.
type SlipData struct {
	PayslipID            string
	CompanyName          string
	ProjectName          string
	PeriodStart          time.Time
	PeriodEnd            time.Time
	PaidAt               *time.Time
	EmployeeName         string
	DocumentNumber       string
	Position             string
	BankAccount          string
	DaysWorked           int
	Absences             int
	Tardies              int
	OvertimeHours        decimal.Decimal
	BasicPay             decimal.Decimal
	OvertimePay          decimal.Decimal
	Bonuses              decimal.Decimal
	StatutoryDeductions  decimal.Decimal
	RegisteredDeductions decimal.Decimal
	EmployerContribution decimal.Decimal
	TotalIngresos        decimal.Decimal
	TotalDescuentos      decimal.Decimal
	Neto                 decimal.Decimal
}

type ListFilter struct {
	EmployeeID string
	PlanillaID string
	Limit      int
	Offset     int
}
