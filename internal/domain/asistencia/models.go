package asistencia

import (
	"time"

	"github.com/shopspring/decimal"
)

type Record struct {
	ID            string          `json:"id"`
	EmployeeID    string          `json:"employeeId"`
	EmployeeName  string          `json:"employeeName,omitempty"`
	ProjectID     string          `json:"projectId,omitempty"`
	WorkDate      time.Time       `json:"workDate"`
	State         string          `json:"state"`
	HoursWorked   decimal.Decimal `json:"hoursWorked"`
	OvertimeHours decimal.Decimal `json:"overtimeHours"`
	Note          string          `json:"note,omitempty"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

type RecordFilter struct {
	EmployeeID string
	ProjectID  string
	From       time.Time
	To         time.Time
	Limit      int
	Offset     int
}

// Summary aggregates attendance for one employee over an inclusive range.
type Summary struct {
	EmployeeID    string          `json:"employeeId"`
	From          time.Time       `json:"from"`
	To            time.Time       `json:"to"`
	Presente      int             `json:"presente"`
	Tardanza      int             `json:"tardanza"`
	Falta         int             `json:"falta"`
	Descanso      int             `json:"descanso"`
	Permiso       int             `json:"permiso"`
	DaysWorked    int             `json:"daysWorked"`
	HoursWorked   decimal.Decimal `json:"hoursWorked"`
	OvertimeHours decimal.Decimal `json:"overtimeHours"`
}

type Deduction struct {
	ID           string          `json:"id"`
	EmployeeID   string          `json:"employeeId"`
	EmployeeName string          `json:"employeeName,omitempty"`
	Type         string          `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	Date         time.Time       `json:"date"`
	Description  string          `json:"description,omitempty"`
	Status       string          `json:"status"`
	PlanillaID   string          `json:"planillaId,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

type DeductionFilter struct {
	EmployeeID string
	Status     string
	From       time.Time
	To         time.Time
	Limit      int
	Offset     int
}
