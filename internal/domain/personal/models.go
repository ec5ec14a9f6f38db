package personal

import (
	"time"

	"github.com/shopspring/decimal"
)

type Employee struct {
	ID              string           `json:"id"`
	CompanyID       string           `json:"companyId"`
	UserID          string           `json:"userId,omitempty"`
	DocumentNumber  string           `json:"documentNumber"`
	FirstName       string           `json:"firstName"`
	LastName        string           `json:"lastName"`
	Email           string           `json:"email,omitempty"`
	Phone           string           `json:"phone,omitempty"`
	Position        string           `json:"position"`
	HireDate        time.Time        `json:"hireDate"`
	TerminationDate *time.Time       `json:"terminationDate,omitempty"`
	Status          string           `json:"status"`
	Salary          *decimal.Decimal `json:"salary,omitempty"`
	BankAccount     string           `json:"bankAccount,omitempty"`
	PensionSystem   string           `json:"pensionSystem,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

func (e Employee) FullName() string {
	return e.LastName + ", " + e.FirstName
}

type ListFilter struct {
	Status string
	Search string
	Limit  int
	Offset int
}
