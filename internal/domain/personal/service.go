package personal

import (
	"context"
	"strings"
	"time"
)

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) Create(ctx context.Context, companyID string, emp Employee) (Employee, error) {
	emp = normalize(emp)
	if emp.Status == "" {
		emp.Status = StatusActivo
	}
	if err := validate(emp); err != nil {
		return Employee{}, err
	}
	id, err := s.store.Create(ctx, companyID, emp)
	if err != nil {
		return Employee{}, err
	}
	return s.store.Get(ctx, companyID, id)
}

func (s *Service) Get(ctx context.Context, companyID, employeeID string) (Employee, error) {
	return s.store.Get(ctx, companyID, employeeID)
}

func (s *Service) GetByUserID(ctx context.Context, companyID, userID string) (Employee, error) {
	return s.store.GetByUserID(ctx, companyID, userID)
}

func (s *Service) List(ctx context.Context, companyID string, filter ListFilter) ([]Employee, int, error) {
	if filter.Status != "" && !validStatus(filter.Status) {
		return nil, 0, ErrInvalidStatus
	}
	filter.Search = strings.TrimSpace(filter.Search)
	return s.store.List(ctx, companyID, filter)
}

// Update replaces the editable fields. Termination goes through Cese.
func (s *Service) Update(ctx context.Context, companyID, employeeID string, emp Employee) (Employee, error) {
	current, err := s.store.Get(ctx, companyID, employeeID)
	if err != nil {
		return Employee{}, err
	}
	emp = normalize(emp)
	if emp.Status == "" {
		emp.Status = current.Status
	}
	if emp.Status == StatusCesado && current.Status != StatusCesado {
		return Employee{}, ErrInvalidStatus
	}
	if current.Status == StatusCesado && emp.Status != StatusCesado {
		return Employee{}, ErrAlreadyTerminated
	}
	emp.TerminationDate = current.TerminationDate
	if err := validate(emp); err != nil {
		return Employee{}, err
	}
	if err := s.store.Update(ctx, companyID, employeeID, emp); err != nil {
		return Employee{}, err
	}
	return s.store.Get(ctx, companyID, employeeID)
}

// Cese terminates the employee on date.
func (s *Service) Cese(ctx context.Context, companyID, employeeID string, date time.Time) (Employee, error) {
	current, err := s.store.Get(ctx, companyID, employeeID)
	if err != nil {
		return Employee{}, err
	}
	if current.Status == StatusCesado {
		return Employee{}, ErrAlreadyTerminated
	}
	if date.Before(current.HireDate) {
		return Employee{}, ErrInvalidTermination
	}
	if err := s.store.Terminate(ctx, companyID, employeeID, date); err != nil {
		return Employee{}, err
	}
	return s.store.Get(ctx, companyID, employeeID)
}

func normalize(emp Employee) Employee {
	emp.DocumentNumber = strings.TrimSpace(emp.DocumentNumber)
	emp.FirstName = strings.TrimSpace(emp.FirstName)
	emp.LastName = strings.TrimSpace(emp.LastName)
	emp.Email = strings.TrimSpace(strings.ToLower(emp.Email))
	emp.BankAccount = strings.TrimSpace(emp.BankAccount)
	return emp
}

func validate(emp Employee) error {
	if !validPosition(emp.Position) {
		return ErrInvalidPosition
	}
	if !validStatus(emp.Status) {
		return ErrInvalidStatus
	}
	if emp.Salary != nil && emp.Salary.IsNegative() {
		return ErrNegativeSalary
	}
	if emp.TerminationDate != nil && emp.TerminationDate.Before(emp.HireDate) {
		return ErrInvalidTermination
	}
	return nil
}
