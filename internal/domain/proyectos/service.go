package proyectos

import (
	"context"
	"strings"
	"time"
)

// employeeTerminated mirrors personal.StatusCesado without importing the package.
const employeeTerminated = "cesado"

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) Create(ctx context.Context, companyID string, p Project) (Project, error) {
	p = normalize(p)
	if p.Status == "" {
		p.Status = StatusActivo
	}
	if err := validate(p); err != nil {
		return Project{}, err
	}
	id, err := s.store.CreateProject(ctx, companyID, p)
	if err != nil {
		return Project{}, err
	}
	return s.store.GetProject(ctx, companyID, id)
}

func (s *Service) Get(ctx context.Context, companyID, projectID string) (Project, error) {
	return s.store.GetProject(ctx, companyID, projectID)
}

func (s *Service) List(ctx context.Context, companyID string, filter ListFilter) ([]Project, int, error) {
	if filter.Status != "" && !validStatus(filter.Status) {
		return nil, 0, ErrInvalidStatus
	}
	return s.store.ListProjects(ctx, companyID, filter)
}

func (s *Service) Update(ctx context.Context, companyID, projectID string, p Project) (Project, error) {
	current, err := s.store.GetProject(ctx, companyID, projectID)
	if err != nil {
		return Project{}, err
	}
	p = normalize(p)
	if p.Status == "" {
		p.Status = current.Status
	}
	if err := validate(p); err != nil {
		return Project{}, err
	}
	if err := s.store.UpdateProject(ctx, companyID, projectID, p); err != nil {
		return Project{}, err
	}
	return s.store.GetProject(ctx, companyID, projectID)
}

// Assign places an employee on an active project. The same employee may be
// assigned again only for a range that does not touch an existing one.
func (s *Service) Assign(ctx context.Context, companyID string, a Assignment) (Assignment, error) {
	project, err := s.store.GetProject(ctx, companyID, a.ProjectID)
	if err != nil {
		return Assignment{}, err
	}
	if project.Status != StatusActivo {
		return Assignment{}, ErrProjectClosed
	}
	if a.EndDate != nil && a.EndDate.Before(a.StartDate) {
		return Assignment{}, ErrInvalidAssignment
	}

	status, err := s.store.EmployeeStatus(ctx, companyID, a.EmployeeID)
	if err != nil {
		return Assignment{}, err
	}
	if status == employeeTerminated {
		return Assignment{}, ErrEmployeeNotAssignable
	}

	existing, err := s.store.EmployeeAssignments(ctx, companyID, a.ProjectID, a.EmployeeID)
	if err != nil {
		return Assignment{}, err
	}
	for _, other := range existing {
		if RangesOverlap(other.StartDate, other.EndDate, a.StartDate, a.EndDate) {
			return Assignment{}, ErrAssignmentOverlap
		}
	}

	id, err := s.store.CreateAssignment(ctx, companyID, a)
	if err != nil {
		return Assignment{}, err
	}
	return s.store.GetAssignment(ctx, companyID, a.ProjectID, id)
}

func (s *Service) Assignments(ctx context.Context, companyID, projectID string) ([]Assignment, error) {
	if _, err := s.store.GetProject(ctx, companyID, projectID); err != nil {
		return nil, err
	}
	return s.store.ListAssignments(ctx, companyID, projectID)
}

func (s *Service) EndAssignment(ctx context.Context, companyID, projectID, assignmentID string, endDate time.Time) (Assignment, error) {
	current, err := s.store.GetAssignment(ctx, companyID, projectID, assignmentID)
	if err != nil {
		return Assignment{}, err
	}
	if current.EndDate != nil && !current.EndDate.After(endDate) {
		return Assignment{}, ErrAssignmentEnded
	}
	if endDate.Before(current.StartDate) {
		return Assignment{}, ErrInvalidAssignment
	}
	if err := s.store.EndAssignment(ctx, companyID, assignmentID, endDate); err != nil {
		return Assignment{}, err
	}
	return s.store.GetAssignment(ctx, companyID, projectID, assignmentID)
}

func normalize(p Project) Project {
	p.Code = strings.ToUpper(strings.TrimSpace(p.Code))
	p.Name = strings.TrimSpace(p.Name)
	p.ClientName = strings.TrimSpace(p.ClientName)
	return p
}

func validate(p Project) error {
	if !validStatus(p.Status) {
		return ErrInvalidStatus
	}
	if p.ContractEnd != nil && p.ContractEnd.Before(p.ContractStart) {
		return ErrInvalidContract
	}
	if p.RequiredHeadcount < 0 {
		return ErrNegativeHeadcount
	}
	return nil
}
