package proyectos

import (
	"context"
	"time"
)

type StoreAPI interface {
	CreateProject(ctx context.Context, companyID string, p Project) (string, error)
	GetProject(ctx context.Context, companyID, projectID string) (Project, error)
	ListProjects(ctx context.Context, companyID string, filter ListFilter) ([]Project, int, error)
	UpdateProject(ctx context.Context, companyID, projectID string, p Project) error

	EmployeeStatus(ctx context.Context, companyID, employeeID string) (string, error)
	CreateAssignment(ctx context.Context, companyID string, a Assignment) (string, error)
	GetAssignment(ctx context.Context, companyID, projectID, assignmentID string) (Assignment, error)
	ListAssignments(ctx context.Context, companyID, projectID string) ([]Assignment, error)
	EmployeeAssignments(ctx context.Context, companyID, projectID, employeeID string) ([]Assignment, error)
	EndAssignment(ctx context.Context, companyID, assignmentID string, endDate time.Time) error
}
