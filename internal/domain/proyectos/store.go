package proyectos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"backoffice/internal/platform/db"
	"backoffice/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

const projectColumns = `
    p.id, p.company_id, p.code, p.name, p.client_name, p.contract_start, p.contract_end,
    p.status, p.required_headcount,
    (SELECT COUNT(1) FROM project_assignments a
      WHERE a.project_id = p.id AND a.start_date <= CURRENT_DATE
        AND (a.end_date IS NULL OR a.end_date >= CURRENT_DATE)),
    p.created_at, p.updated_at`

func (s *Store) CreateProject(ctx context.Context, companyID string, p Project) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO projects (company_id, code, name, client_name, contract_start, contract_end, status, required_headcount)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    RETURNING id
  `, companyID, p.Code, p.Name, p.ClientName, p.ContractStart, p.ContractEnd, p.Status, p.RequiredHeadcount).Scan(&id)
	if db.IsUniqueViolation(err) {
		return "", ErrDuplicateCode
	}
	return id, err
}

func (s *Store) GetProject(ctx context.Context, companyID, projectID string) (Project, error) {
	row := s.DB.QueryRow(ctx, "SELECT "+projectColumns+" FROM projects p WHERE p.company_id = $1 AND p.id = $2", companyID, projectID)
	p, err := scanProject(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Project{}, ErrNotFound
	}
	return p, err
}

func (s *Store) ListProjects(ctx context.Context, companyID string, filter ListFilter) ([]Project, int, error) {
	where := " FROM projects p WHERE p.company_id = $1"
	args := []any{companyID}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(" AND p.status = $%d", len(args))
	}

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1)"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + projectColumns + where +
		fmt.Sprintf(" ORDER BY p.code LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (s *Store) UpdateProject(ctx context.Context, companyID, projectID string, p Project) error {
	cmd, err := s.DB.Exec(ctx, `
    UPDATE projects
    SET code = $1, name = $2, client_name = $3, contract_start = $4, contract_end = $5,
        status = $6, required_headcount = $7, updated_at = now()
    WHERE company_id = $8 AND id = $9
  `, p.Code, p.Name, p.ClientName, p.ContractStart, p.ContractEnd, p.Status, p.RequiredHeadcount, companyID, projectID)
	if db.IsUniqueViolation(err) {
		return ErrDuplicateCode
	}
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) EmployeeStatus(ctx context.Context, companyID, employeeID string) (string, error) {
	var status string
	err := s.DB.QueryRow(ctx, "SELECT status FROM employees WHERE company_id = $1 AND id = $2", companyID, employeeID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrEmployeeNotFound
	}
	return status, err
}

func (s *Store) CreateAssignment(ctx context.Context, companyID string, a Assignment) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO project_assignments (company_id, project_id, employee_id, start_date, end_date)
    VALUES ($1,$2,$3,$4,$5)
    RETURNING id
  `, companyID, a.ProjectID, a.EmployeeID, a.StartDate, a.EndDate).Scan(&id)
	return id, err
}

const assignmentColumns = `
    a.id, a.project_id, a.employee_id, e.last_name || ', ' || e.first_name, a.start_date, a.end_date, a.created_at`

func (s *Store) GetAssignment(ctx context.Context, companyID, projectID, assignmentID string) (Assignment, error) {
	row := s.DB.QueryRow(ctx, "SELECT "+assignmentColumns+`
    FROM project_assignments a JOIN employees e ON e.id = a.employee_id
    WHERE a.company_id = $1 AND a.project_id = $2 AND a.id = $3`, companyID, projectID, assignmentID)
	a, err := scanAssignment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Assignment{}, ErrAssignmentNotFound
	}
	return a, err
}

func (s *Store) ListAssignments(ctx context.Context, companyID, projectID string) ([]Assignment, error) {
	return s.queryAssignments(ctx, "SELECT "+assignmentColumns+`
    FROM project_assignments a JOIN employees e ON e.id = a.employee_id
    WHERE a.company_id = $1 AND a.project_id = $2
    ORDER BY a.start_date DESC, e.last_name`, companyID, projectID)
}

func (s *Store) EmployeeAssignments(ctx context.Context, companyID, projectID, employeeID string) ([]Assignment, error) {
	return s.queryAssignments(ctx, "SELECT "+assignmentColumns+`
    FROM project_assignments a JOIN employees e ON e.id = a.employee_id
    WHERE a.company_id = $1 AND a.project_id = $2 AND a.employee_id = $3
    ORDER BY a.start_date`, companyID, projectID, employeeID)
}

func (s *Store) EndAssignment(ctx context.Context, companyID, assignmentID string, endDate time.Time) error {
	cmd, err := s.DB.Exec(ctx, `
    UPDATE project_assignments SET end_date = $1
    WHERE company_id = $2 AND id = $3
  `, endDate, companyID, assignmentID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrAssignmentNotFound
	}
	return nil
}

func (s *Store) queryAssignments(ctx context.Context, query string, args ...any) ([]Assignment, error) {
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Assignment{}
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanProject(row pgx.Row) (Project, error) {
	var p Project
	err := row.Scan(&p.ID, &p.CompanyID, &p.Code, &p.Name, &p.ClientName, &p.ContractStart, &p.ContractEnd,
		&p.Status, &p.RequiredHeadcount, &p.AssignedHeadcount, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func scanAssignment(row pgx.Row) (Assignment, error) {
	var a Assignment
	err := row.Scan(&a.ID, &a.ProjectID, &a.EmployeeID, &a.EmployeeName, &a.StartDate, &a.EndDate, &a.CreatedAt)
	return a, err
}
