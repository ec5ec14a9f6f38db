package asistencia

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
	DB querier.TxBeginner
}

func NewStore(db querier.TxBeginner) *Store {
	return &Store{DB: db}
}

func (s *Store) EmployeeExists(ctx context.Context, companyID, employeeID string) (bool, error) {
	var exists bool
	err := s.DB.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM employees WHERE company_id = $1 AND id = $2)", companyID, employeeID).Scan(&exists)
	return exists, err
}

// PeriodClosed reports whether date is covered by an approved or paid
// planilla that already includes the employee.
func (s *Store) PeriodClosed(ctx context.Context, companyID, employeeID string, date time.Time) (bool, error) {
	var closed bool
	err := s.DB.QueryRow(ctx, `
    SELECT EXISTS(
      SELECT 1 FROM planillas p
      JOIN planilla_details d ON d.planilla_id = p.id
      WHERE p.company_id = $1 AND d.employee_id = $2
        AND p.status IN ('aprobada', 'pagada')
        AND $3 BETWEEN p.period_start AND p.period_end
    )
  `, companyID, employeeID, date).Scan(&closed)
	return closed, err
}

// UpsertRecords writes all records in one transaction, replacing the row of
// the same employee and date.
func (s *Store) UpsertRecords(ctx context.Context, companyID string, records []Record) ([]string, error) {
	ids := make([]string, 0, len(records))
	err := db.WithTx(ctx, s.DB, func(tx pgx.Tx) error {
		for _, rec := range records {
			var id string
			err := tx.QueryRow(ctx, `
        INSERT INTO attendance (company_id, employee_id, project_id, work_date, state, hours_worked, overtime_hours, note)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        ON CONFLICT (employee_id, work_date) DO UPDATE
        SET project_id = EXCLUDED.project_id,
            state = EXCLUDED.state,
            hours_worked = EXCLUDED.hours_worked,
            overtime_hours = EXCLUDED.overtime_hours,
            note = EXCLUDED.note,
            updated_at = now()
        RETURNING id
      `, companyID, rec.EmployeeID, nullIfEmpty(rec.ProjectID), rec.WorkDate, rec.State, rec.HoursWorked, rec.OvertimeHours, rec.Note).Scan(&id)
			if db.IsForeignKeyViolation(err) {
				return ErrEmployeeNotFound
			}
			if err != nil {
				return fmt.Errorf("upsert attendance %s %s: %w", rec.EmployeeID, rec.WorkDate.Format("2006-01-02"), err)
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

const recordColumns = `
    a.id, a.employee_id, e.last_name || ', ' || e.first_name, COALESCE(a.project_id::text, ''),
    a.work_date, a.state, a.hours_worked, a.overtime_hours, a.note, a.updated_at`

func (s *Store) ListRecords(ctx context.Context, companyID string, filter RecordFilter) ([]Record, int, error) {
	where := " FROM attendance a JOIN employees e ON e.id = a.employee_id WHERE a.company_id = $1"
	args := []any{companyID}
	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		where += fmt.Sprintf(" AND a.employee_id = $%d", len(args))
	}
	if filter.ProjectID != "" {
		args = append(args, filter.ProjectID)
		where += fmt.Sprintf(" AND a.project_id = $%d", len(args))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		where += fmt.Sprintf(" AND a.work_date >= $%d", len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		where += fmt.Sprintf(" AND a.work_date <= $%d", len(args))
	}

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1)"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + recordColumns + where +
		fmt.Sprintf(" ORDER BY a.work_date DESC, e.last_name LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)
	out, err := s.queryRecords(ctx, query, args...)
	return out, total, err
}

func (s *Store) EmployeeRecords(ctx context.Context, companyID, employeeID string, from, to time.Time) ([]Record, error) {
	return s.queryRecords(ctx, "SELECT "+recordColumns+`
    FROM attendance a JOIN employees e ON e.id = a.employee_id
    WHERE a.company_id = $1 AND a.employee_id = $2 AND a.work_date BETWEEN $3 AND $4
    ORDER BY a.work_date`, companyID, employeeID, from, to)
}

func (s *Store) queryRecords(ctx context.Context, query string, args ...any) ([]Record, error) {
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.EmployeeID, &rec.EmployeeName, &rec.ProjectID, &rec.WorkDate, &rec.State,
			&rec.HoursWorked, &rec.OvertimeHours, &rec.Note, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) CreateDeduction(ctx context.Context, companyID string, d Deduction) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO deductions (company_id, employee_id, deduction_type, amount, deduction_date, description, status)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    RETURNING id
  `, companyID, d.EmployeeID, d.Type, d.Amount, d.Date, d.Description, DeductionPendiente).Scan(&id)
	if db.IsForeignKeyViolation(err) {
		return "", ErrEmployeeNotFound
	}
	return id, err
}

const deductionColumns = `
    d.id, d.employee_id, e.last_name || ', ' || e.first_name, d.deduction_type, d.amount, d.deduction_date,
    d.description, d.status, COALESCE(d.planilla_id::text, ''), d.created_at`

func (s *Store) GetDeduction(ctx context.Context, companyID, deductionID string) (Deduction, error) {
	rows, err := s.queryDeductions(ctx, "SELECT "+deductionColumns+`
    FROM deductions d JOIN employees e ON e.id = d.employee_id
    WHERE d.company_id = $1 AND d.id = $2`, companyID, deductionID)
	if err != nil {
		return Deduction{}, err
	}
	if len(rows) == 0 {
		return Deduction{}, ErrDeductionNotFound
	}
	return rows[0], nil
}

func (s *Store) ListDeductions(ctx context.Context, companyID string, filter DeductionFilter) ([]Deduction, int, error) {
	where := " FROM deductions d JOIN employees e ON e.id = d.employee_id WHERE d.company_id = $1"
	args := []any{companyID}
	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		where += fmt.Sprintf(" AND d.employee_id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(" AND d.status = $%d", len(args))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		where += fmt.Sprintf(" AND d.deduction_date >= $%d", len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		where += fmt.Sprintf(" AND d.deduction_date <= $%d", len(args))
	}

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1)"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + deductionColumns + where +
		fmt.Sprintf(" ORDER BY d.deduction_date DESC, d.created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)
	out, err := s.queryDeductions(ctx, query, args...)
	return out, total, err
}

// VoidDeduction flips a pending deduction to anulado. It returns false when
// the row exists but is no longer pending.
func (s *Store) VoidDeduction(ctx context.Context, companyID, deductionID string) (bool, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    UPDATE deductions SET status = $1
    WHERE company_id = $2 AND id = $3 AND status = $4
    RETURNING id
  `, DeductionAnulado, companyID, deductionID, DeductionPendiente).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) queryDeductions(ctx context.Context, query string, args ...any) ([]Deduction, error) {
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Deduction{}
	for rows.Next() {
		var d Deduction
		if err := rows.Scan(&d.ID, &d.EmployeeID, &d.EmployeeName, &d.Type, &d.Amount, &d.Date,
			&d.Description, &d.Status, &d.PlanillaID, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
