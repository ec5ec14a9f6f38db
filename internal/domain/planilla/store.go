package planilla

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"backoffice/internal/domain/audit"
	"backoffice/internal/domain/personal"
	cryptoutil "backoffice/internal/platform/crypto"
	"backoffice/internal/platform/db"
	"backoffice/internal/platform/querier"
)

type Store struct {
	DB     querier.TxBeginner
	Crypto *cryptoutil.Service
	// Function is the database payroll function, validated as an SQL
	// identifier by config.
	Function string
}

func NewStore(db querier.TxBeginner, crypto *cryptoutil.Service, function string) *Store {
	return &Store{DB: db, Crypto: crypto, Function: function}
}

func (s *Store) InTx(ctx context.Context, fn func(tx StoreAPI) error) error {
	return db.WithTx(ctx, s.DB, func(tx pgx.Tx) error {
		return fn(&Store{DB: tx, Crypto: s.Crypto, Function: s.Function})
	})
}

// LockCompany serializes planilla creation and generation per company until
// the transaction ends.
func (s *Store) LockCompany(ctx context.Context, companyID string) error {
	_, err := s.DB.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext('planillas:' || $1))", companyID)
	return err
}

func (s *Store) Create(ctx context.Context, companyID string, in CreateInput, createdBy string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO planillas (company_id, project_id, period_start, period_end, description, status, created_by)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    RETURNING id
  `, companyID, nullIfEmpty(in.ProjectID), in.PeriodStart, in.PeriodEnd, in.Description, StatusBorrador, nullIfEmpty(createdBy)).Scan(&id)
	return id, err
}

const planillaColumns = `
    p.id, p.company_id, COALESCE(p.project_id::text, ''), COALESCE(pr.name, ''),
    p.period_start, p.period_end, p.description, p.status,
    p.total_ingresos, p.total_descuentos, p.total_neto, p.total_aporte_empleador, p.employee_count,
    COALESCE(p.created_by::text, ''),
    p.generated_at, COALESCE(p.generated_by::text, ''),
    p.approved_at, COALESCE(p.approved_by::text, ''),
    p.paid_at, COALESCE(p.paid_by::text, ''),
    p.cancelled_at, COALESCE(p.cancelled_by::text, ''), p.cancel_reason,
    p.created_at, p.updated_at`

const planillaFrom = " FROM planillas p LEFT JOIN projects pr ON pr.id = p.project_id"

func (s *Store) Get(ctx context.Context, companyID, planillaID string) (Planilla, error) {
	return s.getOne(ctx, "SELECT "+planillaColumns+planillaFrom+" WHERE p.company_id = $1 AND p.id = $2", companyID, planillaID)
}

// GetForUpdate locks the planilla row for the rest of the transaction.
func (s *Store) GetForUpdate(ctx context.Context, companyID, planillaID string) (Planilla, error) {
	return s.getOne(ctx, "SELECT "+planillaColumns+planillaFrom+" WHERE p.company_id = $1 AND p.id = $2 FOR UPDATE OF p", companyID, planillaID)
}

func (s *Store) getOne(ctx context.Context, query string, args ...any) (Planilla, error) {
	p, err := scanPlanilla(s.DB.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return Planilla{}, ErrNotFound
	}
	return p, err
}

func (s *Store) List(ctx context.Context, companyID string, filter ListFilter) ([]Planilla, int, error) {
	where := " WHERE p.company_id = $1"
	args := []any{companyID}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(" AND p.status = $%d", len(args))
	}
	if filter.ProjectID != "" {
		args = append(args, filter.ProjectID)
		where += fmt.Sprintf(" AND p.project_id = $%d", len(args))
	}

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM planillas p"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + planillaColumns + planillaFrom + where +
		fmt.Sprintf(" ORDER BY p.period_start DESC, p.created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []Planilla{}
	for rows.Next() {
		p, err := scanPlanilla(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

// HasOverlap checks non-cancelled planillas of the same scope: the same
// project, or company-wide when projectID is empty.
func (s *Store) HasOverlap(ctx context.Context, companyID, projectID string, start, end time.Time) (bool, error) {
	var exists bool
	err := s.DB.QueryRow(ctx, `
    SELECT EXISTS(
      SELECT 1 FROM planillas
      WHERE company_id = $1
        AND project_id IS NOT DISTINCT FROM $2
        AND status <> $3
        AND period_start <= $5 AND period_end >= $4
    )
  `, companyID, nullIfEmpty(projectID), StatusCancelada, start, end).Scan(&exists)
	return exists, err
}

func (s *Store) ProjectExists(ctx context.Context, companyID, projectID string) (bool, error) {
	var exists bool
	err := s.DB.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM projects WHERE company_id = $1 AND id = $2)", companyID, projectID).Scan(&exists)
	return exists, err
}

// ScopeEmployees selects who is paid in p: staff employed during the period,
// suspended staff included (and assigned to the project when scoped),
// skipping anyone already in another live planilla for an overlapping period.
func (s *Store) ScopeEmployees(ctx context.Context, p Planilla) ([]ScopedEmployee, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT e.id, e.last_name || ', ' || e.first_name, e.document_number,
           COALESCE(e.bank_account, ''), e.bank_account_enc, COALESCE(e.user_id::text, '')
    FROM employees e
    WHERE e.company_id = $1
      AND e.hire_date <= $4
      AND (e.status IN ('activo', 'suspendido') OR (e.status = 'cesado' AND e.termination_date >= $3))
      AND ($5::uuid IS NULL OR EXISTS (
        SELECT 1 FROM project_assignments a
        WHERE a.project_id = $5 AND a.employee_id = e.id
          AND a.start_date <= $4 AND (a.end_date IS NULL OR a.end_date >= $3)
      ))
      AND NOT EXISTS (
        SELECT 1 FROM planilla_details d
        JOIN planillas o ON o.id = d.planilla_id
        WHERE d.employee_id = e.id AND o.id <> $2 AND o.status <> 'cancelada'
          AND o.period_start <= $4 AND o.period_end >= $3
      )
    ORDER BY e.last_name, e.first_name
  `, p.CompanyID, p.ID, p.PeriodStart, p.PeriodEnd, nullIfEmpty(p.ProjectID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ScopedEmployee
	for rows.Next() {
		var emp ScopedEmployee
		var bankPlain string
		var bankEnc []byte
		if err := rows.Scan(&emp.ID, &emp.FullName, &emp.DocumentNumber, &bankPlain, &bankEnc, &emp.UserID); err != nil {
			return nil, err
		}
		emp.BankAccount = personal.OpenString(s.Crypto, bankEnc, bankPlain)
		out = append(out, emp)
	}
	return out, rows.Err()
}

func (s *Store) AttendanceTotals(ctx context.Context, companyID, employeeID string, start, end time.Time) (AttendanceTotals, error) {
	var t AttendanceTotals
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1),
           COUNT(1) FILTER (WHERE state IN ('presente', 'tardanza')),
           COUNT(1) FILTER (WHERE state = 'falta'),
           COUNT(1) FILTER (WHERE state = 'tardanza'),
           COALESCE(SUM(overtime_hours), 0)
    FROM attendance
    WHERE company_id = $1 AND employee_id = $2 AND work_date BETWEEN $3 AND $4
  `, companyID, employeeID, start, end).Scan(&t.Records, &t.DaysWorked, &t.Absences, &t.Tardies, &t.OvertimeHours)
	return t, err
}

func (s *Store) PendingDeductions(ctx context.Context, companyID, employeeID string, start, end time.Time) ([]DeductionRef, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, amount
    FROM deductions
    WHERE company_id = $1 AND employee_id = $2 AND status = 'pendiente'
      AND deduction_date BETWEEN $3 AND $4
    ORDER BY deduction_date
  `, companyID, employeeID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DeductionRef
	for rows.Next() {
		var d DeductionRef
		if err := rows.Scan(&d.ID, &d.Amount); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Calculate calls the configured database function, which returns one row
// of pay components for the employee and period.
func (s *Store) Calculate(ctx context.Context, employeeID string, start, end time.Time) (Components, error) {
	var c Components
	query := fmt.Sprintf(`
    SELECT COALESCE(sueldo_basico, 0), COALESCE(pago_horas_extra, 0), COALESCE(bonificaciones, 0),
           COALESCE(descuentos_ley, 0), COALESCE(aporte_empleador, 0)
    FROM %s($1::uuid, $2::date, $3::date)
  `, s.Function)
	err := s.DB.QueryRow(ctx, query, employeeID, start, end).Scan(
		&c.BasicPay, &c.OvertimePay, &c.Bonuses, &c.StatutoryDeductions, &c.EmployerContribution,
	)
	if err != nil {
		return Components{}, calculatorError(err)
	}
	return c, nil
}

func calculatorError(err error) error {
	switch {
	case db.IsUndefinedFunction(err):
		return ErrCalculatorMissing
	case errors.Is(err, pgx.ErrNoRows):
		return ErrCalculatorNoResult
	default:
		return err
	}
}

func (s *Store) DeleteDetails(ctx context.Context, planillaID string) error {
	if _, err := s.DB.Exec(ctx, "DELETE FROM planilla_deductions WHERE planilla_id = $1", planillaID); err != nil {
		return err
	}
	_, err := s.DB.Exec(ctx, "DELETE FROM planilla_details WHERE planilla_id = $1", planillaID)
	return err
}

func (s *Store) InsertDetail(ctx context.Context, companyID, planillaID string, d Detail) error {
	warningsJSON, err := json.Marshal(d.Warnings)
	if err != nil {
		return err
	}
	_, err = s.DB.Exec(ctx, `
    INSERT INTO planilla_details (
      planilla_id, company_id, employee_id, days_worked, absences, tardies, overtime_hours,
      basic_pay, overtime_pay, bonuses, statutory_deductions, employer_contribution,
      registered_deductions, total_ingresos, total_descuentos, neto, warnings_json)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
  `, planillaID, companyID, d.EmployeeID, d.DaysWorked, d.Absences, d.Tardies, d.OvertimeHours,
		d.BasicPay, d.OvertimePay, d.Bonuses, d.StatutoryDeductions, d.EmployerContribution,
		d.RegisteredDeductions, d.TotalIngresos, d.TotalDescuentos, d.Neto, warningsJSON)
	return err
}

func (s *Store) LinkDeductions(ctx context.Context, planillaID string, deductionIDs []string) error {
	if len(deductionIDs) == 0 {
		return nil
	}
	_, err := s.DB.Exec(ctx, `
    INSERT INTO planilla_deductions (planilla_id, deduction_id)
    SELECT $1::uuid, unnest($2::uuid[])
  `, planillaID, deductionIDs)
	return err
}

func (s *Store) SaveGeneration(ctx context.Context, companyID, planillaID string, totals Totals, actorID string) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE planillas
    SET total_ingresos = $1, total_descuentos = $2, total_neto = $3, total_aporte_empleador = $4,
        employee_count = $5, generated_at = now(), generated_by = $6, updated_at = now()
    WHERE company_id = $7 AND id = $8
  `, totals.Ingresos, totals.Descuentos, totals.Neto, totals.AporteEmpleador, totals.EmployeeCount,
		nullIfEmpty(actorID), companyID, planillaID)
	return err
}

func (s *Store) Details(ctx context.Context, companyID, planillaID string) ([]Detail, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT d.id, d.employee_id, e.last_name || ', ' || e.first_name, e.document_number,
           d.days_worked, d.absences, d.tardies, d.overtime_hours,
           d.basic_pay, d.overtime_pay, d.bonuses, d.statutory_deductions, d.employer_contribution,
           d.registered_deductions, d.total_ingresos, d.total_descuentos, d.neto, d.warnings_json
    FROM planilla_details d
    JOIN employees e ON e.id = d.employee_id
    WHERE d.company_id = $1 AND d.planilla_id = $2
    ORDER BY e.last_name, e.first_name
  `, companyID, planillaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Detail{}
	for rows.Next() {
		var d Detail
		var warningsJSON []byte
		if err := rows.Scan(&d.ID, &d.EmployeeID, &d.EmployeeName, &d.DocumentNumber,
			&d.DaysWorked, &d.Absences, &d.Tardies, &d.OvertimeHours,
			&d.BasicPay, &d.OvertimePay, &d.Bonuses, &d.StatutoryDeductions, &d.EmployerContribution,
			&d.RegisteredDeductions, &d.TotalIngresos, &d.TotalDescuentos, &d.Neto, &warningsJSON); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(warningsJSON, &d.Warnings); err != nil || d.Warnings == nil {
			d.Warnings = []string{}
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// UpdateStatus moves the planilla to status and stamps the matching
// timestamp and actor columns.
func (s *Store) UpdateStatus(ctx context.Context, companyID, planillaID, status, actorID, reason string) error {
	var query string
	args := []any{status, nullIfEmpty(actorID), companyID, planillaID}
	switch status {
	case StatusAprobada:
		query = "UPDATE planillas SET status = $1, approved_at = now(), approved_by = $2, updated_at = now() WHERE company_id = $3 AND id = $4"
	case StatusPagada:
		query = "UPDATE planillas SET status = $1, paid_at = now(), paid_by = $2, updated_at = now() WHERE company_id = $3 AND id = $4"
	case StatusCancelada:
		query = "UPDATE planillas SET status = $1, cancelled_at = now(), cancelled_by = $2, cancel_reason = $5, updated_at = now() WHERE company_id = $3 AND id = $4"
		args = append(args, reason)
	default:
		return fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}
	cmd, err := s.DB.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ApplyDeductions marks the deductions linked at generation as applied.
// linked != applied means some were voided or applied elsewhere meanwhile.
func (s *Store) ApplyDeductions(ctx context.Context, companyID, planillaID string) (int, int, error) {
	var linked int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM planilla_deductions WHERE planilla_id = $1", planillaID).Scan(&linked); err != nil {
		return 0, 0, err
	}
	cmd, err := s.DB.Exec(ctx, `
    UPDATE deductions SET status = 'aplicado', planilla_id = $1
    WHERE company_id = $2 AND status = 'pendiente'
      AND id IN (SELECT deduction_id FROM planilla_deductions WHERE planilla_id = $1)
  `, planillaID, companyID)
	if err != nil {
		return 0, 0, err
	}
	return linked, int(cmd.RowsAffected()), nil
}

func (s *Store) CreatePayslips(ctx context.Context, companyID, planillaID string) (int, error) {
	cmd, err := s.DB.Exec(ctx, `
    INSERT INTO payslips (company_id, planilla_id, employee_id)
    SELECT company_id, planilla_id, employee_id
    FROM planilla_details
    WHERE company_id = $1 AND planilla_id = $2
    ON CONFLICT (planilla_id, employee_id) DO NOTHING
  `, companyID, planillaID)
	if err != nil {
		return 0, err
	}
	return int(cmd.RowsAffected()), nil
}

func (s *Store) DetailUserIDs(ctx context.Context, companyID, planillaID string) ([]string, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT e.user_id::text
    FROM planilla_details d
    JOIN employees e ON e.id = d.employee_id
    WHERE d.company_id = $1 AND d.planilla_id = $2 AND e.user_id IS NOT NULL
  `, companyID, planillaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (s *Store) RecordAudit(ctx context.Context, actor Actor, action, planillaID string, before, after any) error {
	return audit.New(s.DB).Record(ctx, actor.CompanyID, actor.UserID, action, EntityType, planillaID, actor.RequestID, actor.IP, before, after)
}

func scanPlanilla(row pgx.Row) (Planilla, error) {
	var p Planilla
	err := row.Scan(
		&p.ID, &p.CompanyID, &p.ProjectID, &p.ProjectName,
		&p.PeriodStart, &p.PeriodEnd, &p.Description, &p.Status,
		&p.TotalIngresos, &p.TotalDescuentos, &p.TotalNeto, &p.TotalAporteEmpleador, &p.EmployeeCount,
		&p.CreatedBy,
		&p.GeneratedAt, &p.GeneratedBy,
		&p.ApprovedAt, &p.ApprovedBy,
		&p.PaidAt, &p.PaidBy,
		&p.CancelledAt, &p.CancelledBy, &p.CancelReason,
		&p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
