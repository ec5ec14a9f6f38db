package boletas

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"backoffice/internal/domain/personal"
	cryptoutil "backoffice/internal/platform/crypto"
	"backoffice/internal/platform/querier"
)

type Store struct {
	DB     querier.Querier
	Crypto *cryptoutil.Service
}

func NewStore(db querier.Querier, crypto *cryptoutil.Service) *Store {
	return &Store{DB: db, Crypto: crypto}
}

const payslipColumns = `
    ps.id, ps.planilla_id, ps.employee_id, e.last_name || ', ' || e.first_name,
    pl.period_start, pl.period_end, d.neto, ps.file_url, ps.created_at`

const payslipJoins = `
    FROM payslips ps
    JOIN planillas pl ON pl.id = ps.planilla_id
    JOIN employees e ON e.id = ps.employee_id
    JOIN planilla_details d ON d.planilla_id = ps.planilla_id AND d.employee_id = ps.employee_id`

func (s *Store) List(ctx context.Context, companyID string, filter ListFilter) ([]Payslip, int, error) {
	where := []string{"ps.company_id = $1"}
	args := []any{companyID}
	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		where = append(where, fmt.Sprintf("ps.employee_id = $%d", len(args)))
	}
	if filter.PlanillaID != "" {
		args = append(args, filter.PlanillaID)
		where = append(where, fmt.Sprintf("ps.planilla_id = $%d", len(args)))
	}
	clause := " WHERE " + strings.Join(where, " AND ")

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1)"+payslipJoins+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.Limit, filter.Offset)
	query := "SELECT" + payslipColumns + payslipJoins + clause +
		fmt.Sprintf(" ORDER BY pl.period_start DESC, e.last_name LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []Payslip{}
	for rows.Next() {
		slip, err := scanPayslip(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, slip)
	}
	return out, total, rows.Err()
}

func (s *Store) Get(ctx context.Context, companyID, payslipID string) (Payslip, error) {
	row := s.DB.QueryRow(ctx, "SELECT"+payslipColumns+payslipJoins+" WHERE ps.company_id = $1 AND ps.id = $2", companyID, payslipID)
	slip, err := scanPayslip(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Payslip{}, ErrNotFound
	}
	return slip, err
}

func scanPayslip(row pgx.Row) (Payslip, error) {
	var slip Payslip
	if err := row.Scan(&slip.ID, &slip.PlanillaID, &slip.EmployeeID, &slip.EmployeeName,
		&slip.PeriodStart, &slip.PeriodEnd, &slip.Neto, &slip.FileURL, &slip.CreatedAt); err != nil {
		return Payslip{}, err
	}
	slip.Rendered = slip.FileURL != ""
	return slip, nil
}

func (s *Store) Data(ctx context.Context, companyID, payslipID string) (SlipData, error) {
	var data SlipData
	var bankPlain string
	var bankEnc []byte
	var firstName, lastName string
	err := s.DB.QueryRow(ctx, `
    SELECT ps.id, c.name, COALESCE(pr.name, ''), pl.period_start, pl.period_end, pl.paid_at,
           e.first_name, e.last_name, e.document_number, e.position,
           COALESCE(e.bank_account, ''), e.bank_account_enc,
           d.days_worked, d.absences, d.tardies, d.overtime_hours,
           d.basic_pay, d.overtime_pay, d.bonuses, d.statutory_deductions, d.registered_deductions,
           d.employer_contribution, d.total_ingresos, d.total_descuentos, d.neto
    FROM payslips ps
    JOIN companies c ON c.id = ps.company_id
    JOIN planillas pl ON pl.id = ps.planilla_id
    LEFT JOIN projects pr ON pr.id = pl.project_id
    JOIN employees e ON e.id = ps.employee_id
    JOIN planilla_details d ON d.planilla_id = ps.planilla_id AND d.employee_id = ps.employee_id
    WHERE ps.company_id = $1 AND ps.id = $2
  `, companyID, payslipID).Scan(
		&data.PayslipID, &data.CompanyName, &data.ProjectName, &data.PeriodStart, &data.PeriodEnd, &data.PaidAt,
		&firstName, &lastName, &data.DocumentNumber, &data.Position,
		&bankPlain, &bankEnc,
		&data.DaysWorked, &data.Absences, &data.Tardies, &data.OvertimeHours,
		&data.BasicPay, &data.OvertimePay, &data.Bonuses, &data.StatutoryDeductions, &data.RegisteredDeductions,
		&data.EmployerContribution, &data.TotalIngresos, &data.TotalDescuentos, &data.Neto,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return SlipData{}, ErrNotFound
	}
	if err != nil {
		return SlipData{}, err
	}
	data.EmployeeName = lastName + ", " + firstName
	data.BankAccount = personal.OpenString(s.Crypto, bankEnc, bankPlain)
	return data, nil
}

func (s *Store) Unrendered(ctx context.Context, companyID, planillaID string) ([]string, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id FROM payslips
    WHERE company_id = $1 AND planilla_id = $2 AND file_url = ''
    ORDER BY id
  `, companyID, planillaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) SetFile(ctx context.Context, companyID, payslipID, fileURL string) error {
	_, err := s.DB.Exec(ctx, "UPDATE payslips SET file_url = $1 WHERE company_id = $2 AND id = $3", fileURL, companyID, payslipID)
	return err
}

func (s *Store) EmployeeIDForUser(ctx context.Context, companyID, userID string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, "SELECT id FROM employees WHERE company_id = $1 AND user_id = $2", companyID, userID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNoEmployee
	}
	return id, err
}
