package personal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	cryptoutil "backoffice/internal/platform/crypto"
	"backoffice/internal/platform/db"
	"backoffice/internal/platform/querier"
)

type Store struct {
	DB     querier.Querier
	Crypto *cryptoutil.Service
}

func NewStore(db querier.Querier, crypto *cryptoutil.Service) *Store {
	return &Store{DB: db, Crypto: crypto}
}

const employeeColumns = `
    id, company_id, COALESCE(user_id::text, ''), document_number, first_name, last_name, email, phone,
    position, hire_date, termination_date, status,
    salary, salary_enc, COALESCE(bank_account, ''), bank_account_enc, pension_system,
    created_at, updated_at`

func (s *Store) Create(ctx context.Context, companyID string, emp Employee) (string, error) {
	sealed, err := s.seal(emp)
	if err != nil {
		return "", err
	}
	var id string
	err = s.DB.QueryRow(ctx, `
    INSERT INTO employees (company_id, user_id, document_number, first_name, last_name, email, phone,
      position, hire_date, termination_date, status, salary, salary_enc, bank_account, bank_account_enc, pension_system)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
    RETURNING id
  `,
		companyID, nullIfEmpty(emp.UserID), emp.DocumentNumber, emp.FirstName, emp.LastName, emp.Email, emp.Phone,
		emp.Position, emp.HireDate, emp.TerminationDate, emp.Status,
		sealed.salaryPlain, sealed.salaryEnc, sealed.bankPlain, sealed.bankEnc, emp.PensionSystem,
	).Scan(&id)
	if db.IsUniqueViolation(err) {
		return "", ErrDuplicateDocument
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Get(ctx context.Context, companyID, employeeID string) (Employee, error) {
	row := s.DB.QueryRow(ctx, "SELECT "+employeeColumns+" FROM employees WHERE company_id = $1 AND id = $2", companyID, employeeID)
	return s.scanEmployee(row)
}

func (s *Store) GetByUserID(ctx context.Context, companyID, userID string) (Employee, error) {
	row := s.DB.QueryRow(ctx, "SELECT "+employeeColumns+" FROM employees WHERE company_id = $1 AND user_id = $2", companyID, userID)
	return s.scanEmployee(row)
}

func (s *Store) List(ctx context.Context, companyID string, filter ListFilter) ([]Employee, int, error) {
	where := " FROM employees WHERE company_id = $1"
	args := []any{companyID}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where += fmt.Sprintf(" AND (first_name ILIKE $%d OR last_name ILIKE $%d OR document_number ILIKE $%d)", len(args), len(args), len(args))
	}

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1)"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + employeeColumns + where +
		fmt.Sprintf(" ORDER BY last_name, first_name LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []Employee{}
	for rows.Next() {
		emp, err := s.scanEmployee(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, emp)
	}
	return out, total, rows.Err()
}

func (s *Store) Update(ctx context.Context, companyID, employeeID string, emp Employee) error {
	sealed, err := s.seal(emp)
	if err != nil {
		return err
	}
	cmd, err := s.DB.Exec(ctx, `
    UPDATE employees
    SET document_number = $1,
        first_name = $2,
        last_name = $3,
        email = $4,
        phone = $5,
        position = $6,
        hire_date = $7,
        status = $8,
        salary = $9,
        salary_enc = $10,
        bank_account = $11,
        bank_account_enc = $12,
        pension_system = $13,
        user_id = $14,
        updated_at = now()
    WHERE company_id = $15 AND id = $16
  `,
		emp.DocumentNumber, emp.FirstName, emp.LastName, emp.Email, emp.Phone, emp.Position, emp.HireDate, emp.Status,
		sealed.salaryPlain, sealed.salaryEnc, sealed.bankPlain, sealed.bankEnc, emp.PensionSystem, nullIfEmpty(emp.UserID),
		companyID, employeeID,
	)
	if db.IsUniqueViolation(err) {
		return ErrDuplicateDocument
	}
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Terminate(ctx context.Context, companyID, employeeID string, date time.Time) error {
	cmd, err := s.DB.Exec(ctx, `
    UPDATE employees
    SET status = $1, termination_date = $2, updated_at = now()
    WHERE company_id = $3 AND id = $4
  `, StatusCesado, date, companyID, employeeID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) scanEmployee(row pgx.Row) (Employee, error) {
	var emp Employee
	var salaryPlain *decimal.Decimal
	var salaryEnc, bankEnc []byte
	var bankPlain string
	err := row.Scan(
		&emp.ID, &emp.CompanyID, &emp.UserID, &emp.DocumentNumber, &emp.FirstName, &emp.LastName, &emp.Email, &emp.Phone,
		&emp.Position, &emp.HireDate, &emp.TerminationDate, &emp.Status,
		&salaryPlain, &salaryEnc, &bankPlain, &bankEnc, &emp.PensionSystem,
		&emp.CreatedAt, &emp.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrNotFound
	}
	if err != nil {
		return Employee{}, err
	}
	emp.Salary = OpenSalary(s.Crypto, salaryEnc, salaryPlain)
	emp.BankAccount = OpenString(s.Crypto, bankEnc, bankPlain)
	return emp, nil
}

type sealedFields struct {
	salaryPlain any
	salaryEnc   []byte
	bankPlain   any
	bankEnc     []byte
}

// seal keeps sensitive columns in plaintext only when no data key is set.
func (s *Store) seal(emp Employee) (sealedFields, error) {
	if s.Crypto == nil || !s.Crypto.Configured() {
		return sealedFields{salaryPlain: emp.Salary, bankPlain: nullIfEmpty(emp.BankAccount)}, nil
	}
	salaryEnc, err := s.Crypto.EncryptDecimal(emp.Salary)
	if err != nil {
		return sealedFields{}, fmt.Errorf("encrypt salary: %w", err)
	}
	bankEnc, err := s.Crypto.EncryptString(emp.BankAccount)
	if err != nil {
		return sealedFields{}, fmt.Errorf("encrypt bank account: %w", err)
	}
	return sealedFields{salaryEnc: salaryEnc, bankEnc: bankEnc}, nil
}

// OpenString returns the decrypted value, falling back to the plaintext
// column for rows written before a key was configured.
func OpenString(crypto *cryptoutil.Service, encrypted []byte, plain string) string {
	if crypto == nil || !crypto.Configured() || len(encrypted) == 0 {
		return plain
	}
	decrypted, err := crypto.DecryptString(encrypted)
	if err != nil {
		return plain
	}
	return decrypted
}

func OpenSalary(crypto *cryptoutil.Service, encrypted []byte, plain *decimal.Decimal) *decimal.Decimal {
	if crypto == nil || !crypto.Configured() || len(encrypted) == 0 {
		return plain
	}
	value, err := crypto.DecryptDecimal(encrypted)
	if err != nil || value == nil {
		return plain
	}
	return value
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
