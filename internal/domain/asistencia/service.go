package asistencia

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var maxDailyHours = decimal.NewFromInt(24)

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

// Register upserts a single day.
func (s *Service) Register(ctx context.Context, companyID string, rec Record) (Record, error) {
	ids, err := s.RegisterBatch(ctx, companyID, []Record{rec})
	if err != nil {
		return Record{}, err
	}
	rec.ID = ids[0]
	return rec, nil
}

// RegisterBatch validates every record before writing any of them.
func (s *Service) RegisterBatch(ctx context.Context, companyID string, records []Record) ([]string, error) {
	if len(records) == 0 {
		return nil, ErrEmptyBatch
	}
	if len(records) > MaxBatchSize {
		return nil, ErrBatchTooLarge
	}
	checked := map[string]bool{}
	for i := range records {
		records[i].Note = strings.TrimSpace(records[i].Note)
		if err := validateRecord(records[i]); err != nil {
			return nil, err
		}
		employeeID := records[i].EmployeeID
		if !checked[employeeID] {
			exists, err := s.store.EmployeeExists(ctx, companyID, employeeID)
			if err != nil {
				return nil, err
			}
			if !exists {
				return nil, ErrEmployeeNotFound
			}
			checked[employeeID] = true
		}
		closed, err := s.store.PeriodClosed(ctx, companyID, employeeID, records[i].WorkDate)
		if err != nil {
			return nil, err
		}
		if closed {
			return nil, ErrPeriodClosed
		}
	}
	return s.store.UpsertRecords(ctx, companyID, records)
}

func (s *Service) List(ctx context.Context, companyID string, filter RecordFilter) ([]Record, int, error) {
	if !filter.From.IsZero() && !filter.To.IsZero() && filter.From.After(filter.To) {
		return nil, 0, ErrInvalidRange
	}
	return s.store.ListRecords(ctx, companyID, filter)
}

func (s *Service) Summary(ctx context.Context, companyID, employeeID string, from, to time.Time) (Summary, error) {
	if from.After(to) {
		return Summary{}, ErrInvalidRange
	}
	exists, err := s.store.EmployeeExists(ctx, companyID, employeeID)
	if err != nil {
		return Summary{}, err
	}
	if !exists {
		return Summary{}, ErrEmployeeNotFound
	}
	records, err := s.store.EmployeeRecords(ctx, companyID, employeeID, from, to)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(employeeID, from, to, records), nil
}

func (s *Service) CreateDeduction(ctx context.Context, companyID string, d Deduction) (Deduction, error) {
	d.Description = strings.TrimSpace(d.Description)
	if !oneOf(DeductionTypes, d.Type) {
		return Deduction{}, ErrInvalidDeductionType
	}
	if !d.Amount.IsPositive() {
		return Deduction{}, ErrInvalidAmount
	}
	closed, err := s.store.PeriodClosed(ctx, companyID, d.EmployeeID, d.Date)
	if err != nil {
		return Deduction{}, err
	}
	if closed {
		return Deduction{}, ErrPeriodClosed
	}
	id, err := s.store.CreateDeduction(ctx, companyID, d)
	if err != nil {
		return Deduction{}, err
	}
	return s.store.GetDeduction(ctx, companyID, id)
}

func (s *Service) GetDeduction(ctx context.Context, companyID, deductionID string) (Deduction, error) {
	return s.store.GetDeduction(ctx, companyID, deductionID)
}

func (s *Service) ListDeductions(ctx context.Context, companyID string, filter DeductionFilter) ([]Deduction, int, error) {
	if filter.Status != "" && !oneOf(DeductionStatuses, filter.Status) {
		return nil, 0, ErrInvalidStatus
	}
	if !filter.From.IsZero() && !filter.To.IsZero() && filter.From.After(filter.To) {
		return nil, 0, ErrInvalidRange
	}
	return s.store.ListDeductions(ctx, companyID, filter)
}

// VoidDeduction anuls a pending deduction and returns the state before and
// after so callers can audit the change.
func (s *Service) VoidDeduction(ctx context.Context, companyID, deductionID string) (Deduction, Deduction, error) {
	before, err := s.store.GetDeduction(ctx, companyID, deductionID)
	if err != nil {
		return Deduction{}, Deduction{}, err
	}
	if before.Status != DeductionPendiente {
		return Deduction{}, Deduction{}, ErrDeductionNotPending
	}
	ok, err := s.store.VoidDeduction(ctx, companyID, deductionID)
	if err != nil {
		return Deduction{}, Deduction{}, err
	}
	if !ok {
		return Deduction{}, Deduction{}, ErrDeductionNotPending
	}
	after := before
	after.Status = DeductionAnulado
	return before, after, nil
}

func validateRecord(rec Record) error {
	if !oneOf(States, rec.State) {
		return ErrInvalidState
	}
	if rec.HoursWorked.IsNegative() || rec.OvertimeHours.IsNegative() ||
		rec.HoursWorked.Add(rec.OvertimeHours).GreaterThan(maxDailyHours) {
		return ErrInvalidHours
	}
	switch rec.State {
	case StateFalta, StateDescanso:
		if !rec.HoursWorked.IsZero() || !rec.OvertimeHours.IsZero() {
			return ErrHoursOnAbsence
		}
	}
	return nil
}
