package asistencia

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	employees  map[string]bool
	closedDays map[string]bool
	records    map[string]Record
	deductions map[string]Deduction
	upserts    int
	seq        int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		employees:  map[string]bool{"e1": true},
		closedDays: map[string]bool{},
		records:    map[string]Record{},
		deductions: map[string]Deduction{},
	}
}

func recordKey(employeeID string, date time.Time) string {
	return employeeID + ":" + date.Format("2006-01-02")
}

func (f *fakeStore) EmployeeExists(_ context.Context, _ string, employeeID string) (bool, error) {
	return f.employees[employeeID], nil
}

func (f *fakeStore) PeriodClosed(_ context.Context, _ string, employeeID string, date time.Time) (bool, error) {
	return f.closedDays[recordKey(employeeID, date)], nil
}

func (f *fakeStore) UpsertRecords(_ context.Context, _ string, records []Record) ([]string, error) {
	f.upserts++
	ids := make([]string, 0, len(records))
	for _, rec := range records {
		key := recordKey(rec.EmployeeID, rec.WorkDate)
		if existing, ok := f.records[key]; ok {
			rec.ID = existing.ID
		} else {
			f.seq++
			rec.ID = fmt.Sprintf("r-%d", f.seq)
		}
		f.records[key] = rec
		ids = append(ids, rec.ID)
	}
	return ids, nil
}

func (f *fakeStore) ListRecords(_ context.Context, _ string, _ RecordFilter) ([]Record, int, error) {
	var out []Record
	for _, rec := range f.records {
		out = append(out, rec)
	}
	return out, len(out), nil
}

func (f *fakeStore) EmployeeRecords(_ context.Context, _ string, employeeID string, _, _ time.Time) ([]Record, error) {
	var out []Record
	for _, rec := range f.records {
		if rec.EmployeeID == employeeID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateDeduction(_ context.Context, _ string, d Deduction) (string, error) {
	if !f.employees[d.EmployeeID] {
		return "", ErrEmployeeNotFound
	}
	f.seq++
	d.ID = fmt.Sprintf("d-%d", f.seq)
	d.Status = DeductionPendiente
	f.deductions[d.ID] = d
	return d.ID, nil
}

func (f *fakeStore) GetDeduction(_ context.Context, _ string, deductionID string) (Deduction, error) {
	d, ok := f.deductions[deductionID]
	if !ok {
		return Deduction{}, ErrDeductionNotFound
	}
	return d, nil
}

func (f *fakeStore) ListDeductions(_ context.Context, _ string, _ DeductionFilter) ([]Deduction, int, error) {
	var out []Deduction
	for _, d := range f.deductions {
		out = append(out, d)
	}
	return out, len(out), nil
}

func (f *fakeStore) VoidDeduction(_ context.Context, _ string, deductionID string) (bool, error) {
	d, ok := f.deductions[deductionID]
	if !ok || d.Status != DeductionPendiente {
		return false, nil
	}
	d.Status = DeductionAnulado
	f.deductions[deductionID] = d
	return true, nil
}

func day(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return t
}

func hours(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func TestSummarizeCountsStatesAndHours(t *testing.T) {
	records := []Record{
		{WorkDate: day("2024-03-01"), State: StatePresente, HoursWorked: hours("12"), OvertimeHours: hours("2")},
		{WorkDate: day("2024-03-02"), State: StateTardanza, HoursWorked: hours("11.5")},
		{WorkDate: day("2024-03-03"), State: StateFalta},
		{WorkDate: day("2024-03-04"), State: StateDescanso},
		{WorkDate: day("2024-03-05"), State: StatePermiso},
		{WorkDate: day("2024-04-01"), State: StatePresente, HoursWorked: hours("12")},
	}
	sum := Summarize("e1", day("2024-03-01"), day("2024-03-31"), records)
	assert.Equal(t, 1, sum.Presente)
	assert.Equal(t, 1, sum.Tardanza)
	assert.Equal(t, 1, sum.Falta)
	assert.Equal(t, 1, sum.Descanso)
	assert.Equal(t, 1, sum.Permiso)
	assert.Equal(t, 2, sum.DaysWorked)
	assert.True(t, sum.HoursWorked.Equal(hours("23.5")), sum.HoursWorked.String())
	assert.True(t, sum.OvertimeHours.Equal(hours("2")))
}

func TestRegisterUpsertsSameDay(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	ctx := context.Background()

	first, err := svc.Register(ctx, "c1", Record{EmployeeID: "e1", WorkDate: day("2024-03-01"), State: StatePresente, HoursWorked: hours("12")})
	require.NoError(t, err)
	second, err := svc.Register(ctx, "c1", Record{EmployeeID: "e1", WorkDate: day("2024-03-01"), State: StateTardanza, HoursWorked: hours("10")})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, store.records, 1)
	assert.Equal(t, StateTardanza, store.records[recordKey("e1", day("2024-03-01"))].State)
}

func TestRegisterBatchValidatesBeforeWriting(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	ctx := context.Background()

	_, err := svc.RegisterBatch(ctx, "c1", []Record{
		{EmployeeID: "e1", WorkDate: day("2024-03-01"), State: StatePresente, HoursWorked: hours("12")},
		{EmployeeID: "e1", WorkDate: day("2024-03-02"), State: StateFalta, HoursWorked: hours("4")},
	})
	assert.ErrorIs(t, err, ErrHoursOnAbsence)
	assert.Zero(t, store.upserts)

	_, err = svc.RegisterBatch(ctx, "c1", []Record{{EmployeeID: "e1", WorkDate: day("2024-03-01"), State: "vacaciones"}})
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = svc.RegisterBatch(ctx, "c1", []Record{{EmployeeID: "e1", WorkDate: day("2024-03-01"), State: StatePresente, HoursWorked: hours("20"), OvertimeHours: hours("5")}})
	assert.ErrorIs(t, err, ErrInvalidHours)

	_, err = svc.RegisterBatch(ctx, "c1", []Record{{EmployeeID: "ghost", WorkDate: day("2024-03-01"), State: StatePresente}})
	assert.ErrorIs(t, err, ErrEmployeeNotFound)

	_, err = svc.RegisterBatch(ctx, "c1", nil)
	assert.ErrorIs(t, err, ErrEmptyBatch)
}

func TestRegisterRejectsClosedPeriod(t *testing.T) {
	store := newFakeStore()
	store.closedDays[recordKey("e1", day("2024-02-10"))] = true
	svc := NewService(store)

	_, err := svc.Register(context.Background(), "c1", Record{EmployeeID: "e1", WorkDate: day("2024-02-10"), State: StatePresente})
	assert.ErrorIs(t, err, ErrPeriodClosed)
}

func TestSummaryRejectsInvertedRange(t *testing.T) {
	svc := NewService(newFakeStore())
	_, err := svc.Summary(context.Background(), "c1", "e1", day("2024-03-31"), day("2024-03-01"))
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestDeductionLifecycle(t *testing.T) {
	svc := NewService(newFakeStore())
	ctx := context.Background()

	_, err := svc.CreateDeduction(ctx, "c1", Deduction{EmployeeID: "e1", Type: DeductionAdelanto, Amount: decimal.Zero, Date: day("2024-03-10")})
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = svc.CreateDeduction(ctx, "c1", Deduction{EmployeeID: "e1", Type: "multa", Amount: hours("50"), Date: day("2024-03-10")})
	assert.ErrorIs(t, err, ErrInvalidDeductionType)

	d, err := svc.CreateDeduction(ctx, "c1", Deduction{EmployeeID: "e1", Type: DeductionUniforme, Amount: hours("85.50"), Date: day("2024-03-10")})
	require.NoError(t, err)
	assert.Equal(t, DeductionPendiente, d.Status)

	before, after, err := svc.VoidDeduction(ctx, "c1", d.ID)
	require.NoError(t, err)
	assert.Equal(t, DeductionPendiente, before.Status)
	assert.Equal(t, DeductionAnulado, after.Status)

	_, _, err = svc.VoidDeduction(ctx, "c1", d.ID)
	assert.ErrorIs(t, err, ErrDeductionNotPending)
}
