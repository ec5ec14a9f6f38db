package boletas

import (
	"bytes"
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/domain/auth"
	cryptoutil "backoffice/internal/platform/crypto"
)

type fakeStore struct {
	mu       sync.Mutex
	slips    map[string]Payslip
	userEmps map[string]string
}

func newFakeStore() *fakeStore {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	return &fakeStore{
		slips: map[string]Payslip{
			"s1": {ID: "s1", PlanillaID: "pl1", EmployeeID: "e1", EmployeeName: "Quispe, Rosa", PeriodStart: start, PeriodEnd: end},
			"s2": {ID: "s2", PlanillaID: "pl1", EmployeeID: "e2", EmployeeName: "Huamán, Luis", PeriodStart: start, PeriodEnd: end},
		},
		userEmps: map[string]string{"u-agent": "e1"},
	}
}

func (f *fakeStore) List(_ context.Context, _ string, filter ListFilter) ([]Payslip, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []Payslip{}
	for _, id := range []string{"s1", "s2"} {
		slip := f.slips[id]
		if filter.EmployeeID != "" && slip.EmployeeID != filter.EmployeeID {
			continue
		}
		out = append(out, slip)
	}
	return out, len(out), nil
}

func (f *fakeStore) Get(_ context.Context, _ string, payslipID string) (Payslip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	slip, ok := f.slips[payslipID]
	if !ok {
		return Payslip{}, ErrNotFound
	}
	return slip, nil
}

func (f *fakeStore) Data(_ context.Context, _ string, payslipID string) (SlipData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	slip, ok := f.slips[payslipID]
	if !ok {
		return SlipData{}, ErrNotFound
	}
	return SlipData{
		PayslipID:           slip.ID,
		CompanyName:         "Seguridad Andina S.A.C.",
		ProjectName:         "Sede Miraflores",
		PeriodStart:         slip.PeriodStart,
		PeriodEnd:           slip.PeriodEnd,
		EmployeeName:        slip.EmployeeName,
		DocumentNumber:      "45871236",
		Position:            "Agente de seguridad",
		BankAccount:         "19112345678",
		DaysWorked:          26,
		BasicPay:            decimal.RequireFromString("1500"),
		StatutoryDeductions: decimal.RequireFromString("195"),
		TotalIngresos:       decimal.RequireFromString("1500"),
		TotalDescuentos:     decimal.RequireFromString("195"),
		Neto:                decimal.RequireFromString("1305"),
	}, nil
}

func (f *fakeStore) Unrendered(_ context.Context, _ string, planillaID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []string
	for _, id := range []string{"s1", "s2"} {
		slip := f.slips[id]
		if slip.PlanillaID == planillaID && slip.FileURL == "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (f *fakeStore) SetFile(_ context.Context, _ string, payslipID, fileURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	slip := f.slips[payslipID]
	slip.FileURL = fileURL
	slip.Rendered = true
	f.slips[payslipID] = slip
	return nil
}

func (f *fakeStore) EmployeeIDForUser(_ context.Context, _ string, userID string) (string, error) {
	id, ok := f.userEmps[userID]
	if !ok {
		return "", ErrNoEmployee
	}
	return id, nil
}

var (
	hr    = auth.UserContext{UserID: "u-hr", CompanyID: "c1", RoleName: auth.RoleRRHH}
	agent = auth.UserContext{UserID: "u-agent", CompanyID: "c1", RoleName: auth.RoleAgente}
)

func TestRenderPlanillaWritesEveryPayslip(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil, t.TempDir())

	count, err := svc.RenderPlanilla(context.Background(), "c1", "pl1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	for _, id := range []string{"s1", "s2"} {
		path := store.slips[id].FileURL
		require.NotEmpty(t, path)
		assert.True(t, strings.HasSuffix(path, id+".pdf"))
		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(content, []byte("%PDF")))
	}

	count, err = svc.RenderPlanilla(context.Background(), "c1", "pl1")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRenderEncryptsWhenKeyConfigured(t *testing.T) {
	crypto, err := cryptoutil.New(strings.Repeat("ab", 32))
	require.NoError(t, err)
	store := newFakeStore()
	svc := NewService(store, crypto, t.TempDir())

	_, err = svc.RenderPlanilla(context.Background(), "c1", "pl1")
	require.NoError(t, err)
	path := store.slips["s1"].FileURL
	assert.True(t, strings.HasSuffix(path, ".pdf.enc"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.False(t, bytes.HasPrefix(raw, []byte("%PDF")))

	_, content, err := svc.Open(context.Background(), hr, "s1")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(content, []byte("%PDF")))
}

func TestOpenRendersOnDemand(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil, t.TempDir())

	slip, content, err := svc.Open(context.Background(), agent, "s1")
	require.NoError(t, err)
	assert.True(t, slip.Rendered)
	assert.True(t, bytes.HasPrefix(content, []byte("%PDF")))
	assert.NotEmpty(t, store.slips["s1"].FileURL)

	require.NoError(t, os.Remove(store.slips["s1"].FileURL))
	_, content, err = svc.Open(context.Background(), agent, "s1")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(content, []byte("%PDF")))
}

func TestAgentsOnlySeeOwnPayslips(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil, t.TempDir())
	ctx := context.Background()

	_, _, err := svc.Open(ctx, agent, "s2")
	assert.ErrorIs(t, err, ErrForbidden)

	slips, total, err := svc.List(ctx, agent, ListFilter{Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "s1", slips[0].ID)

	_, total, err = svc.List(ctx, hr, ListFilter{Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	stranger := auth.UserContext{UserID: "u-x", CompanyID: "c1", RoleName: auth.RoleSupervisor}
	slips, total, err = svc.List(ctx, stranger, ListFilter{Limit: 20})
	require.NoError(t, err)
	assert.Empty(t, slips)
	assert.Zero(t, total)
	_, err = svc.Get(ctx, stranger, "s1")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestMaskAccount(t *testing.T) {
	assert.Equal(t, "-", maskAccount(""))
	assert.Equal(t, "123", maskAccount("123"))
	assert.Equal(t, "****5678", maskAccount("19112345678"))
}
