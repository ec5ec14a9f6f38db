package planilla

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func TestBuildDetail(t *testing.T) {
	emp := ScopedEmployee{ID: "e1", FullName: "Quispe, Rosa", BankAccount: "191-00011122-0-33"}
	att := AttendanceTotals{Records: 26, DaysWorked: 25, Absences: 1, Tardies: 2, OvertimeHours: dec("6")}
	comp := Components{
		BasicPay:             dec("1500"),
		OvertimePay:          dec("56.25"),
		Bonuses:              dec("102.50"),
		StatutoryDeductions:  dec("195"),
		EmployerContribution: dec("135"),
	}
	deductions := []DeductionRef{{ID: "d1", Amount: dec("100")}, {ID: "d2", Amount: dec("85.50")}}

	d := BuildDetail(emp, att, deductions, comp)
	if !d.TotalIngresos.Equal(dec("1658.75")) {
		t.Fatalf("expected ingresos 1658.75, got %s", d.TotalIngresos)
	}
	if !d.RegisteredDeductions.Equal(dec("185.50")) {
		t.Fatalf("expected registered deductions 185.50, got %s", d.RegisteredDeductions)
	}
	if !d.TotalDescuentos.Equal(dec("380.50")) {
		t.Fatalf("expected descuentos 380.50, got %s", d.TotalDescuentos)
	}
	if !d.Neto.Equal(dec("1278.25")) {
		t.Fatalf("expected neto 1278.25, got %s", d.Neto)
	}
	if len(d.Warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", d.Warnings)
	}
	if d.DaysWorked != 25 || d.Tardies != 2 || d.Absences != 1 {
		t.Fatalf("attendance not carried: %+v", d)
	}
}

func TestBuildDetailTotalsAddUpRoundedComponents(t *testing.T) {
	emp := ScopedEmployee{ID: "e1", BankAccount: "191-00011122-0-33"}
	comp := Components{
		BasicPay:             dec("1000.005"),
		OvertimePay:          dec("10.005"),
		Bonuses:              dec("0"),
		StatutoryDeductions:  dec("130.005"),
		EmployerContribution: dec("90.004"),
	}
	deductions := []DeductionRef{{ID: "d1", Amount: dec("20.005")}}

	d := BuildDetail(emp, AttendanceTotals{Records: 1}, deductions, comp)
	if !d.BasicPay.Equal(dec("1000.01")) || !d.OvertimePay.Equal(dec("10.01")) {
		t.Fatalf("expected components rounded to cents, got %s and %s", d.BasicPay, d.OvertimePay)
	}
	if want := d.BasicPay.Add(d.OvertimePay).Add(d.Bonuses); !d.TotalIngresos.Equal(want) {
		t.Fatalf("expected ingresos %s, got %s", want, d.TotalIngresos)
	}
	if !d.TotalIngresos.Equal(dec("1010.02")) {
		t.Fatalf("expected ingresos 1010.02, got %s", d.TotalIngresos)
	}
	if want := d.StatutoryDeductions.Add(d.RegisteredDeductions); !d.TotalDescuentos.Equal(want) {
		t.Fatalf("expected descuentos %s, got %s", want, d.TotalDescuentos)
	}
	if !d.TotalDescuentos.Equal(dec("150.02")) {
		t.Fatalf("expected descuentos 150.02, got %s", d.TotalDescuentos)
	}
	if !d.Neto.Equal(dec("860")) {
		t.Fatalf("expected neto 860.00, got %s", d.Neto)
	}
}

func TestBuildDetailWarnings(t *testing.T) {
	comp := Components{BasicPay: dec("100"), StatutoryDeductions: dec("13")}
	d := BuildDetail(ScopedEmployee{ID: "e2"}, AttendanceTotals{}, []DeductionRef{{ID: "d1", Amount: dec("200")}}, comp)
	if !d.Neto.Equal(dec("-113")) {
		t.Fatalf("expected neto -113, got %s", d.Neto)
	}
	want := []string{WarningSinCuentaBancaria, WarningNetoNegativo, WarningSinAsistencia}
	if len(d.Warnings) != len(want) {
		t.Fatalf("expected warnings %v, got %v", want, d.Warnings)
	}
	for i := range want {
		if d.Warnings[i] != want[i] {
			t.Fatalf("expected warnings %v, got %v", want, d.Warnings)
		}
	}
}

func TestSum(t *testing.T) {
	details := []Detail{
		{TotalIngresos: dec("1000"), TotalDescuentos: dec("130"), Neto: dec("870"), EmployerContribution: dec("90"), Warnings: []string{WarningSinAsistencia}},
		{TotalIngresos: dec("1200.50"), TotalDescuentos: dec("156.07"), Neto: dec("1044.43"), EmployerContribution: dec("108.05"), Warnings: []string{WarningSinAsistencia, WarningSinCuentaBancaria}},
	}
	totals := Sum(details)
	if !totals.Ingresos.Equal(dec("2200.50")) || !totals.Descuentos.Equal(dec("286.07")) || !totals.Neto.Equal(dec("1914.43")) {
		t.Fatalf("unexpected totals %+v", totals)
	}
	if !totals.AporteEmpleador.Equal(dec("198.05")) {
		t.Fatalf("expected aporte 198.05, got %s", totals.AporteEmpleador)
	}
	if totals.EmployeeCount != 2 || totals.Warnings[WarningSinAsistencia] != 2 || totals.Warnings[WarningSinCuentaBancaria] != 1 {
		t.Fatalf("unexpected counts %+v", totals)
	}
}

func TestJournalLinesBalance(t *testing.T) {
	details := []Detail{
		BuildDetail(ScopedEmployee{ID: "e1", BankAccount: "x"}, AttendanceTotals{Records: 1},
			[]DeductionRef{{Amount: dec("50")}},
			Components{BasicPay: dec("1500"), OvertimePay: dec("40"), StatutoryDeductions: dec("195"), EmployerContribution: dec("135")}),
		BuildDetail(ScopedEmployee{ID: "e2"}, AttendanceTotals{},
			[]DeductionRef{{Amount: dec("900")}},
			Components{BasicPay: dec("600"), StatutoryDeductions: dec("78"), EmployerContribution: dec("54")}),
	}
	debit, credit := decimal.Zero, decimal.Zero
	for _, line := range JournalLines(details) {
		debit = debit.Add(line.Debit)
		credit = credit.Add(line.Credit)
	}
	if !debit.Equal(credit) {
		t.Fatalf("journal unbalanced: debit %s credit %s", debit, credit)
	}
	if !debit.Equal(dec("2329")) {
		t.Fatalf("expected debit 2329, got %s", debit)
	}
}
