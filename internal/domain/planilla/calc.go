package planilla

import "github.com/shopspring/decimal"

// BuildDetail combines attendance, registered deductions and the calculated
// pay components into one detail line.
func BuildDetail(emp ScopedEmployee, att AttendanceTotals, deductions []DeductionRef, comp Components) Detail {
	registered := decimal.Zero
	for _, d := range deductions {
		registered = registered.Add(d.Amount)
	}
	registered = registered.Round(2)

	// Totals are sums of the stored, rounded components.
	basic := comp.BasicPay.Round(2)
	overtime := comp.OvertimePay.Round(2)
	bonuses := comp.Bonuses.Round(2)
	statutory := comp.StatutoryDeductions.Round(2)

	ingresos := basic.Add(overtime).Add(bonuses)
	descuentos := statutory.Add(registered)
	neto := ingresos.Sub(descuentos)

	warnings := []string{}
	if emp.BankAccount == "" {
		warnings = append(warnings, WarningSinCuentaBancaria)
	}
	if neto.IsNegative() {
		warnings = append(warnings, WarningNetoNegativo)
	}
	if att.Records == 0 {
		warnings = append(warnings, WarningSinAsistencia)
	}

	return Detail{
		EmployeeID:           emp.ID,
		EmployeeName:         emp.FullName,
		DocumentNumber:       emp.DocumentNumber,
		DaysWorked:           att.DaysWorked,
		Absences:             att.Absences,
		Tardies:              att.Tardies,
		OvertimeHours:        att.OvertimeHours,
		BasicPay:             basic,
		OvertimePay:          overtime,
		Bonuses:              bonuses,
		StatutoryDeductions:  statutory,
		EmployerContribution: comp.EmployerContribution.Round(2),
		RegisteredDeductions: registered,
		TotalIngresos:        ingresos,
		TotalDescuentos:      descuentos,
		Neto:                 neto,
		Warnings:             warnings,
	}
}

// Sum totals detail lines and counts warnings by key.
func Sum(details []Detail) Totals {
	t := Totals{
		Ingresos:        decimal.Zero,
		Descuentos:      decimal.Zero,
		Neto:            decimal.Zero,
		AporteEmpleador: decimal.Zero,
		EmployeeCount:   len(details),
		Warnings:        map[string]int{},
	}
	for _, d := range details {
		t.Ingresos = t.Ingresos.Add(d.TotalIngresos)
		t.Descuentos = t.Descuentos.Add(d.TotalDescuentos)
		t.Neto = t.Neto.Add(d.Neto)
		t.AporteEmpleador = t.AporteEmpleador.Add(d.EmployerContribution)
		for _, w := range d.Warnings {
			t.Warnings[w]++
		}
	}
	return t
}

// JournalLines builds the accounting entry for a planilla. Debits equal
// credits for any set of details.
func JournalLines(details []Detail) []JournalLine {
	ingresos, statutory, registered, aporte, neto := decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero
	for _, d := range details {
		ingresos = ingresos.Add(d.TotalIngresos)
		statutory = statutory.Add(d.StatutoryDeductions)
		registered = registered.Add(d.RegisteredDeductions)
		aporte = aporte.Add(d.EmployerContribution)
		neto = neto.Add(d.Neto)
	}
	return []JournalLine{
		{Account: "Gastos de personal - remuneraciones", Debit: ingresos, Credit: decimal.Zero},
		{Account: "Gastos de personal - aportes del empleador", Debit: aporte, Credit: decimal.Zero},
		{Account: "Tributos y aportes por pagar - retenciones", Debit: decimal.Zero, Credit: statutory},
		{Account: "Tributos y aportes por pagar - aportes del empleador", Debit: decimal.Zero, Credit: aporte},
		{Account: "Cuentas por cobrar al personal - descuentos", Debit: decimal.Zero, Credit: registered},
		{Account: "Remuneraciones por pagar", Debit: decimal.Zero, Credit: neto},
	}
}
