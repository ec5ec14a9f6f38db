package planilla

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
)

var registerHeader = []string{
	"documento", "empleado", "dias_trabajados", "faltas", "tardanzas", "horas_extra",
	"sueldo_basico", "pago_horas_extra", "bonificaciones", "total_ingresos",
	"descuentos_ley", "descuentos_registrados", "total_descuentos", "neto", "aporte_empleador", "observaciones",
}

// WriteRegister writes the planilla register as CSV, one row per detail.
func WriteRegister(w io.Writer, details []Detail) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(registerHeader); err != nil {
		return err
	}
	for _, d := range details {
		row := []string{
			d.DocumentNumber,
			d.EmployeeName,
			strconv.Itoa(d.DaysWorked),
			strconv.Itoa(d.Absences),
			strconv.Itoa(d.Tardies),
			d.OvertimeHours.StringFixed(2),
			d.BasicPay.StringFixed(2),
			d.OvertimePay.StringFixed(2),
			d.Bonuses.StringFixed(2),
			d.TotalIngresos.StringFixed(2),
			d.StatutoryDeductions.StringFixed(2),
			d.RegisteredDeductions.StringFixed(2),
			d.TotalDescuentos.StringFixed(2),
			d.Neto.StringFixed(2),
			d.EmployerContribution.StringFixed(2),
			strings.Join(d.Warnings, ";"),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteJournal writes the accounting entry as CSV. Zero sides are left blank.
func WriteJournal(w io.Writer, lines []JournalLine) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"cuenta", "debe", "haber"}); err != nil {
		return err
	}
	for _, line := range lines {
		debit, credit := "", ""
		if !line.Debit.IsZero() {
			debit = line.Debit.StringFixed(2)
		}
		if !line.Credit.IsZero() {
			credit = line.Credit.StringFixed(2)
		}
		if err := writer.Write([]string{line.Account, debit, credit}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
