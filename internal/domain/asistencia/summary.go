package asistencia

import (
	"time"

	"github.com/shopspring/decimal"
)

// Summarize folds records into per-state counts. Tardies count as worked days.
func Summarize(employeeID string, from, to time.Time, records []Record) Summary {
	sum := Summary{
		EmployeeID:    employeeID,
		From:          from,
		To:            to,
		HoursWorked:   decimal.Zero,
		OvertimeHours: decimal.Zero,
	}
	for _, rec := range records {
		if rec.WorkDate.Before(from) || rec.WorkDate.After(to) {
			continue
		}
		switch rec.State {
		case StatePresente:
			sum.Presente++
		case StateTardanza:
			sum.Tardanza++
		case StateFalta:
			sum.Falta++
		case StateDescanso:
			sum.Descanso++
		case StatePermiso:
			sum.Permiso++
		}
		sum.HoursWorked = sum.HoursWorked.Add(rec.HoursWorked)
		sum.OvertimeHours = sum.OvertimeHours.Add(rec.OvertimeHours)
	}
	sum.DaysWorked = sum.Presente + sum.Tardanza
	return sum
}
