package planilla

import "time"

// PeriodDays counts the days of an inclusive period.
func PeriodDays(start, end time.Time) int {
	return int(end.Sub(start).Hours()/24) + 1
}

func validatePeriod(start, end time.Time) error {
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return ErrInvalidPeriod
	}
	if PeriodDays(start, end) > MaxPeriodDays {
		return ErrInvalidPeriod
	}
	return nil
}
