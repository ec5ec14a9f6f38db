package planilla

import "errors"

var (
	ErrNotFound           = errors.New("planilla not found")
	ErrInvalidPeriod      = errors.New("invalid planilla period")
	ErrPeriodOverlap      = errors.New("another planilla of the same scope overlaps the period")
	ErrProjectNotFound    = errors.New("project not found")
	ErrInvalidStatus      = errors.New("invalid planilla status")
	ErrInvalidTransition  = errors.New("planilla status transition not allowed")
	ErrNotDraft           = errors.New("only draft planillas can be generated")
	ErrNoEmployees        = errors.New("no employees in scope for the period")
	ErrNoDetails          = errors.New("planilla has no generated details")
	ErrReasonRequired     = errors.New("cancellation reason required")
	ErrStaleDeductions    = errors.New("included deductions changed since generation; cancel and create a new planilla")
	ErrCalculatorMissing  = errors.New("payroll calculation function is not installed")
	ErrCalculatorNoResult = errors.New("payroll calculation function returned no row")
)
