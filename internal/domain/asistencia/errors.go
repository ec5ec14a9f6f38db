package asistencia

import "errors"

var (
	ErrInvalidState         = errors.New("invalid attendance state")
	ErrInvalidHours         = errors.New("hours must be between 0 and 24")
	ErrHoursOnAbsence       = errors.New("absences and rest days cannot carry worked hours")
	ErrInvalidRange         = errors.New("from must not be after to")
	ErrEmptyBatch           = errors.New("batch must contain at least one record")
	ErrBatchTooLarge        = errors.New("batch too large")
	ErrEmployeeNotFound     = errors.New("employee not found")
	ErrPeriodClosed         = errors.New("date belongs to an approved or paid planilla")
	ErrDeductionNotFound    = errors.New("deduction not found")
	ErrInvalidDeductionType = errors.New("invalid deduction type")
	ErrInvalidAmount        = errors.New("amount must be greater than zero")
	ErrDeductionNotPending  = errors.New("only pending deductions can be voided")
	ErrInvalidStatus        = errors.New("invalid deduction status")
)
