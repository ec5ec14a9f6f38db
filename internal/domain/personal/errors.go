package personal

import "errors"

var (
	ErrNotFound           = errors.New("employee not found")
	ErrDuplicateDocument  = errors.New("document number already registered")
	ErrInvalidPosition    = errors.New("invalid position")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrInvalidTermination = errors.New("termination date must not be before hire date")
	ErrNegativeSalary     = errors.New("salary must not be negative")
	ErrAlreadyTerminated  = errors.New("employee already terminated")
)
