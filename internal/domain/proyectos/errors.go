package proyectos

import "errors"

var (
	ErrNotFound              = errors.New("project not found")
	ErrDuplicateCode         = errors.New("project code already registered")
	ErrInvalidStatus         = errors.New("invalid project status")
	ErrInvalidContract       = errors.New("contract end must not be before contract start")
	ErrNegativeHeadcount     = errors.New("required headcount must not be negative")
	ErrProjectClosed         = errors.New("project is not active")
	ErrAssignmentNotFound    = errors.New("assignment not found")
	ErrAssignmentOverlap     = errors.New("employee already assigned to this project for an overlapping range")
	ErrInvalidAssignment     = errors.New("assignment end must not be before its start")
	ErrAssignmentEnded       = errors.New("assignment already ended")
	ErrEmployeeNotFound      = errors.New("employee not found")
	ErrEmployeeNotAssignable = errors.New("employee is terminated")
)
