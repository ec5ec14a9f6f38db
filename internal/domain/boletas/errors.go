package boletas

import "errors"

var (
	ErrNotFound   = errors.New("payslip not found")
	ErrForbidden  = errors.New("payslip belongs to another employee")
	ErrNoEmployee = errors.New("user has no employee record")
)
