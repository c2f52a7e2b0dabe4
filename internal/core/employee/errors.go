package employee

import (
	"errors"
	"fmt"
)

// エラー種別。個別のエラーはいずれかをラップします。
var (
	ErrDomain       = errors.New("employee: domain error")
	ErrRange        = errors.New("employee: range error")
	ErrAge          = errors.New("employee: age error")
	ErrTemporal     = errors.New("employee: temporal error")
	ErrValidation   = errors.New("employee: validation error")
	ErrPrecondition = errors.New("employee: precondition error")
)

var (
	ErrInvalidDepartment     = fmt.Errorf("%w: Department must be one of HR, Finance, IT, Sales, or General Services.", ErrDomain)
	ErrBaseSalaryOutOfRange  = fmt.Errorf("%w: Base salary must be between 20000 and 100000 DKK.", ErrRange)
	ErrInvalidEducationLevel = fmt.Errorf("%w: Educational level must be 0 (None), 1 (Primary), 2 (Secondary), or 3 (Tertiary).", ErrDomain)
	ErrUnderage              = fmt.Errorf("%w: Employee must be at least 18 years old.", ErrAge)
	ErrEmploymentInFuture    = fmt.Errorf("%w: Date of employment cannot be in the future.", ErrTemporal)
	ErrEmptyCountry          = fmt.Errorf("%w: Country name cannot be empty.", ErrValidation)
	ErrFieldNotSet           = fmt.Errorf("%w: field not set", ErrPrecondition)
	ErrInvalidDate           = errors.New("employee: invalid date")
)

var (
	ErrInvalidID               = errors.New("employee: invalid id")
	ErrInvalidPageSize         = errors.New("employee: invalid page size")
	ErrInvalidPageToken        = errors.New("employee: invalid page token")
	ErrEmployeeNotFound        = errors.New("employee: not found")
	ErrNationalIDAlreadyExists = errors.New("employee: national id already exists")
	ErrInvalidRecord           = errors.New("employee: stored record violates constraints")
)

func fieldNotSet(field string) error {
	return fmt.Errorf("%s: %w", field, ErrFieldNotSet)
}

func invalidDate(raw string, cause error) error {
	return fmt.Errorf("%w %q: %w", ErrInvalidDate, raw, cause)
}
