package extensions

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrDivideByZero   = errors.New("divide by zero")
	ErrLengthMismatch = errors.New("length mismatch")
	ErrMissingData    = errors.New("missing data")
	ErrComputation    = errors.New("computation error")
	ErrNetwork        = errors.New("network error")
	ErrIO             = errors.New("io error")
)

// MissingDataError is returned when a symbol has no usable record for a month end.
// It matches ErrMissingData with errors.Is.
type MissingDataError struct {
	Symbol string
	Date   string
}

func (e *MissingDataError) Error() string {
	return fmt.Sprintf("missing data for %s on %s, check the loaded date range", e.Symbol, e.Date)
}

func (e *MissingDataError) Is(target error) bool {
	return target == ErrMissingData
}

// InvalidInputf wraps ErrInvalidInput with a formatted message
func InvalidInputf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
