// internal/core/errors.go
package core

import "fmt"

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// InvalidParameter reports a rejected parameter by name and value.
func InvalidParameter(name string, value any, reason string) *Error {
	return WrapError(ErrInvalidParameter, fmt.Errorf("%s=%v: %s", name, value, reason))
}

// InsufficientData reports a series that is too short for the requested output.
func InsufficientData(what string, have, need int) *Error {
	return WrapError(ErrInsufficientData, fmt.Errorf("%s: have %d points, need %d", what, have, need))
}

// Predefined errors
var (
	// Computation errors
	ErrInsufficientData = &Error{Code: "INSUFFICIENT_DATA", Message: "insufficient data for analysis"}
	ErrInvalidParameter = &Error{Code: "INVALID_PARAMETER", Message: "invalid parameter"}
	// ErrDivisionSingularity names the zero-denominator policy (zero rolling std,
	// zero average loss). Series functions resolve it to undefined or saturated
	// values and never return it.
	ErrDivisionSingularity = &Error{Code: "DIVISION_SINGULARITY", Message: "division by zero resolved to sentinel"}

	// Data errors
	ErrInvalidSeries  = &Error{Code: "INVALID_SERIES", Message: "price series is malformed"}
	ErrNoData         = &Error{Code: "NO_DATA", Message: "no data available"}
	ErrSymbolNotFound = &Error{Code: "SYMBOL_NOT_FOUND", Message: "symbol not found"}

	// Collector errors
	ErrCollectorFailed = &Error{Code: "COLLECTOR_FAILED", Message: "collector failed"}

	// Strategy errors
	ErrStrategyNotFound = &Error{Code: "STRATEGY_NOT_FOUND", Message: "strategy not registered"}
	ErrStrategyFailed   = &Error{Code: "STRATEGY_FAILED", Message: "strategy run failed"}

	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}
)
