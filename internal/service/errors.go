// Package service holds the business logic of the booking system: the
// reservation engine, the flight lifecycle rules and ticket issuance.
// Services validate fast before mutating, then rely on the storage
// layer's transactions and unique keys as the backstop for races.
package service

import (
	"errors"
	"fmt"
)

// ValidationError is a business-rule violation: an invalid state
// transition, a seat on the wrong airplane, an unavailable seat, or a
// bad status value.  It is always recoverable by the caller retrying
// with corrected input, and handlers translate it into HTTP 400.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...interface{}) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
