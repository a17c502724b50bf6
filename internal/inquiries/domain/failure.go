package domain

import "errors"

// ErrInvalidTransition is returned when a status change violates the
// transition table. The message is shown verbatim in the UI.
var ErrInvalidTransition = errors.New("Invalid status transition")

// FailureType classifies why an inquiry submission was rejected before any
// write occurred. The zero value means the submission was not rejected.
type FailureType string

const (
	FailureValidation FailureType = "validation"
	FailureRateLimit  FailureType = "rate_limit"
	FailureDuplicate  FailureType = "duplicate"
	FailureNotFound   FailureType = "not_found"
)

// Reason strings surfaced to submitters. These are reused verbatim by the UI.
const (
	ReasonIPLimit           = "You have submitted too many inquiries from this location. Please try again later."
	ReasonEmailLimit        = "You have reached the daily limit for inquiries. Please try again tomorrow."
	ReasonDuplicate         = "Duplicate inquiry detected. We already have your inquiry for this property."
	ReasonPropertyNotOpen   = "This property is not available for inquiries."
	ReasonMessageTooShort   = "Message is too short (minimum 10 characters)."
	ReasonMessageTooLong    = "Message is too long (maximum 2000 characters)."
	ReasonPhoneTooShort     = "Phone number is too short."
	ReasonOutsideHours      = "Inquiries can only be submitted during business hours."
)

// IntakeError is a rejected submission: a typed, user-facing failure that
// never reaches error logs as a system fault.
type IntakeError struct {
	Type   FailureType
	Field  string // offending field for validation failures, "" otherwise
	Reason string
}

// Error implements the error interface.
func (e *IntakeError) Error() string {
	return e.Reason
}

// NewIntakeError builds an IntakeError without a field.
func NewIntakeError(t FailureType, reason string) *IntakeError {
	return &IntakeError{Type: t, Reason: reason}
}

// NewValidationError builds a validation IntakeError naming the offending field.
func NewValidationError(field, reason string) *IntakeError {
	return &IntakeError{Type: FailureValidation, Field: field, Reason: reason}
}

// AsIntakeError extracts an IntakeError from err, or returns nil.
func AsIntakeError(err error) *IntakeError {
	var ie *IntakeError
	if errors.As(err, &ie) {
		return ie
	}
	return nil
}
