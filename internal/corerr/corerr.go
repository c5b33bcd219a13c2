// Package corerr provides the error taxonomy shared by the handle server,
// the loan pipeline, and the FSM control. This is a leaf package with no
// internal dependencies, designed to be imported by pkg/handle, pkg/loan,
// and pkg/fsmctl without causing circular imports.
//
// Import graph: corerr <- handle, loan, fsmctl <- internal wiring
package corerr

import (
	"fmt"
)

// ErrorCode represents the kind of error that occurred, mirroring the
// dds_retcode_t subset relevant to handle/loan/FSM operations.
type ErrorCode int

const (
	// BadParameter indicates an argument failed validation (e.g. a nil
	// pointer, a zero handle, a negative max_samples).
	BadParameter ErrorCode = iota + 1

	// PreconditionNotMet indicates the operation's precondition does not
	// hold for the current state (e.g. returning a loan that is not
	// outstanding).
	PreconditionNotMet

	// IllegalOperation indicates the operation is not permitted in this
	// context (e.g. an implicit-call deleting an explicit entity).
	IllegalOperation

	// AlreadyDeleted indicates a delete of the handle is already under way:
	// it was deferred earlier and the reference it waits on is still
	// outstanding.
	AlreadyDeleted

	// OutOfResources indicates a pool or table has no capacity left
	// (handle table full, loan pool exhausted).
	OutOfResources

	// TryAgain indicates the operation cannot complete right now because a
	// reference is still outstanding (e.g. PinForDelete deferred to an
	// explicit reference holder). It is returned to the caller, not absorbed
	// internally. A deferred delete is finished by the DropRef that releases
	// that reference; repeating PinForDelete meanwhile reports
	// AlreadyDeleted.
	TryAgain

	// Error is the catch-all for conditions not covered by a more specific
	// code.
	Error
)

// String returns a human-readable name for the error code.
func (e ErrorCode) String() string {
	switch e {
	case BadParameter:
		return "BadParameter"
	case PreconditionNotMet:
		return "PreconditionNotMet"
	case IllegalOperation:
		return "IllegalOperation"
	case AlreadyDeleted:
		return "AlreadyDeleted"
	case OutOfResources:
		return "OutOfResources"
	case TryAgain:
		return "TryAgain"
	case Error:
		return "Error"
	default:
		return fmt.Sprintf("Unknown(%d)", e)
	}
}

// CoreError represents a handle-server, loan-pipeline, or FSM-control error
// with an associated error code and the handle it concerns, if any.
type CoreError struct {
	Code    ErrorCode
	Message string
	Handle  int32 // 0 when the error is not tied to a specific handle
}

// Error implements the error interface.
func (e *CoreError) Error() string {
	if e.Handle != 0 {
		return fmt.Sprintf("%s: %s (handle: %d)", e.Code, e.Message, e.Handle)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ============================================================================
// Factory Functions
// ============================================================================

// NewBadParameterError creates a BadParameter error.
func NewBadParameterError(message string) *CoreError {
	return &CoreError{
		Code:    BadParameter,
		Message: message,
	}
}

// NewPreconditionNotMetError creates a PreconditionNotMet error for the
// given handle.
func NewPreconditionNotMetError(handle int32, message string) *CoreError {
	return &CoreError{
		Code:    PreconditionNotMet,
		Message: message,
		Handle:  handle,
	}
}

// NewIllegalOperationError creates an IllegalOperation error for the given
// handle.
func NewIllegalOperationError(handle int32, message string) *CoreError {
	return &CoreError{
		Code:    IllegalOperation,
		Message: message,
		Handle:  handle,
	}
}

// NewAlreadyDeletedError creates an AlreadyDeleted error for the given
// handle.
func NewAlreadyDeletedError(handle int32) *CoreError {
	return &CoreError{
		Code:    AlreadyDeleted,
		Message: "handle already deleted",
		Handle:  handle,
	}
}

// NewOutOfResourcesError creates an OutOfResources error.
func NewOutOfResourcesError(message string) *CoreError {
	return &CoreError{
		Code:    OutOfResources,
		Message: message,
	}
}

// NewTryAgainError creates a TryAgain error for the given handle.
// PinForDelete returns it to its caller when the delete cannot proceed
// while an outstanding reference remains.
func NewTryAgainError(handle int32) *CoreError {
	return &CoreError{
		Code:    TryAgain,
		Message: "operation cannot complete while a reference is outstanding",
		Handle:  handle,
	}
}

// NewError creates a generic Error.
func NewError(message string) *CoreError {
	return &CoreError{
		Code:    Error,
		Message: message,
	}
}

// ============================================================================
// Error Type Checking Helpers
// ============================================================================

// IsBadParameterError returns true if err is a BadParameter error.
func IsBadParameterError(err error) bool {
	ce, ok := err.(*CoreError)
	return ok && ce.Code == BadParameter
}

// IsPreconditionNotMetError returns true if err is a PreconditionNotMet
// error.
func IsPreconditionNotMetError(err error) bool {
	ce, ok := err.(*CoreError)
	return ok && ce.Code == PreconditionNotMet
}

// IsIllegalOperationError returns true if err is an IllegalOperation error.
func IsIllegalOperationError(err error) bool {
	ce, ok := err.(*CoreError)
	return ok && ce.Code == IllegalOperation
}

// IsAlreadyDeletedError returns true if err is an AlreadyDeleted error.
func IsAlreadyDeletedError(err error) bool {
	ce, ok := err.(*CoreError)
	return ok && ce.Code == AlreadyDeleted
}

// IsOutOfResourcesError returns true if err is an OutOfResources error.
func IsOutOfResourcesError(err error) bool {
	ce, ok := err.(*CoreError)
	return ok && ce.Code == OutOfResources
}

// IsTryAgainError returns true if err is a TryAgain error.
func IsTryAgainError(err error) bool {
	ce, ok := err.(*CoreError)
	return ok && ce.Code == TryAgain
}
