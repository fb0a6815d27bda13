package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrValidation             = errors.New("validation failed")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrConflict               = errors.New("conflict")
	ErrDivisionByZero         = errors.New("division by zero")
	ErrInvalidScheduleInput   = errors.New("invalid deduction schedule input")
	ErrSettlementFailed       = errors.New("settlement failed")
	ErrSalaryRecordNotFound   = errors.New("salary record not found")
	ErrAdvanceNotFound        = errors.New("advance not found")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeValidation             = "VALIDATION_ERROR"
	ErrCodeInvalidStateTransition = "INVALID_STATE_TRANSITION"
	ErrCodeConflict               = "CONFLICT"
	ErrCodeDivisionByZero         = "DIVISION_BY_ZERO"
	ErrCodeInvalidScheduleInput   = "INVALID_SCHEDULE_INPUT"
	ErrCodeSettlementFailed       = "SETTLEMENT_FAILED"
	ErrCodeSalaryRecordNotFound   = "SALARY_RECORD_NOT_FOUND"
	ErrCodeAdvanceNotFound        = "ADVANCE_NOT_FOUND"
	ErrCodeDatabaseError          = "DATABASE_ERROR"
	ErrCodeCacheError             = "CACHE_ERROR"
)

// Wrap common errors with business context

func WrapValidationError(detail string) *BusinessError {
	return NewBusinessError(ErrCodeValidation, detail, ErrValidation)
}

func WrapInvalidStateTransition(operation, status string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidStateTransition,
		fmt.Sprintf("cannot %s while status is %q", operation, status),
		ErrInvalidStateTransition,
	)
}

func WrapOutstandingAdvanceConflict(employeeID string) *BusinessError {
	return NewBusinessError(
		ErrCodeConflict,
		fmt.Sprintf("employee %s already has an outstanding advance", employeeID),
		ErrConflict,
	)
}

func WrapDuplicatePeriodConflict(employeeID, month string, year int) *BusinessError {
	return NewBusinessError(
		ErrCodeConflict,
		fmt.Sprintf("salary record for employee %s already exists for %s/%d", employeeID, month, year),
		ErrConflict,
	)
}

func WrapDivisionByZero(detail string) *BusinessError {
	return NewBusinessError(ErrCodeDivisionByZero, detail, ErrDivisionByZero)
}

func WrapInvalidScheduleInput(detail string) *BusinessError {
	return NewBusinessError(ErrCodeInvalidScheduleInput, detail, ErrInvalidScheduleInput)
}

// WrapSettlementFailed reports a failed batch settlement. Index is the
// position of the failing advance in the eligible list so the caller can
// diagnose and retry the whole batch.
func WrapSettlementFailed(advanceID string, index int, err error) *BusinessError {
	return NewBusinessError(
		ErrCodeSettlementFailed,
		fmt.Sprintf("settlement aborted at advance %s (index %d)", advanceID, index),
		errors.Join(ErrSettlementFailed, err),
	)
}

func WrapSalaryRecordNotFound(employeeID, month string, year int) *BusinessError {
	return NewBusinessError(
		ErrCodeSalaryRecordNotFound,
		fmt.Sprintf("salary record for employee %s not found for %s/%d", employeeID, month, year),
		ErrSalaryRecordNotFound,
	)
}

func WrapAdvanceNotFound(advanceID string) *BusinessError {
	return NewBusinessError(
		ErrCodeAdvanceNotFound,
		fmt.Sprintf("advance with ID %s not found", advanceID),
		ErrAdvanceNotFound,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(ErrCodeDatabaseError, "database operation failed", err)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(ErrCodeCacheError, "cache operation failed", err)
}

// CodeOf extracts the business error code, or DATABASE_ERROR for unknown errors.
func CodeOf(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ErrCodeDatabaseError
}
