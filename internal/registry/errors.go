package registry

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes registry call failures.
type ErrorCode string

const (
	// ErrCodeDuplicateGrant indicates an insert of a grant that already exists.
	ErrCodeDuplicateGrant ErrorCode = "DUPLICATE_GRANT"

	// ErrCodeTimelocked indicates a delete candidate whose lock has not passed.
	ErrCodeTimelocked ErrorCode = "TIMELOCKED"

	// ErrCodeInvalidQuery indicates a query with neither owner nor grantee.
	ErrCodeInvalidQuery ErrorCode = "INVALID_QUERY"

	// ErrCodeInvalidArgument indicates a malformed account id, key or call.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
)

// Messages surfaced verbatim to external callers.
const (
	msgDuplicateGrant = "Grant already exists"
	msgTimelocked     = "Grant is timelocked"
	msgInvalidQuery   = "Required argument: `owner` and/or `grantee`"
)

// Error is a caller-visible policy failure. It aborts the call with no
// partial effects and is never retried.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is the caller-facing description.
	Message string

	// GrantID identifies the offending grant, when there is one.
	GrantID string

	// Err is the underlying cause, for invalid arguments.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	if e.GrantID != "" {
		return fmt.Sprintf("%s: %s (grant=%s)", e.Code, e.Message, e.GrantID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf returns the registry error code carried by err, or "" if err is
// not a registry error. Uses errors.As to handle wrapped errors.
func CodeOf(err error) ErrorCode {
	var re *Error
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}

// IsDuplicate reports whether err is a duplicate-grant error.
func IsDuplicate(err error) bool {
	return CodeOf(err) == ErrCodeDuplicateGrant
}

// IsTimelocked reports whether err is a time-lock error.
func IsTimelocked(err error) bool {
	return CodeOf(err) == ErrCodeTimelocked
}

// IsInvalidQuery reports whether err is an invalid-query error.
func IsInvalidQuery(err error) bool {
	return CodeOf(err) == ErrCodeInvalidQuery
}

// IsInvalidArgument reports whether err is an invalid-argument error.
func IsInvalidArgument(err error) bool {
	return CodeOf(err) == ErrCodeInvalidArgument
}

// NewDuplicateError creates an Error for an insert of an existing grant.
func NewDuplicateError(grantID string) *Error {
	return &Error{Code: ErrCodeDuplicateGrant, Message: msgDuplicateGrant, GrantID: grantID}
}

// NewTimelockedError creates an Error for a delete blocked by a lock.
func NewTimelockedError(grantID string) *Error {
	return &Error{Code: ErrCodeTimelocked, Message: msgTimelocked, GrantID: grantID}
}

// NewInvalidQueryError creates an Error for a query missing owner and grantee.
func NewInvalidQueryError() *Error {
	return &Error{Code: ErrCodeInvalidQuery, Message: msgInvalidQuery}
}

// NewInvalidArgumentError wraps a validation failure.
func NewInvalidArgumentError(message string, err error) *Error {
	return &Error{Code: ErrCodeInvalidArgument, Message: message, Err: err}
}
