package catalog

import (
	"errors"
	"fmt"
)

// Error represents a failure detected while reading or writing catalog data.
//
// Catalog errors fall into two categories:
//   - DATA_INTEGRITY: the backing store returned data that violates a schema
//     guarantee (missing required identifier, non-contiguous band numbering,
//     ambiguous single-valued lookup with mismatched attributes)
//   - BACKEND_STATE: the backing store contradicted itself (an insert
//     reported success but the row cannot be found by its own key)
//
// Both abort the current high-level operation and propagate to the caller;
// neither is retried.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Table names the affected relation, when known.
	Table string

	// Identifier is the natural key of the affected record, when known.
	Identifier string

	// Details contains additional context.
	Details map[string]string
}

// ErrorCode categorizes catalog errors.
type ErrorCode string

const (
	// ErrCodeDataIntegrity indicates the store returned data violating a
	// schema guarantee.
	ErrCodeDataIntegrity ErrorCode = "DATA_INTEGRITY"

	// ErrCodeBackendState indicates the store contradicted its own reported
	// state.
	ErrCodeBackendState ErrorCode = "BACKEND_STATE"
)

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Table != "" && e.Identifier != "":
		return fmt.Sprintf("%s: %s (table=%s, id=%s)", e.Code, e.Message, e.Table, e.Identifier)
	case e.Table != "":
		return fmt.Sprintf("%s: %s (table=%s)", e.Code, e.Message, e.Table)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// IsDataIntegrity returns true if the error is a data-integrity error.
// Uses errors.As to handle wrapped errors.
func IsDataIntegrity(err error) bool {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code == ErrCodeDataIntegrity
	}
	return false
}

// IsBackendState returns true if the error is a backend-state error.
// Uses errors.As to handle wrapped errors.
func IsBackendState(err error) bool {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code == ErrCodeBackendState
	}
	return false
}

// NewDataIntegrityError creates an Error for a schema-guarantee violation.
func NewDataIntegrityError(table, identifier, message string) *Error {
	return &Error{
		Code:       ErrCodeDataIntegrity,
		Message:    message,
		Table:      table,
		Identifier: identifier,
	}
}

// NewBackendStateError creates an Error for a store self-contradiction.
func NewBackendStateError(table, message string) *Error {
	return &Error{
		Code:    ErrCodeBackendState,
		Message: message,
		Table:   table,
	}
}
