package order

import (
	"errors"
	"fmt"

	"orderlifecycle/internal/core/domain/model/kernel"
)

// ErrorKind is the closed classification of status change failures. Callers
// branch on the kind: only Infrastructure failures are worth retrying as-is,
// Conflict needs a re-read first, the others need different input.
type ErrorKind int

const (
	KindNotFound ErrorKind = iota + 1
	KindValidation
	KindPermission
	KindConflict
	KindInfrastructure
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrStatusValidation  = errors.New("status transition is not valid")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrVersionConflict   = errors.New("order was modified concurrently")
	ErrInfrastructure    = errors.New("infrastructure failure")
	errUnknownStatusKind = errors.New("unknown status error kind")
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "NotFound"
	case KindValidation:
		return "Validation"
	case KindPermission:
		return "Permission"
	case KindConflict:
		return "Conflict"
	case KindInfrastructure:
		return "Infrastructure"
	default:
		return "Unknown"
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindNotFound:
		return ErrOrderNotFound
	case KindValidation:
		return ErrStatusValidation
	case KindPermission:
		return ErrPermissionDenied
	case KindConflict:
		return ErrVersionConflict
	case KindInfrastructure:
		return ErrInfrastructure
	default:
		return errUnknownStatusKind
	}
}

// StatusError is returned by every status changing operation.
//
// Example:
//
//	var statusErr *order.StatusError
//	if errors.As(err, &statusErr) && statusErr.Kind == order.KindConflict {
//	    // re-read the order and resubmit
//	}
type StatusError struct {
	Kind    ErrorKind
	Code    Code
	OrderID kernel.UUID
	Message string
	// Errors lists every violated rule for KindValidation.
	Errors []ValidationError
	Cause  error
}

func NewNotFoundError(orderID kernel.UUID, cause error) *StatusError {
	return &StatusError{
		Kind:    KindNotFound,
		Code:    CodeNotFound,
		OrderID: orderID,
		Message: fmt.Sprintf("order %s does not exist", orderID),
		Cause:   cause,
	}
}

// NewValidationError wraps an invalid ValidationResult.
func NewValidationError(orderID kernel.UUID, result ValidationResult) *StatusError {
	return &StatusError{
		Kind:    KindValidation,
		Code:    result.FirstCode(),
		OrderID: orderID,
		Message: result.String(),
		Errors:  result.Errors,
	}
}

func NewPermissionError(orderID kernel.UUID, reason string) *StatusError {
	return &StatusError{
		Kind:    KindPermission,
		Code:    CodePermissionDenied,
		OrderID: orderID,
		Message: reason,
	}
}

func NewConflictError(orderID kernel.UUID, cause error) *StatusError {
	return &StatusError{
		Kind:    KindConflict,
		Code:    CodeConflict,
		OrderID: orderID,
		Message: "order was modified by another request, re-read and resubmit",
		Cause:   cause,
	}
}

func NewInfrastructureError(orderID kernel.UUID, cause error) *StatusError {
	return &StatusError{
		Kind:    KindInfrastructure,
		Code:    CodeInfrastructure,
		OrderID: orderID,
		Message: "storage or collaborator failure",
		Cause:   cause,
	}
}

func NewCancelledError(orderID kernel.UUID, cause error) *StatusError {
	return &StatusError{
		Kind:    KindInfrastructure,
		Code:    CodeCancelled,
		OrderID: orderID,
		Message: "not processed before the request was cancelled",
		Cause:   cause,
	}
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s: order %s: %s", e.Code, e.OrderID, e.Message)
	if e.Cause != nil {
		return fmt.Sprintf("%s (cause: %v)", msg, e.Cause)
	}
	return msg
}

// Unwrap exposes both the kind sentinel and the cause to errors.Is.
func (e *StatusError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind.sentinel()}
	}
	return []error{e.Kind.sentinel(), e.Cause}
}

// KindOf returns the kind of a *StatusError anywhere in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Kind
	}
	return 0
}

// CodeOf returns the code of a *StatusError anywhere in err's chain, or
// CodeInfrastructure for any other error.
func CodeOf(err error) Code {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code
	}
	return CodeInfrastructure
}
