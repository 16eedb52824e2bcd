package scc1

import (
	"errors"
	"fmt"
)

// ErrorKind represents the category of a command layer error
type ErrorKind int

const (
	// KindInvalidArgument indicates a local range validation failure
	KindInvalidArgument ErrorKind = iota
	// KindUnsupportedOperation indicates a call that is illegal in the current state
	KindUnsupportedOperation
	// KindMalformedResponse indicates a response that violates its documented layout
	KindMalformedResponse
	// KindUnknownProduct indicates a product id that is in no known product table
	KindUnknownProduct
)

// String returns a human-readable name for the error kind
func (k ErrorKind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid argument"
	case KindUnsupportedOperation:
		return "unsupported operation"
	case KindMalformedResponse:
		return "malformed response"
	case KindUnknownProduct:
		return "unknown product"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Error is returned by the command layer for failures it detects itself.
// Transport failures are never wrapped in an Error.
type Error struct {
	Kind    ErrorKind // Category of error
	Op      string    // Operation that failed (e.g. "set sensor address")
	Message string    // Human-readable detail
	Err     error     // Underlying error (if any)
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Message)
	if e.Err != nil {
		msg += fmt.Sprintf(" (caused by: %v)", e.Err)
	}
	return msg
}

// Unwrap returns the underlying error for error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// NewInvalidArgumentError creates an error for a rejected argument
func NewInvalidArgumentError(op, message string) *Error {
	return &Error{Kind: KindInvalidArgument, Op: op, Message: message}
}

// NewUnsupportedOperationError creates an error for a state machine violation
func NewUnsupportedOperationError(op, message string) *Error {
	return &Error{Kind: KindUnsupportedOperation, Op: op, Message: message}
}

// NewMalformedResponseError creates an error for an unusable response
func NewMalformedResponseError(op, message string, err error) *Error {
	return &Error{Kind: KindMalformedResponse, Op: op, Message: message, Err: err}
}

// NewUnknownProductError creates an error for an unsupported product id
func NewUnknownProductError(productID uint32) *Error {
	return &Error{
		Kind:    KindUnknownProduct,
		Op:      "resolve product",
		Message: fmt.Sprintf("product id 0x%08X is not valid", productID),
	}
}

func isKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// IsInvalidArgument checks if an error is an invalid argument error
func IsInvalidArgument(err error) bool {
	return isKind(err, KindInvalidArgument)
}

// IsUnsupportedOperation checks if an error is an unsupported operation error
func IsUnsupportedOperation(err error) bool {
	return isKind(err, KindUnsupportedOperation)
}

// IsMalformedResponse checks if an error is a malformed response error
func IsMalformedResponse(err error) bool {
	return isKind(err, KindMalformedResponse)
}

// IsUnknownProduct checks if an error is an unknown product error
func IsUnknownProduct(err error) bool {
	return isKind(err, KindUnknownProduct)
}
