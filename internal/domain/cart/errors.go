package cart

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode classifies cart failures so callers can decide whether to retry,
// show the message, or give up.
type ErrorCode string

const (
	CodeValidation      ErrorCode = "validation"
	CodeOwnerNotFound   ErrorCode = "owner_not_found"
	CodeLineNotFound    ErrorCode = "line_not_found"
	CodeProductNotFound ErrorCode = "product_not_found"
	CodePersistence     ErrorCode = "persistence"
	CodeUnknown         ErrorCode = "unknown"
)

// Error is the canonical cart error wrapper.
type Error struct {
	Code    ErrorCode
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	op := strings.TrimSpace(e.Op)
	msg := strings.TrimSpace(e.Message)
	switch {
	case op != "" && msg != "":
		return fmt.Sprintf("%s: %s (%s)", op, msg, e.Code)
	case op != "":
		return fmt.Sprintf("%s (%s)", op, e.Code)
	case msg != "":
		return fmt.Sprintf("%s (%s)", msg, e.Code)
	default:
		return string(e.Code)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// NewError builds a cart error with explicit code + operation.
func NewError(code ErrorCode, op, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Op:      strings.TrimSpace(op),
		Message: strings.TrimSpace(message),
		Cause:   cause,
	}
}

// Wrap annotates an existing error with a cart error code. Errors that
// already carry a code are returned as-is.
func Wrap(code ErrorCode, op string, err error) error {
	if err == nil {
		return nil
	}
	var cartErr *Error
	if errors.As(err, &cartErr) {
		return err
	}
	return NewError(code, op, err.Error(), err)
}

func Validation(op, message string) error {
	return NewError(CodeValidation, op, message, nil)
}

func LineNotFound(op, lineID string) error {
	return NewError(CodeLineNotFound, op, fmt.Sprintf("cart line %q not found", lineID), nil)
}

func OwnerNotFound(op, ownerID string) error {
	return NewError(CodeOwnerNotFound, op, fmt.Sprintf("owner %q not found", ownerID), nil)
}

// IsCode checks whether err (or a wrapped err) carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// CodeOf extracts the cart error code, or "" when err is not a cart error.
func CodeOf(err error) ErrorCode {
	var cartErr *Error
	if !errors.As(err, &cartErr) {
		return ""
	}
	return cartErr.Code
}

// Normalize guarantees a *Error, defaulting unknown failures to CodeUnknown.
func Normalize(op string, err error) *Error {
	if err == nil {
		return nil
	}
	var cartErr *Error
	if errors.As(err, &cartErr) {
		return cartErr
	}
	return NewError(CodeUnknown, op, err.Error(), err)
}

// Retryable reports whether the failure is transient.
func Retryable(err error) bool {
	return IsCode(err, CodePersistence)
}

// DisplayMessage turns any error into text fit for a shopper.
func DisplayMessage(err error) string {
	if err == nil {
		return ""
	}
	switch CodeOf(err) {
	case CodeValidation:
		var cartErr *Error
		if errors.As(err, &cartErr) && cartErr.Message != "" {
			return "Invalid cart request: " + cartErr.Message
		}
		return "Invalid cart request."
	case CodeLineNotFound:
		return "That item is no longer in your cart."
	case CodeOwnerNotFound:
		return "We could not find your account. Please sign in again."
	case CodeProductNotFound:
		return "That product is no longer available."
	case CodePersistence:
		return "We could not reach the cart service. Please try again."
	default:
		return "Something went wrong with your cart."
	}
}
