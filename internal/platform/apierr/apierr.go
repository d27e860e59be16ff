package apierr

import (
	"fmt"
	"net/http"

	"github.com/yungbote/printshop-backend/internal/domain/cart"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// StatusFor maps a cart error code to its HTTP status.
func StatusFor(code cart.ErrorCode) int {
	switch code {
	case cart.CodeValidation:
		return http.StatusBadRequest
	case cart.CodeOwnerNotFound, cart.CodeLineNotFound, cart.CodeProductNotFound:
		return http.StatusNotFound
	case cart.CodePersistence:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// FromCart converts any error into an API error carrying the cart kind.
func FromCart(op string, err error) *Error {
	if err == nil {
		return nil
	}
	ce := cart.Normalize(op, err)
	return New(StatusFor(ce.Code), string(ce.Code), ce)
}
