// Package services holds the storefront's business operations. Controllers
// and the create-order function call into it; it talks to a store.Store.
package services

import (
	"errors"
	"fmt"
)

// Kind classifies a service failure so callers can map it to a status.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuthenticationRequired
	KindAuthorization
	KindNotFound
	KindOrderInsertFailed
	KindOrderItemsInsertFailed
	KindDuplicateRequest
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindAuthenticationRequired:
		return "AuthenticationRequired"
	case KindAuthorization:
		return "AuthorizationError"
	case KindNotFound:
		return "NotFound"
	case KindOrderInsertFailed:
		return "OrderInsertFailed"
	case KindOrderItemsInsertFailed:
		return "OrderItemsInsertFailed"
	case KindDuplicateRequest:
		return "DuplicateRequest"
	}
	return "InternalError"
}

// Error is returned by every service operation that fails.
type Error struct {
	Kind    Kind
	Message string
	// RedirectURL is set on AuthenticationRequired.
	RedirectURL string
	// OrderID is set when an order header exists despite the failure, and on
	// DuplicateRequest.
	OrderID string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same kind, so errors.Is(err, &Error{Kind: KindNotFound}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf returns the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

func validationError(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func notFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func forbidden(msg string) *Error {
	return &Error{Kind: KindAuthorization, Message: msg}
}

func internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}
