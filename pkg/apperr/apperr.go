// Package apperr defines the domain error kinds returned by the usercenter services.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a domain failure.
type Kind string

const (
	KindMissingTenant          Kind = "MISSING_TENANT"
	KindDuplicateIdentity      Kind = "DUPLICATE_IDENTITY"
	KindDuplicateCode          Kind = "DUPLICATE_CODE"
	KindDuplicateTenant        Kind = "DUPLICATE_TENANT"
	KindNotFound               Kind = "NOT_FOUND"
	KindTenantMismatch         Kind = "TENANT_MISMATCH"
	KindHasChildren            Kind = "HAS_CHILDREN"
	KindHasMembers             Kind = "HAS_MEMBERS"
	KindAlreadyBound           Kind = "ALREADY_BOUND"
	KindAlreadyMember          Kind = "ALREADY_MEMBER"
	KindPlatformNotInitialized Kind = "PLATFORM_NOT_INITIALIZED"
	KindInvalidArgument        Kind = "INVALID_ARGUMENT"
	KindUnauthorized           Kind = "UNAUTHORIZED"
	KindForbidden              Kind = "FORBIDDEN"
)

// Sentinels for errors.Is; matching is by kind only.
var (
	ErrMissingTenant          = &Error{Kind: KindMissingTenant, Message: "missing tenant id"}
	ErrDuplicateIdentity      = &Error{Kind: KindDuplicateIdentity, Message: "identity already registered"}
	ErrDuplicateCode          = &Error{Kind: KindDuplicateCode, Message: "code already exists"}
	ErrDuplicateTenant        = &Error{Kind: KindDuplicateTenant, Message: "tenant code already exists"}
	ErrNotFound               = &Error{Kind: KindNotFound, Message: "not found"}
	ErrTenantMismatch         = &Error{Kind: KindTenantMismatch, Message: "tenant mismatch"}
	ErrHasChildren            = &Error{Kind: KindHasChildren, Message: "organization unit has children"}
	ErrHasMembers             = &Error{Kind: KindHasMembers, Message: "organization unit has members"}
	ErrAlreadyBound           = &Error{Kind: KindAlreadyBound, Message: "permission already bound"}
	ErrAlreadyMember          = &Error{Kind: KindAlreadyMember, Message: "already a member"}
	ErrPlatformNotInitialized = &Error{Kind: KindPlatformNotInitialized, Message: "platform tenant not initialized"}
	ErrInvalidArgument        = &Error{Kind: KindInvalidArgument, Message: "invalid argument"}
	ErrUnauthorized           = &Error{Kind: KindUnauthorized, Message: "unauthorized"}
	ErrForbidden              = &Error{Kind: KindForbidden, Message: "forbidden"}
)

// Error is a domain error carrying a Kind and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// Error returns the message, with the cause appended when present.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to err. Returns nil for a nil err.
func Wrap(err error, kind Kind, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: message, Cause: err}
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// MessageOf returns the message of the first *Error in err's chain.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return ""
}
