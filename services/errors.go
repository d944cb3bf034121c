package services

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for the HTTP boundary.
type Kind string

const (
	KindValidation     Kind = "validation"
	KindConflict       Kind = "conflict"
	KindAuthentication Kind = "authentication"
	KindAuthorization  Kind = "authorization"
	KindNotFound       Kind = "not_found"
	KindUpstream       Kind = "upstream"
	KindInternal       Kind = "internal"
)

// Error is the one result type every service failure is reported as.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches sentinels by kind and message so wrapped copies still compare equal.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

var (
	ErrEmailTaken           = newError(KindConflict, "User with this email already exists")
	ErrUsernameTaken        = newError(KindConflict, "Username is already taken")
	ErrInvalidCredentials   = newError(KindAuthentication, "Invalid email/username or password")
	ErrInvalidToken         = newError(KindAuthorization, "Invalid token")
	ErrMissingToken         = newError(KindAuthorization, "Access denied. No token provided.")
	ErrInvalidOldPassword   = newError(KindValidation, "Invalid old password")
	ErrAlreadyMember        = newError(KindConflict, "User is already a member of this workspace")
	ErrInvitationPending    = newError(KindConflict, "An invitation has already been sent to this email for this workspace")
	ErrInvitationNotFound   = newError(KindNotFound, "Invitation not found")
	ErrOwnerOnly            = newError(KindAuthorization, "Only the workspace owner can perform this action")
	ErrAccessDenied         = newError(KindAuthorization, "Access denied")
	ErrWorkspaceNotFound    = newError(KindNotFound, "Workspace not found")
	ErrPresentationNotFound = newError(KindNotFound, "Presentation not found")
	ErrUserNotFound         = newError(KindNotFound, "User not found")
	ErrNoOwnedWorkspace     = newError(KindNotFound, "You do not own a workspace to update")
	ErrInvalidAIResponse    = newError(KindUpstream, "Invalid response format from AI service")
)

// Validation builds a validation error with a caller-facing message.
func Validation(msg string) *Error {
	return newError(KindValidation, msg)
}

// Upstream wraps a failure from the AI content service.
func Upstream(msg string, err error) *Error {
	return &Error{Kind: KindUpstream, Message: msg, Err: err}
}

// Internal wraps an unexpected failure. The message is never shown to clients.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal error", Err: err}
}

// KindOf reports the kind of err; anything that is not an *Error is internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the caller-facing message of err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}
