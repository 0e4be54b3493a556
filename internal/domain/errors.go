package domain

import "errors"

var (
	// ErrUnauthenticated means the caller has no valid session.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden means the caller's role or participation does not allow
	// the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidTarget means a direct-message target does not resolve to a
	// known user, or is the sender themselves.
	ErrInvalidTarget = errors.New("invalid target")
	// ErrEmptyMessage means the message body is empty after trimming.
	ErrEmptyMessage = errors.New("empty message")

	ErrNotFound           = errors.New("not found")
	ErrEmailTaken         = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
