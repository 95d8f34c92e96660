package services

import "errors"

var (
	ErrUnknownMailbox     = errors.New("unknown mailbox")
	ErrNotFound           = errors.New("email not found")
	ErrInvalidCredentials = errors.New("invalid email and/or password")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrEmailTaken         = errors.New("email address already taken")
)

// ValidationError is a user-facing complaint about a request.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}
