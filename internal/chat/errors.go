package chat

import "errors"

var (
	// ErrEmptyContent rejects messages with no text payload.
	ErrEmptyContent = errors.New("message content is empty")

	// ErrSelfMessage rejects sender == receiver before persistence.
	ErrSelfMessage = errors.New("cannot message yourself")

	// ErrUnknownUser means the receiver did not resolve in the directory.
	ErrUnknownUser = errors.New("unknown user")

	// ErrSenderMismatch means a connection tried to send on behalf of a
	// different user than the one it authenticated as.
	ErrSenderMismatch = errors.New("sender does not match authenticated user")
)
