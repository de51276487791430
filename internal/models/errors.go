package models

import "errors"

// Sentinel errors shared by the engine, the stores and the HTTP boundary.
// Callers match them with errors.Is; wrapped messages carry the detail.
var (
	// ErrInvalidRequest indicates malformed or missing input. No side
	// effects have occurred.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrAccountNotFound indicates a referenced account does not exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrInsufficientBalance indicates the sender cannot cover the amount.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrConflict is a transient concurrent-access hazard detected by the
	// storage layer. The engine retries the whole transfer on it.
	ErrConflict = errors.New("storage conflict")

	// ErrDuplicateEmail indicates the email is already registered.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrTransferNotFound indicates the transfer record does not exist.
	ErrTransferNotFound = errors.New("transfer not found")

	// ErrInvalidCredentials indicates a failed login attempt.
	ErrInvalidCredentials = errors.New("invalid email or password")
)
