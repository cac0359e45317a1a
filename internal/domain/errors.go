// Package domain provides shared domain-level sentinel errors.
package domain

import "errors"

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrEmptyInput indicates a turn with no text after trimming. It never reaches the network.
var ErrEmptyInput = errors.New("empty input")

// ErrBusy indicates another operation of the same kind is still in flight.
var ErrBusy = errors.New("operation already in progress")

// ErrPendingTurn indicates a placeholder is already awaiting its response.
var ErrPendingTurn = errors.New("a response is already pending")

// ErrNotPending indicates the target message is no longer awaiting a response.
var ErrNotPending = errors.New("message is not pending")

// ErrNoAttachment indicates no processed attachment is waiting to be sent.
var ErrNoAttachment = errors.New("no pending attachment")

// ErrUnsupportedFile indicates a local file type the backend does not extract.
var ErrUnsupportedFile = errors.New("unsupported file type")

// ErrInvalidState indicates an operation not allowed in the current state.
var ErrInvalidState = errors.New("invalid state")

// ErrTooLarge indicates a local file above the configured upload limit.
var ErrTooLarge = errors.New("file too large")

// ErrValidation indicates input that failed validation.
var ErrValidation = errors.New("validation error")
