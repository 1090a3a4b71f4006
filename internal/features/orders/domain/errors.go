package domain

import "errors"

var (
	// ErrInvalidArgument is returned when an operation receives degenerate input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidTransition is returned when a status update would move a delivery backwards
	// or past its terminal stage. Only raised when strict transitions are enabled.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrOrderNotFound is returned when no order carries the requested identifier.
	ErrOrderNotFound = errors.New("order not found")
	// ErrMalformedState is returned when the persisted order list cannot be decoded.
	ErrMalformedState = errors.New("malformed persisted order state")
)
