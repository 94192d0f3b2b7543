package model

import "errors"

var (
	// ErrOutOfRange is returned when a time block lies outside the horizon.
	ErrOutOfRange = errors.New("out of range")
	// ErrInvalidArgument is returned for malformed unit definitions or
	// nonsensical inputs such as negative demand.
	ErrInvalidArgument = errors.New("invalid argument")
)
