package model

import "errors"

var (
	// ErrNotFound is returned when a token, pool or bundle is absent from a backend.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput is returned for malformed addresses, periods and chain names.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnsupportedChain is returned when no backend serves the requested chain.
	ErrUnsupportedChain = errors.New("unsupported chain")
)
