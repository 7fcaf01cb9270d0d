package persistence

import "errors"

var (
	// ErrNotFound is returned by key-value drivers when a key has never been written.
	ErrNotFound = errors.New("persistence: not found")
	// ErrIDExhausted is returned when the id generator keeps producing ids already in use.
	ErrIDExhausted = errors.New("persistence: could not allocate a unique request id")
)
