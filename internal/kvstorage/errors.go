package kvstorage

import "errors"

var (
	// ErrKeyNotFound is returned when a key does not exist.
	ErrKeyNotFound = errors.New("key not found")

	// ErrInvalidArgument is returned for missing or malformed arguments,
	// such as an empty key or the wrong number of values to Replace.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrPersist wraps failures to write the store to disk. The in-memory
	// state has already changed when it is returned.
	ErrPersist = errors.New("saving store")
)
