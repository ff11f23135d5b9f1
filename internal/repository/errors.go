package repository

import "errors"

var (
	// ErrNotFound indicates the requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConcurrentModification indicates an optimistic-lock conflict:
	// the obligation changed between read and commit.
	ErrConcurrentModification = errors.New("obligation modified concurrently")
)
