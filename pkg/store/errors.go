package store

import "errors"

var (
	// ErrNotFound signals that no record matches the lookup key.
	ErrNotFound = errors.New("record not found")
	// ErrStoreUnavailable signals that the backing database cannot be
	// reached. Callers treat it as transient and may retry.
	ErrStoreUnavailable = errors.New("graph store unavailable")
	// ErrConstraintViolation signals that a write collided with a
	// uniqueness constraint, typically a concurrent upsert of the same
	// natural key.
	ErrConstraintViolation = errors.New("constraint violation")
)
