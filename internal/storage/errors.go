package storage

import "errors"

var (
	// ErrAccountNotFound is returned when an account id does not resolve.
	ErrAccountNotFound = errors.New("storage: account not found")

	// ErrAccountExists is returned when creating an account whose id is taken.
	ErrAccountExists = errors.New("storage: account already exists")
)
