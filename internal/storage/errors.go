package storage

import "errors"

var (
	// ErrNotFound is returned when a record that must exist is absent
	ErrNotFound = errors.New("not found")
	// ErrIntegrity is returned when an output does not belong to the
	// transaction it is written for
	ErrIntegrity = errors.New("integrity violation")
)
