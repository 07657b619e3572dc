package repository

import "errors"

var (
	ErrAlreadyExists = errors.New("error already exists")
	ErrNotFound      = errors.New("error not found")
	// ErrConflict is returned when a referenced row does not exist (foreign key violation).
	ErrConflict = errors.New("error conflicting reference")
)
