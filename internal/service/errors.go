package service

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("error not found")
	ErrAlreadyExists   = errors.New("error already exists")
	ErrValidation      = errors.New("error validation failed")
	ErrUnauthorized    = errors.New("error unauthorized")
	ErrUnavailable     = errors.New("error backend unavailable")
	ErrStorageDisabled = errors.New("error file storage is disabled")
)

// ValidationError carries per-field messages and matches ErrValidation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", ErrValidation.Error(), e.Fields)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Add records a field error; the first message per field wins.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

// Err returns nil when no field failed.
func (e *ValidationError) Err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
