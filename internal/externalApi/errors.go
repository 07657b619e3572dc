package externalApi

import "errors"

var (
	ErrNotFound     = errors.New("error not found")
	ErrUnauthorized = errors.New("error unauthorized")
	ErrBadRequest   = errors.New("error bad request")
)
