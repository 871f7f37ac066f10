package services

import "errors"

// Failure categories. Handlers map these onto HTTP status codes; everything
// else is treated as an internal error.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrUpstream     = errors.New("upstream service failure")
)
