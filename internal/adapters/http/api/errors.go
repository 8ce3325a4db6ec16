package api

import "errors"

var (
	// ErrBadRequest indicates the request payload or query failed validation.
	ErrBadRequest = errors.New("bad request")
	// ErrMethodNotAllowed indicates the route does not support the method.
	ErrMethodNotAllowed = errors.New("method not allowed")
	// ErrNotFound indicates the addressed resource does not exist.
	ErrNotFound = errors.New("not found")
)
