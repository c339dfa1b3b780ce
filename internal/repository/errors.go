package repository

import "errors"

// Domain conditions handlers translate into HTTP status codes
var (
	ErrNotFound          = errors.New("not found")
	ErrEmailTaken        = errors.New("email already registered")
	ErrInsufficientStock = errors.New("insufficient stock")
)
