package users

import "errors"

var (
	ErrNotFound     = errors.New("user not found")
	ErrEmailExists  = errors.New("user with this email already exists")
	ErrInvalidInput = errors.New("invalid input")
)
