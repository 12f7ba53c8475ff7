package policies

import "errors"

var (
	ErrNotFound     = errors.New("policy not found")
	ErrInvalidInput = errors.New("invalid input")
)
