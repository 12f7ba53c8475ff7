package pattas

import "errors"

var (
	ErrNotFound     = errors.New("patta not found")
	ErrInvalidInput = errors.New("invalid input")
)
