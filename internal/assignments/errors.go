package assignments

import "errors"

var (
	ErrNotFound          = errors.New("assignment not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrForbidden         = errors.New("not authorized")
	ErrNGONotApproved    = errors.New("NGO is not approved")
	ErrNGONotFound       = errors.New("NGO account not found")
)
