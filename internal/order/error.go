package order

import "errors"

var (
	ErrNotFound          = errors.New("order not found")
	ErrNoOrderItems      = errors.New("no order items")
	ErrForbidden         = errors.New("not authorized")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidTransition = errors.New("illegal status transition")
	ErrConcurrentUpdate  = errors.New("order was modified concurrently")
)
