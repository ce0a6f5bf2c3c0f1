package orders

import "errors"

var (
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrCustomerNotFound   = errors.New("no customer linked to principal")
	ErrInvalidQuantity    = errors.New("quantity must be a positive integer")
	ErrProductUnavailable = errors.New("product missing or inactive")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrOrderNotFound      = errors.New("order not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidTransition  = errors.New("invalid status transition")
)
