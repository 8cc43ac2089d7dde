package order

import "errors"

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrEmptyOrderItems    = errors.New("no items to checkout")
	ErrCheckoutValidation = errors.New("checkout validation failed")
	ErrPaymentNotVerified = errors.New("payment verification failed")
)
