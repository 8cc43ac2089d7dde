package cart

import "errors"

var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrCorruptState    = errors.New("stored cart could not be decoded")
	ErrPersist         = errors.New("failed to persist cart")
)
