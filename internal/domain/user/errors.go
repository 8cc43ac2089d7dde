package user

import "errors"

var (
	ErrAuthRequired    = errors.New("authentication required")
	ErrAdminRequired   = errors.New("admin access required")
	ErrValidation      = errors.New("validation failed")
	ErrCorruptSession  = errors.New("stored session could not be decoded")
	ErrPersistSession  = errors.New("failed to persist session")
	ErrInvalidResponse = errors.New("invalid authentication response")
)
