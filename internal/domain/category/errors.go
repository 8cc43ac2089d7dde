package category

import "errors"

var (
	ErrCategoryNotFound    = errors.New("category not found")
	ErrCategoryInvalidName = errors.New("category name is required")
	ErrEmptyPatch          = errors.New("nothing to update")
)
