package category

import "time"

type Category struct {
	ID          string
	Name        string
	Slug        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Input struct {
	Name        string `validate:"required"`
	Description string
}

// Patch updates only the fields that are set.
type Patch struct {
	Name        *string
	Description *string
}
