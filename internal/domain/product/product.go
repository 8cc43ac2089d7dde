package product

import (
	"io"
	"time"

	"github.com/shopspring/decimal"

	domcategory "example.com/storefront/internal/domain/category"
)

// Product is the catalog record as the storefront sees it. Cart lines hold a
// copy of it, so two products are the same product when their IDs match.
type Product struct {
	ID          string
	Name        string
	Slug        string
	Description string
	Price       decimal.Decimal
	ImageURL    string
	CategoryID  string
	Category    *domcategory.Category
	Stock       int
	Featured    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Input carries the admin form for creating or updating a product.
type Input struct {
	Name        string          `validate:"required"`
	Description string          `validate:"required"`
	Price       decimal.Decimal
	Stock       int             `validate:"gte=0"`
	CategoryID  string          `validate:"required"`
	Featured    bool
	Photo       *Photo
}

type Photo struct {
	Filename string
	Content  io.Reader
}
