package product

import "context"

// Catalog is the remote product collection.
type Catalog interface {
	ListProducts(ctx context.Context) ([]*Product, error)
	GetProduct(ctx context.Context, slug string) (*Product, error)
	CreateProduct(ctx context.Context, token string, in Input) (*Product, error)
	UpdateProduct(ctx context.Context, token string, id string, in Input) (*Product, error)
	DeleteProduct(ctx context.Context, token string, id string) error
	PhotoURL(id string) string
}
