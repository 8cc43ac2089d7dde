package category

import "context"

// Catalog is the remote category collection.
type Catalog interface {
	ListCategories(ctx context.Context) ([]*Category, error)
	CreateCategory(ctx context.Context, token string, in Input) (*Category, error)
	UpdateCategory(ctx context.Context, token string, id string, patch Patch) (*Category, error)
	DeleteCategory(ctx context.Context, token string, id string) error
}
