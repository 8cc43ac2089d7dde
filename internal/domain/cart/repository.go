package cart

import "context"

// Repository mirrors the cart to durable storage. Load returns nil lines and
// no error when nothing has been saved yet.
type Repository interface {
	Load(ctx context.Context) ([]Line, error)
	Save(ctx context.Context, lines []Line) error
}
