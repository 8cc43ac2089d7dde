package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	domcart "example.com/storefront/internal/domain/cart"
)

// CartRepository stores the cart as one JSON array under KeyCart.
type CartRepository struct {
	store Store
}

func NewCartRepository(store Store) *CartRepository {
	return &CartRepository{store: store}
}

func (r *CartRepository) Load(ctx context.Context) ([]domcart.Line, error) {
	raw, found, err := r.store.Get(ctx, KeyCart)
	if err != nil {
		return nil, fmt.Errorf("read cart: %w", err)
	}
	if !found {
		return nil, nil
	}
	var records []lineRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", domcart.ErrCorruptState, err)
	}
	return fromLineRecords(records), nil
}

func (r *CartRepository) Save(ctx context.Context, lines []domcart.Line) error {
	raw, err := json.Marshal(toLineRecords(lines))
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	return r.store.Set(ctx, KeyCart, raw)
}
