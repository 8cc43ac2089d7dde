package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	domcart "example.com/storefront/internal/domain/cart"
	domproduct "example.com/storefront/internal/domain/product"
	"example.com/storefront/pkg/logger"
)

// Observer is told about every cart mutation and whether it succeeded.
type Observer interface {
	ObserveMutation(operation string, err error)
}

// Service owns the process-wide cart. Each mutation writes the whole cart to
// the repository before the new state becomes visible; when the write fails
// the cart stays as it was.
type Service struct {
	mu       sync.Mutex
	cart     domcart.Cart
	repo     domcart.Repository
	log      *logger.Logger
	observer Observer
}

// NewService hydrates the cart from repo. Undecodable stored data yields an
// empty cart and a warning; a failing repository is an error.
func NewService(ctx context.Context, repo domcart.Repository, log *logger.Logger, observer Observer) (*Service, error) {
	if log == nil {
		log = logger.Nop()
	}
	s := &Service{repo: repo, log: log, observer: observer}

	lines, err := repo.Load(ctx)
	switch {
	case errors.Is(err, domcart.ErrCorruptState):
		log.Warn(log.WithField(ctx, "error", err.Error()), "discarding stored cart")
	case err != nil:
		return nil, fmt.Errorf("load cart: %w", err)
	default:
		s.cart = domcart.Normalize(lines)
	}
	return s, nil
}

// Add puts quantity more of p in the cart.
func (s *Service) Add(ctx context.Context, p domproduct.Product, quantity int) error {
	if quantity < 1 {
		s.observe("add", domcart.ErrInvalidQuantity)
		return domcart.ErrInvalidQuantity
	}
	if p.ID == "" {
		s.observe("add", domproduct.ErrProductNotFound)
		return domproduct.ErrProductNotFound
	}
	return s.mutate(ctx, "add", func(c domcart.Cart) domcart.Cart {
		return c.Add(p, quantity)
	})
}

func (s *Service) AddOne(ctx context.Context, p domproduct.Product) error {
	return s.Add(ctx, p, 1)
}

func (s *Service) Remove(ctx context.Context, productID string) error {
	return s.mutate(ctx, "remove", func(c domcart.Cart) domcart.Cart {
		return c.Remove(productID)
	})
}

// SetQuantity replaces a line's quantity; zero or less removes the line.
func (s *Service) SetQuantity(ctx context.Context, productID string, quantity int) error {
	return s.mutate(ctx, "set_quantity", func(c domcart.Cart) domcart.Cart {
		return c.SetQuantity(productID, quantity)
	})
}

func (s *Service) Clear(ctx context.Context) error {
	return s.mutate(ctx, "clear", func(c domcart.Cart) domcart.Cart {
		return c.Clear()
	})
}

func (s *Service) Lines() []domcart.Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Lines()
}

// Snapshot is the current cart. Carts are immutable so callers may keep it.
func (s *Service) Snapshot() domcart.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart
}

func (s *Service) TotalItems() int {
	return s.Snapshot().TotalItems()
}

func (s *Service) TotalPrice() decimal.Decimal {
	return s.Snapshot().TotalPrice()
}

func (s *Service) IsEmpty() bool {
	return s.Snapshot().IsEmpty()
}

func (s *Service) mutate(ctx context.Context, op string, apply func(domcart.Cart) domcart.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := apply(s.cart)
	if err := s.repo.Save(ctx, next.Lines()); err != nil {
		err = fmt.Errorf("%w: %s: %w", domcart.ErrPersist, op, err)
		s.log.Error(s.log.WithField(ctx, "operation", op), "cart not saved", err)
		s.observe(op, err)
		return err
	}
	s.cart = next
	s.observe(op, nil)
	return nil
}

func (s *Service) observe(op string, err error) {
	if s.observer != nil {
		s.observer.ObserveMutation(op, err)
	}
}
