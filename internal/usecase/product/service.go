package product

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	dom "example.com/storefront/internal/domain/product"
	"example.com/storefront/pkg/logger"
)

// AdminGuard runs fn with an admin bearer token or refuses without calling it.
type AdminGuard interface {
	AsAdmin(fn func(token string) error) error
}

// Service reads the catalog through to the API and keeps the last listing
// for lookups by id.
type Service struct {
	catalog  dom.Catalog
	guard    AdminGuard
	validate *validator.Validate
	log      *logger.Logger

	mu       sync.RWMutex
	snapshot []*dom.Product
}

func NewService(catalog dom.Catalog, guard AdminGuard, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		catalog:  catalog,
		guard:    guard,
		validate: validator.New(),
		log:      log,
	}
}

func (s *Service) List(ctx context.Context) ([]*dom.Product, error) {
	products, err := s.catalog.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.snapshot = products
	s.mu.Unlock()
	return clone(products), nil
}

// Featured lists the products flagged for the storefront front page.
func (s *Service) Featured(ctx context.Context) ([]*dom.Product, error) {
	return s.filter(ctx, func(p *dom.Product) bool { return p.Featured })
}

func (s *Service) ByCategory(ctx context.Context, categoryID string) ([]*dom.Product, error) {
	return s.filter(ctx, func(p *dom.Product) bool { return p.CategoryID == categoryID })
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (*dom.Product, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, dom.ErrProductNotFound
	}
	return s.catalog.GetProduct(ctx, slug)
}

// ByID looks the product up in the last listing, fetching a fresh one when
// the id is not there.
func (s *Service) ByID(ctx context.Context, id string) (*dom.Product, error) {
	if p := s.cached(id); p != nil {
		return p, nil
	}
	if _, err := s.List(ctx); err != nil {
		return nil, err
	}
	if p := s.cached(id); p != nil {
		return p, nil
	}
	return nil, dom.ErrProductNotFound
}

func (s *Service) PhotoURL(id string) string {
	return s.catalog.PhotoURL(id)
}

func (s *Service) Create(ctx context.Context, in dom.Input) (*dom.Product, error) {
	var created *dom.Product
	err := s.guard.AsAdmin(func(token string) error {
		if err := s.check(in); err != nil {
			return err
		}
		p, err := s.catalog.CreateProduct(ctx, token, in)
		if err != nil {
			return err
		}
		created = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.refresh(ctx, "create")
	return created, nil
}

func (s *Service) Update(ctx context.Context, id string, in dom.Input) (*dom.Product, error) {
	var updated *dom.Product
	err := s.guard.AsAdmin(func(token string) error {
		if strings.TrimSpace(id) == "" {
			return dom.ErrProductNotFound
		}
		if err := s.check(in); err != nil {
			return err
		}
		p, err := s.catalog.UpdateProduct(ctx, token, id, in)
		if err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.refresh(ctx, "update")
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.guard.AsAdmin(func(token string) error {
		if strings.TrimSpace(id) == "" {
			return dom.ErrProductNotFound
		}
		return s.catalog.DeleteProduct(ctx, token, id)
	})
	if err != nil {
		return err
	}
	s.refresh(ctx, "delete")
	return nil
}

func (s *Service) check(in dom.Input) error {
	if !in.Price.IsPositive() {
		return dom.ErrInvalidPrice
	}
	if err := s.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: %s", dom.ErrInvalidInput, strings.ToLower(verrs[0].Field()))
		}
		return fmt.Errorf("%w: %v", dom.ErrInvalidInput, err)
	}
	return nil
}

// refresh reloads the listing after a mutation. The mutation already
// succeeded, so a failed reload is only logged.
func (s *Service) refresh(ctx context.Context, op string) {
	if _, err := s.List(ctx); err != nil {
		s.log.Warn(s.log.WithFields(ctx, map[string]any{"operation": op, "error": err.Error()}), "product list refresh failed")
	}
}

func (s *Service) filter(ctx context.Context, keep func(*dom.Product) bool) ([]*dom.Product, error) {
	products, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*dom.Product, 0, len(products))
	for _, p := range products {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Service) cached(id string) *dom.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.snapshot {
		if p.ID == id {
			cp := *p
			return &cp
		}
	}
	return nil
}

func clone(products []*dom.Product) []*dom.Product {
	out := make([]*dom.Product, 0, len(products))
	for _, p := range products {
		cp := *p
		out = append(out, &cp)
	}
	return out
}
