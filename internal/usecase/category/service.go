package category

import (
	"context"
	"strings"

	dom "example.com/storefront/internal/domain/category"
)

// AdminGuard runs fn with an admin bearer token or refuses without calling it.
type AdminGuard interface {
	AsAdmin(fn func(token string) error) error
}

type Service struct {
	catalog dom.Catalog
	guard   AdminGuard
}

func NewService(catalog dom.Catalog, guard AdminGuard) *Service {
	return &Service{catalog: catalog, guard: guard}
}

func (s *Service) List(ctx context.Context) ([]*dom.Category, error) {
	return s.catalog.ListCategories(ctx)
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (*dom.Category, error) {
	categories, err := s.catalog.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range categories {
		if c.Slug == slug {
			return c, nil
		}
	}
	return nil, dom.ErrCategoryNotFound
}

func (s *Service) Create(ctx context.Context, in dom.Input) (*dom.Category, error) {
	var created *dom.Category
	err := s.guard.AsAdmin(func(token string) error {
		in.Name = strings.TrimSpace(in.Name)
		in.Description = strings.TrimSpace(in.Description)
		if in.Name == "" {
			return dom.ErrCategoryInvalidName
		}
		c, err := s.catalog.CreateCategory(ctx, token, in)
		created = c
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update sends only the fields set in patch. A name, when given, must not be
// blank.
func (s *Service) Update(ctx context.Context, id string, patch dom.Patch) (*dom.Category, error) {
	var updated *dom.Category
	err := s.guard.AsAdmin(func(token string) error {
		if strings.TrimSpace(id) == "" {
			return dom.ErrCategoryNotFound
		}
		if patch.Name == nil && patch.Description == nil {
			return dom.ErrEmptyPatch
		}
		if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
			return dom.ErrCategoryInvalidName
		}
		c, err := s.catalog.UpdateCategory(ctx, token, id, patch)
		updated = c
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.guard.AsAdmin(func(token string) error {
		if strings.TrimSpace(id) == "" {
			return dom.ErrCategoryNotFound
		}
		return s.catalog.DeleteCategory(ctx, token, id)
	})
}
