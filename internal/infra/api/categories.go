package api

import (
	"context"
	"net/http"
	"net/url"

	domcategory "example.com/storefront/internal/domain/category"
)

type categoriesResponse struct {
	envelope
	Category []remoteCategory `json:"category"`
}

type categoryResponse struct {
	envelope
	Category *remoteCategory `json:"category"`
}

func (c *Client) ListCategories(ctx context.Context) ([]*domcategory.Category, error) {
	var resp categoriesResponse
	err := c.do(ctx, call{
		op:       "list_categories",
		method:   http.MethodGet,
		path:     "/api/v1/category/get-category",
		fallback: "Failed to fetch categories",
	}, &resp)
	if err != nil {
		return nil, err
	}
	out := make([]*domcategory.Category, 0, len(resp.Category))
	for _, rc := range resp.Category {
		out = append(out, rc.toDomain())
	}
	return out, nil
}

func (c *Client) CreateCategory(ctx context.Context, token string, in domcategory.Input) (*domcategory.Category, error) {
	f := &form{}
	f.add("name", in.Name)
	if in.Description != "" {
		f.add("description", in.Description)
	}

	var resp categoryResponse
	err := c.do(ctx, call{
		op:       "create_category",
		method:   http.MethodPost,
		path:     "/api/v1/category/create-category",
		token:    token,
		form:     f,
		fallback: "Failed to create category",
	}, &resp)
	if err != nil {
		return nil, err
	}
	return singleCategory(resp)
}

// UpdateCategory sends only the fields set in patch.
func (c *Client) UpdateCategory(ctx context.Context, token string, id string, patch domcategory.Patch) (*domcategory.Category, error) {
	f := &form{}
	if patch.Name != nil && *patch.Name != "" {
		f.add("name", *patch.Name)
	}
	if patch.Description != nil && *patch.Description != "" {
		f.add("description", *patch.Description)
	}

	var resp categoryResponse
	err := c.do(ctx, call{
		op:       "update_category",
		method:   http.MethodPut,
		path:     "/api/v1/category/update-category/" + url.PathEscape(id),
		token:    token,
		form:     f,
		fallback: "Failed to update category",
	}, &resp)
	if err != nil {
		return nil, err
	}
	return singleCategory(resp)
}

func (c *Client) DeleteCategory(ctx context.Context, token string, id string) error {
	var resp envelope
	return c.do(ctx, call{
		op:       "delete_category",
		method:   http.MethodDelete,
		path:     "/api/v1/category/delete-category/" + url.PathEscape(id),
		token:    token,
		fallback: "Failed to delete category",
	}, &resp)
}

func singleCategory(resp categoryResponse) (*domcategory.Category, error) {
	if resp.Category == nil {
		return nil, domcategory.ErrCategoryNotFound
	}
	return resp.Category.toDomain(), nil
}
