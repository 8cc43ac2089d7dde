package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	domproduct "example.com/storefront/internal/domain/product"
)

type productsResponse struct {
	envelope
	Products []remoteProduct `json:"products"`
}

type productResponse struct {
	envelope
	Product *remoteProduct `json:"product"`
}

func (c *Client) ListProducts(ctx context.Context) ([]*domproduct.Product, error) {
	var resp productsResponse
	err := c.do(ctx, call{
		op:       "list_products",
		method:   http.MethodGet,
		path:     "/api/v1/product/get-product",
		fallback: "Failed to fetch products",
	}, &resp)
	if err != nil {
		return nil, err
	}

	products := make([]*domproduct.Product, 0, len(resp.Products))
	for _, rp := range resp.Products {
		p, err := rp.toDomain(c.PhotoURL)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecode, err)
		}
		products = append(products, p)
	}
	return products, nil
}

func (c *Client) GetProduct(ctx context.Context, slug string) (*domproduct.Product, error) {
	var resp productResponse
	err := c.do(ctx, call{
		op:       "get_product",
		method:   http.MethodGet,
		path:     "/api/v1/product/get-product/" + url.PathEscape(slug),
		fallback: "Failed to fetch product",
	}, &resp)
	if err != nil {
		return nil, err
	}
	return c.singleProduct(resp)
}

func (c *Client) CreateProduct(ctx context.Context, token string, in domproduct.Input) (*domproduct.Product, error) {
	var resp productResponse
	err := c.do(ctx, call{
		op:       "create_product",
		method:   http.MethodPost,
		path:     "/api/v1/product/create-product",
		token:    token,
		form:     productForm(in),
		fallback: "Failed to create product",
	}, &resp)
	if err != nil {
		return nil, err
	}
	return c.singleProduct(resp)
}

func (c *Client) UpdateProduct(ctx context.Context, token string, id string, in domproduct.Input) (*domproduct.Product, error) {
	var resp productResponse
	err := c.do(ctx, call{
		op:       "update_product",
		method:   http.MethodPut,
		path:     "/api/v1/product/update-product/" + url.PathEscape(id),
		token:    token,
		form:     productForm(in),
		fallback: "Failed to update product",
	}, &resp)
	if err != nil {
		return nil, err
	}
	return c.singleProduct(resp)
}

func (c *Client) DeleteProduct(ctx context.Context, token string, id string) error {
	var resp envelope
	return c.do(ctx, call{
		op:       "delete_product",
		method:   http.MethodDelete,
		path:     "/api/v1/product/delete-product/" + url.PathEscape(id),
		token:    token,
		fallback: "Failed to delete product",
	}, &resp)
}

// PhotoURL is where the API serves the product photo. No request is made.
func (c *Client) PhotoURL(id string) string {
	return c.baseURL + "/api/v1/product/product-photo/" + url.PathEscape(id)
}

func (c *Client) singleProduct(resp productResponse) (*domproduct.Product, error) {
	if resp.Product == nil {
		return nil, domproduct.ErrProductNotFound
	}
	p, err := resp.Product.toDomain(c.PhotoURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return p, nil
}

func productForm(in domproduct.Input) *form {
	f := &form{}
	f.add("name", in.Name)
	f.add("description", in.Description)
	f.add("price", in.Price.String())
	f.add("stock", strconv.Itoa(in.Stock))
	f.add("category", in.CategoryID)
	f.add("featured", strconv.FormatBool(in.Featured))
	if in.Photo != nil {
		f.file = &formFile{field: "photo", filename: in.Photo.Filename, content: in.Photo.Content}
	}
	return f
}
