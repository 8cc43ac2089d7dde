package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	domcategory "example.com/storefront/internal/domain/category"
	domproduct "example.com/storefront/internal/domain/product"
)

const maxUploadBytes = 8 << 20

type categoryRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

type categoryPatchRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (a *API) handleListProducts(w http.ResponseWriter, r *http.Request) {
	var (
		products []*domproduct.Product
		err      error
	)
	q := r.URL.Query()
	switch {
	case q.Get("category") != "":
		c, cerr := a.categorySvc.GetBySlug(r.Context(), q.Get("category"))
		if cerr != nil {
			handleDomainError(w, cerr)
			return
		}
		products, err = a.productSvc.ByCategory(r.Context(), c.ID)
	case q.Get("category_id") != "":
		products, err = a.productSvc.ByCategory(r.Context(), q.Get("category_id"))
	case q.Get("featured") == "true" || q.Get("featured") == "1":
		products, err = a.productSvc.Featured(r.Context())
	default:
		products, err = a.productSvc.List(r.Context())
	}
	if err != nil {
		handleDomainError(w, err)
		return
	}

	resp := make([]map[string]any, 0, len(products))
	for _, p := range products {
		resp = append(resp, mapProduct(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": resp})
}

func (a *API) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := a.productSvc.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapProduct(p))
}

func (a *API) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	in, cleanup, err := parseProductForm(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	defer cleanup()

	p, err := a.productSvc.Create(r.Context(), in)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapProduct(p))
}

func (a *API) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	in, cleanup, err := parseProductForm(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	defer cleanup()

	p, err := a.productSvc.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapProduct(p))
}

func (a *API) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := a.productSvc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := a.categorySvc.List(r.Context())
	if err != nil {
		handleDomainError(w, err)
		return
	}

	resp := make([]map[string]any, 0, len(categories))
	for _, c := range categories {
		resp = append(resp, mapCategory(c))
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": resp})
}

func (a *API) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	c, err := a.categorySvc.Create(r.Context(), domcategory.Input{Name: req.Name, Description: req.Description})
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapCategory(c))
}

func (a *API) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryPatchRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	c, err := a.categorySvc.Update(r.Context(), chi.URLParam(r, "id"), domcategory.Patch{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCategory(c))
}

func (a *API) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := a.categorySvc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// parseProductForm reads the admin product form. The photo, when present,
// stays open until cleanup is called.
func parseProductForm(r *http.Request) (domproduct.Input, func(), error) {
	noop := func() {}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return domproduct.Input{}, noop, fmt.Errorf("invalid product form: %w", err)
	}

	in := domproduct.Input{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Description: strings.TrimSpace(r.FormValue("description")),
		CategoryID:  strings.TrimSpace(r.FormValue("category")),
	}
	price, err := decimal.NewFromString(strings.TrimSpace(r.FormValue("price")))
	if err != nil {
		return domproduct.Input{}, noop, errors.New("price must be a number")
	}
	in.Price = price
	if v := strings.TrimSpace(r.FormValue("stock")); v != "" {
		stock, err := strconv.Atoi(v)
		if err != nil {
			return domproduct.Input{}, noop, errors.New("stock must be an integer")
		}
		in.Stock = stock
	}
	if v := r.FormValue("featured"); v != "" {
		featured, err := strconv.ParseBool(v)
		if err != nil {
			return domproduct.Input{}, noop, errors.New("featured must be true or false")
		}
		in.Featured = featured
	}

	file, header, err := r.FormFile("photo")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return in, noop, nil
	case err != nil:
		return domproduct.Input{}, noop, fmt.Errorf("invalid photo: %w", err)
	}
	in.Photo = &domproduct.Photo{Filename: header.Filename, Content: file}
	return in, func() { _ = file.Close() }, nil
}
