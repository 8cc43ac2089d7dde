package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type addCartItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  *int   `json:"quantity"`
}

type setCartQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

func (a *API) handleGetCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, mapCart(a.cartSvc.Snapshot()))
}

// handleAddCartItem adds one unit unless a quantity is given.
func (a *API) handleAddCartItem(w http.ResponseWriter, r *http.Request) {
	var req addCartItemRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	p, err := a.productSvc.ByID(r.Context(), req.ProductID)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	if err := a.cartSvc.Add(r.Context(), *p, quantity); err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapCart(a.cartSvc.Snapshot()))
}

func (a *API) handleSetCartQuantity(w http.ResponseWriter, r *http.Request) {
	var req setCartQuantityRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	if err := a.cartSvc.SetQuantity(r.Context(), chi.URLParam(r, "productID"), *req.Quantity); err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCart(a.cartSvc.Snapshot()))
}

func (a *API) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	if err := a.cartSvc.Remove(r.Context(), chi.URLParam(r, "productID")); err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCart(a.cartSvc.Snapshot()))
}

func (a *API) handleClearCart(w http.ResponseWriter, r *http.Request) {
	if err := a.cartSvc.Clear(r.Context()); err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCart(a.cartSvc.Snapshot()))
}
