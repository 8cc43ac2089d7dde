package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	domorder "example.com/storefront/internal/domain/order"
	checkoutuc "example.com/storefront/internal/usecase/checkout"
)

type placeOrderRequest struct {
	Shipping checkoutuc.ShippingInfo `json:"shipping"`
}

type verifyPaymentRequest struct {
	Shipping          checkoutuc.ShippingInfo `json:"shipping"`
	RazorpayOrderID   string                  `json:"razorpay_order_id"`
	RazorpayPaymentID string                  `json:"razorpay_payment_id"`
	RazorpaySignature string                  `json:"razorpay_signature"`
}

func (a *API) handleCheckoutSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.checkoutSvc.Summary())
}

func (a *API) handlePlaceCOD(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	o, err := a.checkoutSvc.PlaceCOD(r.Context(), req.Shipping)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapOrder(o))
}

func (a *API) handleStartPayment(w http.ResponseWriter, r *http.Request) {
	gw, err := a.checkoutSvc.StartPayment(r.Context())
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":       gw.ID,
		"amount":   gw.Amount,
		"currency": gw.Currency,
	})
}

func (a *API) handleCompletePayment(w http.ResponseWriter, r *http.Request) {
	var req verifyPaymentRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	o, err := a.checkoutSvc.CompletePayment(r.Context(), req.Shipping, domorder.PaymentConfirmation{
		GatewayOrderID: req.RazorpayOrderID,
		PaymentID:      req.RazorpayPaymentID,
		Signature:      req.RazorpaySignature,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapOrder(o))
}

func (a *API) handleListOrders(w http.ResponseWriter, r *http.Request) {
	sess := getSession(r.Context())
	if sess == nil {
		respondError(w, http.StatusUnauthorized, errUnauthenticated)
		return
	}

	orders := a.orderSvc.List(sess.User.ID)
	resp := make([]map[string]any, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, mapOrder(o))
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": resp})
}

func (a *API) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	sess := getSession(r.Context())
	if sess == nil {
		respondError(w, http.StatusUnauthorized, errUnauthenticated)
		return
	}

	o, err := a.orderSvc.Get(sess.User.ID, chi.URLParam(r, "id"))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrder(o))
}
