package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domorder "example.com/storefront/internal/domain/order"
)

type orderItemRequest struct {
	ProductID string      `json:"product_id"`
	Quantity  int         `json:"quantity"`
	Price     json.Number `json:"price"`
}

type orderRequest struct {
	TotalAmount     json.Number        `json:"total_amount"`
	ShippingAddress string             `json:"shipping_address"`
	Items           []orderItemRequest `json:"items"`
	PaymentStatus   string             `json:"payment_status"`
}

type remoteOrder struct {
	MongoID   string    `json:"_id"`
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

type orderResponse struct {
	envelope
	Order *remoteOrder `json:"order"`
}

type gatewayOrderRequest struct {
	Amount int64 `json:"amount"`
}

type gatewayOrderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type verifyPaymentRequest struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

type verifyPaymentResponse struct {
	Success bool `json:"success"`
}

// CreateOrder submits the draft. The API does not always echo an order id;
// a local one is generated in that case so the order can still be tracked.
func (c *Client) CreateOrder(ctx context.Context, token string, draft domorder.Draft) (*domorder.Order, error) {
	req := orderRequest{
		TotalAmount:     number(draft.TotalAmount),
		ShippingAddress: draft.ShippingAddress,
		PaymentStatus:   string(draft.PaymentStatus),
		Items:           make([]orderItemRequest, 0, len(draft.Items)),
	}
	for _, it := range draft.Items {
		req.Items = append(req.Items, orderItemRequest{ProductID: it.ProductID, Quantity: it.Quantity, Price: number(it.Price)})
	}

	var resp orderResponse
	err := c.do(ctx, call{
		op:       "create_order",
		method:   http.MethodPost,
		path:     "/api/v1/order/create-order",
		token:    token,
		body:     req,
		fallback: "Failed to place order",
	}, &resp)
	if err != nil {
		return nil, err
	}

	o := &domorder.Order{
		Status:          domorder.StatusPending,
		PaymentStatus:   draft.PaymentStatus,
		TotalAmount:     draft.TotalAmount,
		ShippingAddress: draft.ShippingAddress,
		CreatedAt:       time.Now().UTC(),
	}
	if ro := resp.Order; ro != nil {
		o.ID = firstNonEmpty(ro.MongoID, ro.ID)
		if s := domorder.Status(ro.Status); s.IsValid() {
			o.Status = s
		}
		if !ro.CreatedAt.IsZero() {
			o.CreatedAt = ro.CreatedAt
		}
	}
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	o.UpdatedAt = o.CreatedAt
	for _, it := range draft.Items {
		o.Items = append(o.Items, domorder.OrderItem{
			ID:        uuid.NewString(),
			OrderID:   o.ID,
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
		})
	}
	return o, nil
}

// CreateGatewayOrder opens a payment order for amount minor units.
func (c *Client) CreateGatewayOrder(ctx context.Context, amount int64) (*domorder.GatewayOrder, error) {
	var resp gatewayOrderResponse
	err := c.do(ctx, call{
		op:       "create_gateway_order",
		method:   http.MethodPost,
		path:     "/api/v1/order/razorpay/orders",
		body:     gatewayOrderRequest{Amount: amount},
		fallback: "Failed to start payment",
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.ID == "" {
		return nil, &Error{Op: "create_gateway_order", Status: http.StatusOK, Message: "Failed to start payment"}
	}
	return &domorder.GatewayOrder{ID: resp.ID, Amount: resp.Amount, Currency: resp.Currency}, nil
}

func (c *Client) VerifyPayment(ctx context.Context, confirmation domorder.PaymentConfirmation) (bool, error) {
	var resp verifyPaymentResponse
	err := c.do(ctx, call{
		op:     "verify_payment",
		method: http.MethodPost,
		path:   "/api/v1/order/razorpay/verify",
		body: verifyPaymentRequest{
			OrderID:   confirmation.GatewayOrderID,
			PaymentID: confirmation.PaymentID,
			Signature: confirmation.Signature,
		},
		fallback: "Payment verification failed",
	}, &resp)
	if err != nil {
		return false, err
	}
	return resp.Success, nil
}

// number renders an amount as a bare JSON number.
func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}
