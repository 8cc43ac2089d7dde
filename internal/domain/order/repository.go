package order

import "context"

// Gateway is the remote order and payment API.
type Gateway interface {
	CreateOrder(ctx context.Context, token string, draft Draft) (*Order, error)
	CreateGatewayOrder(ctx context.Context, amount int64) (*GatewayOrder, error)
	VerifyPayment(ctx context.Context, confirmation PaymentConfirmation) (bool, error)
}
