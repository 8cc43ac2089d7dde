package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

// PaymentStatus is what the storefront API records for the order payment.
type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "Paid"
	PaymentPending PaymentStatus = "Pending"
)

type PaymentMethod string

const (
	PaymentCOD     PaymentMethod = "COD"
	PaymentGateway PaymentMethod = "GATEWAY"
)

func (p PaymentMethod) IsValid() bool {
	switch p {
	case PaymentCOD, PaymentGateway:
		return true
	default:
		return false
	}
}

type Order struct {
	ID              string
	UserID          string
	Status          Status
	PaymentStatus   PaymentStatus
	PaymentMethod   PaymentMethod
	TotalAmount     decimal.Decimal
	ShippingAddress string
	Items           []OrderItem
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type OrderItem struct {
	ID        string
	OrderID   string
	ProductID string
	Name      string
	Price     decimal.Decimal
	Quantity  int
}

// Draft is the order as submitted to the API.
type Draft struct {
	TotalAmount     decimal.Decimal
	ShippingAddress string
	PaymentStatus   PaymentStatus
	Items           []DraftItem
}

type DraftItem struct {
	ProductID string
	Name      string
	Quantity  int
	Price     decimal.Decimal
}

// GatewayOrder is the payment-gateway order created before the shopper pays.
// Amount is in minor currency units.
type GatewayOrder struct {
	ID       string
	Amount   int64
	Currency string
}

// PaymentConfirmation is what the gateway widget hands back after payment.
type PaymentConfirmation struct {
	GatewayOrderID string `validate:"required"`
	PaymentID      string `validate:"required"`
	Signature      string `validate:"required"`
}
