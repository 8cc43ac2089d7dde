package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	domcart "example.com/storefront/internal/domain/cart"
	domorder "example.com/storefront/internal/domain/order"
	domuser "example.com/storefront/internal/domain/user"
	"example.com/storefront/pkg/logger"
)

var (
	freeShippingOver = decimal.NewFromInt(50)
	flatShipping     = decimal.RequireFromString("9.99")
	taxRate          = decimal.RequireFromString("0.08")
)

type Cart interface {
	Snapshot() domcart.Cart
	Clear(ctx context.Context) error
}

type Sessions interface {
	RequireSession() (domuser.Session, error)
}

type History interface {
	Record(o *domorder.Order)
}

// ShippingInfo is the delivery form filled in at checkout.
type ShippingInfo struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Address   string `json:"address" validate:"required"`
	City      string `json:"city" validate:"required"`
	State     string `json:"state" validate:"required"`
	ZipCode   string `json:"zipCode" validate:"required"`
}

// FullAddress is the single-line address the API stores with the order.
func (s ShippingInfo) FullAddress() string {
	return fmt.Sprintf("%s, %s, %s %s", s.Address, s.City, s.State, s.ZipCode)
}

type Summary struct {
	Items    int             `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// MinorUnits is the total in the smallest currency unit, as the payment
// gateway expects it.
func (s Summary) MinorUnits() int64 {
	return s.Total.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// Summarize prices a cart: free shipping above 50, otherwise a flat 9.99,
// plus 8% tax on the subtotal.
func Summarize(c domcart.Cart) Summary {
	subtotal := c.TotalPrice()
	shipping := flatShipping
	if subtotal.GreaterThan(freeShippingOver) {
		shipping = decimal.Zero
	}
	tax := subtotal.Mul(taxRate)
	return Summary{
		Items:    c.TotalItems(),
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax.Round(2),
		Total:    subtotal.Add(shipping).Add(tax).Round(2),
	}
}

type Service struct {
	cart     Cart
	sessions Sessions
	gateway  domorder.Gateway
	history  History
	validate *validator.Validate
	log      *logger.Logger

	mu      sync.Mutex
	charged map[string]int64 // gateway order id -> minor units
}

func NewService(cart Cart, sessions Sessions, gateway domorder.Gateway, history History, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		cart:     cart,
		sessions: sessions,
		gateway:  gateway,
		history:  history,
		validate: validator.New(),
		log:      log,
		charged:  make(map[string]int64),
	}
}

func (s *Service) Summary() Summary {
	return Summarize(s.cart.Snapshot())
}

// PlaceCOD submits a cash-on-delivery order for the current cart. The cart
// is cleared only once the API has accepted the order.
func (s *Service) PlaceCOD(ctx context.Context, info ShippingInfo) (*domorder.Order, error) {
	sess, c, err := s.prepare(info)
	if err != nil {
		return nil, err
	}
	return s.submit(ctx, sess, c, info, domorder.PaymentPending, domorder.PaymentCOD)
}

// StartPayment opens a gateway order for the current cart total.
func (s *Service) StartPayment(ctx context.Context) (*domorder.GatewayOrder, error) {
	if _, err := s.sessions.RequireSession(); err != nil {
		return nil, err
	}
	c := s.cart.Snapshot()
	if c.IsEmpty() {
		return nil, domorder.ErrEmptyOrderItems
	}
	amount := Summarize(c).MinorUnits()
	gw, err := s.gateway.CreateGatewayOrder(ctx, amount)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.charged[gw.ID] = amount
	s.mu.Unlock()
	return gw, nil
}

// CompletePayment verifies the gateway confirmation and then saves the paid
// order. The gateway order must come from StartPayment and the cart must
// still total the amount charged there. Nothing is saved and the cart is kept
// when any check fails.
func (s *Service) CompletePayment(ctx context.Context, info ShippingInfo, confirmation domorder.PaymentConfirmation) (*domorder.Order, error) {
	sess, c, err := s.prepare(info)
	if err != nil {
		return nil, err
	}
	if err := s.validate.Struct(confirmation); err != nil {
		return nil, fmt.Errorf("%w: incomplete payment confirmation", domorder.ErrCheckoutValidation)
	}
	s.mu.Lock()
	charged, started := s.charged[confirmation.GatewayOrderID]
	s.mu.Unlock()
	if !started {
		return nil, fmt.Errorf("%w: unknown payment order", domorder.ErrCheckoutValidation)
	}
	if due := Summarize(c).MinorUnits(); due != charged {
		s.log.Warn(s.log.WithFields(ctx, map[string]any{
			"gateway_order_id": confirmation.GatewayOrderID,
			"charged":          charged,
			"due":              due,
		}), "cart changed after payment started")
		return nil, fmt.Errorf("%w: cart changed after payment started", domorder.ErrCheckoutValidation)
	}

	ok, err := s.gateway.VerifyPayment(ctx, confirmation)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.log.Warn(s.log.WithField(ctx, "gateway_order_id", confirmation.GatewayOrderID), "payment not verified")
		return nil, domorder.ErrPaymentNotVerified
	}
	o, err := s.submit(ctx, sess, c, info, domorder.PaymentPaid, domorder.PaymentGateway)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	delete(s.charged, confirmation.GatewayOrderID)
	s.mu.Unlock()
	return o, nil
}

func (s *Service) prepare(info ShippingInfo) (domuser.Session, domcart.Cart, error) {
	sess, err := s.sessions.RequireSession()
	if err != nil {
		return domuser.Session{}, domcart.Cart{}, err
	}
	c := s.cart.Snapshot()
	if c.IsEmpty() {
		return domuser.Session{}, domcart.Cart{}, domorder.ErrEmptyOrderItems
	}
	if err := s.validate.Struct(info); err != nil {
		return domuser.Session{}, domcart.Cart{}, fmt.Errorf("%w: %s", domorder.ErrCheckoutValidation, describe(err))
	}
	return sess, c, nil
}

func (s *Service) submit(
	ctx context.Context,
	sess domuser.Session,
	c domcart.Cart,
	info ShippingInfo,
	status domorder.PaymentStatus,
	method domorder.PaymentMethod,
) (*domorder.Order, error) {
	summary := Summarize(c)
	draft := domorder.Draft{
		TotalAmount:     summary.Total,
		ShippingAddress: info.FullAddress(),
		PaymentStatus:   status,
	}
	for _, l := range c.Lines() {
		draft.Items = append(draft.Items, domorder.DraftItem{
			ProductID: l.Product.ID,
			Name:      l.Product.Name,
			Quantity:  l.Quantity,
			Price:     l.Product.Price,
		})
	}

	o, err := s.gateway.CreateOrder(ctx, sess.Token, draft)
	if err != nil {
		return nil, err
	}
	o.UserID = sess.User.ID
	o.PaymentMethod = method
	s.history.Record(o)

	logCtx := s.log.WithFields(ctx, map[string]any{"order_id": o.ID, "payment_method": string(method)})
	if err := s.cart.Clear(ctx); err != nil {
		s.log.Error(logCtx, "order placed but cart not cleared", err)
	}
	s.log.Info(logCtx, "order placed")
	return o, nil
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, strings.ToLower(fe.Field()))
	}
	return "invalid " + strings.Join(fields, ", ")
}
