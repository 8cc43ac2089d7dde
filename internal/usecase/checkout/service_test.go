package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	domcart "example.com/storefront/internal/domain/cart"
	domorder "example.com/storefront/internal/domain/order"
	domproduct "example.com/storefront/internal/domain/product"
	domuser "example.com/storefront/internal/domain/user"
)

type mockCart struct {
	cart     domcart.Cart
	clearErr error
	cleared  int
}

func (m *mockCart) Snapshot() domcart.Cart { return m.cart }

func (m *mockCart) Clear(ctx context.Context) error {
	if m.clearErr != nil {
		return m.clearErr
	}
	m.cleared++
	m.cart = m.cart.Clear()
	return nil
}

type mockSessions struct {
	session *domuser.Session
}

func (m mockSessions) RequireSession() (domuser.Session, error) {
	if m.session == nil {
		return domuser.Session{}, domuser.ErrAuthRequired
	}
	return *m.session, nil
}

type mockGateway struct {
	drafts       []domorder.Draft
	tokens       []string
	amounts      []int64
	verified     bool
	verifyErr    error
	createErr    error
	verifyCalls  int
}

func (m *mockGateway) CreateOrder(ctx context.Context, token string, draft domorder.Draft) (*domorder.Order, error) {
	m.tokens = append(m.tokens, token)
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.drafts = append(m.drafts, draft)
	return &domorder.Order{
		ID:              "o1",
		Status:          domorder.StatusPending,
		PaymentStatus:   draft.PaymentStatus,
		TotalAmount:     draft.TotalAmount,
		ShippingAddress: draft.ShippingAddress,
		CreatedAt:       time.Now(),
	}, nil
}

func (m *mockGateway) CreateGatewayOrder(ctx context.Context, amount int64) (*domorder.GatewayOrder, error) {
	m.amounts = append(m.amounts, amount)
	return &domorder.GatewayOrder{ID: "gw_1", Amount: amount, Currency: "INR"}, nil
}

func (m *mockGateway) VerifyPayment(ctx context.Context, c domorder.PaymentConfirmation) (bool, error) {
	m.verifyCalls++
	return m.verified, m.verifyErr
}

type mockHistory struct {
	orders []*domorder.Order
}

func (m *mockHistory) Record(o *domorder.Order) { m.orders = append(m.orders, o) }

func cartWith(lines ...domcart.Line) domcart.Cart {
	return domcart.New(lines)
}

func line(id, price string, qty int) domcart.Line {
	return domcart.Line{
		Product:  domproduct.Product{ID: id, Name: "Item " + id, Price: decimal.RequireFromString(price)},
		Quantity: qty,
	}
}

func shipping() ShippingInfo {
	return ShippingInfo{
		Email:     "ada@example.com",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Address:   "1 Analytical Way",
		City:      "London",
		State:     "LDN",
		ZipCode:   "10001",
	}
}

type fixture struct {
	cart    *mockCart
	gateway *mockGateway
	history *mockHistory
	svc     *Service
}

func newFixture(c domcart.Cart, signedIn bool) *fixture {
	f := &fixture{cart: &mockCart{cart: c}, gateway: &mockGateway{}, history: &mockHistory{}}
	sessions := mockSessions{}
	if signedIn {
		sessions.session = &domuser.Session{User: domuser.User{ID: "u1"}, Token: "tok"}
	}
	f.svc = NewService(f.cart, sessions, f.gateway, f.history, nil)
	return f
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name     string
		cart     domcart.Cart
		shipping string
		tax      string
		total    string
		minor    int64
	}{
		{name: "below free shipping", cart: cartWith(line("a", "20.00", 2)), shipping: "9.99", tax: "3.2", total: "53.19", minor: 5319},
		{name: "exactly fifty pays shipping", cart: cartWith(line("a", "50.00", 1)), shipping: "9.99", tax: "4", total: "63.99", minor: 6399},
		{name: "above fifty ships free", cart: cartWith(line("a", "25.50", 2)), shipping: "0", tax: "4.08", total: "55.08", minor: 5508},
		{name: "rounds tax", cart: cartWith(line("a", "9.99", 3)), shipping: "9.99", tax: "2.4", total: "42.36", minor: 4236},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Summarize(tt.cart)
			require.True(t, decimal.RequireFromString(tt.shipping).Equal(s.Shipping), "shipping %s", s.Shipping)
			require.True(t, decimal.RequireFromString(tt.tax).Equal(s.Tax), "tax %s", s.Tax)
			require.True(t, decimal.RequireFromString(tt.total).Equal(s.Total), "total %s", s.Total)
			require.Equal(t, tt.minor, s.MinorUnits())
		})
	}
}

func TestPlaceCOD(t *testing.T) {
	f := newFixture(cartWith(line("a", "20.00", 2), line("b", "5.00", 1)), true)

	o, err := f.svc.PlaceCOD(context.Background(), shipping())
	require.NoError(t, err)
	require.Equal(t, "u1", o.UserID)
	require.Equal(t, domorder.PaymentCOD, o.PaymentMethod)
	require.Equal(t, []string{"tok"}, f.gateway.tokens)

	draft := f.gateway.drafts[0]
	require.Equal(t, domorder.PaymentPending, draft.PaymentStatus)
	require.Equal(t, "1 Analytical Way, London, LDN 10001", draft.ShippingAddress)
	require.Len(t, draft.Items, 2)
	require.Equal(t, "a", draft.Items[0].ProductID)
	require.Equal(t, 2, draft.Items[0].Quantity)
	require.True(t, decimal.RequireFromString("58.59").Equal(draft.TotalAmount))

	require.Equal(t, 1, f.cart.cleared)
	require.Len(t, f.history.orders, 1)
}

func TestPlaceCOD_Preconditions(t *testing.T) {
	tests := []struct {
		name     string
		cart     domcart.Cart
		signedIn bool
		info     func(*ShippingInfo)
		wantErr  error
	}{
		{name: "anonymous", cart: cartWith(line("a", "1.00", 1)), wantErr: domuser.ErrAuthRequired},
		{name: "empty cart", cart: domcart.Cart{}, signedIn: true, wantErr: domorder.ErrEmptyOrderItems},
		{name: "missing city", cart: cartWith(line("a", "1.00", 1)), signedIn: true, info: func(s *ShippingInfo) { s.City = "" }, wantErr: domorder.ErrCheckoutValidation},
		{name: "bad email", cart: cartWith(line("a", "1.00", 1)), signedIn: true, info: func(s *ShippingInfo) { s.Email = "nope" }, wantErr: domorder.ErrCheckoutValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(tt.cart, tt.signedIn)
			info := shipping()
			if tt.info != nil {
				tt.info(&info)
			}

			_, err := f.svc.PlaceCOD(context.Background(), info)
			require.ErrorIs(t, err, tt.wantErr)
			require.Empty(t, f.gateway.tokens)
			require.Zero(t, f.cart.cleared)
		})
	}
}

func TestPlaceCOD_RemoteFailureKeepsCart(t *testing.T) {
	f := newFixture(cartWith(line("a", "1.00", 1)), true)
	f.gateway.createErr = errors.New("Order failed")

	_, err := f.svc.PlaceCOD(context.Background(), shipping())
	require.Error(t, err)
	require.Zero(t, f.cart.cleared)
	require.False(t, f.cart.cart.IsEmpty())
	require.Empty(t, f.history.orders)
}

func TestPlaceCOD_ClearFailureStillReturnsOrder(t *testing.T) {
	f := newFixture(cartWith(line("a", "1.00", 1)), true)
	f.cart.clearErr = errors.New("disk full")

	o, err := f.svc.PlaceCOD(context.Background(), shipping())
	require.NoError(t, err)
	require.Equal(t, "o1", o.ID)
}

func TestStartPayment(t *testing.T) {
	f := newFixture(cartWith(line("a", "20.00", 2)), true)

	gw, err := f.svc.StartPayment(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(5319), gw.Amount)
	require.Equal(t, []int64{5319}, f.gateway.amounts)
	require.Zero(t, f.cart.cleared)

	empty := newFixture(domcart.Cart{}, true)
	_, err = empty.svc.StartPayment(context.Background())
	require.ErrorIs(t, err, domorder.ErrEmptyOrderItems)

	anon := newFixture(cartWith(line("a", "1.00", 1)), false)
	_, err = anon.svc.StartPayment(context.Background())
	require.ErrorIs(t, err, domuser.ErrAuthRequired)
}

func TestCompletePayment(t *testing.T) {
	confirmation := domorder.PaymentConfirmation{GatewayOrderID: "gw_1", PaymentID: "pay_1", Signature: "sig"}

	t.Run("verified payment saves paid order", func(t *testing.T) {
		f := newFixture(cartWith(line("a", "30.00", 2)), true)
		f.gateway.verified = true
		_, err := f.svc.StartPayment(context.Background())
		require.NoError(t, err)

		o, err := f.svc.CompletePayment(context.Background(), shipping(), confirmation)
		require.NoError(t, err)
		require.Equal(t, domorder.PaymentGateway, o.PaymentMethod)
		require.Equal(t, domorder.PaymentPaid, f.gateway.drafts[0].PaymentStatus)
		require.Equal(t, 1, f.cart.cleared)
		require.Len(t, f.history.orders, 1)

		f.cart.cart = cartWith(line("a", "30.00", 2))
		_, err = f.svc.CompletePayment(context.Background(), shipping(), confirmation)
		require.ErrorIs(t, err, domorder.ErrCheckoutValidation)
		require.Len(t, f.gateway.drafts, 1)
	})

	t.Run("unverified payment keeps cart", func(t *testing.T) {
		f := newFixture(cartWith(line("a", "30.00", 2)), true)
		_, err := f.svc.StartPayment(context.Background())
		require.NoError(t, err)

		_, err = f.svc.CompletePayment(context.Background(), shipping(), confirmation)
		require.ErrorIs(t, err, domorder.ErrPaymentNotVerified)
		require.Empty(t, f.gateway.drafts)
		require.Zero(t, f.cart.cleared)
	})

	t.Run("incomplete confirmation is not sent", func(t *testing.T) {
		f := newFixture(cartWith(line("a", "30.00", 2)), true)

		_, err := f.svc.CompletePayment(context.Background(), shipping(), domorder.PaymentConfirmation{GatewayOrderID: "gw_1"})
		require.ErrorIs(t, err, domorder.ErrCheckoutValidation)
		require.Zero(t, f.gateway.verifyCalls)
	})

	t.Run("payment that was never started is refused", func(t *testing.T) {
		f := newFixture(cartWith(line("a", "30.00", 2)), true)
		f.gateway.verified = true

		_, err := f.svc.CompletePayment(context.Background(), shipping(), confirmation)
		require.ErrorIs(t, err, domorder.ErrCheckoutValidation)
		require.Zero(t, f.gateway.verifyCalls)
		require.Empty(t, f.gateway.drafts)
	})

	t.Run("cart grown after payment started is refused", func(t *testing.T) {
		f := newFixture(cartWith(line("a", "10.00", 1)), true)
		f.gateway.verified = true
		gw, err := f.svc.StartPayment(context.Background())
		require.NoError(t, err)
		require.Equal(t, int64(2079), gw.Amount)

		f.cart.cart = cartWith(line("a", "10.00", 1), line("b", "500.00", 3))

		_, err = f.svc.CompletePayment(context.Background(), shipping(), confirmation)
		require.ErrorIs(t, err, domorder.ErrCheckoutValidation)
		require.Zero(t, f.gateway.verifyCalls)
		require.Empty(t, f.gateway.drafts)
		require.Zero(t, f.cart.cleared)
		require.Empty(t, f.history.orders)
	})
}
