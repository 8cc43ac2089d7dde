package cart

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	domcart "example.com/storefront/internal/domain/cart"
	domproduct "example.com/storefront/internal/domain/product"
	"example.com/storefront/internal/infra/persistence"
	"example.com/storefront/internal/infra/persistence/memory"
)

type mockCartRepository struct {
	mu      sync.Mutex
	lines   []domcart.Line
	loadErr error
	saveErr error
	saves   int
}

func (m *mockCartRepository) Load(ctx context.Context) ([]domcart.Line, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return append([]domcart.Line(nil), m.lines...), nil
}

func (m *mockCartRepository) Save(ctx context.Context, lines []domcart.Line) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.lines = append([]domcart.Line(nil), lines...)
	return nil
}

type recordingObserver struct {
	ops  []string
	errs []error
}

func (r *recordingObserver) ObserveMutation(op string, err error) {
	r.ops = append(r.ops, op)
	r.errs = append(r.errs, err)
}

func product(id string, price string) domproduct.Product {
	return domproduct.Product{ID: id, Name: "Product " + id, Slug: "product-" + id, Price: decimal.RequireFromString(price)}
}

func newTestService(t *testing.T, repo domcart.Repository) *Service {
	t.Helper()
	svc, err := NewService(context.Background(), repo, nil, nil)
	require.NoError(t, err)
	return svc
}

func requireTotalsConsistent(t *testing.T, svc *Service) {
	t.Helper()
	items := 0
	price := decimal.Zero
	for _, l := range svc.Lines() {
		items += l.Quantity
		price = price.Add(l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	require.Equal(t, items, svc.TotalItems())
	require.True(t, price.Equal(svc.TotalPrice()), "want %s got %s", price, svc.TotalPrice())
}

func TestAdd_SameProductAccumulates(t *testing.T) {
	tests := []struct {
		name       string
		quantities []int
		want       int
	}{
		{name: "single add", quantities: []int{1}, want: 1},
		{name: "two adds", quantities: []int{2, 3}, want: 5},
		{name: "many adds", quantities: []int{1, 1, 4, 10, 2}, want: 18},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, &mockCartRepository{})
			a := product("a", "10.00")
			for _, q := range tt.quantities {
				require.NoError(t, svc.Add(context.Background(), a, q))
			}

			lines := svc.Lines()
			require.Len(t, lines, 1)
			require.Equal(t, "a", lines[0].Product.ID)
			require.Equal(t, tt.want, lines[0].Quantity)
			requireTotalsConsistent(t, svc)
		})
	}
}

func TestAdd_KeepsInsertionOrder(t *testing.T) {
	svc := newTestService(t, &mockCartRepository{})
	ctx := context.Background()
	require.NoError(t, svc.AddOne(ctx, product("b", "1.00")))
	require.NoError(t, svc.AddOne(ctx, product("a", "2.00")))
	require.NoError(t, svc.Add(ctx, product("b", "1.00"), 2))
	require.NoError(t, svc.AddOne(ctx, product("c", "3.00")))

	var ids []string
	for _, l := range svc.Lines() {
		ids = append(ids, l.Product.ID)
	}
	require.Equal(t, []string{"b", "a", "c"}, ids)
}

func TestAdd_RejectsNonPositiveQuantity(t *testing.T) {
	for _, q := range []int{0, -1, -10} {
		repo := &mockCartRepository{}
		svc := newTestService(t, repo)

		err := svc.Add(context.Background(), product("a", "5.00"), q)
		require.ErrorIs(t, err, domcart.ErrInvalidQuantity)
		require.True(t, svc.IsEmpty())
		require.Zero(t, repo.saves)
	}
}

func TestSetQuantityZeroEqualsRemove(t *testing.T) {
	ctx := context.Background()
	build := func() *Service {
		svc := newTestService(t, &mockCartRepository{})
		require.NoError(t, svc.Add(ctx, product("a", "3.50"), 2))
		require.NoError(t, svc.Add(ctx, product("b", "1.25"), 4))
		return svc
	}

	viaSet := build()
	require.NoError(t, viaSet.SetQuantity(ctx, "a", 0))
	viaRemove := build()
	require.NoError(t, viaRemove.Remove(ctx, "a"))
	viaNegative := build()
	require.NoError(t, viaNegative.SetQuantity(ctx, "a", -3))

	require.Equal(t, viaRemove.Lines(), viaSet.Lines())
	require.Equal(t, viaRemove.Lines(), viaNegative.Lines())
	_, found := viaSet.Snapshot().Find("a")
	require.False(t, found)
	requireTotalsConsistent(t, viaSet)
}

func TestSetQuantity_UnknownProductIsNoop(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, &mockCartRepository{})
	require.NoError(t, svc.Add(ctx, product("a", "3.50"), 2))

	require.NoError(t, svc.SetQuantity(ctx, "missing", 7))
	require.NoError(t, svc.Remove(ctx, "missing"))
	require.Len(t, svc.Lines(), 1)
	require.Equal(t, 2, svc.TotalItems())
}

func TestAddAddSetQuantityScenario(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, &mockCartRepository{})
	a := product("a", "19.99")

	require.NoError(t, svc.Add(ctx, a, 2))
	require.NoError(t, svc.Add(ctx, a, 3))
	require.NoError(t, svc.SetQuantity(ctx, "a", 1))

	lines := svc.Lines()
	require.Len(t, lines, 1)
	require.Equal(t, 1, lines[0].Quantity)
	require.Equal(t, 1, svc.TotalItems())
	require.True(t, decimal.RequireFromString("19.99").Equal(svc.TotalPrice()))
}

func TestTotalsHoldAfterEveryMutation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, &mockCartRepository{})

	steps := []func() error{
		func() error { return svc.Add(ctx, product("a", "0.10"), 3) },
		func() error { return svc.Add(ctx, product("b", "0.20"), 1) },
		func() error { return svc.SetQuantity(ctx, "a", 7) },
		func() error { return svc.Remove(ctx, "b") },
		func() error { return svc.Add(ctx, product("c", "99.99"), 2) },
		func() error { return svc.Clear(ctx) },
	}
	for _, step := range steps {
		require.NoError(t, step())
		requireTotalsConsistent(t, svc)
	}
	require.Zero(t, svc.TotalItems())
	require.True(t, svc.TotalPrice().IsZero())
	require.True(t, svc.IsEmpty())
}

func TestTotalPriceIsExact(t *testing.T) {
	svc := newTestService(t, &mockCartRepository{})
	ctx := context.Background()
	require.NoError(t, svc.Add(ctx, product("a", "0.10"), 3))
	require.NoError(t, svc.Add(ctx, product("b", "0.20"), 1))

	require.Equal(t, "0.5", svc.TotalPrice().String())
}

func TestMutationsPersistWholeCart(t *testing.T) {
	ctx := context.Background()
	repo := &mockCartRepository{}
	svc := newTestService(t, repo)

	require.NoError(t, svc.Add(ctx, product("a", "1.00"), 2))
	require.NoError(t, svc.Add(ctx, product("b", "2.00"), 1))
	require.Equal(t, svc.Lines(), repo.lines)

	require.NoError(t, svc.Clear(ctx))
	require.Empty(t, repo.lines)
	require.Equal(t, 3, repo.saves)
}

func TestPersistFailureLeavesCartUnchanged(t *testing.T) {
	ctx := context.Background()
	repo := &mockCartRepository{}
	obs := &recordingObserver{}
	svc, err := NewService(ctx, repo, nil, obs)
	require.NoError(t, err)
	require.NoError(t, svc.Add(ctx, product("a", "1.00"), 2))

	repo.saveErr = errors.New("quota exceeded")
	err = svc.Add(ctx, product("a", "1.00"), 5)
	require.ErrorIs(t, err, domcart.ErrPersist)
	require.Equal(t, 2, svc.TotalItems())

	err = svc.Clear(ctx)
	require.ErrorIs(t, err, domcart.ErrPersist)
	require.False(t, svc.IsEmpty())

	require.Equal(t, []string{"add", "add", "clear"}, obs.ops)
	require.NoError(t, obs.errs[0])
	require.Error(t, obs.errs[1])
}

func TestHydration(t *testing.T) {
	t.Run("restores persisted lines", func(t *testing.T) {
		repo := &mockCartRepository{lines: []domcart.Line{
			{Product: product("a", "2.00"), Quantity: 2},
			{Product: product("b", "3.00"), Quantity: 1},
		}}
		svc := newTestService(t, repo)
		require.Equal(t, repo.lines, svc.Lines())
		require.Equal(t, 3, svc.TotalItems())
	})

	t.Run("normalizes duplicates and bad quantities", func(t *testing.T) {
		repo := &mockCartRepository{lines: []domcart.Line{
			{Product: product("a", "2.00"), Quantity: 2},
			{Product: product("b", "3.00"), Quantity: 0},
			{Product: product("a", "2.00"), Quantity: 3},
			{Product: product("c", "1.00"), Quantity: -4},
		}}
		svc := newTestService(t, repo)
		lines := svc.Lines()
		require.Len(t, lines, 1)
		require.Equal(t, "a", lines[0].Product.ID)
		require.Equal(t, 5, lines[0].Quantity)
	})

	// Undecodable data is discarded rather than failing startup.
	t.Run("corrupt data starts empty", func(t *testing.T) {
		repo := &mockCartRepository{loadErr: domcart.ErrCorruptState}
		svc := newTestService(t, repo)
		require.True(t, svc.IsEmpty())
	})

	t.Run("storage failure is returned", func(t *testing.T) {
		repo := &mockCartRepository{loadErr: errors.New("permission denied")}
		_, err := NewService(context.Background(), repo, nil, nil)
		require.Error(t, err)
	})
}

func TestPersistHydrateRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	first := newTestService(t, persistence.NewCartRepository(store))
	require.NoError(t, first.Add(ctx, product("z", "5.00"), 1))
	require.NoError(t, first.Add(ctx, product("a", "0.99"), 4))
	require.NoError(t, first.Add(ctx, product("m", "12.50"), 2))
	require.NoError(t, first.SetQuantity(ctx, "a", 3))

	second := newTestService(t, persistence.NewCartRepository(store))
	want := first.Lines()
	got := second.Lines()
	require.Len(t, got, len(want))
	for i := range want {
		require.Equal(t, want[i].Product.ID, got[i].Product.ID)
		require.Equal(t, want[i].Quantity, got[i].Quantity)
		require.True(t, want[i].Product.Price.Equal(got[i].Product.Price))
	}
	require.True(t, first.TotalPrice().Equal(second.TotalPrice()))
}

func TestConcurrentAddsAreAtomic(t *testing.T) {
	ctx := context.Background()
	repo := &mockCartRepository{}
	svc := newTestService(t, repo)
	a := product("a", "1.00")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = svc.AddOne(ctx, a)
		}()
	}
	wg.Wait()

	require.Equal(t, 50, svc.TotalItems())
	require.Equal(t, 50, repo.lines[0].Quantity)
}
