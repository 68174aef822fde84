package service

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type mockStore struct {
	m       sync.RWMutex
	cart    domain.Cart
	err     error
	readErr error
	saves   int
}

func (s *mockStore) Load(context.Context) domain.Cart {
	s.m.RLock()
	defer s.m.RUnlock()
	out := make(domain.Cart, len(s.cart))
	copy(out, s.cart)
	return out
}

func (s *mockStore) Read(ctx context.Context) (domain.Cart, error) {
	s.m.RLock()
	err := s.readErr
	s.m.RUnlock()
	if err != nil {
		return nil, err
	}
	return s.Load(ctx), nil
}

func (s *mockStore) Save(_ context.Context, cart domain.Cart) error {
	s.m.Lock()
	defer s.m.Unlock()
	if s.err != nil {
		return s.err
	}
	s.saves++
	s.cart = make(domain.Cart, len(cart))
	copy(s.cart, cart)
	return nil
}

func (s *mockStore) getSaves() int {
	s.m.RLock()
	defer s.m.RUnlock()
	return s.saves
}

var productA = domain.Product{ID: 1, Name: "A", Price: 10, Img: "a.png"}

func newState(store *mockStore) (*CartState, *int) {
	notified := 0
	sut := NewCartState(store, nil)
	sut.OnChange(func(context.Context) { notified++ })
	return sut, &notified
}

func TestScenario_AddUpdateRemove(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{}
	sut, _ := newState(store)

	require.NoError(t, sut.Add(ctx, productA, 2))
	assert.Equal(t, 2, sut.Count(ctx))
	assert.InDelta(t, 20.0, sut.Total(ctx), 1e-9)

	require.NoError(t, sut.Add(ctx, productA, 1))
	assert.Equal(t, 3, sut.Count(ctx))
	items := sut.Items(ctx)
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Qty)

	require.NoError(t, sut.UpdateQuantity(ctx, 1, 0))
	assert.Equal(t, 1, sut.Items(ctx)[0].Qty)

	require.NoError(t, sut.Remove(ctx, 1))
	assert.Empty(t, sut.Items(ctx))
	assert.Equal(t, 0, sut.Count(ctx))
	assert.Equal(t, 0.0, sut.Total(ctx))
}

func TestAdd_SameIDSumsQuantities(t *testing.T) {
	ctx := context.Background()
	sut, notified := newState(&mockStore{})

	quantities := []int{1, 4, 2, 7}
	for _, q := range quantities {
		require.NoError(t, sut.Add(ctx, productA, q))
	}

	items := sut.Items(ctx)
	require.Len(t, items, 1)
	assert.Equal(t, 14, items[0].Qty)
	assert.Equal(t, len(quantities), *notified)
}

func TestAdd_AppendsInInsertionOrder(t *testing.T) {
	ctx := context.Background()
	sut, _ := newState(&mockStore{})

	require.NoError(t, sut.Add(ctx, domain.Product{ID: 3, Name: "C", Price: 1}, 1))
	require.NoError(t, sut.Add(ctx, domain.Product{ID: 1, Name: "A", Price: 2, Brand: "Bandai", Series: "MG"}, 1))
	require.NoError(t, sut.Add(ctx, domain.Product{ID: 3, Name: "C", Price: 1}, 1))

	items := sut.Items(ctx)
	require.Len(t, items, 2)
	assert.Equal(t, int64(3), items[0].ID)
	assert.Equal(t, 2, items[0].Qty)
	assert.Equal(t, int64(1), items[1].ID)
	assert.Equal(t, "Bandai", items[1].Brand)
	assert.Equal(t, "MG", items[1].Series)
}

func TestAdd_NonPositiveQuantityClamped(t *testing.T) {
	ctx := context.Background()
	sut, _ := newState(&mockStore{})

	require.NoError(t, sut.Add(ctx, productA, 0))
	require.NoError(t, sut.Add(ctx, productA, -3))

	assert.Equal(t, 2, sut.Items(ctx)[0].Qty)
}

func TestUpdateQuantity(t *testing.T) {
	cases := []struct {
		name string
		in   int
		want int
	}{
		{"negative", -4, 1},
		{"zero", 0, 1},
		{"one", 1, 1},
		{"large", 500, 500},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			store := &mockStore{cart: domain.Cart{{ID: 1, Price: 10, Qty: 3}}}
			sut, notified := newState(store)

			require.NoError(t, sut.UpdateQuantity(ctx, 1, tc.in))
			assert.Equal(t, tc.want, sut.Items(ctx)[0].Qty)
			assert.Equal(t, 1, *notified)
		})
	}
}

func TestAdd_QuantitySaturates(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{cart: domain.Cart{{ID: 1, Price: 10, Qty: math.MaxInt}}}
	sut, _ := newState(store)

	require.NoError(t, sut.Add(ctx, productA, 5))
	assert.Equal(t, math.MaxInt, sut.Items(ctx)[0].Qty)
}

func TestUpdateQuantity_UnknownIDIsSilentNoop(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{cart: domain.Cart{{ID: 1, Qty: 3}}}
	sut, notified := newState(store)

	require.NoError(t, sut.UpdateQuantity(ctx, 42, 9))

	assert.Equal(t, 0, store.getSaves())
	assert.Equal(t, 0, *notified)
	assert.Equal(t, 3, sut.Items(ctx)[0].Qty)
}

func TestRemove_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{cart: domain.Cart{{ID: 1, Qty: 1}, {ID: 2, Qty: 5}}}
	sut, notified := newState(store)

	require.NoError(t, sut.Remove(ctx, 1))
	require.NoError(t, sut.Remove(ctx, 1))

	items := sut.Items(ctx)
	require.Len(t, items, 1)
	assert.Equal(t, int64(2), items[0].ID)
	assert.Equal(t, 2, *notified)
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{cart: domain.Cart{{ID: 1, Qty: 1}, {ID: 2, Qty: 5}}}
	sut, notified := newState(store)

	require.NoError(t, sut.Clear(ctx))

	assert.Empty(t, sut.Items(ctx))
	assert.Equal(t, 1, *notified)
}

func TestAggregatesMatchItems(t *testing.T) {
	ctx := context.Background()
	sut, _ := newState(&mockStore{})

	require.NoError(t, sut.Add(ctx, domain.Product{ID: 1, Price: 9.99}, 3))
	require.NoError(t, sut.Add(ctx, domain.Product{ID: 2, Price: 0.5}, 10))
	require.NoError(t, sut.Add(ctx, domain.Product{ID: 3, Price: 120}, 1))

	wantCount, wantTotal := 0, 0.0
	for _, item := range sut.Items(ctx) {
		wantCount += item.Qty
		wantTotal += item.Price * float64(item.Qty)
	}
	assert.Equal(t, wantCount, sut.Count(ctx))
	assert.InDelta(t, wantTotal, sut.Total(ctx), 1e-9)
}

func TestSaveErrorIsReturnedAndListenersSkipped(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("quota exceeded")
	store := &mockStore{cart: domain.Cart{{ID: 1, Qty: 1}}, err: boom}
	sut, notified := newState(store)

	assert.ErrorIs(t, sut.Add(ctx, productA, 1), boom)
	assert.ErrorIs(t, sut.Remove(ctx, 1), boom)
	assert.ErrorIs(t, sut.UpdateQuantity(ctx, 1, 4), boom)
	assert.ErrorIs(t, sut.Clear(ctx), boom)
	assert.Equal(t, 0, *notified)
}

func TestReadErrorAbortsMutationsWithoutSaving(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("connection refused")
	store := &mockStore{cart: domain.Cart{{ID: 1, Qty: 3}}, readErr: boom}
	sut, notified := newState(store)

	assert.ErrorIs(t, sut.Add(ctx, productA, 1), boom)
	assert.ErrorIs(t, sut.Remove(ctx, 1), boom)
	assert.ErrorIs(t, sut.UpdateQuantity(ctx, 1, 4), boom)

	assert.Equal(t, 0, store.getSaves())
	assert.Equal(t, 0, *notified)
	assert.Equal(t, 3, sut.Items(ctx)[0].Qty)
}

// flakyBackend fails the first n Gets, then delegates.
type flakyBackend struct {
	*storage.MemoryBackend
	mu       sync.Mutex
	failures int
}

func (f *flakyBackend) Get(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	if f.failures > 0 {
		f.failures--
		f.mu.Unlock()
		return nil, errors.New("i/o timeout")
	}
	f.mu.Unlock()
	return f.MemoryBackend.Get(ctx, key)
}

func TestAdd_BackendReadFailureKeepsStoredCart(t *testing.T) {
	ctx := context.Background()
	backend := &flakyBackend{MemoryBackend: storage.NewMemoryBackend()}
	adapter := storage.NewStore(backend, storage.DefaultKey, nil).Scope("v1")

	stored := domain.Cart{
		{ID: 1, Name: "A", Price: 10, Qty: 2},
		{ID: 2, Name: "B", Price: 5, Qty: 1},
	}
	require.NoError(t, adapter.Save(ctx, stored))
	before, err := backend.MemoryBackend.Get(ctx, adapter.Key())
	require.NoError(t, err)

	backend.failures = 1
	sut := NewCartState(adapter, nil)
	notified := 0
	sut.OnChange(func(context.Context) { notified++ })

	require.Error(t, sut.Add(ctx, domain.Product{ID: 3, Name: "C", Price: 1}, 1))
	assert.Equal(t, 0, notified)

	after, err := backend.MemoryBackend.Get(ctx, adapter.Key())
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))

	// The next attempt sees the real cart and appends to it.
	require.NoError(t, sut.Add(ctx, domain.Product{ID: 3, Name: "C", Price: 1}, 1))
	items := sut.Items(ctx)
	require.Len(t, items, 3)
	assert.Equal(t, 2, items[0].Qty)
	assert.Equal(t, int64(3), items[2].ID)
}
