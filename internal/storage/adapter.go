package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Store is the long-lived half of the storage adapter: one backend, one base
// key, handing out per-visitor Adapters.
type Store struct {
	backend Backend
	base    string
	logger  *zap.Logger
	sfg     singleflight.Group // collapses concurrent loads of the same key

	readTimeout time.Duration
}

// DefaultReadTimeout bounds a single backend read.
const DefaultReadTimeout = 5 * time.Second

func NewStore(backend Backend, base string, logger *zap.Logger) *Store {
	if base == "" {
		base = DefaultKey
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		backend:     backend,
		base:        base,
		logger:      logger,
		readTimeout: DefaultReadTimeout,
	}
}

// Scope returns the adapter for one visitor's cart.
func (s *Store) Scope(scope string) *Adapter {
	return &Adapter{store: s, key: Key(s.base, scope)}
}

// Adapter reads and writes the whole cart under one scoped key. It never
// caches: every Load goes to the backend.
type Adapter struct {
	store *Store
	key   string
}

func (a *Adapter) Key() string {
	return a.key
}

// Load returns the persisted cart for display. A missing key, an unreachable
// backend or anything that is not a serialized array yields an empty cart.
func (a *Adapter) Load(ctx context.Context) domain.Cart {
	cart, err := a.Read(ctx)
	if err != nil {
		a.store.logger.Warn("cart load failed, using empty cart", zap.String("key", a.key), zap.Error(err))
		return domain.Cart{}
	}
	return cart
}

// Read is the load used before a write. Missing or malformed data still
// yields an empty cart, but backend failures are returned so the caller
// does not overwrite a cart it could not read.
func (a *Adapter) Read(ctx context.Context) (domain.Cart, error) {
	v, err, _ := a.store.sfg.Do(a.key, func() (interface{}, error) {
		// Shared by every waiter on this key: one caller's cancellation
		// must not fail the others.
		readCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.store.readTimeout)
		defer cancel()
		return a.store.backend.Get(readCtx, a.key)
	})
	if errors.Is(err, ErrKeyNotFound) {
		return domain.Cart{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cart failed: %w", err)
	}

	cart, err := decodeCart(v.([]byte))
	if err != nil {
		a.store.logger.Warn("malformed cart data, using empty cart", zap.String("key", a.key), zap.Error(err))
		return domain.Cart{}, nil
	}
	return cart, nil
}

// Save overwrites the persisted cart with the full sequence.
func (a *Adapter) Save(ctx context.Context, cart domain.Cart) error {
	data, err := encodeCart(cart)
	if err != nil {
		return err
	}
	if err := a.store.backend.Set(ctx, a.key, data); err != nil {
		return fmt.Errorf("save cart failed: %w", err)
	}
	return nil
}

// Delete removes the persisted value altogether. A later Load sees an empty cart.
func (a *Adapter) Delete(ctx context.Context) error {
	if err := a.store.backend.Delete(ctx, a.key); err != nil {
		return fmt.Errorf("delete cart failed: %w", err)
	}
	return nil
}

func decodeCart(data []byte) (domain.Cart, error) {
	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	if cart == nil {
		return domain.Cart{}, nil
	}
	return cart, nil
}

func encodeCart(cart domain.Cart) ([]byte, error) {
	if cart == nil {
		cart = domain.Cart{}
	}
	data, err := json.Marshal(cart)
	if err != nil {
		return nil, fmt.Errorf("marshal cart failed: %w", err)
	}
	return data, nil
}
