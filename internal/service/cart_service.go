package service

import (
	"context"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"go.uber.org/zap"
)

// CartStore persists one visitor's whole cart. Load never fails and is for
// display; Read reports backend failures and guards every write.
type CartStore interface {
	Load(ctx context.Context) domain.Cart
	Read(ctx context.Context) (domain.Cart, error)
	Save(ctx context.Context, cart domain.Cart) error
}

// ChangeListener runs after every persisted mutation.
type ChangeListener func(ctx context.Context)

// CartState exposes the cart mutations. Every call reads the full cart from
// the store, mutates it and writes it back; nothing is cached between calls.
type CartState struct {
	store     CartStore
	logger    *zap.Logger
	listeners []ChangeListener
}

func NewCartState(store CartStore, logger *zap.Logger) *CartState {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartState{
		store:  store,
		logger: logger,
	}
}

// OnChange registers a listener, typically the badge updater.
func (s *CartState) OnChange(l ChangeListener) {
	s.listeners = append(s.listeners, l)
}

func (s *CartState) Items(ctx context.Context) domain.Cart {
	return s.store.Load(ctx)
}

func (s *CartState) Count(ctx context.Context) int {
	return s.store.Load(ctx).Count()
}

func (s *CartState) Total(ctx context.Context) float64 {
	return s.store.Load(ctx).Total()
}

// Add increments the quantity of an existing line item or appends a new one.
// Quantities below one are raised to one.
func (s *CartState) Add(ctx context.Context, p domain.Product, qty int) error {
	qty = domain.ClampQuantity(qty)
	cart, err := s.store.Read(ctx)
	if err != nil {
		s.logger.Error("add to cart failed", zap.Int64("product_id", p.ID), zap.Error(err))
		return err
	}

	if i := cart.Index(p.ID); i >= 0 {
		cart[i].Qty = domain.SumQuantity(cart[i].Qty, qty)
	} else {
		cart = append(cart, domain.NewLineItem(p, qty))
	}

	if err := s.persist(ctx, cart); err != nil {
		s.logger.Error("add to cart failed", zap.Int64("product_id", p.ID), zap.Error(err))
		return err
	}
	s.logger.Debug("added to cart", zap.Int64("product_id", p.ID), zap.String("name", p.Name), zap.Int("qty", qty))
	return nil
}

// Remove drops the line item with the given id. Unknown ids are a no-op
// apart from the rewrite.
func (s *CartState) Remove(ctx context.Context, id int64) error {
	cart, err := s.store.Read(ctx)
	if err != nil {
		s.logger.Error("remove from cart failed", zap.Int64("product_id", id), zap.Error(err))
		return err
	}

	kept := make(domain.Cart, 0, len(cart))
	for _, item := range cart {
		if item.ID != id {
			kept = append(kept, item)
		}
	}

	if err := s.persist(ctx, kept); err != nil {
		s.logger.Error("remove from cart failed", zap.Int64("product_id", id), zap.Error(err))
		return err
	}
	return nil
}

// UpdateQuantity sets the quantity, clamped to at least one. An unknown id
// changes nothing and notifies nobody.
func (s *CartState) UpdateQuantity(ctx context.Context, id int64, qty int) error {
	cart, err := s.store.Read(ctx)
	if err != nil {
		s.logger.Error("update quantity failed", zap.Int64("product_id", id), zap.Error(err))
		return err
	}

	i := cart.Index(id)
	if i < 0 {
		return nil
	}
	cart[i].Qty = domain.ClampQuantity(qty)

	if err := s.persist(ctx, cart); err != nil {
		s.logger.Error("update quantity failed", zap.Int64("product_id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *CartState) Clear(ctx context.Context) error {
	if err := s.persist(ctx, domain.Cart{}); err != nil {
		s.logger.Error("clear cart failed", zap.Error(err))
		return err
	}
	return nil
}

func (s *CartState) persist(ctx context.Context, cart domain.Cart) error {
	if err := s.store.Save(ctx, cart); err != nil {
		return err
	}
	for _, l := range s.listeners {
		l(ctx)
	}
	return nil
}
