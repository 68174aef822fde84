package storage

import (
	"context"
	"errors"
	"fmt"
)

// Backend is a persistent key-value store holding serialized carts.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

var ErrKeyNotFound = errors.New("key not found")

// DefaultKey is the fixed key the cart lives under.
const DefaultKey = "nh_cart"

// Key scopes the fixed cart key to a single visitor.
func Key(base, scope string) string {
	return fmt.Sprintf("%s:%s", base, scope)
}
