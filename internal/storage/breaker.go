package storage

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"
)

type BreakerSettings struct {
	Name             string
	MaxRequests      uint32
	Timeout          time.Duration
	FailureThreshold uint32
}

// BreakerBackend stops calling a failing backend until it recovers.
// A missing key counts as success.
type BreakerBackend struct {
	next   Backend
	reads  *gobreaker.CircuitBreaker[[]byte]
	writes *gobreaker.CircuitBreaker[struct{}]
}

func NewBreakerBackend(next Backend, s BreakerSettings) *BreakerBackend {
	if s.FailureThreshold == 0 {
		s.FailureThreshold = 5
	}
	settings := func(name string) gobreaker.Settings {
		return gobreaker.Settings{
			Name:        name,
			MaxRequests: s.MaxRequests,
			Timeout:     s.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= s.FailureThreshold
			},
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, ErrKeyNotFound)
			},
		}
	}
	return &BreakerBackend{
		next:   next,
		reads:  gobreaker.NewCircuitBreaker[[]byte](settings(s.Name + "-read")),
		writes: gobreaker.NewCircuitBreaker[struct{}](settings(s.Name + "-write")),
	}
}

func (b *BreakerBackend) Get(ctx context.Context, key string) ([]byte, error) {
	return b.reads.Execute(func() ([]byte, error) {
		return b.next.Get(ctx, key)
	})
}

func (b *BreakerBackend) Set(ctx context.Context, key string, value []byte) error {
	_, err := b.writes.Execute(func() (struct{}, error) {
		return struct{}{}, b.next.Set(ctx, key, value)
	})
	return err
}

func (b *BreakerBackend) Delete(ctx context.Context, key string) error {
	_, err := b.writes.Execute(func() (struct{}, error) {
		return struct{}{}, b.next.Delete(ctx, key)
	})
	return err
}
