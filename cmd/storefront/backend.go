package main

import (
	"context"
	"fmt"

	"github.com/fjod/go_cart/storefront/internal/config"
	"github.com/fjod/go_cart/storefront/internal/storage"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// openBackend connects the configured storage backend. The returned func
// releases its connections.
func openBackend(ctx context.Context, cfg *config.Config, logger *zap.Logger) (storage.Backend, func(), error) {
	var (
		backend storage.Backend
		closeFn = func() {}
	)

	switch cfg.Backend {
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("redis connection failed: %w", err)
		}
		logger.Info("redis ping succeeded", zap.String("addr", cfg.Redis.Addr))
		backend = storage.NewRedisBackend(client, cfg.Redis.TTL)
		closeFn = func() { client.Close() }

	case config.BackendMongo:
		db, err := storage.ConnectMongoDB(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return nil, nil, err
		}
		mongoBackend := storage.NewMongoBackend(db, cfg.Mongo.Collection)
		if err := mongoBackend.CreateIndexes(ctx, cfg.Mongo.ExpireAfter); err != nil {
			db.Client().Disconnect(ctx)
			return nil, nil, err
		}
		logger.Info("connected to MongoDB", zap.String("database", cfg.Mongo.Database))
		backend = mongoBackend
		closeFn = func() { db.Client().Disconnect(context.Background()) }

	case config.BackendMemory:
		logger.Warn("using in-memory storage, carts are lost on restart")
		backend = storage.NewMemoryBackend()
		return backend, closeFn, nil

	default:
		return nil, nil, fmt.Errorf("%w: %q", config.ErrUnknownBackend, cfg.Backend)
	}

	if cfg.Breaker.Enabled {
		backend = storage.NewBreakerBackend(backend, storage.BreakerSettings{
			Name:             cfg.Backend,
			Timeout:          cfg.Breaker.Timeout,
			FailureThreshold: cfg.Breaker.FailureThreshold,
		})
	}
	return backend, closeFn, nil
}
