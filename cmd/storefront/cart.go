package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fjod/go_cart/storefront/internal/config"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/logging"
	"github.com/fjod/go_cart/storefront/internal/service"
	"github.com/fjod/go_cart/storefront/internal/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var cartScope string

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Inspect or reset a visitor's cart",
}

var cartShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print a visitor's cart as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withCart(cmd, func(ctx context.Context, adapter *storage.Adapter, _ *zap.Logger) error {
			cart, err := adapter.Read(ctx)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(struct {
				Items domain.Cart `json:"items"`
				Count int         `json:"count"`
				Total string      `json:"total"`
			}{cart, cart.Count(), domain.FormatMoney(cart.Total())}, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		})
	},
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty a visitor's cart",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withCartState(cmd, func(ctx context.Context, state *service.CartState) error {
			if err := state.Clear(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cleared cart for %s\n", cartScope)
			return nil
		})
	},
}

var cartDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove a visitor's cart key from storage",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withCart(cmd, func(ctx context.Context, adapter *storage.Adapter, _ *zap.Logger) error {
			if err := adapter.Delete(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", adapter.Key())
			return nil
		})
	},
}

// errLocalBackend rejects the memory backend for cart commands: its carts
// live only inside the serving process.
var errLocalBackend = errors.New("cart commands need a shared backend (redis or mongo), not memory")

func init() {
	cartCmd.PersistentFlags().StringVar(&cartScope, "scope", "", "visitor session id")
	_ = cartCmd.MarkPersistentFlagRequired("scope")
	cartCmd.AddCommand(cartShowCmd, cartClearCmd, cartDeleteCmd)
}

func withCartState(cmd *cobra.Command, fn func(ctx context.Context, state *service.CartState) error) error {
	return withCart(cmd, func(ctx context.Context, adapter *storage.Adapter, logger *zap.Logger) error {
		return fn(ctx, service.NewCartState(adapter, logger))
	})
}

func withCart(cmd *cobra.Command, fn func(ctx context.Context, adapter *storage.Adapter, logger *zap.Logger) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Backend == config.BackendMemory {
		return errLocalBackend
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.RequestTimeout)
	defer cancel()

	backend, closeBackend, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeBackend()

	store := storage.NewStore(backend, cfg.StorageKey, logger)
	return fn(ctx, store.Scope(cartScope), logger)
}
