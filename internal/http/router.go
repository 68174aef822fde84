package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

type RouterConfig struct {
	SessionCookie  string
	RequestTimeout time.Duration
}

func NewRouter(h *CartHandler, logger *zap.Logger, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(SessionMiddleware(cfg.SessionCookie))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.CartPage)
			r.Post("/items/{product_id}/remove", h.RemoveItem)
			r.Post("/items/{product_id}/quantity", h.UpdateQuantity)
			r.Post("/clear", h.ClearCart)
			r.Post("/checkout", h.Checkout)
		})

		r.Route("/api/v1/cart", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Post("/items", h.AddItem)
		})
	})

	return otelhttp.NewHandler(r, "storefront")
}
