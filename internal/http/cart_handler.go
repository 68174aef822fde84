package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/fjod/go_cart/storefront/internal/badge"
	"github.com/fjod/go_cart/storefront/internal/dom"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/logging"
	"github.com/fjod/go_cart/storefront/internal/render"
	"github.com/fjod/go_cart/storefront/internal/service"
	"github.com/fjod/go_cart/storefront/internal/storage"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type CartHandler struct {
	store   *storage.Store
	page    []byte
	logger  *zap.Logger
	timeout time.Duration
}

func NewCartHandler(store *storage.Store, page []byte, logger *zap.Logger, timeout time.Duration) *CartHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartHandler{
		store:   store,
		page:    page,
		logger:  logger,
		timeout: timeout,
	}
}

type AddItemRequestDTO struct {
	Product domain.Product `json:"product"`
	Qty     int            `json:"qty"`
}

type CartSummaryDTO struct {
	Count int     `json:"count"`
	Total float64 `json:"total"`
}

type CartResponseDTO struct {
	Items domain.Cart `json:"items"`
	Count int         `json:"count"`
	Total float64     `json:"total"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// cartPage is one response's view of the host page wired to the visitor's cart.
type cartPage struct {
	doc      *dom.Document
	renderer *render.Renderer
}

func (h *CartHandler) state(ctx context.Context) *service.CartState {
	logger := logging.WithTrace(ctx, h.logger)
	return service.NewCartState(h.store.Scope(scopeFromContext(ctx)), logger)
}

// load parses the host page and runs the page-load steps: wiring the
// page-level controls and refreshing the badge.
func (h *CartHandler) load(ctx context.Context) (*cartPage, error) {
	doc, err := dom.Parse(bytes.NewReader(h.page))
	if err != nil {
		return nil, err
	}

	state := h.state(ctx)
	updater := badge.NewUpdater(doc, state)
	state.OnChange(updater.Update)

	renderer := render.New(doc, state)
	if err := renderer.WirePage(); err != nil {
		return nil, err
	}
	updater.Update(ctx)

	return &cartPage{doc: doc, renderer: renderer}, nil
}

// serve loads the page, runs action against it and writes the result.
func (h *CartHandler) serve(w http.ResponseWriter, r *http.Request, action func(ctx context.Context, p *cartPage) (render.Outcome, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	p, err := h.load(ctx)
	if err != nil {
		h.logger.Error("load cart page failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	outcome, err := action(ctx, p)
	if err != nil {
		logging.WithTrace(ctx, h.logger).Error("cart action failed", zap.String("path", r.URL.Path), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "storage_error", "cart could not be saved")
		return
	}
	if outcome == render.NotApplicable {
		h.logger.Warn("host page has no cart regions", zap.String("path", r.URL.Path))
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if err := p.doc.Render(w); err != nil {
		h.logger.Error("failed to write page", zap.Error(err))
	}
}

// GET /cart
func (h *CartHandler) CartPage(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(ctx context.Context, p *cartPage) (render.Outcome, error) {
		return p.renderer.Render(ctx)
	})
}

// POST /cart/items/{product_id}/remove
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}
	h.serve(w, r, func(ctx context.Context, p *cartPage) (render.Outcome, error) {
		return p.renderer.Remove(ctx, productID)
	})
}

// POST /cart/items/{product_id}/quantity
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}
	raw := r.PostFormValue("qty")
	h.serve(w, r, func(ctx context.Context, p *cartPage) (render.Outcome, error) {
		return p.renderer.ChangeQuantity(ctx, productID, raw)
	})
}

// POST /cart/clear
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	confirmed := r.FormValue("confirm") == "yes"
	h.serve(w, r, func(ctx context.Context, p *cartPage) (render.Outcome, error) {
		return p.renderer.Clear(ctx, confirmed)
	})
}

// POST /cart/checkout
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(ctx context.Context, p *cartPage) (render.Outcome, error) {
		return p.renderer.Checkout(ctx)
	})
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Product.ID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product id must be positive")
		return
	}
	if req.Product.Name == "" {
		respondError(w, http.StatusBadRequest, "invalid_product", "product name is required")
		return
	}
	if req.Product.Price < 0 {
		respondError(w, http.StatusBadRequest, "invalid_price", "price must not be negative")
		return
	}

	state := h.state(ctx)
	if err := state.Add(ctx, req.Product, req.Qty); err != nil {
		respondError(w, http.StatusInternalServerError, "storage_error", "cart could not be saved")
		return
	}

	cart := state.Items(ctx)
	respondJSON(w, http.StatusCreated, CartSummaryDTO{Count: cart.Count(), Total: cart.Total()})
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cart := h.state(ctx).Items(ctx)
	respondJSON(w, http.StatusOK, CartResponseDTO{Items: cart, Count: cart.Count(), Total: cart.Total()})
}

func productIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "product_id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be an integer")
		return 0, false
	}
	return productID, true
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil && !errors.Is(err, http.ErrHandlerTimeout) {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
