package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/validator"
)

// CartHandler handles HTTP requests for cart endpoints.
type CartHandler struct {
	service *service.CartService
	logger  *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(svc *service.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request / Response DTOs ---

// AddToCartRequest is the JSON request body for adding a product to a cart.
// An omitted quantity adds one unit.
type AddToCartRequest struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	CartID    string `json:"cartId" validate:"notblank,max=128"`
	Quantity  *int   `json:"quantity" validate:"omitempty,gte=1,lte=2147483647"`
}

// UpdateQuantityRequest is the JSON request body for setting a line quantity.
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,gte=1,lte=2147483647"`
}

type cartLineResponse struct {
	Message  string                  `json:"message"`
	CartItem *domain.CartLineDetails `json:"cartItem"`
}

type cartListResponse struct {
	Message   string                   `json:"message"`
	CartItems []domain.CartLineDetails `json:"cartItems"`
	Count     int                      `json:"count"`
	Total     string                   `json:"total"`
}

type cartClearedResponse struct {
	Message string `json:"message"`
	Removed int64  `json:"removed"`
}

// --- Handlers ---

// AddToCart handles POST /api/addToCart. A new line answers 201; adding a
// product the cart already holds increments its line and answers 200.
func (h *CartHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req AddToCartRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	line, created, err := h.service.AddToCart(r.Context(), service.AddToCartInput{
		CartID:    req.CartID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if created {
		httputil.WriteJSON(w, http.StatusCreated, cartLineResponse{
			Message:  "Item added to cart successfully",
			CartItem: line,
		})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, cartLineResponse{
		Message:  "Cart item quantity updated successfully",
		CartItem: line,
	})
}

// ListCart handles GET /api/cart/getItems?cartId=.
func (h *CartHandler) ListCart(w http.ResponseWriter, r *http.Request) {
	lines, total, err := h.service.ListCart(r.Context(), r.URL.Query().Get("cartId"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, cartListResponse{
		Message:   "Cart items retrieved successfully",
		CartItems: lines,
		Count:     len(lines),
		Total:     domain.FormatMoney(total),
	})
}

// UpdateQuantity handles PUT /api/cart/updateQuantity/{id}.
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, "cart item id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req UpdateQuantityRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	line, err := h.service.UpdateQuantity(r.Context(), id, *req.Quantity)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, cartLineResponse{
		Message:  "Cart item quantity updated successfully",
		CartItem: line,
	})
}

// RemoveLine handles DELETE /api/cart/deleteItem/{id}.
func (h *CartHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, "cart item id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.RemoveLine(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteMessage(w, http.StatusOK, "Cart item deleted successfully")
}

// ClearCart handles DELETE /api/cart/clear?cartId=.
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	removed, err := h.service.ClearCart(r.Context(), r.URL.Query().Get("cartId"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, cartClearedResponse{
		Message: "Cart cleared successfully",
		Removed: removed,
	})
}
