package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/validator"
)

// OrderHandler handles HTTP requests for order endpoints.
type OrderHandler struct {
	service *service.OrderService
	logger  *slog.Logger
}

// NewOrderHandler creates a new order HTTP handler.
func NewOrderHandler(svc *service.OrderService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request / Response DTOs ---

// CheckoutRequest is the JSON request body for placing an order. Shipping
// accepts a JSON number or a numeric string; when omitted the configured
// default applies.
type CheckoutRequest struct {
	Name     string           `json:"name" validate:"notblank,max=200"`
	Phone    string           `json:"phone" validate:"notblank,max=50"`
	Address  string           `json:"address" validate:"notblank,max=500"`
	CartID   string           `json:"cartId" validate:"notblank,max=128"`
	Shipping *decimal.Decimal `json:"shipping"`
}

// UpdateStatusRequest is the JSON request body for changing an order status.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending processing completed cancelled"`
}

type checkoutResponse struct {
	Message string              `json:"message"`
	Order   domain.OrderSummary `json:"order"`
}

type orderResponse struct {
	Message string        `json:"message"`
	Order   *domain.Order `json:"order"`
}

type orderListResponse struct {
	Message string         `json:"message"`
	Orders  []domain.Order `json:"orders"`
	Count   int            `json:"count"`
}

// --- Handlers ---

// Checkout handles POST /api/order/checkout.
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	order, err := h.service.Checkout(r.Context(), service.CheckoutInput{
		Name:     req.Name,
		Phone:    req.Phone,
		Address:  req.Address,
		CartID:   req.CartID,
		Shipping: req.Shipping,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, checkoutResponse{
		Message: "Order created successfully",
		Order:   order.Summary(),
	})
}

// ListOrders handles GET /api/order/getAll.
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListOrders(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, orderListResponse{
		Message: "Orders retrieved successfully",
		Orders:  orders,
		Count:   len(orders),
	})
}

// GetOrder handles GET /api/order/getById/{id}.
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, "order id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	order, err := h.service.GetOrder(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, orderResponse{
		Message: "Order retrieved successfully",
		Order:   order,
	})
}

// UpdateStatus handles PUT /api/order/updateStatus/{id}.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, "order id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	order, err := h.service.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, orderResponse{
		Message: "Order status updated successfully",
		Order:   order,
	})
}

// DeleteOrder handles DELETE /api/order/delete/{id}.
func (h *OrderHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, "order id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DeleteOrder(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteMessage(w, http.StatusOK, "Order deleted successfully")
}
