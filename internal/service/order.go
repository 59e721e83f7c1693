package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/event"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// OrderService implements checkout and order management.
type OrderService struct {
	orders          repository.OrderRepository
	producer        *event.Producer
	logger          *slog.Logger
	defaultShipping decimal.Decimal
}

// NewOrderService creates a new order service. defaultShipping is charged
// when checkout does not name a shipping amount.
func NewOrderService(orders repository.OrderRepository, producer *event.Producer, logger *slog.Logger, defaultShipping decimal.Decimal) *OrderService {
	return &OrderService{
		orders:          orders,
		producer:        producer,
		logger:          logger,
		defaultShipping: defaultShipping,
	}
}

// CheckoutInput holds the parameters for placing an order.
type CheckoutInput struct {
	Name     string
	Phone    string
	Address  string
	CartID   string
	Shipping *decimal.Decimal
}

// Checkout turns the lines of a cart into a pending order and empties the
// cart. Lines whose product was deleted are skipped. The cart is left as it
// was when no order can be placed.
func (s *OrderService) Checkout(ctx context.Context, input CheckoutInput) (*domain.Order, error) {
	cartID := strings.TrimSpace(input.CartID)
	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Phone) == "" ||
		strings.TrimSpace(input.Address) == "" || cartID == "" {
		return nil, apperrors.InvalidInput("name, phone, address and cartId are required")
	}

	shipping := s.defaultShipping
	if input.Shipping != nil {
		if input.Shipping.IsNegative() {
			return nil, apperrors.InvalidInput("shipping must not be negative")
		}
		shipping = *input.Shipping
	}

	customer := domain.Customer{Name: input.Name, Phone: input.Phone, Address: input.Address}
	order, err := s.orders.Checkout(ctx, cartID, func(lines []domain.CartLine, products map[string]*domain.Product) (*domain.Order, error) {
		return domain.NewOrder(customer, cartID, lines, products, &shipping)
	})
	if err != nil {
		return nil, fmt.Errorf("checkout cart %s: %w", cartID, err)
	}
	ordersPlaced.Inc()

	if err := s.producer.PublishOrderPlaced(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.placed event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order placed",
		slog.String("order_id", order.ID),
		slog.String("cart_id", cartID),
		slog.Int("items", len(order.Items)),
		slog.String("total", domain.FormatMoney(order.Total)),
	)
	return order, nil
}

// GetOrder retrieves an order by its ID.
func (s *OrderService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order by id: %w", err)
	}
	return order, nil
}

// ListOrders returns all orders newest-first.
func (s *OrderService) ListOrders(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.orders.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus overwrites the status of an order. Any valid status may
// follow any other.
func (s *OrderService) UpdateStatus(ctx context.Context, id, status string) (*domain.Order, error) {
	if !domain.IsValidStatus(status) {
		return nil, apperrors.InvalidInput(fmt.Sprintf(
			"valid status is required (%s)", strings.Join(domain.ValidStatuses(), ", ")))
	}

	order, err := s.orders.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	if err := s.producer.PublishOrderStatusChanged(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.status_changed event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order status updated",
		slog.String("order_id", order.ID),
		slog.String("status", order.Status),
	)
	return order, nil
}

// DeleteOrder permanently removes an order.
func (s *OrderService) DeleteOrder(ctx context.Context, id string) error {
	if err := s.orders.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete order: %w", err)
	}

	if err := s.producer.PublishOrderDeleted(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.deleted event",
			slog.String("order_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order deleted",
		slog.String("order_id", id),
	)
	return nil
}
