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

// CartService implements the business logic for cart operations. A cart is
// the set of lines sharing an opaque cart id chosen by the caller.
type CartService struct {
	cart       repository.CartRepository
	products   repository.ProductRepository
	categories repository.CategoryRepository
	producer   *event.Producer
	logger     *slog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(
	cart repository.CartRepository,
	products repository.ProductRepository,
	categories repository.CategoryRepository,
	producer *event.Producer,
	logger *slog.Logger,
) *CartService {
	return &CartService{
		cart:       cart,
		products:   products,
		categories: categories,
		producer:   producer,
		logger:     logger,
	}
}

// AddToCartInput holds the parameters for adding a product to a cart. A nil
// Quantity adds domain.DefaultQuantity.
type AddToCartInput struct {
	CartID    string
	ProductID string
	Quantity  *int
}

// AddToCart adds a product to a cart, or increments the quantity of the
// line that already holds it. created reports whether a new line was made.
func (s *CartService) AddToCart(ctx context.Context, input AddToCartInput) (_ *domain.CartLineDetails, created bool, err error) {
	cartID := strings.TrimSpace(input.CartID)
	if cartID == "" || input.ProductID == "" {
		return nil, false, apperrors.InvalidInput("product id and cart id are required")
	}
	quantity := domain.DefaultQuantity
	if input.Quantity != nil {
		quantity = *input.Quantity
	}
	if quantity < 1 {
		return nil, false, apperrors.InvalidInput("quantity must be at least 1")
	}

	product, err := s.products.GetByID(ctx, input.ProductID)
	if err != nil {
		return nil, false, fmt.Errorf("get product by id: %w", err)
	}

	line := domain.NewCartLine(cartID, product.ID, quantity)
	created, err = s.cart.AddLine(ctx, line)
	if err != nil {
		return nil, false, fmt.Errorf("add cart line: %w", err)
	}

	result := "incremented"
	if created {
		result = "created"
	}
	cartLinesAdded.WithLabelValues(result).Inc()

	if err := s.producer.PublishCartLineAdded(ctx, line, created); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.line_added event",
			slog.String("cart_id", cartID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "cart line "+result,
		slog.String("cart_id", cartID),
		slog.String("line_id", line.ID),
		slog.String("product_id", product.ID),
		slog.Int("quantity", line.Quantity),
	)

	details, err := s.withProducts(ctx, []domain.CartLine{*line})
	if err != nil {
		return nil, false, err
	}
	return &details[0], created, nil
}

// ListCart returns the lines of a cart newest-first and the cart total over
// lines whose product still exists.
func (s *CartService) ListCart(ctx context.Context, cartID string) ([]domain.CartLineDetails, decimal.Decimal, error) {
	cartID = strings.TrimSpace(cartID)
	if cartID == "" {
		return nil, decimal.Zero, apperrors.InvalidInput("cart id is required")
	}

	lines, err := s.cart.ListByCart(ctx, cartID)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("list cart lines: %w", err)
	}

	details, err := s.withProducts(ctx, lines)
	if err != nil {
		return nil, decimal.Zero, err
	}
	return details, domain.CartTotal(details), nil
}

// UpdateQuantity sets the quantity of a line.
func (s *CartService) UpdateQuantity(ctx context.Context, lineID string, quantity int) (*domain.CartLineDetails, error) {
	if quantity < 1 {
		return nil, apperrors.InvalidInput("quantity must be at least 1")
	}

	line, err := s.cart.UpdateQuantity(ctx, lineID, quantity)
	if err != nil {
		return nil, fmt.Errorf("update cart line quantity: %w", err)
	}

	if err := s.producer.PublishCartLineUpdated(ctx, line); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.line_updated event",
			slog.String("line_id", line.ID),
			slog.String("error", err.Error()),
		)
	}

	details, err := s.withProducts(ctx, []domain.CartLine{*line})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

// RemoveLine deletes one line.
func (s *CartService) RemoveLine(ctx context.Context, lineID string) error {
	if err := s.cart.Delete(ctx, lineID); err != nil {
		return fmt.Errorf("delete cart line: %w", err)
	}

	if err := s.producer.PublishCartLineRemoved(ctx, lineID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.line_removed event",
			slog.String("line_id", lineID),
			slog.String("error", err.Error()),
		)
	}
	return nil
}

// ClearCart deletes every line of a cart. Clearing an empty cart succeeds.
func (s *CartService) ClearCart(ctx context.Context, cartID string) (int64, error) {
	cartID = strings.TrimSpace(cartID)
	if cartID == "" {
		return 0, apperrors.InvalidInput("cart id is required")
	}

	removed, err := s.cart.Clear(ctx, cartID)
	if err != nil {
		return 0, fmt.Errorf("clear cart: %w", err)
	}

	if err := s.producer.PublishCartCleared(ctx, cartID, removed); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.cleared event",
			slog.String("cart_id", cartID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "cart cleared",
		slog.String("cart_id", cartID),
		slog.Int64("removed", removed),
	)
	return removed, nil
}

// withProducts resolves the product (and its category) of every line.
// Orphaned lines keep a nil Product.
func (s *CartService) withProducts(ctx context.Context, lines []domain.CartLine) ([]domain.CartLineDetails, error) {
	out := make([]domain.CartLineDetails, len(lines))
	if len(lines) == 0 {
		return out, nil
	}

	products, err := s.products.GetByIDs(ctx, productIDsOf(lines))
	if err != nil {
		return nil, fmt.Errorf("resolve cart products: %w", err)
	}
	details, err := productDetails(ctx, s.categories, products)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*domain.ProductDetails, len(details))
	for i := range details {
		byID[details[i].ID] = &details[i]
	}

	for i, l := range lines {
		out[i] = domain.CartLineDetails{CartLine: l, Product: byID[l.ProductID]}
	}
	return out, nil
}

func productIDsOf(lines []domain.CartLine) []string {
	seen := make(map[string]struct{}, len(lines))
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.ProductID]; ok {
			continue
		}
		seen[l.ProductID] = struct{}{}
		ids = append(ids, l.ProductID)
	}
	return ids
}
