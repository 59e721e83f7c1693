package repository

import (
	"context"

	"github.com/utafrali/storefront/internal/domain"
)

// CategoryRepository persists categories.
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	GetByName(ctx context.Context, name string) (*domain.Category, error)
	// GetByIDs returns the categories that exist among ids, in no particular
	// order. Unknown ids are ignored.
	GetByIDs(ctx context.Context, ids []string) ([]domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
	Update(ctx context.Context, category *domain.Category) error
	Delete(ctx context.Context, id string) error
}

// ProductFilter narrows List. Query is matched case-insensitively against
// name and description.
type ProductFilter struct {
	CategoryID *string
	OffersOnly bool
	Query      string
}

// ProductRepository persists products.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	// GetByIDs returns the products that exist among ids. Unknown ids are
	// ignored.
	GetByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
	// List returns matching products newest-first.
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, error)
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id string) error
}

// CartRepository persists cart lines.
type CartRepository interface {
	// AddLine inserts line, or adds its quantity to the existing line for the
	// same cart and product. line is overwritten with the stored row and
	// created reports whether a new line was inserted.
	AddLine(ctx context.Context, line *domain.CartLine) (created bool, err error)
	// ListByCart returns the lines of a cart newest-first.
	ListByCart(ctx context.Context, cartID string) ([]domain.CartLine, error)
	UpdateQuantity(ctx context.Context, id string, quantity int) (*domain.CartLine, error)
	Delete(ctx context.Context, id string) error
	// Clear removes every line of a cart and returns how many were removed.
	Clear(ctx context.Context, cartID string) (int64, error)
}

// OrderBuilder turns a cart snapshot into an order. products holds the
// products that still exist, keyed by id.
type OrderBuilder func(lines []domain.CartLine, products map[string]*domain.Product) (*domain.Order, error)

// OrderRepository persists orders.
type OrderRepository interface {
	// Checkout atomically removes the lines of cartID, builds an order from
	// them and stores it. If build or the insert fails the cart is left
	// untouched.
	Checkout(ctx context.Context, cartID string, build OrderBuilder) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	// List returns all orders newest-first.
	List(ctx context.Context) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id, status string) (*domain.Order, error)
	Delete(ctx context.Context, id string) error
}
