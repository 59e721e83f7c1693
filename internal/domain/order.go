package domain

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
)

// DefaultShipping is charged when checkout does not name a shipping amount.
var DefaultShipping = decimal.NewFromInt(50)

func ValidStatuses() []string {
	return []string{OrderStatusPending, OrderStatusProcessing, OrderStatusCompleted, OrderStatusCancelled}
}

func IsValidStatus(status string) bool {
	return slices.Contains(ValidStatuses(), status)
}

// OrderItem is a snapshot of a cart line at checkout. Price is the line
// price (unit price × quantity) and never changes afterwards.
type OrderItem struct {
	ProductName string          `json:"productName"`
	ProductID   string          `json:"productId"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

type Order struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Phone     string          `json:"phone"`
	Address   string          `json:"address"`
	Items     []OrderItem     `json:"items"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Shipping  decimal.Decimal `json:"shipping"`
	Total     decimal.Decimal `json:"total"`
	CartID    string          `json:"cartId"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Customer holds the contact details captured at checkout.
type Customer struct {
	Name    string
	Phone   string
	Address string
}

// NewOrder builds a pending order from a cart snapshot. products maps product
// ids to their current state; lines whose product is missing are skipped.
// A nil shipping charges DefaultShipping.
func NewOrder(customer Customer, cartID string, lines []CartLine, products map[string]*Product, shipping *decimal.Decimal) (*Order, error) {
	if len(lines) == 0 {
		return nil, apperrors.InvalidInput("cart is empty")
	}

	items := make([]OrderItem, 0, len(lines))
	subtotal := decimal.Zero
	for _, line := range lines {
		p, ok := products[line.ProductID]
		if !ok || p == nil {
			continue
		}
		price := p.PriceAfter.Mul(decimal.NewFromInt(int64(line.Quantity)))
		items = append(items, OrderItem{
			ProductName: p.Name,
			ProductID:   p.ID,
			Quantity:    line.Quantity,
			Price:       price,
		})
		subtotal = subtotal.Add(price)
	}
	if len(items) == 0 {
		return nil, apperrors.InvalidInput("no valid items in cart")
	}

	ship := DefaultShipping
	if shipping != nil {
		ship = *shipping
	}

	now := time.Now().UTC()
	return &Order{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(customer.Name),
		Phone:     strings.TrimSpace(customer.Phone),
		Address:   strings.TrimSpace(customer.Address),
		Items:     items,
		Subtotal:  subtotal,
		Shipping:  ship,
		Total:     subtotal.Add(ship),
		CartID:    cartID,
		Status:    OrderStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// OrderSummaryItem is an item as shown in the checkout response.
type OrderSummaryItem struct {
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity"`
	Price       string `json:"price"`
}

// OrderSummary is the trimmed order returned by checkout.
type OrderSummary struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Phone     string             `json:"phone"`
	Address   string             `json:"address"`
	Items     []OrderSummaryItem `json:"items"`
	Subtotal  string             `json:"subtotal"`
	Shipping  string             `json:"shipping"`
	Total     string             `json:"total"`
	Status    string             `json:"status"`
	CreatedAt time.Time          `json:"createdAt"`
}

func (o *Order) Summary() OrderSummary {
	items := make([]OrderSummaryItem, len(o.Items))
	for i, it := range o.Items {
		items[i] = OrderSummaryItem{ProductName: it.ProductName, Quantity: it.Quantity, Price: FormatMoney(it.Price)}
	}
	return OrderSummary{
		ID:        o.ID,
		Name:      o.Name,
		Phone:     o.Phone,
		Address:   o.Address,
		Items:     items,
		Subtotal:  FormatMoney(o.Subtotal),
		Shipping:  FormatMoney(o.Shipping),
		Total:     FormatMoney(o.Total),
		Status:    o.Status,
		CreatedAt: o.CreatedAt,
	}
}
