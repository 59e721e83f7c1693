package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const DefaultQuantity = 1

// CartLine is one product in a cart. A cart holds at most one line per
// product.
type CartLine struct {
	ID        string    `json:"id"`
	CartID    string    `json:"cartId"`
	ProductID string    `json:"productId"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CartLineDetails is a line with its product resolved. Product is nil for an
// orphaned line whose product was deleted.
type CartLineDetails struct {
	CartLine
	Product *ProductDetails `json:"product"`
}

func NewCartLine(cartID, productID string, quantity int) *CartLine {
	now := time.Now().UTC()
	return &CartLine{
		ID:        uuid.NewString(),
		CartID:    cartID,
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CartTotal sums priceAfter × quantity over lines whose product resolves.
func CartTotal(lines []CartLineDetails) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		if l.Product == nil {
			continue
		}
		total = total.Add(l.Product.PriceAfter.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

// FormatMoney renders an amount with exactly two decimals.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}
