package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const MaxProductImages = 10

// Product is a catalog entry. CategoryID must name an existing category when
// the product is written; the category may be deleted later.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	PriceBefore decimal.Decimal `json:"priceBefore"`
	PriceAfter  decimal.Decimal `json:"priceAfter"`
	Description string          `json:"description"`
	CategoryID  string          `json:"categoryId"`
	IsOffer     bool            `json:"isOffer"`
	Images      []Image         `json:"images"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// ProductDetails is a product with its category resolved. Category is nil
// when the referenced category no longer exists.
type ProductDetails struct {
	Product
	Category *CategoryRef `json:"category"`
}

// ProductInput carries the writable fields of a product.
type ProductInput struct {
	Name        string
	PriceBefore decimal.Decimal
	PriceAfter  decimal.Decimal
	Description string
	CategoryID  string
	IsOffer     bool
}

func NewProduct(in ProductInput, images []Image) *Product {
	now := time.Now().UTC()
	return &Product{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(in.Name),
		PriceBefore: in.PriceBefore,
		PriceAfter:  in.PriceAfter,
		Description: in.Description,
		CategoryID:  in.CategoryID,
		IsOffer:     in.IsOffer,
		Images:      images,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// ProductPatch holds the fields of a partial product update. Nil fields are
// left unchanged.
type ProductPatch struct {
	Name        *string
	PriceBefore *decimal.Decimal
	PriceAfter  *decimal.Decimal
	Description *string
	CategoryID  *string
	IsOffer     *bool
}

func (p ProductPatch) IsEmpty() bool {
	return p.Name == nil && p.PriceBefore == nil && p.PriceAfter == nil &&
		p.Description == nil && p.CategoryID == nil && p.IsOffer == nil
}

// Apply writes the set fields of patch onto p.
func (p *Product) Apply(patch ProductPatch) {
	if patch.Name != nil {
		p.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.PriceBefore != nil {
		p.PriceBefore = *patch.PriceBefore
	}
	if patch.PriceAfter != nil {
		p.PriceAfter = *patch.PriceAfter
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.CategoryID != nil {
		p.CategoryID = *patch.CategoryID
	}
	if patch.IsOffer != nil {
		p.IsOffer = *patch.IsOffer
	}
}

// ImageIDs returns the public ids of the product's images.
func (p *Product) ImageIDs() []string {
	ids := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		if img.PublicID != "" {
			ids = append(ids, img.PublicID)
		}
	}
	return ids
}
