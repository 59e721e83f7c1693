package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/validator"
)

// ProductHandler handles HTTP requests for product endpoints.
type ProductHandler struct {
	service *service.ProductService
	logger  *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(svc *service.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request / Response DTOs ---

// productForm holds the multipart fields of a new product.
type productForm struct {
	Name        string `form:"name" validate:"notblank,max=500"`
	PriceBefore string `form:"priceBefore" validate:"required,money"`
	PriceAfter  string `form:"priceAfter" validate:"required,money"`
	Description string `form:"description" validate:"notblank"`
	Category    string `form:"category" validate:"required,uuid"`
	IsOffer     string `form:"isOffer" validate:"omitempty,boolean"`
}

type productPatchForm struct {
	Name        string `form:"name" validate:"omitempty,max=500"`
	PriceBefore string `form:"priceBefore" validate:"omitempty,money"`
	PriceAfter  string `form:"priceAfter" validate:"omitempty,money"`
	Category    string `form:"category" validate:"omitempty,uuid"`
	IsOffer     string `form:"isOffer" validate:"omitempty,boolean"`
}

type productResponse struct {
	Message string                 `json:"message"`
	Product *domain.ProductDetails `json:"product"`
}

type productListResponse struct {
	Message  string                  `json:"message"`
	Query    string                  `json:"query,omitempty"`
	Category *domain.CategoryRef     `json:"category,omitempty"`
	Products []domain.ProductDetails `json:"products"`
	Count    int                     `json:"count"`
}

// --- Handlers ---

// CreateProduct handles POST /api/products/addProduct (multipart/form-data
// with up to 10 files under "images").
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r, domain.MaxProductImages); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	defer cleanupForm(r)

	var form productForm
	form.Name, _ = formValue(r, "name")
	form.PriceBefore, _ = formValue(r, "priceBefore")
	form.PriceAfter, _ = formValue(r, "priceAfter")
	form.Description, _ = formValue(r, "description")
	form.Category, _ = formValue(r, "category")
	form.IsOffer, _ = formValue(r, "isOffer")
	if err := validator.Validate(form); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	files, err := formImages(r, "images", domain.MaxProductImages)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	input := domain.ProductInput{
		Name:        form.Name,
		PriceBefore: decimal.RequireFromString(form.PriceBefore),
		PriceAfter:  decimal.RequireFromString(form.PriceAfter),
		Description: form.Description,
		CategoryID:  form.Category,
	}
	if form.IsOffer != "" {
		input.IsOffer, _ = strconv.ParseBool(form.IsOffer)
	}

	product, err := h.service.CreateProduct(r.Context(), input, files)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, productResponse{
		Message: "Product created successfully",
		Product: product,
	})
}

// ListProducts handles GET /api/products/product/getAll.
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListProducts(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, productListResponse{
		Message:  "Products retrieved successfully",
		Products: products,
		Count:    len(products),
	})
}

// ListOffers handles GET /api/products/product/offers.
func (h *ProductHandler) ListOffers(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListOffers(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, productListResponse{
		Message:  "Offered products retrieved successfully",
		Products: products,
		Count:    len(products),
	})
}

// SearchProducts handles GET /api/products/product/search?query=.
func (h *ProductHandler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.SearchProducts(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, productListResponse{
		Message:  "Search completed successfully",
		Query:    strings.TrimSpace(r.URL.Query().Get("query")),
		Products: products,
		Count:    len(products),
	})
}

// ListByCategory handles GET /api/products/product/getByCategory/{categoryId}.
func (h *ProductHandler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := httputil.ParseUUID(w, "category id", chi.URLParam(r, "categoryId"))
	if !ok {
		return
	}

	category, products, err := h.service.ListByCategory(r.Context(), categoryID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, productListResponse{
		Message:  "Products retrieved successfully",
		Category: category.Ref(),
		Products: products,
		Count:    len(products),
	})
}

// GetProduct handles GET /api/products/product/getById/{id}.
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, "product id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, productResponse{
		Message: "Product retrieved successfully",
		Product: product,
	})
}

// UpdateProduct handles PUT /api/products/updateProduct/{id}. Only the fields
// that are sent change; uploaded images replace all existing ones.
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, "product id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := parseForm(w, r, domain.MaxProductImages); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	defer cleanupForm(r)

	var form productPatchForm
	form.Name, _ = formValue(r, "name")
	form.PriceBefore, _ = formValue(r, "priceBefore")
	form.PriceAfter, _ = formValue(r, "priceAfter")
	form.Category, _ = formValue(r, "category")
	form.IsOffer, _ = formValue(r, "isOffer")
	if err := validator.Validate(form); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	var patch domain.ProductPatch
	if form.Name != "" {
		patch.Name = &form.Name
	}
	if form.PriceBefore != "" {
		d := decimal.RequireFromString(form.PriceBefore)
		patch.PriceBefore = &d
	}
	if form.PriceAfter != "" {
		d := decimal.RequireFromString(form.PriceAfter)
		patch.PriceAfter = &d
	}
	if v, ok := formValue(r, "description"); ok {
		patch.Description = &v
	}
	if form.Category != "" {
		patch.CategoryID = &form.Category
	}
	if form.IsOffer != "" {
		b, _ := strconv.ParseBool(form.IsOffer)
		patch.IsOffer = &b
	}

	files, err := formImages(r, "images", domain.MaxProductImages)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	product, err := h.service.UpdateProduct(r.Context(), id, patch, files)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, productResponse{
		Message: "Product updated successfully",
		Product: product,
	})
}

// DeleteProduct handles DELETE /api/products/deleteProduct/{id}.
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, "product id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteMessage(w, http.StatusOK, "Product deleted successfully")
}
