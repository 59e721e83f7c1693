package http

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

func validProductFields() map[string]string {
	return map[string]string{
		"name":        "Runner",
		"priceBefore": "120",
		"priceAfter":  "99.50",
		"description": "Light running shoe",
		"category":    testCategoryID,
		"isOffer":     "true",
	}
}

// ============================================================================
// POST /api/products/addProduct
// ============================================================================

func TestCreateProduct_Success(t *testing.T) {
	ts := newTestServer(t)
	ts.categories.On("GetByID", mock.Anything, testCategoryID).Return(testCategory(), nil)
	ts.products.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Product) bool {
		return p.Name == "Runner" && p.PriceAfter.String() == "99.5" && p.IsOffer && len(p.Images) == 2
	})).Return(nil)

	req := multipartRequest(t, http.MethodPost, "/api/products/addProduct", validProductFields(), pngUploads("images", 2)...)
	rec := ts.do(req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, "Product created successfully", body["message"])

	product := body["product"].(map[string]any)
	assert.Equal(t, "Runner", product["name"])
	assert.Equal(t, "99.5", product["priceAfter"])
	assert.Equal(t, "120", product["priceBefore"])
	assert.Equal(t, true, product["isOffer"])
	assert.Len(t, product["images"], 2)
	category := product["category"].(map[string]any)
	assert.Equal(t, "Shoes", category["name"])
	assert.Equal(t, 2, ts.images.Len())
	ts.products.AssertExpectations(t)
}

func TestCreateProduct_Validation(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(map[string]string)
		wantField string
		wantMsg   string
	}{
		{"missing name", func(f map[string]string) { delete(f, "name") }, "name", "is required"},
		{"blank description", func(f map[string]string) { f["description"] = "  " }, "description", "is required"},
		{"negative price", func(f map[string]string) { f["priceAfter"] = "-1" }, "priceAfter", "must be a non-negative number no greater than 9999999999.99"},
		{"non-numeric price", func(f map[string]string) { f["priceBefore"] = "cheap" }, "priceBefore", "must be a non-negative number no greater than 9999999999.99"},
		{"price too large", func(f map[string]string) { f["priceAfter"] = "10000000000" }, "priceAfter", "must be a non-negative number no greater than 9999999999.99"},
		{"bad category", func(f map[string]string) { f["category"] = "shoes" }, "category", "must be a valid UUID"},
		{"bad offer flag", func(f map[string]string) { f["isOffer"] = "maybe" }, "isOffer", "must be true or false"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			fields := validProductFields()
			tt.mutate(fields)

			rec := ts.do(multipartRequest(t, http.MethodPost, "/api/products/addProduct", fields, pngUploads("images", 1)...))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, "VALIDATION_ERROR", body["code"])
			assert.Equal(t, tt.wantMsg, body["fields"].(map[string]any)[tt.wantField])
			assert.Zero(t, ts.images.Len())
		})
	}
}

func TestCreateProduct_RequiresImage(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(multipartRequest(t, http.MethodPost, "/api/products/addProduct", validProductFields()))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "at least one image is required", decodeBody(t, rec)["message"])
}

func TestCreateProduct_TooManyImages(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(multipartRequest(t, http.MethodPost, "/api/products/addProduct", validProductFields(), pngUploads("images", 11)...))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "at most 10 images may be uploaded", decodeBody(t, rec)["message"])
	assert.Zero(t, ts.images.Len())
}

func TestCreateProduct_UnknownCategory(t *testing.T) {
	ts := newTestServer(t)
	ts.categories.On("GetByID", mock.Anything, testCategoryID).Return(nil, apperrors.NotFound("category", testCategoryID))

	rec := ts.do(multipartRequest(t, http.MethodPost, "/api/products/addProduct", validProductFields(), pngUploads("images", 1)...))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Zero(t, ts.images.Len())
	ts.products.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// ============================================================================
// GET /api/products/product/...
// ============================================================================

func TestListProducts_DanglingCategoryIsNull(t *testing.T) {
	ts := newTestServer(t)
	ts.products.On("List", mock.Anything, repository.ProductFilter{}).Return([]domain.Product{*testProduct()}, nil)
	ts.categories.On("GetByIDs", mock.Anything, []string{testCategoryID}).Return([]domain.Category{}, nil)

	rec := ts.do(jsonRequest(http.MethodGet, "/api/products/product/getAll", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Products retrieved successfully", body["message"])
	assert.Equal(t, float64(1), body["count"])
	products := body["products"].([]any)
	first := products[0].(map[string]any)
	assert.Contains(t, first, "category")
	assert.Nil(t, first["category"])
}

func TestListOffers(t *testing.T) {
	ts := newTestServer(t)
	ts.products.On("List", mock.Anything, repository.ProductFilter{OffersOnly: true}).Return([]domain.Product{*testProduct()}, nil)
	ts.categories.On("GetByIDs", mock.Anything, []string{testCategoryID}).Return([]domain.Category{*testCategory()}, nil)

	rec := ts.do(jsonRequest(http.MethodGet, "/api/products/product/offers", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Offered products retrieved successfully", body["message"])
	first := body["products"].([]any)[0].(map[string]any)
	assert.Equal(t, "Shoes", first["category"].(map[string]any)["name"])
}

func TestSearchProducts_EchoesTrimmedQuery(t *testing.T) {
	ts := newTestServer(t)
	ts.products.On("List", mock.Anything, repository.ProductFilter{Query: "run"}).Return([]domain.Product{}, nil)

	rec := ts.do(jsonRequest(http.MethodGet, "/api/products/product/search?query="+url.QueryEscape("  run "), nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Search completed successfully","query":"run","products":[],"count":0}`, rec.Body.String())
}

func TestSearchProducts_MissingQuery(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(jsonRequest(http.MethodGet, "/api/products/product/search?query=%20", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "search query is required", decodeBody(t, rec)["message"])
}

func TestListByCategory(t *testing.T) {
	ts := newTestServer(t)
	ts.categories.On("GetByID", mock.Anything, testCategoryID).Return(testCategory(), nil)
	categoryID := testCategoryID
	ts.products.On("List", mock.Anything, repository.ProductFilter{CategoryID: &categoryID}).Return([]domain.Product{*testProduct()}, nil)

	rec := ts.do(jsonRequest(http.MethodGet, "/api/products/product/getByCategory/"+testCategoryID, nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	category := body["category"].(map[string]any)
	assert.Equal(t, testCategoryID, category["id"])
	assert.Equal(t, "Shoes", category["name"])
	assert.Equal(t, float64(1), body["count"])
}

func TestListByCategory_UnknownCategory(t *testing.T) {
	ts := newTestServer(t)
	ts.categories.On("GetByID", mock.Anything, testCategoryID).Return(nil, apperrors.NotFound("category", testCategoryID))

	rec := ts.do(jsonRequest(http.MethodGet, "/api/products/product/getByCategory/"+testCategoryID, nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	ts.products.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestGetProduct(t *testing.T) {
	ts := newTestServer(t)
	ts.products.On("GetByID", mock.Anything, testProductID).Return(testProduct(), nil)
	ts.categories.On("GetByIDs", mock.Anything, []string{testCategoryID}).Return([]domain.Category{*testCategory()}, nil)

	rec := ts.do(jsonRequest(http.MethodGet, "/api/products/product/getById/"+testProductID, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Product retrieved successfully", body["message"])
	assert.Equal(t, testProductID, body["product"].(map[string]any)["id"])
}

func TestGetProduct_NotFound(t *testing.T) {
	ts := newTestServer(t)
	ts.products.On("GetByID", mock.Anything, testProductID).Return(nil, apperrors.NotFound("product", testProductID))

	rec := ts.do(jsonRequest(http.MethodGet, "/api/products/product/getById/"+testProductID, nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ============================================================================
// PUT /api/products/updateProduct/{id}
// ============================================================================

func TestUpdateProduct_PartialFields(t *testing.T) {
	ts := newTestServer(t)
	ts.products.On("GetByID", mock.Anything, testProductID).Return(testProduct(), nil)
	ts.products.On("Update", mock.Anything, mock.MatchedBy(func(p *domain.Product) bool {
		return p.PriceAfter.String() == "80" && !p.IsOffer &&
			p.Name == "Runner" && p.PriceBefore.String() == "120" && len(p.Images) == 1
	})).Return(nil)
	ts.categories.On("GetByIDs", mock.Anything, []string{testCategoryID}).Return([]domain.Category{*testCategory()}, nil)

	rec := ts.do(multipartRequest(t, http.MethodPut, "/api/products/updateProduct/"+testProductID,
		map[string]string{"priceAfter": "80", "isOffer": "false"}))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, "Product updated successfully", body["message"])
	assert.Equal(t, "80", body["product"].(map[string]any)["priceAfter"])
	ts.products.AssertExpectations(t)
}

func TestUpdateProduct_ReplacesImages(t *testing.T) {
	ts := newTestServer(t)
	ts.products.On("GetByID", mock.Anything, testProductID).Return(testProduct(), nil)
	ts.products.On("Update", mock.Anything, mock.MatchedBy(func(p *domain.Product) bool {
		return len(p.Images) == 3
	})).Return(nil)
	ts.categories.On("GetByIDs", mock.Anything, []string{testCategoryID}).Return([]domain.Category{*testCategory()}, nil)

	rec := ts.do(multipartRequest(t, http.MethodPut, "/api/products/updateProduct/"+testProductID, nil, pngUploads("images", 3)...))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 3, ts.images.Len())
}

func TestUpdateProduct_InvalidPrice(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(multipartRequest(t, http.MethodPut, "/api/products/updateProduct/"+testProductID,
		map[string]string{"priceBefore": "-3"}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	ts.products.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestUpdateProduct_NotFound(t *testing.T) {
	ts := newTestServer(t)
	ts.products.On("GetByID", mock.Anything, testProductID).Return(nil, apperrors.NotFound("product", testProductID))

	rec := ts.do(multipartRequest(t, http.MethodPut, "/api/products/updateProduct/"+testProductID,
		map[string]string{"name": "New"}))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ============================================================================
// DELETE /api/products/deleteProduct/{id}
// ============================================================================

func TestDeleteProduct(t *testing.T) {
	ts := newTestServer(t)
	ts.products.On("GetByID", mock.Anything, testProductID).Return(testProduct(), nil)
	ts.products.On("Delete", mock.Anything, testProductID).Return(nil)

	rec := ts.do(jsonRequest(http.MethodDelete, "/api/products/deleteProduct/"+testProductID, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Product deleted successfully"}`, rec.Body.String())
	ts.products.AssertExpectations(t)
}
