package http

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// ============================================================================
// POST /api/categories/addCategory
// ============================================================================

func TestCreateCategory_Success(t *testing.T) {
	ts := newTestServer(t)
	ts.categories.On("GetByName", mock.Anything, "Shoes").Return(nil, apperrors.NotFound("category", "Shoes"))
	ts.categories.On("Create", mock.Anything, mock.AnythingOfType("*domain.Category")).Return(nil)

	req := multipartRequest(t, http.MethodPost, "/api/categories/addCategory",
		map[string]string{"name": "  Shoes "},
		upload{field: "image", name: "Shoes Banner.png", data: pngData},
	)
	rec := ts.do(req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, "Category created successfully", body["message"])

	category := body["category"].(map[string]any)
	assert.Equal(t, "Shoes", category["name"])
	assert.NotEmpty(t, category["id"])
	image := category["image"].(map[string]any)
	assert.NotEmpty(t, image["url"])
	assert.NotEmpty(t, image["publicId"])
	assert.Equal(t, 1, ts.images.Len())
	ts.categories.AssertExpectations(t)
}

func TestCreateCategory_MissingName(t *testing.T) {
	ts := newTestServer(t)

	req := multipartRequest(t, http.MethodPost, "/api/categories/addCategory",
		map[string]string{"name": "   "},
		upload{field: "image", name: "a.png", data: pngData},
	)
	rec := ts.do(req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])
	assert.Equal(t, "is required", body["fields"].(map[string]any)["name"])
	assert.Zero(t, ts.images.Len())
}

func TestCreateCategory_MissingImage(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(multipartRequest(t, http.MethodPost, "/api/categories/addCategory", map[string]string{"name": "Shoes"}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "image is required", decodeBody(t, rec)["message"])
}

func TestCreateCategory_RejectsNonImage(t *testing.T) {
	ts := newTestServer(t)

	req := multipartRequest(t, http.MethodPost, "/api/categories/addCategory",
		map[string]string{"name": "Docs"},
		upload{field: "image", name: "cv.png", data: []byte("%PDF-1.7\n1 0 obj")},
	)
	rec := ts.do(req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["message"], "unsupported type")
}

func TestCreateCategory_TooManyImages(t *testing.T) {
	ts := newTestServer(t)

	req := multipartRequest(t, http.MethodPost, "/api/categories/addCategory",
		map[string]string{"name": "Shoes"}, pngUploads("image", 2)...)
	rec := ts.do(req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "only one image may be uploaded", decodeBody(t, rec)["message"])
}

func TestCreateCategory_OversizedImage(t *testing.T) {
	ts := newTestServer(t)

	big := append(append([]byte{}, pngData...), make([]byte, 4<<20)...)
	req := multipartRequest(t, http.MethodPost, "/api/categories/addCategory",
		map[string]string{"name": "Shoes"},
		upload{field: "image", name: "huge.png", data: big},
	)
	rec := ts.do(req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Zero(t, ts.images.Len())
}

func TestCreateCategory_DuplicateName(t *testing.T) {
	ts := newTestServer(t)
	ts.categories.On("GetByName", mock.Anything, "Shoes").Return(testCategory(), nil)

	req := multipartRequest(t, http.MethodPost, "/api/categories/addCategory",
		map[string]string{"name": "Shoes"},
		upload{field: "image", name: "a.png", data: pngData},
	)
	rec := ts.do(req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "ALREADY_EXISTS", decodeBody(t, rec)["code"])
	assert.Zero(t, ts.images.Len())
}

func TestCreateCategory_ConcurrentDuplicateRemovesUpload(t *testing.T) {
	ts := newTestServer(t)
	ts.categories.On("GetByName", mock.Anything, "Shoes").Return(nil, apperrors.NotFound("category", "Shoes"))
	ts.categories.On("Create", mock.Anything, mock.Anything).
		Return(apperrors.AlreadyExists("category", "name", "Shoes"))

	req := multipartRequest(t, http.MethodPost, "/api/categories/addCategory",
		map[string]string{"name": "Shoes"},
		upload{field: "image", name: "a.png", data: pngData},
	)
	rec := ts.do(req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Zero(t, ts.images.Len())
}

// ============================================================================
// GET /api/categories/category/...
// ============================================================================

func TestListCategories(t *testing.T) {
	ts := newTestServer(t)
	ts.categories.On("List", mock.Anything).Return([]domain.Category{*testCategory()}, nil)

	rec := ts.do(jsonRequest(http.MethodGet, "/api/categories/category/getAll", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Categories retrieved successfully", body["message"])
	assert.Equal(t, float64(1), body["count"])
	assert.Len(t, body["categories"], 1)
}

func TestListCategories_EmptyIsArray(t *testing.T) {
	ts := newTestServer(t)
	ts.categories.On("List", mock.Anything).Return([]domain.Category{}, nil)

	rec := ts.do(jsonRequest(http.MethodGet, "/api/categories/category/getAll", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Categories retrieved successfully","categories":[],"count":0}`, rec.Body.String())
}

func TestGetCategory(t *testing.T) {
	ts := newTestServer(t)
	ts.categories.On("GetByID", mock.Anything, testCategoryID).Return(testCategory(), nil)

	rec := ts.do(jsonRequest(http.MethodGet, "/api/categories/category/getById/"+testCategoryID, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Shoes", body["category"].(map[string]any)["name"])
}

func TestGetCategory_NotFound(t *testing.T) {
	ts := newTestServer(t)
	ts.categories.On("GetByID", mock.Anything, testCategoryID).Return(nil, apperrors.NotFound("category", testCategoryID))

	rec := ts.do(jsonRequest(http.MethodGet, "/api/categories/category/getById/"+testCategoryID, nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decodeBody(t, rec)["code"])
}

func TestGetCategory_InvalidID(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(jsonRequest(http.MethodGet, "/api/categories/category/getById/not-a-uuid", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_PARAMETER", decodeBody(t, rec)["code"])
	ts.categories.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestListCategories_StoreDown(t *testing.T) {
	ts := newTestServer(t)
	ts.categories.On("List", mock.Anything).
		Return([]domain.Category(nil), apperrors.Unavailable("data store is unavailable", errors.New("dial tcp: connection refused")))

	rec := ts.do(jsonRequest(http.MethodGet, "/api/categories/category/getAll", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "data store is unavailable", decodeBody(t, rec)["message"])
}

// ============================================================================
// PUT /api/categories/updateCategory/{id}
// ============================================================================

func TestUpdateCategory_NameOnly(t *testing.T) {
	ts := newTestServer(t)
	ts.categories.On("GetByID", mock.Anything, testCategoryID).Return(testCategory(), nil)
	ts.categories.On("GetByName", mock.Anything, "Sneakers").Return(nil, apperrors.NotFound("category", "Sneakers"))
	ts.categories.On("Update", mock.Anything, mock.MatchedBy(func(c *domain.Category) bool {
		return c.Name == "Sneakers" && c.Image.PublicID == "storefront/categories/shoes"
	})).Return(nil)

	rec := ts.do(multipartRequest(t, http.MethodPut, "/api/categories/updateCategory/"+testCategoryID,
		map[string]string{"name": "Sneakers"}))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, "Category updated successfully", body["message"])
	assert.Equal(t, "Sneakers", body["category"].(map[string]any)["name"])
	assert.Zero(t, ts.images.Len())
	ts.categories.AssertExpectations(t)
}

func TestUpdateCategory_ImageOnly(t *testing.T) {
	ts := newTestServer(t)
	ts.categories.On("GetByID", mock.Anything, testCategoryID).Return(testCategory(), nil)
	ts.categories.On("Update", mock.Anything, mock.MatchedBy(func(c *domain.Category) bool {
		return c.Name == "Shoes" && c.Image.PublicID != "storefront/categories/shoes"
	})).Return(nil)

	rec := ts.do(multipartRequest(t, http.MethodPut, "/api/categories/updateCategory/"+testCategoryID, nil,
		upload{field: "image", name: "new.png", data: pngData}))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, ts.images.Len())
	ts.categories.AssertNotCalled(t, "GetByName", mock.Anything, mock.Anything)
}

func TestUpdateCategory_NotFound(t *testing.T) {
	ts := newTestServer(t)
	ts.categories.On("GetByID", mock.Anything, testCategoryID).Return(nil, apperrors.NotFound("category", testCategoryID))

	rec := ts.do(multipartRequest(t, http.MethodPut, "/api/categories/updateCategory/"+testCategoryID,
		map[string]string{"name": "Sneakers"}))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ============================================================================
// DELETE /api/categories/deleteCategory/{id}
// ============================================================================

func TestDeleteCategory(t *testing.T) {
	ts := newTestServer(t)
	ts.categories.On("GetByID", mock.Anything, testCategoryID).Return(testCategory(), nil)
	ts.categories.On("Delete", mock.Anything, testCategoryID).Return(nil)

	rec := ts.do(jsonRequest(http.MethodDelete, "/api/categories/deleteCategory/"+testCategoryID, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Category deleted successfully"}`, rec.Body.String())
	ts.categories.AssertExpectations(t)
}

func TestDeleteCategory_StoreFailure(t *testing.T) {
	ts := newTestServer(t)
	ts.categories.On("GetByID", mock.Anything, testCategoryID).Return(testCategory(), nil)
	ts.categories.On("Delete", mock.Anything, testCategoryID).Return(errors.New("scan: broken pipe"))

	rec := ts.do(jsonRequest(http.MethodDelete, "/api/categories/deleteCategory/"+testCategoryID, nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "an internal error occurred", decodeBody(t, rec)["message"])
}
