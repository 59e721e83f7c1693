package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/service"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/validator"
)

// CategoryHandler handles HTTP requests for category endpoints.
type CategoryHandler struct {
	service *service.CategoryService
	logger  *slog.Logger
}

// NewCategoryHandler creates a new category HTTP handler.
func NewCategoryHandler(svc *service.CategoryService, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request / Response DTOs ---

type createCategoryForm struct {
	Name string `form:"name" validate:"notblank,max=200"`
}

type categoryResponse struct {
	Message  string           `json:"message"`
	Category *domain.Category `json:"category"`
}

type categoryListResponse struct {
	Message    string            `json:"message"`
	Categories []domain.Category `json:"categories"`
	Count      int               `json:"count"`
}

// --- Handlers ---

// CreateCategory handles POST /api/categories/addCategory (multipart/form-data
// with a name field and one image file).
func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r, 1); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	defer cleanupForm(r)

	name, _ := formValue(r, "name")
	if err := validator.Validate(createCategoryForm{Name: name}); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	files, err := formImages(r, "image", 1)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if len(files) == 0 {
		httputil.WriteError(w, r, apperrors.InvalidInput("image is required"), h.logger)
		return
	}

	category, err := h.service.CreateCategory(r.Context(), name, &files[0])
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, categoryResponse{
		Message:  "Category created successfully",
		Category: category,
	})
}

// ListCategories handles GET /api/categories/category/getAll.
func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, categoryListResponse{
		Message:    "Categories retrieved successfully",
		Categories: categories,
		Count:      len(categories),
	})
}

// GetCategory handles GET /api/categories/category/getById/{id}.
func (h *CategoryHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, "category id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	category, err := h.service.GetCategory(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, categoryResponse{
		Message:  "Category retrieved successfully",
		Category: category,
	})
}

// UpdateCategory handles PUT /api/categories/updateCategory/{id}. Both the
// name field and the image file are optional.
func (h *CategoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, "category id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := parseForm(w, r, 1); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	defer cleanupForm(r)

	var input service.UpdateCategoryInput
	if name, ok := formValue(r, "name"); ok {
		input.Name = &name
	}

	files, err := formImages(r, "image", 1)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if len(files) == 1 {
		input.Image = &files[0]
	}

	category, err := h.service.UpdateCategory(r.Context(), id, input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, categoryResponse{
		Message:  "Category updated successfully",
		Category: category,
	})
}

// DeleteCategory handles DELETE /api/categories/deleteCategory/{id}.
func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, "category id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DeleteCategory(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteMessage(w, http.StatusOK, "Category deleted successfully")
}
