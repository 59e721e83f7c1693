package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/event"
	"github.com/utafrali/storefront/internal/imagestore"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// CategoryService implements the business logic for category operations.
type CategoryService struct {
	repo     repository.CategoryRepository
	images   imagestore.Store
	producer *event.Producer
	logger   *slog.Logger
}

// NewCategoryService creates a new category service.
func NewCategoryService(repo repository.CategoryRepository, images imagestore.Store, producer *event.Producer, logger *slog.Logger) *CategoryService {
	return &CategoryService{
		repo:     repo,
		images:   images,
		producer: producer,
		logger:   logger,
	}
}

// UpdateCategoryInput holds the parameters for updating a category. Nil or
// blank fields are left unchanged.
type UpdateCategoryInput struct {
	Name  *string
	Image *imagestore.File
}

// CreateCategory uploads the image and stores a new category. The name is
// checked before the upload so a duplicate does not leave an orphaned image.
func (s *CategoryService) CreateCategory(ctx context.Context, name string, image *imagestore.File) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.InvalidInput("category name is required")
	}
	if image == nil {
		return nil, apperrors.InvalidInput("category image is required")
	}
	if err := s.ensureNameFree(ctx, name); err != nil {
		return nil, err
	}

	img, err := s.images.Upload(ctx, imagestore.CategoryFolder, *image)
	if err != nil {
		return nil, fmt.Errorf("upload category image: %w", err)
	}

	category := domain.NewCategory(name, img)
	if err := s.repo.Create(ctx, category); err != nil {
		removeImages(ctx, s.images, s.logger, img.PublicID)
		return nil, fmt.Errorf("create category: %w", err)
	}

	if err := s.producer.PublishCategoryCreated(ctx, category); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish category.created event",
			slog.String("category_id", category.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "category created",
		slog.String("category_id", category.ID),
		slog.String("name", category.Name),
	)
	return category, nil
}

func (s *CategoryService) ensureNameFree(ctx context.Context, name string) error {
	_, err := s.repo.GetByName(ctx, name)
	switch {
	case err == nil:
		return apperrors.AlreadyExists("category", "name", name)
	case errors.Is(err, apperrors.ErrNotFound):
		return nil
	default:
		return fmt.Errorf("look up category name: %w", err)
	}
}

// GetCategory retrieves a category by its ID.
func (s *CategoryService) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get category by id: %w", err)
	}
	return category, nil
}

// ListCategories returns all categories newest-first.
func (s *CategoryService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// UpdateCategory renames a category and/or replaces its image. The old
// image is deleted only after the new one is stored and the record written.
func (s *CategoryService) UpdateCategory(ctx context.Context, id string, input UpdateCategoryInput) (*domain.Category, error) {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get category by id: %w", err)
	}

	if input.Name != nil {
		if name := strings.TrimSpace(*input.Name); name != "" && name != category.Name {
			if err := s.ensureNameFree(ctx, name); err != nil {
				return nil, err
			}
			category.Name = name
		}
	}

	var oldImage string
	if input.Image != nil {
		img, err := s.images.Upload(ctx, imagestore.CategoryFolder, *input.Image)
		if err != nil {
			return nil, fmt.Errorf("upload category image: %w", err)
		}
		oldImage = category.Image.PublicID
		category.Image = img
	}

	category.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, category); err != nil {
		if input.Image != nil {
			removeImages(ctx, s.images, s.logger, category.Image.PublicID)
		}
		return nil, fmt.Errorf("update category: %w", err)
	}
	removeImages(ctx, s.images, s.logger, oldImage)

	if err := s.producer.PublishCategoryUpdated(ctx, category); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish category.updated event",
			slog.String("category_id", category.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "category updated",
		slog.String("category_id", category.ID),
	)
	return category, nil
}

// DeleteCategory removes the category image and then the category. Products
// that reference the category keep their dangling reference.
func (s *CategoryService) DeleteCategory(ctx context.Context, id string) error {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get category by id: %w", err)
	}

	removeImages(ctx, s.images, s.logger, category.Image.PublicID)

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	if err := s.producer.PublishCategoryDeleted(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish category.deleted event",
			slog.String("category_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "category deleted",
		slog.String("category_id", id),
	)
	return nil
}
