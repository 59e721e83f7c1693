package service

import (
	"context"
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

// ProductService implements the business logic for product operations.
type ProductService struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	images     imagestore.Store
	producer   *event.Producer
	logger     *slog.Logger
}

// NewProductService creates a new product service.
func NewProductService(
	products repository.ProductRepository,
	categories repository.CategoryRepository,
	images imagestore.Store,
	producer *event.Producer,
	logger *slog.Logger,
) *ProductService {
	return &ProductService{
		products:   products,
		categories: categories,
		images:     images,
		producer:   producer,
		logger:     logger,
	}
}

// CreateProduct checks the category, uploads the images and stores the
// product.
func (s *ProductService) CreateProduct(ctx context.Context, input domain.ProductInput, files []imagestore.File) (*domain.ProductDetails, error) {
	switch {
	case strings.TrimSpace(input.Name) == "":
		return nil, apperrors.InvalidInput("product name is required")
	case strings.TrimSpace(input.Description) == "":
		return nil, apperrors.InvalidInput("product description is required")
	case input.CategoryID == "":
		return nil, apperrors.InvalidInput("product category is required")
	case input.PriceBefore.IsNegative() || input.PriceAfter.IsNegative():
		return nil, apperrors.InvalidInput("prices must not be negative")
	case len(files) == 0:
		return nil, apperrors.InvalidInput("at least one image is required")
	case len(files) > domain.MaxProductImages:
		return nil, apperrors.InvalidInput(fmt.Sprintf("at most %d images are allowed", domain.MaxProductImages))
	}
	input.Description = strings.TrimSpace(input.Description)

	category, err := s.categories.GetByID(ctx, input.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("get product category: %w", err)
	}

	images, err := uploadImages(ctx, s.images, s.logger, imagestore.ProductFolder, files)
	if err != nil {
		return nil, err
	}

	product := domain.NewProduct(input, images)
	if err := s.products.Create(ctx, product); err != nil {
		removeImages(ctx, s.images, s.logger, publicIDs(images)...)
		return nil, fmt.Errorf("create product: %w", err)
	}

	if err := s.producer.PublishProductCreated(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.created event",
			slog.String("product_id", product.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID),
		slog.String("category_id", product.CategoryID),
		slog.Int("images", len(images)),
	)
	return &domain.ProductDetails{Product: *product, Category: category.Ref()}, nil
}

// GetProduct retrieves a product by its ID with its category resolved.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*domain.ProductDetails, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product by id: %w", err)
	}
	details, err := productDetails(ctx, s.categories, []domain.Product{*product})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

// ListProducts returns all products newest-first.
func (s *ProductService) ListProducts(ctx context.Context) ([]domain.ProductDetails, error) {
	return s.list(ctx, repository.ProductFilter{})
}

// ListOffers returns the products marked as offers.
func (s *ProductService) ListOffers(ctx context.Context) ([]domain.ProductDetails, error) {
	return s.list(ctx, repository.ProductFilter{OffersOnly: true})
}

// SearchProducts matches query case-insensitively against name and
// description.
func (s *ProductService) SearchProducts(ctx context.Context, query string) ([]domain.ProductDetails, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.InvalidInput("search query is required")
	}
	return s.list(ctx, repository.ProductFilter{Query: query})
}

// ListByCategory returns the category and its products. It fails with
// NotFound when the category does not exist.
func (s *ProductService) ListByCategory(ctx context.Context, categoryID string) (*domain.Category, []domain.ProductDetails, error) {
	category, err := s.categories.GetByID(ctx, categoryID)
	if err != nil {
		return nil, nil, fmt.Errorf("get category by id: %w", err)
	}

	products, err := s.products.List(ctx, repository.ProductFilter{CategoryID: &categoryID})
	if err != nil {
		return nil, nil, fmt.Errorf("list products by category: %w", err)
	}

	ref := category.Ref()
	details := make([]domain.ProductDetails, len(products))
	for i, p := range products {
		details[i] = domain.ProductDetails{Product: p, Category: ref}
	}
	return category, details, nil
}

func (s *ProductService) list(ctx context.Context, filter repository.ProductFilter) ([]domain.ProductDetails, error) {
	products, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return productDetails(ctx, s.categories, products)
}

// UpdateProduct applies patch and, when files are given, replaces all
// images. Old images are deleted only after the update is stored.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch, files []imagestore.File) (*domain.ProductDetails, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, apperrors.InvalidInput("product name must not be empty")
	}
	if (patch.PriceBefore != nil && patch.PriceBefore.IsNegative()) ||
		(patch.PriceAfter != nil && patch.PriceAfter.IsNegative()) {
		return nil, apperrors.InvalidInput("prices must not be negative")
	}
	if len(files) > domain.MaxProductImages {
		return nil, apperrors.InvalidInput(fmt.Sprintf("at most %d images are allowed", domain.MaxProductImages))
	}
	if patch.Description != nil {
		d := strings.TrimSpace(*patch.Description)
		patch.Description = &d
	}

	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product by id: %w", err)
	}

	var category *domain.Category
	if patch.CategoryID != nil {
		category, err = s.categories.GetByID(ctx, *patch.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("get product category: %w", err)
		}
	}

	var oldImages []string
	if len(files) > 0 {
		images, err := uploadImages(ctx, s.images, s.logger, imagestore.ProductFolder, files)
		if err != nil {
			return nil, err
		}
		oldImages = product.ImageIDs()
		product.Images = images
	}

	product.Apply(patch)
	product.UpdatedAt = time.Now().UTC()

	if err := s.products.Update(ctx, product); err != nil {
		if len(files) > 0 {
			removeImages(ctx, s.images, s.logger, product.ImageIDs()...)
		}
		return nil, fmt.Errorf("update product: %w", err)
	}
	removeImages(ctx, s.images, s.logger, oldImages...)

	if err := s.producer.PublishProductUpdated(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.updated event",
			slog.String("product_id", product.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product updated",
		slog.String("product_id", product.ID),
	)

	if category != nil {
		return &domain.ProductDetails{Product: *product, Category: category.Ref()}, nil
	}
	details, err := productDetails(ctx, s.categories, []domain.Product{*product})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

// DeleteProduct removes the product images and then the product. Cart lines
// that reference it become orphans.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get product by id: %w", err)
	}

	removeImages(ctx, s.images, s.logger, product.ImageIDs()...)

	if err := s.products.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	if err := s.producer.PublishProductDeleted(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.deleted event",
			slog.String("product_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product deleted",
		slog.String("product_id", id),
	)
	return nil
}
