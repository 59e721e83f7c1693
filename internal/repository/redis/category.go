package redis

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
)

const (
	categoryKey     = "category:"
	categoryListKey = "categories:all"
)

// CategoryRepository caches single categories and the full category list.
// Every write drops the list and the written category.
type CategoryRepository struct {
	next  repository.CategoryRepository
	cache cache
}

func NewCategoryRepository(next repository.CategoryRepository, client redis.UniversalClient, ttl time.Duration, logger *slog.Logger) *CategoryRepository {
	return &CategoryRepository{
		next:  next,
		cache: cache{client: client, ttl: ttl, logger: logger},
	}
}

func (r *CategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	if err := r.next.Create(ctx, category); err != nil {
		return err
	}
	r.cache.del(ctx, categoryListKey)
	return nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	var cached domain.Category
	if r.cache.get(ctx, "category", categoryKey+id, &cached) {
		return &cached, nil
	}

	c, err := r.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// A write that commits and invalidates between the read above and this
	// set leaves the old row cached. The entry's TTL bounds that staleness.
	r.cache.set(ctx, categoryKey+id, c)
	return c, nil
}

func (r *CategoryRepository) GetByName(ctx context.Context, name string) (*domain.Category, error) {
	return r.next.GetByName(ctx, name)
}

func (r *CategoryRepository) GetByIDs(ctx context.Context, ids []string) ([]domain.Category, error) {
	return r.next.GetByIDs(ctx, ids)
}

func (r *CategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	var cached []domain.Category
	if r.cache.get(ctx, "category", categoryListKey, &cached) {
		return cached, nil
	}

	categories, err := r.next.List(ctx)
	if err != nil {
		return nil, err
	}
	r.cache.set(ctx, categoryListKey, categories)
	return categories, nil
}

func (r *CategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	if err := r.next.Update(ctx, category); err != nil {
		return err
	}
	r.cache.del(ctx, categoryKey+category.ID, categoryListKey)
	return nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	if err := r.next.Delete(ctx, id); err != nil {
		return err
	}
	r.cache.del(ctx, categoryKey+id, categoryListKey)
	return nil
}
