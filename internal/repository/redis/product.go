package redis

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
)

const productKey = "product:"

// ProductRepository caches products by id. Filtered lists are read from the
// store.
type ProductRepository struct {
	next  repository.ProductRepository
	cache cache
}

func NewProductRepository(next repository.ProductRepository, client redis.UniversalClient, ttl time.Duration, logger *slog.Logger) *ProductRepository {
	return &ProductRepository{
		next:  next,
		cache: cache{client: client, ttl: ttl, logger: logger},
	}
}

func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	return r.next.Create(ctx, product)
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	var cached domain.Product
	if r.cache.get(ctx, "product", productKey+id, &cached) {
		return &cached, nil
	}

	p, err := r.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// A write that commits and invalidates between the read above and this
	// set leaves the old row cached. The entry's TTL bounds that staleness.
	r.cache.set(ctx, productKey+id, p)
	return p, nil
}

func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	return r.next.GetByIDs(ctx, ids)
}

func (r *ProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, error) {
	return r.next.List(ctx, filter)
}

func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	if err := r.next.Update(ctx, product); err != nil {
		return err
	}
	r.cache.del(ctx, productKey+product.ID)
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	if err := r.next.Delete(ctx, id); err != nil {
		return err
	}
	r.cache.del(ctx, productKey+id)
	return nil
}
