package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/imagestore"
	"github.com/utafrali/storefront/internal/repository"
)

var (
	ordersPlaced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_orders_placed_total",
		Help: "Orders created by checkout.",
	})

	cartLinesAdded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_cart_lines_added_total",
		Help: "Add-to-cart requests by result (created, incremented).",
	}, []string{"result"})
)

// uploadImages stores files in order. If one upload fails, the images stored
// so far are removed again.
func uploadImages(ctx context.Context, store imagestore.Store, logger *slog.Logger, folder string, files []imagestore.File) ([]domain.Image, error) {
	images := make([]domain.Image, 0, len(files))
	for _, f := range files {
		img, err := store.Upload(ctx, folder, f)
		if err != nil {
			removeImages(ctx, store, logger, publicIDs(images)...)
			return nil, fmt.Errorf("upload image %s: %w", f.Name, err)
		}
		images = append(images, img)
	}
	return images, nil
}

// removeImages deletes images from the store. Failures are logged only.
func removeImages(ctx context.Context, store imagestore.Store, logger *slog.Logger, ids ...string) {
	for _, id := range ids {
		if id == "" {
			continue
		}
		if err := store.Delete(ctx, id); err != nil {
			logger.WarnContext(ctx, "failed to delete image",
				slog.String("public_id", id),
				slog.String("error", err.Error()),
			)
		}
	}
}

func publicIDs(images []domain.Image) []string {
	ids := make([]string, 0, len(images))
	for _, img := range images {
		ids = append(ids, img.PublicID)
	}
	return ids
}

// productDetails resolves the category of each product with one lookup.
// A product whose category no longer exists gets a nil Category.
func productDetails(ctx context.Context, categories repository.CategoryRepository, products []domain.Product) ([]domain.ProductDetails, error) {
	details := make([]domain.ProductDetails, len(products))
	if len(products) == 0 {
		return details, nil
	}

	seen := make(map[string]struct{}, len(products))
	ids := make([]string, 0, len(products))
	for _, p := range products {
		if _, ok := seen[p.CategoryID]; ok || p.CategoryID == "" {
			continue
		}
		seen[p.CategoryID] = struct{}{}
		ids = append(ids, p.CategoryID)
	}

	found, err := categories.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve product categories: %w", err)
	}
	refs := make(map[string]*domain.CategoryRef, len(found))
	for i := range found {
		refs[found[i].ID] = found[i].Ref()
	}

	for i, p := range products {
		details[i] = domain.ProductDetails{Product: p, Category: refs[p.CategoryID]}
	}
	return details, nil
}
