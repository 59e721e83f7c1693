package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	"github.com/utafrali/storefront/pkg/database"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

const productColumns = `id, name, price_before::text, price_after::text, description,
	category_id, is_offer, images, created_at, updated_at`

// ProductRepository stores products in the products table. Images are kept
// as a JSONB array in upload order.
type ProductRepository struct {
	pool database.DBTX
}

func NewProductRepository(pool database.DBTX) *ProductRepository {
	return &ProductRepository{pool: pool}
}

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) (err error) {
	const query = `
		INSERT INTO products (id, name, price_before, price_after, description,
			category_id, is_offer, images, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	ctx, end := database.TraceQuery(ctx, "CreateProduct", query)
	defer func() { end(err) }()

	images, err := marshalJSON(p.Images)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, query,
		p.ID,
		p.Name,
		money(p.PriceBefore),
		money(p.PriceAfter),
		p.Description,
		p.CategoryID,
		p.IsOffer,
		images,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return storeError("insert product", err)
	}
	return nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (_ *domain.Product, err error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, productColumns)

	ctx, end := database.TraceQuery(ctx, "GetProduct", query)
	defer func() { end(err) }()

	p, err := scanProduct(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("product", id)
		}
		return nil, storeError("get product", err)
	}
	return p, nil
}

func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = ANY($1)`, productColumns)
	return queryProducts(ctx, r.pool, "GetProductsByIDs", query, ids)
}

func (r *ProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, error) {
	var (
		conds []string
		args  []any
	)
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		conds = append(conds, fmt.Sprintf("category_id = $%d", len(args)))
	}
	if filter.OffersOnly {
		conds = append(conds, "is_offer")
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, likePattern(q))
		conds = append(conds, fmt.Sprintf("(name ILIKE $%[1]d OR description ILIKE $%[1]d)", len(args)))
	}

	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}
	query := fmt.Sprintf(`SELECT %s FROM products %s ORDER BY created_at DESC, id`, productColumns, where)

	return queryProducts(ctx, r.pool, "ListProducts", query, args...)
}

func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) (err error) {
	const query = `
		UPDATE products
		SET name = $1, price_before = $2, price_after = $3, description = $4,
		    category_id = $5, is_offer = $6, images = $7, updated_at = $8
		WHERE id = $9`

	ctx, end := database.TraceQuery(ctx, "UpdateProduct", query)
	defer func() { end(err) }()

	images, err := marshalJSON(p.Images)
	if err != nil {
		return err
	}

	ct, err := r.pool.Exec(ctx, query,
		p.Name,
		money(p.PriceBefore),
		money(p.PriceAfter),
		p.Description,
		p.CategoryID,
		p.IsOffer,
		images,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		return storeError("update product", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", p.ID)
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) (err error) {
	const query = `DELETE FROM products WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "DeleteProduct", query)
	defer func() { end(err) }()

	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return storeError("delete product", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", id)
	}
	return nil
}

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func queryProducts(ctx context.Context, q querier, op, query string, args ...any) (_ []domain.Product, err error) {
	ctx, end := database.TraceQuery(ctx, op, query)
	defer func() { end(err) }()

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, storeError("list products", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("iterate product rows", err)
	}
	return products, nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var (
		p                       domain.Product
		priceBefore, priceAfter string
		images                  []byte
	)
	err := row.Scan(
		&p.ID,
		&p.Name,
		&priceBefore,
		&priceAfter,
		&p.Description,
		&p.CategoryID,
		&p.IsOffer,
		&images,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if p.PriceBefore, err = parseMoney("price_before", priceBefore); err != nil {
		return nil, err
	}
	if p.PriceAfter, err = parseMoney("price_after", priceAfter); err != nil {
		return nil, err
	}

	p.Images = []domain.Image{}
	if len(images) > 0 {
		if err := json.Unmarshal(images, &p.Images); err != nil {
			return nil, fmt.Errorf("unmarshal product images: %w", err)
		}
	}
	return &p, nil
}
