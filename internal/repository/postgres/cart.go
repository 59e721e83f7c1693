package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/database"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

const cartLineColumns = `id, cart_id, product_id, quantity, created_at, updated_at`

// CartRepository stores cart lines. The (cart_id, product_id) unique
// constraint keeps one line per product and cart.
type CartRepository struct {
	pool database.DBTX
}

func NewCartRepository(pool database.DBTX) *CartRepository {
	return &CartRepository{pool: pool}
}

func (r *CartRepository) AddLine(ctx context.Context, line *domain.CartLine) (created bool, err error) {
	query := fmt.Sprintf(`
		INSERT INTO cart_lines (id, cart_id, product_id, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (cart_id, product_id) DO UPDATE
		SET quantity = cart_lines.quantity + EXCLUDED.quantity,
		    updated_at = EXCLUDED.updated_at
		RETURNING %s, (xmax = 0) AS inserted`, cartLineColumns)

	ctx, end := database.TraceQuery(ctx, "AddCartLine", query)
	defer func() { end(err) }()

	var stored domain.CartLine
	err = r.pool.QueryRow(ctx, query,
		line.ID,
		line.CartID,
		line.ProductID,
		line.Quantity,
		line.CreatedAt,
		line.UpdatedAt,
	).Scan(
		&stored.ID,
		&stored.CartID,
		&stored.ProductID,
		&stored.Quantity,
		&stored.CreatedAt,
		&stored.UpdatedAt,
		&created,
	)
	if err != nil {
		if database.IsOutOfRange(err) {
			return false, apperrors.InvalidInput("quantity is too large")
		}
		return false, storeError("upsert cart line", err)
	}

	*line = stored
	return created, nil
}

func (r *CartRepository) ListByCart(ctx context.Context, cartID string) (_ []domain.CartLine, err error) {
	query := fmt.Sprintf(`SELECT %s FROM cart_lines WHERE cart_id = $1 ORDER BY created_at DESC, id`, cartLineColumns)

	ctx, end := database.TraceQuery(ctx, "ListCartLines", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, cartID)
	if err != nil {
		return nil, storeError("list cart lines", err)
	}
	return collectCartLines(rows)
}

func (r *CartRepository) UpdateQuantity(ctx context.Context, id string, quantity int) (_ *domain.CartLine, err error) {
	query := fmt.Sprintf(`
		UPDATE cart_lines SET quantity = $1, updated_at = $2
		WHERE id = $3
		RETURNING %s`, cartLineColumns)

	ctx, end := database.TraceQuery(ctx, "UpdateCartLineQuantity", query)
	defer func() { end(err) }()

	line, err := scanCartLine(r.pool.QueryRow(ctx, query, quantity, time.Now().UTC(), id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("cart item", id)
		}
		return nil, storeError("update cart line", err)
	}
	return line, nil
}

func (r *CartRepository) Delete(ctx context.Context, id string) (err error) {
	const query = `DELETE FROM cart_lines WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "DeleteCartLine", query)
	defer func() { end(err) }()

	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return storeError("delete cart line", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("cart item", id)
	}
	return nil
}

func (r *CartRepository) Clear(ctx context.Context, cartID string) (_ int64, err error) {
	const query = `DELETE FROM cart_lines WHERE cart_id = $1`

	ctx, end := database.TraceQuery(ctx, "ClearCart", query)
	defer func() { end(err) }()

	ct, err := r.pool.Exec(ctx, query, cartID)
	if err != nil {
		return 0, storeError("clear cart", err)
	}
	return ct.RowsAffected(), nil
}

func collectCartLines(rows pgx.Rows) ([]domain.CartLine, error) {
	defer rows.Close()

	lines := []domain.CartLine{}
	for rows.Next() {
		l, err := scanCartLine(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cart line row: %w", err)
		}
		lines = append(lines, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("iterate cart line rows", err)
	}
	return lines, nil
}

func scanCartLine(row pgx.Row) (*domain.CartLine, error) {
	var l domain.CartLine
	err := row.Scan(
		&l.ID,
		&l.CartID,
		&l.ProductID,
		&l.Quantity,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}
