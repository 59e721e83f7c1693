package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	"github.com/utafrali/storefront/pkg/database"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

const orderColumns = `id, name, phone, address, items, subtotal::text, shipping::text,
	total::text, cart_id, status, created_at, updated_at`

// OrderRepository stores orders. Items are kept as a JSONB snapshot.
type OrderRepository struct {
	pool database.DBTX
}

func NewOrderRepository(pool database.DBTX) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Checkout runs in one transaction: the cart's lines are deleted and
// returned, their products read, the order built and inserted. Lines added to
// the cart after the delete are not part of the order and stay in the cart.
func (r *OrderRepository) Checkout(ctx context.Context, cartID string, build repository.OrderBuilder) (_ *domain.Order, err error) {
	ctx, end := database.TraceQuery(ctx, "Checkout", "checkout transaction")
	defer func() { end(err) }()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, storeError("begin checkout", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx,
		fmt.Sprintf(`DELETE FROM cart_lines WHERE cart_id = $1 RETURNING %s`, cartLineColumns),
		cartID,
	)
	if err != nil {
		return nil, storeError("take cart lines", err)
	}
	lines, err := collectCartLines(rows)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].CreatedAt.Before(lines[j].CreatedAt) })

	products := map[string]*domain.Product{}
	if ids := productIDs(lines); len(ids) > 0 {
		found, err := queryProducts(ctx, tx, "GetCheckoutProducts",
			fmt.Sprintf(`SELECT %s FROM products WHERE id = ANY($1)`, productColumns), ids)
		if err != nil {
			return nil, err
		}
		for i := range found {
			products[found[i].ID] = &found[i]
		}
	}

	order, err := build(lines, products)
	if err != nil {
		return nil, err
	}

	items, err := marshalJSON(order.Items)
	if err != nil {
		return nil, err
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO orders (id, name, phone, address, items, subtotal, shipping, total,
			cart_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		order.ID,
		order.Name,
		order.Phone,
		order.Address,
		items,
		money(order.Subtotal),
		money(order.Shipping),
		money(order.Total),
		order.CartID,
		order.Status,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		return nil, storeError("insert order", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, storeError("commit checkout", err)
	}
	return order, nil
}

func productIDs(lines []domain.CartLine) []string {
	seen := make(map[string]struct{}, len(lines))
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.ProductID]; ok {
			continue
		}
		seen[l.ProductID] = struct{}{}
		ids = append(ids, l.ProductID)
	}
	return ids
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (_ *domain.Order, err error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE id = $1`, orderColumns)

	ctx, end := database.TraceQuery(ctx, "GetOrder", query)
	defer func() { end(err) }()

	o, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("order", id)
		}
		return nil, storeError("get order", err)
	}
	return o, nil
}

func (r *OrderRepository) List(ctx context.Context) (_ []domain.Order, err error) {
	query := fmt.Sprintf(`SELECT %s FROM orders ORDER BY created_at DESC, id`, orderColumns)

	ctx, end := database.TraceQuery(ctx, "ListOrders", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, storeError("list orders", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("iterate order rows", err)
	}
	return orders, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id, status string) (_ *domain.Order, err error) {
	query := fmt.Sprintf(`
		UPDATE orders SET status = $1, updated_at = $2
		WHERE id = $3
		RETURNING %s`, orderColumns)

	ctx, end := database.TraceQuery(ctx, "UpdateOrderStatus", query)
	defer func() { end(err) }()

	o, err := scanOrder(r.pool.QueryRow(ctx, query, status, time.Now().UTC(), id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("order", id)
		}
		return nil, storeError("update order status", err)
	}
	return o, nil
}

func (r *OrderRepository) Delete(ctx context.Context, id string) (err error) {
	const query = `DELETE FROM orders WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "DeleteOrder", query)
	defer func() { end(err) }()

	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return storeError("delete order", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("order", id)
	}
	return nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o                         domain.Order
		items                     []byte
		subtotal, shipping, total string
	)
	err := row.Scan(
		&o.ID,
		&o.Name,
		&o.Phone,
		&o.Address,
		&items,
		&subtotal,
		&shipping,
		&total,
		&o.CartID,
		&o.Status,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if o.Subtotal, err = parseMoney("subtotal", subtotal); err != nil {
		return nil, err
	}
	if o.Shipping, err = parseMoney("shipping", shipping); err != nil {
		return nil, err
	}
	if o.Total, err = parseMoney("total", total); err != nil {
		return nil, err
	}

	o.Items = []domain.OrderItem{}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("unmarshal order items: %w", err)
	}
	return &o, nil
}
