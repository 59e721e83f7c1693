package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

var upsertCols = append(append([]string{}, cartLineCols...), "inserted")

func TestCartRepository_AddLine_Inserts(t *testing.T) {
	mock := newMock(t)
	repo := NewCartRepository(mock)
	line := &domain.CartLine{ID: lineID, CartID: cartID, ProductID: productID, Quantity: 2, CreatedAt: now, UpdatedAt: now}

	mock.ExpectQuery(`INSERT INTO cart_lines .+ ON CONFLICT \(cart_id, product_id\) DO UPDATE`).
		WithArgs(lineID, cartID, productID, 2, now, now).
		WillReturnRows(pgxmock.NewRows(upsertCols).AddRow(lineID, cartID, productID, 2, now, now, true))

	created, err := repo.AddLine(context.Background(), line)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 2, line.Quantity)
}

func TestCartRepository_AddLine_IncrementsExisting(t *testing.T) {
	mock := newMock(t)
	repo := NewCartRepository(mock)
	line := &domain.CartLine{ID: "fresh-id", CartID: cartID, ProductID: productID, Quantity: 3, CreatedAt: now, UpdatedAt: now}

	mock.ExpectQuery("INSERT INTO cart_lines").
		WithArgs("fresh-id", cartID, productID, 3, now, now).
		WillReturnRows(pgxmock.NewRows(upsertCols).AddRow(lineID, cartID, productID, 5, now.Add(-time.Hour), now, false))

	created, err := repo.AddLine(context.Background(), line)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, lineID, line.ID, "the existing line is returned")
	assert.Equal(t, 5, line.Quantity)
}

func TestCartRepository_AddLine_Overflow(t *testing.T) {
	mock := newMock(t)
	repo := NewCartRepository(mock)
	line := &domain.CartLine{ID: lineID, CartID: cartID, ProductID: productID, Quantity: 2147483647, CreatedAt: now, UpdatedAt: now}

	mock.ExpectQuery("INSERT INTO cart_lines").
		WithArgs(lineID, cartID, productID, 2147483647, now, now).
		WillReturnError(&pgconn.PgError{Code: "22003", Message: "integer out of range"})

	_, err := repo.AddLine(context.Background(), line)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestCartRepository_ListByCart(t *testing.T) {
	mock := newMock(t)
	repo := NewCartRepository(mock)

	mock.ExpectQuery("FROM cart_lines WHERE cart_id = \\$1 ORDER BY created_at DESC").
		WithArgs(cartID).
		WillReturnRows(pgxmock.NewRows(cartLineCols).
			AddRow(lineID, cartID, productID, 1, now, now).
			AddRow("line-2", cartID, product2ID, 4, now, now))

	lines, err := repo.ListByCart(context.Background(), cartID)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, 4, lines[1].Quantity)
}

func TestCartRepository_UpdateQuantity(t *testing.T) {
	mock := newMock(t)
	repo := NewCartRepository(mock)

	mock.ExpectQuery("UPDATE cart_lines SET quantity").
		WithArgs(7, pgxmock.AnyArg(), lineID).
		WillReturnRows(pgxmock.NewRows(cartLineCols).AddRow(lineID, cartID, productID, 7, now, now))
	mock.ExpectQuery("UPDATE cart_lines SET quantity").
		WithArgs(7, pgxmock.AnyArg(), "missing").
		WillReturnError(pgx.ErrNoRows)

	line, err := repo.UpdateQuantity(context.Background(), lineID, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, line.Quantity)

	_, err = repo.UpdateQuantity(context.Background(), "missing", 7)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCartRepository_DeleteAndClear(t *testing.T) {
	mock := newMock(t)
	repo := NewCartRepository(mock)

	mock.ExpectExec("DELETE FROM cart_lines WHERE id").
		WithArgs(lineID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec("DELETE FROM cart_lines WHERE cart_id").
		WithArgs(cartID).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))
	mock.ExpectExec("DELETE FROM cart_lines WHERE cart_id").
		WithArgs("empty-cart").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), lineID), apperrors.ErrNotFound)

	n, err := repo.Clear(context.Background(), cartID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = repo.Clear(context.Background(), "empty-cart")
	require.NoError(t, err)
	assert.Zero(t, n)
}
