package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/database"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

const categoryColumns = `id, name, image_url, image_public_id, created_at, updated_at`

// CategoryRepository stores categories in the categories table.
type CategoryRepository struct {
	pool database.DBTX
}

func NewCategoryRepository(pool database.DBTX) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

func (r *CategoryRepository) Create(ctx context.Context, c *domain.Category) (err error) {
	const query = `
		INSERT INTO categories (id, name, image_url, image_public_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	ctx, end := database.TraceQuery(ctx, "CreateCategory", query)
	defer func() { end(err) }()

	_, err = r.pool.Exec(ctx, query, c.ID, c.Name, c.Image.URL, c.Image.PublicID, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.AlreadyExists("category", "name", c.Name)
		}
		return storeError("insert category", err)
	}
	return nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	return r.getOne(ctx, "GetCategory", "WHERE id = $1", id, apperrors.NotFound("category", id))
}

func (r *CategoryRepository) GetByName(ctx context.Context, name string) (*domain.Category, error) {
	return r.getOne(ctx, "GetCategoryByName", "WHERE name = $1", name, apperrors.NotFound("category", ""))
}

func (r *CategoryRepository) getOne(ctx context.Context, op, where string, arg any, notFound error) (_ *domain.Category, err error) {
	query := fmt.Sprintf(`SELECT %s FROM categories %s`, categoryColumns, where)

	ctx, end := database.TraceQuery(ctx, op, query)
	defer func() { end(err) }()

	c, err := scanCategory(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound
		}
		return nil, storeError("get category", err)
	}
	return c, nil
}

func (r *CategoryRepository) GetByIDs(ctx context.Context, ids []string) ([]domain.Category, error) {
	if len(ids) == 0 {
		return []domain.Category{}, nil
	}
	query := fmt.Sprintf(`SELECT %s FROM categories WHERE id = ANY($1)`, categoryColumns)
	return r.list(ctx, "GetCategoriesByIDs", query, ids)
}

func (r *CategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	query := fmt.Sprintf(`SELECT %s FROM categories ORDER BY created_at DESC, id`, categoryColumns)
	return r.list(ctx, "ListCategories", query)
}

func (r *CategoryRepository) list(ctx context.Context, op, query string, args ...any) (_ []domain.Category, err error) {
	ctx, end := database.TraceQuery(ctx, op, query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, storeError("list categories", err)
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		categories = append(categories, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("iterate category rows", err)
	}
	return categories, nil
}

func (r *CategoryRepository) Update(ctx context.Context, c *domain.Category) (err error) {
	const query = `
		UPDATE categories
		SET name = $1, image_url = $2, image_public_id = $3, updated_at = $4
		WHERE id = $5`

	ctx, end := database.TraceQuery(ctx, "UpdateCategory", query)
	defer func() { end(err) }()

	ct, err := r.pool.Exec(ctx, query, c.Name, c.Image.URL, c.Image.PublicID, c.UpdatedAt, c.ID)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.AlreadyExists("category", "name", c.Name)
		}
		return storeError("update category", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("category", c.ID)
	}
	return nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id string) (err error) {
	const query = `DELETE FROM categories WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "DeleteCategory", query)
	defer func() { end(err) }()

	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return storeError("delete category", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("category", id)
	}
	return nil
}

func scanCategory(row pgx.Row) (*domain.Category, error) {
	var c domain.Category
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Image.URL,
		&c.Image.PublicID,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
