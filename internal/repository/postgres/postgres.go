// Package postgres implements the repositories on PostgreSQL through pgx.
package postgres

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/pkg/database"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// storeError wraps a failed statement, marking connection failures as
// Unavailable so they surface as 503 and values too large for their column as
// InvalidInput.
func storeError(op string, err error) error {
	if database.IsUnavailable(err) {
		return apperrors.Unavailable("data store is unavailable", fmt.Errorf("%s: %w", op, err))
	}
	if database.IsOutOfRange(err) {
		return apperrors.InvalidInput("a quantity or amount is out of range")
	}
	return fmt.Errorf("%s: %w", op, err)
}

// money renders an amount with two decimals, the scale of every amount column.
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func parseMoney(column, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse %s %q: %w", column, s, err)
	}
	return d, nil
}

// likePattern builds an ILIKE pattern matching q anywhere, with LIKE
// metacharacters in q taken literally.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(q) + "%"
}

func marshalJSON(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal json column: %w", err)
	}
	return b, nil
}
