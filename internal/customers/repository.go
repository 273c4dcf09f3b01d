package customers

import (
	"context"
	"database/sql"

	"support-lookup/internal/apperr"
)

// Repository is the read-only persistence contract for customers.
type Repository interface {
	FindByTaxID(ctx context.Context, taxID string) (Customer, error)
}

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

// FindByTaxID selects every column so that extra customer columns reach the
// caller without a code change.
func (r *PostgresRepo) FindByTaxID(ctx context.Context, taxID string) (Customer, error) {
	const q = `
SELECT *
FROM clientes
WHERE cpf = $1
LIMIT 1
`
	rows, err := r.db.QueryContext(ctx, q, taxID)
	if err != nil {
		return Customer{}, apperr.Store("select cliente", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return Customer{}, apperr.Store("select cliente", err)
		}
		return Customer{}, apperr.ErrNotFound
	}

	row, err := scanMap(rows)
	if err != nil {
		return Customer{}, apperr.Store("scan cliente", err)
	}
	c, err := customerFromRow(row)
	if err != nil {
		return Customer{}, apperr.Store("decode cliente", err)
	}
	return c, nil
}

func scanMap(rows *sql.Rows) (map[string]any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}

	out := make(map[string]any, len(cols))
	for i, col := range cols {
		// text columns may arrive as raw bytes depending on the driver
		if b, ok := vals[i].([]byte); ok {
			out[col] = string(b)
			continue
		}
		out[col] = vals[i]
	}
	return out, nil
}
