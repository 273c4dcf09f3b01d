package calls

import (
	"context"
	"database/sql"
	"sync"

	"support-lookup/internal/apperr"
)

type Repository interface {
	Insert(ctx context.Context, protocol, callID string) (Registration, error)
}

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Insert(ctx context.Context, protocol, callID string) (Registration, error) {
	const q = `
INSERT INTO registros_chamadas (protocolo, id_chamada)
VALUES ($1, $2)
RETURNING id, protocolo, id_chamada
`
	var reg Registration
	if err := r.db.QueryRowContext(ctx, q, protocol, callID).Scan(
		&reg.ID,
		&reg.Protocol,
		&reg.CallID,
	); err != nil {
		return Registration{}, apperr.Store("insert registro_chamada", err)
	}
	return reg, nil
}

// MemoryRepo is an in-memory repository for tests. IDs start at 1.
type MemoryRepo struct {
	mu   sync.Mutex
	rows []Registration
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) Insert(ctx context.Context, protocol, callID string) (Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg := Registration{ID: int64(len(r.rows) + 1), Protocol: protocol, CallID: callID}
	r.rows = append(r.rows, reg)
	return reg, nil
}

func (r *MemoryRepo) Rows() []Registration {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Registration, len(r.rows))
	copy(out, r.rows)
	return out
}
