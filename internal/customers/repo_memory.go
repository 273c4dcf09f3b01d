package customers

import (
	"context"
	"sync"

	"support-lookup/internal/apperr"
)

// MemoryRepo holds raw rows keyed by cpf, decoded on read like PostgresRepo.
type MemoryRepo struct {
	mu   sync.Mutex
	rows map[string]map[string]any
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{rows: map[string]map[string]any{}}
}

// Put stores a raw row. The row must carry the cpf column.
func (r *MemoryRepo) Put(row map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := make(map[string]any, len(row))
	for k, v := range row {
		cp[k] = v
	}
	key, _ := cp[ColumnTaxID].(string)
	r.rows[key] = cp
}

func (r *MemoryRepo) FindByTaxID(ctx context.Context, taxID string) (Customer, error) {
	r.mu.Lock()
	row, ok := r.rows[taxID]
	r.mu.Unlock()
	if !ok {
		return Customer{}, apperr.ErrNotFound
	}
	c, err := customerFromRow(row)
	if err != nil {
		return Customer{}, apperr.Store("decode cliente", err)
	}
	return c, nil
}
