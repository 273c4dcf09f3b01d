package protocols

import (
	"context"
	"sync"
	"time"

	"support-lookup/internal/apperr"
)

// MemoryRepo is an in-memory repository for tests and local development.
// Selection rules match PostgresRepo.
type MemoryRepo struct {
	mu   sync.Mutex
	rows []ProtocolDetail
}

func NewMemoryRepo(rows ...ProtocolDetail) *MemoryRepo {
	return &MemoryRepo{rows: append([]ProtocolDetail(nil), rows...)}
}

func (r *MemoryRepo) Add(d ProtocolDetail) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, d)
}

func (r *MemoryRepo) FindByProtocol(ctx context.Context, protocol string) (ProtocolDetail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var best ProtocolDetail
	found := false
	for _, d := range r.rows {
		if d.Protocol != protocol {
			continue
		}
		if !found || d.CreatedAt.After(best.CreatedAt) {
			best = d
			found = true
		}
	}
	if !found {
		return ProtocolDetail{}, apperr.ErrNotFound
	}
	return best, nil
}

func (r *MemoryRepo) FindLatestByPhoneSince(ctx context.Context, phone string, since time.Time) (ProtocolDetail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var best ProtocolDetail
	found := false
	for _, d := range r.rows {
		if d.PhoneNumber != phone {
			continue
		}
		if d.CreatedAt.Before(since) {
			continue
		}
		if !found || newer(d, best) {
			best = d
			found = true
		}
	}
	if !found {
		return ProtocolDetail{}, apperr.ErrNotFound
	}
	return best, nil
}

// newer orders by creation instant, then by protocol string.
func newer(a, b ProtocolDetail) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.Protocol > b.Protocol
}
