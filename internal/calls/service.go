package calls

import (
	"context"

	"support-lookup/internal/apperr"
)

// Service records support calls against protocols.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register inserts a call registration and returns the stored row.
// Both fields are validated before the store is touched.
func (s *Service) Register(ctx context.Context, protocol, callID string) (Registration, error) {
	if protocol == "" {
		return Registration{}, apperr.Validation("protocolo")
	}
	if callID == "" {
		return Registration{}, apperr.Validation("id_chamada")
	}
	return s.repo.Insert(ctx, protocol, callID)
}
