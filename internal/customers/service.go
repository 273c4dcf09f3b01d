package customers

import (
	"context"

	"support-lookup/internal/apperr"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetByTaxID returns the customer with an exact cpf match.
func (s *Service) GetByTaxID(ctx context.Context, taxID string) (Customer, error) {
	if taxID == "" {
		return Customer{}, apperr.Validation("cpf")
	}
	return s.repo.FindByTaxID(ctx, taxID)
}
