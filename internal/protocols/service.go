package protocols

import (
	"context"
	"time"

	"support-lookup/internal/apperr"
	"support-lookup/internal/clock"
	"support-lookup/internal/deadline"
)

// Service resolves protocol details and their deadline state.
//
// Time is never read internally: callers pass now, so deadline and
// freshness evaluation stay deterministic under test.
type Service struct {
	repo Repository
	zone *time.Location
}

func NewService(repo Repository, zone *time.Location) *Service {
	if zone == nil {
		zone = time.UTC
	}
	return &Service{repo: repo, zone: zone}
}

// GetByProtocol looks up a protocol by exact number.
func (s *Service) GetByProtocol(ctx context.Context, protocol string) (ProtocolDetail, error) {
	if protocol == "" {
		return ProtocolDetail{}, apperr.Validation("protocolo")
	}
	return s.repo.FindByProtocol(ctx, protocol)
}

// FindActiveByPhone returns the active protocol for phone: the most recent one
// created within windowHours of now. apperr.ErrNotFound means there is none.
func (s *Service) FindActiveByPhone(ctx context.Context, phone string, now time.Time, windowHours int) (ProtocolDetail, error) {
	if phone == "" {
		return ProtocolDetail{}, apperr.Validation("telefone")
	}
	// Boundary computed once per call and bound as a single parameter.
	since := deadline.Cutoff(now, windowHours)
	return s.repo.FindLatestByPhoneSince(ctx, phone, since)
}

// Describe projects d into its response view with deadline state at now.
func (s *Service) Describe(d ProtocolDetail, now time.Time, windowHours int) DetailView {
	st := deadline.Evaluate(now, d.CreatedAt, windowHours)
	return DetailView{
		Protocol:    d.Protocol,
		CreatedAt:   clock.Format(d.CreatedAt, s.zone, clock.DisplayLayoutZoned),
		OnTime:      st.OnTime,
		PhoneNumber: d.PhoneNumber,
		Custom1:     d.Custom1,
		Custom2:     d.Custom2,
		Custom3:     d.Custom3,
		Custom4:     d.Custom4,
	}
}
