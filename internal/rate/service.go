package rate

import (
	"context"
	"fmt"
	"math"

	"metalrates/internal/adapters"
	"metalrates/internal/domain"
)

// Service is the entry point for rate reads and admin margin writes.
type Service struct {
	engine     *Engine
	marginRepo adapters.MarginRepository
	maxMargin  float64
}

func (s *Service) Current(ctx context.Context) domain.RatePayload {
	return s.engine.Current(ctx)
}

// SetMargin stores the margin of a base metal and republishes right away with the
// last known buy rates, without waiting for the next tick.
func (s *Service) SetMargin(ctx context.Context, metal domain.Metal, amount float64) (domain.RatePayload, error) {
	if !metal.IsMarginBearing() {
		return domain.RatePayload{}, fmt.Errorf("%w: margins are set on gold or silver, got %q", domain.ErrInvalidMetal, metal)
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return domain.RatePayload{}, fmt.Errorf("%w: not a finite number", domain.ErrInvalidMargin)
	}
	if s.maxMargin > 0 && math.Abs(amount) > s.maxMargin {
		return domain.RatePayload{}, fmt.Errorf("%w: |%.2f| exceeds %.2f", domain.ErrInvalidMargin, amount, s.maxMargin)
	}

	if _, err := s.marginRepo.Upsert(ctx, metal, amount); err != nil {
		return domain.RatePayload{}, fmt.Errorf("save margin: %w", err)
	}
	return s.engine.Rebuild(ctx), nil
}

func (s *Service) Margins(ctx context.Context) (map[domain.Metal]float64, error) {
	return s.marginRepo.GetAll(ctx)
}

func NewService(engine *Engine, marginRepo adapters.MarginRepository, maxMargin float64) *Service {
	return &Service{engine: engine, marginRepo: marginRepo, maxMargin: maxMargin}
}
