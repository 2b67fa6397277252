package booking

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"metalrates/internal/adapters"
	"metalrates/internal/domain"
	"metalrates/internal/pricing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const DefaultLockTTL = 24 * time.Hour

// RateSource yields the payload active at request time.
type RateSource interface {
	Current(ctx context.Context) domain.RatePayload
}

type SettingsSource interface {
	Get(ctx context.Context) (domain.Settings, error)
}

type FreezeRequest struct {
	Metal       string
	WeightGrams float64
	Contact     string
	// nil means the configured default advance
	AdvanceAmount *float64
}

// Manager freezes a display rate for a declared weight. A lock's rate and amounts
// are fixed at creation; only its status moves, locked to fulfilled or (passively) expired.
type Manager struct {
	locks    adapters.RateLockRepository
	rates    RateSource
	settings SettingsSource
	ttl      time.Duration
	now      func() time.Time
}

func (m *Manager) Freeze(ctx context.Context, req FreezeRequest) (domain.RateLock, error) {
	metal, ok := domain.ParseMetal(req.Metal)
	if !ok || !bookable(metal) {
		return domain.RateLock{}, fmt.Errorf("%w: %q cannot be booked", domain.ErrInvalidMetal, req.Metal)
	}
	if math.IsNaN(req.WeightGrams) || math.IsInf(req.WeightGrams, 0) || req.WeightGrams <= 0 {
		return domain.RateLock{}, fmt.Errorf("%w: must be a positive number of grams", domain.ErrInvalidWeight)
	}
	contact := strings.TrimSpace(req.Contact)
	if contact == "" {
		return domain.RateLock{}, domain.ErrInvalidContact
	}

	settings, err := m.settings.Get(ctx)
	if err != nil {
		return domain.RateLock{}, fmt.Errorf("load booking settings: %w", err)
	}
	if !settings.AllowCustomWeight && !offered(settings.WeightsFor(metal), req.WeightGrams) {
		return domain.RateLock{}, fmt.Errorf("%w: %.3f g is not an offered booking weight", domain.ErrInvalidWeight, req.WeightGrams)
	}

	payload := m.rates.Current(ctx)
	displayRate, _ := pricing.MetalCost(metal, req.WeightGrams, pricing.PayloadTable{Payload: payload})
	if displayRate <= 0 {
		return domain.RateLock{}, domain.ErrRateUnavailable
	}
	// import duty and premium are part of the frozen rate
	rate := displayRate
	if f := settings.SurchargeFactor(); f != 1 {
		rate = pricing.Round2(displayRate * f)
	}
	total := req.WeightGrams * rate

	advance := settings.AdvanceAmount
	if req.AdvanceAmount != nil {
		advance = *req.AdvanceAmount
	}
	if math.IsNaN(advance) || advance < 0 {
		advance = 0
	}
	advance = math.Min(advance, total)

	now := m.now()
	lock := domain.RateLock{
		ID:            uuid.New(),
		Metal:         metal,
		WeightGrams:   req.WeightGrams,
		LockedRate:    rate,
		TotalAmount:   pricing.Round2(total),
		AdvanceAmount: pricing.Round2(advance),
		Contact:       contact,
		Status:        domain.LockStatusLocked,
		ExpiresAt:     now.Add(m.ttl),
		CreatedAt:     now,
	}
	created, err := m.locks.Create(ctx, lock)
	if err != nil {
		return domain.RateLock{}, fmt.Errorf("save rate lock: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"lock_id": created.ID,
		"metal":   created.Metal,
		"weight":  created.WeightGrams,
		"rate":    created.LockedRate,
		"display": displayRate,
		"source":  payload.Source,
	}).Info("Rate locked")
	return created, nil
}

// Get returns the lock with its status resolved against the current time.
func (m *Manager) Get(ctx context.Context, id uuid.UUID) (domain.RateLock, error) {
	l, err := m.locks.GetByID(ctx, id)
	if err != nil {
		return domain.RateLock{}, err
	}
	l.Status = l.StatusAt(m.now())
	return l, nil
}

// Fulfill completes a lock that is still locked and unexpired.
func (m *Manager) Fulfill(ctx context.Context, id uuid.UUID) (domain.RateLock, error) {
	l, err := m.locks.MarkFulfilled(ctx, id, m.now())
	if err != nil {
		return domain.RateLock{}, err
	}
	logrus.WithField("lock_id", id).Info("Rate lock fulfilled")
	return l, nil
}

func bookable(m domain.Metal) bool {
	for _, k := range domain.KnownMetals {
		if k == m {
			return true
		}
	}
	return false
}

func offered(weights []float64, w float64) bool {
	for _, o := range weights {
		if math.Abs(o-w) < 1e-9 {
			return true
		}
	}
	return false
}

func NewManager(locks adapters.RateLockRepository, rates RateSource, settings SettingsSource, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	return &Manager{locks: locks, rates: rates, settings: settings, ttl: ttl, now: time.Now}
}
