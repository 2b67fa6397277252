package adapters

import (
	"context"
	"metalrates/internal/domain"
	"time"

	"github.com/google/uuid"
)

// QuoteSource is one external channel able to produce raw metal quotes.
// Implementations report every failure as an error; they never panic past Fetch.
type QuoteSource interface {
	Name() string
	Fetch(ctx context.Context) (domain.RawQuote, error)
}

type RateRepository interface {
	UpsertRates(ctx context.Context, rates []domain.StoredRate) error
	GetAll(ctx context.Context) ([]domain.StoredRate, error)
}

type MarginRepository interface {
	GetAll(ctx context.Context) (map[domain.Metal]float64, error)
	Upsert(ctx context.Context, metal domain.Metal, amount float64) (domain.Margin, error)
}

type RateLockRepository interface {
	Create(ctx context.Context, lock domain.RateLock) (domain.RateLock, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.RateLock, error)
	MarkFulfilled(ctx context.Context, id uuid.UUID, at time.Time) (domain.RateLock, error)
}

type SettingsRepository interface {
	Get(ctx context.Context) (domain.Settings, error)
	Save(ctx context.Context, s domain.Settings) error
}

// QuoteCache memoizes the last validated quote for a TTL.
type QuoteCache interface {
	Get() (domain.ValidatedQuote, bool)
	Set(q domain.ValidatedQuote)
}

// Publisher pushes a payload to subscribers.
type Publisher interface {
	Publish(ctx context.Context, payload domain.RatePayload) error
}
