package rate

import (
	"context"
	"fmt"
	"time"

	"metalrates/internal/adapters"
	"metalrates/internal/domain"

	"github.com/sirupsen/logrus"
)

const perSourceTimeout = 30 * time.Second

// StaticRates is the last-resort per-gram table.
type StaticRates struct {
	Gold   float64
	Gold22 float64
	Silver float64
}

func (s StaticRates) Quote(now time.Time) domain.ValidatedQuote {
	q := domain.ValidatedQuote{
		Rates:     make(map[domain.Metal]domain.ValidatedRate, 3),
		Source:    domain.SourceEstimated,
		FetchedAt: now,
	}
	for m, v := range map[domain.Metal]float64{
		domain.MetalGold:    s.Gold,
		domain.MetalGold22K: s.Gold22,
		domain.MetalSilver:  s.Silver,
	} {
		if v > 0 {
			q.Rates[m] = domain.ValidatedRate{Metal: m, BuyRate: v, Timestamp: now}
		}
	}
	return q
}

// Resolver walks the sources in priority order and returns the first quote
// that survives normalization and validation. It never fails: when every
// source is exhausted it serves the last persisted rates and then the static table.
type Resolver struct {
	sources    []adapters.QuoteSource
	normalizer *Normalizer
	validator  *Validator
	rateRepo   adapters.RateRepository
	static     StaticRates
	now        func() time.Time
}

func (r *Resolver) Resolve(ctx context.Context) domain.ValidatedQuote {
	for i, src := range r.sources {
		q, err := r.attempt(ctx, src)
		if err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{"source": src.Name(), "priority": i + 1}).Warn("Quote source failed, trying next")
			continue
		}
		logrus.WithFields(logrus.Fields{"source": src.Name(), "metals": len(q.Rates)}).Debug("Quote source succeeded")
		return q
	}

	if q, ok := r.lastPersisted(ctx); ok {
		logrus.Warn("All quote sources failed; serving last persisted rates as estimated")
		return q
	}
	logrus.Warn("All quote sources failed and no persisted rates; serving static estimate")
	return r.static.Quote(r.now())
}

// attempt isolates one source: panics, errors and out-of-bounds data all count as "no data".
func (r *Resolver) attempt(ctx context.Context, src adapters.QuoteSource) (q domain.ValidatedQuote, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("source panicked: %v", p)
		}
	}()

	srcCtx, cancel := context.WithTimeout(ctx, perSourceTimeout)
	defer cancel()

	raw, err := src.Fetch(srcCtx)
	if err != nil {
		return domain.ValidatedQuote{}, err
	}
	if !raw.HasData() {
		return domain.ValidatedQuote{}, fmt.Errorf("source returned no figures")
	}
	if raw.Source == "" {
		raw.Source = src.Name()
	}

	validated, rejected, err := r.validator.Validate(r.normalizer.Normalize(raw))
	for _, rej := range rejected {
		logrus.WithField("source", src.Name()).Warnf("Rejected out-of-bounds figure %s", rej)
	}
	if err != nil {
		return domain.ValidatedQuote{}, err
	}
	return validated, nil
}

func (r *Resolver) lastPersisted(ctx context.Context) (domain.ValidatedQuote, bool) {
	if r.rateRepo == nil {
		return domain.ValidatedQuote{}, false
	}
	rows, err := r.rateRepo.GetAll(ctx)
	if err != nil {
		logrus.WithError(err).Error("Failed to read persisted rates for fallback")
		return domain.ValidatedQuote{}, false
	}

	now := r.now()
	q := domain.ValidatedQuote{Rates: make(map[domain.Metal]domain.ValidatedRate, len(rows)), Source: domain.SourceEstimated, FetchedAt: now}
	for _, row := range rows {
		if row.BuyRate <= 0 || !r.validator.bounds.For(row.Metal).Contains(row.BuyRate) {
			continue
		}
		q.Rates[row.Metal] = domain.ValidatedRate{Metal: row.Metal, BuyRate: row.BuyRate, Timestamp: row.UpdatedAt}
	}
	if _, ok := q.BuyRate(domain.MetalGold); !ok {
		return domain.ValidatedQuote{}, false
	}
	return q, true
}

func NewResolver(sources []adapters.QuoteSource, normalizer *Normalizer, validator *Validator, rateRepo adapters.RateRepository, static StaticRates) *Resolver {
	return &Resolver{
		sources:    sources,
		normalizer: normalizer,
		validator:  validator,
		rateRepo:   rateRepo,
		static:     static,
		now:        time.Now,
	}
}
