package rate

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"metalrates/internal/adapters"
	"metalrates/internal/domain"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

type snapshot struct {
	quote   domain.ValidatedQuote
	payload domain.RatePayload
}

// Engine owns the last validated quote and the last built payload. Both are
// replaced together as one immutable snapshot, so readers never see a torn
// update. cycleMu keeps pipeline runs from overlapping; publishMu orders the
// margin-read, build, store, persist and broadcast steps of ticks and margin
// rebuilds against each other.
type Engine struct {
	resolver    *Resolver
	builder     *PayloadBuilder
	cache       adapters.QuoteCache
	marginRepo  adapters.MarginRepository
	rateRepo    adapters.RateRepository
	publisher   adapters.Publisher
	gold22Ratio float64
	ttl         time.Duration
	now         func() time.Time

	state     atomic.Pointer[snapshot]
	cycleMu   sync.Mutex
	publishMu sync.Mutex
	pulls     singleflight.Group
}

// RunCycle runs one pipeline pass and always publishes, even an estimated payload.
// The cycle is not cancelled by ctx once started; sources are bounded by their own timeouts.
func (e *Engine) RunCycle(ctx context.Context) domain.RatePayload {
	ctx = context.WithoutCancel(ctx)

	e.cycleMu.Lock()
	defer e.cycleMu.Unlock()

	q, hit := e.cache.Get()
	if !hit {
		q = e.builder.Complete(e.resolver.Resolve(ctx), e.lastQuote(), e.gold22Ratio)
		if q.Source != domain.SourceEstimated {
			e.cache.Set(q)
		}
	}

	e.publishMu.Lock()
	defer e.publishMu.Unlock()
	return e.publishLocked(ctx, q)
}

// Current returns the latest payload while it is younger than the TTL and
// otherwise runs a cycle. Concurrent callers share one cycle.
func (e *Engine) Current(ctx context.Context) domain.RatePayload {
	if p, ok := e.fresh(); ok {
		return p
	}
	v, _, _ := e.pulls.Do("cycle", func() (any, error) {
		if p, ok := e.fresh(); ok {
			return p, nil
		}
		return e.RunCycle(ctx), nil
	})
	return v.(domain.RatePayload)
}

// Rebuild re-applies current margins to the last known quote and broadcasts
// immediately. Without a previous quote it falls back to a full cycle.
func (e *Engine) Rebuild(ctx context.Context) domain.RatePayload {
	ctx = context.WithoutCancel(ctx)

	e.publishMu.Lock()
	s := e.state.Load()
	if s == nil {
		e.publishMu.Unlock()
		return e.RunCycle(ctx)
	}
	defer e.publishMu.Unlock()
	return e.publishLocked(ctx, s.quote)
}

// Latest returns the last built payload without triggering any work.
func (e *Engine) Latest() (domain.RatePayload, bool) {
	s := e.state.Load()
	if s == nil {
		return domain.RatePayload{}, false
	}
	return s.payload, true
}

func (e *Engine) fresh() (domain.RatePayload, bool) {
	s := e.state.Load()
	if s == nil || e.ttl <= 0 {
		return domain.RatePayload{}, false
	}
	if e.now().Sub(s.payload.Timestamp) >= e.ttl {
		return domain.RatePayload{}, false
	}
	return s.payload, true
}

func (e *Engine) lastQuote() domain.ValidatedQuote {
	if s := e.state.Load(); s != nil {
		return s.quote
	}
	return domain.ValidatedQuote{}
}

// publishLocked must be called with publishMu held.
func (e *Engine) publishLocked(ctx context.Context, q domain.ValidatedQuote) domain.RatePayload {
	payload := e.builder.Build(q, e.loadMargins(ctx), e.now())
	e.state.Store(&snapshot{quote: q, payload: payload})

	e.persist(ctx, payload)
	if err := e.publisher.Publish(ctx, payload); err != nil {
		logrus.WithError(err).Error("Failed to broadcast rate payload")
	}
	return payload
}

func (e *Engine) loadMargins(ctx context.Context) map[domain.Metal]float64 {
	margins, err := e.marginRepo.GetAll(ctx)
	if err == nil {
		return margins
	}
	logrus.WithError(err).Error("Failed to load margins; reusing margins of the last payload")
	out := make(map[domain.Metal]float64, 2)
	if s := e.state.Load(); s != nil {
		for _, r := range s.payload.Rates {
			if r.Metal.IsMarginBearing() {
				out[r.Metal] = r.Margin
			}
		}
	}
	return out
}

func (e *Engine) persist(ctx context.Context, p domain.RatePayload) {
	rows := make([]domain.StoredRate, 0, len(p.Rates))
	for _, r := range p.Rates {
		rows = append(rows, domain.StoredRate{
			Metal:       r.Metal,
			BuyRate:     r.BuyRate,
			DisplayRate: r.DisplayRate,
			Margin:      r.Margin,
			Source:      p.Source,
			UpdatedAt:   p.Timestamp,
		})
	}
	if err := e.rateRepo.UpsertRates(ctx, rows); err != nil {
		logrus.WithError(err).Error("Failed to persist rates")
	}
}

type EngineDeps struct {
	Resolver    *Resolver
	Builder     *PayloadBuilder
	Cache       adapters.QuoteCache
	MarginRepo  adapters.MarginRepository
	RateRepo    adapters.RateRepository
	Publisher   adapters.Publisher
	Gold22Ratio float64
	TTL         time.Duration
}

func NewEngine(deps EngineDeps) *Engine {
	return &Engine{
		resolver:    deps.Resolver,
		builder:     deps.Builder,
		cache:       deps.Cache,
		marginRepo:  deps.MarginRepo,
		rateRepo:    deps.RateRepo,
		publisher:   deps.Publisher,
		gold22Ratio: deps.Gold22Ratio,
		ttl:         deps.TTL,
		now:         time.Now,
	}
}
