package rate

import (
	"context"
	"sync"
	"time"

	"metalrates/internal/adapters"
	"metalrates/internal/domain"

	"github.com/stretchr/testify/mock"
)

// --- Testify mocks ---

type MockQuoteSource struct {
	mock.Mock
	name string
}

func (m *MockQuoteSource) Name() string { return m.name }

func (m *MockQuoteSource) Fetch(ctx context.Context) (domain.RawQuote, error) {
	args := m.Called(ctx)
	q, _ := args.Get(0).(domain.RawQuote)
	return q, args.Error(1)
}

type MockRateRepository struct{ mock.Mock }

func (m *MockRateRepository) UpsertRates(ctx context.Context, rates []domain.StoredRate) error {
	args := m.Called(ctx, rates)
	return args.Error(0)
}

func (m *MockRateRepository) GetAll(ctx context.Context) ([]domain.StoredRate, error) {
	args := m.Called(ctx)
	rows, _ := args.Get(0).([]domain.StoredRate)
	return rows, args.Error(1)
}

type MockMarginRepository struct{ mock.Mock }

func (m *MockMarginRepository) GetAll(ctx context.Context) (map[domain.Metal]float64, error) {
	args := m.Called(ctx)
	margins, _ := args.Get(0).(map[domain.Metal]float64)
	return margins, args.Error(1)
}

func (m *MockMarginRepository) Upsert(ctx context.Context, metal domain.Metal, amount float64) (domain.Margin, error) {
	args := m.Called(ctx, metal, amount)
	mg, _ := args.Get(0).(domain.Margin)
	return mg, args.Error(1)
}

type MockPublisher struct{ mock.Mock }

func (m *MockPublisher) Publish(ctx context.Context, payload domain.RatePayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

// memCache is an in-memory QuoteCache with an adjustable clock.
type memCache struct {
	mu    sync.Mutex
	q     *domain.ValidatedQuote
	setAt time.Time
	ttl   time.Duration
	now   func() time.Time
	sets  int
}

func newMemCache(ttl time.Duration, now func() time.Time) *memCache {
	return &memCache{ttl: ttl, now: now}
}

func (c *memCache) Get() (domain.ValidatedQuote, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.q == nil || c.now().Sub(c.setAt) >= c.ttl {
		return domain.ValidatedQuote{}, false
	}
	return *c.q, true
}

func (c *memCache) Set(q domain.ValidatedQuote) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.q = &q
	c.setAt = c.now()
	c.sets++
}

// clock is a settable time source shared by the engine and its collaborators.
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *clock {
	return &clock{t: time.Date(2025, 3, 10, 11, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

var (
	testGoldBounds   = domain.Bounds{Min: 6000, Max: 90000}
	testSilverBounds = domain.Bounds{Min: 80, Max: 500}
	testStatic       = StaticRates{Gold: 16288, Gold22: 14931, Silver: 285}
)

func testBounds() BoundsTable {
	return NewBoundsTable(testGoldBounds, testSilverBounds, 0.916)
}

type engineFixture struct {
	engine  *Engine
	sources []*MockQuoteSource
	rates   *MockRateRepository
	margins *MockMarginRepository
	pub     *MockPublisher
	cache   *memCache
	clock   *clock
}

// newEngineFixture wires an engine over mocks. Persisting and publishing are
// accepted by default; tests that care assert on the recorded calls.
func newEngineFixture(sources ...*MockQuoteSource) *engineFixture {
	f := &engineFixture{
		sources: sources,
		rates:   new(MockRateRepository),
		margins: new(MockMarginRepository),
		pub:     new(MockPublisher),
		clock:   newClock(),
	}
	f.cache = newMemCache(60*time.Second, f.clock.Now)
	f.rates.On("UpsertRates", mock.Anything, mock.Anything).Return(nil).Maybe()
	f.pub.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()

	srcs := make([]adapters.QuoteSource, 0, len(sources))
	for _, s := range sources {
		srcs = append(srcs, s)
	}
	bounds := testBounds()
	resolver := NewResolver(srcs, NewFamilyNormalizer(nil, nil, 0.916), NewValidator(bounds), f.rates, testStatic)
	resolver.now = f.clock.Now

	f.engine = NewEngine(EngineDeps{
		Resolver:    resolver,
		Builder:     NewPayloadBuilder(bounds, testStatic),
		Cache:       f.cache,
		MarginRepo:  f.margins,
		RateRepo:    f.rates,
		Publisher:   f.pub,
		Gold22Ratio: 0.916,
		TTL:         60 * time.Second,
	})
	f.engine.now = f.clock.Now
	return f
}

func newSource(name string) *MockQuoteSource {
	return &MockQuoteSource{name: name}
}

func (f *engineFixture) publishedPayloads() []domain.RatePayload {
	var out []domain.RatePayload
	for _, c := range f.pub.Calls {
		if c.Method == "Publish" {
			out = append(out, c.Arguments.Get(1).(domain.RatePayload))
		}
	}
	return out
}
