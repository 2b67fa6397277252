package cache

import (
	"fmt"
	"metalrates/internal/domain"
	"time"

	"github.com/dgraph-io/ristretto"
)

const lastQuoteKey = "quote:last"

// RistrettoQuoteCache keeps the last validated external quote for a TTL so the
// sources are not hit more often than that.
type RistrettoQuoteCache struct {
	cache *ristretto.Cache
	ttl   time.Duration
}

func NewQuoteCache(ttl time.Duration) (*RistrettoQuoteCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 100,
		MaxCost:     10,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create quote cache failed: %w", err)
	}
	return &RistrettoQuoteCache{cache: c, ttl: ttl}, nil
}

func (c *RistrettoQuoteCache) Get() (domain.ValidatedQuote, bool) {
	if v, ok := c.cache.Get(lastQuoteKey); ok {
		q, ok := v.(domain.ValidatedQuote)
		return q, ok
	}
	return domain.ValidatedQuote{}, false
}

// Set replaces the cached quote. A non-positive TTL disables caching.
func (c *RistrettoQuoteCache) Set(q domain.ValidatedQuote) {
	if c.ttl <= 0 {
		return
	}
	c.cache.SetWithTTL(lastQuoteKey, q, 1, c.ttl)
	// writes are buffered; make the new value visible to the next Get
	c.cache.Wait()
}

func (c *RistrettoQuoteCache) Close() { c.cache.Close() }
