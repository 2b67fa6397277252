package auth

import (
	"net"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const limiterIdleTTL = 10 * time.Minute

// ClientLimiter throttles each client address with its own token bucket.
// Buckets of idle clients expire from the cache.
type ClientLimiter struct {
	rps     rate.Limit
	burst   int
	buckets *gocache.Cache
}

func (l *ClientLimiter) bucket(key string) *rate.Limiter {
	if v, ok := l.buckets.Get(key); ok {
		l.buckets.SetDefault(key, v)
		return v.(*rate.Limiter)
	}
	b := rate.NewLimiter(l.rps, l.burst)
	if err := l.buckets.Add(key, b, gocache.DefaultExpiration); err != nil {
		// another request created it first
		if v, ok := l.buckets.Get(key); ok {
			return v.(*rate.Limiter)
		}
	}
	return b
}

func (l *ClientLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientKey(r)
		if !l.bucket(key).Allow() {
			logrus.WithFields(logrus.Fields{"method": r.Method, "path": r.URL.Path, "client": key}).Warn("Rate limit exceeded")
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, http.StatusText(http.StatusTooManyRequests))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func NewClientLimiter(rps float64, burst int) *ClientLimiter {
	if rps <= 0 {
		rps = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &ClientLimiter{
		rps:     rate.Limit(rps),
		burst:   burst,
		buckets: gocache.New(limiterIdleTTL, 2*limiterIdleTTL),
	}
}
