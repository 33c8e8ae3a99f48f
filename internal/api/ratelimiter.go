package api

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// maxTrackedClients bounds the per-client bucket table.
const maxTrackedClients = 4096

// rateLimiter decides whether a client may issue another request. When it
// refuses, it reports how long the client should wait.
type rateLimiter interface {
	Allow(client string) (bool, time.Duration)
}

// WithRateLimit gives every client address its own token bucket refilled at
// ratePerSecond. A zero rate or burst disables limiting.
func WithRateLimit(ratePerSecond float64, burst int) RouterOption {
	return func(cfg *routerConfig) {
		if ratePerSecond <= 0 || burst <= 0 {
			cfg.rateLimiter = nil
			return
		}
		cfg.rateLimiter = newClientLimiter(ratePerSecond, burst)
	}
}

type clientLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	buckets map[string]*rate.Limiter
}

func newClientLimiter(ratePerSecond float64, burst int) *clientLimiter {
	if ratePerSecond <= 0 {
		ratePerSecond = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &clientLimiter{
		limit:   rate.Limit(ratePerSecond),
		burst:   burst,
		buckets: make(map[string]*rate.Limiter),
	}
}

func (c *clientLimiter) Allow(client string) (bool, time.Duration) {
	bucket := c.bucket(client)
	res := bucket.Reserve()
	if !res.OK() {
		return false, time.Second
	}
	if delay := res.Delay(); delay > 0 {
		res.Cancel()
		return false, delay
	}
	return true, 0
}

func (c *clientLimiter) bucket(client string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	if b, ok := c.buckets[client]; ok {
		return b
	}
	if len(c.buckets) >= maxTrackedClients {
		c.evictIdle()
	}
	b := rate.NewLimiter(c.limit, c.burst)
	c.buckets[client] = b
	return b
}

// evictIdle drops buckets that have refilled completely; a client returning
// later gets a fresh, equally full bucket. Caller holds c.mu.
func (c *clientLimiter) evictIdle() {
	for client, b := range c.buckets {
		if b.Tokens() >= float64(c.burst) {
			delete(c.buckets, client)
		}
	}
	if len(c.buckets) >= maxTrackedClients {
		clear(c.buckets)
	}
}

// clientAddr keys rate limiting on the connection's remote host. Forwarding
// headers are ignored since any caller can set them.
func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func retryAfterSeconds(d time.Duration) string {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

func rateLimitMiddleware(limiter rateLimiter, next http.Handler) http.Handler {
	if limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client := clientAddr(r)
		ok, wait := limiter.Allow(client)
		if ok {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Retry-After", retryAfterSeconds(wait))
		writeError(w, http.StatusTooManyRequests, "Too many requests",
			"rate limit exceeded for "+client, "retry after "+retryAfterSeconds(wait)+"s")
	})
}
