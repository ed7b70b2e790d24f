package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/dd0wney/cluso-netcanvas/pkg/logging"
)

// RateLimitConfig configures rate limiting
type RateLimitConfig struct {
	RequestsPerSecond float64       // token refill rate
	BurstSize         int           // bucket capacity
	CleanupInterval   time.Duration // how often idle buckets are dropped
	ClientExpiration  time.Duration // idle time before a bucket is dropped
	MaxClients        int           // tracked client cap; new clients beyond it are refused
}

// DefaultRateLimitConfig suits a dashboard polled by a few dozen browsers
func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		RequestsPerSecond: 20,
		BurstSize:         40,
		CleanupInterval:   5 * time.Minute,
		ClientExpiration:  10 * time.Minute,
		MaxClients:        10000,
	}
}

// tokenBucket implements the token bucket rate limiting algorithm
type tokenBucket struct {
	tokens     float64
	lastRefill time.Time
	mu         sync.Mutex
}

// RateLimiter manages one token bucket per client
type RateLimiter struct {
	config   *RateLimitConfig
	clients  map[string]*tokenBucket
	mu       sync.RWMutex
	now      func() time.Time
	stopOnce sync.Once
	stopChan chan struct{}
}

// NewRateLimiter creates a rate limiter and starts its cleanup loop.
// Call Stop to end the loop.
func NewRateLimiter(config *RateLimitConfig) *RateLimiter {
	if config == nil {
		config = DefaultRateLimitConfig()
	}

	rl := &RateLimiter{
		config:   config,
		clients:  make(map[string]*tokenBucket),
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
	if config.CleanupInterval > 0 {
		go rl.cleanupLoop()
	}
	return rl
}

// Allow reports whether clientID may make a request now. It is false when
// the bucket is empty or the tracked-client cap has been reached.
func (rl *RateLimiter) Allow(clientID string) bool {
	bucket := rl.getBucket(clientID)
	if bucket == nil {
		return false
	}

	bucket.mu.Lock()
	defer bucket.mu.Unlock()

	now := rl.now()
	elapsed := now.Sub(bucket.lastRefill).Seconds()

	bucket.tokens += elapsed * rl.config.RequestsPerSecond
	if bucket.tokens > float64(rl.config.BurstSize) {
		bucket.tokens = float64(rl.config.BurstSize)
	}
	bucket.lastRefill = now

	if bucket.tokens >= 1 {
		bucket.tokens--
		return true
	}
	return false
}

func (rl *RateLimiter) getBucket(clientID string) *tokenBucket {
	rl.mu.RLock()
	bucket, exists := rl.clients[clientID]
	rl.mu.RUnlock()
	if exists {
		return bucket
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if bucket, exists = rl.clients[clientID]; exists {
		return bucket
	}
	if rl.config.MaxClients > 0 && len(rl.clients) >= rl.config.MaxClients {
		return nil
	}

	bucket = &tokenBucket{
		tokens:     float64(rl.config.BurstSize),
		lastRefill: rl.now(),
	}
	rl.clients[clientID] = bucket
	return bucket
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopChan:
			return
		}
	}
}

// cleanup drops buckets idle for longer than ClientExpiration and returns
// how many were dropped.
func (rl *RateLimiter) cleanup() int {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	removed := 0
	for clientID, bucket := range rl.clients {
		bucket.mu.Lock()
		expired := now.Sub(bucket.lastRefill) > rl.config.ClientExpiration
		bucket.mu.Unlock()
		if expired {
			delete(rl.clients, clientID)
			removed++
		}
	}
	return removed
}

// Stop ends the cleanup goroutine. Safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopChan) })
}

// ActiveClients returns the number of tracked clients
func (rl *RateLimiter) ActiveClients() int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	return len(rl.clients)
}

// RateLimit answers 429 with Retry-After once a client's bucket is empty.
// A nil limiter disables the middleware.
func RateLimit(limiter *RateLimiter, clientID func(*http.Request) string, logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		limit := strconv.FormatFloat(limiter.config.RequestsPerSecond, 'f', -1, 64)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := clientID(r)
			if !limiter.Allow(id) {
				logging.FromContext(r.Context(), logger).Warn("rate limit exceeded",
					logging.String("client", id),
					logging.Path(r.URL.Path),
				)
				w.Header().Set("Retry-After", "1")
				w.Header().Set("X-RateLimit-Limit", limit)
				writeError(w, http.StatusTooManyRequests, "Rate limit exceeded, retry after 1 second")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
