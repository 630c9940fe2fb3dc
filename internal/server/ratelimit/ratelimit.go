// Package ratelimit limits requests per client and route with token buckets.
package ratelimit

import (
	"sync"
	"time"
)

// Info describes the bucket state after a request.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// bucket holds tokens that refill continuously at rate per second.
type bucket struct {
	tokens   float64
	capacity float64
	rate     float64
	last     time.Time
}

func newBucket(r Rule, now time.Time) *bucket {
	window := r.Window
	if window <= 0 {
		window = time.Minute
	}
	capacity := r.Burst
	if capacity <= 0 {
		capacity = r.Limit
	}
	return &bucket{
		tokens:   float64(capacity),
		capacity: float64(capacity),
		rate:     float64(r.Limit) / window.Seconds(),
		last:     now,
	}
}

func (b *bucket) refill(now time.Time) {
	if elapsed := now.Sub(b.last).Seconds(); elapsed > 0 {
		b.tokens = min(b.capacity, b.tokens+elapsed*b.rate)
	}
	b.last = now
}

func (b *bucket) after(tokens float64) time.Duration {
	if tokens <= 0 {
		return 0
	}
	return time.Duration(tokens / b.rate * float64(time.Second))
}

// Limiter keeps one bucket per client, method and matched route.
type Limiter struct {
	cfg Config
	now func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewLimiter creates a limiter. When enabled it sweeps idle buckets in the
// background until Stop is called. A nil config reads the environment.
func NewLimiter(cfg *Config) *Limiter {
	if cfg == nil {
		cfg = FromEnv()
	}
	l := &Limiter{
		cfg:     *cfg,
		now:     time.Now,
		buckets: make(map[string]*bucket),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	if l.cfg.IdleTTL <= 0 {
		l.cfg.IdleTTL = defaultIdleTTL
	}
	if !l.cfg.Enabled {
		close(l.done)
		return l
	}
	go l.sweepLoop()
	return l
}

// Allow takes one token for the request. Routes matched by a prefix rule share
// one bucket, so /developers/{login} cannot be sidestepped by varying the
// login.
func (l *Limiter) Allow(clientID, path, method string) (bool, Info) {
	if !l.cfg.Enabled || l.cfg.Exempt[clientID] {
		return true, Info{Allowed: true}
	}
	rule, limited := l.cfg.match(method, path)
	if !limited || rule.Limit <= 0 {
		return true, Info{Allowed: true}
	}

	key := clientID + " " + method + " " + path
	if rule.Path != "" {
		key = clientID + " " + method + " " + rule.Path
	}

	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		b = newBucket(rule, now)
		l.buckets[key] = b
	}
	b.refill(now)

	info := Info{Limit: rule.Limit}
	if b.tokens >= 1 {
		b.tokens--
		info.Allowed = true
	} else {
		info.RetryAfter = b.after(1 - b.tokens)
	}
	info.Remaining = int(b.tokens)
	info.ResetTime = now.Add(b.after(b.capacity - b.tokens))
	return info.Allowed, info
}

// Stop ends the background sweep. It is safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
	<-l.done
}

func (l *Limiter) sweepLoop() {
	defer close(l.done)
	ticker := time.NewTicker(l.cfg.IdleTTL)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.sweep()
		case <-l.stop:
			return
		}
	}
}

// sweep drops buckets unused for longer than IdleTTL.
func (l *Limiter) sweep() {
	cutoff := l.now().Add(-l.cfg.IdleTTL)
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, b := range l.buckets {
		if b.last.Before(cutoff) {
			delete(l.buckets, key)
		}
	}
}
