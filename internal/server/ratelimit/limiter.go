// Package ratelimit meters API clients with token buckets shared per route class.
package ratelimit

import (
	"sync"
	"time"
)

const (
	sweepInterval = 5 * time.Minute
	// idleTTL is longer than any policy needs to refill, so swept buckets were full
	idleTTL = time.Hour
)

// Decision is the outcome of one Allow call. Limit is zero when the request
// was not metered.
type Decision struct {
	Allowed    bool
	Class      string
	Limit      int
	Remaining  int
	Reset      time.Time
	RetryAfter time.Duration
}

type bucket struct {
	tokens  float64
	updated time.Time
}

type bucketKey struct {
	client string
	class  string
}

// Limiter meters clients per route class
type Limiter struct {
	enabled  bool
	rules    []Rule
	policies map[string]Policy
	allow    map[string]bool
	deny     map[string]bool
	now      func() time.Time

	mu      sync.Mutex
	buckets map[bucketKey]*bucket

	done chan struct{}
	once sync.Once
}

// New starts a limiter for the API's routes. Call Stop when done.
func New(s Settings) *Limiter {
	return newLimiter(s, time.Now)
}

func newLimiter(s Settings, now func() time.Time) *Limiter {
	l := &Limiter{
		enabled:  s.Enabled,
		rules:    Routes(),
		policies: s.policies(),
		allow:    parseSet(s.Whitelist),
		deny:     parseSet(s.Blacklist),
		now:      now,
		buckets:  make(map[bucketKey]*bucket),
		done:     make(chan struct{}),
	}
	if l.enabled {
		go l.sweepEvery(sweepInterval)
	}
	return l
}

// Policy returns the budget of a route class
func (l *Limiter) Policy(class string) Policy {
	return l.policies[class]
}

// Allow charges the request's cost to the client's bucket for its route class
func (l *Limiter) Allow(client, method, path string) Decision {
	if !l.enabled || l.allow[client] {
		return Decision{Allowed: true}
	}
	if l.deny[client] {
		return Decision{}
	}

	rule := Match(l.rules, method, path)
	if rule.Class == "" {
		return Decision{Allowed: true, Class: rule.Class}
	}
	p := l.policies[rule.Class]
	cost := float64(max(rule.Cost, 1))
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	k := bucketKey{client: client, class: rule.Class}
	b, ok := l.buckets[k]
	if !ok {
		b = &bucket{tokens: p.capacity(), updated: now}
		l.buckets[k] = b
	}
	b.tokens = min(p.capacity(), b.tokens+now.Sub(b.updated).Seconds()*p.perSecond())
	b.updated = now

	d := Decision{Class: rule.Class, Limit: p.Limit}
	if b.tokens >= cost {
		b.tokens -= cost
		d.Allowed = true
	} else {
		d.RetryAfter = p.wait(cost - b.tokens)
	}
	d.Remaining = int(b.tokens)
	d.Reset = now.Add(p.wait(p.capacity() - b.tokens))
	return d
}

func (l *Limiter) sweepEvery(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.sweep(l.now().Add(-idleTTL))
		case <-l.done:
			return
		}
	}
}

// sweep drops buckets untouched since cutoff and returns how many it dropped
func (l *Limiter) sweep(cutoff time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for k, b := range l.buckets {
		if b.updated.Before(cutoff) {
			delete(l.buckets, k)
			n++
		}
	}
	return n
}

// Stop ends the background sweep. It is safe to call more than once.
func (l *Limiter) Stop() {
	l.once.Do(func() { close(l.done) })
}
