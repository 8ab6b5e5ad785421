// Package ratelimit implements a sliding-window attempt counter keyed by an
// identifier such as a normalized email address. It gates login and
// password-reset requests before they reach the network.
package ratelimit

import (
	"math"
	"sync"
	"time"

	"github.com/dmitrijs2005/holyculture/internal/timex"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Policy bounds attempts per key within a trailing window.
type Policy struct {
	MaxAttempts int
	Window      time.Duration
}

var (
	LoginPolicy         = Policy{MaxAttempts: 5, Window: 5 * time.Minute}
	PasswordResetPolicy = Policy{MaxAttempts: 3, Window: time.Hour}
)

// Limiter tracks attempt timestamps per key. Stale timestamps are pruned
// lazily whenever a key is read; keys idle for a full window are evicted by
// the underlying expirable LRU. The LRU has no size bound, so a key with
// attempts inside the window is never pushed out by other keys. Safe for
// concurrent use.
type Limiter struct {
	mu       sync.Mutex
	policy   Policy
	clock    timex.Clock
	attempts *expirable.LRU[string, []time.Time]
}

type Option func(*options)

type options struct {
	clock timex.Clock
}

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c timex.Clock) Option {
	return func(o *options) { o.clock = c }
}

func New(policy Policy, opts ...Option) *Limiter {
	o := options{clock: timex.SystemClock{}}
	for _, opt := range opts {
		opt(&o)
	}
	return &Limiter{
		policy:   policy,
		clock:    o.clock,
		attempts: expirable.NewLRU[string, []time.Time](0, nil, policy.Window),
	}
}

func (l *Limiter) Policy() Policy { return l.policy }

// IsLimited prunes attempts older than the window, stores the pruned list
// back and reports whether the remaining count reached MaxAttempts.
func (l *Limiter) IsLimited(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.prune(key)) >= l.policy.MaxAttempts
}

// RecordAttempt appends the current time to key's attempts.
func (l *Limiter) RecordAttempt(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	list, _ := l.attempts.Get(key)
	l.attempts.Add(key, append(list, l.clock.Now()))
}

// Reset forgets every attempt for key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.attempts.Remove(key)
}

// RemainingAttempts is MaxAttempts minus the attempts inside the window,
// never negative.
func (l *Limiter) RemainingAttempts(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return max(0, l.policy.MaxAttempts-len(l.prune(key)))
}

// RetryAfter returns how long until key stops being limited, or 0 when it is
// not limited. It is computed from the retained timestamps: the limit lifts
// once enough of the oldest attempts leave the window.
func (l *Limiter) RetryAfter(key string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	recent := l.prune(key)
	if len(recent) < l.policy.MaxAttempts {
		return 0
	}
	unblocking := recent[len(recent)-l.policy.MaxAttempts]
	wait := l.policy.Window - l.clock.Now().Sub(unblocking)
	if wait < 0 {
		return 0
	}
	return wait
}

// prune must be called with mu held.
func (l *Limiter) prune(key string) []time.Time {
	list, found := l.attempts.Get(key)
	if !found {
		return nil
	}
	now := l.clock.Now()
	recent := make([]time.Time, 0, len(list))
	for _, ts := range list {
		if now.Sub(ts) < l.policy.Window {
			recent = append(recent, ts)
		}
	}
	if len(recent) == 0 {
		l.attempts.Remove(key)
		return nil
	}
	l.attempts.Add(key, recent)
	return recent
}

// Minutes rounds d up to whole minutes, with a minimum of one for any
// positive duration.
func Minutes(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Minutes()))
}
