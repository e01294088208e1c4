package ratelimit

import (
	"errors"
	"slices"
	"sync"
	"time"

	"aurassist-backend/lib/timezone"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// ErrRateLimited is what callers surface when Allow denies an attempt.
var ErrRateLimited = errors.New("rate limited")

// Limiter bounds how often a given key (usually a client address) may
// perform an operation. Implementations must be safe for concurrent
// use. Keeping this an interface lets a shared store replace the
// process-local one when running more than one instance.
type Limiter interface {
	Allow(key string) bool
}

type SlidingWindowOptions struct {
	// maximum attempts per window
	Limit int
	// window length
	Window time.Duration
	// keys that bypass the limit entirely
	Allowlist []string
}

type SlidingWindow struct {
	opts    SlidingWindowOptions
	mu      sync.Mutex
	history *expirable.LRU[string, []time.Time]
}

func NewSlidingWindow(opts SlidingWindowOptions) *SlidingWindow {
	return &SlidingWindow{
		opts: opts,
		// entries self-expire after one idle window so abandoned
		// keys don't pile up
		history: expirable.NewLRU[string, []time.Time](8192, nil, opts.Window),
	}
}

func (s *SlidingWindow) Allow(key string) bool {
	if slices.Contains(s.opts.Allowlist, key) {
		return true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := timezone.Now()
	cutoff := now.Add(-s.opts.Window)

	attempts, _ := s.history.Get(key)
	kept := attempts[:0]
	for _, t := range attempts {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}

	if len(kept) >= s.opts.Limit {
		s.history.Add(key, kept)
		return false
	}

	kept = append(kept, now)
	s.history.Add(key, kept)
	return true
}
