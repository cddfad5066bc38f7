package console

import (
	"net"
	"net/http"
	"sync"
	"time"
)

// SignInLimiter rate-limits failed sign-in attempts per client address.
type SignInLimiter struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
	max      int
	window   time.Duration
	now      func() time.Time
}

func NewSignInLimiter(max int, window time.Duration) *SignInLimiter {
	return &SignInLimiter{
		attempts: make(map[string][]time.Time),
		max:      max,
		window:   window,
		now:      time.Now,
	}
}

// Check reports whether addr may try again. It does not record an attempt.
func (l *SignInLimiter) Check(addr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.prune(addr)) < l.max
}

// Record counts a failed attempt.
func (l *SignInLimiter) Record(addr string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.attempts[addr] = append(l.prune(addr), l.now())
}

// Reset forgets addr after a successful sign-in.
func (l *SignInLimiter) Reset(addr string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.attempts, addr)
}

func (l *SignInLimiter) prune(addr string) []time.Time {
	cutoff := l.now().Add(-l.window)
	hits := l.attempts[addr]
	kept := hits[:0]
	for _, t := range hits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		delete(l.attempts, addr)
		return nil
	}
	l.attempts[addr] = kept
	return kept
}

func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
