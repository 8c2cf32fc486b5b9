// Package resilience provides reliability patterns for calls to external
// dependencies, currently the Google token-verification endpoint.
package resilience

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned when the breaker is rejecting calls.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// Breaker guards calls to an external dependency. After threshold
// consecutive failures it rejects calls for the cooldown period, then lets
// a single probe through; the probe's outcome closes or re-opens the
// circuit.
type Breaker struct {
	mu        sync.Mutex
	threshold int
	cooldown  time.Duration
	failures  int
	openUntil time.Time
	probing   bool
	now       func() time.Time // for testing
}

// NewBreaker creates a breaker that opens after threshold consecutive
// failures and stays open for cooldown.
func NewBreaker(threshold int, cooldown time.Duration) *Breaker {
	return &Breaker{
		threshold: threshold,
		cooldown:  cooldown,
		now:       time.Now,
	}
}

// Execute runs fn unless the circuit is open, and feeds the outcome back
// into the breaker state.
func (b *Breaker) Execute(fn func() error) error {
	if !b.admit() {
		return ErrCircuitOpen
	}
	err := fn()
	b.record(err)
	return err
}

func (b *Breaker) admit() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.openUntil.IsZero() {
		return true
	}
	if b.now().Before(b.openUntil) {
		return false
	}
	// Cooldown elapsed: admit exactly one probe.
	if b.probing {
		return false
	}
	b.probing = true
	return true
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	wasProbe := b.probing
	b.probing = false

	if err == nil {
		b.failures = 0
		b.openUntil = time.Time{}
		return
	}

	b.failures++
	if wasProbe || b.failures >= b.threshold {
		b.openUntil = b.now().Add(b.cooldown)
	}
}
