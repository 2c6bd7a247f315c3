// Package task runs a function repeatedly with a cooperative cancellation
// token, so periodic work can be stopped between iterations and
// single-stepped in tests.
package task

import (
	"context"
	"sync"
	"time"

	"helmetkiosk/internal/timeutil"
)

// Mode selects how the pause between iterations is measured.
type Mode int

const (
	// FixedDelay waits Interval after each iteration settles.
	FixedDelay Mode = iota
	// FixedRate starts iterations on an Interval grid; missed slots are skipped.
	FixedRate
)

// Token is a cancellation flag checked between iterations, never mid-flight.
// An iteration's start phase runs under the token's gate, so Cancel either
// lands before the iteration begins or waits until its start phase is over.
type Token struct {
	gate      sync.Mutex
	mu        sync.Mutex
	cancelled bool
	done      chan struct{}
}

func NewToken() *Token {
	return &Token{done: make(chan struct{})}
}

// Begin reports whether a new iteration may start. On true the caller holds
// the gate and must call Started once the iteration's first effect is done.
// After Cancel has returned, Begin reports false.
func (t *Token) Begin() bool {
	t.gate.Lock()
	if t.Cancelled() {
		t.gate.Unlock()
		return false
	}
	return true
}

// Started releases the gate taken by a successful Begin.
func (t *Token) Started() {
	t.gate.Unlock()
}

// Cancel marks the token cancelled. It waits for an iteration in its start
// phase, never for the rest of an iteration. Safe to call more than once.
func (t *Token) Cancel() {
	t.gate.Lock()
	defer t.gate.Unlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancelled {
		return
	}
	t.cancelled = true
	close(t.done)
}

// Cancelled reports whether Cancel has been called.
func (t *Token) Cancelled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancelled
}

// Done is closed when the token is cancelled.
func (t *Token) Done() <-chan struct{} {
	return t.done
}

// Repeater calls Fn until its token is cancelled or ctx ends. Fn calls
// started after its first effect; until then a concurrent Cancel waits.
// Fn that never calls started is released when it returns.
type Repeater struct {
	Interval time.Duration
	Mode     Mode
	Clock    timeutil.Clock
	Fn       func(ctx context.Context, started func())
}

// Run executes the first iteration immediately and blocks until the token is
// cancelled or ctx is done. An iteration in flight always runs to completion.
func (r *Repeater) Run(ctx context.Context, token *Token) {
	clock := r.Clock
	if clock == nil {
		clock = timeutil.RealClock{}
	}

	next := clock.Now()
	for {
		if ctx.Err() != nil || !token.Begin() {
			return
		}

		var once sync.Once
		started := func() { once.Do(token.Started) }
		r.Fn(ctx, started)
		started()

		wait := r.Interval
		if r.Mode == FixedRate && r.Interval > 0 {
			now := clock.Now()
			next = next.Add(r.Interval)
			for next.Before(now) {
				next = next.Add(r.Interval)
			}
			wait = next.Sub(now)
		}

		select {
		case <-clock.After(wait):
		case <-token.Done():
			return
		case <-ctx.Done():
			return
		}
	}
}
