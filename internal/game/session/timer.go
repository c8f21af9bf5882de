package session

import (
	"sync"
	"time"
)

// TurnTimer fires a callback after a configurable duration unless stopped.
// It is safe for concurrent use.
type TurnTimer struct {
	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
	gen     uint64
}

// NewTurnTimer creates and starts a timer that calls onFire after duration.
// onFire is called in a separate goroutine.
//
// Precondition: duration > 0; onFire must not be nil.
// Postcondition: Returns a running TurnTimer; onFire will be called unless Stop or Reset is called first.
func NewTurnTimer(duration time.Duration, onFire func()) *TurnTimer {
	tt := &TurnTimer{}
	tt.arm(duration, onFire)
	return tt
}

// arm starts a new generation; a callback from an older generation is
// discarded even if its time.Timer already fired.
func (tt *TurnTimer) arm(duration time.Duration, onFire func()) {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	tt.gen++
	gen := tt.gen
	tt.stopped = false
	if tt.timer != nil {
		tt.timer.Stop()
	}
	tt.timer = time.AfterFunc(duration, func() {
		tt.mu.Lock()
		live := !tt.stopped && tt.gen == gen
		tt.mu.Unlock()
		if live {
			onFire()
		}
	})
}

// Reset cancels the current countdown and starts a new one with the provided duration and callback.
//
// Precondition: duration > 0; onFire must not be nil.
// Postcondition: onFire will be called after duration from now unless Stop is called first.
func (tt *TurnTimer) Reset(duration time.Duration, onFire func()) {
	tt.arm(duration, onFire)
}

// Stop prevents the callback from firing. Safe to call multiple times.
//
// Postcondition: onFire will not be called after Stop returns.
func (tt *TurnTimer) Stop() {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	tt.stopped = true
	if tt.timer != nil {
		tt.timer.Stop()
	}
}
