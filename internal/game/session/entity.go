// Package session hosts live battles: a concurrency-safe registry of combat
// states, idle-turn handling and the exactly-once reward claim.
package session

import (
	"errors"
	"sync"

	"github.com/cory-johannsen/labyrinth/internal/game/combat"
)

// ErrStreamClosed is returned by Push after Close.
var ErrStreamClosed = errors.New("event stream closed")

// ErrStreamFull is returned by Push when the subscriber has not drained the
// buffer.
var ErrStreamFull = errors.New("event stream buffer full")

// EventStream delivers a battle's event batches to one subscriber through a
// buffered channel. A slow subscriber never blocks the battle.
type EventStream struct {
	battleID string
	events   chan []combat.Event
	mu       sync.Mutex
	closed   bool
}

// NewEventStream creates an EventStream for battleID.
//
// Postcondition: Returns an open stream; bufferSize <= 0 selects 64.
func NewEventStream(battleID string, bufferSize int) *EventStream {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	return &EventStream{
		battleID: battleID,
		events:   make(chan []combat.Event, bufferSize),
	}
}

// BattleID returns the battle this stream belongs to.
func (s *EventStream) BattleID() string {
	return s.battleID
}

// Push enqueues one batch without blocking. Empty batches are ignored.
//
// Postcondition: Returns ErrStreamClosed after Close, ErrStreamFull when the
// buffer is full, nil otherwise.
func (s *EventStream) Push(batch []combat.Event) error {
	if len(batch) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStreamClosed
	}
	select {
	case s.events <- batch:
		return nil
	default:
		return ErrStreamFull
	}
}

// Events returns the receive side of the stream. It is closed by Close.
func (s *EventStream) Events() <-chan []combat.Event {
	return s.events
}

// Close closes the stream. Safe to call multiple times.
func (s *EventStream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.events)
	}
}

// IsClosed reports whether Close has been called.
func (s *EventStream) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
