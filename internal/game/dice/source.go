package dice

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	mrand "math/rand/v2"
	"sync"
)

// cryptoSource implements Source using crypto/rand. It is not replayable and
// is meant for production battles where no seed is recorded.
type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand.
func NewCryptoSource() Source {
	return cryptoSource{}
}

// Float64 returns 53 random bits scaled into [0, 1).
// Panics with "dice: crypto/rand failure: <err>" if crypto/rand fails.
func (cryptoSource) Float64() float64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic("dice: crypto/rand failure: " + err.Error())
	}
	return float64(binary.LittleEndian.Uint64(b[:])>>11) / (1 << 53)
}

// NewSeed generates a seed for NewSeededSource using crypto/rand.
func NewSeed() (uint64, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

// SeededSource is a replayable PCG-backed Source. It is safe for concurrent
// use; concurrent callers interleave draws nondeterministically.
type SeededSource struct {
	mu   sync.Mutex
	seed uint64
	rng  *mrand.Rand
}

// NewSeededSource returns a Source whose sequence is fully determined by seed.
func NewSeededSource(seed uint64) *SeededSource {
	return &SeededSource{seed: seed, rng: mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Seed returns the seed the source was created with.
func (s *SeededSource) Seed() uint64 { return s.seed }

// Float64 returns the next value of the sequence.
func (s *SeededSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

// Sequence replays a fixed list of values, cycling when exhausted.
// It exists for deterministic tests and scripted replays.
//
// An empty Sequence always returns 0.
type Sequence struct {
	values []float64
	next   int
}

// NewSequence returns a Sequence over values.
//
// Precondition: every value is in [0, 1).
func NewSequence(values ...float64) *Sequence {
	cp := make([]float64, len(values))
	copy(cp, values)
	return &Sequence{values: cp}
}

// Float64 returns the next value and advances, wrapping at the end.
func (s *Sequence) Float64() float64 {
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.next%len(s.values)]
	s.next++
	return v
}

// Draws reports how many values have been consumed so far.
func (s *Sequence) Draws() int { return s.next }

// Fixed is a Source that always returns the same value.
type Fixed float64

// Float64 returns f.
func (f Fixed) Float64() float64 { return float64(f) }
