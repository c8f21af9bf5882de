// Package dice provides the randomness abstraction for the combat engine and
// the dice-expression rolls used by hazard and content tables.
package dice

import "fmt"

// Source is the randomness provider injected into every nondeterministic
// engine call.
//
// Implementations used by a single battle must be replayable: the same
// sequence of Float64 calls must yield the same values for the same seed.
type Source interface {
	// Float64 returns a uniformly distributed value in [0, 1).
	Float64() float64
}

// Func adapts a plain function to Source.
type Func func() float64

// Float64 calls f.
func (f Func) Float64() float64 { return f() }

// Intn draws an int in [0, n) from src.
//
// Precondition: n > 0. Panics with "dice: Intn called with n <= 0" otherwise.
// Postcondition: 0 <= result < n, even if src misbehaves and returns 1.0.
func Intn(src Source, n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	v := int(src.Float64() * float64(n))
	if v >= n {
		v = n - 1
	}
	if v < 0 {
		v = 0
	}
	return v
}

// IntRange draws an int in [lo, hi] inclusive from src.
// When hi <= lo the result is lo and no value is drawn.
func IntRange(src Source, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + Intn(src, hi-lo+1)
}

// Chance reports whether a draw from src falls below p.
// p <= 0 never succeeds; p >= 1 always succeeds. A value is drawn either way
// so that callers consume the sequence uniformly.
func Chance(src Source, p float64) bool {
	return src.Float64() < p
}

// RollResult holds the full audit trail for a single dice roll evaluation.
//
// Postcondition: Total() == sum(Dice) + Modifier.
type RollResult struct {
	Expression string // original expression string, e.g. "2d6+3"
	Dice       []int  // individual die results before modifier
	Modifier   int    // flat modifier (may be negative)
}

// Total returns the sum of all die results plus the modifier.
func (r RollResult) Total() int {
	total := r.Modifier
	for _, d := range r.Dice {
		total += d
	}
	return total
}

// String returns a human-readable audit string in the format:
//
//	"2d6+3 → [4 5] +3 = 12"
//
// Precondition: r.Expression is non-empty.
func (r RollResult) String() string {
	if r.Expression == "" {
		panic("dice: RollResult.String() precondition violated: Expression must be non-empty")
	}
	return fmt.Sprintf("%s → %v %+d = %d", r.Expression, r.Dice, r.Modifier, r.Total())
}
