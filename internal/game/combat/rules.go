package combat

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/labyrinth/internal/game/dice"
)

// Multiplier names one post-base damage stage.
type Multiplier string

const (
	MultiplierCrit  Multiplier = "crit"
	MultiplierCombo Multiplier = "combo"
	MultiplierWake  Multiplier = "wake"
)

// DefaultMultiplierOrder is the stage order used when none is configured.
var DefaultMultiplierOrder = []Multiplier{MultiplierCrit, MultiplierCombo, MultiplierWake}

// Rules is the tuning snapshot a battle is resolved with. It is carried on
// State so that a saved state replays identically under the same RNG.
type Rules struct {
	ComboStep           float64
	CritMultiplier      float64
	BaseCritChance      float64
	CritPerLuc          float64
	SleepWakeMultiplier float64
	MultiplierOrder     []Multiplier
	DefenseFactor       float64
	DefendFactor        float64
	BasicAttackPower    float64

	BaseEvasion    float64
	EvasionPerAgi  float64
	BlindHitFactor float64

	ParalyzeSkipChance float64
	SleepSkipChance    float64

	FleeBaseChance float64
	FleePerAgi     float64
	FleeMinChance  float64
	FleeMaxChance  float64

	SpikeDamage       dice.Expression
	WebBindTurns      int
	WebBindChance     float64
	FirePoisonTurns   int
	FirePoisonPotency int
	FirePoisonChance  float64
}

// DefaultRules returns the standard tuning.
func DefaultRules() Rules {
	return Rules{
		ComboStep:           0.10,
		CritMultiplier:      1.5,
		BaseCritChance:      0.05,
		CritPerLuc:          0.005,
		SleepWakeMultiplier: 1.5,
		MultiplierOrder:     append([]Multiplier(nil), DefaultMultiplierOrder...),
		DefenseFactor:       0.5,
		DefendFactor:        0.5,
		BasicAttackPower:    1.0,
		BaseEvasion:         0.05,
		EvasionPerAgi:       0.01,
		BlindHitFactor:      0.5,
		ParalyzeSkipChance:  0.5,
		SleepSkipChance:     1.0,
		FleeBaseChance:      0.5,
		FleePerAgi:          0.02,
		FleeMinChance:       0.05,
		FleeMaxChance:       0.95,
		SpikeDamage:         dice.MustParse("1d6+4"),
		WebBindTurns:        2,
		WebBindChance:       1.0,
		FirePoisonTurns:     3,
		FirePoisonPotency:   5,
		FirePoisonChance:    1.0,
	}
}

// ParseMultiplierOrder parses names such as ["combo", "crit", "wake"].
//
// Postcondition: the returned order names every stage exactly once.
func ParseMultiplierOrder(names []string) ([]Multiplier, error) {
	seen := make(map[Multiplier]bool, len(names))
	out := make([]Multiplier, 0, len(names))
	for _, n := range names {
		m := Multiplier(strings.ToLower(strings.TrimSpace(n)))
		switch m {
		case MultiplierCrit, MultiplierCombo, MultiplierWake:
		default:
			return nil, fmt.Errorf("unknown damage multiplier %q", n)
		}
		if seen[m] {
			return nil, fmt.Errorf("damage multiplier %q listed twice", n)
		}
		seen[m] = true
		out = append(out, m)
	}
	if len(out) != len(DefaultMultiplierOrder) {
		return nil, fmt.Errorf("multiplier order must name crit, combo and wake; got %v", names)
	}
	return out, nil
}
