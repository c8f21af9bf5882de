// Package combat implements the grid-based, turn-ordered combat resolution
// engine for Labyrinth.
//
// Every exported resolution function is a pure transformation: it takes the
// current *State (never modified), an injected dice.Source where randomness
// is needed, and returns a Result holding a freshly built State plus the
// events produced by that call. The engine has no notion of time; the host
// owns pacing and the single mutable "current battle" reference.
package combat

import (
	"slices"

	"github.com/cory-johannsen/labyrinth/internal/game/condition"
)

// Stats holds the six core stats of a combatant.
type Stats struct {
	Str int `json:"str" yaml:"str"`
	Vit int `json:"vit" yaml:"vit"`
	Int int `json:"int" yaml:"int"`
	Wis int `json:"wis" yaml:"wis"`
	Agi int `json:"agi" yaml:"agi"`
	Luc int `json:"luc" yaml:"luc"`
}

// Get returns the raw value of stat.
func (s Stats) Get(stat condition.Stat) int {
	switch stat {
	case condition.StatStr:
		return s.Str
	case condition.StatVit:
		return s.Vit
	case condition.StatInt:
		return s.Int
	case condition.StatWis:
		return s.Wis
	case condition.StatAgi:
		return s.Agi
	case condition.StatLuc:
		return s.Luc
	}
	return 0
}

// PassiveModifiers are battle-long bonuses granted by learned passive skills.
// They are merged once, at InitializeCombat.
type PassiveModifiers struct {
	DamageBonus  float64
	CritBonus    float64
	EvasionBonus float64
	Resist       condition.Resistances
}

// Entity is one combatant instance. Entities are never removed mid-battle:
// a dead entity (HP <= 0) stays in its roster and is excluded from the
// alive queries, because turn order and tiles reference it by ID.
type Entity struct {
	ID           string
	Name         string
	IsParty      bool
	HP           int
	MaxHP        int
	TP           int
	MaxTP        int
	Stats        Stats
	Binds        condition.Binds
	Ailments     condition.Ailments
	Resistances  condition.Resistances
	Skills       []string
	Buffs        []condition.Buff
	Passives     PassiveModifiers
	DefinitionID string // enemy definition back-reference; empty for party
}

// IsAlive reports whether e has HP left.
func IsAlive(e Entity) bool { return e.HP > 0 }

// Stat returns stat after applying e's active buffs.
//
// Postcondition: Returns >= 0.
func (e Entity) Stat(stat condition.Stat) int {
	return condition.BuffedValue(stat, e.Stats.Get(stat), e.Buffs)
}

// EffectiveStats returns all six stats with buffs applied.
func (e Entity) EffectiveStats() Stats {
	return Stats{
		Str: e.Stat(condition.StatStr),
		Vit: e.Stat(condition.StatVit),
		Int: e.Stat(condition.StatInt),
		Wis: e.Stat(condition.StatWis),
		Agi: e.Stat(condition.StatAgi),
		Luc: e.Stat(condition.StatLuc),
	}
}

// Resist returns e's total resistance for key, including passive bonuses.
func (e Entity) Resist(key string) float64 {
	return e.Resistances.Of(key) + e.Passives.Resist.Of(key)
}

// HasSkill reports whether id is in e's skill list.
func (e Entity) HasSkill(id string) bool {
	for _, s := range e.Skills {
		if s == id {
			return true
		}
	}
	return false
}

func (e Entity) clone() Entity {
	e.Buffs = slices.Clone(e.Buffs)
	return e
}
