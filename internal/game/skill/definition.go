// Package skill holds the static definitions of skills and consumable items
// and the registry the combat engine resolves them through.
package skill

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cory-johannsen/labyrinth/internal/game/condition"
)

// TargetType selects how a skill's target set is resolved.
type TargetType string

const (
	// TargetSingle hits every living entity on one enemy tile, or one party
	// member when cast by an enemy.
	TargetSingle TargetType = "single"
	// TargetAll hits every living member of the opposing side.
	TargetAll TargetType = "all"
	// TargetSelf affects only the caster.
	TargetSelf TargetType = "self"
	// TargetAlly affects one living member of the caster's side.
	TargetAlly TargetType = "ally"
	// TargetAllAllies affects every living member of the caster's side.
	TargetAllAllies TargetType = "all-allies"
)

// Hostile reports whether t selects entities on the opposing side.
func (t TargetType) Hostile() bool { return t == TargetSingle || t == TargetAll }

// DamageKind selects the offensive and defensive stats used by damage effects.
type DamageKind string

const (
	Physical DamageKind = "physical" // STR vs VIT
	Magical  DamageKind = "magical"  // INT vs WIS
)

// EffectKind identifies one step of a skill's effect list.
type EffectKind string

const (
	EffectDamage       EffectKind = "damage"
	EffectBind         EffectKind = "bind"
	EffectAilment      EffectKind = "ailment"
	EffectDisplacement EffectKind = "displacement"
	EffectHeal         EffectKind = "heal"
	EffectCureAilments EffectKind = "cure-ailments"
	EffectBuff         EffectKind = "buff"
)

// Direction is a displacement direction, relative to the party's point of view.
type Direction string

const (
	Push  Direction = "push"  // one row further back
	Pull  Direction = "pull"  // one row closer to the front
	Left  Direction = "left"  // one column left
	Right Direction = "right" // one column right
)

// Effect is one step of a skill or item effect list. Only the fields relevant
// to Kind are read.
type Effect struct {
	Kind       EffectKind              `yaml:"kind"`
	Multiplier float64                 `yaml:"multiplier"`
	Chance     float64                 `yaml:"chance"`
	Duration   int                     `yaml:"duration"`
	Potency    int                     `yaml:"potency"`
	Bind       condition.BindPart      `yaml:"bind"`
	Ailment    condition.AilmentKind   `yaml:"ailment"`
	Direction  Direction               `yaml:"direction"`
	Amount     int                     `yaml:"amount"`
	Cures      []condition.AilmentKind `yaml:"cures"`
	Buff       *condition.Buff         `yaml:"buff"`
}

// Validate checks the fields required by Kind.
func (e Effect) Validate() error {
	switch e.Kind {
	case EffectDamage:
		if e.Multiplier <= 0 {
			return errors.New("damage effect: multiplier must be > 0")
		}
	case EffectBind:
		if _, err := condition.ParseBindPart(string(e.Bind)); err != nil {
			return fmt.Errorf("bind effect: %w", err)
		}
		if err := validateRoll(e.Chance, e.Duration); err != nil {
			return fmt.Errorf("bind effect: %w", err)
		}
	case EffectAilment:
		if _, err := condition.ParseAilment(string(e.Ailment)); err != nil {
			return fmt.Errorf("ailment effect: %w", err)
		}
		if err := validateRoll(e.Chance, e.Duration); err != nil {
			return fmt.Errorf("ailment effect: %w", err)
		}
	case EffectDisplacement:
		switch e.Direction {
		case Push, Pull, Left, Right:
		default:
			return fmt.Errorf("displacement effect: unknown direction %q", e.Direction)
		}
	case EffectHeal:
		if e.Amount <= 0 && e.Multiplier <= 0 {
			return errors.New("heal effect: amount or multiplier must be > 0")
		}
	case EffectCureAilments:
		for _, k := range e.Cures {
			if _, err := condition.ParseAilment(string(k)); err != nil {
				return fmt.Errorf("cure-ailments effect: %w", err)
			}
		}
	case EffectBuff:
		if e.Buff == nil {
			return errors.New("buff effect: buff must be set")
		}
		if e.Buff.ID == "" {
			return errors.New("buff effect: buff id must not be empty")
		}
		if _, err := condition.ParseStat(string(e.Buff.Stat)); err != nil {
			return fmt.Errorf("buff effect: %w", err)
		}
		if e.Buff.TurnsRemaining <= 0 {
			return errors.New("buff effect: turns must be > 0")
		}
	default:
		return fmt.Errorf("unknown effect kind %q", e.Kind)
	}
	return nil
}

func validateRoll(chance float64, duration int) error {
	if chance <= 0 || chance > 1 {
		return fmt.Errorf("chance must be in (0, 1], got %v", chance)
	}
	if duration <= 0 {
		return fmt.Errorf("duration must be > 0, got %d", duration)
	}
	return nil
}

// Passive holds the modifiers a learned passive skill grants for the whole
// battle.
type Passive struct {
	DamageBonus  float64               `yaml:"damage_bonus"`
	CritBonus    float64               `yaml:"crit_bonus"`
	EvasionBonus float64               `yaml:"evasion_bonus"`
	Resist       condition.Resistances `yaml:"resist"`
}

// Definition is the static definition of a player-class or enemy skill.
type Definition struct {
	ID          string     `yaml:"id"`
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	TPCost      int        `yaml:"tp_cost"`
	Target      TargetType `yaml:"target"`
	DamageKind  DamageKind `yaml:"damage_kind"`
	// BodyPart is the part the caster needs free; a bind on it blocks the skill.
	BodyPart condition.BindPart `yaml:"body_part"`
	Passive  bool               `yaml:"passive"`
	// Modifiers is only read when Passive is set.
	Modifiers Passive  `yaml:"modifiers"`
	Effects   []Effect `yaml:"effects"`
}

// Validate checks that the definition satisfies its invariants.
//
// Postcondition: Returns nil iff ID and Name are set, TPCost >= 0, active
// skills have a known target type and at least one valid effect, and every
// effect validates.
func (d *Definition) Validate() error {
	if d.ID == "" {
		return errors.New("skill: id must not be empty")
	}
	if d.Name == "" {
		return fmt.Errorf("skill %q: name must not be empty", d.ID)
	}
	if d.TPCost < 0 {
		return fmt.Errorf("skill %q: tp_cost must be >= 0", d.ID)
	}
	if d.BodyPart != "" {
		if _, err := condition.ParseBindPart(string(d.BodyPart)); err != nil {
			return fmt.Errorf("skill %q: %w", d.ID, err)
		}
	}
	switch d.DamageKind {
	case "", Physical, Magical:
	default:
		return fmt.Errorf("skill %q: unknown damage_kind %q", d.ID, d.DamageKind)
	}
	if d.Passive {
		return nil
	}
	if err := validateTargetAndEffects(d.Target, d.Effects); err != nil {
		return fmt.Errorf("skill %q: %w", d.ID, err)
	}
	return nil
}

func validateTargetAndEffects(t TargetType, effects []Effect) error {
	switch t {
	case TargetSingle, TargetAll, TargetSelf, TargetAlly, TargetAllAllies:
	default:
		return fmt.Errorf("unknown target %q", t)
	}
	if len(effects) == 0 {
		return errors.New("effects must not be empty")
	}
	var errs []string
	for i, e := range effects {
		if err := e.Validate(); err != nil {
			errs = append(errs, fmt.Sprintf("effect[%d]: %v", i, err))
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Kind returns the damage kind, defaulting to Physical.
func (d Definition) Kind() DamageKind {
	if d.DamageKind == "" {
		return Physical
	}
	return d.DamageKind
}

// IsSpell reports whether the skill is INT-based, i.e. blocked by a head bind.
func (d Definition) IsSpell() bool {
	return d.BodyPart == condition.BindHead || d.Kind() == Magical
}

// TotalMultiplier sums the multipliers of every damage effect.
func (d Definition) TotalMultiplier() float64 {
	total := 0.0
	for _, e := range d.Effects {
		if e.Kind == EffectDamage {
			total += e.Multiplier
		}
	}
	return total
}

// IsOffensive reports whether the skill targets the opposing side and deals
// damage.
func (d Definition) IsOffensive() bool {
	return d.Target.Hostile() && d.TotalMultiplier() > 0
}

// BuffIDs lists the buff IDs granted by the skill's buff effects.
func (d Definition) BuffIDs() []string {
	var out []string
	for _, e := range d.Effects {
		if e.Kind == EffectBuff && e.Buff != nil {
			out = append(out, e.Buff.ID)
		}
	}
	return out
}

// Item is a consumable whose use applies an effect list, with no TP cost.
type Item struct {
	ID          string     `yaml:"id"`
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Target      TargetType `yaml:"target"`
	DamageKind  DamageKind `yaml:"damage_kind"`
	Effects     []Effect   `yaml:"effects"`
}

// Validate checks that the item satisfies its invariants.
func (it *Item) Validate() error {
	if it.ID == "" {
		return errors.New("item: id must not be empty")
	}
	if it.Name == "" {
		return fmt.Errorf("item %q: name must not be empty", it.ID)
	}
	if err := validateTargetAndEffects(it.Target, it.Effects); err != nil {
		return fmt.Errorf("item %q: %w", it.ID, err)
	}
	return nil
}
