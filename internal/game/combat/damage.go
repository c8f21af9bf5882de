package combat

import (
	"math"

	"github.com/cory-johannsen/labyrinth/internal/game/condition"
	"github.com/cory-johannsen/labyrinth/internal/game/dice"
	"github.com/cory-johannsen/labyrinth/internal/game/skill"
)

// DamageInput carries everything CalculateDamage needs about one strike.
type DamageInput struct {
	Attacker    Stats
	Defender    Stats
	Kind        skill.DamageKind
	Multiplier  float64
	IsDefending bool
	Combo       int
	CritChance  float64
	// Sleeping marks the first hit on a sleeping target.
	Sleeping bool
	Rules    Rules
}

// DamageOutcome is the result of one damage calculation.
type DamageOutcome struct {
	Damage int
	IsCrit bool
}

// CalculateDamage computes the damage of one strike. Exactly one value is
// drawn from rng, for the crit roll.
//
// Base damage is offense × Multiplier − defense × DefenseFactor, floored at 1.
// The crit, combo and wake stages then apply in Rules.MultiplierOrder,
// flooring after each stage, and a defending target halves the result.
//
// Postcondition: Damage >= 1.
// Postcondition: Damage is non-decreasing in Combo with other inputs fixed.
func CalculateDamage(in DamageInput, rng dice.Source) DamageOutcome {
	offense, defense := in.Attacker.Str, in.Defender.Vit
	if in.Kind == skill.Magical {
		offense, defense = in.Attacker.Int, in.Defender.Wis
	}
	rules := in.Rules
	order := rules.MultiplierOrder
	if len(order) == 0 {
		order = DefaultMultiplierOrder
	}

	dmg := math.Floor(float64(offense)*in.Multiplier - float64(defense)*rules.DefenseFactor)
	if dmg < 1 {
		dmg = 1
	}

	isCrit := dice.Chance(rng, in.CritChance)
	for _, stage := range order {
		switch stage {
		case MultiplierCrit:
			if isCrit {
				dmg = math.Floor(dmg * rules.CritMultiplier)
			}
		case MultiplierCombo:
			if in.Combo > 0 {
				dmg = math.Floor(dmg * (1 + rules.ComboStep*float64(in.Combo)))
			}
		case MultiplierWake:
			if in.Sleeping {
				dmg = math.Floor(dmg * rules.SleepWakeMultiplier)
			}
		}
	}
	if in.IsDefending {
		dmg = math.Floor(dmg * rules.DefendFactor)
	}
	if dmg < 1 {
		dmg = 1
	}
	return DamageOutcome{Damage: int(dmg), IsCrit: isCrit}
}

// CritChance returns attacker's crit chance under rules.
func CritChance(attacker Entity, rules Rules) float64 {
	return clamp01(rules.BaseCritChance + float64(attacker.Stat(condition.StatLuc))*rules.CritPerLuc + attacker.Passives.CritBonus)
}

// HitChance returns the probability that attacker lands a strike on defender.
//
// Evasion is BaseEvasion plus EvasionPerAgi for every point of AGI the
// defender has over the attacker, plus the defender's passive bonus. A
// leg-bound, asleep or paralyzed defender cannot evade. A blind attacker's
// hit chance is scaled by BlindHitFactor.
func HitChance(attacker, defender Entity, rules Rules) float64 {
	evasion := 0.0
	if !defender.Binds.Has(condition.BindLeg) &&
		!defender.Ailments.Has(condition.Sleep) &&
		!defender.Ailments.Has(condition.Paralyze) {
		diff := defender.Stat(condition.StatAgi) - attacker.Stat(condition.StatAgi)
		if diff < 0 {
			diff = 0
		}
		evasion = rules.BaseEvasion + float64(diff)*rules.EvasionPerAgi + defender.Passives.EvasionBonus
	}
	hit := 1 - clamp01(evasion)
	if attacker.Ailments.Has(condition.Blind) {
		hit *= rules.BlindHitFactor
	}
	return clamp01(hit)
}

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
