package combat

import (
	"github.com/cory-johannsen/labyrinth/internal/game/condition"
	"github.com/cory-johannsen/labyrinth/internal/game/dice"
	"github.com/cory-johannsen/labyrinth/internal/game/skill"
)

// resolution accumulates the work of one resolution call against a private
// clone of the input state.
type resolution struct {
	s      *State
	rng    dice.Source
	events []Event
}

func newResolution(s *State, rng dice.Source) *resolution {
	return &resolution{s: s, rng: rng}
}

func (r *resolution) emit(e Event) { r.events = append(r.events, e) }

func (r *resolution) result() Result {
	return Result{State: r.s, Events: r.events}
}

func (r *resolution) updatePhase() {
	s := r.s
	if s.Phase != PhaseActive {
		return
	}
	switch {
	case s.IsAllEnemiesDefeated():
		s.Phase = PhaseVictory
		r.emit(VictoryEvent{})
	case s.IsPartyWiped():
		s.Phase = PhaseDefeat
		r.emit(DefeatEvent{})
	}
}

// strike resolves one hit roll and, on a hit, one damage application of
// attacker against target. It reports whether the strike landed.
func (r *resolution) strike(attackerID, targetID string, kind skill.DamageKind, multiplier float64) bool {
	attacker, target := r.s.entityRef(attackerID), r.s.entityRef(targetID)
	if attacker == nil || target == nil || !IsAlive(*target) {
		return false
	}
	rules := r.s.Rules

	if !dice.Chance(r.rng, HitChance(*attacker, *target, rules)) {
		r.emit(MissEvent{SourceID: attackerID, TargetID: targetID})
		return false
	}

	sleeping := target.Ailments.Has(condition.Sleep)
	out := CalculateDamage(DamageInput{
		Attacker:    attacker.EffectiveStats(),
		Defender:    target.EffectiveStats(),
		Kind:        kind,
		Multiplier:  multiplier * (1 + attacker.Passives.DamageBonus),
		IsDefending: r.s.isDefending(targetID),
		Combo:       r.s.ComboCounter,
		CritChance:  CritChance(*attacker, rules),
		Sleeping:    sleeping,
		Rules:       rules,
	}, r.rng)

	killed := r.applyDamage(target, out.Damage)
	r.emit(DamageEvent{SourceID: attackerID, TargetID: targetID, Damage: out.Damage, IsCrit: out.IsCrit, Killed: killed})
	if sleeping && IsAlive(*target) {
		r.wake(target)
	}
	r.s.ComboCounter++
	return true
}

// applyDamage lowers e's HP, clamping at 0, and reports whether this
// application killed it.
func (r *resolution) applyDamage(e *Entity, dmg int) bool {
	if !IsAlive(*e) {
		return false
	}
	e.HP -= dmg
	if e.HP <= 0 {
		e.HP = 0
		return true
	}
	return false
}

func (r *resolution) wake(e *Entity) {
	if !e.Ailments.Has(condition.Sleep) {
		return
	}
	e.Ailments = e.Ailments.Without(condition.Sleep)
	r.emit(StatusExpiredEvent{EntityID: e.ID, Status: string(condition.Sleep)})
}

// applyBind rolls chance against target's resistance and, unless resisted,
// sets the bind. A non-positive duration is ignored.
func (r *resolution) applyBind(target *Entity, part condition.BindPart, chance float64, turns int) {
	if !IsAlive(*target) || turns <= 0 {
		return
	}
	p := condition.EffectiveChance(chance, target.Resist(part.ResistKey()))
	if !dice.Chance(r.rng, p) {
		r.emit(BindAppliedEvent{TargetID: target.ID, Bind: part, Resisted: true})
		return
	}
	target.Binds = target.Binds.With(part, turns)
	r.emit(BindAppliedEvent{TargetID: target.ID, Bind: part})
}

// applyAilment rolls chance against target's resistance and, unless resisted,
// sets the ailment. A non-positive duration is ignored.
func (r *resolution) applyAilment(target *Entity, kind condition.AilmentKind, chance float64, turns, potency int) {
	if !IsAlive(*target) || turns <= 0 {
		return
	}
	p := condition.EffectiveChance(chance, target.Resist(kind.ResistKey()))
	if !dice.Chance(r.rng, p) {
		r.emit(AilmentAppliedEvent{TargetID: target.ID, Ailment: kind, Resisted: true})
		return
	}
	target.Ailments = target.Ailments.With(kind, condition.Affliction{TurnsRemaining: turns, Potency: potency})
	r.emit(AilmentAppliedEvent{TargetID: target.ID, Ailment: kind})
}

var displacementDelta = map[skill.Direction]GridPosition{
	skill.Push:  {Row: 1},
	skill.Pull:  {Row: -1},
	skill.Left:  {Col: -1},
	skill.Right: {Col: 1},
}

// displace moves an enemy one tile in dir. Moving past the grid edge is a
// silent no-op. Landing on a hazard triggers it.
func (r *resolution) displace(target *Entity, dir skill.Direction) {
	if target.IsParty || !IsAlive(*target) {
		return
	}
	from, ok := r.s.Grid.EntityPosition(target.ID)
	if !ok {
		return
	}
	d := displacementDelta[dir]
	to := GridPosition{Row: from.Row + d.Row, Col: from.Col + d.Col}
	if !IsValidPosition(to) || to == from {
		return
	}
	r.s.Grid = r.s.Grid.MoveEntity(target.ID, to)
	r.emit(DisplacementEvent{EntityID: target.ID, From: from, To: to})

	if tile, _ := r.s.Grid.Tile(to); tile.Hazard != HazardNone {
		r.triggerHazard(target, tile.Hazard)
	}
}

func (r *resolution) triggerHazard(target *Entity, h HazardType) {
	rules := r.s.Rules
	r.emit(HazardTriggeredEvent{EntityID: target.ID, Hazard: h})
	switch h {
	case HazardSpike:
		dmg := dice.Roll(rules.SpikeDamage, r.rng).Total()
		if dmg < 1 {
			dmg = 1
		}
		killed := r.applyDamage(target, dmg)
		r.emit(DamageEvent{TargetID: target.ID, Damage: dmg, Killed: killed})
		if IsAlive(*target) {
			r.wake(target)
		}
	case HazardWeb:
		r.applyBind(target, condition.BindLeg, rules.WebBindChance, rules.WebBindTurns)
	case HazardFire:
		r.applyAilment(target, condition.Poison, rules.FirePoisonChance, rules.FirePoisonTurns, rules.FirePoisonPotency)
	}
}

// applyEffects runs effects in list order; each effect is applied to every
// target before the next effect starts.
func (r *resolution) applyEffects(actorID string, kind skill.DamageKind, targets []string, effects []skill.Effect) {
	for _, eff := range effects {
		for _, id := range targets {
			target := r.s.entityRef(id)
			if target == nil {
				continue
			}
			r.applyEffect(actorID, kind, target, eff)
		}
	}
}

func (r *resolution) applyEffect(actorID string, kind skill.DamageKind, target *Entity, eff skill.Effect) {
	switch eff.Kind {
	case skill.EffectDamage:
		r.strike(actorID, target.ID, kind, eff.Multiplier)
	case skill.EffectBind:
		r.applyBind(target, eff.Bind, eff.Chance, eff.Duration)
	case skill.EffectAilment:
		r.applyAilment(target, eff.Ailment, eff.Chance, eff.Duration, eff.Potency)
	case skill.EffectDisplacement:
		r.displace(target, eff.Direction)
	case skill.EffectHeal:
		r.heal(actorID, target, eff)
	case skill.EffectCureAilments:
		r.cure(target, eff.Cures)
	case skill.EffectBuff:
		if eff.Buff == nil || !IsAlive(*target) {
			return
		}
		target.Buffs = condition.ApplyBuff(target.Buffs, *eff.Buff)
		r.emit(BuffAppliedEvent{TargetID: target.ID, BuffID: eff.Buff.ID})
	}
}

// heal restores Amount plus the caster's WIS × Multiplier, capped at MaxHP.
// Dead targets are not revived.
func (r *resolution) heal(actorID string, target *Entity, eff skill.Effect) {
	if !IsAlive(*target) {
		return
	}
	amount := eff.Amount
	if actor := r.s.entityRef(actorID); actor != nil && eff.Multiplier > 0 {
		amount += int(float64(actor.Stat(condition.StatWis)) * eff.Multiplier)
	}
	if amount > target.MaxHP-target.HP {
		amount = target.MaxHP - target.HP
	}
	if amount < 0 {
		amount = 0
	}
	target.HP += amount
	r.emit(HealEvent{SourceID: actorID, TargetID: target.ID, Amount: amount})
}

// cure removes the listed ailments, or every ailment when kinds is empty.
func (r *resolution) cure(target *Entity, kinds []condition.AilmentKind) {
	if !IsAlive(*target) {
		return
	}
	if len(kinds) == 0 {
		kinds = condition.AilmentKinds
	}
	var cured []condition.AilmentKind
	for _, k := range kinds {
		if target.Ailments.Has(k) {
			target.Ailments = target.Ailments.Without(k)
			cured = append(cured, k)
		}
	}
	if len(cured) > 0 {
		r.emit(AilmentsCuredEvent{TargetID: target.ID, Cured: cured})
	}
}
