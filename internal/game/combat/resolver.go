package combat

import (
	"fmt"

	"github.com/cory-johannsen/labyrinth/internal/game/condition"
	"github.com/cory-johannsen/labyrinth/internal/game/dice"
	"github.com/cory-johannsen/labyrinth/internal/game/skill"
)

// ExecuteAction resolves a for the current actor and returns the new state.
// The turn is not advanced; call AdvanceTurn afterwards.
//
// Expected edge conditions resolve to the input state unchanged plus one
// ActionBlockedEvent: an actor that is not current, dead or has already
// acted, an empty target, insufficient TP, a bind or sleep restriction, or
// fleeing a no-flee battle.
//
// Precondition: skills is non-nil when a is a SkillAction.
// Postcondition: err is non-nil only when skills fails to resolve the skill
// ID, wrapping skill.ErrUnknownSkill for unknown IDs.
func ExecuteAction(s *State, a Action, rng dice.Source, skills SkillLookup) (Result, error) {
	if s.Phase != PhaseActive || a == nil {
		return Result{State: s}, nil
	}
	blocked := func(reason string) (Result, error) {
		return Result{State: s, Events: []Event{ActionBlockedEvent{ActorID: a.Actor(), Reason: reason}}}, nil
	}

	entry, ok := s.currentEntry()
	switch {
	case !ok || entry.EntityID != a.Actor():
		return blocked(ReasonNotCurrentActor)
	case entry.HasActed:
		return blocked(ReasonAlreadyActed)
	}
	actor, ok := s.FindEntity(a.Actor())
	if !ok || !IsAlive(actor) {
		return blocked(ReasonInvalidActor)
	}

	r := newResolution(s.Clone(), rng)
	var reason string
	switch act := a.(type) {
	case AttackAction:
		reason = r.attack(actor, act)
	case SkillAction:
		if skills == nil {
			return Result{State: s}, fmt.Errorf("executing skill %q for %q: no skill lookup", act.SkillID, actor.ID)
		}
		def, err := skills.Skill(act.SkillID)
		if err != nil {
			return Result{State: s}, fmt.Errorf("executing skill for %q: %w", actor.ID, err)
		}
		reason = r.castSkill(actor, def, act)
	case DefendAction:
		reason = r.defend(actor)
	case FleeAction:
		reason = r.flee(actor)
	case ItemAction:
		reason = r.useItem(actor, act)
	default:
		reason = ReasonUnknownAction
	}
	if reason != "" {
		return blocked(reason)
	}

	r.s.TurnOrder[r.s.CurrentActorIndex].HasActed = true
	r.updatePhase()
	return r.result(), nil
}

func (r *resolution) attack(actor Entity, a AttackAction) string {
	if reason := physicalBlock(actor); reason != "" {
		return reason
	}
	var targets []string
	if actor.IsParty {
		if !IsValidPosition(a.TargetTile) {
			return ReasonInvalidTarget
		}
		targets = livingAtTile(r.s, a.TargetTile)
		if len(targets) == 0 {
			return ReasonEmptyTile
		}
	} else {
		targets = ResolveTargets(r.s, actor, skill.TargetSingle, a.TargetTile, a.TargetID)
		if len(targets) == 0 {
			return ReasonInvalidTarget
		}
	}
	for _, id := range targets {
		r.strike(actor.ID, id, skill.Physical, r.s.Rules.BasicAttackPower)
	}
	return ""
}

func (r *resolution) castSkill(actor Entity, def skill.Definition, a SkillAction) string {
	switch {
	case def.Passive:
		return ReasonPassiveSkill
	case !actor.HasSkill(def.ID):
		return ReasonUnknownToActor
	case actor.TP < def.TPCost:
		return ReasonInsufficientTP
	}
	if reason := skillBlock(actor, def); reason != "" {
		return reason
	}
	targets := ResolveTargets(r.s, actor, def.Target, a.TargetTile, a.TargetID)
	if len(targets) == 0 {
		if def.Target == skill.TargetSingle && actor.IsParty && a.TargetID == "" {
			return ReasonEmptyTile
		}
		return ReasonInvalidTarget
	}
	r.s.entityRef(actor.ID).TP -= def.TPCost
	r.applyEffects(actor.ID, def.Kind(), targets, def.Effects)
	return ""
}

func (r *resolution) defend(actor Entity) string {
	if actor.Ailments.Has(condition.Sleep) {
		return ReasonAsleep
	}
	r.s.TurnOrder[r.s.CurrentActorIndex].IsDefending = true
	r.emit(DefendEvent{EntityID: actor.ID})
	return ""
}

// flee rolls the party's escape. Success leaves Phase untouched: the host
// ends the battle on FleeSuccessEvent.
func (r *resolution) flee(actor Entity) string {
	s := r.s
	switch {
	case !s.CanFlee:
		return ReasonNoFlee
	case !actor.IsParty:
		return ReasonPartyOnly
	case actor.Ailments.Has(condition.Sleep):
		return ReasonAsleep
	}
	if actor.Binds.Has(condition.BindLeg) {
		r.emit(FleeFailedEvent{ActorID: actor.ID, Reason: ReasonLegBound})
		return ""
	}
	if dice.Chance(r.rng, FleeChance(s)) {
		r.emit(FleeSuccessEvent{ActorID: actor.ID})
		return ""
	}
	r.emit(FleeFailedEvent{ActorID: actor.ID, Reason: ReasonFleeRoll})
	return ""
}

// FleeChance returns the party's escape probability: FleeBaseChance shifted
// by FleePerAgi for each point of average party speed over average enemy
// speed, clamped to [FleeMinChance, FleeMaxChance].
func FleeChance(s *State) float64 {
	rules := s.Rules
	diff := averageSpeed(s.AliveParty()) - averageSpeed(s.AliveEnemies())
	return clamp(rules.FleeBaseChance+diff*rules.FleePerAgi, rules.FleeMinChance, rules.FleeMaxChance)
}

func averageSpeed(es []Entity) float64 {
	if len(es) == 0 {
		return 0
	}
	total := 0
	for _, e := range es {
		total += Speed(e)
	}
	return float64(total) / float64(len(es))
}

func (r *resolution) useItem(actor Entity, a ItemAction) string {
	if actor.Ailments.Has(condition.Sleep) {
		return ReasonAsleep
	}
	if len(a.Effects) == 0 {
		return ReasonInvalidTarget
	}
	for _, e := range a.Effects {
		if err := e.Validate(); err != nil {
			return ReasonInvalidEffect
		}
	}
	targets := ResolveTargets(r.s, actor, a.Target, a.TargetTile, a.TargetID)
	if len(targets) == 0 {
		return ReasonInvalidTarget
	}
	kind := a.DamageKind
	if kind == "" {
		kind = skill.Physical
	}
	r.applyEffects(actor.ID, kind, targets, a.Effects)
	return ""
}
