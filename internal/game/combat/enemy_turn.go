package combat

import (
	"fmt"

	"github.com/cory-johannsen/labyrinth/internal/game/condition"
	"github.com/cory-johannsen/labyrinth/internal/game/dice"
	"github.com/cory-johannsen/labyrinth/internal/game/enemy"
	"github.com/cory-johannsen/labyrinth/internal/game/skill"
	"github.com/cory-johannsen/labyrinth/internal/scripting"
)

// ExecuteEnemyTurn chooses an action for the enemy id according to its
// definition's AI pattern and resolves it through ExecuteAction, so enemy
// actions follow exactly the same rules as party actions.
//
// Postcondition: err is non-nil only when a lookup fails; it wraps
// enemy.ErrUnknownEnemy or skill.ErrUnknownSkill for unknown IDs.
func ExecuteEnemyTurn(s *State, id string, rng dice.Source, skills SkillLookup, enemies EnemyLookup) (Result, error) {
	if s.Phase != PhaseActive {
		return Result{State: s}, nil
	}
	e, ok := s.FindEntity(id)
	if !ok || e.IsParty || !IsAlive(e) {
		return Result{State: s, Events: []Event{ActionBlockedEvent{ActorID: id, Reason: ReasonInvalidActor}}}, nil
	}
	def, err := enemies.Enemy(e.DefinitionID)
	if err != nil {
		return Result{State: s}, fmt.Errorf("enemy turn for %q: %w", id, err)
	}
	action, err := ChooseEnemyAction(s, e, def, skills, rng)
	if err != nil {
		return Result{State: s}, fmt.Errorf("enemy turn for %q: %w", id, err)
	}
	return ExecuteAction(s, action, rng, skills)
}

type skillOption struct {
	def    skill.Definition
	usable bool
}

// ChooseEnemyAction returns the action e takes this turn.
//
//   - aggressive: the usable offensive skill with the highest total
//     multiplier when it beats a basic attack, otherwise a basic attack, aimed
//     at the living party member with the lowest HP.
//   - defensive: a self or ally buff skill whose buff is not yet active on its
//     target, otherwise the aggressive choice.
//   - scripted: the Lua choose(ctx) hook; any script error or unusable
//     decision falls back to the aggressive choice.
//
// An enemy that can neither attack nor cast defends.
func ChooseEnemyAction(s *State, e Entity, def enemy.Definition, skills SkillLookup, rng dice.Source) (Action, error) {
	options, err := enemyOptions(e, skills)
	if err != nil {
		return nil, err
	}
	switch def.Pattern() {
	case enemy.Scripted:
		if a, ok := scriptedAction(s, e, def, options, rng); ok {
			return a, nil
		}
	case enemy.Defensive:
		if a, ok := defensiveAction(s, e, options); ok {
			return a, nil
		}
	}
	return aggressiveAction(s, e, options), nil
}

func enemyOptions(e Entity, skills SkillLookup) ([]skillOption, error) {
	var out []skillOption
	for _, id := range e.Skills {
		if skills == nil {
			return nil, fmt.Errorf("resolving skill %q: no skill lookup", id)
		}
		d, err := skills.Skill(id)
		if err != nil {
			return nil, err
		}
		if d.Passive {
			continue
		}
		out = append(out, skillOption{def: d, usable: e.TP >= d.TPCost && CanUseSkill(e, d)})
	}
	return out, nil
}

func weakestParty(s *State) (Entity, bool) {
	var best Entity
	found := false
	for _, p := range s.AliveParty() {
		if !found || p.HP < best.HP {
			best, found = p, true
		}
	}
	return best, found
}

func aggressiveAction(s *State, e Entity, options []skillOption) Action {
	target, ok := weakestParty(s)
	if !ok {
		return DefendAction{ActorID: e.ID}
	}
	var best *skill.Definition
	bestMult := 0.0
	for i := range options {
		o := options[i]
		if !o.usable || !o.def.IsOffensive() {
			continue
		}
		if m := o.def.TotalMultiplier(); m > bestMult {
			best, bestMult = &options[i].def, m
		}
	}
	canAttack := CanUsePhysicalAttack(e)
	if best != nil && (bestMult > s.Rules.BasicAttackPower || !canAttack) {
		return SkillAction{ActorID: e.ID, SkillID: best.ID, TargetID: target.ID}
	}
	if !canAttack {
		return DefendAction{ActorID: e.ID}
	}
	return AttackAction{ActorID: e.ID, TargetID: target.ID}
}

func defensiveAction(s *State, e Entity, options []skillOption) (Action, bool) {
	for _, o := range options {
		if !o.usable || o.def.Target.Hostile() {
			continue
		}
		buffs := o.def.BuffIDs()
		if len(buffs) == 0 {
			continue
		}
		switch o.def.Target {
		case skill.TargetSelf:
			if missingBuff(e, buffs) {
				return SkillAction{ActorID: e.ID, SkillID: o.def.ID, TargetID: e.ID}, true
			}
		case skill.TargetAlly:
			for _, ally := range s.AliveEnemies() {
				if missingBuff(ally, buffs) {
					return SkillAction{ActorID: e.ID, SkillID: o.def.ID, TargetID: ally.ID}, true
				}
			}
		case skill.TargetAllAllies:
			for _, ally := range s.AliveEnemies() {
				if missingBuff(ally, buffs) {
					return SkillAction{ActorID: e.ID, SkillID: o.def.ID}, true
				}
			}
		}
	}
	return nil, false
}

func missingBuff(e Entity, ids []string) bool {
	for _, id := range ids {
		if !condition.HasBuff(e.Buffs, id) {
			return true
		}
	}
	return false
}

func scriptedAction(s *State, e Entity, def enemy.Definition, options []skillOption, rng dice.Source) (Action, bool) {
	d, err := scripting.Decide(def.Script, scriptView(s, e, options), rng.Float64, 0)
	if err != nil {
		return nil, false
	}
	switch d.Action {
	case scripting.ActionDefend:
		return DefendAction{ActorID: e.ID}, true
	case scripting.ActionAttack:
		target, ok := s.FindEntity(d.Target)
		if !ok || !target.IsParty || !IsAlive(target) || !CanUsePhysicalAttack(e) {
			return nil, false
		}
		return AttackAction{ActorID: e.ID, TargetID: target.ID}, true
	case scripting.ActionSkill:
		for _, o := range options {
			if o.def.ID != d.Skill || !o.usable {
				continue
			}
			if len(ResolveTargets(s, e, o.def.Target, GridPosition{}, d.Target)) == 0 {
				return nil, false
			}
			return SkillAction{ActorID: e.ID, SkillID: o.def.ID, TargetID: d.Target}, true
		}
	}
	return nil, false
}

func scriptView(s *State, e Entity, options []skillOption) scripting.View {
	v := scripting.View{
		Self:  scriptCombatant(e),
		Round: s.Round,
		Combo: s.ComboCounter,
	}
	for _, ally := range s.AliveEnemies() {
		if ally.ID != e.ID {
			v.Allies = append(v.Allies, scriptCombatant(ally))
		}
	}
	for _, foe := range s.AliveParty() {
		v.Foes = append(v.Foes, scriptCombatant(foe))
	}
	for _, o := range options {
		v.Skills = append(v.Skills, scripting.SkillOption{
			ID:         o.def.ID,
			TPCost:     o.def.TPCost,
			Target:     string(o.def.Target),
			Multiplier: o.def.TotalMultiplier(),
			Usable:     o.usable,
		})
	}
	return v
}

func scriptCombatant(e Entity) scripting.Combatant {
	c := scripting.Combatant{ID: e.ID, Name: e.Name, HP: e.HP, MaxHP: e.MaxHP, TP: e.TP, MaxTP: e.MaxTP}
	for _, k := range e.Ailments.Active() {
		c.Ailments = append(c.Ailments, string(k))
	}
	for _, p := range condition.BindParts {
		if e.Binds.Has(p) {
			c.Binds = append(c.Binds, string(p))
		}
	}
	for _, b := range e.Buffs {
		c.Buffs = append(c.Buffs, b.ID)
	}
	return c
}
