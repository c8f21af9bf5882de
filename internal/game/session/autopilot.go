package session

import (
	"fmt"

	"github.com/cory-johannsen/labyrinth/internal/game/combat"
)

// Autopilot picks an action for the party member actorID: its strongest
// affordable offensive skill when that out-multiplies a basic attack,
// otherwise a basic attack on the weakest living enemy, otherwise defend.
//
// Postcondition: err is non-nil only when a skill lookup fails.
func Autopilot(s *combat.State, actorID string, skills combat.SkillLookup) (combat.Action, error) {
	actor, ok := s.FindEntity(actorID)
	if !ok || !actor.IsParty {
		return nil, fmt.Errorf("autopilot: %q is not a party member", actorID)
	}
	target, ok := weakestEnemy(s)
	if !ok {
		return combat.DefendAction{ActorID: actorID}, nil
	}
	tile, _ := s.Grid.EntityPosition(target.ID)

	var bestID string
	bestMult := s.Rules.BasicAttackPower
	canAttack := combat.CanUsePhysicalAttack(actor)
	if !canAttack {
		bestMult = 0
	}
	for _, id := range actor.Skills {
		def, err := skills.Skill(id)
		if err != nil {
			return nil, fmt.Errorf("autopilot: %w", err)
		}
		if def.Passive || !def.IsOffensive() || actor.TP < def.TPCost || !combat.CanUseSkill(actor, def) {
			continue
		}
		if m := def.TotalMultiplier(); m > bestMult {
			bestID, bestMult = def.ID, m
		}
	}
	switch {
	case bestID != "":
		return combat.SkillAction{ActorID: actorID, SkillID: bestID, TargetTile: tile, TargetID: target.ID}, nil
	case canAttack:
		return combat.AttackAction{ActorID: actorID, TargetTile: tile, TargetID: target.ID}, nil
	}
	return combat.DefendAction{ActorID: actorID}, nil
}

func weakestEnemy(s *combat.State) (combat.Entity, bool) {
	var best combat.Entity
	found := false
	for _, e := range s.AliveEnemies() {
		if !found || e.HP < best.HP {
			best, found = e, true
		}
	}
	return best, found
}

// AutoPlay drives the battle until it is over or maxSteps turns have been
// taken: party members follow Autopilot, enemies their AI.
//
// Postcondition: Returns the final snapshot; err wraps ErrUnknownBattle, a
// lookup error, or reports that maxSteps was exhausted.
func (m *Manager) AutoPlay(id string, maxSteps int) (Battle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.battles[id]
	if !ok {
		return Battle{}, fmt.Errorf("%w: %q", ErrUnknownBattle, id)
	}
	for step := 0; step < maxSteps && !b.over(); step++ {
		actor, ok := b.state.CurrentActor()
		if !ok {
			return snapshot(id, b), fmt.Errorf("battle %s: no current actor", id)
		}
		if actor.IsParty {
			a, err := Autopilot(b.state, actor.ID, m.skills)
			if err != nil {
				return snapshot(id, b), fmt.Errorf("battle %s: %w", id, err)
			}
			if _, err := m.submit(id, b, a); err != nil {
				return snapshot(id, b), err
			}
		} else {
			res, err := combat.ExecuteEnemyTurn(b.state, actor.ID, m.rng, m.skills, m.enemies)
			if err != nil {
				return snapshot(id, b), fmt.Errorf("battle %s: %w", id, err)
			}
			m.apply(id, b, res)
		}
		if !b.over() {
			m.advance(id, b)
		}
	}
	if !b.over() {
		return snapshot(id, b), fmt.Errorf("battle %s: unresolved after %d steps", id, maxSteps)
	}
	return snapshot(id, b), nil
}
