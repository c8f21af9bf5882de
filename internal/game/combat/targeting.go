package combat

import (
	"github.com/cory-johannsen/labyrinth/internal/game/condition"
	"github.com/cory-johannsen/labyrinth/internal/game/skill"
)

// CanUsePhysicalAttack reports whether e can make a basic attack: it must be
// awake and its arms free.
func CanUsePhysicalAttack(e Entity) bool {
	return physicalBlock(e) == ""
}

// CanUseSpell reports whether e can cast an INT-based skill: it must be awake
// and its head free.
func CanUseSpell(e Entity) bool {
	return IsAlive(e) && !e.Ailments.Has(condition.Sleep) && !e.Binds.Has(condition.BindHead)
}

// CanUseSkill reports whether e's binds and ailments allow casting def.
// TP is not checked.
func CanUseSkill(e Entity, def skill.Definition) bool {
	return skillBlock(e, def) == ""
}

func physicalBlock(e Entity) string {
	switch {
	case !IsAlive(e):
		return ReasonInvalidActor
	case e.Ailments.Has(condition.Sleep):
		return ReasonAsleep
	case e.Binds.Has(condition.BindArm):
		return ReasonArmBound
	}
	return ""
}

func skillBlock(e Entity, def skill.Definition) string {
	switch {
	case !IsAlive(e):
		return ReasonInvalidActor
	case e.Ailments.Has(condition.Sleep):
		return ReasonAsleep
	case def.IsSpell() && e.Binds.Has(condition.BindHead):
		return ReasonHeadBound
	case def.BodyPart != "" && e.Binds.Has(def.BodyPart):
		return boundReason(def.BodyPart)
	}
	return ""
}

func boundReason(p condition.BindPart) string {
	switch p {
	case condition.BindHead:
		return ReasonHeadBound
	case condition.BindArm:
		return ReasonArmBound
	}
	return ReasonLegBound
}

// ResolveTargets returns the IDs of the living entities affected by an
// action of target type t cast by actor.
//
//   - single: a party actor hits every living enemy on tile, or on the tile
//     holding targetID when set; a targetID that is not a placed enemy
//     addresses nothing. An enemy actor hits the party member targetID.
//   - all: every living member of the opposing side.
//   - self: the actor.
//   - ally: the living same-side member targetID, or the actor when targetID
//     is empty.
//   - all-allies: every living member of the actor's side.
//
// Postcondition: every returned ID names a living entity; the result is
// empty when nothing valid is addressed.
func ResolveTargets(s *State, actor Entity, t skill.TargetType, tile GridPosition, targetID string) []string {
	switch t {
	case skill.TargetSingle:
		if actor.IsParty {
			if targetID != "" {
				e, ok := s.FindEntity(targetID)
				if !ok || e.IsParty {
					return nil
				}
				pos, placed := s.Grid.EntityPosition(targetID)
				if !placed {
					return nil
				}
				tile = pos
			}
			return livingAtTile(s, tile)
		}
		if e, ok := s.FindEntity(targetID); ok && e.IsParty && IsAlive(e) {
			return []string{e.ID}
		}
		return nil
	case skill.TargetAll:
		if actor.IsParty {
			return ids(s.AliveEnemies())
		}
		return ids(s.AliveParty())
	case skill.TargetSelf:
		if IsAlive(actor) {
			return []string{actor.ID}
		}
		return nil
	case skill.TargetAlly:
		if targetID == "" {
			targetID = actor.ID
		}
		if e, ok := s.FindEntity(targetID); ok && e.IsParty == actor.IsParty && IsAlive(e) {
			return []string{e.ID}
		}
		return nil
	case skill.TargetAllAllies:
		if actor.IsParty {
			return ids(s.AliveParty())
		}
		return ids(s.AliveEnemies())
	}
	return nil
}

func livingAtTile(s *State, p GridPosition) []string {
	var out []string
	for _, e := range s.EntitiesAtTile(p) {
		if IsAlive(e) {
			out = append(out, e.ID)
		}
	}
	return out
}

func ids(es []Entity) []string {
	out := make([]string, 0, len(es))
	for _, e := range es {
		out = append(out, e.ID)
	}
	return out
}
