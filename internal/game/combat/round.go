package combat

import (
	"github.com/cory-johannsen/labyrinth/internal/game/condition"
	"github.com/cory-johannsen/labyrinth/internal/game/dice"
)

// maxAdvanceSteps bounds the walk in AdvanceTurn. Every skipped turn ticks a
// finite status duration, so the bound is only reached by corrupt states.
const maxAdvanceSteps = 1024

// AdvanceTurn ends the current actor's turn and moves to the next living
// actor, starting a new round when the order is exhausted.
//
// When the new actor is resolved its turn-start upkeep runs: poison deals its
// potency as damage, sleep and paralysis roll a skip, then binds, ailments
// and buffs tick down by one. A skipped actor is passed automatically and the
// walk continues.
//
// Postcondition: when Phase is still PhaseActive the current actor is alive
// and has not acted.
func AdvanceTurn(s *State, rng dice.Source) Result {
	if s.Phase != PhaseActive {
		return Result{State: s}
	}
	r := newResolution(s.Clone(), rng)
	r.advance()
	return r.result()
}

func (r *resolution) advance() {
	s := r.s
	if s.CurrentActorIndex >= 0 && s.CurrentActorIndex < len(s.TurnOrder) {
		s.TurnOrder[s.CurrentActorIndex].HasActed = true
	}

	next := s.CurrentActorIndex + 1
	for step := 0; step < maxAdvanceSteps; step++ {
		if next >= len(s.TurnOrder) {
			r.startRound()
			if len(s.TurnOrder) == 0 {
				r.updatePhase()
				return
			}
			next = 0
		}
		s.CurrentActorIndex = next
		e := s.entityRef(s.TurnOrder[next].EntityID)
		if e != nil && IsAlive(*e) {
			if r.beginTurn(e) {
				return
			}
			s.TurnOrder[next].HasActed = true
			if s.Phase != PhaseActive {
				return
			}
		}
		next++
	}
}

func (r *resolution) startRound() {
	s := r.s
	s.Round++
	s.ComboCounter = 0
	s.TurnOrder = SortBySpeed(s)
	s.CurrentActorIndex = 0
	r.emit(RoundStartEvent{Round: s.Round})
}

// beginTurn runs e's turn-start upkeep and reports whether e gets to act.
func (r *resolution) beginTurn(e *Entity) bool {
	rules := r.s.Rules

	if p := e.Ailments.Get(condition.Poison); p.Active() {
		dmg := p.Potency
		if dmg < 1 {
			dmg = 1
		}
		killed := r.applyDamage(e, dmg)
		r.emit(PoisonTickEvent{EntityID: e.ID, Damage: dmg, Killed: killed})
		if killed {
			r.updatePhase()
			return false
		}
	}

	skip := ""
	switch {
	case e.Ailments.Has(condition.Sleep):
		if dice.Chance(r.rng, rules.SleepSkipChance) {
			skip = ReasonSleep
		} else {
			r.wake(e)
		}
	case e.Ailments.Has(condition.Paralyze):
		if dice.Chance(r.rng, rules.ParalyzeSkipChance) {
			skip = ReasonParalyzed
		}
	}

	r.tickStatuses(e)

	if skip != "" {
		r.emit(TurnSkipEvent{EntityID: e.ID, Reason: skip})
		return false
	}
	return true
}

func (r *resolution) tickStatuses(e *Entity) {
	var parts []condition.BindPart
	e.Binds, parts = e.Binds.Tick()
	for _, p := range parts {
		r.emit(StatusExpiredEvent{EntityID: e.ID, Status: p.ResistKey()})
	}

	var kinds []condition.AilmentKind
	e.Ailments, kinds = e.Ailments.Tick()
	for _, k := range kinds {
		r.emit(StatusExpiredEvent{EntityID: e.ID, Status: string(k)})
	}

	var buffs []string
	e.Buffs, buffs = condition.TickBuffs(e.Buffs)
	for _, id := range buffs {
		r.emit(StatusExpiredEvent{EntityID: e.ID, Status: id})
	}
}
