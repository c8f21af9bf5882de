package combat

import "slices"

// Phase is the battle's lifecycle stage.
type Phase string

const (
	PhaseActive  Phase = "active"
	PhaseVictory Phase = "victory"
	PhaseDefeat  Phase = "defeat"
)

// TurnEntry is one slot of a round's turn order.
type TurnEntry struct {
	EntityID    string
	HasActed    bool
	IsDefending bool
}

// State is the aggregate root of a battle.
//
// Invariant: Phase is only changed by the victory/defeat transition.
// Invariant: ComboCounter is 0 at the start of every round.
type State struct {
	Party             []Entity
	Enemies           []Entity
	Grid              Grid
	TurnOrder         []TurnEntry
	CurrentActorIndex int
	Round             int
	ComboCounter      int
	CanFlee           bool
	Phase             Phase
	Rules             Rules
}

// Result is the output of every resolution function: the new state and the
// events produced by this call, in order.
type Result struct {
	State  *State
	Events []Event
}

// Clone returns a deep copy of s. Skill ID lists and resistance maps are
// shared because the engine never mutates them after InitializeCombat.
func (s *State) Clone() *State {
	ns := *s
	ns.Party = cloneEntities(s.Party)
	ns.Enemies = cloneEntities(s.Enemies)
	ns.Grid = s.Grid.clone()
	ns.TurnOrder = slices.Clone(s.TurnOrder)
	return &ns
}

func cloneEntities(in []Entity) []Entity {
	if in == nil {
		return nil
	}
	out := make([]Entity, len(in))
	for i, e := range in {
		out[i] = e.clone()
	}
	return out
}

// FindEntity looks id up in the party first, then the enemies.
func (s *State) FindEntity(id string) (Entity, bool) {
	if e := s.entityRef(id); e != nil {
		return e.clone(), true
	}
	return Entity{}, false
}

func (s *State) entityRef(id string) *Entity {
	for i := range s.Party {
		if s.Party[i].ID == id {
			return &s.Party[i]
		}
	}
	for i := range s.Enemies {
		if s.Enemies[i].ID == id {
			return &s.Enemies[i]
		}
	}
	return nil
}

// AliveParty returns the living party members in roster order.
func (s *State) AliveParty() []Entity { return alive(s.Party) }

// AliveEnemies returns the living enemies in roster order.
func (s *State) AliveEnemies() []Entity { return alive(s.Enemies) }

func alive(in []Entity) []Entity {
	var out []Entity
	for _, e := range in {
		if IsAlive(e) {
			out = append(out, e.clone())
		}
	}
	return out
}

// IsPartyWiped reports whether no party member is alive.
func (s *State) IsPartyWiped() bool { return len(s.AliveParty()) == 0 }

// IsAllEnemiesDefeated reports whether no enemy is alive.
func (s *State) IsAllEnemiesDefeated() bool { return len(s.AliveEnemies()) == 0 }

// EntitiesAtTile returns the entities placed on p, dead or alive, in tile
// order.
func (s *State) EntitiesAtTile(p GridPosition) []Entity {
	var out []Entity
	for _, id := range s.Grid.EntityIDsAtTile(p) {
		if e, ok := s.FindEntity(id); ok {
			out = append(out, e)
		}
	}
	return out
}

// CurrentActor returns the entity whose turn it is.
//
// Postcondition: ok is false when the turn order is empty or the index is
// out of range.
func (s *State) CurrentActor() (Entity, bool) {
	entry, ok := s.currentEntry()
	if !ok {
		return Entity{}, false
	}
	return s.FindEntity(entry.EntityID)
}

func (s *State) currentEntry() (TurnEntry, bool) {
	if s.CurrentActorIndex < 0 || s.CurrentActorIndex >= len(s.TurnOrder) {
		return TurnEntry{}, false
	}
	return s.TurnOrder[s.CurrentActorIndex], true
}

// NextAliveActor peeks at the next living entity after the current one in
// this round's order, without advancing.
//
// Postcondition: ok is false when the rest of the round has no living actor;
// the next AdvanceTurn will start a new round.
func (s *State) NextAliveActor() (Entity, bool) {
	for i := s.CurrentActorIndex + 1; i < len(s.TurnOrder); i++ {
		if e, ok := s.FindEntity(s.TurnOrder[i].EntityID); ok && IsAlive(e) {
			return e, true
		}
	}
	return Entity{}, false
}

func (s *State) turnEntryIndex(id string) int {
	for i, t := range s.TurnOrder {
		if t.EntityID == id {
			return i
		}
	}
	return -1
}

func (s *State) isDefending(id string) bool {
	if i := s.turnEntryIndex(id); i >= 0 {
		return s.TurnOrder[i].IsDefending
	}
	return false
}

// UpdatePhase applies the phase transition rule to s and returns the
// resulting state together with a VictoryEvent or DefeatEvent when the phase
// changed. Victory is checked before defeat.
func UpdatePhase(s *State) Result {
	if s.Phase != PhaseActive {
		return Result{State: s}
	}
	r := newResolution(s.Clone(), nil)
	r.updatePhase()
	if len(r.events) == 0 {
		return Result{State: s}
	}
	return r.result()
}
