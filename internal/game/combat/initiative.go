package combat

import (
	"sort"

	"github.com/cory-johannsen/labyrinth/internal/game/condition"
)

// Speed returns e's ordering speed: buffed AGI, halved while leg-bound.
// Paralysis does not change speed.
func Speed(e Entity) int {
	agi := e.Stat(condition.StatAgi)
	if e.Binds.Has(condition.BindLeg) {
		agi /= 2
	}
	return agi
}

// SortBySpeed builds a fresh turn order from the living entities of s:
// descending speed, ties broken party-first and then by roster index.
//
// Postcondition: len(result) equals the number of living entities, and every
// entry has HasActed and IsDefending false.
func SortBySpeed(s *State) []TurnEntry {
	type slot struct {
		id    string
		speed int
	}
	var slots []slot
	for _, roster := range [][]Entity{s.Party, s.Enemies} {
		for _, e := range roster {
			if IsAlive(e) {
				slots = append(slots, slot{id: e.ID, speed: Speed(e)})
			}
		}
	}
	// Party then enemies, each in roster order, is exactly the tie-break key,
	// so a stable sort on speed alone is sufficient.
	sort.SliceStable(slots, func(i, j int) bool { return slots[i].speed > slots[j].speed })

	order := make([]TurnEntry, len(slots))
	for i, sl := range slots {
		order[i] = TurnEntry{EntityID: sl.id}
	}
	return order
}
