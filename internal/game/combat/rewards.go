package combat

import (
	"fmt"

	"github.com/cory-johannsen/labyrinth/internal/game/dice"
	"github.com/cory-johannsen/labyrinth/internal/game/enemy"
)

// Rewards is the spoils of a battle.
type Rewards struct {
	XP        int              `json:"xp"`
	Gold      int              `json:"gold"`
	Materials []enemy.Material `json:"materials"`
}

// CalculateRewards totals the XP of every defeated enemy and rolls each one's
// drop table, in roster order. Enemies still alive (after a flee) grant
// nothing. Materials with the same item ID are merged, keeping first-seen
// order.
//
// Postcondition: err wraps enemy.ErrUnknownEnemy when a defeated enemy's
// definition cannot be resolved.
func CalculateRewards(s *State, rng dice.Source, enemies EnemyLookup) (Rewards, error) {
	var out Rewards
	index := make(map[string]int)
	for _, e := range s.Enemies {
		if IsAlive(e) {
			continue
		}
		def, err := enemies.Enemy(e.DefinitionID)
		if err != nil {
			return Rewards{}, fmt.Errorf("rewards for %q: %w", e.ID, err)
		}
		out.XP += def.XP
		if def.Drops == nil {
			continue
		}
		drop := enemy.RollDrops(*def.Drops, rng)
		out.Gold += drop.Gold
		for _, m := range drop.Materials {
			if i, ok := index[m.ItemID]; ok {
				out.Materials[i].Quantity += m.Quantity
				continue
			}
			index[m.ItemID] = len(out.Materials)
			out.Materials = append(out.Materials, m)
		}
	}
	return out, nil
}
