package enemy

import (
	"fmt"

	"github.com/cory-johannsen/labyrinth/internal/game/dice"
)

// GoldRange is the inclusive range of gold an enemy drops on defeat.
type GoldRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// MaterialDrop is one independently rolled drop-table entry.
type MaterialDrop struct {
	ItemID string  `yaml:"item"`
	Chance float64 `yaml:"chance"`
	MinQty int     `yaml:"min_qty"`
	MaxQty int     `yaml:"max_qty"`
}

// DropTable defines the possible rewards of defeating one enemy.
type DropTable struct {
	Gold      *GoldRange     `yaml:"gold"`
	Materials []MaterialDrop `yaml:"materials"`
}

// Validate checks that the drop table satisfies its invariants.
//
// Postcondition: Returns nil iff all gold and material constraints hold; an
// empty table is valid. A zero MaxQty is read as MinQty.
func (dt *DropTable) Validate() error {
	if dt.Gold != nil {
		if dt.Gold.Min < 0 {
			return fmt.Errorf("drop table: gold min must be >= 0, got %d", dt.Gold.Min)
		}
		if dt.Gold.Min > dt.Gold.Max {
			return fmt.Errorf("drop table: gold min (%d) must be <= max (%d)", dt.Gold.Min, dt.Gold.Max)
		}
	}
	for i, m := range dt.Materials {
		if m.ItemID == "" {
			return fmt.Errorf("drop table: material[%d] must have a non-empty item id", i)
		}
		if m.Chance <= 0 || m.Chance > 1.0 {
			return fmt.Errorf("drop table: material[%d] chance must be in (0, 1.0], got %f", i, m.Chance)
		}
		if m.MinQty < 1 {
			return fmt.Errorf("drop table: material[%d] min_qty must be >= 1, got %d", i, m.MinQty)
		}
		if m.MaxQty != 0 && m.MinQty > m.MaxQty {
			return fmt.Errorf("drop table: material[%d] min_qty (%d) must be <= max_qty (%d)", i, m.MinQty, m.MaxQty)
		}
	}
	return nil
}

// Material is one rolled material stack.
type Material struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// DropResult holds the rewards rolled for a single defeated enemy.
type DropResult struct {
	Gold      int
	Materials []Material
}

// RollDrops rolls dt against src. Gold is drawn first, then each material
// entry in table order gets one chance draw. Ranges without a spread consume
// no draw.
//
// Precondition: dt must have passed Validate.
// Postcondition: Gold is in [Gold.Min, Gold.Max] when set; each Quantity is
// in [MinQty, MaxQty].
func RollDrops(dt DropTable, src dice.Source) DropResult {
	var result DropResult
	if dt.Gold != nil {
		result.Gold = dice.IntRange(src, dt.Gold.Min, dt.Gold.Max)
	}
	for _, m := range dt.Materials {
		if !dice.Chance(src, m.Chance) {
			continue
		}
		qty := dice.IntRange(src, m.MinQty, m.MaxQty)
		result.Materials = append(result.Materials, Material{ItemID: m.ItemID, Quantity: qty})
	}
	return result
}
