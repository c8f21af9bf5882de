package combat

import (
	"fmt"
	"slices"
)

// GridSize is the side length of the square battle grid.
const GridSize = 3

// GridPosition addresses one tile. Row 0 is the front row, closest to the
// party; row GridSize-1 is the back row.
type GridPosition struct {
	Row int `json:"row" yaml:"row"`
	Col int `json:"col" yaml:"col"`
}

// String renders p as "[row,col]".
func (p GridPosition) String() string { return fmt.Sprintf("[%d,%d]", p.Row, p.Col) }

// IsValidPosition reports whether p lies inside the grid.
func IsValidPosition(p GridPosition) bool {
	return p.Row >= 0 && p.Row < GridSize && p.Col >= 0 && p.Col < GridSize
}

// HazardType is a standing trap on a tile. The empty value means no hazard.
type HazardType string

const (
	HazardNone  HazardType = ""
	HazardSpike HazardType = "spike"
	HazardWeb   HazardType = "web"
	HazardFire  HazardType = "fire"
)

// BattleTile is one grid cell. Only enemies are placed on the grid.
type BattleTile struct {
	Position GridPosition
	Entities []string
	Hazard   HazardType
}

// Grid is the 3×3 battle grid, indexed [row][col].
//
// Invariant: every enemy ID appears in exactly one tile's Entities list.
// Grid methods never modify the receiver; mutating operations return a new
// Grid whose tile slices are not shared with the receiver.
type Grid [GridSize][GridSize]BattleTile

// NewGrid returns an empty grid with every tile's Position set.
func NewGrid() Grid {
	var g Grid
	for r := 0; r < GridSize; r++ {
		for c := 0; c < GridSize; c++ {
			g[r][c].Position = GridPosition{Row: r, Col: c}
		}
	}
	return g
}

func (g Grid) clone() Grid {
	for r := 0; r < GridSize; r++ {
		for c := 0; c < GridSize; c++ {
			g[r][c].Entities = slices.Clone(g[r][c].Entities)
		}
	}
	return g
}

// Tile returns the tile at p.
//
// Postcondition: ok is false iff p is outside the grid.
func (g Grid) Tile(p GridPosition) (BattleTile, bool) {
	if !IsValidPosition(p) {
		return BattleTile{}, false
	}
	t := g[p.Row][p.Col]
	t.Entities = slices.Clone(t.Entities)
	return t, true
}

// EntityIDsAtTile returns a copy of the IDs placed on p, or nil when p is
// invalid.
func (g Grid) EntityIDsAtTile(p GridPosition) []string {
	t, ok := g.Tile(p)
	if !ok {
		return nil
	}
	return t.Entities
}

// AddEntityToTile returns a new grid with id appended to the tile at p.
// An invalid position or an ID already on that tile leaves the grid unchanged.
func (g Grid) AddEntityToTile(p GridPosition, id string) Grid {
	if !IsValidPosition(p) {
		return g
	}
	for _, cur := range g[p.Row][p.Col].Entities {
		if cur == id {
			return g
		}
	}
	ng := g.clone()
	ng[p.Row][p.Col].Entities = append(ng[p.Row][p.Col].Entities, id)
	return ng
}

// RemoveEntityFromTile returns a new grid without id on the tile at p.
func (g Grid) RemoveEntityFromTile(p GridPosition, id string) Grid {
	if !IsValidPosition(p) {
		return g
	}
	ng := g.clone()
	kept := ng[p.Row][p.Col].Entities[:0]
	for _, cur := range ng[p.Row][p.Col].Entities {
		if cur != id {
			kept = append(kept, cur)
		}
	}
	ng[p.Row][p.Col].Entities = kept
	return ng
}

// EntityPosition finds the tile holding id by linear scan.
func (g Grid) EntityPosition(id string) (GridPosition, bool) {
	for r := 0; r < GridSize; r++ {
		for c := 0; c < GridSize; c++ {
			for _, cur := range g[r][c].Entities {
				if cur == id {
					return GridPosition{Row: r, Col: c}, true
				}
			}
		}
	}
	return GridPosition{}, false
}

// MoveEntity returns a new grid with id moved to "to". Moving an entity that
// is not on the grid, or to an invalid position, leaves the grid unchanged.
func (g Grid) MoveEntity(id string, to GridPosition) Grid {
	from, ok := g.EntityPosition(id)
	if !ok || !IsValidPosition(to) || from == to {
		return g
	}
	return g.RemoveEntityFromTile(from, id).AddEntityToTile(to, id)
}

// WithHazard returns a new grid with the hazard at p replaced by h.
func (g Grid) WithHazard(p GridPosition, h HazardType) Grid {
	if !IsValidPosition(p) {
		return g
	}
	ng := g.clone()
	ng[p.Row][p.Col].Hazard = h
	return ng
}
