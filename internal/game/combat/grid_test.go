package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/labyrinth/internal/game/combat"
	"github.com/cory-johannsen/labyrinth/internal/game/condition"
	"github.com/cory-johannsen/labyrinth/internal/game/dice"
)

func pos(row, col int) combat.GridPosition { return combat.GridPosition{Row: row, Col: col} }

func TestIsValidPosition(t *testing.T) {
	assert.True(t, combat.IsValidPosition(pos(0, 0)))
	assert.True(t, combat.IsValidPosition(pos(2, 2)))
	assert.False(t, combat.IsValidPosition(pos(-1, 0)))
	assert.False(t, combat.IsValidPosition(pos(0, 3)))
}

func TestGrid_AddRemoveDoNotMutateReceiver(t *testing.T) {
	g := combat.NewGrid()
	g1 := g.AddEntityToTile(pos(1, 1), "a")
	g2 := g1.AddEntityToTile(pos(1, 1), "b")

	assert.Empty(t, g.EntityIDsAtTile(pos(1, 1)))
	assert.Equal(t, []string{"a"}, g1.EntityIDsAtTile(pos(1, 1)))
	assert.Equal(t, []string{"a", "b"}, g2.EntityIDsAtTile(pos(1, 1)))

	g3 := g2.RemoveEntityFromTile(pos(1, 1), "a")
	assert.Equal(t, []string{"b"}, g3.EntityIDsAtTile(pos(1, 1)))
	assert.Equal(t, []string{"a", "b"}, g2.EntityIDsAtTile(pos(1, 1)))
}

func TestGrid_InvalidPositionsAreNoOps(t *testing.T) {
	g := combat.NewGrid().AddEntityToTile(pos(0, 0), "a")
	assert.Equal(t, g, g.AddEntityToTile(pos(5, 5), "b"))
	assert.Equal(t, g, g.MoveEntity("a", pos(-1, 0)))
	assert.Equal(t, g, g.MoveEntity("missing", pos(1, 1)))
	_, ok := g.Tile(pos(3, 3))
	assert.False(t, ok)
	assert.Nil(t, g.EntityIDsAtTile(pos(3, 3)))
}

func TestGrid_MoveEntity(t *testing.T) {
	g := combat.NewGrid().AddEntityToTile(pos(0, 0), "a").AddEntityToTile(pos(1, 0), "b")
	moved := g.MoveEntity("a", pos(1, 0))

	p, ok := moved.EntityPosition("a")
	require.True(t, ok)
	assert.Equal(t, pos(1, 0), p)
	assert.Empty(t, moved.EntityIDsAtTile(pos(0, 0)))
	assert.Equal(t, []string{"b", "a"}, moved.EntityIDsAtTile(pos(1, 0)))
}

func TestProperty_GridKeepsEachEntityOnExactlyOneTile(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		ids := []string{"a", "b", "c", "d"}
		g := combat.NewGrid()
		for _, id := range ids {
			g = g.AddEntityToTile(pos(rapid.IntRange(0, 2).Draw(rt, "row"), rapid.IntRange(0, 2).Draw(rt, "col")), id)
		}
		moves := rapid.IntRange(0, 20).Draw(rt, "moves")
		for i := 0; i < moves; i++ {
			id := rapid.SampledFrom(ids).Draw(rt, "id")
			to := pos(rapid.IntRange(-1, 3).Draw(rt, "toRow"), rapid.IntRange(-1, 3).Draw(rt, "toCol"))
			g = g.MoveEntity(id, to)
		}
		for _, id := range ids {
			count := 0
			for r := 0; r < combat.GridSize; r++ {
				for c := 0; c < combat.GridSize; c++ {
					for _, cur := range g.EntityIDsAtTile(pos(r, c)) {
						if cur == id {
							count++
						}
					}
				}
			}
			if count != 1 {
				rt.Fatalf("entity %q appears on %d tiles", id, count)
			}
		}
	})
}

func displacementBattle(t *testing.T, at combat.GridPosition, hazards ...combat.HazardPlacement) *combat.State {
	t.Helper()
	p := hero("p1", 20, 15)
	p.Skills = []string{"shove", "drag"}
	return newBattle(t, combat.Encounter{
		Party:   []combat.PartyMember{p},
		Enemies: []combat.EnemySpawn{spawn(goblin(100), "g1", at.Row, at.Col)},
		Hazards: hazards,
	})
}

func TestDisplacement_PushMovesOneRowBack(t *testing.T) {
	s := displacementBattle(t, pos(0, 1))
	res, err := combat.ExecuteAction(s, combat.SkillAction{ActorID: "p1", SkillID: "shove", TargetID: "g1"}, dice.Fixed(0), testSkills(t))
	require.NoError(t, err)
	assert.Equal(t, []combat.Event{combat.DisplacementEvent{EntityID: "g1", From: pos(0, 1), To: pos(1, 1)}}, res.Events)
	p, _ := res.State.Grid.EntityPosition("g1")
	assert.Equal(t, pos(1, 1), p)
}

func TestDisplacement_EdgeIsSilentNoOp(t *testing.T) {
	for _, tc := range []struct {
		skill string
		at    combat.GridPosition
	}{
		{"shove", pos(2, 0)},
		{"drag", pos(0, 2)},
	} {
		s := displacementBattle(t, tc.at)
		res, err := combat.ExecuteAction(s, combat.SkillAction{ActorID: "p1", SkillID: tc.skill, TargetTile: tc.at}, dice.Fixed(0), testSkills(t))
		require.NoError(t, err)
		assert.Empty(t, res.Events, tc.skill)
		p, _ := res.State.Grid.EntityPosition("g1")
		assert.Equal(t, tc.at, p)
		assert.True(t, res.State.TurnOrder[0].HasActed, "the turn is still spent")
	}
}

func TestDisplacement_LandingOnHazardTriggersIt(t *testing.T) {
	landing := pos(1, 0)
	t.Run("spike", func(t *testing.T) {
		s := displacementBattle(t, pos(0, 0), combat.HazardPlacement{Position: landing, Hazard: combat.HazardSpike})
		res, err := combat.ExecuteAction(s, combat.SkillAction{ActorID: "p1", SkillID: "shove", TargetID: "g1"}, dice.Fixed(0), testSkills(t))
		require.NoError(t, err)
		require.Len(t, res.Events, 3)
		assert.Equal(t, combat.HazardTriggeredEvent{EntityID: "g1", Hazard: combat.HazardSpike}, res.Events[1])
		// 1d6+4 with every die rolling 1.
		assert.Equal(t, combat.DamageEvent{TargetID: "g1", Damage: 5}, res.Events[2])
		assert.Equal(t, 95, entity(t, res.State, "g1").HP)
		assert.Equal(t, 0, res.State.ComboCounter, "hazard damage is not a hit")
	})
	t.Run("web", func(t *testing.T) {
		s := displacementBattle(t, pos(0, 0), combat.HazardPlacement{Position: landing, Hazard: combat.HazardWeb})
		res, err := combat.ExecuteAction(s, combat.SkillAction{ActorID: "p1", SkillID: "shove", TargetID: "g1"}, dice.Fixed(0), testSkills(t))
		require.NoError(t, err)
		assert.Contains(t, res.Events, combat.Event(combat.BindAppliedEvent{TargetID: "g1", Bind: condition.BindLeg}))
		assert.Equal(t, testRules().WebBindTurns, entity(t, res.State, "g1").Binds.Leg)
	})
	t.Run("fire", func(t *testing.T) {
		s := displacementBattle(t, pos(0, 0), combat.HazardPlacement{Position: landing, Hazard: combat.HazardFire})
		res, err := combat.ExecuteAction(s, combat.SkillAction{ActorID: "p1", SkillID: "shove", TargetID: "g1"}, dice.Fixed(0), testSkills(t))
		require.NoError(t, err)
		assert.Contains(t, res.Events, combat.Event(combat.AilmentAppliedEvent{TargetID: "g1", Ailment: condition.Poison}))
		poison := entity(t, res.State, "g1").Ailments.Poison
		assert.Equal(t, testRules().FirePoisonTurns, poison.TurnsRemaining)
		assert.Equal(t, testRules().FirePoisonPotency, poison.Potency)
	})
}

func TestDisplacement_OntoOccupiedTileGroups(t *testing.T) {
	p := hero("p1", 20, 15)
	p.Skills = []string{"shove"}
	s := newBattle(t, combat.Encounter{
		Party: []combat.PartyMember{p},
		Enemies: []combat.EnemySpawn{
			spawn(goblin(100), "g1", 0, 0),
			spawn(goblin(100), "g2", 1, 0),
		},
	})
	res, err := combat.ExecuteAction(s, combat.SkillAction{ActorID: "p1", SkillID: "shove", TargetID: "g1"}, dice.Fixed(0), testSkills(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"g2", "g1"}, res.State.Grid.EntityIDsAtTile(pos(1, 0)))
}
