package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/labyrinth/internal/game/combat"
	"github.com/cory-johannsen/labyrinth/internal/game/condition"
	"github.com/cory-johannsen/labyrinth/internal/game/skill"
)

func TestInitializeCombat_BuildsOpeningState(t *testing.T) {
	p := hero("p1", 20, 15)
	p.Skills = []string{"power-strike", "sharp-eyes"}
	p.Resistances = condition.Resistances{"poison": 0.2}
	g := goblin(30)
	g.Skills = []string{"leg-bind-basic"}

	s := newBattle(t, combat.Encounter{
		Party:   []combat.PartyMember{p},
		Enemies: []combat.EnemySpawn{spawn(g, "g1", 2, 1)},
		Hazards: []combat.HazardPlacement{{Position: pos(1, 1), Hazard: combat.HazardWeb}},
		CanFlee: true,
	})

	assert.Equal(t, 1, s.Round)
	assert.Equal(t, 0, s.ComboCounter)
	assert.Equal(t, combat.PhaseActive, s.Phase)
	assert.True(t, s.CanFlee)
	assert.Equal(t, 0, s.CurrentActorIndex)
	assert.Equal(t, []string{"p1", "g1"}, orderIDs(s.TurnOrder))

	member := entity(t, s, "p1")
	assert.True(t, member.IsParty)
	assert.InDelta(t, 0.25, member.Passives.CritBonus, 1e-9)
	assert.InDelta(t, 0.5, member.Resist("sleep"), 1e-9)
	assert.InDelta(t, 0.2, member.Resist("poison"), 1e-9)

	gob := entity(t, s, "g1")
	assert.False(t, gob.IsParty)
	assert.Equal(t, 30, gob.HP)
	assert.Equal(t, 10, gob.TP)
	assert.Equal(t, "goblin", gob.DefinitionID)
	assert.Equal(t, []string{"leg-bind-basic"}, gob.Skills)

	at, ok := s.Grid.EntityPosition("g1")
	require.True(t, ok)
	assert.Equal(t, pos(2, 1), at)
	tile, _ := s.Grid.Tile(pos(1, 1))
	assert.Equal(t, combat.HazardWeb, tile.Hazard)
	assert.Len(t, s.EntitiesAtTile(pos(2, 1)), 1)
}

func TestInitializeCombat_RejectsMalformedEncounters(t *testing.T) {
	cases := map[string]combat.Encounter{
		"no party":   {Enemies: []combat.EnemySpawn{spawn(goblin(5), "g1", 0, 0)}},
		"no enemies": {Party: []combat.PartyMember{hero("p1", 10, 10)}},
		"duplicate ids": {
			Party:   []combat.PartyMember{hero("x", 10, 10)},
			Enemies: []combat.EnemySpawn{spawn(goblin(5), "x", 0, 0)},
		},
		"off grid": {
			Party:   []combat.PartyMember{hero("p1", 10, 10)},
			Enemies: []combat.EnemySpawn{spawn(goblin(5), "g1", 3, 0)},
		},
		"missing instance id": {
			Party:   []combat.PartyMember{hero("p1", 10, 10)},
			Enemies: []combat.EnemySpawn{spawn(goblin(5), "", 0, 0)},
		},
		"unknown hazard": {
			Party:   []combat.PartyMember{hero("p1", 10, 10)},
			Enemies: []combat.EnemySpawn{spawn(goblin(5), "g1", 0, 0)},
			Hazards: []combat.HazardPlacement{{Position: pos(0, 0), Hazard: "lava"}},
		},
	}
	for name, enc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := combat.InitializeCombat(enc, testSkills(t), testRules())
			assert.ErrorIs(t, err, combat.ErrInvalidEncounter)
		})
	}
}

func TestInitializeCombat_UnknownPartySkill(t *testing.T) {
	p := hero("p1", 10, 10)
	p.Skills = []string{"meteor"}
	_, err := combat.InitializeCombat(combat.Encounter{
		Party:   []combat.PartyMember{p},
		Enemies: []combat.EnemySpawn{spawn(goblin(5), "g1", 0, 0)},
	}, testSkills(t), testRules())
	assert.ErrorIs(t, err, skill.ErrUnknownSkill)
}

func TestInitializeCombat_DeadPartyStartsDefeated(t *testing.T) {
	p := hero("p1", 10, 10)
	p.HP = 0
	s, err := combat.InitializeCombat(combat.Encounter{
		Party:   []combat.PartyMember{p},
		Enemies: []combat.EnemySpawn{spawn(goblin(5), "g1", 0, 0)},
	}, testSkills(t), testRules())
	require.NoError(t, err)
	assert.Equal(t, combat.PhaseDefeat, s.Phase)
	assert.Equal(t, []string{"g1"}, orderIDs(s.TurnOrder))
}
