package enemy_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/labyrinth/internal/game/enemy"
)

const goblinYAML = `
enemies:
  - id: goblin
    name: Goblin
    max_hp: 30
    max_tp: 10
    stats: {str: 8, vit: 6, int: 2, wis: 3, agi: 9, luc: 4}
    skills: [rusty-slash]
    ai_pattern: aggressive
    xp: 12
    resistances:
      poison: 0.5
    drops:
      gold: {min: 3, max: 7}
      materials:
        - {item: goblin-ear, chance: 0.5, min_qty: 1, max_qty: 2}
  - id: shaman
    name: Goblin Shaman
    max_hp: 20
    ai_pattern: scripted
    script: |
      function choose(ctx) return { action = "defend" } end
`

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "goblins.yaml"), []byte(goblinYAML), 0644))

	reg, err := enemy.LoadDirectory(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, reg.Len())

	g, err := reg.Enemy("goblin")
	require.NoError(t, err)
	assert.Equal(t, 9, g.Stats.Agi)
	assert.Equal(t, 0.5, g.Resistances.Of("poison"))
	require.NotNil(t, g.Drops)
	assert.Equal(t, 7, g.Drops.Gold.Max)

	s, err := reg.Enemy("shaman")
	require.NoError(t, err)
	assert.Equal(t, enemy.Scripted, s.Pattern())
}

func TestRegistry_Unknown(t *testing.T) {
	_, err := enemy.NewRegistry().Enemy("dragon")
	assert.True(t, errors.Is(err, enemy.ErrUnknownEnemy))
}

func TestDefinition_Validate(t *testing.T) {
	ok := enemy.Definition{ID: "rat", Name: "Rat", MaxHP: 5}
	assert.NoError(t, ok.Validate())
	assert.Equal(t, enemy.Aggressive, ok.Pattern())

	bad := []enemy.Definition{
		{Name: "Rat", MaxHP: 5},
		{ID: "rat", MaxHP: 5},
		{ID: "rat", Name: "Rat"},
		{ID: "rat", Name: "Rat", MaxHP: 5, MaxTP: -1},
		{ID: "rat", Name: "Rat", MaxHP: 5, XP: -3},
		{ID: "rat", Name: "Rat", MaxHP: 5, AIPattern: "cowardly"},
		{ID: "rat", Name: "Rat", MaxHP: 5, AIPattern: enemy.Scripted},
		{ID: "rat", Name: "Rat", MaxHP: 5, AIPattern: enemy.Scripted, Script: "function choose(ctx"},
		{ID: "rat", Name: "Rat", MaxHP: 5, Drops: &enemy.DropTable{Gold: &enemy.GoldRange{Min: 5, Max: 1}}},
	}
	for i, d := range bad {
		d := d
		assert.Error(t, d.Validate(), "case %d", i)
	}
}
