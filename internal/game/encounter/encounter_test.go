package encounter_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/labyrinth/internal/game/combat"
	"github.com/cory-johannsen/labyrinth/internal/game/encounter"
	"github.com/cory-johannsen/labyrinth/internal/game/enemy"
)

const ambushYAML = `
id: goblin-ambush
name: Goblin Ambush
can_flee: true
enemies:
  - enemy: goblin
    id: left
    position: {row: 0, col: 0}
  - enemy: goblin
    position: {row: 0, col: 0}
hazards:
  - position: {row: 1, col: 0}
    hazard: spike
`

const partyYAML = `
party:
  - id: ada
    name: Ada
    max_hp: 80
    max_tp: 20
    stats: {str: 18, vit: 12, int: 6, wis: 8, agi: 14, luc: 7}
    skills: [power-strike]
  - id: bram
    hp: 30
    max_hp: 60
    stats: {str: 8, vit: 9, int: 16, wis: 14, agi: 10, luc: 9}
    resistances:
      sleep: 0.25
`

func goblins(t *testing.T) *enemy.Registry {
	t.Helper()
	reg := enemy.NewRegistry()
	require.NoError(t, reg.Register(enemy.Definition{ID: "goblin", Name: "Goblin", MaxHP: 20}))
	return reg
}

func TestParse_AndBuild(t *testing.T) {
	def, err := encounter.Parse([]byte(ambushYAML))
	require.NoError(t, err)
	assert.True(t, def.CanFlee)
	require.Len(t, def.Enemies, 2)

	party, err := encounter.ParseParty([]byte(partyYAML))
	require.NoError(t, err)

	enc, err := encounter.Build(def, party, goblins(t))
	require.NoError(t, err)
	require.Len(t, enc.Enemies, 2)
	assert.Equal(t, "left", enc.Enemies[0].InstanceID)
	assert.True(t, strings.HasPrefix(enc.Enemies[1].InstanceID, "goblin-"))
	assert.Equal(t, 20, enc.Enemies[1].Definition.MaxHP)
	assert.Equal(t, []combat.HazardPlacement{{Position: combat.GridPosition{Row: 1, Col: 0}, Hazard: combat.HazardSpike}}, enc.Hazards)
}

func TestBuild_InstanceIDsAreUnique(t *testing.T) {
	def, err := encounter.Parse([]byte(ambushYAML))
	require.NoError(t, err)
	def.Enemies[0].ID = ""
	enc, err := encounter.Build(def, nil, goblins(t))
	require.NoError(t, err)
	assert.NotEqual(t, enc.Enemies[0].InstanceID, enc.Enemies[1].InstanceID)
}

func TestBuild_UnknownEnemy(t *testing.T) {
	def, err := encounter.Parse([]byte(ambushYAML))
	require.NoError(t, err)
	_, err = encounter.Build(def, nil, enemy.NewRegistry())
	assert.ErrorIs(t, err, enemy.ErrUnknownEnemy)
}

func TestParseParty_Defaults(t *testing.T) {
	party, err := encounter.ParseParty([]byte(partyYAML))
	require.NoError(t, err)
	require.Len(t, party, 2)

	assert.Equal(t, 80, party[0].HP)
	assert.Equal(t, 20, party[0].TP)
	assert.Equal(t, 18, party[0].Stats.Str)
	assert.Equal(t, 30, party[1].HP)
	assert.Equal(t, "bram", party[1].Name)
	assert.Equal(t, 0.25, party[1].Resistances.Of("sleep"))
}

func TestParse_Rejects(t *testing.T) {
	cases := map[string]string{
		"unknown field":  "id: x\nboss: true\nenemies: [{enemy: goblin, position: {row: 0, col: 0}}]\n",
		"no enemies":     "id: x\n",
		"off grid":       "id: x\nenemies: [{enemy: goblin, position: {row: 4, col: 0}}]\n",
		"unknown hazard": "id: x\nenemies: [{enemy: goblin, position: {row: 0, col: 0}}]\nhazards: [{position: {row: 0, col: 0}, hazard: lava}]\n",
		"missing id":     "enemies: [{enemy: goblin, position: {row: 0, col: 0}}]\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := encounter.Parse([]byte(src))
			assert.Error(t, err)
		})
	}
}

func TestParseParty_Rejects(t *testing.T) {
	_, err := encounter.ParseParty([]byte("party: []\n"))
	assert.ErrorIs(t, err, encounter.ErrEmptyParty)
	_, err = encounter.ParseParty([]byte("party: [{id: a}]\n"))
	assert.Error(t, err)
	_, err = encounter.ParseParty([]byte("party: [{max_hp: 10}]\n"))
	assert.Error(t, err)
}

func TestLoad_FromFiles(t *testing.T) {
	dir := t.TempDir()
	encPath := filepath.Join(dir, "ambush.yaml")
	partyPath := filepath.Join(dir, "party.yaml")
	require.NoError(t, os.WriteFile(encPath, []byte(ambushYAML), 0644))
	require.NoError(t, os.WriteFile(partyPath, []byte(partyYAML), 0644))

	def, err := encounter.Load(encPath)
	require.NoError(t, err)
	assert.Equal(t, "goblin-ambush", def.ID)
	party, err := encounter.LoadParty(partyPath)
	require.NoError(t, err)
	assert.Len(t, party, 2)

	_, err = encounter.Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
