package skill_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/labyrinth/internal/game/condition"
	"github.com/cory-johannsen/labyrinth/internal/game/skill"
)

const sampleContent = `
skills:
  - id: leg-bind-basic
    name: Leg Snare
    tp_cost: 3
    target: single
    body_part: arm
    effects:
      - kind: bind
        bind: leg
        chance: 1.0
        duration: 2
  - id: fireball
    name: Fireball
    tp_cost: 6
    target: all
    damage_kind: magical
    body_part: head
    effects:
      - kind: damage
        multiplier: 1.4
      - kind: ailment
        ailment: poison
        chance: 0.3
        duration: 3
        potency: 4
  - id: iron-skin
    name: Iron Skin
    passive: true
    modifiers:
      crit_bonus: 0.05
      resist:
        poison: 0.2
items:
  - id: medica
    name: Medica
    target: ally
    effects:
      - kind: heal
        amount: 50
`

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "core.yaml"), []byte(sampleContent), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("ignored"), 0644))

	reg, err := skill.LoadDirectory(dir)
	require.NoError(t, err)
	skills, items := reg.Len()
	assert.Equal(t, 3, skills)
	assert.Equal(t, 1, items)

	fb, err := reg.Skill("fireball")
	require.NoError(t, err)
	assert.True(t, fb.IsSpell())
	assert.True(t, fb.IsOffensive())
	assert.InDelta(t, 1.4, fb.TotalMultiplier(), 1e-9)

	snare, err := reg.Skill("leg-bind-basic")
	require.NoError(t, err)
	assert.Equal(t, condition.BindLeg, snare.Effects[0].Bind)
	assert.False(t, snare.IsSpell())
	assert.False(t, snare.IsOffensive())

	passive, err := reg.Skill("iron-skin")
	require.NoError(t, err)
	assert.Equal(t, 0.2, passive.Modifiers.Resist.Of("poison"))

	ids := []string{}
	for _, d := range reg.Skills() {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"fireball", "iron-skin", "leg-bind-basic"}, ids)
}

func TestLoadDirectory_UnknownFieldRejected(t *testing.T) {
	dir := t.TempDir()
	bad := "skills:\n  - id: x\n    name: X\n    target: self\n    mana: 3\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte(bad), 0644))
	_, err := skill.LoadDirectory(dir)
	assert.Error(t, err)
}

func TestLoadDirectory_MissingDir(t *testing.T) {
	_, err := skill.LoadDirectory(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestRegistry_UnknownIDs(t *testing.T) {
	reg := skill.NewRegistry()
	_, err := reg.Skill("ghost")
	assert.True(t, errors.Is(err, skill.ErrUnknownSkill))
	_, err = reg.Item("ghost")
	assert.True(t, errors.Is(err, skill.ErrUnknownItem))
}

func TestDefinition_Validate(t *testing.T) {
	valid := skill.Definition{
		ID: "slash", Name: "Slash", Target: skill.TargetSingle,
		Effects: []skill.Effect{{Kind: skill.EffectDamage, Multiplier: 1.2}},
	}
	assert.NoError(t, valid.Validate())

	cases := map[string]skill.Definition{
		"no id":          {Name: "X", Target: skill.TargetSelf},
		"no name":        {ID: "x", Target: skill.TargetSelf},
		"negative tp":    {ID: "x", Name: "X", TPCost: -1, Target: skill.TargetSelf},
		"bad target":     {ID: "x", Name: "X", Target: "row", Effects: valid.Effects},
		"no effects":     {ID: "x", Name: "X", Target: skill.TargetSelf},
		"bad body part":  {ID: "x", Name: "X", BodyPart: "tail", Target: skill.TargetSelf, Effects: valid.Effects},
		"bad damage":     {ID: "x", Name: "X", Target: skill.TargetSingle, Effects: []skill.Effect{{Kind: skill.EffectDamage}}},
		"bad chance":     {ID: "x", Name: "X", Target: skill.TargetSingle, Effects: []skill.Effect{{Kind: skill.EffectBind, Bind: condition.BindArm, Chance: 2, Duration: 1}}},
		"bad direction":  {ID: "x", Name: "X", Target: skill.TargetSingle, Effects: []skill.Effect{{Kind: skill.EffectDisplacement, Direction: "up"}}},
		"empty buff":     {ID: "x", Name: "X", Target: skill.TargetSelf, Effects: []skill.Effect{{Kind: skill.EffectBuff}}},
		"unknown effect": {ID: "x", Name: "X", Target: skill.TargetSelf, Effects: []skill.Effect{{Kind: "teleport"}}},
	}
	for name, d := range cases {
		d := d
		assert.Error(t, d.Validate(), name)
	}
}

func TestDefinition_BuffIDs(t *testing.T) {
	d := skill.Definition{Effects: []skill.Effect{
		{Kind: skill.EffectBuff, Buff: &condition.Buff{ID: "guard"}},
		{Kind: skill.EffectHeal, Amount: 5},
	}}
	assert.Equal(t, []string{"guard"}, d.BuffIDs())
}
