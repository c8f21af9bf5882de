package combat_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/labyrinth/internal/game/combat"
	"github.com/cory-johannsen/labyrinth/internal/game/condition"
	"github.com/cory-johannsen/labyrinth/internal/game/enemy"
	"github.com/cory-johannsen/labyrinth/internal/game/skill"
)

// testRules removes crits and evasion so that dice.Fixed(0) always hits for
// base damage.
func testRules() combat.Rules {
	r := combat.DefaultRules()
	r.BaseCritChance = 0
	r.CritPerLuc = 0
	r.BaseEvasion = 0
	r.EvasionPerAgi = 0
	return r
}

func testSkills(t testing.TB) *skill.Registry {
	t.Helper()
	reg := skill.NewRegistry()
	defs := []skill.Definition{
		{
			ID: "leg-bind-basic", Name: "Leg Snare", Target: skill.TargetSingle,
			Effects: []skill.Effect{{Kind: skill.EffectBind, Bind: condition.BindLeg, Chance: 1.0, Duration: 2}},
		},
		{
			ID: "power-strike", Name: "Power Strike", TPCost: 3, Target: skill.TargetSingle, BodyPart: condition.BindArm,
			Effects: []skill.Effect{{Kind: skill.EffectDamage, Multiplier: 2.0}},
		},
		{
			ID: "fire-rain", Name: "Fire Rain", TPCost: 5, Target: skill.TargetAll, DamageKind: skill.Magical,
			Effects: []skill.Effect{{Kind: skill.EffectDamage, Multiplier: 1.0}},
		},
		{
			ID: "shove", Name: "Shove", Target: skill.TargetSingle,
			Effects: []skill.Effect{{Kind: skill.EffectDisplacement, Direction: skill.Push}},
		},
		{
			ID: "drag", Name: "Drag", Target: skill.TargetSingle,
			Effects: []skill.Effect{{Kind: skill.EffectDisplacement, Direction: skill.Pull}},
		},
		{
			ID: "lullaby", Name: "Lullaby", Target: skill.TargetSingle,
			Effects: []skill.Effect{{Kind: skill.EffectAilment, Ailment: condition.Sleep, Chance: 1.0, Duration: 2}},
		},
		{
			ID: "venom", Name: "Venom", Target: skill.TargetSingle,
			Effects: []skill.Effect{{Kind: skill.EffectAilment, Ailment: condition.Poison, Chance: 1.0, Duration: 3, Potency: 4}},
		},
		{
			ID: "first-aid", Name: "First Aid", Target: skill.TargetAlly,
			Effects: []skill.Effect{{Kind: skill.EffectHeal, Amount: 20}},
		},
		{
			ID: "iron-skin", Name: "Iron Skin", TPCost: 2, Target: skill.TargetSelf,
			Effects: []skill.Effect{{Kind: skill.EffectBuff, Buff: &condition.Buff{ID: "iron-skin", Stat: condition.StatVit, Add: 10, TurnsRemaining: 3}}},
		},
		{
			ID: "sharp-eyes", Name: "Sharp Eyes", Passive: true,
			Modifiers: skill.Passive{CritBonus: 0.25, Resist: condition.Resistances{"sleep": 0.5}},
		},
	}
	for _, d := range defs {
		require.NoError(t, reg.Register(d))
	}
	return reg
}

func goblin(hp int) enemy.Definition {
	return enemy.Definition{
		ID:    "goblin",
		Name:  "Goblin",
		MaxHP: hp,
		MaxTP: 10,
		Stats: enemy.Stats{Str: 10, Vit: 10, Int: 4, Wis: 4, Agi: 5, Luc: 5},
		XP:    12,
		Drops: &enemy.DropTable{Gold: &enemy.GoldRange{Min: 3, Max: 3}},
	}
}

func hero(id string, str, agi int) combat.PartyMember {
	return combat.PartyMember{
		ID: id, Name: id, HP: 100, MaxHP: 100, TP: 20, MaxTP: 20,
		Stats: combat.Stats{Str: str, Vit: 10, Int: 10, Wis: 10, Agi: agi, Luc: 5},
	}
}

func spawn(def enemy.Definition, id string, row, col int) combat.EnemySpawn {
	return combat.EnemySpawn{Definition: def, InstanceID: id, Position: combat.GridPosition{Row: row, Col: col}}
}

func newBattle(t testing.TB, enc combat.Encounter) *combat.State {
	t.Helper()
	s, err := combat.InitializeCombat(enc, testSkills(t), testRules())
	require.NoError(t, err)
	return s
}

func enemyRegistry(t testing.TB, defs ...enemy.Definition) *enemy.Registry {
	t.Helper()
	reg := enemy.NewRegistry()
	for _, d := range defs {
		require.NoError(t, reg.Register(d))
	}
	return reg
}

func entity(t testing.TB, s *combat.State, id string) combat.Entity {
	t.Helper()
	e, ok := s.FindEntity(id)
	require.True(t, ok, "entity %q not found", id)
	return e
}

func currentID(t testing.TB, s *combat.State) string {
	t.Helper()
	e, ok := s.CurrentActor()
	require.True(t, ok)
	return e.ID
}

func eventsOf[T combat.Event](events []combat.Event) []T {
	var out []T
	for _, e := range events {
		if v, ok := e.(T); ok {
			out = append(out, v)
		}
	}
	return out
}
