package session_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/labyrinth/internal/game/combat"
	"github.com/cory-johannsen/labyrinth/internal/game/condition"
	"github.com/cory-johannsen/labyrinth/internal/game/dice"
	"github.com/cory-johannsen/labyrinth/internal/game/enemy"
	"github.com/cory-johannsen/labyrinth/internal/game/session"
	"github.com/cory-johannsen/labyrinth/internal/game/skill"
)

// rules removes crits and evasion so that dice.Fixed(0) always hits for
// base damage.
func rules() combat.Rules {
	r := combat.DefaultRules()
	r.BaseCritChance = 0
	r.CritPerLuc = 0
	r.BaseEvasion = 0
	r.EvasionPerAgi = 0
	return r
}

func skills(t testing.TB) *skill.Registry {
	t.Helper()
	reg := skill.NewRegistry()
	require.NoError(t, reg.Register(skill.Definition{
		ID: "power-strike", Name: "Power Strike", TPCost: 3, Target: skill.TargetSingle, BodyPart: condition.BindArm,
		Effects: []skill.Effect{{Kind: skill.EffectDamage, Multiplier: 2.0}},
	}))
	return reg
}

func goblin(hp int) enemy.Definition {
	return enemy.Definition{
		ID:    "goblin",
		Name:  "Goblin",
		MaxHP: hp,
		Stats: enemy.Stats{Str: 10, Vit: 10, Int: 4, Wis: 4, Agi: 5, Luc: 5},
		XP:    12,
		Drops: &enemy.DropTable{Gold: &enemy.GoldRange{Min: 3, Max: 3}},
	}
}

// encounter pits one fast hero (Str 30, Agi 20) against one goblin at the
// front-left tile. A basic attack deals 25, a power strike 55.
func encounter(goblinHP int, heroSkills ...string) combat.Encounter {
	return combat.Encounter{
		Party: []combat.PartyMember{{
			ID: "hero", Name: "Hero", HP: 100, MaxHP: 100, TP: 20, MaxTP: 20,
			Stats:  combat.Stats{Str: 30, Vit: 10, Int: 10, Wis: 10, Agi: 20, Luc: 5},
			Skills: heroSkills,
		}},
		Enemies: []combat.EnemySpawn{{Definition: goblin(goblinHP), InstanceID: "g1"}},
		CanFlee: true,
	}
}

func newManager(t testing.TB, goblinHP int) (*session.Manager, *observer.ObservedLogs) {
	t.Helper()
	reg := enemy.NewRegistry()
	require.NoError(t, reg.Register(goblin(goblinHP)))
	core, logs := observer.New(zap.DebugLevel)
	return session.NewManager(skills(t), reg, dice.Fixed(0), zap.New(core)), logs
}

func front() combat.GridPosition { return combat.GridPosition{Row: 0, Col: 0} }

func eventsOf[T combat.Event](events []combat.Event) []T {
	var out []T
	for _, e := range events {
		if v, ok := e.(T); ok {
			out = append(out, v)
		}
	}
	return out
}
