package scripting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/labyrinth/internal/scripting"
)

const finisher = `
function choose(ctx)
	local weakest = nil
	for _, foe in ipairs(ctx.foes) do
		if weakest == nil or foe.hp < weakest.hp then
			weakest = foe
		end
	end
	if ctx.self.hp < ctx.self.max_hp / 2 then
		return { action = "defend" }
	end
	for _, s in ipairs(ctx.skills) do
		if s.usable and s.id == "rend" then
			return { action = "skill", skill = s.id, target = weakest.id }
		end
	end
	return { action = "attack", target = weakest.id }
end
`

func baseView() scripting.View {
	return scripting.View{
		Self: scripting.Combatant{ID: "e1", Name: "Ghoul", HP: 30, MaxHP: 30, TP: 5, MaxTP: 5},
		Foes: []scripting.Combatant{
			{ID: "p1", Name: "Ada", HP: 40, MaxHP: 40},
			{ID: "p2", Name: "Bram", HP: 12, MaxHP: 35},
		},
		Round: 1,
	}
}

func noRoll() float64 { return 0 }

func TestDecide_AttacksWeakestFoe(t *testing.T) {
	d, err := scripting.Decide(finisher, baseView(), noRoll, 0)
	require.NoError(t, err)
	assert.Equal(t, scripting.Decision{Action: scripting.ActionAttack, Target: "p2"}, d)
}

func TestDecide_UsesUsableSkill(t *testing.T) {
	v := baseView()
	v.Skills = []scripting.SkillOption{{ID: "rend", TPCost: 3, Target: "single", Multiplier: 1.4, Usable: true}}
	d, err := scripting.Decide(finisher, v, noRoll, 0)
	require.NoError(t, err)
	assert.Equal(t, scripting.ActionSkill, d.Action)
	assert.Equal(t, "rend", d.Skill)
	assert.Equal(t, "p2", d.Target)
}

func TestDecide_DefendsWhenHurt(t *testing.T) {
	v := baseView()
	v.Self.HP = 10
	d, err := scripting.Decide(finisher, v, noRoll, 0)
	require.NoError(t, err)
	assert.Equal(t, scripting.ActionDefend, d.Action)
}

func TestDecide_StatusSetsVisible(t *testing.T) {
	src := `
function choose(ctx)
	if ctx.self.ailments.poison and ctx.self.binds.arm then
		return { action = "defend" }
	end
	return { action = "attack", target = ctx.foes[1].id }
end`
	v := baseView()
	v.Self.Ailments = []string{"poison"}
	v.Self.Binds = []string{"arm"}
	d, err := scripting.Decide(src, v, noRoll, 0)
	require.NoError(t, err)
	assert.Equal(t, scripting.ActionDefend, d.Action)
}

func TestDecide_RollUsesInjectedSource(t *testing.T) {
	src := `
function choose(ctx)
	if roll() < 0.5 then
		return { action = "attack", target = ctx.foes[1].id }
	end
	return { action = "defend" }
end`
	low, err := scripting.Decide(src, baseView(), func() float64 { return 0.1 }, 0)
	require.NoError(t, err)
	high, err := scripting.Decide(src, baseView(), func() float64 { return 0.9 }, 0)
	require.NoError(t, err)
	assert.Equal(t, scripting.ActionAttack, low.Action)
	assert.Equal(t, scripting.ActionDefend, high.Action)
}

func TestDecide_MissingChooser(t *testing.T) {
	_, err := scripting.Decide(`local x = 1`, baseView(), noRoll, 0)
	assert.ErrorIs(t, err, scripting.ErrNoChooser)
}

func TestDecide_InvalidDecisions(t *testing.T) {
	cases := map[string]string{
		"not a table":      `function choose(ctx) return 42 end`,
		"unknown action":   `function choose(ctx) return { action = "dance" } end`,
		"skill without id": `function choose(ctx) return { action = "skill" } end`,
		"nil return":       `function choose(ctx) end`,
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := scripting.Decide(src, baseView(), noRoll, 0)
			assert.ErrorIs(t, err, scripting.ErrInvalidDecision)
		})
	}
}

func TestDecide_RuntimeErrorReturned(t *testing.T) {
	_, err := scripting.Decide(`function choose(ctx) error("boom") end`, baseView(), noRoll, 0)
	assert.Error(t, err)
}

func TestDecide_SyntaxError(t *testing.T) {
	_, err := scripting.Compile(`function choose(ctx) return {`)
	assert.Error(t, err)
}

func TestDecide_InstructionLimit(t *testing.T) {
	_, err := scripting.Decide(`function choose(ctx) while true do end end`, baseView(), noRoll, 50)
	assert.Error(t, err)
}

func TestProperty_DecideIsDeterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		v := baseView()
		v.Foes[0].HP = rapid.IntRange(1, 100).Draw(t, "hp0")
		v.Foes[1].HP = rapid.IntRange(1, 100).Draw(t, "hp1")
		a, err := scripting.Decide(finisher, v, noRoll, 0)
		if err != nil {
			t.Fatal(err)
		}
		b, err := scripting.Decide(finisher, v, noRoll, 0)
		if err != nil {
			t.Fatal(err)
		}
		if a != b {
			t.Fatalf("decisions differ: %+v vs %+v", a, b)
		}
		want := "p1"
		if v.Foes[1].HP < v.Foes[0].HP {
			want = "p2"
		}
		if a.Target != want {
			t.Fatalf("target = %q, want %q", a.Target, want)
		}
	})
}
