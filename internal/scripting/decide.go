package scripting

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
)

// ChooseHook is the global function a scripted AI must define. It receives
// the view table and returns a decision table.
const ChooseHook = "choose"

var (
	// ErrNoChooser is returned when a script does not define choose(ctx).
	ErrNoChooser = errors.New("script does not define " + ChooseHook)
	// ErrInvalidDecision is returned when choose(ctx) returns something other
	// than a decision table with a known action.
	ErrInvalidDecision = errors.New("invalid decision")
)

// Combatant is a snapshot of one combatant exposed to scripts.
type Combatant struct {
	ID       string
	Name     string
	HP       int
	MaxHP    int
	TP       int
	MaxTP    int
	Ailments []string
	Binds    []string
	Buffs    []string
}

// SkillOption is one skill the acting enemy knows.
type SkillOption struct {
	ID         string
	TPCost     int
	Target     string
	Multiplier float64
	Usable     bool
}

// View is everything a script can see when choosing an action.
type View struct {
	Self   Combatant
	Allies []Combatant
	Foes   []Combatant
	Skills []SkillOption
	Round  int
	Combo  int
}

// Decision actions.
const (
	ActionAttack = "attack"
	ActionSkill  = "skill"
	ActionDefend = "defend"
)

// Decision is the parsed return value of choose(ctx).
type Decision struct {
	Action string
	Skill  string
	Target string
}

var protos sync.Map // script source -> *lua.FunctionProto

// Compile parses and compiles source, caching the result by source text.
//
// Postcondition: Returns a non-nil proto or a syntax error.
func Compile(source string) (*lua.FunctionProto, error) {
	if p, ok := protos.Load(source); ok {
		return p.(*lua.FunctionProto), nil
	}
	chunk, err := parse.Parse(strings.NewReader(source), "<ai>")
	if err != nil {
		return nil, fmt.Errorf("scripting: parsing script: %w", err)
	}
	proto, err := lua.Compile(chunk, "<ai>")
	if err != nil {
		return nil, fmt.Errorf("scripting: compiling script: %w", err)
	}
	protos.Store(source, proto)
	return proto, nil
}

// Decide runs source in a fresh sandbox and calls its choose(ctx) hook with
// view. Scripts draw randomness only through the global roll(), which is
// backed by the supplied roll function, so a decision is reproducible from
// the same view and roll sequence.
//
// Precondition: roll must be non-nil.
// Postcondition: on success Decision.Action is one of ActionAttack,
// ActionSkill or ActionDefend, and Skill is set for ActionSkill.
func Decide(source string, view View, roll func() float64, instLimit int) (Decision, error) {
	proto, err := Compile(source)
	if err != nil {
		return Decision{}, err
	}

	L, cancel := NewSandboxedState(instLimit)
	defer L.Close()
	defer cancel()

	L.SetGlobal("roll", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(roll()))
		return 1
	}))

	L.Push(L.NewFunctionFromProto(proto))
	if err := L.PCall(0, 0, nil); err != nil {
		return Decision{}, fmt.Errorf("scripting: running script: %w", err)
	}

	fn := L.GetGlobal(ChooseHook)
	if fn.Type() != lua.LTFunction {
		return Decision{}, ErrNoChooser
	}
	if err := L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, viewTable(L, view)); err != nil {
		return Decision{}, fmt.Errorf("scripting: calling %s: %w", ChooseHook, err)
	}
	ret := L.Get(-1)
	L.Pop(1)

	tbl, ok := ret.(*lua.LTable)
	if !ok {
		return Decision{}, fmt.Errorf("%w: %s returned %s", ErrInvalidDecision, ChooseHook, ret.Type())
	}
	d := Decision{
		Action: stringField(tbl, "action"),
		Skill:  stringField(tbl, "skill"),
		Target: stringField(tbl, "target"),
	}
	switch d.Action {
	case ActionAttack, ActionDefend:
	case ActionSkill:
		if d.Skill == "" {
			return Decision{}, fmt.Errorf("%w: skill action without skill id", ErrInvalidDecision)
		}
	default:
		return Decision{}, fmt.Errorf("%w: unknown action %q", ErrInvalidDecision, d.Action)
	}
	return d, nil
}

func stringField(tbl *lua.LTable, key string) string {
	if v, ok := tbl.RawGetString(key).(lua.LString); ok {
		return string(v)
	}
	return ""
}

func viewTable(L *lua.LState, v View) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("self", combatantTable(L, v.Self))
	t.RawSetString("allies", combatantList(L, v.Allies))
	t.RawSetString("foes", combatantList(L, v.Foes))
	skills := L.NewTable()
	for _, s := range v.Skills {
		st := L.NewTable()
		st.RawSetString("id", lua.LString(s.ID))
		st.RawSetString("tp_cost", lua.LNumber(s.TPCost))
		st.RawSetString("target", lua.LString(s.Target))
		st.RawSetString("multiplier", lua.LNumber(s.Multiplier))
		st.RawSetString("usable", lua.LBool(s.Usable))
		skills.Append(st)
	}
	t.RawSetString("skills", skills)
	t.RawSetString("round", lua.LNumber(v.Round))
	t.RawSetString("combo", lua.LNumber(v.Combo))
	return t
}

func combatantList(L *lua.LState, cs []Combatant) *lua.LTable {
	t := L.NewTable()
	for _, c := range cs {
		t.Append(combatantTable(L, c))
	}
	return t
}

func combatantTable(L *lua.LState, c Combatant) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("id", lua.LString(c.ID))
	t.RawSetString("name", lua.LString(c.Name))
	t.RawSetString("hp", lua.LNumber(c.HP))
	t.RawSetString("max_hp", lua.LNumber(c.MaxHP))
	t.RawSetString("tp", lua.LNumber(c.TP))
	t.RawSetString("max_tp", lua.LNumber(c.MaxTP))
	t.RawSetString("ailments", stringSet(L, c.Ailments))
	t.RawSetString("binds", stringSet(L, c.Binds))
	t.RawSetString("buffs", stringSet(L, c.Buffs))
	return t
}

// stringSet exposes names as a Lua set: ctx.self.ailments.poison == true.
func stringSet(L *lua.LState, names []string) *lua.LTable {
	t := L.NewTable()
	for _, n := range names {
		t.RawSetString(n, lua.LTrue)
	}
	return t
}
