// Package condition models the status effects a combatant can carry during a
// battle: body-part binds, ailments, timed stat buffs, and resistances.
//
// All types are values. Every mutating operation returns a new value and
// leaves its receiver untouched, so combat states can be copied cheaply and
// compared in tests.
package condition

import "fmt"

// BindPart is the body part a bind disables.
type BindPart string

const (
	BindHead BindPart = "head"
	BindArm  BindPart = "arm"
	BindLeg  BindPart = "leg"
)

// BindParts lists every bind part in canonical order.
var BindParts = []BindPart{BindHead, BindArm, BindLeg}

// ParseBindPart converts s to a BindPart.
//
// Postcondition: Returns an error iff s is not one of head, arm, leg.
func ParseBindPart(s string) (BindPart, error) {
	for _, p := range BindParts {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown bind part %q", s)
}

// ResistKey is the key used to look the bind up in a Resistances map.
func (p BindPart) ResistKey() string { return string(p) + "-bind" }

// AilmentKind identifies an ailment.
type AilmentKind string

const (
	Poison   AilmentKind = "poison"
	Paralyze AilmentKind = "paralyze"
	Sleep    AilmentKind = "sleep"
	Blind    AilmentKind = "blind"
)

// AilmentKinds lists every ailment in canonical order.
var AilmentKinds = []AilmentKind{Poison, Paralyze, Sleep, Blind}

// ParseAilment converts s to an AilmentKind.
//
// Postcondition: Returns an error iff s is not a known ailment.
func ParseAilment(s string) (AilmentKind, error) {
	for _, k := range AilmentKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown ailment %q", s)
}

// ResistKey is the key used to look the ailment up in a Resistances map.
func (k AilmentKind) ResistKey() string { return string(k) }

// Stat names one of the six core stats a buff can modify.
type Stat string

const (
	StatStr Stat = "str"
	StatVit Stat = "vit"
	StatInt Stat = "int"
	StatWis Stat = "wis"
	StatAgi Stat = "agi"
	StatLuc Stat = "luc"
)

// ParseStat converts s to a Stat.
func ParseStat(s string) (Stat, error) {
	switch Stat(s) {
	case StatStr, StatVit, StatInt, StatWis, StatAgi, StatLuc:
		return Stat(s), nil
	}
	return "", fmt.Errorf("unknown stat %q", s)
}
