package combat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cory-johannsen/labyrinth/internal/game/condition"
	"github.com/cory-johannsen/labyrinth/internal/game/enemy"
	"github.com/cory-johannsen/labyrinth/internal/game/skill"
)

// SkillLookup resolves skill IDs. Implementations return an error wrapping
// skill.ErrUnknownSkill for unknown IDs.
type SkillLookup interface {
	Skill(id string) (skill.Definition, error)
}

// EnemyLookup resolves enemy definition IDs. Implementations return an error
// wrapping enemy.ErrUnknownEnemy for unknown IDs.
type EnemyLookup interface {
	Enemy(id string) (enemy.Definition, error)
}

// PartyMember is a party member's persistent state entering a battle.
type PartyMember struct {
	ID          string
	Name        string
	HP          int
	MaxHP       int
	TP          int
	MaxTP       int
	Stats       Stats
	Skills      []string
	Resistances condition.Resistances
}

// EnemySpawn places one instance of Definition on the grid.
type EnemySpawn struct {
	Definition enemy.Definition
	InstanceID string
	Position   GridPosition
}

// HazardPlacement puts a standing hazard on a tile.
type HazardPlacement struct {
	Position GridPosition
	Hazard   HazardType
}

// Encounter is the input to InitializeCombat.
type Encounter struct {
	Party   []PartyMember
	Enemies []EnemySpawn
	Hazards []HazardPlacement
	CanFlee bool
}

// ErrInvalidEncounter is returned by InitializeCombat for malformed input.
var ErrInvalidEncounter = errors.New("invalid encounter")

// InitializeCombat builds the opening state of a battle: entities from the
// party roster and enemy spawns, enemies placed on the grid, passive skill
// modifiers merged, and the first round's turn order computed.
//
// Precondition: skills resolves every skill ID named by a party member.
// Postcondition: on success Round == 1, ComboCounter == 0, and Phase is
// PhaseActive unless one side starts with no living member.
func InitializeCombat(enc Encounter, skills SkillLookup, rules Rules) (*State, error) {
	if err := validateEncounter(enc); err != nil {
		return nil, err
	}

	s := &State{
		Grid:    NewGrid(),
		Round:   1,
		CanFlee: enc.CanFlee,
		Phase:   PhaseActive,
		Rules:   rules,
	}

	for _, m := range enc.Party {
		passives, err := mergePassives(m.Skills, skills)
		if err != nil {
			return nil, fmt.Errorf("party member %q: %w", m.ID, err)
		}
		s.Party = append(s.Party, Entity{
			ID:          m.ID,
			Name:        m.Name,
			IsParty:     true,
			HP:          m.HP,
			MaxHP:       m.MaxHP,
			TP:          m.TP,
			MaxTP:       m.MaxTP,
			Stats:       m.Stats,
			Resistances: condition.Resistances{}.Merge(m.Resistances),
			Skills:      append([]string(nil), m.Skills...),
			Passives:    passives,
		})
	}

	for _, sp := range enc.Enemies {
		d := sp.Definition
		s.Enemies = append(s.Enemies, Entity{
			ID:    sp.InstanceID,
			Name:  d.Name,
			HP:    d.MaxHP,
			MaxHP: d.MaxHP,
			TP:    d.MaxTP,
			MaxTP: d.MaxTP,
			Stats: Stats{
				Str: d.Stats.Str, Vit: d.Stats.Vit, Int: d.Stats.Int,
				Wis: d.Stats.Wis, Agi: d.Stats.Agi, Luc: d.Stats.Luc,
			},
			Resistances:  condition.Resistances{}.Merge(d.Resistances),
			Skills:       append([]string(nil), d.Skills...),
			DefinitionID: d.ID,
		})
		s.Grid = s.Grid.AddEntityToTile(sp.Position, sp.InstanceID)
	}

	for _, h := range enc.Hazards {
		s.Grid = s.Grid.WithHazard(h.Position, h.Hazard)
	}

	s.TurnOrder = SortBySpeed(s)
	r := newResolution(s, nil)
	r.updatePhase()
	return s, nil
}

func validateEncounter(enc Encounter) error {
	var errs []string
	if len(enc.Party) == 0 {
		errs = append(errs, "party must not be empty")
	}
	if len(enc.Enemies) == 0 {
		errs = append(errs, "enemies must not be empty")
	}
	seen := make(map[string]bool)
	for i, m := range enc.Party {
		if m.ID == "" {
			errs = append(errs, fmt.Sprintf("party[%d]: id must not be empty", i))
			continue
		}
		if seen[m.ID] {
			errs = append(errs, fmt.Sprintf("duplicate entity id %q", m.ID))
		}
		seen[m.ID] = true
		if m.MaxHP < 1 {
			errs = append(errs, fmt.Sprintf("party member %q: max hp must be >= 1", m.ID))
		}
	}
	for i, sp := range enc.Enemies {
		if sp.InstanceID == "" {
			errs = append(errs, fmt.Sprintf("enemies[%d]: instance id must not be empty", i))
			continue
		}
		if seen[sp.InstanceID] {
			errs = append(errs, fmt.Sprintf("duplicate entity id %q", sp.InstanceID))
		}
		seen[sp.InstanceID] = true
		if !IsValidPosition(sp.Position) {
			errs = append(errs, fmt.Sprintf("enemy %q: position %s outside the grid", sp.InstanceID, sp.Position))
		}
		if sp.Definition.MaxHP < 1 {
			errs = append(errs, fmt.Sprintf("enemy %q: max hp must be >= 1", sp.InstanceID))
		}
	}
	for _, h := range enc.Hazards {
		if !IsValidPosition(h.Position) {
			errs = append(errs, fmt.Sprintf("hazard at %s outside the grid", h.Position))
		}
		switch h.Hazard {
		case HazardSpike, HazardWeb, HazardFire:
		default:
			errs = append(errs, fmt.Sprintf("unknown hazard %q", h.Hazard))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidEncounter, strings.Join(errs, "; "))
	}
	return nil
}

func mergePassives(ids []string, skills SkillLookup) (PassiveModifiers, error) {
	var p PassiveModifiers
	for _, id := range ids {
		def, err := skills.Skill(id)
		if err != nil {
			return PassiveModifiers{}, err
		}
		if !def.Passive {
			continue
		}
		p.DamageBonus += def.Modifiers.DamageBonus
		p.CritBonus += def.Modifiers.CritBonus
		p.EvasionBonus += def.Modifiers.EvasionBonus
		p.Resist = p.Resist.Merge(def.Modifiers.Resist)
	}
	return p, nil
}
