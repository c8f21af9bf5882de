// Package encounter loads encounter and party YAML files and assembles them
// into the combat engine's Encounter input.
package encounter

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/labyrinth/internal/game/combat"
	"github.com/cory-johannsen/labyrinth/internal/game/condition"
)

// Spawn places one enemy. ID is optional; a random instance ID is
// assigned when it is empty.
type Spawn struct {
	Enemy    string              `yaml:"enemy"`
	ID       string              `yaml:"id"`
	Position combat.GridPosition `yaml:"position"`
}

// Hazard places a standing hazard.
type Hazard struct {
	Position combat.GridPosition `yaml:"position"`
	Hazard   combat.HazardType   `yaml:"hazard"`
}

// Definition is an encounter file.
type Definition struct {
	ID      string   `yaml:"id"`
	Name    string   `yaml:"name"`
	CanFlee bool     `yaml:"can_flee"`
	Enemies []Spawn  `yaml:"enemies"`
	Hazards []Hazard `yaml:"hazards"`
}

// Validate checks the structural invariants of the file. Enemy IDs are
// resolved later by Build.
func (d *Definition) Validate() error {
	var errs []string
	if d.ID == "" {
		errs = append(errs, "id must not be empty")
	}
	if len(d.Enemies) == 0 {
		errs = append(errs, "enemies must not be empty")
	}
	for i, e := range d.Enemies {
		if e.Enemy == "" {
			errs = append(errs, fmt.Sprintf("enemies[%d]: enemy must not be empty", i))
		}
		if !combat.IsValidPosition(e.Position) {
			errs = append(errs, fmt.Sprintf("enemies[%d]: position %s outside the grid", i, e.Position))
		}
	}
	for i, h := range d.Hazards {
		if !combat.IsValidPosition(h.Position) {
			errs = append(errs, fmt.Sprintf("hazards[%d]: position %s outside the grid", i, h.Position))
		}
		switch h.Hazard {
		case combat.HazardSpike, combat.HazardWeb, combat.HazardFire:
		default:
			errs = append(errs, fmt.Sprintf("hazards[%d]: unknown hazard %q", i, h.Hazard))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("encounter %q: %s", d.ID, strings.Join(errs, "; "))
	}
	return nil
}

// Member is one party member entry of a party file.
type Member struct {
	ID          string                `yaml:"id"`
	Name        string                `yaml:"name"`
	HP          int                   `yaml:"hp"`
	MaxHP       int                   `yaml:"max_hp"`
	TP          int                   `yaml:"tp"`
	MaxTP       int                   `yaml:"max_tp"`
	Stats       combat.Stats          `yaml:"stats"`
	Skills      []string              `yaml:"skills"`
	Resistances condition.Resistances `yaml:"resistances"`
}

type partyFile struct {
	Party []Member `yaml:"party"`
}

// ErrEmptyParty is returned when a party file lists no members.
var ErrEmptyParty = errors.New("party must not be empty")

func decodeStrict(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(out)
}

// Parse decodes and validates one encounter file.
func Parse(data []byte) (Definition, error) {
	var d Definition
	if err := decodeStrict(data, &d); err != nil {
		return Definition{}, fmt.Errorf("parsing encounter YAML: %w", err)
	}
	if err := d.Validate(); err != nil {
		return Definition{}, err
	}
	return d, nil
}

// Load reads and parses the encounter file at path.
func Load(path string) (Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, fmt.Errorf("reading encounter %q: %w", path, err)
	}
	d, err := Parse(data)
	if err != nil {
		return Definition{}, fmt.Errorf("loading %q: %w", path, err)
	}
	return d, nil
}

// ParseParty decodes a party file. A member whose HP is omitted starts at
// MaxHP; the same holds for TP.
//
// Postcondition: on success every member has a non-empty ID and MaxHP >= 1.
func ParseParty(data []byte) ([]combat.PartyMember, error) {
	var f partyFile
	if err := decodeStrict(data, &f); err != nil {
		return nil, fmt.Errorf("parsing party YAML: %w", err)
	}
	if len(f.Party) == 0 {
		return nil, ErrEmptyParty
	}
	out := make([]combat.PartyMember, 0, len(f.Party))
	for i, m := range f.Party {
		if m.ID == "" {
			return nil, fmt.Errorf("party[%d]: id must not be empty", i)
		}
		if m.MaxHP < 1 {
			return nil, fmt.Errorf("party member %q: max_hp must be >= 1", m.ID)
		}
		if m.HP == 0 {
			m.HP = m.MaxHP
		}
		if m.TP == 0 {
			m.TP = m.MaxTP
		}
		if m.Name == "" {
			m.Name = m.ID
		}
		out = append(out, combat.PartyMember{
			ID:          m.ID,
			Name:        m.Name,
			HP:          m.HP,
			MaxHP:       m.MaxHP,
			TP:          m.TP,
			MaxTP:       m.MaxTP,
			Stats:       m.Stats,
			Skills:      m.Skills,
			Resistances: m.Resistances,
		})
	}
	return out, nil
}

// LoadParty reads and parses the party file at path.
func LoadParty(path string) ([]combat.PartyMember, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading party %q: %w", path, err)
	}
	party, err := ParseParty(data)
	if err != nil {
		return nil, fmt.Errorf("loading %q: %w", path, err)
	}
	return party, nil
}

// Build resolves every spawn's enemy definition and assembles the engine
// input.
//
// Postcondition: err wraps enemy.ErrUnknownEnemy when a spawn names an
// unregistered enemy.
func Build(def Definition, party []combat.PartyMember, enemies combat.EnemyLookup) (combat.Encounter, error) {
	enc := combat.Encounter{
		Party:   party,
		CanFlee: def.CanFlee,
	}
	for _, sp := range def.Enemies {
		foe, err := enemies.Enemy(sp.Enemy)
		if err != nil {
			return combat.Encounter{}, fmt.Errorf("encounter %q: %w", def.ID, err)
		}
		id := sp.ID
		if id == "" {
			id = foe.ID + "-" + uuid.NewString()
		}
		enc.Enemies = append(enc.Enemies, combat.EnemySpawn{
			Definition: foe,
			InstanceID: id,
			Position:   sp.Position,
		})
	}
	for _, h := range def.Hazards {
		enc.Hazards = append(enc.Hazards, combat.HazardPlacement{Position: h.Position, Hazard: h.Hazard})
	}
	return enc, nil
}
