// Package enemy provides enemy definitions, drop tables, and the registry the
// combat engine resolves spawned enemies through.
package enemy

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/labyrinth/internal/game/condition"
	"github.com/cory-johannsen/labyrinth/internal/scripting"
)

// ErrUnknownEnemy is returned when an enemy definition id is not registered.
var ErrUnknownEnemy = errors.New("unknown enemy")

// AIPattern selects the enemy's turn heuristic.
type AIPattern string

const (
	// Aggressive prefers the strongest available offensive option.
	Aggressive AIPattern = "aggressive"
	// Defensive prefers self/ally buffs that are not yet active, then attacks.
	Defensive AIPattern = "defensive"
	// Scripted delegates the choice to the definition's Lua script.
	Scripted AIPattern = "scripted"
)

// Stats holds the six core stats of an enemy.
type Stats struct {
	Str int `yaml:"str"`
	Vit int `yaml:"vit"`
	Int int `yaml:"int"`
	Wis int `yaml:"wis"`
	Agi int `yaml:"agi"`
	Luc int `yaml:"luc"`
}

// Definition is a reusable enemy archetype loaded from YAML.
type Definition struct {
	ID          string                `yaml:"id"`
	Name        string                `yaml:"name"`
	Description string                `yaml:"description"`
	MaxHP       int                   `yaml:"max_hp"`
	MaxTP       int                   `yaml:"max_tp"`
	Stats       Stats                 `yaml:"stats"`
	Skills      []string              `yaml:"skills"`
	AIPattern   AIPattern             `yaml:"ai_pattern"`
	Script      string                `yaml:"script"`
	Resistances condition.Resistances `yaml:"resistances"`
	XP          int                   `yaml:"xp"`
	Drops       *DropTable            `yaml:"drops"`
}

// Pattern returns the AI pattern, defaulting to Aggressive.
func (d Definition) Pattern() AIPattern {
	if d.AIPattern == "" {
		return Aggressive
	}
	return d.AIPattern
}

// Validate checks that the definition satisfies basic invariants.
//
// Postcondition: Returns nil iff ID and Name are set, MaxHP >= 1, MaxTP >= 0,
// XP >= 0, the AI pattern is known (scripted requires a script), and the drop
// table validates.
func (d *Definition) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("enemy definition: id must not be empty")
	}
	if d.Name == "" {
		return fmt.Errorf("enemy %q: name must not be empty", d.ID)
	}
	if d.MaxHP < 1 {
		return fmt.Errorf("enemy %q: max_hp must be >= 1", d.ID)
	}
	if d.MaxTP < 0 {
		return fmt.Errorf("enemy %q: max_tp must be >= 0", d.ID)
	}
	if d.XP < 0 {
		return fmt.Errorf("enemy %q: xp must be >= 0", d.ID)
	}
	switch d.Pattern() {
	case Aggressive, Defensive:
	case Scripted:
		if strings.TrimSpace(d.Script) == "" {
			return fmt.Errorf("enemy %q: scripted ai_pattern requires a script", d.ID)
		}
		if _, err := scripting.Compile(d.Script); err != nil {
			return fmt.Errorf("enemy %q: %w", d.ID, err)
		}
	default:
		return fmt.Errorf("enemy %q: unknown ai_pattern %q", d.ID, d.AIPattern)
	}
	if d.Drops != nil {
		if err := d.Drops.Validate(); err != nil {
			return fmt.Errorf("enemy %q: %w", d.ID, err)
		}
	}
	return nil
}

// Registry holds every known enemy definition keyed by ID.
// It is read-only after loading and safe for concurrent reads.
type Registry struct {
	defs map[string]Definition
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]Definition)}
}

// Register validates def and adds it, overwriting any entry with the same ID.
func (r *Registry) Register(def Definition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	r.defs[def.ID] = def
	return nil
}

// Enemy returns the definition for id.
//
// Postcondition: err wraps ErrUnknownEnemy iff id is not registered.
func (r *Registry) Enemy(id string) (Definition, error) {
	d, ok := r.defs[id]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %q", ErrUnknownEnemy, id)
	}
	return d, nil
}

// Len returns the number of registered definitions.
func (r *Registry) Len() int { return len(r.defs) }

type enemyFile struct {
	Enemies []Definition `yaml:"enemies"`
}

// LoadBytes parses one enemy content file and registers every definition.
func (r *Registry) LoadBytes(data []byte) error {
	var f enemyFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return fmt.Errorf("parsing enemy YAML: %w", err)
	}
	for _, d := range f.Enemies {
		if err := r.Register(d); err != nil {
			return err
		}
	}
	return nil
}

// LoadDirectory reads all *.yaml files in dir and returns a populated Registry.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns every definition or an error on the first parse or
// validate failure; on error, the partial result is discarded.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading enemy dir %q: %w", dir, err)
	}
	reg := NewRegistry()
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		if err := reg.LoadBytes(data); err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
	}
	return reg, nil
}
