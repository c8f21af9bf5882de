package skill

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnknownSkill is returned when a skill id is not registered. It signals a
// content bug, not a runtime condition.
var ErrUnknownSkill = errors.New("unknown skill")

// ErrUnknownItem is returned when an item id is not registered.
var ErrUnknownItem = errors.New("unknown item")

// Registry holds every known skill and item keyed by ID.
// It is read-only after loading and safe for concurrent reads.
type Registry struct {
	skills map[string]Definition
	items  map[string]Item
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{skills: make(map[string]Definition), items: make(map[string]Item)}
}

// Register validates def and adds it, overwriting any existing entry with the
// same ID.
func (r *Registry) Register(def Definition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	r.skills[def.ID] = def
	return nil
}

// RegisterItem validates it and adds it.
func (r *Registry) RegisterItem(it Item) error {
	if err := it.Validate(); err != nil {
		return err
	}
	r.items[it.ID] = it
	return nil
}

// Skill returns the definition for id.
//
// Postcondition: err wraps ErrUnknownSkill iff id is not registered.
func (r *Registry) Skill(id string) (Definition, error) {
	d, ok := r.skills[id]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %q", ErrUnknownSkill, id)
	}
	return d, nil
}

// Item returns the item for id.
//
// Postcondition: err wraps ErrUnknownItem iff id is not registered.
func (r *Registry) Item(id string) (Item, error) {
	it, ok := r.items[id]
	if !ok {
		return Item{}, fmt.Errorf("%w: %q", ErrUnknownItem, id)
	}
	return it, nil
}

// Skills returns every registered skill sorted by ID.
func (r *Registry) Skills() []Definition {
	out := make([]Definition, 0, len(r.skills))
	for _, d := range r.skills {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of registered skills and items.
func (r *Registry) Len() (skills, items int) { return len(r.skills), len(r.items) }

// contentFile is the top-level shape of a skill content file.
type contentFile struct {
	Skills []Definition `yaml:"skills"`
	Items  []Item       `yaml:"items"`
}

// LoadBytes parses one content file and registers everything in it.
func (r *Registry) LoadBytes(data []byte) error {
	var f contentFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return fmt.Errorf("parsing skill content: %w", err)
	}
	for _, d := range f.Skills {
		if err := r.Register(d); err != nil {
			return err
		}
	}
	for _, it := range f.Items {
		if err := r.RegisterItem(it); err != nil {
			return err
		}
	}
	return nil
}

// LoadDirectory reads every *.yaml file in dir and returns a populated Registry.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil Registry, or an error naming the first file
// that fails to parse or validate.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading skill dir %q: %w", dir, err)
	}
	reg := NewRegistry()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
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
