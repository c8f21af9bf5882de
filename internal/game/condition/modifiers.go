package condition

// Buff is a timed stat modifier. The modified value is
// (base + Add) * Mult, where a zero Mult counts as 1.
type Buff struct {
	ID             string  `yaml:"id"`
	Stat           Stat    `yaml:"stat"`
	Add            int     `yaml:"add"`
	Mult           float64 `yaml:"mult"`
	TurnsRemaining int     `yaml:"turns"`
}

// HasBuff reports whether a buff with id is present in buffs.
func HasBuff(buffs []Buff, id string) bool {
	for _, b := range buffs {
		if b.ID == id {
			return true
		}
	}
	return false
}

// ApplyBuff returns a new slice with b added. A buff with the same ID is
// refreshed in place instead of stacking.
func ApplyBuff(buffs []Buff, b Buff) []Buff {
	out := make([]Buff, 0, len(buffs)+1)
	replaced := false
	for _, cur := range buffs {
		if cur.ID == b.ID {
			out = append(out, b)
			replaced = true
			continue
		}
		out = append(out, cur)
	}
	if !replaced {
		out = append(out, b)
	}
	return out
}

// TickBuffs decrements every buff by one turn and drops expired ones.
//
// Postcondition: every returned buff has TurnsRemaining > 0; expired lists the
// IDs removed, in their original order.
func TickBuffs(buffs []Buff) ([]Buff, []string) {
	var expired []string
	out := make([]Buff, 0, len(buffs))
	for _, b := range buffs {
		b.TurnsRemaining--
		if b.TurnsRemaining <= 0 {
			expired = append(expired, b.ID)
			continue
		}
		out = append(out, b)
	}
	return out, expired
}

// BuffedValue applies every buff on stat to base.
//
// Postcondition: Returns >= 0.
func BuffedValue(stat Stat, base int, buffs []Buff) int {
	add := 0
	mult := 1.0
	for _, b := range buffs {
		if b.Stat != stat {
			continue
		}
		add += b.Add
		if b.Mult > 0 {
			mult *= b.Mult
		}
	}
	v := int(float64(base+add) * mult)
	if v < 0 {
		return 0
	}
	return v
}

// Resistances maps a resist key (see BindPart.ResistKey and
// AilmentKind.ResistKey) to a probability subtracted from the base chance.
type Resistances map[string]float64

// Of returns the resistance for key, or 0 when absent.
func (r Resistances) Of(key string) float64 { return r[key] }

// Merge returns a new map holding the sum of r and other per key.
func (r Resistances) Merge(other Resistances) Resistances {
	out := make(Resistances, len(r)+len(other))
	for k, v := range r {
		out[k] = v
	}
	for k, v := range other {
		out[k] += v
	}
	return out
}

// EffectiveChance returns base minus resist, clamped to [0, 1].
func EffectiveChance(base, resist float64) float64 {
	c := base - resist
	switch {
	case c < 0:
		return 0
	case c > 1:
		return 1
	}
	return c
}
