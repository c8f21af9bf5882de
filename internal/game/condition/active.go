package condition

// Binds holds the remaining-turn counter of each body-part bind.
// A counter of zero means the part is free.
type Binds struct {
	Head int `yaml:"head"`
	Arm  int `yaml:"arm"`
	Leg  int `yaml:"leg"`
}

// Turns returns the remaining turns of the bind on p.
func (b Binds) Turns(p BindPart) int {
	switch p {
	case BindHead:
		return b.Head
	case BindArm:
		return b.Arm
	case BindLeg:
		return b.Leg
	}
	return 0
}

// Has reports whether p is currently bound.
func (b Binds) Has(p BindPart) bool { return b.Turns(p) > 0 }

// Any reports whether any part is bound.
func (b Binds) Any() bool { return b.Head > 0 || b.Arm > 0 || b.Leg > 0 }

// With returns a copy of b where p is bound for turns. Re-binding an already
// bound part keeps the longer of the two durations.
//
// Precondition: turns > 0.
func (b Binds) With(p BindPart, turns int) Binds {
	if turns <= b.Turns(p) {
		return b
	}
	switch p {
	case BindHead:
		b.Head = turns
	case BindArm:
		b.Arm = turns
	case BindLeg:
		b.Leg = turns
	}
	return b
}

// Tick decrements every active bind by one turn.
//
// Postcondition: every counter is >= 0; the returned slice lists the parts
// whose counter reached zero during this tick, in canonical order.
func (b Binds) Tick() (Binds, []BindPart) {
	var expired []BindPart
	dec := func(v *int, p BindPart) {
		if *v <= 0 {
			return
		}
		*v--
		if *v == 0 {
			expired = append(expired, p)
		}
	}
	dec(&b.Head, BindHead)
	dec(&b.Arm, BindArm)
	dec(&b.Leg, BindLeg)
	return b, expired
}

// Affliction is one active ailment. The zero value means "not afflicted".
type Affliction struct {
	TurnsRemaining int `yaml:"turns_remaining"`
	// Potency is the per-tick damage for poison; unused by other ailments.
	Potency int `yaml:"potency"`
}

// Active reports whether the affliction is in effect.
func (a Affliction) Active() bool { return a.TurnsRemaining > 0 }

// Ailments holds one Affliction slot per ailment kind.
type Ailments struct {
	Poison   Affliction `yaml:"poison"`
	Paralyze Affliction `yaml:"paralyze"`
	Sleep    Affliction `yaml:"sleep"`
	Blind    Affliction `yaml:"blind"`
}

func (a *Ailments) slot(k AilmentKind) *Affliction {
	switch k {
	case Poison:
		return &a.Poison
	case Paralyze:
		return &a.Paralyze
	case Sleep:
		return &a.Sleep
	case Blind:
		return &a.Blind
	}
	return nil
}

// Get returns the affliction for k (zero value when absent).
func (a Ailments) Get(k AilmentKind) Affliction {
	if s := a.slot(k); s != nil {
		return *s
	}
	return Affliction{}
}

// Has reports whether k is active.
func (a Ailments) Has(k AilmentKind) bool { return a.Get(k).Active() }

// Any reports whether any ailment is active.
func (a Ailments) Any() bool { return len(a.Active()) > 0 }

// Active lists the active ailments in canonical order.
func (a Ailments) Active() []AilmentKind {
	var out []AilmentKind
	for _, k := range AilmentKinds {
		if a.Has(k) {
			out = append(out, k)
		}
	}
	return out
}

// With returns a copy of a where k carries aff. Re-applying an active
// ailment keeps the longer duration and the higher potency.
//
// Precondition: aff.TurnsRemaining > 0.
func (a Ailments) With(k AilmentKind, aff Affliction) Ailments {
	s := a.slot(k)
	if s == nil {
		return a
	}
	if aff.TurnsRemaining > s.TurnsRemaining {
		s.TurnsRemaining = aff.TurnsRemaining
	}
	if aff.Potency > s.Potency {
		s.Potency = aff.Potency
	}
	return a
}

// Without returns a copy of a with k cleared.
func (a Ailments) Without(k AilmentKind) Ailments {
	if s := a.slot(k); s != nil {
		*s = Affliction{}
	}
	return a
}

// Tick decrements every active ailment by one turn, clearing those that
// reach zero.
//
// Postcondition: the returned slice lists the ailments cleared by this tick.
func (a Ailments) Tick() (Ailments, []AilmentKind) {
	var expired []AilmentKind
	for _, k := range AilmentKinds {
		s := a.slot(k)
		if s.TurnsRemaining <= 0 {
			continue
		}
		s.TurnsRemaining--
		if s.TurnsRemaining == 0 {
			*s = Affliction{}
			expired = append(expired, k)
		}
	}
	return a, expired
}
