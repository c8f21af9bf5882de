package combat

import "github.com/cory-johannsen/labyrinth/internal/game/condition"

// EventKind names an event variant.
type EventKind string

const (
	EventDamage          EventKind = "damage"
	EventMiss            EventKind = "miss"
	EventBindApplied     EventKind = "bind-applied"
	EventAilmentApplied  EventKind = "ailment-applied"
	EventDisplacement    EventKind = "displacement"
	EventHazardTriggered EventKind = "hazard-triggered"
	EventTurnSkip        EventKind = "turn-skip"
	EventFleeSuccess     EventKind = "flee-success"
	EventFleeFailed      EventKind = "flee-failed"
	EventVictory         EventKind = "victory"
	EventDefeat          EventKind = "defeat"
	EventHeal            EventKind = "heal"
	EventAilmentsCured   EventKind = "ailments-cured"
	EventBuffApplied     EventKind = "buff-applied"
	EventStatusExpired   EventKind = "status-expired"
	EventPoisonTick      EventKind = "poison-tick"
	EventDefend          EventKind = "defend"
	EventActionBlocked   EventKind = "action-blocked"
	EventRoundStart      EventKind = "round-start"
)

// Event is one entry of the per-call event stream. The set of variants is
// closed; switch on the concrete type.
type Event interface {
	Kind() EventKind
	event()
}

// DamageEvent reports HP lost by TargetID. SourceID is empty for hazard damage.
type DamageEvent struct {
	SourceID string `json:"source_id,omitempty"`
	TargetID string `json:"target_id"`
	Damage   int    `json:"damage"`
	IsCrit   bool   `json:"is_crit"`
	Killed   bool   `json:"killed"`
}

// MissEvent reports an attack that failed its hit roll.
type MissEvent struct {
	SourceID string `json:"source_id"`
	TargetID string `json:"target_id"`
}

// BindAppliedEvent reports a bind roll. A resisted bind changed nothing.
type BindAppliedEvent struct {
	TargetID string             `json:"target_id"`
	Bind     condition.BindPart `json:"bind"`
	Resisted bool               `json:"resisted"`
}

// AilmentAppliedEvent reports an ailment roll. A resisted ailment changed
// nothing.
type AilmentAppliedEvent struct {
	TargetID string                `json:"target_id"`
	Ailment  condition.AilmentKind `json:"ailment"`
	Resisted bool                  `json:"resisted"`
}

// DisplacementEvent reports an enemy moved one tile.
type DisplacementEvent struct {
	EntityID string       `json:"entity_id"`
	From     GridPosition `json:"from"`
	To       GridPosition `json:"to"`
}

// HazardTriggeredEvent reports an entity landing on a hazard tile.
type HazardTriggeredEvent struct {
	EntityID string     `json:"entity_id"`
	Hazard   HazardType `json:"hazard"`
}

// TurnSkipEvent reports an actor losing its turn.
type TurnSkipEvent struct {
	EntityID string `json:"entity_id"`
	Reason   string `json:"reason"`
}

// FleeSuccessEvent tells the host to end the battle without rewards.
type FleeSuccessEvent struct {
	ActorID string `json:"actor_id"`
}

// FleeFailedEvent reports a consumed flee attempt.
type FleeFailedEvent struct {
	ActorID string `json:"actor_id"`
	Reason  string `json:"reason"`
}

// VictoryEvent is emitted once, when the last enemy falls.
type VictoryEvent struct{}

// DefeatEvent is emitted once, when the last party member falls.
type DefeatEvent struct{}

// HealEvent reports HP actually restored.
type HealEvent struct {
	SourceID string `json:"source_id"`
	TargetID string `json:"target_id"`
	Amount   int    `json:"amount"`
}

// AilmentsCuredEvent lists the ailments removed from TargetID.
type AilmentsCuredEvent struct {
	TargetID string                  `json:"target_id"`
	Cured    []condition.AilmentKind `json:"cured"`
}

// BuffAppliedEvent reports a buff applied or refreshed.
type BuffAppliedEvent struct {
	TargetID string `json:"target_id"`
	BuffID   string `json:"buff_id"`
}

// StatusExpiredEvent reports a bind, ailment or buff reaching zero turns, or
// sleep broken by damage.
type StatusExpiredEvent struct {
	EntityID string `json:"entity_id"`
	Status   string `json:"status"`
}

// PoisonTickEvent reports poison damage at the start of an entity's turn.
type PoisonTickEvent struct {
	EntityID string `json:"entity_id"`
	Damage   int    `json:"damage"`
	Killed   bool   `json:"killed"`
}

// DefendEvent reports an actor taking a defensive stance for the round.
type DefendEvent struct {
	EntityID string `json:"entity_id"`
}

// ActionBlockedEvent explains why an action resolved to a no-op.
type ActionBlockedEvent struct {
	ActorID string `json:"actor_id"`
	Reason  string `json:"reason"`
}

// RoundStartEvent marks a freshly computed turn order.
type RoundStartEvent struct {
	Round int `json:"round"`
}

func (DamageEvent) Kind() EventKind          { return EventDamage }
func (MissEvent) Kind() EventKind            { return EventMiss }
func (BindAppliedEvent) Kind() EventKind     { return EventBindApplied }
func (AilmentAppliedEvent) Kind() EventKind  { return EventAilmentApplied }
func (DisplacementEvent) Kind() EventKind    { return EventDisplacement }
func (HazardTriggeredEvent) Kind() EventKind { return EventHazardTriggered }
func (TurnSkipEvent) Kind() EventKind        { return EventTurnSkip }
func (FleeSuccessEvent) Kind() EventKind     { return EventFleeSuccess }
func (FleeFailedEvent) Kind() EventKind      { return EventFleeFailed }
func (VictoryEvent) Kind() EventKind         { return EventVictory }
func (DefeatEvent) Kind() EventKind          { return EventDefeat }
func (HealEvent) Kind() EventKind            { return EventHeal }
func (AilmentsCuredEvent) Kind() EventKind   { return EventAilmentsCured }
func (BuffAppliedEvent) Kind() EventKind     { return EventBuffApplied }
func (StatusExpiredEvent) Kind() EventKind   { return EventStatusExpired }
func (PoisonTickEvent) Kind() EventKind      { return EventPoisonTick }
func (DefendEvent) Kind() EventKind          { return EventDefend }
func (ActionBlockedEvent) Kind() EventKind   { return EventActionBlocked }
func (RoundStartEvent) Kind() EventKind      { return EventRoundStart }

func (DamageEvent) event()          {}
func (MissEvent) event()            {}
func (BindAppliedEvent) event()     {}
func (AilmentAppliedEvent) event()  {}
func (DisplacementEvent) event()    {}
func (HazardTriggeredEvent) event() {}
func (TurnSkipEvent) event()        {}
func (FleeSuccessEvent) event()     {}
func (FleeFailedEvent) event()      {}
func (VictoryEvent) event()         {}
func (DefeatEvent) event()          {}
func (HealEvent) event()            {}
func (AilmentsCuredEvent) event()   {}
func (BuffAppliedEvent) event()     {}
func (StatusExpiredEvent) event()   {}
func (PoisonTickEvent) event()      {}
func (DefendEvent) event()          {}
func (ActionBlockedEvent) event()   {}
func (RoundStartEvent) event()      {}

// Reasons carried by ActionBlockedEvent, FleeFailedEvent and TurnSkipEvent.
const (
	ReasonNotCurrentActor = "not-current-actor"
	ReasonAlreadyActed    = "already-acted"
	ReasonInvalidActor    = "invalid-actor"
	ReasonInvalidTarget   = "invalid-target"
	ReasonInvalidEffect   = "invalid-effect"
	ReasonEmptyTile       = "empty-tile"
	ReasonInsufficientTP  = "insufficient-tp"
	ReasonUnknownToActor  = "skill-not-learned"
	ReasonPassiveSkill    = "passive-skill"
	ReasonArmBound        = "arm-bound"
	ReasonHeadBound       = "head-bound"
	ReasonLegBound        = "leg-bound"
	ReasonAsleep          = "asleep"
	ReasonNoFlee          = "flee-not-allowed"
	ReasonPartyOnly       = "party-only"
	ReasonFleeRoll        = "roll-failed"
	ReasonUnknownAction   = "unknown-action"
	ReasonParalyzed       = "paralyze"
	ReasonSleep           = "sleep"
)
