package combat

import "github.com/cory-johannsen/labyrinth/internal/game/skill"

// ActionType names an action variant.
type ActionType string

const (
	ActionAttack ActionType = "attack"
	ActionSkill  ActionType = "skill"
	ActionDefend ActionType = "defend"
	ActionFlee   ActionType = "flee"
	ActionItem   ActionType = "item"
)

// Action is a turn command submitted by the host or built by enemy AI.
type Action interface {
	Type() ActionType
	Actor() string
}

// AttackAction is a basic physical attack. A party actor strikes every living
// enemy on TargetTile; an enemy actor strikes the party member TargetID.
type AttackAction struct {
	ActorID    string
	TargetTile GridPosition
	TargetID   string
}

// SkillAction casts SkillID. Hostile single-target skills cast by the party
// address TargetTile, or the tile holding TargetID when it names an enemy;
// ally-target skills address TargetID.
type SkillAction struct {
	ActorID    string
	SkillID    string
	TargetTile GridPosition
	TargetID   string
}

// DefendAction halves incoming damage for the rest of the round.
type DefendAction struct {
	ActorID string
}

// FleeAction attempts to leave the battle.
type FleeAction struct {
	ActorID string
}

// ItemAction applies a consumable's effect list. Items cost no TP.
type ItemAction struct {
	ActorID    string
	ItemID     string
	Target     skill.TargetType
	DamageKind skill.DamageKind
	Effects    []skill.Effect
	TargetTile GridPosition
	TargetID   string
}

// UseItem builds an ItemAction for it.
func UseItem(actorID string, it skill.Item, tile GridPosition, targetID string) ItemAction {
	return ItemAction{
		ActorID:    actorID,
		ItemID:     it.ID,
		Target:     it.Target,
		DamageKind: it.DamageKind,
		Effects:    it.Effects,
		TargetTile: tile,
		TargetID:   targetID,
	}
}

func (AttackAction) Type() ActionType { return ActionAttack }
func (SkillAction) Type() ActionType  { return ActionSkill }
func (DefendAction) Type() ActionType { return ActionDefend }
func (FleeAction) Type() ActionType   { return ActionFlee }
func (ItemAction) Type() ActionType   { return ActionItem }

func (a AttackAction) Actor() string { return a.ActorID }
func (a SkillAction) Actor() string  { return a.ActorID }
func (a DefendAction) Actor() string { return a.ActorID }
func (a FleeAction) Actor() string   { return a.ActorID }
func (a ItemAction) Actor() string   { return a.ActorID }
