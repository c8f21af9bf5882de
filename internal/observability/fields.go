package observability

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/labyrinth/internal/game/combat"
)

// BattleFields returns the log fields identifying a battle and its progress.
// A nil state yields only the battle ID.
func BattleFields(battleID string, s *combat.State) []zap.Field {
	fields := []zap.Field{zap.String("battle_id", battleID)}
	if s == nil {
		return fields
	}
	fields = append(fields,
		zap.Int("round", s.Round),
		zap.String("phase", string(s.Phase)),
		zap.Int("combo", s.ComboCounter),
	)
	if actor, ok := s.CurrentActor(); ok {
		fields = append(fields, zap.String("actor", actor.ID))
	}
	return fields
}

// EventFields returns the log fields describing one engine event.
func EventFields(ev combat.Event) []zap.Field {
	return []zap.Field{
		zap.String("event", string(ev.Kind())),
		zap.Any("detail", ev),
	}
}
