package dice

import (
	"sync/atomic"

	"go.uber.org/zap"
)

// LoggedSource wraps a Source and logs every draw at debug level with a
// monotonically increasing draw index, so a battle log can be lined up
// against a replay.
type LoggedSource struct {
	src    Source
	logger *zap.Logger
	draws  atomic.Int64
}

// NewLoggedSource creates a LoggedSource drawing from src.
//
// Precondition: src and logger must be non-nil.
func NewLoggedSource(src Source, logger *zap.Logger) *LoggedSource {
	return &LoggedSource{src: src, logger: logger}
}

// Float64 draws from the wrapped source and logs the value.
func (l *LoggedSource) Float64() float64 {
	v := l.src.Float64()
	n := l.draws.Add(1)
	l.logger.Debug("rng draw",
		zap.Int64("draw", n),
		zap.Float64("value", v),
	)
	return v
}

// Draws reports how many values have been drawn through l.
func (l *LoggedSource) Draws() int64 { return l.draws.Load() }

// Roll rolls expr against the wrapped source and logs the result with its
// expression, individual dice, modifier, and total.
func (l *LoggedSource) Roll(expr Expression) RollResult {
	result := Roll(expr, l)
	l.logger.Debug("dice roll",
		zap.String("expression", result.Expression),
		zap.Ints("dice", result.Dice),
		zap.Int("modifier", result.Modifier),
		zap.Int("total", result.Total()),
	)
	return result
}
