package session

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/labyrinth/internal/game/combat"
	"github.com/cory-johannsen/labyrinth/internal/game/dice"
	"github.com/cory-johannsen/labyrinth/internal/observability"
)

var (
	// ErrUnknownBattle is returned for an ID the Manager does not hold.
	ErrUnknownBattle = errors.New("unknown battle")
	// ErrBattleOver is returned when acting on a won, lost or fled battle.
	ErrBattleOver = errors.New("battle is over")
	// ErrNotEnemyTurn is returned by EnemyTurn when a party member holds the turn.
	ErrNotEnemyTurn = errors.New("current actor is not an enemy")
	// ErrNotVictorious is returned by ClaimRewards before victory.
	ErrNotVictorious = errors.New("battle has not been won")
	// ErrRewardsClaimed is returned by every ClaimRewards after the first success.
	ErrRewardsClaimed = errors.New("rewards already claimed")
)

// Battle is a point-in-time snapshot of a hosted battle. Callers own it.
type Battle struct {
	ID             string
	State          *combat.State
	Log            []combat.Event
	Fled           bool
	RewardsClaimed bool
	StartedAt      time.Time
}

// Over reports whether no further actions will be accepted.
func (b Battle) Over() bool {
	return b.Fled || b.State.Phase != combat.PhaseActive
}

// Outcome names the battle's result: "victory", "defeat", "fled" or
// "active".
func (b Battle) Outcome() string {
	if b.Fled {
		return "fled"
	}
	return string(b.State.Phase)
}

type battle struct {
	state     *combat.State
	log       []combat.Event
	fled      bool
	claimed   bool
	startedAt time.Time
	timer     *TurnTimer
	stream    *EventStream
}

func (b *battle) over() bool {
	return b.fled || b.state.Phase != combat.PhaseActive
}

// Manager hosts every live battle and serializes all engine calls on them.
// All methods are safe for concurrent use.
type Manager struct {
	mu          sync.Mutex
	battles     map[string]*battle
	skills      combat.SkillLookup
	enemies     combat.EnemyLookup
	rng         dice.Source
	logger      *zap.Logger
	idleTimeout time.Duration
}

// NewManager creates an empty Manager. rng is only drawn from while the
// Manager's lock is held, so it need not be safe for concurrent use.
//
// Precondition: skills, enemies and rng must be non-nil.
// Postcondition: a nil logger is replaced by a no-op logger.
func NewManager(skills combat.SkillLookup, enemies combat.EnemyLookup, rng dice.Source, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		battles: make(map[string]*battle),
		skills:  skills,
		enemies: enemies,
		rng:     rng,
		logger:  logger,
	}
}

// SetIdleTurnTimeout enables auto-defend for party members that hold the turn
// longer than d. Zero disables it. Applies to turns that begin afterwards.
func (m *Manager) SetIdleTurnTimeout(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.idleTimeout = d
}

// Start initializes a battle from enc and registers it under a new ID.
//
// Postcondition: Returns the battle ID and the initial state, or the
// validation error from combat.InitializeCombat.
func (m *Manager) Start(enc combat.Encounter, rules combat.Rules) (string, *combat.State, error) {
	s, err := combat.InitializeCombat(enc, m.skills, rules)
	if err != nil {
		return "", nil, fmt.Errorf("starting battle: %w", err)
	}
	id := uuid.NewString()

	m.mu.Lock()
	defer m.mu.Unlock()
	b := &battle{state: s, startedAt: time.Now()}
	m.battles[id] = b
	m.logger.Info("battle started",
		append(observability.BattleFields(id, s),
			zap.Int("party", len(s.Party)),
			zap.Int("enemies", len(s.Enemies)),
		)...)
	m.armTimer(id, b)
	return id, s.Clone(), nil
}

// Submit resolves a party or enemy action on the battle's current state.
//
// Postcondition: err wraps ErrUnknownBattle or ErrBattleOver, or is the
// engine's lookup error; otherwise the Result's State is a copy of the
// battle's new state.
func (m *Manager) Submit(id string, a combat.Action) (combat.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, err := m.active(id)
	if err != nil {
		return combat.Result{}, err
	}
	res, err := m.submit(id, b, a)
	if err != nil {
		return combat.Result{}, err
	}
	return detached(res), nil
}

// detached copies res.State so callers never share the hosted state.
func detached(res combat.Result) combat.Result {
	res.State = res.State.Clone()
	return res
}

func (m *Manager) submit(id string, b *battle, a combat.Action) (combat.Result, error) {
	res, err := combat.ExecuteAction(b.state, a, m.rng, m.skills)
	if err != nil {
		return combat.Result{}, fmt.Errorf("battle %s: %w", id, err)
	}
	m.apply(id, b, res)
	return res, nil
}

// EnemyTurn lets the current enemy actor choose and resolve its action.
//
// Postcondition: err wraps ErrNotEnemyTurn when a party member holds the
// turn.
func (m *Manager) EnemyTurn(id string) (combat.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, err := m.active(id)
	if err != nil {
		return combat.Result{}, err
	}
	actor, ok := b.state.CurrentActor()
	if !ok || actor.IsParty {
		return combat.Result{}, fmt.Errorf("battle %s: %w", id, ErrNotEnemyTurn)
	}
	res, err := combat.ExecuteEnemyTurn(b.state, actor.ID, m.rng, m.skills, m.enemies)
	if err != nil {
		return combat.Result{}, fmt.Errorf("battle %s: %w", id, err)
	}
	m.apply(id, b, res)
	return detached(res), nil
}

// Advance passes the turn to the next living actor.
func (m *Manager) Advance(id string) (combat.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, err := m.active(id)
	if err != nil {
		return combat.Result{}, err
	}
	return detached(m.advance(id, b)), nil
}

func (m *Manager) advance(id string, b *battle) combat.Result {
	res := combat.AdvanceTurn(b.state, m.rng)
	m.apply(id, b, res)
	m.armTimer(id, b)
	return res
}

// Get returns a snapshot of the battle.
func (m *Manager) Get(id string) (Battle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.battles[id]
	if !ok {
		return Battle{}, fmt.Errorf("%w: %q", ErrUnknownBattle, id)
	}
	return snapshot(id, b), nil
}

// IDs returns the IDs of every hosted battle in lexical order.
func (m *Manager) IDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.battles))
	for id := range m.battles {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Subscribe attaches a new event stream to the battle, closing any previous
// one. Every subsequent Result's events are pushed to it.
func (m *Manager) Subscribe(id string, bufferSize int) (*EventStream, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.battles[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBattle, id)
	}
	if b.stream != nil {
		b.stream.Close()
	}
	b.stream = NewEventStream(id, bufferSize)
	return b.stream, nil
}

// ClaimRewards computes the battle's rewards. It succeeds at most once per
// battle.
//
// Postcondition: err wraps ErrNotVictorious unless the party won, and
// ErrRewardsClaimed after a previous success.
func (m *Manager) ClaimRewards(id string) (combat.Rewards, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.battles[id]
	if !ok {
		return combat.Rewards{}, fmt.Errorf("%w: %q", ErrUnknownBattle, id)
	}
	if b.fled || b.state.Phase != combat.PhaseVictory {
		return combat.Rewards{}, fmt.Errorf("battle %s: %w", id, ErrNotVictorious)
	}
	if b.claimed {
		return combat.Rewards{}, fmt.Errorf("battle %s: %w", id, ErrRewardsClaimed)
	}
	rewards, err := combat.CalculateRewards(b.state, m.rng, m.enemies)
	if err != nil {
		return combat.Rewards{}, fmt.Errorf("battle %s: %w", id, err)
	}
	b.claimed = true
	m.logger.Info("rewards claimed",
		zap.String("battle_id", id),
		zap.Int("xp", rewards.XP),
		zap.Int("gold", rewards.Gold),
		zap.Int("materials", len(rewards.Materials)),
	)
	return rewards, nil
}

// End removes the battle and releases its timer and stream.
//
// Postcondition: Returns the final snapshot, or an error wrapping
// ErrUnknownBattle.
func (m *Manager) End(id string) (Battle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.battles[id]
	if !ok {
		return Battle{}, fmt.Errorf("%w: %q", ErrUnknownBattle, id)
	}
	delete(m.battles, id)
	if b.timer != nil {
		b.timer.Stop()
	}
	if b.stream != nil {
		b.stream.Close()
	}
	snap := snapshot(id, b)
	m.logger.Info("battle closed",
		append(observability.BattleFields(id, b.state),
			zap.String("outcome", snap.Outcome()),
			zap.Int("events", len(b.log)),
			zap.Duration("elapsed", time.Since(b.startedAt)),
		)...)
	return snap, nil
}

func (m *Manager) active(id string) (*battle, error) {
	b, ok := m.battles[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBattle, id)
	}
	if b.over() {
		return nil, fmt.Errorf("battle %s: %w", id, ErrBattleOver)
	}
	return b, nil
}

func (m *Manager) apply(id string, b *battle, res combat.Result) {
	wasOver := b.over()
	b.state = res.State
	b.log = append(b.log, res.Events...)
	for _, ev := range res.Events {
		if _, ok := ev.(combat.FleeSuccessEvent); ok {
			b.fled = true
		}
		if ce := m.logger.Check(zap.DebugLevel, "battle event"); ce != nil {
			ce.Write(append(observability.EventFields(ev), zap.String("battle_id", id))...)
		}
	}
	if b.stream != nil {
		if err := b.stream.Push(res.Events); err != nil {
			m.logger.Warn("dropping battle events", zap.String("battle_id", id), zap.Error(err))
		}
	}
	if !wasOver && b.over() {
		if b.timer != nil {
			b.timer.Stop()
		}
		m.logger.Info("battle finished",
			append(observability.BattleFields(id, b.state),
				zap.Bool("fled", b.fled),
			)...)
	}
}

// armTimer starts the idle countdown when a party member holds a fresh turn.
func (m *Manager) armTimer(id string, b *battle) {
	if b.timer != nil {
		b.timer.Stop()
	}
	if m.idleTimeout <= 0 || b.over() {
		return
	}
	actor, ok := b.state.CurrentActor()
	if !ok || !actor.IsParty {
		return
	}
	round := b.state.Round
	onFire := func() { m.onIdle(id, actor.ID, round) }
	if b.timer == nil {
		b.timer = NewTurnTimer(m.idleTimeout, onFire)
		return
	}
	b.timer.Reset(m.idleTimeout, onFire)
}

// onIdle defends on behalf of a party member who let the turn time out and
// passes the turn on.
func (m *Manager) onIdle(id, actorID string, round int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.battles[id]
	if !ok || b.over() || b.state.Round != round {
		return
	}
	entry, ok := currentEntry(b.state)
	if !ok || entry.EntityID != actorID || entry.HasActed {
		return
	}
	m.logger.Warn("turn timed out; defending", zap.String("battle_id", id), zap.String("actor", actorID))
	if _, err := m.submit(id, b, combat.DefendAction{ActorID: actorID}); err != nil {
		m.logger.Error("auto-defend failed", zap.String("battle_id", id), zap.Error(err))
		return
	}
	if !b.over() {
		m.advance(id, b)
	}
}

func currentEntry(s *combat.State) (combat.TurnEntry, bool) {
	if s.CurrentActorIndex < 0 || s.CurrentActorIndex >= len(s.TurnOrder) {
		return combat.TurnEntry{}, false
	}
	return s.TurnOrder[s.CurrentActorIndex], true
}

func snapshot(id string, b *battle) Battle {
	return Battle{
		ID:             id,
		State:          b.state.Clone(),
		Log:            slices.Clone(b.log),
		Fled:           b.fled,
		RewardsClaimed: b.claimed,
		StartedAt:      b.startedAt,
	}
}
