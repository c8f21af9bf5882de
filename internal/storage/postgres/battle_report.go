package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/labyrinth/internal/game/combat"
)

// ErrReportNotFound is returned when a battle report lookup yields no results.
var ErrReportNotFound = errors.New("battle report not found")

// ErrReportExists is returned when saving a report whose ID is already stored.
var ErrReportExists = errors.New("battle report already exists")

// EventRecord is one engine event in storable form.
type EventRecord struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// EncodeEvents converts an event log into records, preserving order.
//
// Postcondition: len(result) == len(events) on success.
func EncodeEvents(events []combat.Event) ([]EventRecord, error) {
	out := make([]EventRecord, 0, len(events))
	for i, ev := range events {
		data, err := json.Marshal(ev)
		if err != nil {
			return nil, fmt.Errorf("encoding event %d (%s): %w", i, ev.Kind(), err)
		}
		out = append(out, EventRecord{Kind: string(ev.Kind()), Data: data})
	}
	return out, nil
}

// BattleReport is the persisted summary of one finished battle.
type BattleReport struct {
	ID          uuid.UUID
	EncounterID string
	// Seed replays the battle when fed to dice.NewSeededSource.
	Seed      uint64
	Outcome   string
	Rounds    int
	Rewards   combat.Rewards
	Events    []EventRecord
	CreatedAt time.Time
}

// BattleReportRepository persists battle reports.
type BattleReportRepository struct {
	db *pgxpool.Pool
}

// NewBattleReportRepository creates a BattleReportRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewBattleReportRepository(db *pgxpool.Pool) *BattleReportRepository {
	return &BattleReportRepository{db: db}
}

// Save inserts r. A nil ID is replaced by a fresh random one.
//
// Precondition: r.EncounterID and r.Outcome must be non-empty.
// Postcondition: r.ID and r.CreatedAt are set on success; returns
// ErrReportExists on a duplicate ID.
func (repo *BattleReportRepository) Save(ctx context.Context, r *BattleReport) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	events, err := json.Marshal(r.Events)
	if err != nil {
		return fmt.Errorf("encoding events: %w", err)
	}
	rewards, err := json.Marshal(r.Rewards)
	if err != nil {
		return fmt.Errorf("encoding rewards: %w", err)
	}
	err = repo.db.QueryRow(ctx, `
		INSERT INTO battle_reports (id, encounter_id, seed, outcome, rounds, xp, gold, rewards, events)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at`,
		r.ID, r.EncounterID, int64(r.Seed), r.Outcome, r.Rounds,
		r.Rewards.XP, r.Rewards.Gold, rewards, events,
	).Scan(&r.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrReportExists
		}
		return fmt.Errorf("inserting battle report: %w", err)
	}
	return nil
}

// Get returns the report with the given ID.
//
// Postcondition: Returns ErrReportNotFound if no report matches.
func (repo *BattleReportRepository) Get(ctx context.Context, id uuid.UUID) (BattleReport, error) {
	row := repo.db.QueryRow(ctx, `
		SELECT id, encounter_id, seed, outcome, rounds, rewards, events, created_at
		FROM battle_reports WHERE id = $1`, id)
	r, err := scanReport(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return BattleReport{}, ErrReportNotFound
	}
	if err != nil {
		return BattleReport{}, fmt.Errorf("querying battle report: %w", err)
	}
	return r, nil
}

// ListByEncounter returns up to limit reports for encounterID, newest first.
//
// Precondition: limit must be > 0.
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (repo *BattleReportRepository) ListByEncounter(ctx context.Context, encounterID string, limit int) ([]BattleReport, error) {
	rows, err := repo.db.Query(ctx, `
		SELECT id, encounter_id, seed, outcome, rounds, rewards, events, created_at
		FROM battle_reports WHERE encounter_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2`,
		encounterID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing battle reports: %w", err)
	}
	defer rows.Close()

	var out []BattleReport
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning battle report: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// OutcomeCounts returns how many stored battles of encounterID ended in each
// outcome.
func (repo *BattleReportRepository) OutcomeCounts(ctx context.Context, encounterID string) (map[string]int, error) {
	rows, err := repo.db.Query(ctx, `
		SELECT outcome, COUNT(*) FROM battle_reports
		WHERE encounter_id = $1 GROUP BY outcome`, encounterID)
	if err != nil {
		return nil, fmt.Errorf("counting battle outcomes: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var outcome string
		var n int
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("scanning outcome count: %w", err)
		}
		out[outcome] = n
	}
	return out, rows.Err()
}

func scanReport(row pgx.Row) (BattleReport, error) {
	var (
		r       BattleReport
		seed    int64
		rewards []byte
		events  []byte
	)
	if err := row.Scan(&r.ID, &r.EncounterID, &seed, &r.Outcome, &r.Rounds, &rewards, &events, &r.CreatedAt); err != nil {
		return BattleReport{}, err
	}
	r.Seed = uint64(seed)
	if err := json.Unmarshal(rewards, &r.Rewards); err != nil {
		return BattleReport{}, fmt.Errorf("decoding rewards: %w", err)
	}
	if err := json.Unmarshal(events, &r.Events); err != nil {
		return BattleReport{}, fmt.Errorf("decoding events: %w", err)
	}
	return r, nil
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	// pgx wraps PostgreSQL errors; check for SQLSTATE 23505 (unique_violation)
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}
