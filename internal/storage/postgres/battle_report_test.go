package postgres_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/labyrinth/internal/game/combat"
	"github.com/cory-johannsen/labyrinth/internal/game/enemy"
	"github.com/cory-johannsen/labyrinth/internal/storage/postgres"
	"github.com/cory-johannsen/labyrinth/internal/testutil"
)

func uniqueEncounter(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}

func sampleEvents() []combat.Event {
	return []combat.Event{
		combat.RoundStartEvent{Round: 1},
		combat.DamageEvent{SourceID: "hero", TargetID: "g1", Damage: 25, Killed: true},
		combat.VictoryEvent{},
	}
}

func TestEncodeEvents(t *testing.T) {
	records, err := postgres.EncodeEvents(sampleEvents())
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, string(combat.EventRoundStart), records[0].Kind)

	var dmg combat.DamageEvent
	require.NoError(t, json.Unmarshal(records[1].Data, &dmg))
	assert.Equal(t, 25, dmg.Damage)
	assert.True(t, dmg.Killed)
}

func TestPropertyEncodeEventsPreservesOrder(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		rounds := rapid.SliceOf(rapid.IntRange(1, 100)).Draw(rt, "rounds")
		events := make([]combat.Event, 0, len(rounds))
		for _, r := range rounds {
			events = append(events, combat.RoundStartEvent{Round: r})
		}
		records, err := postgres.EncodeEvents(events)
		if err != nil {
			rt.Fatal(err)
		}
		for i, rec := range records {
			var ev combat.RoundStartEvent
			if err := json.Unmarshal(rec.Data, &ev); err != nil {
				rt.Fatal(err)
			}
			if ev.Round != rounds[i] {
				rt.Fatalf("record %d: round %d, want %d", i, ev.Round, rounds[i])
			}
		}
	})
}

func newReport(t *testing.T, encounterID, outcome string) *postgres.BattleReport {
	t.Helper()
	records, err := postgres.EncodeEvents(sampleEvents())
	require.NoError(t, err)
	return &postgres.BattleReport{
		EncounterID: encounterID,
		Seed:        ^uint64(0) - 7,
		Outcome:     outcome,
		Rounds:      2,
		Rewards: combat.Rewards{
			XP:        12,
			Gold:      3,
			Materials: []enemy.Material{{ItemID: "goblin-ear", Quantity: 2}},
		},
		Events: records,
	}
}

func TestBattleReportRepository_SaveAndGet(t *testing.T) {
	repo := postgres.NewBattleReportRepository(testutil.NewPool(t))
	ctx := context.Background()

	r := newReport(t, uniqueEncounter("ambush"), "victory")
	require.NoError(t, repo.Save(ctx, r))
	assert.NotEqual(t, uuid.Nil, r.ID)
	assert.False(t, r.CreatedAt.IsZero())

	got, err := repo.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.Seed, got.Seed)
	assert.Equal(t, r.Rewards, got.Rewards)
	require.Len(t, got.Events, 3)
	assert.Equal(t, r.Events[1].Kind, got.Events[1].Kind)
	assert.JSONEq(t, string(r.Events[1].Data), string(got.Events[1].Data))
}

func TestBattleReportRepository_Duplicate(t *testing.T) {
	repo := postgres.NewBattleReportRepository(testutil.NewPool(t))
	ctx := context.Background()

	r := newReport(t, uniqueEncounter("dup"), "defeat")
	require.NoError(t, repo.Save(ctx, r))
	again := newReport(t, r.EncounterID, "defeat")
	again.ID = r.ID
	assert.ErrorIs(t, repo.Save(ctx, again), postgres.ErrReportExists)
}

func TestBattleReportRepository_NotFound(t *testing.T) {
	repo := postgres.NewBattleReportRepository(testutil.NewPool(t))
	_, err := repo.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, postgres.ErrReportNotFound)
}

func TestBattleReportRepository_ListAndCount(t *testing.T) {
	repo := postgres.NewBattleReportRepository(testutil.NewPool(t))
	ctx := context.Background()
	enc := uniqueEncounter("list")

	for _, outcome := range []string{"victory", "victory", "fled"} {
		require.NoError(t, repo.Save(ctx, newReport(t, enc, outcome)))
	}

	list, err := repo.ListByEncounter(ctx, enc, 2)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	counts, err := repo.OutcomeCounts(ctx, enc)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"victory": 2, "fled": 1}, counts)
}
