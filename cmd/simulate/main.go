// Package main runs tactical battles headlessly: it loads content and an
// encounter, auto-plays the battle with a seeded random source and reports
// the outcome.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/labyrinth/internal/config"
	"github.com/cory-johannsen/labyrinth/internal/game/combat"
	"github.com/cory-johannsen/labyrinth/internal/game/dice"
	"github.com/cory-johannsen/labyrinth/internal/game/encounter"
	"github.com/cory-johannsen/labyrinth/internal/game/enemy"
	"github.com/cory-johannsen/labyrinth/internal/game/session"
	"github.com/cory-johannsen/labyrinth/internal/game/skill"
	"github.com/cory-johannsen/labyrinth/internal/observability"
	"github.com/cory-johannsen/labyrinth/internal/storage/postgres"
)

type options struct {
	configPath  string
	encounterID string
	partyPath   string
	seed        uint64
	runs        int
	maxSteps    int
	events      bool
	persist     bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "configs/dev.yaml", "path to configuration file")
	flag.StringVar(&opts.encounterID, "encounter", "goblin-ambush", "encounter ID, resolved under content.encounters_dir")
	flag.StringVar(&opts.partyPath, "party", "content/party.yaml", "path to the party YAML file")
	flag.Uint64Var(&opts.seed, "seed", 0, "random seed; 0 picks one")
	flag.IntVar(&opts.runs, "runs", 1, "number of battles to simulate; run i uses seed+i")
	flag.IntVar(&opts.maxSteps, "max-steps", 2000, "turn limit per battle")
	flag.BoolVar(&opts.events, "events", false, "print every event as JSON")
	flag.BoolVar(&opts.persist, "persist", false, "store a battle report per run in PostgreSQL")
	flag.Parse()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging, os.Stderr)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	if err := run(context.Background(), cfg, opts, logger, os.Stdout); err != nil {
		logger.Fatal("simulation failed", zap.Error(err))
	}
}

// content is everything a battle needs besides the random source.
type content struct {
	skills  *skill.Registry
	enemies *enemy.Registry
	enc     encounter.Definition
	party   []combat.PartyMember
	rules   combat.Rules
}

func loadContent(cfg config.Config, opts options, logger *zap.Logger) (content, error) {
	start := time.Now()
	skills, err := skill.LoadDirectory(cfg.Content.SkillsDir)
	if err != nil {
		return content{}, fmt.Errorf("loading skills: %w", err)
	}
	enemies, err := enemy.LoadDirectory(cfg.Content.EnemiesDir)
	if err != nil {
		return content{}, fmt.Errorf("loading enemies: %w", err)
	}
	def, err := encounter.Load(filepath.Join(cfg.Content.EncountersDir, opts.encounterID+".yaml"))
	if err != nil {
		return content{}, err
	}
	party, err := encounter.LoadParty(opts.partyPath)
	if err != nil {
		return content{}, err
	}
	rules, err := cfg.Combat.Rules()
	if err != nil {
		return content{}, err
	}
	nSkills, nItems := skills.Len()
	logger.Info("content loaded",
		zap.Int("skills", nSkills),
		zap.Int("items", nItems),
		zap.Int("enemies", enemies.Len()),
		zap.String("encounter", def.ID),
		zap.Int("party", len(party)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return content{skills: skills, enemies: enemies, enc: def, party: party, rules: rules}, nil
}

// runResult summarizes one simulated battle.
type runResult struct {
	Seed    uint64          `json:"seed"`
	Outcome string          `json:"outcome"`
	Rounds  int             `json:"rounds"`
	Rewards *combat.Rewards `json:"rewards,omitempty"`
}

func run(ctx context.Context, cfg config.Config, opts options, logger *zap.Logger, out io.Writer) error {
	if opts.runs < 1 {
		return errors.New("runs must be >= 1")
	}
	c, err := loadContent(cfg, opts, logger)
	if err != nil {
		return err
	}

	var reports *postgres.BattleReportRepository
	if opts.persist {
		store, err := postgres.Open(ctx, cfg.Database)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer store.Close()
		reports = store.Reports
	}

	seed := opts.seed
	if seed == 0 {
		if seed, err = dice.NewSeed(); err != nil {
			return err
		}
	}

	outcomes := make(map[string]int)
	for i := 0; i < opts.runs; i++ {
		res, battleLog, err := simulate(c, seed+uint64(i), opts.maxSteps, cfg.Session.IdleTurnTimeout, logger)
		if err != nil {
			return err
		}
		outcomes[res.Outcome]++
		if opts.events {
			if err := writeEvents(out, battleLog); err != nil {
				return err
			}
		}
		if err := json.NewEncoder(out).Encode(res); err != nil {
			return fmt.Errorf("writing result: %w", err)
		}
		if reports != nil {
			if err := saveReport(ctx, reports, c.enc.ID, res, battleLog); err != nil {
				return err
			}
		}
	}
	logger.Info("simulation finished",
		zap.String("encounter", c.enc.ID),
		zap.Int("runs", opts.runs),
		zap.Uint64("first_seed", seed),
		zap.Any("outcomes", outcomes),
	)
	return nil
}

// simulate plays one battle to its end with a source seeded by seed.
func simulate(c content, seed uint64, maxSteps int, idle time.Duration, logger *zap.Logger) (runResult, []combat.Event, error) {
	src := dice.NewLoggedSource(dice.NewSeededSource(seed), logger)
	mgr := session.NewManager(c.skills, c.enemies, src, logger)
	mgr.SetIdleTurnTimeout(idle)

	enc, err := encounter.Build(c.enc, c.party, c.enemies)
	if err != nil {
		return runResult{}, nil, err
	}
	id, _, err := mgr.Start(enc, c.rules)
	if err != nil {
		return runResult{}, nil, err
	}
	b, err := mgr.AutoPlay(id, maxSteps)
	if err != nil {
		return runResult{}, nil, err
	}

	res := runResult{Seed: seed, Outcome: b.Outcome(), Rounds: b.State.Round}
	if b.State.Phase == combat.PhaseVictory {
		rewards, err := mgr.ClaimRewards(id)
		if err != nil {
			return runResult{}, nil, err
		}
		res.Rewards = &rewards
	}
	if _, err := mgr.End(id); err != nil {
		return runResult{}, nil, err
	}
	logger.Debug("battle simulated",
		zap.Uint64("seed", seed),
		zap.String("outcome", res.Outcome),
		zap.Int64("draws", src.Draws()),
	)
	return res, b.Log, nil
}

func writeEvents(out io.Writer, events []combat.Event) error {
	records, err := postgres.EncodeEvents(events)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("writing event: %w", err)
		}
	}
	return nil
}

func saveReport(ctx context.Context, repo *postgres.BattleReportRepository, encounterID string, res runResult, events []combat.Event) error {
	records, err := postgres.EncodeEvents(events)
	if err != nil {
		return err
	}
	report := &postgres.BattleReport{
		EncounterID: encounterID,
		Seed:        res.Seed,
		Outcome:     res.Outcome,
		Rounds:      res.Rounds,
		Events:      records,
	}
	if res.Rewards != nil {
		report.Rewards = *res.Rewards
	}
	if err := repo.Save(ctx, report); err != nil {
		return fmt.Errorf("saving battle report: %w", err)
	}
	return nil
}
