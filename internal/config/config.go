// Package config provides Viper-based configuration loading for the combat
// simulator and its supporting tools.
package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cory-johannsen/labyrinth/internal/game/combat"
	"github.com/cory-johannsen/labyrinth/internal/game/dice"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// CombatConfig holds the tunable constants of the combat engine. Field
// meanings match combat.Rules.
type CombatConfig struct {
	ComboStep           float64  `mapstructure:"combo_step"`
	CritMultiplier      float64  `mapstructure:"crit_multiplier"`
	BaseCritChance      float64  `mapstructure:"base_crit_chance"`
	CritPerLuc          float64  `mapstructure:"crit_per_luc"`
	SleepWakeMultiplier float64  `mapstructure:"sleep_wake_multiplier"`
	MultiplierOrder     []string `mapstructure:"multiplier_order"`
	DefenseFactor       float64  `mapstructure:"defense_factor"`
	DefendFactor        float64  `mapstructure:"defend_factor"`
	BasicAttackPower    float64  `mapstructure:"basic_attack_power"`

	BaseEvasion    float64 `mapstructure:"base_evasion"`
	EvasionPerAgi  float64 `mapstructure:"evasion_per_agi"`
	BlindHitFactor float64 `mapstructure:"blind_hit_factor"`

	ParalyzeSkipChance float64 `mapstructure:"paralyze_skip_chance"`
	SleepSkipChance    float64 `mapstructure:"sleep_skip_chance"`

	FleeBaseChance float64 `mapstructure:"flee_base_chance"`
	FleePerAgi     float64 `mapstructure:"flee_per_agi"`
	FleeMinChance  float64 `mapstructure:"flee_min_chance"`
	FleeMaxChance  float64 `mapstructure:"flee_max_chance"`

	// SpikeDamage is a dice expression such as "1d6+4".
	SpikeDamage       string  `mapstructure:"spike_damage"`
	WebBindTurns      int     `mapstructure:"web_bind_turns"`
	WebBindChance     float64 `mapstructure:"web_bind_chance"`
	FirePoisonTurns   int     `mapstructure:"fire_poison_turns"`
	FirePoisonPotency int     `mapstructure:"fire_poison_potency"`
	FirePoisonChance  float64 `mapstructure:"fire_poison_chance"`
}

// Rules converts the configuration into engine rules.
//
// Postcondition: Returns an error iff SpikeDamage or MultiplierOrder cannot
// be parsed.
func (c CombatConfig) Rules() (combat.Rules, error) {
	spike, err := dice.Parse(c.SpikeDamage)
	if err != nil {
		return combat.Rules{}, fmt.Errorf("combat.spike_damage: %w", err)
	}
	order, err := combat.ParseMultiplierOrder(c.MultiplierOrder)
	if err != nil {
		return combat.Rules{}, fmt.Errorf("combat.multiplier_order: %w", err)
	}
	return combat.Rules{
		ComboStep:           c.ComboStep,
		CritMultiplier:      c.CritMultiplier,
		BaseCritChance:      c.BaseCritChance,
		CritPerLuc:          c.CritPerLuc,
		SleepWakeMultiplier: c.SleepWakeMultiplier,
		MultiplierOrder:     order,
		DefenseFactor:       c.DefenseFactor,
		DefendFactor:        c.DefendFactor,
		BasicAttackPower:    c.BasicAttackPower,
		BaseEvasion:         c.BaseEvasion,
		EvasionPerAgi:       c.EvasionPerAgi,
		BlindHitFactor:      c.BlindHitFactor,
		ParalyzeSkipChance:  c.ParalyzeSkipChance,
		SleepSkipChance:     c.SleepSkipChance,
		FleeBaseChance:      c.FleeBaseChance,
		FleePerAgi:          c.FleePerAgi,
		FleeMinChance:       c.FleeMinChance,
		FleeMaxChance:       c.FleeMaxChance,
		SpikeDamage:         spike,
		WebBindTurns:        c.WebBindTurns,
		WebBindChance:       c.WebBindChance,
		FirePoisonTurns:     c.FirePoisonTurns,
		FirePoisonPotency:   c.FirePoisonPotency,
		FirePoisonChance:    c.FirePoisonChance,
	}, nil
}

// ContentConfig names the directories holding YAML content.
type ContentConfig struct {
	SkillsDir     string `mapstructure:"skills_dir"`
	EnemiesDir    string `mapstructure:"enemies_dir"`
	EncountersDir string `mapstructure:"encounters_dir"`
}

// SessionConfig holds battle session settings.
type SessionConfig struct {
	// IdleTurnTimeout is how long a party member may hold the turn before
	// being auto-defended. Zero disables the timer.
	IdleTurnTimeout time.Duration `mapstructure:"idle_turn_timeout"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	Combat   CombatConfig   `mapstructure:"combat"`
	Content  ContentConfig  `mapstructure:"content"`
	Database DatabaseConfig `mapstructure:"database"`
	Session  SessionConfig  `mapstructure:"session"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateCombat(c.Combat); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateContent(c.Content); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateDatabase(c.Database); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Session.IdleTurnTimeout < 0 {
		errs = append(errs, "session.idle_turn_timeout must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateCombat(c CombatConfig) error {
	var errs []string
	probabilities := map[string]float64{
		"combat.base_crit_chance":     c.BaseCritChance,
		"combat.base_evasion":         c.BaseEvasion,
		"combat.blind_hit_factor":     c.BlindHitFactor,
		"combat.paralyze_skip_chance": c.ParalyzeSkipChance,
		"combat.sleep_skip_chance":    c.SleepSkipChance,
		"combat.flee_base_chance":     c.FleeBaseChance,
		"combat.flee_min_chance":      c.FleeMinChance,
		"combat.flee_max_chance":      c.FleeMaxChance,
		"combat.web_bind_chance":      c.WebBindChance,
		"combat.fire_poison_chance":   c.FirePoisonChance,
	}
	for _, key := range sortedKeys(probabilities) {
		if p := probabilities[key]; p < 0 || p > 1 {
			errs = append(errs, fmt.Sprintf("%s must be in [0,1], got %v", key, p))
		}
	}
	if c.FleeMinChance > c.FleeMaxChance {
		errs = append(errs, "combat.flee_min_chance must not exceed combat.flee_max_chance")
	}
	if c.ComboStep < 0 {
		errs = append(errs, "combat.combo_step must not be negative")
	}
	if c.CritMultiplier < 1 {
		errs = append(errs, fmt.Sprintf("combat.crit_multiplier must be >= 1, got %v", c.CritMultiplier))
	}
	if c.SleepWakeMultiplier < 1 {
		errs = append(errs, fmt.Sprintf("combat.sleep_wake_multiplier must be >= 1, got %v", c.SleepWakeMultiplier))
	}
	if c.DefendFactor <= 0 || c.DefendFactor > 1 {
		errs = append(errs, fmt.Sprintf("combat.defend_factor must be in (0,1], got %v", c.DefendFactor))
	}
	if c.WebBindTurns < 1 {
		errs = append(errs, "combat.web_bind_turns must be >= 1")
	}
	if c.FirePoisonTurns < 1 {
		errs = append(errs, "combat.fire_poison_turns must be >= 1")
	}
	if _, err := c.Rules(); err != nil {
		errs = append(errs, err.Error())
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateContent(c ContentConfig) error {
	var errs []string
	if c.SkillsDir == "" {
		errs = append(errs, "content.skills_dir must not be empty")
	}
	if c.EnemiesDir == "" {
		errs = append(errs, "content.enemies_dir must not be empty")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with LABYRINTH_ prefix
	v.SetEnvPrefix("LABYRINTH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SetDefaults registers the default value of every key on v. The combat
// defaults mirror combat.DefaultRules.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	r := combat.DefaultRules()
	order := make([]string, 0, len(r.MultiplierOrder))
	for _, m := range r.MultiplierOrder {
		order = append(order, string(m))
	}
	v.SetDefault("combat.combo_step", r.ComboStep)
	v.SetDefault("combat.crit_multiplier", r.CritMultiplier)
	v.SetDefault("combat.base_crit_chance", r.BaseCritChance)
	v.SetDefault("combat.crit_per_luc", r.CritPerLuc)
	v.SetDefault("combat.sleep_wake_multiplier", r.SleepWakeMultiplier)
	v.SetDefault("combat.multiplier_order", order)
	v.SetDefault("combat.defense_factor", r.DefenseFactor)
	v.SetDefault("combat.defend_factor", r.DefendFactor)
	v.SetDefault("combat.basic_attack_power", r.BasicAttackPower)
	v.SetDefault("combat.base_evasion", r.BaseEvasion)
	v.SetDefault("combat.evasion_per_agi", r.EvasionPerAgi)
	v.SetDefault("combat.blind_hit_factor", r.BlindHitFactor)
	v.SetDefault("combat.paralyze_skip_chance", r.ParalyzeSkipChance)
	v.SetDefault("combat.sleep_skip_chance", r.SleepSkipChance)
	v.SetDefault("combat.flee_base_chance", r.FleeBaseChance)
	v.SetDefault("combat.flee_per_agi", r.FleePerAgi)
	v.SetDefault("combat.flee_min_chance", r.FleeMinChance)
	v.SetDefault("combat.flee_max_chance", r.FleeMaxChance)
	v.SetDefault("combat.spike_damage", r.SpikeDamage.Raw)
	v.SetDefault("combat.web_bind_turns", r.WebBindTurns)
	v.SetDefault("combat.web_bind_chance", r.WebBindChance)
	v.SetDefault("combat.fire_poison_turns", r.FirePoisonTurns)
	v.SetDefault("combat.fire_poison_potency", r.FirePoisonPotency)
	v.SetDefault("combat.fire_poison_chance", r.FirePoisonChance)

	v.SetDefault("content.skills_dir", "content/skills")
	v.SetDefault("content.enemies_dir", "content/enemies")
	v.SetDefault("content.encounters_dir", "content/encounters")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "labyrinth")
	v.SetDefault("database.password", "labyrinth")
	v.SetDefault("database.name", "labyrinth")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("session.idle_turn_timeout", "0s")
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
