// Package config provides configuration loading, defaults, and validation for
// Fragmenstein.
package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	// DefaultPositionalCutoff is the "same atom, different pose" distance.
	DefaultPositionalCutoff = 2.0
	DefaultMCSNodeBudget    = 200000
	DefaultMCSMaxMatches    = 256

	DefaultMinimizerMaxIterations = 2000
	DefaultGradientTolerance      = 1e-4
	DefaultMinimizerSeed          = 42
	DefaultRestraintForce         = 5.0
	DefaultRestraintTolerance     = 0.25

	DefaultLabConcurrency = 4
	DefaultTaskTimeout    = 2 * time.Minute

	DefaultCacheAddr      = "localhost:6379"
	DefaultCacheKeyPrefix = "fragmenstein:"
	DefaultCacheTTL       = 24 * time.Hour
	DefaultCachePoolSize  = 10

	DefaultMetricsNamespace = "fragmenstein"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "console"
)

// ─────────────────────────────────────────────────────────────────────────────
// ApplyDefaults fills zero-value fields in cfg with well-known defaults.
// It must be called after unmarshalling raw config data and before Validate()
// so that optional-but-defaulted fields are never seen as missing.
// ─────────────────────────────────────────────────────────────────────────────

// ApplyDefaults fills every zero-value field in cfg with its default.
// Fields that have already been set (non-zero values) are left unchanged so
// that explicit configuration always wins.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Placement ─────────────────────────────────────────────────────────────
	if cfg.Placement.PositionalCutoff == 0 {
		cfg.Placement.PositionalCutoff = DefaultPositionalCutoff
	}
	if cfg.Placement.MCSNodeBudget == 0 {
		cfg.Placement.MCSNodeBudget = DefaultMCSNodeBudget
	}
	if cfg.Placement.MCSMaxMatches == 0 {
		cfg.Placement.MCSMaxMatches = DefaultMCSMaxMatches
	}

	// ── Minimizer ─────────────────────────────────────────────────────────────
	if cfg.Minimizer.MaxIterations == 0 {
		cfg.Minimizer.MaxIterations = DefaultMinimizerMaxIterations
	}
	if cfg.Minimizer.GradientTolerance == 0 {
		cfg.Minimizer.GradientTolerance = DefaultGradientTolerance
	}
	if cfg.Minimizer.Seed == 0 {
		cfg.Minimizer.Seed = DefaultMinimizerSeed
	}
	if cfg.Minimizer.RestraintForce == 0 {
		cfg.Minimizer.RestraintForce = DefaultRestraintForce
	}
	if cfg.Minimizer.RestraintTolerance == 0 {
		cfg.Minimizer.RestraintTolerance = DefaultRestraintTolerance
	}

	// ── Lab ───────────────────────────────────────────────────────────────────
	if cfg.Lab.Concurrency == 0 {
		cfg.Lab.Concurrency = DefaultLabConcurrency
	}
	if cfg.Lab.TaskTimeout == 0 {
		cfg.Lab.TaskTimeout = DefaultTaskTimeout
	}

	// ── Cache ─────────────────────────────────────────────────────────────────
	if cfg.Cache.Addr == "" {
		cfg.Cache.Addr = DefaultCacheAddr
	}
	if cfg.Cache.KeyPrefix == "" {
		cfg.Cache.KeyPrefix = DefaultCacheKeyPrefix
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = DefaultCacheTTL
	}
	if cfg.Cache.PoolSize == 0 {
		cfg.Cache.PoolSize = DefaultCachePoolSize
	}
	// DB is an int; 0 is a valid explicit value and also the default.

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}

// Default returns a Config with every field set to its default.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

//Personal.AI order the ending
