// Package config defines all configuration structures for Fragmenstein.
// Only plain data types and validation live here; loading is in loader.go.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/mwinokan/Fragmenstein/internal/infrastructure/monitoring/logging"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// PlacementConfig holds the tunables of the compositor/placement core.
type PlacementConfig struct {
	// PositionalCutoff is the largest distance at which two atoms of different
	// poses are considered the same atom.
	PositionalCutoff float64 `mapstructure:"positional_cutoff"`
	// MCSNodeBudget caps the number of search states one MCS query may visit.
	MCSNodeBudget int `mapstructure:"mcs_node_budget"`
	// MCSMaxMatches caps the number of equivalent correspondences kept per query.
	MCSMaxMatches int `mapstructure:"mcs_max_matches"`
}

// MinimizerConfig holds the force-field embedding and relaxation parameters.
type MinimizerConfig struct {
	MaxIterations      int     `mapstructure:"max_iterations"`
	GradientTolerance  float64 `mapstructure:"gradient_tolerance"`
	Seed               int64   `mapstructure:"seed"`
	RestraintForce     float64 `mapstructure:"restraint_force"`
	RestraintTolerance float64 `mapstructure:"restraint_tolerance"`
}

// LabConfig holds batch-orchestration parameters.
type LabConfig struct {
	Concurrency int           `mapstructure:"concurrency"`
	TaskTimeout time.Duration `mapstructure:"task_timeout"` // 0 disables the per-task timeout
	// MinimizeOutput runs a restrained relaxation on every positioned candidate.
	MinimizeOutput bool `mapstructure:"minimize_output"`
	// StrictMinimization disables the single retry with weakened restraints.
	StrictMinimization bool `mapstructure:"strict_minimization"`
}

// CacheConfig holds the Redis result-cache parameters.
type CacheConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
	TTL          time.Duration `mapstructure:"ttl"`
}

// MetricsConfig holds Prometheus exposition parameters.
type MetricsConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Namespace  string `mapstructure:"namespace"`
	ListenAddr string `mapstructure:"listen_addr"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure.  Every component reads its
// settings from the relevant sub-struct.
type Config struct {
	Placement PlacementConfig   `mapstructure:"placement"`
	Minimizer MinimizerConfig   `mapstructure:"minimizer"`
	Lab       LabConfig         `mapstructure:"lab"`
	Cache     CacheConfig       `mapstructure:"cache"`
	Metrics   MetricsConfig     `mapstructure:"metrics"`
	Log       logging.LogConfig `mapstructure:"log"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered.
func (c *Config) Validate() error {
	// Placement
	if c.Placement.PositionalCutoff <= 0 {
		return fmt.Errorf("config: placement.positional_cutoff must be > 0, got %g", c.Placement.PositionalCutoff)
	}
	if c.Placement.MCSNodeBudget < 1 {
		return fmt.Errorf("config: placement.mcs_node_budget must be ≥ 1, got %d", c.Placement.MCSNodeBudget)
	}
	if c.Placement.MCSMaxMatches < 1 {
		return fmt.Errorf("config: placement.mcs_max_matches must be ≥ 1, got %d", c.Placement.MCSMaxMatches)
	}

	// Minimizer
	if c.Minimizer.MaxIterations < 1 {
		return fmt.Errorf("config: minimizer.max_iterations must be ≥ 1, got %d", c.Minimizer.MaxIterations)
	}
	if c.Minimizer.GradientTolerance <= 0 {
		return fmt.Errorf("config: minimizer.gradient_tolerance must be > 0, got %g", c.Minimizer.GradientTolerance)
	}
	if c.Minimizer.RestraintForce < 0 || c.Minimizer.RestraintTolerance < 0 {
		return fmt.Errorf("config: minimizer restraint parameters must be ≥ 0")
	}

	// Lab
	if c.Lab.Concurrency < 1 {
		return fmt.Errorf("config: lab.concurrency must be ≥ 1, got %d", c.Lab.Concurrency)
	}
	if c.Lab.TaskTimeout < 0 {
		return fmt.Errorf("config: lab.task_timeout must be ≥ 0, got %s", c.Lab.TaskTimeout)
	}

	// Cache
	if c.Cache.Enabled {
		if c.Cache.Addr == "" {
			return fmt.Errorf("config: cache.addr is required when the cache is enabled")
		}
		if c.Cache.DB < 0 {
			return fmt.Errorf("config: cache.db must be ≥ 0, got %d", c.Cache.DB)
		}
	}

	// Metrics
	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		return fmt.Errorf("config: metrics.namespace is required when metrics are enabled")
	}

	// Log
	switch strings.ToLower(c.Log.Level) {
	case logging.LevelDebug, logging.LevelInfo, logging.LevelWarn, logging.LevelError:
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	return nil
}

//Personal.AI order the ending
