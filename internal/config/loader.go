package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all settings.
const envPrefix = "FRAGMENSTEIN"

// configKeys lists every leaf key so that AutomaticEnv can resolve
// environment overrides for keys absent from the file.
var configKeys = []string{
	"placement.positional_cutoff", "placement.mcs_node_budget", "placement.mcs_max_matches",
	"minimizer.max_iterations", "minimizer.gradient_tolerance", "minimizer.seed",
	"minimizer.restraint_force", "minimizer.restraint_tolerance",
	"lab.concurrency", "lab.task_timeout", "lab.minimize_output", "lab.strict_minimization",
	"cache.enabled", "cache.addr", "cache.password", "cache.db", "cache.pool_size",
	"cache.dial_timeout", "cache.read_timeout", "cache.write_timeout", "cache.key_prefix", "cache.ttl",
	"metrics.enabled", "metrics.namespace", "metrics.listen_addr",
	"log.level", "log.format", "log.output_paths", "log.error_output_paths",
}

// newViper builds a pre-configured Viper instance: YAML file type,
// FRAGMENSTEIN_ env prefix, automatic env binding, and a key replacer that
// maps "." → "_" so that nested keys like "lab.concurrency" resolve to
// "FRAGMENSTEIN_LAB_CONCURRENCY".
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range configKeys {
		// BindEnv only errors on an empty key list.
		_ = v.BindEnv(key)
	}
	return v
}

// Load reads the YAML file at configPath, merges any FRAGMENSTEIN_*
// environment variable overrides, applies defaults for unset fields, and
// validates the result.  An empty configPath is equivalent to LoadFromEnv.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		return LoadFromEnv()
	}
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from FRAGMENSTEIN_* environment
// variables, with no config file required.
//
// Environment variable naming convention:
//
//	FRAGMENSTEIN_<SECTION>_<FIELD>   e.g.  FRAGMENSTEIN_LAB_CONCURRENCY
func LoadFromEnv() (*Config, error) {
	v := newViper()
	return unmarshalAndFinalize(v)
}

// unmarshalAndFinalize unmarshals viper state into a Config struct, applies
// defaults, and validates the result.
func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

// Watch monitors configPath for changes and invokes onChange with the newly
// parsed Config whenever the file is written.  Long batch runs use it to pick
// up a new log level without restarting.  An invalid file is reported through
// onError (when non-nil) and onChange is skipped.
//
// Watch is non-blocking; viper runs the watcher goroutine.
func Watch(configPath string, onChange func(*Config), onError func(error)) error {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
	return nil
}

// MustLoad is a convenience wrapper around Load that panics on any error.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}

//Personal.AI order the ending
