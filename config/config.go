// Package config loads the judge's runtime configuration from a YAML
// file using the outer-kind/inner-def envelope pattern: viper reads the
// file and unmarshals the outer envelope, then the inner "def" payload
// is re-marshaled and unmarshaled again into the concrete config type.
// This indirection lets the config file name a "kind" without the
// caller having to know the concrete shape up front.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// outerConfig is the envelope every config file is wrapped in.
type outerConfig struct {
	Kind string      `mapstructure:"kind"`
	Def  interface{} `mapstructure:"def"`
}

// RateLimitConfig holds the default (count, window) new users' rate
// limiters are constructed with.
type RateLimitConfig struct {
	Count  int      `yaml:"count" mapstructure:"count"`
	Window Duration `yaml:"window" mapstructure:"window"`
}

// Duration wraps time.Duration so it can be written in config files as a
// Go duration string ("15s", "2m") rather than a raw nanosecond count.
type Duration time.Duration

// UnmarshalYAML parses a duration string per time.ParseDuration.
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("config: invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// GameConfig is the judge's full runtime configuration. Viper lowercases
// every key it reads, so the re-marshaled def payload Load decodes has
// lowercase keys; the yaml tags are lowercase to match, while the config
// file itself may spell keys in camelCase (maxSteps, rateLimit, ...).
type GameConfig struct {
	// MaxSteps is the tick ceiling applied to every submission's evaluation.
	MaxSteps int `yaml:"maxsteps" mapstructure:"maxSteps"`

	// RateLimit gives the defaults new users' limiters are created with.
	RateLimit RateLimitConfig `yaml:"ratelimit" mapstructure:"rateLimit"`

	// AdminToken authorizes the admin endpoints; consumed only by the
	// HTTP layer, never by the kernel or the registry.
	AdminToken string `yaml:"admintoken" mapstructure:"adminToken"`

	// UserCredentialsPath points at the file the HTTP layer checks
	// submitter credentials against.
	UserCredentialsPath string `yaml:"usercredentialspath" mapstructure:"userCredentialsPath"`

	// ListenAddr is the address the HTTP server binds.
	ListenAddr string `yaml:"listenaddr" mapstructure:"listenAddr"`

	// ScoreboardDumpPath, if set, is loaded into the global scoreboard at
	// startup; each level installed through the admin endpoint writes a
	// new timestamped dump file into this path's directory.
	ScoreboardDumpPath string `yaml:"scoreboarddumppath" mapstructure:"scoreboardDumpPath"`
}

// DefaultMaxSteps and DefaultRateLimit* are applied by Load when the
// config file omits those keys.
const (
	DefaultMaxSteps           = 100
	DefaultRateLimitCount     = 2
	DefaultRateLimitWindowSec = 10
)

// Load reads a YAML config file at path, unwraps its outer kind/def
// envelope, and decodes the def payload into a GameConfig. Missing
// optional fields are filled with the package defaults.
func Load(path string) (*GameConfig, error) {
	vp := viper.New()
	vp.SetConfigFile(path)
	vp.SetConfigType("yaml")
	vp.AddConfigPath(filepath.Dir(path))

	if err := vp.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var outer outerConfig
	if err := vp.Unmarshal(&outer); err != nil {
		return nil, fmt.Errorf("config: decoding envelope: %w", err)
	}

	spec, err := yaml.Marshal(outer.Def)
	if err != nil {
		return nil, fmt.Errorf("config: re-marshaling def: %w", err)
	}

	cfg := &GameConfig{}
	if err := yaml.Unmarshal(spec, cfg); err != nil {
		return nil, fmt.Errorf("config: decoding game config: %w", err)
	}

	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *GameConfig) {
	if cfg.MaxSteps == 0 {
		cfg.MaxSteps = DefaultMaxSteps
	}
	if cfg.RateLimit.Count == 0 {
		cfg.RateLimit.Count = DefaultRateLimitCount
	}
	if cfg.RateLimit.Window == 0 {
		cfg.RateLimit.Window = Duration(DefaultRateLimitWindowSec * time.Second)
	}
}
