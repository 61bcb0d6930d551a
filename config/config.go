// Package config loads, validates and watches simulation settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-logr/logr"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/sarchlab/llcsim/cache"
	"github.com/sarchlab/llcsim/replacement"
)

// ErrInvalidConfig is wrapped by every validation failure.
const ErrInvalidConfig = constError("invalid configuration")

type constError string

func (errStr constError) Error() string { return string(errStr) }

// Config is the complete simulation configuration.
type Config struct {
	// Cache is the LLC geometry and latency.
	Cache cache.Config `mapstructure:"cache" yaml:"cache"`
	// Policy names the replacement policy, see replacement.ParseKind.
	Policy string `mapstructure:"policy" yaml:"policy"`
	// Seed seeds the Random policy.
	Seed uint64 `mapstructure:"seed" yaml:"seed"`
	// ScoreGatedDemotion keeps strong hot lines in AdaptiveMLRU.
	ScoreGatedDemotion bool `mapstructure:"score_gated_demotion" yaml:"score_gated_demotion"`
	// Baseline also runs a fully-associative ARC cache of the same size.
	Baseline bool `mapstructure:"baseline" yaml:"baseline"`
	// Verbosity is the logr V level enabled on the console.
	Verbosity int `mapstructure:"verbosity" yaml:"verbosity"`
}

// DefaultConfig returns the default LLC running LIRSPlus.
func DefaultConfig() *Config {
	return &Config{
		Cache:  cache.DefaultLLCConfig(),
		Policy: replacement.LIRSPlus.String(),
		Seed:   1,
	}
}

// Kind returns the parsed policy.
func (c *Config) Kind() (replacement.Kind, error) {
	kind, err := replacement.ParseKind(c.Policy)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return kind, nil
}

// CacheConfig returns the cache configuration with the policy resolved.
func (c *Config) CacheConfig() (cache.Config, error) {
	kind, err := c.Kind()
	if err != nil {
		return cache.Config{}, err
	}
	cc := c.Cache
	cc.Policy = kind
	return cc, nil
}

// EngineOptions returns the replacement options implied by c.
func (c *Config) EngineOptions(log logr.Logger) []replacement.Option {
	return []replacement.Option{
		replacement.WithLogger(log),
		replacement.WithSeed(c.Seed),
		replacement.WithScoreGatedDemotion(c.ScoreGatedDemotion),
	}
}

// Validate checks the policy name and the cache geometry.
func (c *Config) Validate() error {
	cc, err := c.CacheConfig()
	if err != nil {
		return err
	}
	if err := cc.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.Verbosity < 0 {
		return fmt.Errorf("%w: negative verbosity %d", ErrInvalidConfig, c.Verbosity)
	}
	return nil
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(strings.TrimPrefix(filepath.Ext(path), "."))
	return v
}

// decode unmarshals the values v has read over the defaults.
func decode(v *viper.Viper) (*Config, error) {
	config := DefaultConfig()
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	cc, err := config.CacheConfig()
	if err != nil {
		return nil, err
	}
	config.Cache = cc
	return config, nil
}

// Load reads a YAML, JSON or TOML file; the format follows the extension.
// Keys missing from the file keep their defaults.
func Load(path string) (*Config, error) {
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return decode(v)
}

// Save writes c to path as YAML.
func Save(path string, c *Config) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
