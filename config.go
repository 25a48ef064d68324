package litecache

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the construction-time configuration. Zero Max and TTL take the
// defaults; negative values are rejected.
type Config struct {
	Path          string        // storage file; required unless Options.Driver is set
	Max           int           // maximum live entries; 0 => DefaultMax
	TTL           time.Duration // default entry lifetime; 0 => DefaultTTL
	Driver        string        // "native", "fallback" or "" to infer
	SweepInterval time.Duration // background SweepExpired period; 0 disables
	Log           LogOptions
}

// LogOptions configure the built-in zap logger used when Options.Logger is nil.
// In YAML, `log:` accepts either a boolean or a {prefix, timestamp} mapping.
type LogOptions struct {
	Enabled   bool
	Prefix    string
	Timestamp bool
}

func (o *LogOptions) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		var enabled bool
		if err := n.Decode(&enabled); err != nil {
			return fmt.Errorf("log: expected boolean or mapping: %w", err)
		}
		*o = LogOptions{Enabled: enabled}
		return nil
	case yaml.MappingNode:
		var m struct {
			Prefix    string `yaml:"prefix"`
			Timestamp bool   `yaml:"timestamp"`
		}
		if err := n.Decode(&m); err != nil {
			return err
		}
		*o = LogOptions{Enabled: true, Prefix: m.Prefix, Timestamp: m.Timestamp}
		return nil
	default:
		return fmt.Errorf("log: expected boolean or mapping at line %d", n.Line)
	}
}

// fileConfig is the YAML shape; durations are integer milliseconds.
type fileConfig struct {
	Path          string     `yaml:"path"`
	Max           int        `yaml:"max"`
	TTL           int64      `yaml:"ttl"`
	Driver        string     `yaml:"driver"`
	SweepInterval int64      `yaml:"sweep_interval"`
	Log           LogOptions `yaml:"log"`
}

// LoadConfig reads a YAML config file. The result is validated by New, not here.
func LoadConfig(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("litecache: read config: %w", err)
	}
	return ParseConfig(b)
}

func ParseConfig(b []byte) (Config, error) {
	var fc fileConfig
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return Config{}, &ConfigurationError{Field: "config", Reason: "malformed yaml", Err: err}
	}
	return Config{
		Path:          fc.Path,
		Max:           fc.Max,
		TTL:           time.Duration(fc.TTL) * time.Millisecond,
		Driver:        fc.Driver,
		SweepInterval: time.Duration(fc.SweepInterval) * time.Millisecond,
		Log:           fc.Log,
	}, nil
}

func (c Config) withDefaults() Config {
	c.Max = coalesce(c.Max, DefaultMax)
	c.TTL = coalesce(c.TTL, DefaultTTL)
	c.Driver = strings.TrimSpace(c.Driver)
	return c
}

// validate checks bounds. needPath is false when a driver is injected.
func (c Config) validate(needPath bool) error {
	if needPath && strings.TrimSpace(c.Path) == "" {
		return &ConfigurationError{Field: "path", Reason: "required"}
	}
	if strings.ContainsRune(c.Path, 0) {
		return &ConfigurationError{Field: "path", Reason: "contains NUL byte"}
	}
	if c.Max < 1 {
		return &ConfigurationError{Field: "max", Reason: fmt.Sprintf("must be >= 1, got %d", c.Max)}
	}
	if c.TTL < time.Millisecond {
		return &ConfigurationError{Field: "ttl", Reason: fmt.Sprintf("must be >= 1ms, got %s", c.TTL)}
	}
	if c.SweepInterval < 0 {
		return &ConfigurationError{Field: "sweep_interval", Reason: "must not be negative"}
	}
	return nil
}
