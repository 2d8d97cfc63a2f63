package hosel

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Observations are previously evaluated configurations split by outcome.
type Observations struct {
	Good []Configuration `yaml:"good"`
	Bad  []Configuration `yaml:"bad"`
}

// Config is the file form of a selection job: the search space, the
// constraint, the observations to fit the density models on, and selector
// knobs.
//
// Example:
//
//	log_level: info
//	seed: 42
//	num_starting_points: 100
//	bandwidth: 1.0
//	dimensions:
//	  - {name: a, type: range_int, min: 0, max: 10}
//	  - {name: b, type: range_int, min: 0, max: 10}
//	constraint:
//	  lower: 5
//	  upper: 5
//	  indices: [0, 1]
//	observations:
//	  good: [[1, 4], [2, 3]]
//	  bad: [[5, 0], [0, 5]]
type Config struct {
	LogLevel          string         `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	Seed              int64          `yaml:"seed"`
	NumStartingPoints int            `yaml:"num_starting_points" validate:"gte=0"`
	FilterSeeds       bool           `yaml:"filter_seeds"`
	Parallelism       int            `yaml:"parallelism" validate:"gte=0"`
	Bandwidth         float64        `yaml:"bandwidth" validate:"gte=0"`
	Dimensions        []Dimension    `yaml:"dimensions" validate:"required,min=1,dive"`
	Constraint        ConstraintSpec `yaml:"constraint"`
	Observations      Observations   `yaml:"observations"`
}

// Validate checks the config's tags, then the cross-field rules tags can't
// express: dimension bounds, constraint indices and observation widths.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if err := ValidateDimensions(c.Dimensions); err != nil {
		return err
	}

	if err := c.Constraint.Validate(c.Dimensions); err != nil {
		return fmt.Errorf("constraint: %w", err)
	}

	sets := []struct {
		name string
		set  []Configuration
	}{
		{"good", c.Observations.Good},
		{"bad", c.Observations.Bad},
	}

	for _, s := range sets {
		for i, o := range s.set {
			if len(o) != len(c.Dimensions) {
				return fmt.Errorf("observations.%s[%d]: %d values, want %d", s.name, i, len(o), len(c.Dimensions))
			}
		}
	}

	return nil
}

// SelectorConfig derives a SelectorConfig from the file settings. The
// logger is left to the caller.
func (c *Config) SelectorConfig() SelectorConfig {
	cfg := DefaultSelectorConfig()
	cfg.FilterSeeds = c.FilterSeeds

	if c.NumStartingPoints > 0 {
		cfg.NumStartingPoints = c.NumStartingPoints
	}

	if c.Parallelism > 0 {
		opt := DefaultLocalSearchOptimizer()
		opt.Parallelism = c.Parallelism
		cfg.Optimizer = opt
	}

	return cfg
}

// ParseConfigYAML parses a Config from YAML bytes and validates it.
func ParseConfigYAML(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config yaml: %w", err)
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadConfig loads and parses a configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg, err := ParseConfigYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return cfg, nil
}
