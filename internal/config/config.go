// Package config loads model rules and simulation settings from HCL or TOML
// files, and policy vectors produced by external solvers.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/blackjackmdp/blackjack"
)

// Config is the resolved configuration with every default applied.
type Config struct {
	Rules      blackjack.Rules
	Simulation SimulationConfig
}

// SimulationConfig controls hand simulation runs.
type SimulationConfig struct {
	Hands     int
	Seed      int64
	Parallel  int
	DrawBelow int
}

// fileConfig mirrors the on-disk layout. Both blocks are optional. A nil
// attribute was absent from the file; anything present, even empty, is kept.
type fileConfig struct {
	Rules      *rulesBlock      `hcl:"rules,block" toml:"rules"`
	Simulation *simulationBlock `hcl:"simulation,block" toml:"simulation"`
}

type rulesBlock struct {
	Deck             *[]int `hcl:"deck,optional" toml:"deck"`
	Blackjack        *int   `hcl:"blackjack,optional" toml:"blackjack"`
	DealerStand      *int   `hcl:"dealer_stand,optional" toml:"dealer_stand"`
	PlayerStartCards *int   `hcl:"player_start_cards,optional" toml:"player_start_cards"`
	DealerStartCards *int   `hcl:"dealer_start_cards,optional" toml:"dealer_start_cards"`
}

type simulationBlock struct {
	Hands     *int   `hcl:"hands,optional" toml:"hands"`
	Seed      *int64 `hcl:"seed,optional" toml:"seed"`
	Parallel  *int   `hcl:"parallel,optional" toml:"parallel"`
	DrawBelow *int   `hcl:"draw_below,optional" toml:"draw_below"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Rules: blackjack.DefaultRules(),
		Simulation: SimulationConfig{
			Hands:     10000,
			Seed:      1,
			Parallel:  1,
			DrawBelow: 17,
		},
	}
}

// Load reads configuration from an .hcl or .toml file. A missing file (or an
// empty path) yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}

	var fc fileConfig
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".hcl":
		parser := hclparse.NewParser()
		file, diags := parser.ParseHCLFile(path)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
		}
		if diags := gohcl.DecodeBody(file.Body, nil, &fc); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
		}
	case ".toml":
		meta, err := toml.DecodeFile(path, &fc)
		if err != nil {
			return nil, fmt.Errorf("failed to decode TOML: %w", err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("unknown TOML keys: %v", undecoded)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}

	return fc.resolve(), nil
}

// resolve applies defaults for absent values
func (fc fileConfig) resolve() *Config {
	cfg := DefaultConfig()

	if r := fc.Rules; r != nil {
		if r.Deck != nil {
			cfg.Rules.Deck = slices.Clone(*r.Deck)
		}
		setIfPresent(&cfg.Rules.Blackjack, r.Blackjack)
		setIfPresent(&cfg.Rules.DealerStand, r.DealerStand)
		setIfPresent(&cfg.Rules.PlayerStartCards, r.PlayerStartCards)
		setIfPresent(&cfg.Rules.DealerStartCards, r.DealerStartCards)
	}

	if s := fc.Simulation; s != nil {
		setIfPresent(&cfg.Simulation.Hands, s.Hands)
		setIfPresent(&cfg.Simulation.Seed, s.Seed)
		setIfPresent(&cfg.Simulation.Parallel, s.Parallel)
		setIfPresent(&cfg.Simulation.DrawBelow, s.DrawBelow)
	}
	return cfg
}

func setIfPresent[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Rules.Validate(); err != nil {
		return fmt.Errorf("rules: %w", err)
	}
	if c.Simulation.Hands <= 0 {
		return fmt.Errorf("simulation hands must be positive, got %d", c.Simulation.Hands)
	}
	if c.Simulation.Parallel <= 0 {
		return fmt.Errorf("simulation parallel must be positive, got %d", c.Simulation.Parallel)
	}
	if c.Simulation.DrawBelow < 0 {
		return fmt.Errorf("simulation draw_below cannot be negative, got %d", c.Simulation.DrawBelow)
	}
	return nil
}
