package main

import (
	"fmt"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"

	"github.com/lox/blackjackmdp/blackjack"
	"github.com/lox/blackjackmdp/internal/config"
)

// version is set by ldflags during build
var version = "dev"

// Globals are flags shared by every command.
type Globals struct {
	Config string `help:"Path to an .hcl or .toml config file (missing file uses defaults)" type:"path" default:"blackjack.hcl"`
	Debug  bool   `help:"Enable debug logging"`
}

type CLI struct {
	Globals

	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Build    BuildCmd         `cmd:"" help:"Build the MDP and check every transition row"`
	Export   ExportCmd        `cmd:"" help:"Write transitions, rewards and the state index as JSON"`
	Simulate SimulateCmd      `cmd:"" help:"Play hands against the model under a policy"`
	Lookup   LookupCmd        `cmd:"" help:"Translate between state ids and (skipped, player, dealer) triples"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("blackjack-mdp"),
		kong.Description("Blackjack as a Markov decision process"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)

	logger := setupLogger(cli.Debug)
	if err := ctx.Run(&cli.Globals, logger); err != nil {
		logger.Fatal().Err(err).Str("command", ctx.Command()).Msg("command failed")
	}
}

// loadModel resolves configuration and builds the model it describes.
func loadModel(g *Globals, logger zerolog.Logger) (*config.Config, *blackjack.Model, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	m, err := blackjack.Build(cfg.Rules, blackjack.WithLogger(logger))
	if err != nil {
		return nil, nil, fmt.Errorf("build model: %w", err)
	}
	return cfg, m, nil
}
