package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/lox/blackjackmdp/blackjack"
	"github.com/lox/blackjackmdp/internal/config"
	"github.com/lox/blackjackmdp/internal/fileutil"
	"github.com/lox/blackjackmdp/internal/simulator"
)

type BuildCmd struct{}

func (cmd *BuildCmd) Run(g *Globals, logger zerolog.Logger) error {
	_, m, err := loadModel(g, logger)
	if err != nil {
		return err
	}

	terminal := 0
	for id := 0; id < m.NumStates(); id++ {
		if m.IsTerminal(id) {
			terminal++
		}
	}
	event := logger.Info().Int("states", m.NumStates()).Int("terminal", terminal)
	for _, a := range blackjack.Actions {
		t, err := m.Transition(a)
		if err != nil {
			return err
		}
		rows, cols := t.Dims()
		nonZero := 0
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				if t.At(i, j) != 0 {
					nonZero++
				}
			}
		}
		event = event.Int("non_zero_"+a.String(), nonZero)
	}
	event.Msg("model is valid")
	return nil
}

type ExportCmd struct {
	Out string `help:"Path to write the model JSON" required:"" type:"path"`
}

func (cmd *ExportCmd) Run(g *Globals, logger zerolog.Logger) error {
	_, m, err := loadModel(g, logger)
	if err != nil {
		return err
	}
	if err := fileutil.WriteJSONAtomic(cmd.Out, m.Snapshot(), 0o644); err != nil {
		return fmt.Errorf("write model: %w", err)
	}
	logger.Info().Str("path", cmd.Out).Int("states", m.NumStates()).Msg("model exported")
	return nil
}

type SimulateCmd struct {
	Hands     int    `help:"Number of hands to play (0 uses config)" default:"0"`
	Seed      int64  `help:"Random seed (0 uses config)" default:"0"`
	Parallel  int    `help:"Concurrent hands (0 uses config)" default:"0"`
	DrawBelow int    `help:"Threshold policy: draw while the player total is below this (0 uses config)" default:"0"`
	Policy    string `help:"Policy JSON produced by a solver; overrides the threshold policy" type:"existingfile"`
}

func (cmd *SimulateCmd) Run(g *Globals, logger zerolog.Logger) error {
	cfg, m, err := loadModel(g, logger)
	if err != nil {
		return err
	}

	sc := cfg.Simulation
	if cmd.Hands > 0 {
		sc.Hands = cmd.Hands
	}
	if cmd.Seed != 0 {
		sc.Seed = cmd.Seed
	}
	if cmd.Parallel > 0 {
		sc.Parallel = cmd.Parallel
	}
	if cmd.DrawBelow > 0 {
		sc.DrawBelow = cmd.DrawBelow
	}

	var policy blackjack.Policy = blackjack.ThresholdPolicy{Index: m.Index(), DrawBelow: sc.DrawBelow}
	policyName := fmt.Sprintf("draw-below-%d", sc.DrawBelow)
	if cmd.Policy != "" {
		policy, err = config.LoadPolicy(cmd.Policy, m)
		if err != nil {
			return fmt.Errorf("load policy: %w", err)
		}
		policyName = cmd.Policy
	}

	logger.Info().
		Int("hands", sc.Hands).
		Int64("seed", sc.Seed).
		Int("parallel", sc.Parallel).
		Str("policy", policyName).
		Msg("starting simulation")

	sim, err := simulator.New(m, simulator.Config{
		Hands:    sc.Hands,
		Seed:     sc.Seed,
		Parallel: sc.Parallel,
		Policy:   policy,
		Logger:   simulatorLogger(g.Debug),
	})
	if err != nil {
		return err
	}
	res, err := sim.Run(context.Background())
	if err != nil {
		return err
	}

	stats := res.Stats
	lo, hi := stats.ConfidenceInterval(0.95)
	logger.Info().
		Int("hands", stats.Hands).
		Float64("mean", stats.Mean()).
		Float64("std_dev", stats.StdDev()).
		Float64("ci95_low", lo).
		Float64("ci95_high", hi).
		Float64("avg_steps", stats.AverageSteps()).
		Dur("duration", res.Duration).
		Msg("simulation complete")

	for _, o := range []blackjack.Outcome{
		blackjack.OutcomeBlackjack,
		blackjack.OutcomeWin,
		blackjack.OutcomeDealerBust,
		blackjack.OutcomeLoss,
		blackjack.OutcomePlayerBust,
	} {
		logger.Info().Str("outcome", o.String()).Float64("rate", stats.Rate(o)).Msg("outcome summary")
	}
	return nil
}

type LookupCmd struct {
	ID      int  `help:"State id to describe" default:"-1"`
	Skipped bool `help:"Whether the player has stood"`
	Player  int  `help:"Player total"`
	Dealer  int  `help:"Dealer total"`
}

func (cmd *LookupCmd) Run(g *Globals, logger zerolog.Logger) error {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	idx, err := blackjack.NewStateIndex(cfg.Rules)
	if err != nil {
		return err
	}

	if cmd.ID >= 0 {
		s, err := idx.State(cmd.ID)
		if err != nil {
			return err
		}
		if cmd.ID == blackjack.Start {
			fmt.Fprintf(os.Stdout, "%d\tstart\n", cmd.ID)
			return nil
		}
		fmt.Fprintf(os.Stdout, "%d\t%s\n", cmd.ID, s)
		return nil
	}

	if cmd.Player == 0 || cmd.Dealer == 0 {
		return errors.New("either --id or both --player and --dealer are required")
	}
	s := blackjack.State{Skipped: cmd.Skipped, Player: cmd.Player, Dealer: cmd.Dealer}
	id, err := idx.ID(s)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "%d\t%s\n", id, s)
	return nil
}
