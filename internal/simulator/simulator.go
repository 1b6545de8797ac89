package simulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/lox/blackjackmdp/blackjack"
	"github.com/lox/blackjackmdp/internal/randutil"
	"github.com/lox/blackjackmdp/internal/statistics"
)

// maxStepsPerHand caps a single hand. Every total only grows within a hand, so
// a correct model finishes far sooner; hitting the cap means a broken model.
const maxStepsPerHand = 256

// Config holds configuration for running simulations
type Config struct {
	Hands    int
	Seed     int64
	Parallel int
	Policy   blackjack.Policy
	Logger   *log.Logger
	Clock    quartz.Clock
}

// Result is the outcome of a simulation run
type Result struct {
	Stats    *statistics.Statistics
	Duration time.Duration
}

// Simulator plays hands against a model under a fixed policy
type Simulator struct {
	model  *blackjack.Model
	config Config
}

// New creates a new simulator with the given configuration
func New(model *blackjack.Model, config Config) (*Simulator, error) {
	if model == nil {
		return nil, errors.New("nil model")
	}
	if config.Policy == nil {
		return nil, errors.New("policy is required")
	}
	if config.Hands <= 0 {
		return nil, fmt.Errorf("hands must be positive (got %d)", config.Hands)
	}
	if config.Parallel <= 0 {
		config.Parallel = 1
	}
	if config.Logger == nil {
		config.Logger = log.New(io.Discard)
	}
	if config.Clock == nil {
		config.Clock = quartz.NewReal()
	}
	return &Simulator{model: model, config: config}, nil
}

// Run plays every hand and aggregates the results. Hands are seeded
// independently, so the statistics do not depend on Parallel.
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	start := s.config.Clock.Now()
	results := make([]statistics.HandResult, s.config.Hands)

	s.config.Logger.Debug("starting simulation",
		"hands", s.config.Hands, "parallel", s.config.Parallel, "seed", s.config.Seed)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Parallel)
	for hand := range results {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := s.playHand(randutil.HandSeed(s.config.Seed, hand))
			if err != nil {
				return fmt.Errorf("hand %d: %w", hand+1, err)
			}
			results[hand] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stats := &statistics.Statistics{}
	for _, r := range results {
		stats.Add(r)
	}
	if err := stats.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}

	duration := s.config.Clock.Since(start)
	s.config.Logger.Info("simulation complete",
		"hands", stats.Hands, "mean", stats.Mean(), "duration", duration)

	return &Result{Stats: stats, Duration: duration}, nil
}

// playHand simulates a single hand from a fresh deal
func (s *Simulator) playHand(seed int64) (statistics.HandResult, error) {
	sim, err := blackjack.NewSimulator(s.model, randutil.New(seed))
	if err != nil {
		return statistics.HandResult{}, err
	}

	id := sim.Current()
	steps := 0
	reward := s.model.Reward(id)
	for !s.model.IsTerminal(id) {
		if steps >= maxStepsPerHand {
			return statistics.HandResult{}, fmt.Errorf("no terminal state after %d steps (seed: %d)", steps, seed)
		}
		id, reward, _ = sim.Step(s.config.Policy.Action(id))
		steps++
	}

	final, err := s.model.Index().State(id)
	if err != nil {
		return statistics.HandResult{}, err
	}
	return statistics.HandResult{
		Reward:  reward,
		Seed:    seed,
		Steps:   steps,
		Final:   final,
		Outcome: s.model.Outcome(id),
	}, nil
}

// RunSimulation is a convenience wrapper that builds and runs a simulator
func RunSimulation(ctx context.Context, model *blackjack.Model, hands int, seed int64, policy blackjack.Policy, logger *log.Logger) (*Result, error) {
	sim, err := New(model, Config{
		Hands:  hands,
		Seed:   seed,
		Policy: policy,
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}
	return sim.Run(ctx)
}
