// Package blackjack builds a simplified blackjack game as a discrete-time Markov
// decision process. Build enumerates every (skipped, player, dealer) state,
// computes the transition tensor T[action][state][next] and the terminal reward
// vector R, and checks that every row of T is a probability distribution. The
// result is what policy iteration, value iteration or Q-learning solvers consume.
package blackjack

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// stochasticTolerance bounds how far a transition row may drift from 1.
const stochasticTolerance = 1e-10

// Model is an immutable blackjack MDP. It is safe for concurrent readers.
type Model struct {
	rules       Rules
	index       *StateIndex
	transitions [NumActions]*mat.Dense
	rewards     []float64
	outcomes    []Outcome
	terminal    []bool
}

// Option configures Build.
type Option func(*buildOptions)

type buildOptions struct {
	logger zerolog.Logger
}

// WithLogger routes build diagnostics to logger. Build is silent by default.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *buildOptions) {
		o.logger = logger
	}
}

// Build enumerates the state space for rules and computes the transition tensor
// and reward vector. It fails if any transition row is not stochastic or any
// terminal state has no defined payout; such a model must not be used.
func Build(rules Rules, opts ...Option) (*Model, error) {
	o := buildOptions{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rules: %w", err)
	}
	rules = rules.clone()

	b := &builder{
		rules: rules,
		index: newStateIndex(rules),
		draws: newDrawTable(rules),
	}
	n := b.index.Len()
	o.logger.Debug().
		Ints("deck", rules.Deck).
		Int("blackjack", rules.Blackjack).
		Int("dealer_stand", rules.DealerStand).
		Int("states", n).
		Msg("enumerated state space")

	m := &Model{
		rules:    rules,
		index:    b.index,
		rewards:  make([]float64, n),
		outcomes: make([]Outcome, n),
		terminal: make([]bool, n),
	}

	for _, a := range Actions {
		t := mat.NewDense(n, n, nil)
		nonZero := 0
		for from := 0; from < n; from++ {
			for to := 0; to < n; to++ {
				p, err := b.probability(a, from, to)
				if err != nil {
					return nil, fmt.Errorf("transition %s %d->%d: %w", a, from, to, err)
				}
				if p != 0 {
					t.Set(from, to, p)
					nonZero++
				}
			}
		}
		if err := checkStochastic(a, t); err != nil {
			return nil, err
		}
		m.transitions[a] = t
		o.logger.Debug().Str("action", a.String()).Int("non_zero", nonZero).Msg("built transitions")
	}

	terminals := 0
	for id := 0; id < n; id++ {
		s := b.index.at(id)
		if id != Start && rules.IsGameOver(s) {
			m.terminal[id] = true
			terminals++
		}
		out, err := rules.Classify(s)
		if err != nil {
			return nil, err
		}
		m.outcomes[id] = out
		m.rewards[id] = out.Payout()
	}
	o.logger.Debug().Int("terminal", terminals).Msg("built rewards")

	return m, nil
}

func checkStochastic(a Action, t *mat.Dense) error {
	rows, _ := t.Dims()
	for i := 0; i < rows; i++ {
		sum := floats.Sum(t.RawRowView(i))
		if math.Abs(sum-1) > stochasticTolerance {
			return fmt.Errorf("%w: action %s state %d sums to %.12f", ErrNotStochastic, a, i, sum)
		}
	}
	return nil
}

// Rules returns a copy of the rules the model was built from.
func (m *Model) Rules() Rules {
	return m.rules.clone()
}

// Index returns the state index.
func (m *Model) Index() *StateIndex {
	return m.index
}

// NumStates returns the number of states including the start state.
func (m *Model) NumStates() int {
	return m.index.Len()
}

// Transition returns a read-only view of the |S|x|S| transition matrix for a.
func (m *Model) Transition(a Action) (mat.Matrix, error) {
	if !a.valid() {
		return nil, fmt.Errorf("%d: %w", a, ErrUnknownAction)
	}
	return matrixView{m.transitions[a]}, nil
}

// matrixView exposes only the mat.Matrix methods of the wrapped matrix.
type matrixView struct {
	d *mat.Dense
}

func (v matrixView) Dims() (r, c int) { return v.d.Dims() }

func (v matrixView) At(i, j int) float64 { return v.d.At(i, j) }

func (v matrixView) T() mat.Matrix { return mat.Transpose{Matrix: v} }

// Probability returns T[a][from][to].
//
// Probability, Reward, Outcome and IsTerminal index directly and panic on an
// id outside [0, NumStates()) or an unknown action. Unchecked input goes
// through Index().State or ParseAction first.
func (m *Model) Probability(a Action, from, to int) float64 {
	return m.transitions[a].At(from, to)
}

// Reward returns R[id].
func (m *Model) Reward(id int) float64 {
	return m.rewards[id]
}

// Outcome returns how the hand ended in state id, or OutcomeNone.
func (m *Model) Outcome(id int) Outcome {
	return m.outcomes[id]
}

// IsTerminal reports whether id is a game-over state.
func (m *Model) IsTerminal(id int) bool {
	return m.terminal[id]
}

// Matrices returns deep copies of T laid out as [action][state][next] and of R.
func (m *Model) Matrices() ([][][]float64, []float64) {
	n := m.index.Len()
	t := make([][][]float64, NumActions)
	for a := range t {
		t[a] = make([][]float64, n)
		for s := 0; s < n; s++ {
			t[a][s] = append([]float64(nil), m.transitions[a].RawRowView(s)...)
		}
	}
	r := append([]float64(nil), m.rewards...)
	return t, r
}

func (m *Model) row(a Action, id int) []float64 {
	return m.transitions[a].RawRowView(id)
}
