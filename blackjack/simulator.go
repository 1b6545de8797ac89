package blackjack

import (
	"errors"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
)

// Simulator walks a model one sampled transition at a time. It only mutates its
// own current-state pointer; the model is shared read-only.
type Simulator struct {
	model   *Model
	rng     *rand.Rand
	current int
	cdf     []float64
}

// NewSimulator returns a simulator positioned on a freshly dealt hand. All
// sampling draws from rng, so equal seeds replay equal hands.
func NewSimulator(m *Model, rng *rand.Rand) (*Simulator, error) {
	if m == nil {
		return nil, errors.New("nil model")
	}
	if rng == nil {
		return nil, errors.New("nil random source")
	}
	s := &Simulator{
		model: m,
		rng:   rng,
		cdf:   make([]float64, m.NumStates()),
	}
	s.Reset()
	return s, nil
}

// Current returns the id of the current state.
func (s *Simulator) Current() int {
	return s.current
}

// Reset starts a new hand and returns the dealt state.
func (s *Simulator) Reset() int {
	s.current = s.sample(Draw, Start)
	return s.current
}

// Step samples the successor of the current state under a. Standing hands the
// rest of the hand to the dealer: sampling repeats until the hand is over and
// only the final reward is returned. Stepping from a finished hand renews it,
// passing through the start state straight into a new deal.
func (s *Simulator) Step(a Action) (next int, reward float64, done bool) {
	for {
		next = s.sample(a, s.current)
		renewed := next == Start
		if renewed {
			next = s.sample(a, Start)
		}
		s.current = next
		done = s.model.terminal[next]
		if done || renewed || a != Stand {
			return next, s.model.rewards[next], done
		}
	}
}

// sample draws a successor of from by inverse-CDF over T[a][from].
func (s *Simulator) sample(a Action, from int) int {
	row := s.model.row(a, from)
	floats.CumSum(s.cdf, row)
	u := s.rng.Float64()
	for i, c := range s.cdf {
		if c >= u && row[i] > 0 {
			return i
		}
	}
	// Rounding can leave the last cumulative value a hair below u.
	for i := len(row) - 1; i >= 0; i-- {
		if row[i] > 0 {
			return i
		}
	}
	return from
}
