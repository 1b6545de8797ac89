package statistics

import (
	"fmt"
	"math"
	"slices"

	"github.com/lox/blackjackmdp/blackjack"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// HandResult represents the outcome of a single simulated hand
type HandResult struct {
	Reward  float64           // Terminal payout
	Seed    int64             // RNG seed for this hand (for replay)
	Steps   int               // Transitions sampled before the hand ended
	Final   blackjack.State   // Terminal state
	Outcome blackjack.Outcome // How the hand ended
}

// OutcomeStats tracks results that ended a particular way
type OutcomeStats struct {
	Hands     int
	SumReward float64
}

// Statistics aggregates simulated hand results
type Statistics struct {
	Hands     int
	SumReward float64
	Values    []float64 // Every reward, for mean/variance/percentiles
	Steps     int

	Outcomes map[blackjack.Outcome]*OutcomeStats
}

// Add incorporates a new hand result into the statistics
func (s *Statistics) Add(result HandResult) {
	s.Hands++
	s.SumReward += result.Reward
	s.Values = append(s.Values, result.Reward)
	s.Steps += result.Steps

	if s.Outcomes == nil {
		s.Outcomes = make(map[blackjack.Outcome]*OutcomeStats)
	}
	o := s.Outcomes[result.Outcome]
	if o == nil {
		o = &OutcomeStats{}
		s.Outcomes[result.Outcome] = o
	}
	o.Hands++
	o.SumReward += result.Reward
}

// Mean returns the average reward per hand
func (s *Statistics) Mean() float64 {
	if s.Hands == 0 {
		return 0
	}
	return stat.Mean(s.Values, nil)
}

// StdDev returns the sample standard deviation of rewards
func (s *Statistics) StdDev() float64 {
	if s.Hands < 2 {
		return 0
	}
	return stat.StdDev(s.Values, nil)
}

// StdError returns the standard error of the mean
func (s *Statistics) StdError() float64 {
	if s.Hands == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Hands))
}

// ConfidenceInterval returns the two-sided normal-approximation interval for
// the mean at the given level (e.g. 0.95).
func (s *Statistics) ConfidenceInterval(level float64) (float64, float64) {
	mean := s.Mean()
	z := distuv.UnitNormal.Quantile(1 - (1-level)/2)
	margin := z * s.StdError()
	return mean - margin, mean + margin
}

// Percentile returns the value at the given percentile (0.0 to 1.0)
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := slices.Clone(s.Values)
	slices.Sort(sorted)
	return stat.Quantile(p, stat.LinInterp, sorted, nil)
}

// Rate returns the fraction of hands that ended with outcome o
func (s *Statistics) Rate(o blackjack.Outcome) float64 {
	if s.Hands == 0 {
		return 0
	}
	if st := s.Outcomes[o]; st != nil {
		return float64(st.Hands) / float64(s.Hands)
	}
	return 0
}

// AverageSteps returns the mean number of transitions per hand
func (s *Statistics) AverageSteps() float64 {
	if s.Hands == 0 {
		return 0
	}
	return float64(s.Steps) / float64(s.Hands)
}

// Validate performs consistency checks on the aggregated data
func (s *Statistics) Validate() error {
	if s.Hands <= 0 {
		return fmt.Errorf("invalid hands count: %d", s.Hands)
	}
	if len(s.Values) != s.Hands {
		return fmt.Errorf("values array length (%d) does not match hands count (%d)",
			len(s.Values), s.Hands)
	}

	hands := 0
	sum := 0.0
	for o, st := range s.Outcomes {
		if o == blackjack.OutcomeNone {
			return fmt.Errorf("%d hands recorded without a terminal outcome", st.Hands)
		}
		hands += st.Hands
		sum += st.SumReward
	}
	if hands != s.Hands {
		return fmt.Errorf("outcome hands total (%d) does not match total hands (%d)", hands, s.Hands)
	}
	if math.Abs(sum-s.SumReward) > 1e-6 {
		return fmt.Errorf("ledger mismatch: outcomes=%.6f total=%.6f", sum, s.SumReward)
	}
	return nil
}
