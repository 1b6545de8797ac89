package statistics

import (
	"math"
	"testing"

	"github.com/lox/blackjackmdp/blackjack"
)

func TestStatistics_Empty(t *testing.T) {
	stats := &Statistics{}

	if stats.Mean() != 0 {
		t.Errorf("Expected mean of 0 for empty stats, got %f", stats.Mean())
	}
	if stats.StdDev() != 0 {
		t.Errorf("Expected stddev of 0 for empty stats, got %f", stats.StdDev())
	}
	if stats.StdError() != 0 {
		t.Errorf("Expected stderr of 0 for empty stats, got %f", stats.StdError())
	}
	if stats.Percentile(0.5) != 0 {
		t.Errorf("Expected percentile of 0 for empty stats, got %f", stats.Percentile(0.5))
	}
	if stats.Rate(blackjack.OutcomeWin) != 0 {
		t.Errorf("Expected zero win rate for empty stats")
	}
	if err := stats.Validate(); err == nil {
		t.Error("Expected validation error for empty stats")
	}
}

func TestStatistics_MixedOutcomes(t *testing.T) {
	stats := &Statistics{}
	results := []HandResult{
		{Reward: 1, Steps: 3, Outcome: blackjack.OutcomeWin},
		{Reward: -1, Steps: 2, Outcome: blackjack.OutcomePlayerBust},
		{Reward: 1.5, Steps: 4, Outcome: blackjack.OutcomeBlackjack},
		{Reward: -1, Steps: 3, Outcome: blackjack.OutcomeLoss},
		{Reward: 1, Steps: 5, Outcome: blackjack.OutcomeDealerBust},
		{Reward: -1, Steps: 1, Outcome: blackjack.OutcomePlayerBust},
	}
	for _, r := range results {
		stats.Add(r)
	}

	if stats.Hands != 6 {
		t.Fatalf("Expected 6 hands, got %d", stats.Hands)
	}
	if math.Abs(stats.Mean()-0.5/6) > 1e-12 {
		t.Errorf("Expected mean %f, got %f", 0.5/6, stats.Mean())
	}
	if stats.AverageSteps() != 3 {
		t.Errorf("Expected 3 steps per hand, got %f", stats.AverageSteps())
	}
	if got := stats.Rate(blackjack.OutcomePlayerBust); math.Abs(got-2.0/6) > 1e-12 {
		t.Errorf("Expected bust rate 1/3, got %f", got)
	}
	if got := stats.Percentile(0); got != -1 {
		t.Errorf("Expected minimum -1, got %f", got)
	}
	if got := stats.Percentile(1); got != 1.5 {
		t.Errorf("Expected maximum 1.5, got %f", got)
	}

	// Sample variance computed by hand.
	mean := stats.Mean()
	ss := 0.0
	for _, r := range results {
		ss += (r.Reward - mean) * (r.Reward - mean)
	}
	want := math.Sqrt(ss / 5)
	if math.Abs(stats.StdDev()-want) > 1e-12 {
		t.Errorf("Expected stddev %f, got %f", want, stats.StdDev())
	}

	lo, hi := stats.ConfidenceInterval(0.95)
	margin := 1.959963984540054 * want / math.Sqrt(6)
	if math.Abs(lo-(mean-margin)) > 1e-9 || math.Abs(hi-(mean+margin)) > 1e-9 {
		t.Errorf("Unexpected 95%% interval [%f, %f]", lo, hi)
	}

	if err := stats.Validate(); err != nil {
		t.Errorf("Expected valid statistics, got %v", err)
	}
}

func TestStatistics_ValidateRejectsRunningHands(t *testing.T) {
	stats := &Statistics{}
	stats.Add(HandResult{Reward: 0, Outcome: blackjack.OutcomeNone})

	if err := stats.Validate(); err == nil {
		t.Error("Expected validation to reject a hand without an outcome")
	}
}

func TestStatistics_ValidateLedger(t *testing.T) {
	stats := &Statistics{}
	stats.Add(HandResult{Reward: 1, Outcome: blackjack.OutcomeWin})
	stats.SumReward = 3

	if err := stats.Validate(); err == nil {
		t.Error("Expected ledger mismatch")
	}
}
