package blackjack_test

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/lox/blackjackmdp/blackjack"
)

var defaultModel = sync.OnceValues(func() (*blackjack.Model, error) {
	return blackjack.Build(blackjack.DefaultRules())
})

func buildDefault(t *testing.T) *blackjack.Model {
	t.Helper()
	m, err := defaultModel()
	require.NoError(t, err)
	return m
}

func stateOf(t *testing.T, m *blackjack.Model, id int) blackjack.State {
	t.Helper()
	s, err := m.Index().State(id)
	require.NoError(t, err)
	return s
}

func TestBuildStateCount(t *testing.T) {
	m := buildDefault(t)
	// Start plus 2 skip flags x players 4..22 x dealers 2..22.
	assert.Equal(t, 1+2*19*21, m.NumStates())
}

func TestBuildRejectsInvalidRules(t *testing.T) {
	rules := blackjack.DefaultRules()
	rules.Deck = nil
	_, err := blackjack.Build(rules)
	require.ErrorIs(t, err, blackjack.ErrEmptyDeck)
}

func TestBuildCopiesDeck(t *testing.T) {
	rules := blackjack.DefaultRules()
	m, err := blackjack.Build(rules)
	require.NoError(t, err)

	rules.Deck[0] = 99
	assert.Equal(t, 2, m.Rules().Deck[0])
}

func TestTransitionsRowStochastic(t *testing.T) {
	for _, rules := range []blackjack.Rules{
		blackjack.DefaultRules(),
		{Deck: []int{10}, Blackjack: 21, DealerStand: 17, PlayerStartCards: 2, DealerStartCards: 1},
		{Deck: []int{1, 2, 3}, Blackjack: 9, DealerStand: 6, PlayerStartCards: 3, DealerStartCards: 2},
	} {
		m, err := blackjack.Build(rules)
		require.NoError(t, err, "deck %v", rules.Deck)

		n := m.NumStates()
		for _, a := range blackjack.Actions {
			for s := 0; s < n; s++ {
				sum := 0.0
				for next := 0; next < n; next++ {
					sum += m.Probability(a, s, next)
				}
				require.InDelta(t, 1.0, sum, 1e-10, "deck %v action %s state %d", rules.Deck, a, s)
			}
		}
	}
}

func TestTransitionsStructure(t *testing.T) {
	m := buildDefault(t)
	rules := m.Rules()
	n := m.NumStates()

	for _, a := range blackjack.Actions {
		for s := 0; s < n; s++ {
			now := stateOf(t, m, s)
			assert.Zero(t, m.Probability(a, s, s), "self transition %s %d", a, s)

			toStart := m.Probability(a, s, blackjack.Start)
			if s != blackjack.Start && rules.IsGameOver(now) {
				require.Equal(t, 1.0, toStart, "terminal %s must renew", now)
			} else {
				require.Zero(t, toStart, "non-terminal %d reached start", s)
			}

			for next := 1; next < n; next++ {
				p := m.Probability(a, s, next)
				if p == 0 {
					continue
				}
				then := stateOf(t, m, next)
				if s == blackjack.Start {
					require.False(t, then.Skipped, "deal produced skipped state %s", then)
					continue
				}
				if now.Skipped {
					require.True(t, then.Skipped, "%s -> %s unskipped", now, then)
					require.Equal(t, now.Player, then.Player, "%s -> %s changed player", now, then)
				}
				require.False(t, now.Player != then.Player && now.Dealer != then.Dealer,
					"%s -> %s moved both totals", now, then)
			}
		}
	}
}

func TestTransitionsActionRules(t *testing.T) {
	m := buildDefault(t)
	idx := m.Index()
	id := func(skipped bool, player, dealer int) int {
		t.Helper()
		v, err := idx.ID(blackjack.State{Skipped: skipped, Player: player, Dealer: dealer})
		require.NoError(t, err)
		return v
	}

	from := id(false, 12, 6)

	// Drawing moves only the player total, one card at a time. Four 10s and the
	// 11 all bust to the over sentinel.
	assert.InDelta(t, 5.0/13.0, m.Probability(blackjack.Draw, from, id(false, 22, 6)), 1e-12)
	assert.InDelta(t, 1.0/13.0, m.Probability(blackjack.Draw, from, id(false, 14, 6)), 1e-12)
	assert.Zero(t, m.Probability(blackjack.Draw, from, id(true, 12, 8)))

	// Standing hands the next card to the dealer.
	assert.InDelta(t, 1.0/13.0, m.Probability(blackjack.Stand, from, id(true, 12, 8)), 1e-12)
	assert.InDelta(t, 4.0/13.0, m.Probability(blackjack.Stand, from, id(true, 12, 16)), 1e-12)
	assert.Zero(t, m.Probability(blackjack.Stand, from, id(false, 14, 6)))

	// Once skipped, draw requests are ignored and the dealer keeps drawing.
	skipped := id(true, 12, 10)
	for next := 0; next < m.NumStates(); next++ {
		assert.Equal(t, m.Probability(blackjack.Stand, skipped, next), m.Probability(blackjack.Draw, skipped, next))
	}

	// A dealer already at the stand total stays put when the player stands.
	assert.Equal(t, 1.0, m.Probability(blackjack.Stand, id(false, 12, 18), id(true, 12, 18)))
}

func TestDealProbabilities(t *testing.T) {
	m := buildDefault(t)
	rules := m.Rules()

	for next := 1; next < m.NumStates(); next++ {
		s := stateOf(t, m, next)
		if s.Skipped {
			continue
		}
		dealer, err := blackjack.DrawProbability(rules, 0, s.Dealer, rules.DealerStartCards)
		require.NoError(t, err)
		player, err := blackjack.DrawProbability(rules, 0, s.Player, rules.PlayerStartCards)
		require.NoError(t, err)
		for _, a := range blackjack.Actions {
			assert.InDelta(t, dealer*player, m.Probability(a, blackjack.Start, next), 1e-15)
		}
	}
}

func TestRewardsVector(t *testing.T) {
	m := buildDefault(t)
	rules := m.Rules()
	allowed := map[float64]bool{-1: true, 0: true, 1: true, 1.5: true}

	for id := 0; id < m.NumStates(); id++ {
		s := stateOf(t, m, id)
		r := m.Reward(id)
		require.True(t, allowed[r], "reward %v for %s", r, s)
		if !m.IsTerminal(id) {
			require.Zero(t, r, "non-terminal %s pays", s)
			require.Equal(t, blackjack.OutcomeNone, m.Outcome(id))
			continue
		}
		want, err := rules.Reward(s)
		require.NoError(t, err)
		require.Equal(t, want, r)
	}

	id, err := m.Index().ID(blackjack.State{Skipped: true, Player: 21, Dealer: 19})
	require.NoError(t, err)
	assert.Equal(t, 1.5, m.Reward(id))
	assert.False(t, m.IsTerminal(blackjack.Start))
}

func TestMatricesAreCopies(t *testing.T) {
	m, err := blackjack.Build(blackjack.DefaultRules())
	require.NoError(t, err)

	tr, r := m.Matrices()
	require.Len(t, tr, blackjack.NumActions)
	require.Len(t, tr[0], m.NumStates())
	require.Len(t, r, m.NumStates())

	before := m.Probability(blackjack.Draw, blackjack.Start, 1)
	tr[blackjack.Draw][blackjack.Start][1] = math.Pi
	r[1] = math.Pi
	assert.Equal(t, before, m.Probability(blackjack.Draw, blackjack.Start, 1))
	assert.NotEqual(t, math.Pi, m.Reward(1))

	tm, err := m.Transition(blackjack.Stand)
	require.NoError(t, err)
	rows, cols := tm.Dims()
	assert.Equal(t, m.NumStates(), rows)
	assert.Equal(t, m.NumStates(), cols)

	_, err = m.Transition(blackjack.Action(7))
	require.ErrorIs(t, err, blackjack.ErrUnknownAction)
}

func TestTransitionIsReadOnly(t *testing.T) {
	m, err := blackjack.Build(blackjack.DefaultRules())
	require.NoError(t, err)

	tm, err := m.Transition(blackjack.Draw)
	require.NoError(t, err)
	_, ok := tm.(*mat.Dense)
	assert.False(t, ok, "transition matrix must not expose its backing store")
	_, ok = tm.(mat.Mutable)
	assert.False(t, ok)

	assert.Equal(t, m.Probability(blackjack.Draw, blackjack.Start, 1), tm.At(blackjack.Start, 1))
	assert.Equal(t, tm.At(blackjack.Start, 1), tm.T().At(1, blackjack.Start))
}

func TestAccessorsPanicOutOfRange(t *testing.T) {
	m := buildDefault(t)
	n := m.NumStates()

	assert.Panics(t, func() { m.Reward(n) })
	assert.Panics(t, func() { m.Outcome(-1) })
	assert.Panics(t, func() { m.IsTerminal(n) })
	assert.Panics(t, func() { m.Probability(blackjack.Action(7), 0, 0) })
	assert.Panics(t, func() { m.Probability(blackjack.Draw, 0, n) })
}

func TestSnapshot(t *testing.T) {
	m := buildDefault(t)
	snap := m.Snapshot()

	assert.Equal(t, blackjack.SnapshotVersion, snap.Version)
	assert.Equal(t, []string{"stand", "draw"}, snap.Actions)
	assert.Len(t, snap.States, m.NumStates())
	assert.Len(t, snap.Transitions, blackjack.NumActions)
	assert.Equal(t, m.Rules(), snap.Rules)
}
