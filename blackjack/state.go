package blackjack

import "fmt"

// Start is the id of the pre-deal state. It is the entry point of every hand and
// the only successor of a terminal state.
const Start = 0

// State is a (skipped, player, dealer) triple. Totals above the blackjack
// threshold are stored as the over sentinel.
type State struct {
	Skipped bool `json:"skipped"`
	Player  int  `json:"player"`
	Dealer  int  `json:"dealer"`
}

func (s State) String() string {
	skipped := 0
	if s.Skipped {
		skipped = 1
	}
	return fmt.Sprintf("(%d, %d, %d)", skipped, s.Player, s.Dealer)
}

// StateIndex is the fixed bijection between state ids and triples. Id 0 is the
// start state; the rest enumerate skipped x player x dealer in that order, with
// the dealer total varying fastest.
type StateIndex struct {
	playerMin int
	dealerMin int
	over      int
	states    []State
}

// NewStateIndex enumerates the state space for the given rules.
func NewStateIndex(r Rules) (*StateIndex, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return newStateIndex(r), nil
}

func newStateIndex(r Rules) *StateIndex {
	minCard := r.MinCard()
	idx := &StateIndex{
		playerMin: minCard * r.PlayerStartCards,
		dealerMin: minCard * r.DealerStartCards,
		over:      r.Over(),
	}

	idx.states = append(idx.states, State{})
	for _, skipped := range []bool{false, true} {
		for p := idx.playerMin; p <= idx.over; p++ {
			for d := idx.dealerMin; d <= idx.over; d++ {
				idx.states = append(idx.states, State{Skipped: skipped, Player: p, Dealer: d})
			}
		}
	}
	return idx
}

// Len returns the number of states including the start state.
func (x *StateIndex) Len() int {
	return len(x.states)
}

// State returns the triple for id. The start state reports the zero triple.
func (x *StateIndex) State(id int) (State, error) {
	if id < 0 || id >= len(x.states) {
		return State{}, fmt.Errorf("id %d: %w", id, ErrUnknownState)
	}
	return x.states[id], nil
}

// ID returns the id of a non-start triple.
func (x *StateIndex) ID(s State) (int, error) {
	if s.Player < x.playerMin || s.Player > x.over || s.Dealer < x.dealerMin || s.Dealer > x.over {
		return 0, fmt.Errorf("%s: %w", s, ErrUnknownState)
	}
	players := x.over - x.playerMin + 1
	dealers := x.over - x.dealerMin + 1

	id := 1 + (s.Player-x.playerMin)*dealers + (s.Dealer - x.dealerMin)
	if s.Skipped {
		id += players * dealers
	}
	return id, nil
}

// States returns a copy of every triple in id order.
func (x *StateIndex) States() []State {
	out := make([]State, len(x.states))
	copy(out, x.states)
	return out
}

func (x *StateIndex) at(id int) State {
	return x.states[id]
}
