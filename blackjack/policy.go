package blackjack

import "fmt"

// Policy picks an action for a state id.
type Policy interface {
	Action(id int) Action
}

// PolicyVector holds one action per state id, the shape MDP solvers return.
type PolicyVector []Action

// NewPolicyVector converts integer action codes into a policy for m.
func NewPolicyVector(m *Model, codes []int) (PolicyVector, error) {
	if len(codes) != m.NumStates() {
		return nil, fmt.Errorf("policy has %d entries, model has %d states", len(codes), m.NumStates())
	}
	p := make(PolicyVector, len(codes))
	for id, c := range codes {
		a, err := ParseAction(c)
		if err != nil {
			return nil, fmt.Errorf("state %d: %w", id, err)
		}
		p[id] = a
	}
	return p, nil
}

func (p PolicyVector) Action(id int) Action {
	return p[id]
}

// Decision pairs a state with the action a policy takes there.
type Decision struct {
	ID     int
	State  State
	Action Action
}

// Describe translates the vector into game terms, skipping the start state.
func (p PolicyVector) Describe(index *StateIndex) ([]Decision, error) {
	if len(p) != index.Len() {
		return nil, fmt.Errorf("policy has %d entries, index has %d states", len(p), index.Len())
	}
	out := make([]Decision, 0, len(p)-1)
	for id := 1; id < len(p); id++ {
		out = append(out, Decision{ID: id, State: index.at(id), Action: p[id]})
	}
	return out, nil
}

// ThresholdPolicy draws while the player has not stood and their total is below
// DrawBelow. With DrawBelow equal to the dealer stand total it mirrors the house.
type ThresholdPolicy struct {
	Index     *StateIndex
	DrawBelow int
}

func (p ThresholdPolicy) Action(id int) Action {
	s := p.Index.at(id)
	if !s.Skipped && s.Player < p.DrawBelow {
		return Draw
	}
	return Stand
}
