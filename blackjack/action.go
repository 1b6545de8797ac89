package blackjack

import "fmt"

// Action is the player's choice in a state.
type Action uint8

const (
	Stand Action = iota
	Draw
)

// NumActions is the size of the action dimension of the transition tensor.
const NumActions = 2

// Actions lists every action in tensor order.
var Actions = [NumActions]Action{Stand, Draw}

func (a Action) String() string {
	switch a {
	case Stand:
		return "stand"
	case Draw:
		return "draw"
	default:
		return "unknown"
	}
}

// ParseAction converts an integer action code, as produced by external solvers,
// into an Action.
func ParseAction(v int) (Action, error) {
	if v < 0 || v >= NumActions {
		return 0, fmt.Errorf("action %d: %w", v, ErrUnknownAction)
	}
	return Action(v), nil
}

func (a Action) valid() bool {
	return a < NumActions
}
