package blackjack

import "fmt"

// Outcome classifies how a hand ended.
type Outcome uint8

const (
	OutcomeNone Outcome = iota
	OutcomePlayerBust
	OutcomeLoss
	OutcomeBlackjack
	OutcomeWin
	OutcomeDealerBust
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "none"
	case OutcomePlayerBust:
		return "player_bust"
	case OutcomeLoss:
		return "loss"
	case OutcomeBlackjack:
		return "blackjack"
	case OutcomeWin:
		return "win"
	case OutcomeDealerBust:
		return "dealer_bust"
	default:
		return "unknown"
	}
}

// Payout is the reward paid for an outcome.
func (o Outcome) Payout() float64 {
	switch o {
	case OutcomePlayerBust, OutcomeLoss:
		return -1
	case OutcomeBlackjack:
		return 1.5
	case OutcomeWin, OutcomeDealerBust:
		return 1
	default:
		return 0
	}
}

// Classify returns the outcome of s, or OutcomeNone while the hand is still
// running. Equal totals count as a loss; there is no push.
func (r Rules) Classify(s State) (Outcome, error) {
	bj := r.Blackjack
	switch {
	case !r.IsGameOver(s):
		return OutcomeNone, nil
	case s.Player > bj:
		return OutcomePlayerBust, nil
	case s.Player <= s.Dealer && s.Dealer <= bj:
		return OutcomeLoss, nil
	case s.Player == bj && s.Dealer < bj:
		return OutcomeBlackjack, nil
	case s.Dealer > bj:
		return OutcomeDealerBust, nil
	case s.Player > s.Dealer:
		return OutcomeWin, nil
	}
	return OutcomeNone, fmt.Errorf("%w for state %s", ErrUndefinedReward, s)
}

// Reward returns the terminal payout of s and 0 for a running hand.
func (r Rules) Reward(s State) (float64, error) {
	o, err := r.Classify(s)
	if err != nil {
		return 0, err
	}
	return o.Payout(), nil
}
