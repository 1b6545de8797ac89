package blackjack

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrEmptyDeck        = errors.New("deck must contain at least one card")
	ErrInvalidCard      = errors.New("card values must be >= 1")
	ErrInvalidDrawCount = errors.New("draw count must be >= 1")
	ErrInvalidThreshold = errors.New("blackjack threshold must be >= 1")
	ErrNotStochastic    = errors.New("transition row does not sum to 1")
	ErrUndefinedReward  = errors.New("undefined reward")
	ErrUnknownState     = errors.New("unknown state")
	ErrUnknownAction    = errors.New("unknown action")
)

// Rules fixes the deck and house parameters a model is built from. A Rules value
// is never mutated after Build; Build works on its own copy of the deck.
type Rules struct {
	// Deck lists card values; draws are uniform over the entries, so repeated
	// values are weighted by multiplicity.
	Deck []int `json:"deck"`

	// Blackjack is the bust threshold. Totals above it collapse to Blackjack+1.
	Blackjack int `json:"blackjack"`

	// DealerStand is the total at which the dealer must stop drawing.
	DealerStand int `json:"dealer_stand"`

	PlayerStartCards int `json:"player_start_cards"`
	DealerStartCards int `json:"dealer_start_cards"`
}

// DefaultRules returns the classic single-ace-high deck with the dealer standing on 17.
func DefaultRules() Rules {
	return Rules{
		Deck:             []int{2, 3, 4, 5, 6, 7, 8, 9, 10, 10, 10, 10, 11},
		Blackjack:        21,
		DealerStand:      17,
		PlayerStartCards: 2,
		DealerStartCards: 1,
	}
}

// Validate ensures the rules describe a model that can be built.
func (r Rules) Validate() error {
	if len(r.Deck) == 0 {
		return ErrEmptyDeck
	}
	for i, c := range r.Deck {
		if c < 1 {
			return fmt.Errorf("deck[%d] = %d: %w", i, c, ErrInvalidCard)
		}
	}
	if r.Blackjack < 1 {
		return fmt.Errorf("blackjack %d: %w", r.Blackjack, ErrInvalidThreshold)
	}
	if r.DealerStand < 1 || r.DealerStand > r.Blackjack {
		return fmt.Errorf("dealer stand must be in [1, %d], got %d", r.Blackjack, r.DealerStand)
	}
	if r.PlayerStartCards < 1 {
		return fmt.Errorf("player start cards: %w", ErrInvalidDrawCount)
	}
	if r.DealerStartCards < 1 {
		return fmt.Errorf("dealer start cards: %w", ErrInvalidDrawCount)
	}
	return nil
}

// Over is the capped sentinel total for anything beyond the blackjack threshold.
func (r Rules) Over() int {
	return r.Blackjack + 1
}

// MinCard returns the smallest card value in the deck.
func (r Rules) MinCard() int {
	return slices.Min(r.Deck)
}

func (r Rules) clone() Rules {
	r.Deck = slices.Clone(r.Deck)
	return r
}
