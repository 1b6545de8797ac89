package blackjack

// IsGameOver reports whether a hand in state s is finished: the player busted,
// or the player stood and the dealer either reached the stand total or busted.
// A player bust ends the hand whether or not the player stood.
func (r Rules) IsGameOver(s State) bool {
	switch {
	case s.Skipped && s.Dealer >= r.DealerStand:
		return true
	case s.Skipped && s.Dealer > r.Blackjack:
		return true
	case s.Player > r.Blackjack:
		return true
	}
	return false
}

type builder struct {
	rules Rules
	index *StateIndex
	draws *drawTable
}

// probability computes T[a][from][to]. Rules are checked in priority order;
// anything not explicitly allowed is 0.
func (b *builder) probability(a Action, from, to int) (float64, error) {
	if from == to {
		return 0, nil
	}

	next := b.index.at(to)
	if from == Start {
		if to == Start || next.Skipped {
			return 0, nil
		}
		dealer, err := b.draws.probability(0, next.Dealer, b.rules.DealerStartCards)
		if err != nil {
			return 0, err
		}
		player, err := b.draws.probability(0, next.Player, b.rules.PlayerStartCards)
		if err != nil {
			return 0, err
		}
		return dealer * player, nil
	}

	now := b.index.at(from)
	if b.rules.IsGameOver(now) {
		if to == Start {
			return 1, nil
		}
		return 0, nil
	}
	if to == Start {
		return 0, nil
	}

	// Standing is one way and freezes the player total, whether chosen now or earlier.
	if a == Stand || now.Skipped {
		if !next.Skipped || next.Player != now.Player {
			return 0, nil
		}
	}
	if a == Draw && !now.Skipped && next.Skipped {
		return 0, nil
	}

	// Player and dealer never draw simultaneously.
	if now.Player != next.Player && now.Dealer != next.Dealer {
		return 0, nil
	}

	if a == Draw && !now.Skipped {
		if next.Dealer != now.Dealer {
			return 0, nil
		}
		return b.draws.probability(now.Player, next.Player, 1)
	}

	if now.Dealer >= b.rules.DealerStand {
		if next.Dealer == now.Dealer {
			return 1, nil
		}
		return 0, nil
	}
	return b.draws.probability(now.Dealer, next.Dealer, 1)
}
