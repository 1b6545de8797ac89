package blackjack

import "fmt"

// drawTable caches, per draw count, the distribution of raw card sums. Entry
// dist[k][s] is the probability that k independent draws from the deck sum to s.
type drawTable struct {
	over int
	deck []int
	dist map[int][]float64
}

func newDrawTable(r Rules) *drawTable {
	return &drawTable{
		over: r.Over(),
		deck: r.Deck,
		dist: make(map[int][]float64),
	}
}

// sums returns the k-draw sum distribution, convolving the single-card
// distribution k times. This matches enumerating all |deck|^k ordered draws.
func (t *drawTable) sums(k int) ([]float64, error) {
	if len(t.deck) == 0 {
		return nil, ErrEmptyDeck
	}
	if k < 1 {
		return nil, fmt.Errorf("k=%d: %w", k, ErrInvalidDrawCount)
	}
	if d, ok := t.dist[k]; ok {
		return d, nil
	}
	for i, c := range t.deck {
		if c < 1 {
			return nil, fmt.Errorf("deck[%d] = %d: %w", i, c, ErrInvalidCard)
		}
	}

	single := singleDraw(t.deck)
	d := single
	for i := 1; i < k; i++ {
		d = convolve(d, single)
	}
	t.dist[k] = d
	return d, nil
}

// probability is the chance that k draws move current to exactly target once the
// result is capped at the over sentinel.
func (t *drawTable) probability(current, target, k int) (float64, error) {
	d, err := t.sums(k)
	if err != nil {
		return 0, err
	}
	if target < current || target > t.over {
		return 0, nil
	}

	if target < t.over {
		s := target - current
		if s >= len(d) {
			return 0, nil
		}
		return d[s], nil
	}

	// Every raw sum reaching the cap lands on the sentinel.
	p := 0.0
	for s := max(t.over-current, 0); s < len(d); s++ {
		p += d[s]
	}
	return p, nil
}

func singleDraw(deck []int) []float64 {
	hi := 0
	for _, c := range deck {
		hi = max(hi, c)
	}
	d := make([]float64, hi+1)
	w := 1 / float64(len(deck))
	for _, c := range deck {
		d[c] += w
	}
	return d
}

func convolve(a, b []float64) []float64 {
	out := make([]float64, len(a)+len(b)-1)
	for i, pa := range a {
		if pa == 0 {
			continue
		}
		for j, pb := range b {
			out[i+j] += pa * pb
		}
	}
	return out
}

// DrawProbability returns the probability that drawing k cards with replacement
// from the rules' deck takes a running total from current to target, with totals
// above the blackjack threshold capped to the over sentinel.
func DrawProbability(r Rules, current, target, k int) (float64, error) {
	if r.Blackjack < 1 {
		return 0, fmt.Errorf("blackjack %d: %w", r.Blackjack, ErrInvalidThreshold)
	}
	return newDrawTable(r).probability(current, target, k)
}
