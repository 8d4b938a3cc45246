package counting

import (
	"fmt"
	"strconv"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/hand"
)

type deviationKey struct {
	hand   string
	dealer deck.Rank
}

// Query describes the hand a deviation is looked up for.
type Query struct {
	Total    int
	Soft     bool
	Pair     bool
	PairRank deck.Rank
	Dealer   deck.Rank
}

// QueryFor builds the lookup for a player's cards against a dealer up card.
func QueryFor(cards []deck.Card, dealerUp deck.Card) Query {
	q := Query{
		Total:  hand.Value(cards),
		Soft:   hand.IsSoft(cards),
		Dealer: dealerUp.Rank,
	}
	if hand.CanSplit(cards) {
		q.Pair = true
		q.PairRank = hand.PairRank(cards)
	}
	return q
}

// Resolver finds applicable deviations within one strategy set.
type Resolver struct {
	set   StrategySet
	index map[deviationKey]Deviation
}

// NewResolver indexes a strategy set. When two entries share a hand and
// dealer card the first one wins.
func NewResolver(set StrategySet) *Resolver {
	r := &Resolver{
		set:   set,
		index: make(map[deviationKey]Deviation, len(set.Deviations)),
	}
	for _, d := range set.Deviations {
		k := deviationKey{hand: d.Hand, dealer: d.Dealer.Normalize()}
		if _, exists := r.index[k]; !exists {
			r.index[k] = d
		}
	}
	return r
}

// ResolverFor returns a resolver bound to the set locked to the system.
func ResolverFor(id SystemID) (*Resolver, error) {
	set, err := StrategySetFor(id)
	if err != nil {
		return nil, err
	}
	return NewResolver(set), nil
}

// StrategySet returns the set the resolver was built from.
func (r *Resolver) StrategySet() StrategySet {
	return r.set
}

// FindDeviation looks up the deviation for a hand. A pair key is checked
// first, then the soft key for soft hands or the total for hard hands.
func (r *Resolver) FindDeviation(q Query) (Deviation, bool) {
	dealer := q.Dealer.Normalize()

	if q.Pair {
		rank := q.PairRank.Normalize().String()
		if d, ok := r.index[deviationKey{hand: rank + "," + rank, dealer: dealer}]; ok {
			return d, true
		}
	}

	var key string
	if q.Soft {
		n := q.Total - 11
		if n < 1 {
			return Deviation{}, false
		}
		key = fmt.Sprintf("A%d", n)
	} else {
		key = strconv.Itoa(q.Total)
	}

	d, ok := r.index[deviationKey{hand: key, dealer: dealer}]
	return d, ok
}

// Deviations returns every playing deviation in the set, excluding the
// insurance entry.
func (r *Resolver) Deviations() []Deviation {
	var out []Deviation
	for _, d := range r.set.Deviations {
		if d.Hand != InsuranceHand {
			out = append(out, d)
		}
	}
	return out
}

// DeviationCount is len(Deviations()).
func (r *Resolver) DeviationCount() int {
	return len(r.Deviations())
}

// ShouldDeviate applies the threshold rule: negative thresholds trigger at
// or below, others at or above.
func ShouldDeviate(d Deviation, effectiveCount float64) bool {
	if d.Threshold < 0 {
		return effectiveCount <= d.Threshold
	}
	return effectiveCount >= d.Threshold
}

// ShouldTakeInsurance reports whether the count has reached the system's
// insurance index.
func ShouldTakeInsurance(effectiveCount, insuranceIndex float64) bool {
	return effectiveCount >= insuranceIndex
}
