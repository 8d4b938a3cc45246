package deck

import (
	"errors"
	rand "math/rand/v2"
)

// CardsPerDeck is the size of one standard deck.
const CardsPerDeck = 52

// ErrShoeEmpty is returned when dealing from a shoe with no cards left.
// Callers are expected to check ShouldReshuffle before each round, so
// seeing it means a precondition was skipped.
var ErrShoeEmpty = errors.New("shoe is empty")

// Shoe is a multi-deck draw source. Cards are dealt from the end of the
// remaining slice and moved to the dealt buffer until Reset recombines them.
type Shoe struct {
	cards       []Card
	dealt       []Card
	decks       int
	penetration float64
	rng         *rand.Rand
}

// NewShoe builds and shuffles a shoe of the given number of decks.
// Penetration is the fraction of the shoe dealt before ShouldReshuffle
// reports true.
//
//	// Production - crypto-backed shuffles
//	shoe := deck.NewShoe(randutil.NewCrypto(), 6, 0.75)
//
//	// Testing - deterministic
//	shoe := deck.NewShoe(randutil.New(42), 6, 0.75)
func NewShoe(rng *rand.Rand, decks int, penetration float64) *Shoe {
	if rng == nil {
		panic("rng is required for shoe creation")
	}
	if decks < 1 {
		panic("shoe needs at least one deck")
	}

	s := &Shoe{
		cards:       make([]Card, 0, decks*CardsPerDeck),
		decks:       decks,
		penetration: penetration,
		rng:         rng,
	}
	for d := 0; d < decks; d++ {
		for _, suit := range Suits {
			for _, rank := range Ranks {
				s.cards = append(s.cards, NewCard(suit, rank))
			}
		}
	}
	s.Shuffle()
	return s
}

// NewStackedShoe returns a shoe whose deal order is exactly the given cards
// (the first card is dealt first). It never shuffles until Reset.
func NewStackedShoe(rng *rand.Rand, penetration float64, order []Card) *Shoe {
	if rng == nil {
		panic("rng is required for shoe creation")
	}
	cards := make([]Card, len(order))
	for i, c := range order {
		cards[len(order)-1-i] = c
	}
	decks := (len(order) + CardsPerDeck - 1) / CardsPerDeck
	if decks == 0 {
		decks = 1
	}
	return &Shoe{cards: cards, decks: decks, penetration: penetration, rng: rng}
}

// Shuffle permutes the undealt cards with Fisher-Yates.
func (s *Shoe) Shuffle() {
	for i := len(s.cards) - 1; i > 0; i-- {
		j := s.rng.IntN(i + 1)
		s.cards[i], s.cards[j] = s.cards[j], s.cards[i]
	}
}

// Deal removes and returns the next card.
func (s *Shoe) Deal() (Card, error) {
	if len(s.cards) == 0 {
		return Card{}, ErrShoeEmpty
	}

	last := len(s.cards) - 1
	card := s.cards[last]
	s.cards = s.cards[:last]
	s.dealt = append(s.dealt, card)
	return card, nil
}

// ShouldReshuffle reports whether the dealt fraction has reached penetration.
func (s *Shoe) ShouldReshuffle() bool {
	total := s.TotalCards()
	if total == 0 {
		return true
	}
	return float64(len(s.dealt))/float64(total) >= s.penetration
}

// Reset returns every dealt card to the shoe and reshuffles.
func (s *Shoe) Reset() {
	s.cards = append(s.cards, s.dealt...)
	s.dealt = s.dealt[:0]
	s.Shuffle()
}

// CardsRemaining returns the number of undealt cards.
func (s *Shoe) CardsRemaining() int {
	return len(s.cards)
}

// CardsDealt returns the number of cards dealt since the last reset.
func (s *Shoe) CardsDealt() int {
	return len(s.dealt)
}

// TotalCards is always CardsRemaining + CardsDealt.
func (s *Shoe) TotalCards() int {
	return len(s.cards) + len(s.dealt)
}

// Decks returns the number of decks the shoe was built from.
func (s *Shoe) Decks() int {
	return s.decks
}

// Penetration returns the reshuffle threshold.
func (s *Shoe) Penetration() float64 {
	return s.penetration
}
