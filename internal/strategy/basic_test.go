package strategy

import (
	"testing"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func up(r deck.Rank) deck.Card {
	return deck.NewCard(deck.Clubs, r)
}

func TestOptimalAction(t *testing.T) {
	engine := New(rules.VegasStrip())

	tests := []struct {
		name         string
		cards        string
		dealer       deck.Rank
		canDouble    bool
		canSplit     bool
		canSurrender bool
		want         Code
	}{
		{"hard 12 vs 7 hits", "Ts2d", deck.Seven, true, false, true, Hit},
		{"hard 12 vs 4 stands", "Ts2d", deck.Four, true, false, true, Stand},
		{"eights split vs 6", "8s8d", deck.Six, true, true, true, Split},
		{"eights without split play as hard 16", "8s8d", deck.Six, true, false, true, Stand},
		{"hard 11 vs ace doubles", "6s5d", deck.Ace, true, false, true, Double},
		{"hard 11 cannot double hits", "6s5d", deck.Ace, false, false, true, Hit},
		{"soft 18 vs 3 doubles", "As7d", deck.Three, true, false, true, Double},
		{"soft 18 vs 3 cannot double stands", "As7d", deck.Three, false, false, true, Stand},
		{"soft 18 vs 9 hits", "As7d", deck.Nine, true, false, true, Hit},
		{"16 vs 10 surrenders", "Ts6d", deck.King, true, false, true, Surrender},
		{"16 vs 10 without surrender hits", "Ts6d", deck.Queen, true, false, false, Hit},
		{"face card dealer maps to ten", "Ts5d", deck.Jack, true, false, true, Surrender},
		{"tens never split", "TsKd", deck.Six, true, true, true, Stand},
		{"fives double as ten", "5s5d", deck.Six, true, true, true, Double},
		{"nines stand vs 7", "9s9d", deck.Seven, true, true, true, Stand},
		{"three card soft total", "As2d4h", deck.Five, false, false, false, Hit},
		{"unsplit aces hit", "AsAd", deck.Six, true, false, true, Hit},
		{"unsplit twos hit", "2s2d", deck.Six, true, false, true, Hit},
		{"hard 20 stands", "TsQd", deck.Ace, true, true, true, Stand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engine.OptimalAction(deck.MustParseCards(tt.cards), up(tt.dealer), tt.canDouble, tt.canSplit, tt.canSurrender)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOptimalActionH17(t *testing.T) {
	r := rules.VegasStrip()
	r.DealerHitsSoft17 = true
	h17 := New(r)
	s17 := New(rules.VegasStrip())

	assert.Equal(t, Surrender, h17.OptimalAction(deck.MustParseCards("Ts5d"), up(deck.Ace), true, false, true))
	assert.Equal(t, Hit, s17.OptimalAction(deck.MustParseCards("Ts5d"), up(deck.Ace), true, false, true))

	assert.Equal(t, Double, h17.OptimalAction(deck.MustParseCards("As7d"), up(deck.Two), true, false, true))
	assert.Equal(t, Stand, s17.OptimalAction(deck.MustParseCards("As7d"), up(deck.Two), true, false, true))

	assert.Equal(t, Double, h17.OptimalAction(deck.MustParseCards("As8d"), up(deck.Six), true, false, true))
	assert.Equal(t, Stand, s17.OptimalAction(deck.MustParseCards("As8d"), up(deck.Six), true, false, true))
}

func TestNoDoubleAfterSplitPairs(t *testing.T) {
	r := rules.VegasStrip()
	r.DoubleAfterSplit = false
	noDAS := New(r)
	das := New(rules.VegasStrip())

	tests := []struct {
		pair   string
		dealer deck.Rank
	}{
		{"2s2d", deck.Two},
		{"2s2d", deck.Three},
		{"3s3d", deck.Two},
		{"3s3d", deck.Three},
		{"4s4d", deck.Five},
		{"4s4d", deck.Six},
	}

	for _, tt := range tests {
		t.Run(tt.pair+"v"+tt.dealer.String(), func(t *testing.T) {
			cards := deck.MustParseCards(tt.pair)
			assert.Equal(t, Split, das.OptimalAction(cards, up(tt.dealer), true, true, true))
			assert.NotEqual(t, Split, noDAS.OptimalAction(cards, up(tt.dealer), true, true, true))
			assert.Equal(t, Hit, noDAS.TableCode(cards, up(tt.dealer)))
		})
	}

	// The shared base chart must not be modified by building a no-DAS engine.
	assert.Equal(t, Split, s17DAS.pairs[deck.Two][column(deck.Two)])
}

func TestTableCode(t *testing.T) {
	engine := New(rules.VegasStrip())
	assert.Equal(t, DoubleOrHit, engine.TableCode(deck.MustParseCards("6s5d"), up(deck.Ace)))
	assert.Equal(t, DoubleOrStand, engine.TableCode(deck.MustParseCards("As7d"), up(deck.Four)))
	assert.Equal(t, Split, engine.TableCode(deck.MustParseCards("8s8d"), up(deck.Ten)))

	// A multi-card soft hand keys on its total, not on the first Ace plus
	// the rest: A,A,5 is soft 17 and plays as A6.
	assert.Equal(t,
		engine.TableCode(deck.MustParseCards("As6d"), up(deck.Three)),
		engine.TableCode(deck.MustParseCards("AsAh5d"), up(deck.Three)))
	assert.Equal(t, DoubleOrHit, engine.TableCode(deck.MustParseCards("AsAh5d"), up(deck.Three)))
}

func TestChart(t *testing.T) {
	chart := New(rules.VegasStrip()).Chart()
	require.Len(t, chart.Dealer, 10)
	assert.Equal(t, "10", chart.Dealer[8])
	assert.Equal(t, "A", chart.Dealer[9])
	assert.Len(t, chart.Hard, 17)
	assert.Len(t, chart.Soft, 8)
	assert.Len(t, chart.Pairs, 10)
	assert.Equal(t, "16", chart.Hard[11].Label)
	assert.Equal(t, Surrender, chart.Hard[11].Cells[8])
	assert.Equal(t, "A,A", chart.Pairs[9].Label)
}

func TestParseCode(t *testing.T) {
	for _, s := range []string{"H", "S", "D", "SP", "SU", "DS", "DH"} {
		c, err := ParseCode(s)
		require.NoError(t, err)
		assert.Equal(t, Code(s), c)
	}
	_, err := ParseCode("X")
	assert.Error(t, err)
}
