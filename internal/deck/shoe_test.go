package deck

import (
	"testing"

	"github.com/lox/blackjack/internal/randutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewShoe(t *testing.T) {
	shoe := NewShoe(randutil.New(1), 6, 0.75)

	assert.Equal(t, 312, shoe.TotalCards())
	assert.Equal(t, 312, shoe.CardsRemaining())
	assert.Equal(t, 0, shoe.CardsDealt())

	counts := make(map[Card]int)
	for shoe.CardsRemaining() > 0 {
		c, err := shoe.Deal()
		require.NoError(t, err)
		counts[c]++
	}
	assert.Len(t, counts, 52)
	for c, n := range counts {
		assert.Equal(t, 6, n, "card %s", c)
	}
}

func TestShoeDealInvariant(t *testing.T) {
	shoe := NewShoe(randutil.New(7), 2, 0.5)
	for i := 0; i < 60; i++ {
		_, err := shoe.Deal()
		require.NoError(t, err)
		assert.Equal(t, shoe.TotalCards(), shoe.CardsRemaining()+shoe.CardsDealt())
		assert.Equal(t, 104, shoe.TotalCards())
	}
}

func TestShoeEmpty(t *testing.T) {
	shoe := NewStackedShoe(randutil.New(1), 0.75, MustParseCards("AsKs"))

	_, err := shoe.Deal()
	require.NoError(t, err)
	_, err = shoe.Deal()
	require.NoError(t, err)

	_, err = shoe.Deal()
	assert.ErrorIs(t, err, ErrShoeEmpty)
}

func TestShoeShouldReshuffle(t *testing.T) {
	shoe := NewShoe(randutil.New(3), 1, 0.5)

	for i := 0; i < 25; i++ {
		_, err := shoe.Deal()
		require.NoError(t, err)
	}
	assert.False(t, shoe.ShouldReshuffle(), "25/52 is below penetration")

	_, err := shoe.Deal()
	require.NoError(t, err)
	assert.True(t, shoe.ShouldReshuffle(), "26/52 reaches penetration")

	shoe.Reset()
	assert.False(t, shoe.ShouldReshuffle())
	assert.Equal(t, 52, shoe.CardsRemaining())
	assert.Equal(t, 0, shoe.CardsDealt())
}

func TestStackedShoeOrder(t *testing.T) {
	order := MustParseCards("2h3h4h5h")
	shoe := NewStackedShoe(randutil.New(1), 0.75, order)

	for _, want := range order {
		got, err := shoe.Deal()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestShoeDeterministicShuffle(t *testing.T) {
	a := NewShoe(randutil.New(42), 1, 0.75)
	b := NewShoe(randutil.New(42), 1, 0.75)

	for i := 0; i < 52; i++ {
		ca, _ := a.Deal()
		cb, _ := b.Deal()
		require.Equal(t, ca, cb, "card %d", i)
	}
}
