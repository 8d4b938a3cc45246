package strategy

import (
	"fmt"

	"github.com/lox/blackjack/internal/deck"
)

// ChartRow is one labelled line of a printable strategy chart.
type ChartRow struct {
	Label string
	Cells []Code
}

// Chart is the engine's complete table in display order.
type Chart struct {
	Dealer []string
	Hard   []ChartRow
	Soft   []ChartRow
	Pairs  []ChartRow
}

var pairOrder = []deck.Rank{
	deck.Two, deck.Three, deck.Four, deck.Five, deck.Six,
	deck.Seven, deck.Eight, deck.Nine, deck.Ten, deck.Ace,
}

// Chart exports the tables the engine plays from.
func (e *Engine) Chart() Chart {
	c := Chart{}
	for _, r := range Columns {
		c.Dealer = append(c.Dealer, r.String())
	}

	for total := 5; total <= 21; total++ {
		c.Hard = append(c.Hard, ChartRow{
			Label: fmt.Sprintf("%d", total),
			Cells: cells(e.tables.hard[total]),
		})
	}
	for n := 2; n <= 9; n++ {
		c.Soft = append(c.Soft, ChartRow{
			Label: fmt.Sprintf("A,%d", n),
			Cells: cells(e.tables.soft[n]),
		})
	}
	for _, r := range pairOrder {
		c.Pairs = append(c.Pairs, ChartRow{
			Label: fmt.Sprintf("%s,%s", r, r),
			Cells: cells(e.tables.pairs[r]),
		})
	}
	return c
}

func cells(r row) []Code {
	out := make([]Code, len(r))
	copy(out, r[:])
	return out
}
