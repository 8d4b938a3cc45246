package strategy

import (
	"fmt"
	"strings"

	"github.com/lox/blackjack/internal/deck"
)

// Columns are the dealer up-card buckets, in chart order. J, Q and K share
// the Ten column.
var Columns = []deck.Rank{
	deck.Two, deck.Three, deck.Four, deck.Five, deck.Six,
	deck.Seven, deck.Eight, deck.Nine, deck.Ten, deck.Ace,
}

// row holds one chart line, one code per dealer column.
type row [10]Code

// column returns the chart column for a dealer up card.
func column(up deck.Rank) int {
	switch up = up.Normalize(); up {
	case deck.Ace:
		return 9
	case deck.Ten:
		return 8
	default:
		return int(up) - 2
	}
}

// tables is one complete chart: hard totals 5-21, soft A2-A9 (keyed by the
// non-Ace remainder) and pairs keyed by normalized rank.
type tables struct {
	hard  map[int]row
	soft  map[int]row
	pairs map[deck.Rank]row
}

func (t tables) clone() tables {
	c := tables{
		hard:  make(map[int]row, len(t.hard)),
		soft:  make(map[int]row, len(t.soft)),
		pairs: make(map[deck.Rank]row, len(t.pairs)),
	}
	for k, v := range t.hard {
		c.hard[k] = v
	}
	for k, v := range t.soft {
		c.soft[k] = v
	}
	for k, v := range t.pairs {
		c.pairs[k] = v
	}
	return c
}

// s17DAS is the dealer-stands-on-soft-17 chart with double after split.
// Columns run 2 3 4 5 6 7 8 9 10 A.
var s17DAS = tables{
	hard: map[int]row{
		5:  parseRow("H  H  H  H  H  H  H  H  H  H"),
		6:  parseRow("H  H  H  H  H  H  H  H  H  H"),
		7:  parseRow("H  H  H  H  H  H  H  H  H  H"),
		8:  parseRow("H  H  H  H  H  H  H  H  H  H"),
		9:  parseRow("H  DH DH DH DH H  H  H  H  H"),
		10: parseRow("DH DH DH DH DH DH DH DH H  H"),
		11: parseRow("DH DH DH DH DH DH DH DH DH DH"),
		12: parseRow("H  H  S  S  S  H  H  H  H  H"),
		13: parseRow("S  S  S  S  S  H  H  H  H  H"),
		14: parseRow("S  S  S  S  S  H  H  H  H  H"),
		15: parseRow("S  S  S  S  S  H  H  H  SU H"),
		16: parseRow("S  S  S  S  S  H  H  SU SU SU"),
		17: parseRow("S  S  S  S  S  S  S  S  S  S"),
		18: parseRow("S  S  S  S  S  S  S  S  S  S"),
		19: parseRow("S  S  S  S  S  S  S  S  S  S"),
		20: parseRow("S  S  S  S  S  S  S  S  S  S"),
		21: parseRow("S  S  S  S  S  S  S  S  S  S"),
	},
	soft: map[int]row{
		2: parseRow("H  H  H  DH DH H  H  H  H  H"),
		3: parseRow("H  H  H  DH DH H  H  H  H  H"),
		4: parseRow("H  H  DH DH DH H  H  H  H  H"),
		5: parseRow("H  H  DH DH DH H  H  H  H  H"),
		6: parseRow("H  DH DH DH DH H  H  H  H  H"),
		7: parseRow("S  DS DS DS DS S  S  H  H  H"),
		8: parseRow("S  S  S  S  S  S  S  S  S  S"),
		9: parseRow("S  S  S  S  S  S  S  S  S  S"),
	},
	pairs: map[deck.Rank]row{
		deck.Two:   parseRow("SP SP SP SP SP SP H  H  H  H"),
		deck.Three: parseRow("SP SP SP SP SP SP H  H  H  H"),
		deck.Four:  parseRow("H  H  H  SP SP H  H  H  H  H"),
		deck.Five:  parseRow("DH DH DH DH DH DH DH DH H  H"),
		deck.Six:   parseRow("SP SP SP SP SP H  H  H  H  H"),
		deck.Seven: parseRow("SP SP SP SP SP SP H  H  H  H"),
		deck.Eight: parseRow("SP SP SP SP SP SP SP SP SP SP"),
		deck.Nine:  parseRow("SP SP SP SP SP S  SP SP S  S"),
		deck.Ten:   parseRow("S  S  S  S  S  S  S  S  S  S"),
		deck.Ace:   parseRow("SP SP SP SP SP SP SP SP SP SP"),
	},
}

// h17DAS differs from s17DAS where a dealer hitting soft 17 makes the
// player's hand worse against an Ace, and on soft doubles that gain
// against a weaker dealer total.
var h17DAS = func() tables {
	t := s17DAS.clone()
	t.hard[15] = parseRow("S  S  S  S  S  H  H  H  SU SU")
	t.soft[7] = parseRow("DS DS DS DS DS S  S  H  H  H")
	t.soft[8] = parseRow("S  S  S  S  DS S  S  S  S  S")
	return t
}()

// noDASPairs are the small-pair splits that only pay when doubling after
// a split is allowed. Without DAS they become hits.
var noDASPairs = []struct {
	pair   deck.Rank
	dealer deck.Rank
}{
	{deck.Two, deck.Two},
	{deck.Two, deck.Three},
	{deck.Three, deck.Two},
	{deck.Three, deck.Three},
	{deck.Four, deck.Five},
	{deck.Four, deck.Six},
	{deck.Six, deck.Seven},
}

func parseRow(s string) row {
	fields := strings.Fields(s)
	if len(fields) != len(Columns) {
		panic(fmt.Sprintf("strategy row %q has %d cells, want %d", s, len(fields), len(Columns)))
	}
	var r row
	for i, f := range fields {
		c, err := ParseCode(f)
		if err != nil {
			panic(err)
		}
		r[i] = c
	}
	return r
}
