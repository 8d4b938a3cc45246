package strategy

import "fmt"

// Code is a strategy-table action code.
type Code string

const (
	Hit           Code = "H"
	Stand         Code = "S"
	Double        Code = "D"
	Split         Code = "SP"
	Surrender     Code = "SU"
	DoubleOrStand Code = "DS"
	DoubleOrHit   Code = "DH"
)

// ParseCode converts a table cell into a Code.
func ParseCode(s string) (Code, error) {
	switch c := Code(s); c {
	case Hit, Stand, Double, Split, Surrender, DoubleOrStand, DoubleOrHit:
		return c, nil
	default:
		return "", fmt.Errorf("unknown strategy code %q", s)
	}
}

// DescriptionKey returns the semantic key naming the action, for
// rendering by a front end.
func (c Code) DescriptionKey() string {
	switch c {
	case Hit:
		return "strategy.hit"
	case Stand:
		return "strategy.stand"
	case Double:
		return "strategy.doubleDown"
	case Split:
		return "strategy.split"
	case Surrender:
		return "strategy.surrender"
	case DoubleOrHit:
		return "strategy.doubleOrHit"
	case DoubleOrStand:
		return "strategy.doubleOrStand"
	default:
		return "strategy.unknown"
	}
}

// IsDouble reports whether the code doubles when doubling is allowed.
func (c Code) IsDouble() bool {
	return c == Double || c == DoubleOrHit || c == DoubleOrStand
}
