package statistics

import (
	"math"

	"github.com/lox/blackjack/internal/game"
)

// Category grades a return-to-player figure.
type Category string

const (
	CategoryUnknown   Category = "unknown"
	CategoryExcellent Category = "excellent"
	CategoryGood      Category = "good"
	CategoryAverage   Category = "average"
	CategoryPoor      Category = "poor"
)

// Performance compares an actual RTP with the one the rules predict.
type Performance string

const (
	PerformanceAbove    Performance = "above"
	PerformanceExpected Performance = "expected"
	PerformanceBelow    Performance = "below"
)

// RTP is the return-to-player report of a session.
type RTP struct {
	RTP          float64 // percent of wagered money returned, 2 decimals
	TotalWagered int
	TotalWon     int
	NetProfit    int
	HandsPlayed  int
	AvgBet       float64
	AvgReturn    float64
}

// CalculateRTP builds the report from session statistics. Every figure is
// zero before the first wager.
func CalculateRTP(s game.Statistics) RTP {
	r := RTP{
		TotalWagered: s.TotalWagered,
		TotalWon:     s.TotalWon,
		NetProfit:    s.NetProfit,
		HandsPlayed:  s.HandsPlayed,
	}
	if s.TotalWagered > 0 {
		r.RTP = round2(float64(s.TotalWon) / float64(s.TotalWagered) * 100)
	}
	if s.HandsPlayed > 0 {
		r.AvgBet = round2(float64(s.TotalWagered) / float64(s.HandsPlayed))
		r.AvgReturn = round2(float64(s.TotalWon) / float64(s.HandsPlayed))
	}
	return r
}

// Category grades the report.
func (r RTP) Category() Category {
	return CategorizeRTP(r.RTP)
}

// CategorizeRTP grades an RTP percentage. Zero means no data.
func CategorizeRTP(rtp float64) Category {
	switch {
	case rtp == 0:
		return CategoryUnknown
	case rtp >= 100:
		return CategoryExcellent
	case rtp >= 99:
		return CategoryGood
	case rtp >= 95:
		return CategoryAverage
	default:
		return CategoryPoor
	}
}

// ExpectedRTP is what perfect basic strategy returns against a house edge
// given in percent.
func ExpectedRTP(houseEdge float64) float64 {
	return 100 - houseEdge
}

// CompareRTP reports how far an actual RTP is from the expected one. Within
// half a point counts as expected.
func CompareRTP(actual, houseEdge float64) (float64, Performance) {
	diff := actual - ExpectedRTP(houseEdge)
	switch {
	case math.Abs(diff) < 0.5:
		return round2(diff), PerformanceExpected
	case diff > 0:
		return round2(diff), PerformanceAbove
	default:
		return round2(diff), PerformanceBelow
	}
}

func round2(x float64) float64 {
	return math.Floor(x*100+0.5) / 100
}
