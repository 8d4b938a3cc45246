package statistics

import (
	"math"
	"testing"
	"time"

	"github.com/lox/blackjack/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatisticsEmpty(t *testing.T) {
	s := &Statistics{}
	assert.Zero(t, s.Mean())
	assert.Zero(t, s.Variance())
	assert.Zero(t, s.StdDev())
	assert.Zero(t, s.StdError())
	assert.Zero(t, s.Median())
	assert.Zero(t, s.Percentile(0.5))
	assert.Zero(t, s.Edge())
	assert.Error(t, s.Validate())
}

func TestStatisticsAdd(t *testing.T) {
	s := &Statistics{}
	results := []RoundResult{
		{Net: 10, Wagered: 10, Bet: 10, TrueCount: 0.4, Hands: 1},
		{Net: -20, Wagered: 20, Bet: 10, TrueCount: -0.2, Hands: 1, Doubled: true},
		{Net: 15, Wagered: 10, Bet: 10, TrueCount: 2.5, Hands: 1, Blackjack: true},
		{Net: 0, Wagered: 20, Bet: 10, TrueCount: 1.0, Hands: 2},
		{Net: -5, Wagered: 15, Bet: 10, TrueCount: 4.2, Hands: 1, Insured: true},
	}
	for _, r := range results {
		s.Add(r)
	}

	assert.Equal(t, 5, s.Rounds)
	assert.InDelta(t, 0.0, s.Mean(), 1e-9)
	assert.Equal(t, 75, s.Wagered)
	assert.Equal(t, 2, s.Wins)
	assert.Equal(t, 2, s.Losses)
	assert.Equal(t, 1, s.Pushes)
	assert.Equal(t, 1, s.Blackjacks)
	assert.Equal(t, 1, s.Doubles)
	assert.Equal(t, 1, s.Splits)
	assert.Equal(t, 1, s.Insured)
	assert.Equal(t, 15, s.MaxWin)
	assert.Equal(t, -20, s.MaxLoss)
	// Sorted: -20, -5, 0, 10, 15.
	assert.InDelta(t, 0.0, s.Median(), 1e-9)
	assert.True(t, s.IsLedgerBalanced())
	require.NoError(t, s.Validate())

	assert.Equal(t, 1, s.Buckets[Bucket(-0.2)-MinBucket].Rounds)
	assert.InDelta(t, 150.0, s.BucketEdge(2), 1e-9)
	assert.InDelta(t, -100.0, s.BucketEdge(-1), 1e-9)
	assert.Zero(t, s.BucketEdge(MaxBucket+1))
}

func TestBucketClamps(t *testing.T) {
	tests := []struct {
		tc   float64
		want int
	}{
		{-7.5, MinBucket},
		{-0.1, -1},
		{0, 0},
		{0.9, 0},
		{3.99, 3},
		{12, MaxBucket},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Bucket(tt.tc), "true count %v", tt.tc)
	}
}

func TestStatisticsVarianceAndInterval(t *testing.T) {
	s := &Statistics{}
	for _, v := range []int{1, 3, 5} {
		s.Add(RoundResult{Net: v, Wagered: 5})
	}
	assert.InDelta(t, 4.0, s.Variance(), 1e-9)
	assert.InDelta(t, 2.0, s.StdDev(), 1e-9)

	assert.InDelta(t, 2/math.Sqrt(3), s.StdError(), 1e-9)

	// Three rounds leave two degrees of freedom: t(0.975, 2) = 4.3027.
	low, high := s.ConfidenceInterval95()
	assert.InDelta(t, s.Mean(), (low+high)/2, 1e-9)
	assert.InDelta(t, 4.302653*2/math.Sqrt(3), high-s.Mean(), 1e-5)
}

func TestConfidenceIntervalSingleRound(t *testing.T) {
	s := &Statistics{}
	s.Add(RoundResult{Net: 10, Wagered: 10})
	low, high := s.ConfidenceInterval95()
	assert.Equal(t, 10.0, low)
	assert.Equal(t, 10.0, high)
	assert.Zero(t, s.Variance())
}

func TestStatisticsPercentiles(t *testing.T) {
	s := &Statistics{}
	for i := 1; i <= 5; i++ {
		s.Add(RoundResult{Net: i})
	}

	tests := []struct {
		p    float64
		want float64
	}{
		{0, 1},
		{0.25, 2},
		{0.5, 3},
		{0.75, 4},
		{1, 5},
		{1.5, 5},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, s.Percentile(tt.p), 1e-9)
	}
}

func TestPercentileIgnoresPlayOrder(t *testing.T) {
	s := &Statistics{}
	for _, v := range []int{15, -20, 10, 0, -5} {
		s.Add(RoundResult{Net: v})
	}
	assert.InDelta(t, 0.0, s.Median(), 1e-9)
	assert.InDelta(t, -20.0, s.Percentile(0.05), 1e-9)
	assert.Equal(t, []float64{15, -20, 10, 0, -5}, s.Values)
}

func TestStatisticsMerge(t *testing.T) {
	a, b, all := &Statistics{}, &Statistics{}, &Statistics{}
	rounds := []RoundResult{
		{Net: 10, Wagered: 10, TrueCount: 1},
		{Net: -10, Wagered: 10, TrueCount: -2},
		{Net: 25, Wagered: 20, TrueCount: 3, Doubled: true},
		{Net: 0, Wagered: 10},
	}
	for i, r := range rounds {
		if i%2 == 0 {
			a.Add(r)
		} else {
			b.Add(r)
		}
		all.Add(r)
	}

	a.Merge(b)
	assert.Equal(t, all.Rounds, a.Rounds)
	assert.Equal(t, all.AllNet, a.AllNet)
	assert.Equal(t, all.Buckets, a.Buckets)
	assert.InDelta(t, all.Variance(), a.Variance(), 1e-9)
	require.NoError(t, a.Validate())
}

func TestValidateDetectsInconsistency(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *Statistics)
		want   string
	}{
		{"ledger", func(s *Statistics) { s.WonNet++ }, "ledger mismatch"},
		{"values", func(s *Statistics) { s.Values = s.Values[:1] }, "values array length"},
		{"outcomes", func(s *Statistics) { s.Pushes++ }, "outcomes"},
		{"buckets", func(s *Statistics) { s.Buckets[0].Rounds++ }, "bucket rounds total"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Statistics{}
			s.Add(RoundResult{Net: 10, Wagered: 10})
			s.Add(RoundResult{Net: -10, Wagered: 10})
			tt.mutate(s)

			err := s.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCalculateRTP(t *testing.T) {
	s := game.NewStatistics(25000, time.Now())
	assert.Equal(t, CategoryUnknown, CalculateRTP(s).Category())

	s.HandsPlayed = 3
	s.TotalWagered = 300
	s.TotalWon = 295
	s.NetProfit = -5

	r := CalculateRTP(s)
	assert.InDelta(t, 98.33, r.RTP, 1e-9)
	assert.InDelta(t, 100.0, r.AvgBet, 1e-9)
	assert.InDelta(t, 98.33, r.AvgReturn, 1e-9)
	assert.Equal(t, CategoryAverage, r.Category())
	assert.Equal(t, -5, r.NetProfit)
}

func TestCategorizeRTP(t *testing.T) {
	tests := []struct {
		rtp  float64
		want Category
	}{
		{0, CategoryUnknown},
		{100, CategoryExcellent},
		{104.2, CategoryExcellent},
		{99.5, CategoryGood},
		{99, CategoryGood},
		{98.99, CategoryAverage},
		{95, CategoryAverage},
		{94.99, CategoryPoor},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CategorizeRTP(tt.rtp), "rtp %v", tt.rtp)
	}
}

func TestCompareRTP(t *testing.T) {
	assert.InDelta(t, 99.5, ExpectedRTP(0.5), 1e-9)

	diff, perf := CompareRTP(99.7, 0.5)
	assert.Equal(t, PerformanceExpected, perf)
	assert.InDelta(t, 0.2, diff, 1e-9)

	diff, perf = CompareRTP(101, 0.5)
	assert.Equal(t, PerformanceAbove, perf)
	assert.InDelta(t, 1.5, diff, 1e-9)

	_, perf = CompareRTP(97, 0.5)
	assert.Equal(t, PerformanceBelow, perf)
}
