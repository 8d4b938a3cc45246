// Package statistics summarizes blackjack results: sample statistics over
// simulated rounds, broken down by true count, and the return-to-player
// report of a session.
package statistics

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Rounds are bucketed by the floor of the true count at the bet, clamped
// to MinBucket..MaxBucket.
const (
	MinBucket = -3
	MaxBucket = 6
)

// RoundResult is the outcome of one round for the player.
type RoundResult struct {
	Net       int     // chips won or lost across all hands, insurance included
	Wagered   int     // chips put at risk, including doubles, splits and insurance
	Bet       int     // the opening bet
	TrueCount float64 // effective count when the bet was placed
	Hands     int     // hands played after splits
	Blackjack bool
	Doubled   bool
	Insured   bool
	Seed      uint64 // shoe seed, for replay
}

// BucketStats accumulates rounds played at one true count.
type BucketStats struct {
	Rounds  int
	Net     int
	Wagered int
	SumBet  int
}

// Statistics accumulates round results. Net values are in chips.
type Statistics struct {
	Rounds int
	Values []float64 // every net result, in play order

	Wagered int
	WonNet  int // net of winning rounds
	LostNet int // net of losing rounds, negative
	AllNet  int // total net for the ledger check

	Wins   int
	Losses int
	Pushes int

	Blackjacks int
	Doubles    int
	Splits     int
	Insured    int

	Buckets [MaxBucket - MinBucket + 1]BucketStats

	MaxWin  int
	MaxLoss int
}

// Bucket returns the bucket index for a true count.
func Bucket(trueCount float64) int {
	b := int(math.Floor(trueCount))
	return min(max(b, MinBucket), MaxBucket)
}

// Add incorporates a round.
func (s *Statistics) Add(r RoundResult) {
	s.Rounds++
	s.Values = append(s.Values, float64(r.Net))

	s.Wagered += r.Wagered
	s.AllNet += r.Net
	switch {
	case r.Net > 0:
		s.Wins++
		s.WonNet += r.Net
	case r.Net < 0:
		s.Losses++
		s.LostNet += r.Net
	default:
		s.Pushes++
	}

	if r.Blackjack {
		s.Blackjacks++
	}
	if r.Doubled {
		s.Doubles++
	}
	if r.Hands > 1 {
		s.Splits += r.Hands - 1
	}
	if r.Insured {
		s.Insured++
	}

	b := &s.Buckets[Bucket(r.TrueCount)-MinBucket]
	b.Rounds++
	b.Net += r.Net
	b.Wagered += r.Wagered
	b.SumBet += r.Bet

	s.MaxWin = max(s.MaxWin, r.Net)
	s.MaxLoss = min(s.MaxLoss, r.Net)
}

// Merge folds other into s.
func (s *Statistics) Merge(other *Statistics) {
	s.Rounds += other.Rounds
	s.Values = append(s.Values, other.Values...)
	s.Wagered += other.Wagered
	s.WonNet += other.WonNet
	s.LostNet += other.LostNet
	s.AllNet += other.AllNet
	s.Wins += other.Wins
	s.Losses += other.Losses
	s.Pushes += other.Pushes
	s.Blackjacks += other.Blackjacks
	s.Doubles += other.Doubles
	s.Splits += other.Splits
	s.Insured += other.Insured
	for i := range s.Buckets {
		s.Buckets[i].Rounds += other.Buckets[i].Rounds
		s.Buckets[i].Net += other.Buckets[i].Net
		s.Buckets[i].Wagered += other.Buckets[i].Wagered
		s.Buckets[i].SumBet += other.Buckets[i].SumBet
	}
	s.MaxWin = max(s.MaxWin, other.MaxWin)
	s.MaxLoss = min(s.MaxLoss, other.MaxLoss)
}

// Mean is the average net result per round.
func (s *Statistics) Mean() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	return stat.Mean(s.Values, nil)
}

// Variance is the unbiased sample variance of the net results.
func (s *Statistics) Variance() float64 {
	if len(s.Values) < 2 {
		return 0
	}
	return stat.Variance(s.Values, nil)
}

// StdDev is the sample standard deviation.
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError is the standard error of the mean.
func (s *Statistics) StdError() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	return stat.StdErr(s.StdDev(), float64(len(s.Values)))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean,
// using the t-distribution with n-1 degrees of freedom.
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	if len(s.Values) < 2 {
		return mean, mean
	}
	tDist := distuv.StudentsT{
		Mu:    0,
		Sigma: 1,
		Nu:    float64(len(s.Values) - 1),
	}
	margin := tDist.Quantile(0.975) * s.StdError()
	return mean - margin, mean + margin
}

// Edge is the player's advantage as a percentage of the amount wagered.
func (s *Statistics) Edge() float64 {
	if s.Wagered == 0 {
		return 0
	}
	return float64(s.AllNet) / float64(s.Wagered) * 100
}

// BucketEdge is the player's advantage at one true count bucket.
func (s *Statistics) BucketEdge(bucket int) float64 {
	if bucket < MinBucket || bucket > MaxBucket {
		return 0
	}
	b := s.Buckets[bucket-MinBucket]
	if b.Wagered == 0 {
		return 0
	}
	return float64(b.Net) / float64(b.Wagered) * 100
}

// Median returns the median net result.
func (s *Statistics) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile returns the empirical quantile of the net results at p,
// between 0 and 1: the smallest result with at least p of the rounds at
// or below it.
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)
	return stat.Quantile(min(max(p, 0), 1), stat.Empirical, sorted, nil)
}

// IsLedgerBalanced checks that winning and losing rounds add up to the
// total.
func (s *Statistics) IsLedgerBalanced() bool {
	return s.AllNet == s.WonNet+s.LostNet
}

// Validate checks the accumulated data for internal consistency.
func (s *Statistics) Validate() error {
	if !s.IsLedgerBalanced() {
		return fmt.Errorf("ledger mismatch: all=%d won=%d lost=%d", s.AllNet, s.WonNet, s.LostNet)
	}
	if s.Rounds <= 0 {
		return fmt.Errorf("invalid rounds count: %d", s.Rounds)
	}
	if len(s.Values) != s.Rounds {
		return fmt.Errorf("values array length (%d) does not match rounds count (%d)", len(s.Values), s.Rounds)
	}
	if outcomes := s.Wins + s.Losses + s.Pushes; outcomes != s.Rounds {
		return fmt.Errorf("outcomes (%d) do not match rounds (%d)", outcomes, s.Rounds)
	}

	bucketRounds, bucketNet := 0, 0
	for _, b := range s.Buckets {
		bucketRounds += b.Rounds
		bucketNet += b.Net
	}
	if bucketRounds != s.Rounds {
		return fmt.Errorf("bucket rounds total (%d) does not match rounds (%d)", bucketRounds, s.Rounds)
	}
	if bucketNet != s.AllNet {
		return fmt.Errorf("bucket net total (%d) does not match net (%d)", bucketNet, s.AllNet)
	}
	return nil
}
