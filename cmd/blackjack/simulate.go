package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/lox/blackjack/internal/counting"
	"github.com/lox/blackjack/internal/rules"
	"github.com/lox/blackjack/internal/simulator"
	"github.com/lox/blackjack/internal/statistics"
)

type SimulateCmd struct {
	Shoes     int           `default:"1000" help:"Number of shoes to play"`
	Seed      int64         `default:"1" help:"Seed of the first shoe"`
	System    string        `help:"Counting system (defaults to the config file)"`
	Preset    string        `help:"Rules preset (defaults to the config file)"`
	MinBet    int           `default:"10" help:"Betting unit"`
	MaxBet    int           `default:"120" help:"Largest bet"`
	Uncounted bool          `help:"Flat bet basic strategy, ignoring the count"`
	Workers   int           `help:"Parallel workers (0 for one per CPU)"`
	Timeout   time.Duration `default:"5m" help:"Abort after this long"`
}

func (c *SimulateCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(os.Stderr, cfg.Log.Level)
	if err != nil {
		return err
	}

	r, presetID, err := resolveRules(cfg, c.Preset)
	if err != nil {
		return err
	}
	system := counting.SystemID(cfg.Session.CountingSystem)
	if c.System != "" {
		system = counting.SystemID(c.System)
	}

	sim := simulator.New(simulator.Config{
		Rules:   r,
		System:  system,
		Shoes:   c.Shoes,
		Seed:    c.Seed,
		MinBet:  c.MinBet,
		MaxBet:  c.MaxBet,
		Counted: !c.Uncounted,
		Workers: c.Workers,
		Timeout: c.Timeout,
		Logger:  logger,
	})

	ctx := setupSignalHandler(logger)
	report, err := sim.Run(ctx)
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}
	printReport(os.Stdout, report, presetID)
	return nil
}

func printReport(w io.Writer, report *simulator.Report, presetID string) {
	stats := report.Stats
	cfg := report.Config
	low, high := stats.ConfidenceInterval95()
	edge := rules.HouseEdge(cfg.Rules)

	name := presetName(presetID)
	mode := "counted"
	if !cfg.Counted {
		mode = "flat bet"
	}

	fmt.Fprintf(w, "\n=== SIMULATION %s ===\n", report.ID)
	fmt.Fprintf(w, "Rules: %s (house edge %s)\n", name, rules.FormatEdge(edge))
	fmt.Fprintf(w, "System: %s, %s, bets %d-%d\n", cfg.System, mode, cfg.MinBet, cfg.MaxBet)
	fmt.Fprintf(w, "Shoes: %d, rounds: %d\n", cfg.Shoes, stats.Rounds)
	fmt.Fprintf(w, "Total time: %v\n", report.Duration.Round(time.Millisecond))
	if secs := report.Duration.Seconds(); secs > 0 {
		fmt.Fprintf(w, "Performance: %.0f rounds/sec\n", float64(stats.Rounds)/secs)
	}

	fmt.Fprintf(w, "\n=== STATISTICAL RESULTS ===\n")
	fmt.Fprintf(w, "Mean: %.4f chips/round\n", stats.Mean())
	fmt.Fprintf(w, "Median: %.4f chips/round\n", stats.Median())
	fmt.Fprintf(w, "Std Dev: %.4f chips\n", stats.StdDev())
	fmt.Fprintf(w, "Std Error: %.4f chips\n", stats.StdError())
	fmt.Fprintf(w, "95%% CI: [%.4f, %.4f] chips/round\n", low, high)
	fmt.Fprintf(w, "Percentiles: P5=%.1f, P25=%.1f, P75=%.1f, P95=%.1f\n",
		stats.Percentile(0.05), stats.Percentile(0.25), stats.Percentile(0.75), stats.Percentile(0.95))
	fmt.Fprintf(w, "Largest win: %d, largest loss: %d\n", stats.MaxWin, stats.MaxLoss)

	fmt.Fprintf(w, "\n=== RETURN ===\n")
	fmt.Fprintf(w, "Wagered: %d, net: %+d\n", stats.Wagered, stats.AllNet)
	fmt.Fprintf(w, "Player edge: %+.3f%% (basic strategy expects %+.2f%%)\n", stats.Edge(), rules.PlayerAdvantage(cfg.Rules))
	rtp := 100 + stats.Edge()
	diff, perf := statistics.CompareRTP(rtp, edge)
	fmt.Fprintf(w, "RTP: %.2f%% (%s, %+.2f vs expected, %s)\n", rtp, statistics.CategorizeRTP(rtp), diff, perf)

	fmt.Fprintf(w, "\n=== OUTCOMES ===\n")
	fmt.Fprintf(w, "Wins: %d (%.1f%%), losses: %d (%.1f%%), pushes: %d (%.1f%%)\n",
		stats.Wins, pct(stats.Wins, stats.Rounds),
		stats.Losses, pct(stats.Losses, stats.Rounds),
		stats.Pushes, pct(stats.Pushes, stats.Rounds))
	fmt.Fprintf(w, "Blackjacks: %d, doubles: %d, splits: %d, insured: %d\n",
		stats.Blackjacks, stats.Doubles, stats.Splits, stats.Insured)

	fmt.Fprintf(w, "\n=== TRUE COUNT ANALYSIS ===\n")
	for b := statistics.MinBucket; b <= statistics.MaxBucket; b++ {
		bucket := stats.Buckets[b-statistics.MinBucket]
		if bucket.Rounds == 0 {
			continue
		}
		label := fmt.Sprintf("%+d", b)
		switch b {
		case statistics.MinBucket:
			label = fmt.Sprintf("<=%+d", b)
		case statistics.MaxBucket:
			label = fmt.Sprintf(">=%+d", b)
		}
		fmt.Fprintf(w, "TC %-4s %8d rounds (%5.1f%%), avg bet %6.1f, edge %+6.2f%%\n",
			label, bucket.Rounds, pct(bucket.Rounds, stats.Rounds),
			float64(bucket.SumBet)/float64(bucket.Rounds), stats.BucketEdge(b))
	}
}

func pct(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}
