package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/lox/blackjack/internal/config"
	"github.com/lox/blackjack/internal/counting"
	"github.com/lox/blackjack/internal/rules"
	"github.com/lox/blackjack/internal/strategy"
	"github.com/lox/blackjack/internal/tui"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)

	codeColors = map[strategy.Code]lipgloss.Color{
		strategy.Hit:           "#FF6B6B",
		strategy.Stand:         "#FFD93D",
		strategy.Double:        "#04B575",
		strategy.DoubleOrHit:   "#04B575",
		strategy.DoubleOrStand: "#6BCB77",
		strategy.Split:         "#4D96FF",
		strategy.Surrender:     "#AAAAAA",
	}
)

// tagOrder lists the ranks in the order count tags are printed.
var tagOrder = strategy.Columns

type StrategyCmd struct {
	Preset     string `help:"Rules preset (defaults to the config file)"`
	Deviations bool   `help:"Also list the count deviations of the counting system"`
	System     string `help:"Counting system for --deviations (defaults to the config file)"`
}

func (c *StrategyCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	if g.NoColor {
		tui.NoColor()
	}
	r, presetID, err := resolveRules(cfg, c.Preset)
	if err != nil {
		return err
	}

	printChart(os.Stdout, strategy.New(r).Chart(), presetName(presetID), r)
	if !c.Deviations {
		return nil
	}

	system := counting.SystemID(cfg.Session.CountingSystem)
	if c.System != "" {
		system = counting.SystemID(c.System)
	}
	resolver, err := counting.ResolverFor(system)
	if err != nil {
		return err
	}
	printDeviations(os.Stdout, resolver)
	return nil
}

func printChart(w io.Writer, chart strategy.Chart, name string, r rules.Rules) {
	soft17 := "S17"
	if r.DealerHitsSoft17 {
		soft17 = "H17"
	}
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Basic strategy: %s, %d decks, %s", name, r.DeckCount, soft17)))

	sections := []struct {
		title string
		rows  []strategy.ChartRow
	}{
		{"Hard totals", chart.Hard},
		{"Soft totals", chart.Soft},
		{"Pairs", chart.Pairs},
	}
	for _, s := range sections {
		rows := make([][]string, 0, len(s.rows))
		for _, row := range s.rows {
			cells := []string{row.Label}
			for _, code := range row.Cells {
				cells = append(cells, string(code))
			}
			rows = append(rows, cells)
		}

		t := table.New().
			Border(lipgloss.RoundedBorder()).
			Headers(append([]string{s.title}, chart.Dealer...)...).
			Rows(rows...).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow || col == 0 {
					return headerStyle
				}
				if row < 0 || row >= len(rows) {
					return cellStyle
				}
				code := strategy.Code(rows[row][col])
				if color, ok := codeColors[code]; ok {
					return cellStyle.Foreground(color)
				}
				return cellStyle
			})
		fmt.Fprintln(w, t.Render())
	}
	fmt.Fprintln(w, "H hit, S stand, D double, DH double or hit, DS double or stand, SP split, SU surrender")
}

func printDeviations(w io.Writer, resolver *counting.Resolver) {
	set := resolver.StrategySet()
	count := "running count"
	if set.UsesTrueCount {
		count = "true count"
	}
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%s (%d deviations, %s)", set.Name, resolver.DeviationCount(), count)))

	rows := make([][]string, 0, resolver.DeviationCount())
	for _, d := range resolver.Deviations() {
		key, params := d.DescriptionKey()
		rows = append(rows, []string{
			d.Hand,
			d.Dealer.String(),
			string(d.Basic),
			string(d.Action),
			strconv.FormatFloat(d.Threshold, 'f', -1, 64),
			tui.Text(key, params),
		})
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("Hand", "Dealer", "Basic", "Play", "Index", "Description").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	fmt.Fprintln(w, t.Render())
}

type HouseEdgeCmd struct {
	Preset string `help:"Rules preset (defaults to the config file)"`
	All    bool   `help:"Compare every preset"`
}

func (c *HouseEdgeCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	if g.NoColor {
		tui.NoColor()
	}
	if c.All {
		printPresets(os.Stdout)
		return nil
	}
	r, presetID, err := resolveRules(cfg, c.Preset)
	if err != nil {
		return err
	}
	printHouseEdge(os.Stdout, r, presetName(presetID))
	return nil
}

func printHouseEdge(w io.Writer, r rules.Rules, name string) {
	fmt.Fprintln(w, titleStyle.Render("House edge: "+name))

	var rows [][]string
	for _, c := range rules.Breakdown(r) {
		rows = append(rows, []string{tui.Text(c.Key, c.Params), rules.FormatEdge(c.Value)})
	}
	rows = append(rows, []string{"Total", rules.FormatEdge(rules.HouseEdge(r))})

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("Rule", "Edge").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow || row == len(rows)-1 {
				return headerStyle
			}
			return cellStyle
		})
	fmt.Fprintln(w, t.Render())
}

func printPresets(w io.Writer) {
	var rows [][]string
	for _, p := range rules.Presets() {
		r := p.Rules
		soft17 := "S17"
		if r.DealerHitsSoft17 {
			soft17 = "H17"
		}
		rows = append(rows, []string{
			p.ID, p.Name, strconv.Itoa(r.DeckCount), soft17, r.PayoutLabel(),
			rules.FormatEdge(rules.HouseEdge(r)),
		})
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("Preset", "Name", "Decks", "Dealer", "Blackjack", "House edge").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	fmt.Fprintln(w, t.Render())
}

type SystemsCmd struct{}

func (c *SystemsCmd) Run(g *Globals) error {
	if g.NoColor {
		tui.NoColor()
	}
	printSystems(os.Stdout, counting.Systems())
	return nil
}

func printSystems(w io.Writer, systems []counting.System) {
	headers := []string{"ID", "Name", "Balanced", "Insurance", "BC", "PE"}
	for _, r := range tagOrder {
		headers = append(headers, r.String())
	}

	var rows [][]string
	for _, s := range systems {
		balanced := "no"
		if s.Balanced {
			balanced = "yes"
		}
		row := []string{
			string(s.ID), s.Name, balanced,
			strconv.FormatFloat(s.InsuranceIndex, 'f', -1, 64),
			fmt.Sprintf("%.2f", s.BettingCorrelation),
			fmt.Sprintf("%.2f", s.PlayingEfficiency),
		}
		for _, r := range tagOrder {
			row = append(row, fmt.Sprintf("%+d", s.Values[r]))
		}
		rows = append(rows, row)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	fmt.Fprintln(w, t.Render())
}

// resolveRules returns the configured rules, or a preset's when one is
// named.
func resolveRules(cfg *config.Config, preset string) (rules.Rules, string, error) {
	if preset == "" {
		return cfg.GameRules()
	}
	p, ok := rules.PresetByID(preset)
	if !ok {
		return rules.Rules{}, "", fmt.Errorf("unknown preset %q", preset)
	}
	return p.Rules, p.ID, nil
}

func presetName(id string) string {
	if p, ok := rules.PresetByID(id); ok {
		return p.Name
	}
	return "Custom"
}
