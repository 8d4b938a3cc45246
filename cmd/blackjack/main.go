package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Globals

	Version   kong.VersionFlag `short:"v" help:"Show version"`
	Play      PlayCmd          `cmd:"" default:"1" help:"Play at the table, by hand or with the AI player"`
	Simulate  SimulateCmd      `cmd:"" help:"Measure the AI player over many shoes"`
	Strategy  StrategyCmd      `cmd:"" help:"Print the basic strategy chart for a set of rules"`
	HouseEdge HouseEdgeCmd     `cmd:"house-edge" help:"Break down the house edge of a set of rules"`
	Systems   SystemsCmd       `cmd:"" help:"List the card counting systems"`
}

// Globals are the flags shared by every command.
type Globals struct {
	Config   string `short:"c" help:"HCL configuration file" default:"blackjack.hcl" type:"path"`
	LogLevel string `help:"Log level (debug, info, warn, error); overrides the config file"`
	NoColor  bool   `help:"Disable colours"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("blackjack"),
		kong.Description("Blackjack trainer with basic strategy, card counting and an AI player"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
