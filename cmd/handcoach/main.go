package main

import (
	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version   kong.VersionFlag `short:"v" help:"Show version"`
	Parse     ParseCmd         `cmd:"" help:"Parse raw hand-history logs into structured hand documents"`
	Dataset   DatasetCmd       `cmd:"" help:"Build and store tokenizer-ready training examples"`
	Train     TrainCmd         `cmd:"" help:"Train the action model on stored examples"`
	Interpret InterpretCmd     `cmd:"" help:"Ask a trained model about the tracked player's last decision"`
}

func main() {
	// .env carries DATABASE_URL for the Postgres-backed example store
	_ = godotenv.Load()

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("handcoach"),
		kong.Description("Poker hand-history normalization and action-model training"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
