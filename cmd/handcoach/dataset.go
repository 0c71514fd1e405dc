package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/handcoach/handcoach/cmd/handcoach/shared"
	"github.com/handcoach/handcoach/internal/dataset"
	"github.com/handcoach/handcoach/internal/vocab"
)

// DatasetCmd groups example-store operations.
type DatasetCmd struct {
	Build DatasetBuildCmd `cmd:"" help:"Serialize parsed hands into stored training examples"`
}

// DatasetBuildCmd builds one example per tracked decision in every hand
// of a log and saves them to the configured store.
type DatasetBuildCmd struct {
	Input      string `kong:"arg,help='Hand-history log file'"`
	Tracked    string `kong:"required,help='Name of the player whose cards the log reveals'"`
	Dir        string `kong:"default='examples',help='Directory for the file-backed example store'"`
	DSN        string `kong:"env='DATABASE_URL',help='Postgres DSN; overrides the file store when set'"`
	Debug      bool   `kong:"help='Enable debug logging'"`
	Structured bool   `kong:"help='Emit JSON logs'"`
}

func (c *DatasetBuildCmd) Run() error {
	logger := shared.SetupLogger(c.Debug, c.Structured)
	ctx := shared.SetupSignalHandler(logger)

	hands, err := ingestLog(logger, c.Input, c.Tracked)
	if err != nil {
		return err
	}

	built, err := dataset.BuildExamples(ctx, logger, hands)
	if err != nil {
		return err
	}
	if len(built) == 0 {
		return fmt.Errorf("no tracked decisions found in %s", c.Input)
	}

	store, closeStore, err := openStore(ctx, logger, c.Dir, c.DSN)
	if err != nil {
		return err
	}
	defer closeStore()

	for _, b := range built {
		if err := store.Save(ctx, b.Name, b.Example); err != nil {
			return err
		}
	}
	logger.Info().Int("examples", len(built)).Msg("stored training examples")
	return nil
}

// openStore picks the Postgres store when a DSN is configured and the
// flat-file store otherwise.
func openStore(ctx context.Context, logger zerolog.Logger, dir, dsn string) (dataset.Store, func(), error) {
	if dsn != "" {
		pg, err := dataset.OpenPG(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		logger.Debug().Msg("using postgres example store")
		return pg, pg.Close, nil
	}
	fs, err := dataset.NewFileStore(dir)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug().Str("dir", dir).Msg("using file example store")
	return fs, func() {}, nil
}

// vocabByName resolves a configured vocabulary name.
func vocabByName(name string) (*vocab.Vocabulary, error) {
	switch name {
	case "long":
		return vocab.Long, nil
	case "short":
		return vocab.Short, nil
	default:
		return nil, fmt.Errorf("unknown vocabulary %q (want long or short)", name)
	}
}
