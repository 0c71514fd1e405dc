package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/handcoach/handcoach/cmd/handcoach/shared"
	"github.com/handcoach/handcoach/internal/fileutil"
	"github.com/handcoach/handcoach/internal/handdoc"
	"github.com/handcoach/handcoach/internal/handlog"
)

// ParseCmd parses a raw hand-history log into structured TOML hand
// documents.
type ParseCmd struct {
	Input      string `kong:"arg,help='Hand-history log file'"`
	Tracked    string `kong:"required,help='Name of the player whose cards the log reveals'"`
	Out        string `kong:"default='hands',help='Output directory for hand documents'"`
	Debug      bool   `kong:"help='Enable debug logging'"`
	Structured bool   `kong:"help='Emit JSON logs'"`
}

func (c *ParseCmd) Run() error {
	logger := shared.SetupLogger(c.Debug, c.Structured)

	hands, err := ingestLog(logger, c.Input, c.Tracked)
	if err != nil {
		return err
	}
	if len(hands) == 0 {
		return fmt.Errorf("no parseable hands in %s", c.Input)
	}

	if err := os.MkdirAll(c.Out, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	for _, hand := range hands {
		data, err := handdoc.EncodeToBytes(handdoc.FromHand(hand))
		if err != nil {
			return err
		}
		path := filepath.Join(c.Out, fmt.Sprintf("hand_%s.toml", hand.GameID))
		if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
			return err
		}
	}

	logger.Info().Int("hands", len(hands)).Str("dir", c.Out).Msg("wrote hand documents")
	return nil
}

// ingestLog splits and parses a log file, warning on hands whose chips
// do not balance.
func ingestLog(logger zerolog.Logger, path, tracked string) ([]*handlog.Hand, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening log: %w", err)
	}
	defer f.Close()

	records, err := handlog.SplitRecords(f)
	if err != nil {
		return nil, fmt.Errorf("reading log: %w", err)
	}

	res := handlog.ParseAll(logger, records, tracked)
	logger.Info().
		Int("records", len(records)).
		Int("parsed", res.Parsed).
		Int("failed", res.Failed).
		Msg("parsed hand records")

	for _, hand := range res.Hands {
		if err := handlog.ValidateConservation(hand, 0.01); err != nil {
			logger.Warn().Str("game_id", hand.GameID).Err(err).Msg("chip totals do not balance")
		}
	}
	return res.Hands, nil
}
