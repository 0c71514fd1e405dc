package handlog

import (
	"errors"
	"math"
	"strconv"

	"github.com/rs/zerolog"
)

// IngestResult reports the outcome of a batch parse.
type IngestResult struct {
	Hands    []*Hand
	Parsed   int
	Failed   int
	Failures []*ParseError
}

// ParseAll parses every record, continuing past individual parse errors.
// Failures are logged and counted; a malformed hand never aborts the
// batch.
func ParseAll(logger zerolog.Logger, records []Record, tracked string) IngestResult {
	var res IngestResult
	for _, rec := range records {
		hand, err := ParseHand(rec, tracked)
		if err != nil {
			res.Failed++
			var perr *ParseError
			if errors.As(err, &perr) {
				res.Failures = append(res.Failures, perr)
				logger.Warn().
					Int("line", perr.Line).
					Str("section", perr.Section).
					Str("reason", perr.Reason).
					Msg("skipping unparseable hand record")
			} else {
				logger.Warn().Err(err).Msg("skipping unparseable hand record")
			}
			continue
		}
		res.Parsed++
		res.Hands = append(res.Hands, hand)
	}
	return res
}

// ValidateConservation checks that chips are conserved across the hand:
// the starting stacks must equal the finishing stacks plus rake and fees,
// within tol.
func ValidateConservation(h *Hand, tol float64) error {
	var start, finish float64
	for _, p := range h.Players {
		start += p.Stack
	}
	for _, s := range h.FinishingStacks {
		finish += s
	}
	diff := start - (finish + h.Rake + h.Fee)
	if math.Abs(diff) > tol {
		return &ParseError{Section: sectionSummary,
			Reason: "chip conservation violated by " + strconv.FormatFloat(diff, 'f', -1, 64)}
	}
	return nil
}
