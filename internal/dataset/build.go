package dataset

import (
	"context"
	"fmt"
	"runtime"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/handcoach/handcoach/internal/anon"
	"github.com/handcoach/handcoach/internal/handlog"
	"github.com/handcoach/handcoach/internal/replay"
)

// BuiltExample pairs an example with the stable name it is persisted
// under.
type BuiltExample struct {
	Name    string
	Example Example
}

// BuildExamples serializes every hand at every stop turn into training
// examples. Hands are independent, so the work is fanned out across
// CPUs; output order is still deterministic because results are
// collected per hand index before flattening.
func BuildExamples(ctx context.Context, logger zerolog.Logger, hands []*handlog.Hand) ([]BuiltExample, error) {
	perHand := make([][]BuiltExample, len(hands))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, hand := range hands {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			built, err := buildHandExamples(hand)
			if err != nil {
				return fmt.Errorf("dataset: hand %s: %w", hand.GameID, err)
			}
			perHand[i] = built
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []BuiltExample
	for _, built := range perHand {
		out = append(out, built...)
	}
	logger.Info().Int("hands", len(hands)).Int("examples", len(out)).Msg("built training examples")
	return out, nil
}

func buildHandExamples(hand *handlog.Hand) ([]BuiltExample, error) {
	labels, err := anon.Assign(hand)
	if err != nil {
		return nil, err
	}

	decisions := replay.Decisions(hand)
	built := make([]BuiltExample, 0, decisions)
	for stop := 0; stop < decisions; stop++ {
		stream, err := replay.SerializeExample(hand, labels, stop)
		if err != nil {
			return nil, err
		}
		built = append(built, BuiltExample{
			Name:    fmt.Sprintf("hand_%s_%d", hand.GameID, stop),
			Example: Example{Context: stream.Body, Truth: stream.Label},
		})
	}
	return built, nil
}
