// Package coach turns a raw hand record into a model-suggested action
// for the tracked player's final decision.
package coach

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/handcoach/handcoach/internal/anon"
	"github.com/handcoach/handcoach/internal/handlog"
	"github.com/handcoach/handcoach/internal/model"
	"github.com/handcoach/handcoach/internal/replay"
	"github.com/handcoach/handcoach/internal/vocab"
)

// DefaultMaxNewTokens bounds generation when the model never emits an
// end-of-sequence symbol.
const DefaultMaxNewTokens = 16

// Advice is the model's take on the tracked player's last decision in
// a hand, next to what the player actually did.
type Advice struct {
	Context   string
	Suggested string
	Actual    string
}

// Coach wraps a trained model and its vocabulary.
type Coach struct {
	logger    zerolog.Logger
	model     *model.Transformer
	vocab     *vocab.Vocabulary
	maxTokens int
}

// New builds a Coach. maxTokens <= 0 falls back to
// DefaultMaxNewTokens.
func New(logger zerolog.Logger, m *model.Transformer, v *vocab.Vocabulary, maxTokens int) *Coach {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxNewTokens
	}
	return &Coach{logger: logger, model: m, vocab: v, maxTokens: maxTokens}
}

// Interpret parses the first hand record in handText, replays it up to
// the tracked player's final decision and asks the model what to do
// there.
func (c *Coach) Interpret(handText, tracked string) (Advice, error) {
	records, err := handlog.SplitRecords(strings.NewReader(handText))
	if err != nil {
		return Advice{}, fmt.Errorf("coach: reading hand: %w", err)
	}
	if len(records) == 0 {
		return Advice{}, fmt.Errorf("coach: no hand record found")
	}

	hand, err := handlog.ParseHand(records[0], tracked)
	if err != nil {
		return Advice{}, err
	}
	labels, err := anon.Assign(hand)
	if err != nil {
		return Advice{}, err
	}

	decisions := replay.Decisions(hand)
	if decisions == 0 {
		return Advice{}, fmt.Errorf("coach: %s never acts in hand %s", tracked, hand.GameID)
	}

	stream, err := replay.SerializeExample(hand, labels, decisions-1)
	if err != nil {
		return Advice{}, err
	}

	suggested := c.generate(c.vocab.Encode(stream.Body))
	c.logger.Debug().
		Str("game_id", hand.GameID).
		Str("suggested", suggested).
		Str("actual", stream.Label).
		Msg("interpreted hand")

	return Advice{Context: stream.Body, Suggested: suggested, Actual: stream.Label}, nil
}

// generate greedily decodes tokens until the end-of-sequence symbol.
func (c *Coach) generate(context []int) string {
	input := make([]int, 0, len(context)+c.maxTokens)
	input = append(input, context...)

	var out []int
	for len(out) < c.maxTokens {
		logits := c.model.Predict(input)
		next := argmax(logits)
		if next == c.vocab.EOSID() || next == c.vocab.PadID() {
			break
		}
		out = append(out, next)
		input = append(input, next)
	}
	return c.vocab.Decode(out)
}

func argmax(logits []float64) int {
	best := 0
	for i := 1; i < len(logits); i++ {
		if logits[i] > logits[best] {
			best = i
		}
	}
	return best
}
