package main

import (
	"fmt"
	"os"

	"github.com/handcoach/handcoach/cmd/handcoach/shared"
	"github.com/handcoach/handcoach/internal/coach"
	"github.com/handcoach/handcoach/internal/model"
)

// InterpretCmd replays a hand to the tracked player's last decision and
// prints what the trained model would do there.
type InterpretCmd struct {
	Hand        string `kong:"arg,help='File holding one raw hand record'"`
	Tracked     string `kong:"required,help='Name of the player whose cards the log reveals'"`
	Checkpoint  string `kong:"default='models/checkpoint.json',help='Trained model checkpoint'"`
	Vocabulary  string `kong:"default='long',help='Vocabulary the model was trained with (long or short)'"`
	MaxTokens   int    `kong:"default='16',help='Generation cap when the model never stops'"`
	ShowContext bool   `kong:"help='Print the serialized replay context'"`
	Debug       bool   `kong:"help='Enable debug logging'"`
	Structured  bool   `kong:"help='Emit JSON logs'"`
}

func (c *InterpretCmd) Run() error {
	logger := shared.SetupLogger(c.Debug, c.Structured)

	v, err := vocabByName(c.Vocabulary)
	if err != nil {
		return err
	}
	m, err := model.Load(c.Checkpoint)
	if err != nil {
		return err
	}
	if m.Config().VocabSize != v.Size() {
		return fmt.Errorf("checkpoint vocab size %d does not match %s vocabulary (%d symbols)",
			m.Config().VocabSize, c.Vocabulary, v.Size())
	}

	handText, err := os.ReadFile(c.Hand)
	if err != nil {
		return fmt.Errorf("reading hand: %w", err)
	}

	advice, err := coach.New(logger, m, v, c.MaxTokens).Interpret(string(handText), c.Tracked)
	if err != nil {
		return err
	}

	if c.ShowContext {
		fmt.Println(advice.Context)
	}
	fmt.Printf("model suggests: %s\n", advice.Suggested)
	fmt.Printf("player did:     %s\n", advice.Actual)
	return nil
}
