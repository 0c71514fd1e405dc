package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/handcoach/handcoach/cmd/handcoach/shared"
	"github.com/handcoach/handcoach/internal/dataset"
	"github.com/handcoach/handcoach/internal/model"
	"github.com/handcoach/handcoach/internal/optim"
	"github.com/handcoach/handcoach/internal/train"
)

// TrainCmd trains the action model on stored examples and writes a
// checkpoint.
type TrainCmd struct {
	Config     string `kong:"default='train.hcl',help='Training configuration file'"`
	Dir        string `kong:"default='examples',help='Directory of the file-backed example store'"`
	DSN        string `kong:"env='DATABASE_URL',help='Postgres DSN; overrides the file store when set'"`
	Checkpoint string `kong:"default='models/checkpoint.json',help='Checkpoint output path'"`
	Debug      bool   `kong:"help='Enable debug logging'"`
	Structured bool   `kong:"help='Emit JSON logs'"`
}

func (c *TrainCmd) Run() error {
	logger := shared.SetupLogger(c.Debug, c.Structured)
	ctx := shared.SetupSignalHandler(logger)

	cfg, err := train.LoadConfig(c.Config)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	store, closeStore, err := openStore(ctx, logger, c.Dir, c.DSN)
	if err != nil {
		return err
	}
	defer closeStore()

	examples, err := store.Load(ctx)
	if err != nil {
		return err
	}
	if len(examples) == 0 {
		return fmt.Errorf("example store is empty, run dataset build first")
	}

	v, err := vocabByName(cfg.Training.Vocabulary)
	if err != nil {
		return err
	}

	split := dataset.SplitExamples(examples, cfg.Training.TrainRatio, cfg.Training.Seed)
	batcher := dataset.NewBatcher(v, cfg.Training.BatchSize)
	trainBatches := batcher.Batches(split.Train)
	testBatches := batcher.Batches(split.Test)
	logger.Info().
		Int("train_examples", len(split.Train)).
		Int("test_examples", len(split.Test)).
		Int("vocab_size", v.Size()).
		Msg("prepared dataset")

	m, err := model.New(model.Config{
		VocabSize: v.Size(),
		Embed:     cfg.Model.Embed,
		Heads:     cfg.Model.Heads,
		Layers:    cfg.Model.Layers,
		Hidden:    cfg.Model.Hidden,
		MaxSeq:    cfg.Model.MaxSeq,
	}, cfg.Training.Seed)
	if err != nil {
		return err
	}

	opt := optim.NewAdam(m.Parameters(), cfg.Training.LearningRate)
	sched := optim.StepSchedule{Base: cfg.Training.LearningRate, Gamma: cfg.Training.Gamma}
	trainer := train.New(logger, m, opt, sched, v.PadID())

	_, err = trainer.Run(ctx, trainBatches, testBatches, cfg.Training.Epochs)
	if errors.Is(err, context.Canceled) {
		logger.Warn().Msg("training interrupted, saving partial checkpoint")
	} else if err != nil {
		return err
	}

	if err := m.Save(c.Checkpoint); err != nil {
		return err
	}
	logger.Info().Str("path", c.Checkpoint).Msg("saved checkpoint")
	return nil
}
