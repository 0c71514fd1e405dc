package train

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handcoach/handcoach/internal/dataset"
	"github.com/handcoach/handcoach/internal/model"
	"github.com/handcoach/handcoach/internal/optim"
)

func TestLoadConfigMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.hcl"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigMergesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "train.hcl")
	content := `
model {
  embed = 32
  heads = 2
}

training {
  epochs     = 3
  vocabulary = "short"
}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 32, cfg.Model.Embed)
	assert.Equal(t, 2, cfg.Model.Heads)
	assert.Equal(t, DefaultConfig().Model.Layers, cfg.Model.Layers)
	assert.Equal(t, 3, cfg.Training.Epochs)
	assert.Equal(t, "short", cfg.Training.Vocabulary)
	assert.Equal(t, DefaultConfig().Training.LearningRate, cfg.Training.LearningRate)
	require.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Model.Heads = 5 // 64 % 5 != 0
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Training.Vocabulary = "tiny"
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Training.TrainRatio = 1.0
	require.Error(t, cfg.Validate())
}

func tinyTrainer(t *testing.T, lr float64) *Trainer {
	t.Helper()
	m, err := model.New(model.Config{
		VocabSize: 6, Embed: 8, Heads: 2, Layers: 1, Hidden: 16, MaxSeq: 8,
	}, 1)
	require.NoError(t, err)
	opt := optim.NewAdam(m.Parameters(), lr)
	return New(zerolog.Nop(), m, opt, optim.StepSchedule{Base: lr, Gamma: 1.0}, 0)
}

func TestRunLearnsFixedSequence(t *testing.T) {
	tr := tinyTrainer(t, 0.05)

	batch := dataset.Batch{
		Contexts: [][]int{{1, 2}},
		Labels:   [][]int{{3, 4}},
	}
	batches := []dataset.Batch{batch}

	stats, err := tr.Run(context.Background(), batches, batches, 30)
	require.NoError(t, err)
	require.Len(t, stats, 30)

	assert.Less(t, stats[len(stats)-1].Loss, stats[0].Loss, "loss should fall while memorizing one sequence")
	assert.Equal(t, 100.0, stats[len(stats)-1].TrainAccuracy)
	assert.Equal(t, 100.0, stats[len(stats)-1].TestAccuracy)
}

func TestRunIgnoresPadInAccuracy(t *testing.T) {
	tr := tinyTrainer(t, 0.05)

	// second label position is padding and must not count
	batch := dataset.Batch{
		Contexts: [][]int{{1}},
		Labels:   [][]int{{3, 0}},
	}
	stats, err := tr.Run(context.Background(), []dataset.Batch{batch}, nil, 30)
	require.NoError(t, err)

	last := stats[len(stats)-1]
	assert.Equal(t, 100.0, last.TrainAccuracy, "one real target, eventually predicted")
	assert.Zero(t, last.TestAccuracy)
}

func TestRunStopsOnCanceledContext(t *testing.T) {
	tr := tinyTrainer(t, 0.01)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	batch := dataset.Batch{Contexts: [][]int{{1}}, Labels: [][]int{{2}}}
	stats, err := tr.Run(ctx, []dataset.Batch{batch}, nil, 5)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, stats)
}

func TestScheduleDecaysLR(t *testing.T) {
	m, err := model.New(model.Config{
		VocabSize: 6, Embed: 8, Heads: 2, Layers: 1, Hidden: 16, MaxSeq: 8,
	}, 1)
	require.NoError(t, err)
	opt := optim.NewAdam(m.Parameters(), 0.01)
	tr := New(zerolog.Nop(), m, opt, optim.StepSchedule{Base: 0.01, Gamma: 0.5}, 0)

	batch := dataset.Batch{Contexts: [][]int{{1}}, Labels: [][]int{{2}}}
	stats, err := tr.Run(context.Background(), []dataset.Batch{batch}, nil, 3)
	require.NoError(t, err)
	require.Len(t, stats, 3)
	assert.InDelta(t, 0.01, stats[0].LR, 1e-12)
	assert.InDelta(t, 0.005, stats[1].LR, 1e-12)
	assert.InDelta(t, 0.0025, stats[2].LR, 1e-12)
}
