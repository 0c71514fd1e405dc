// Package train runs the teacher-forced training loop over batched
// examples.
package train

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/handcoach/handcoach/internal/dataset"
	"github.com/handcoach/handcoach/internal/model"
	"github.com/handcoach/handcoach/internal/optim"
)

// EpochStats records one epoch's averaged loss and masked accuracies.
// Accuracy only counts label positions whose target is a real token;
// padding positions are ignored.
type EpochStats struct {
	Epoch         int
	Loss          float64
	TrainAccuracy float64
	TestAccuracy  float64
	LR            float64
}

// Trainer owns the model, optimizer and schedule for one training run.
type Trainer struct {
	logger zerolog.Logger
	model  *model.Transformer
	opt    *optim.Adam
	sched  optim.StepSchedule
	padID  int
}

// New builds a Trainer. padID marks label positions excluded from
// accuracy.
func New(logger zerolog.Logger, m *model.Transformer, opt *optim.Adam, sched optim.StepSchedule, padID int) *Trainer {
	return &Trainer{logger: logger, model: m, opt: opt, sched: sched, padID: padID}
}

// Run trains for the given number of epochs, evaluating on the test
// batches after each one. It stops early if the context is canceled.
func (t *Trainer) Run(ctx context.Context, trainBatches, testBatches []dataset.Batch, epochs int) ([]EpochStats, error) {
	stats := make([]EpochStats, 0, epochs)

	for epoch := 0; epoch < epochs; epoch++ {
		t.opt.LR = t.sched.At(epoch)
		start := time.Now()

		totalLoss := 0.0
		correct, total := 0, 0
		for _, batch := range trainBatches {
			if err := ctx.Err(); err != nil {
				return stats, err
			}
			loss, c, n := t.trainBatch(batch)
			totalLoss += loss
			correct += c
			total += n
		}

		testCorrect, testTotal := 0, 0
		for _, batch := range testBatches {
			if err := ctx.Err(); err != nil {
				return stats, err
			}
			c, n := t.evalBatch(batch)
			testCorrect += c
			testTotal += n
		}

		es := EpochStats{
			Epoch: epoch + 1,
			Loss:  totalLoss / float64(max(len(trainBatches), 1)),
			LR:    t.opt.LR,
		}
		if total > 0 {
			es.TrainAccuracy = 100 * float64(correct) / float64(total)
		}
		if testTotal > 0 {
			es.TestAccuracy = 100 * float64(testCorrect) / float64(testTotal)
		}
		stats = append(stats, es)

		t.logger.Info().
			Int("epoch", es.Epoch).
			Int("epochs", epochs).
			Float64("loss", es.Loss).
			Float64("train_acc", es.TrainAccuracy).
			Float64("test_acc", es.TestAccuracy).
			Float64("lr", es.LR).
			Dur("elapsed", time.Since(start)).
			Msg("epoch complete")
	}
	return stats, nil
}

// trainBatch runs one teacher-forced optimization step. For every
// label position the model predicts from the context plus the true
// tokens before that position; the true token is then appended
// regardless of the prediction.
func (t *Trainer) trainBatch(batch dataset.Batch) (float64, int, int) {
	var losses []*model.Value
	correct, total := 0, 0

	for i := range batch.Contexts {
		label := batch.Labels[i]
		input := make([]int, 0, len(batch.Contexts[i])+len(label))
		input = append(input, batch.Contexts[i]...)

		for _, target := range label {
			logits := t.model.Forward(input)
			probs := model.Softmax(logits)
			losses = append(losses, model.Neg(model.Log(probs[target])))

			if target != t.padID {
				if argmaxValues(logits) == target {
					correct++
				}
				total++
			}
			input = append(input, target)
		}
	}

	loss := model.V(0)
	for _, lt := range losses {
		loss = model.Add(loss, lt)
	}
	loss = model.Mul(model.V(1/float64(len(losses))), loss)

	model.Backward(loss)
	t.opt.Step()
	t.opt.ZeroGrad()

	return loss.Data, correct, total
}

// evalBatch measures masked accuracy without a backward pass.
func (t *Trainer) evalBatch(batch dataset.Batch) (int, int) {
	correct, total := 0, 0
	for i := range batch.Contexts {
		label := batch.Labels[i]
		input := make([]int, 0, len(batch.Contexts[i])+len(label))
		input = append(input, batch.Contexts[i]...)

		for _, target := range label {
			logits := t.model.Predict(input)
			if target != t.padID {
				if argmaxFloats(logits) == target {
					correct++
				}
				total++
			}
			input = append(input, target)
		}
	}
	return correct, total
}

func argmaxValues(logits []*model.Value) int {
	best := 0
	for i := 1; i < len(logits); i++ {
		if logits[i].Data > logits[best].Data {
			best = i
		}
	}
	return best
}

func argmaxFloats(logits []float64) int {
	best := 0
	for i := 1; i < len(logits); i++ {
		if logits[i] > logits[best] {
			best = i
		}
	}
	return best
}
