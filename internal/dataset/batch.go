package dataset

import "github.com/handcoach/handcoach/internal/vocab"

// Batch is one uniformly padded group of encoded examples. Contexts are
// left-padded to the batch's longest context: the model consumes the
// context as a causal prefix, and left padding keeps the most recent
// tokens adjacent to the generation boundary. Labels carry one
// end-of-sequence symbol after their last token and are right-padded.
type Batch struct {
	Contexts [][]int
	Labels   [][]int
}

// Batcher encodes examples and groups them into padded batches.
type Batcher struct {
	vocab     *vocab.Vocabulary
	batchSize int
}

// NewBatcher builds a Batcher over the given vocabulary.
func NewBatcher(v *vocab.Vocabulary, batchSize int) *Batcher {
	if batchSize <= 0 {
		batchSize = 1
	}
	return &Batcher{vocab: v, batchSize: batchSize}
}

// Batches encodes the examples in order and packs them into batches of
// the configured size (the final batch may be smaller).
func (b *Batcher) Batches(examples []Example) []Batch {
	encoded := make([]Encoded, len(examples))
	for i, ex := range examples {
		encoded[i] = Encoded{
			Context: b.vocab.Encode(ex.Context),
			Label:   append(b.vocab.Encode(ex.Truth), b.vocab.EOSID()),
		}
	}

	var batches []Batch
	for start := 0; start < len(encoded); start += b.batchSize {
		end := start + b.batchSize
		if end > len(encoded) {
			end = len(encoded)
		}
		batches = append(batches, b.pad(encoded[start:end]))
	}
	return batches
}

func (b *Batcher) pad(group []Encoded) Batch {
	maxContext, maxLabel := 0, 0
	for _, enc := range group {
		if len(enc.Context) > maxContext {
			maxContext = len(enc.Context)
		}
		if len(enc.Label) > maxLabel {
			maxLabel = len(enc.Label)
		}
	}

	pad := b.vocab.PadID()
	batch := Batch{
		Contexts: make([][]int, len(group)),
		Labels:   make([][]int, len(group)),
	}
	for i, enc := range group {
		ctx := make([]int, maxContext)
		for j := 0; j < maxContext-len(enc.Context); j++ {
			ctx[j] = pad
		}
		copy(ctx[maxContext-len(enc.Context):], enc.Context)
		batch.Contexts[i] = ctx

		label := make([]int, maxLabel)
		copy(label, enc.Label)
		for j := len(enc.Label); j < maxLabel; j++ {
			label[j] = pad
		}
		batch.Labels[i] = label
	}
	return batch
}
