// Package dataset persists (context, truth) training examples, splits
// them deterministically into train/test partitions and assembles
// uniformly padded batches for the sequence model.
package dataset

// Example is one persisted training/inference unit: the raw
// pre-tokenization text of a truncated token stream and the decision
// the model must predict. Field names are part of the on-disk format.
type Example struct {
	Context string `json:"context"`
	Truth   string `json:"truth"`
}

// Encoded is an Example after vocabulary encoding.
type Encoded struct {
	Context []int
	Label   []int
}
