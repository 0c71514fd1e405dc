package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/handcoach/handcoach/internal/fileutil"
	"github.com/handcoach/handcoach/internal/randutil"
)

// Store reads and writes persisted example records.
type Store interface {
	Save(ctx context.Context, name string, ex Example) error
	Load(ctx context.Context) ([]Example, error)
}

// FileStore keeps one JSON document per example in a flat directory.
type FileStore struct {
	dir string
}

// NewFileStore creates the backing directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("dataset: creating %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// Save writes one example atomically so a concurrent Load never sees a
// partial record.
func (s *FileStore) Save(_ context.Context, name string, ex Example) error {
	data, err := json.Marshal(ex)
	if err != nil {
		return fmt.Errorf("dataset: encoding example %s: %w", name, err)
	}
	path := filepath.Join(s.dir, name+".json")
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("dataset: writing example %s: %w", name, err)
	}
	return nil
}

// Load enumerates every example record in name order. The deterministic
// enumeration matters: the seeded shuffle in SplitExamples is only
// reproducible over a stable input order.
func (s *FileStore) Load(_ context.Context) ([]Example, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("dataset: reading %s: %w", s.dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	examples := make([]Example, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			return nil, fmt.Errorf("dataset: reading example %s: %w", name, err)
		}
		var ex Example
		if err := json.Unmarshal(data, &ex); err != nil {
			return nil, fmt.Errorf("dataset: decoding example %s: %w", name, err)
		}
		examples = append(examples, ex)
	}
	return examples, nil
}

// Split is a disjoint train/test partition of a set of examples.
type Split struct {
	Train []Example
	Test  []Example
}

// SplitExamples shuffles the examples with the given seed and splits
// them by trainRatio. No example appears in both partitions, and the
// same seed over the same input always yields the same partition.
func SplitExamples(examples []Example, trainRatio float64, seed int64) Split {
	shuffled := make([]Example, len(examples))
	copy(shuffled, examples)

	rng := randutil.New(seed)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	cut := int(float64(len(shuffled)) * trainRatio)
	return Split{Train: shuffled[:cut], Test: shuffled[cut:]}
}
