package model

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/handcoach/handcoach/internal/fileutil"
)

const checkpointVersion = 1

// Checkpoint is the on-disk form of a trained model: the config it was
// built with plus every weight matrix as plain floats.
type Checkpoint struct {
	Version   int                    `json:"version"`
	CreatedAt string                 `json:"created_at"`
	Config    Config                 `json:"config"`
	State     map[string][][]float64 `json:"state"`
}

// Save writes the model to path atomically so a crash mid-write never
// leaves a truncated checkpoint behind.
func (m *Transformer) Save(path string) error {
	ckpt := Checkpoint{
		Version:   checkpointVersion,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Config:    m.cfg,
		State:     exportState(m.state),
	}
	data, err := json.MarshalIndent(ckpt, "", "  ")
	if err != nil {
		return fmt.Errorf("model: encoding checkpoint: %w", err)
	}
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("model: writing checkpoint %s: %w", path, err)
	}
	return nil
}

// Load restores a model from a checkpoint written by Save.
func Load(path string) (*Transformer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("model: reading checkpoint %s: %w", path, err)
	}
	var ckpt Checkpoint
	if err := json.Unmarshal(data, &ckpt); err != nil {
		return nil, fmt.Errorf("model: decoding checkpoint %s: %w", path, err)
	}
	if ckpt.Version != checkpointVersion {
		return nil, fmt.Errorf("model: unsupported checkpoint version %d", ckpt.Version)
	}
	if err := ckpt.Config.validate(); err != nil {
		return nil, err
	}

	state, err := importState(ckpt.State)
	if err != nil {
		return nil, fmt.Errorf("model: checkpoint %s: %w", path, err)
	}
	return &Transformer{
		cfg:    ckpt.Config,
		state:  state,
		params: collectParams(state),
		pos:    sinusoidalTable(ckpt.Config.MaxSeq, ckpt.Config.Embed),
	}, nil
}

func exportState(state map[string][][]*Value) map[string][][]float64 {
	out := make(map[string][][]float64, len(state))
	for name, mat := range state {
		rows := make([][]float64, len(mat))
		for i, row := range mat {
			r := make([]float64, len(row))
			for j, v := range row {
				r[j] = v.Data
			}
			rows[i] = r
		}
		out[name] = rows
	}
	return out
}

func importState(src map[string][][]float64) (map[string][][]*Value, error) {
	if len(src) == 0 {
		return nil, fmt.Errorf("empty state")
	}
	out := make(map[string][][]*Value, len(src))
	for name, mat := range src {
		rows := make([][]*Value, len(mat))
		for i, row := range mat {
			r := make([]*Value, len(row))
			for j, v := range row {
				r[j] = V(v)
			}
			rows[i] = r
		}
		out[name] = rows
	}
	return out, nil
}
