package train

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config represents the complete training configuration
type Config struct {
	Model    ModelSettings    `hcl:"model,block"`
	Training TrainingSettings `hcl:"training,block"`
}

// ModelSettings contains the transformer hyperparameters
type ModelSettings struct {
	Embed  int `hcl:"embed,optional"`
	Heads  int `hcl:"heads,optional"`
	Layers int `hcl:"layers,optional"`
	Hidden int `hcl:"hidden,optional"`
	MaxSeq int `hcl:"max_seq,optional"`
}

// TrainingSettings contains optimizer and loop configuration
type TrainingSettings struct {
	Epochs       int     `hcl:"epochs,optional"`
	BatchSize    int     `hcl:"batch_size,optional"`
	LearningRate float64 `hcl:"learning_rate,optional"`
	Gamma        float64 `hcl:"gamma,optional"`
	TrainRatio   float64 `hcl:"train_ratio,optional"`
	Seed         int64   `hcl:"seed,optional"`
	Vocabulary   string  `hcl:"vocabulary,optional"`
}

// DefaultConfig returns default training configuration
func DefaultConfig() *Config {
	return &Config{
		Model: ModelSettings{
			Embed:  64,
			Heads:  4,
			Layers: 2,
			Hidden: 256,
			MaxSeq: 512,
		},
		Training: TrainingSettings{
			Epochs:       10,
			BatchSize:    16,
			LearningRate: 0.001,
			Gamma:        0.9,
			TrainRatio:   0.8,
			Seed:         42,
			Vocabulary:   "long",
		},
	}
}

// LoadConfig loads training configuration from an HCL file. A missing
// file yields the defaults.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	defaults := DefaultConfig()
	if config.Model.Embed == 0 {
		config.Model.Embed = defaults.Model.Embed
	}
	if config.Model.Heads == 0 {
		config.Model.Heads = defaults.Model.Heads
	}
	if config.Model.Layers == 0 {
		config.Model.Layers = defaults.Model.Layers
	}
	if config.Model.Hidden == 0 {
		config.Model.Hidden = defaults.Model.Hidden
	}
	if config.Model.MaxSeq == 0 {
		config.Model.MaxSeq = defaults.Model.MaxSeq
	}
	if config.Training.Epochs == 0 {
		config.Training.Epochs = defaults.Training.Epochs
	}
	if config.Training.BatchSize == 0 {
		config.Training.BatchSize = defaults.Training.BatchSize
	}
	if config.Training.LearningRate == 0 {
		config.Training.LearningRate = defaults.Training.LearningRate
	}
	if config.Training.Gamma == 0 {
		config.Training.Gamma = defaults.Training.Gamma
	}
	if config.Training.TrainRatio == 0 {
		config.Training.TrainRatio = defaults.Training.TrainRatio
	}
	if config.Training.Seed == 0 {
		config.Training.Seed = defaults.Training.Seed
	}
	if config.Training.Vocabulary == "" {
		config.Training.Vocabulary = defaults.Training.Vocabulary
	}

	return &config, nil
}

// Validate validates the training configuration
func (c *Config) Validate() error {
	if c.Model.Embed < 1 {
		return fmt.Errorf("embed dim must be positive")
	}
	if c.Model.Heads < 1 || c.Model.Embed%c.Model.Heads != 0 {
		return fmt.Errorf("embed dim %d must be divisible by heads %d", c.Model.Embed, c.Model.Heads)
	}
	if c.Model.Layers < 1 {
		return fmt.Errorf("layers must be positive")
	}
	if c.Model.MaxSeq < 2 {
		return fmt.Errorf("max_seq must be at least 2")
	}
	if c.Training.Epochs < 1 {
		return fmt.Errorf("epochs must be positive")
	}
	if c.Training.BatchSize < 1 {
		return fmt.Errorf("batch_size must be positive")
	}
	if c.Training.LearningRate <= 0 {
		return fmt.Errorf("learning_rate must be positive")
	}
	if c.Training.Gamma <= 0 || c.Training.Gamma > 1 {
		return fmt.Errorf("gamma must be in (0, 1]")
	}
	if c.Training.TrainRatio <= 0 || c.Training.TrainRatio >= 1 {
		return fmt.Errorf("train_ratio must be in (0, 1)")
	}
	if c.Training.Vocabulary != "long" && c.Training.Vocabulary != "short" {
		return fmt.Errorf("vocabulary must be long or short, got %q", c.Training.Vocabulary)
	}
	return nil
}
