// Package optim provides the Adam optimizer and learning-rate
// scheduling used by the training loop.
package optim

import (
	"math"

	"github.com/handcoach/handcoach/internal/model"
)

// Adam updates parameters from their accumulated gradients using
// bias-corrected first and second moments.
type Adam struct {
	LR          float64
	Beta1       float64
	Beta2       float64
	Eps         float64
	MaxGradNorm float64 // global L2 clip, 0 disables

	params []*model.Value
	m      []float64
	v      []float64
	step   int
}

// NewAdam creates an optimizer over the given parameters with standard
// defaults.
func NewAdam(params []*model.Value, lr float64) *Adam {
	return &Adam{
		LR:          lr,
		Beta1:       0.9,
		Beta2:       0.999,
		Eps:         1e-8,
		MaxGradNorm: 1.0,
		params:      params,
		m:           make([]float64, len(params)),
		v:           make([]float64, len(params)),
	}
}

// Step applies one update. Gradients must already be accumulated on the
// parameters; call ZeroGrad afterwards before the next backward pass.
func (opt *Adam) Step() {
	opt.step++

	if opt.MaxGradNorm > 0 {
		opt.clipGradNorm()
	}

	bc1 := 1 - math.Pow(opt.Beta1, float64(opt.step))
	bc2 := 1 - math.Pow(opt.Beta2, float64(opt.step))

	for i, p := range opt.params {
		g := p.Grad
		opt.m[i] = opt.Beta1*opt.m[i] + (1-opt.Beta1)*g
		opt.v[i] = opt.Beta2*opt.v[i] + (1-opt.Beta2)*g*g

		mHat := opt.m[i] / bc1
		vHat := opt.v[i] / bc2
		p.Data -= opt.LR * mHat / (math.Sqrt(vHat) + opt.Eps)
	}
}

// ZeroGrad clears every parameter gradient.
func (opt *Adam) ZeroGrad() {
	for _, p := range opt.params {
		p.Grad = 0
	}
}

func (opt *Adam) clipGradNorm() {
	total := 0.0
	for _, p := range opt.params {
		total += p.Grad * p.Grad
	}
	total = math.Sqrt(total)
	if total <= opt.MaxGradNorm {
		return
	}
	scale := opt.MaxGradNorm / total
	for _, p := range opt.params {
		p.Grad *= scale
	}
}

// StepSchedule decays the learning rate geometrically per epoch:
// lr(epoch) = base * gamma^epoch.
type StepSchedule struct {
	Base  float64
	Gamma float64
}

// At returns the learning rate for the given zero-based epoch.
func (s StepSchedule) At(epoch int) float64 {
	return s.Base * math.Pow(s.Gamma, float64(epoch))
}
