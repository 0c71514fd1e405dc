package optim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handcoach/handcoach/internal/model"
)

func TestAdamConvergesOnQuadratic(t *testing.T) {
	// minimize (x-3)^2
	x := model.V(0)
	opt := NewAdam([]*model.Value{x}, 0.1)

	for i := 0; i < 500; i++ {
		loss := model.Pow(model.Sub(x, model.V(3)), 2)
		model.Backward(loss)
		opt.Step()
		opt.ZeroGrad()
	}
	assert.InDelta(t, 3.0, x.Data, 1e-2)
}

func TestAdamStepMovesAgainstGradient(t *testing.T) {
	x := model.V(1)
	opt := NewAdam([]*model.Value{x}, 0.01)

	x.Grad = 2.5
	opt.Step()
	assert.Less(t, x.Data, 1.0)

	before := x.Data
	x.Grad = -2.5
	opt.Step()
	assert.Greater(t, x.Data, before)
}

func TestZeroGrad(t *testing.T) {
	a, b := model.V(1), model.V(2)
	opt := NewAdam([]*model.Value{a, b}, 0.01)
	a.Grad, b.Grad = 5, -5
	opt.ZeroGrad()
	assert.Zero(t, a.Grad)
	assert.Zero(t, b.Grad)
}

func TestGradClipping(t *testing.T) {
	a, b := model.V(0), model.V(0)
	opt := NewAdam([]*model.Value{a, b}, 0.01)
	opt.MaxGradNorm = 1.0

	a.Grad, b.Grad = 30, 40 // norm 50
	opt.clipGradNorm()

	norm := a.Grad*a.Grad + b.Grad*b.Grad
	assert.InDelta(t, 1.0, norm, 1e-9)
	// direction preserved
	assert.InDelta(t, 0.75, a.Grad/b.Grad, 1e-9)
}

func TestStepSchedule(t *testing.T) {
	s := StepSchedule{Base: 0.01, Gamma: 0.9}
	require.InDelta(t, 0.01, s.At(0), 1e-12)
	require.InDelta(t, 0.009, s.At(1), 1e-12)
	require.InDelta(t, 0.01*0.9*0.9, s.At(2), 1e-12)
}
