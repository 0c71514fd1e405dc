package model

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{VocabSize: 11, Embed: 8, Heads: 2, Layers: 1, Hidden: 16, MaxSeq: 12}
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, err := New(Config{VocabSize: 10, Embed: 7, Heads: 2, Layers: 1, Hidden: 8, MaxSeq: 8}, 1)
	require.Error(t, err)

	_, err = New(Config{}, 1)
	require.Error(t, err)
}

func TestForwardShapeAndDeterminism(t *testing.T) {
	m1, err := New(testConfig(), 7)
	require.NoError(t, err)
	m2, err := New(testConfig(), 7)
	require.NoError(t, err)

	tokens := []int{3, 1, 4, 1, 5}
	got1 := m1.Predict(tokens)
	got2 := m2.Predict(tokens)

	require.Len(t, got1, testConfig().VocabSize)
	assert.Equal(t, got1, got2, "same seed must give identical logits")

	m3, err := New(testConfig(), 8)
	require.NoError(t, err)
	assert.NotEqual(t, got1, m3.Predict(tokens), "different seeds must differ")
}

func TestForwardClampsToWindow(t *testing.T) {
	m, err := New(testConfig(), 3)
	require.NoError(t, err)

	long := make([]int, 30)
	for i := range long {
		long[i] = i % testConfig().VocabSize
	}
	tail := long[len(long)-testConfig().MaxSeq:]

	assert.Equal(t, m.Predict(tail), m.Predict(long))
}

func TestGradientsFlowToEmbeddings(t *testing.T) {
	m, err := New(testConfig(), 5)
	require.NoError(t, err)

	logits := m.Forward([]int{2, 9})
	loss := Neg(Log(Softmax(logits)[4]))
	Backward(loss)

	nonZero := 0
	for _, p := range m.Parameters() {
		if p.Grad != 0 {
			nonZero++
		}
	}
	assert.Greater(t, nonZero, len(m.Parameters())/4, "most parameters should receive gradient")

	// the embedding row of an unused token stays untouched
	for _, v := range m.state["wte"][7] {
		assert.Zero(t, v.Grad)
	}
}

func TestSinusoidalTable(t *testing.T) {
	table := sinusoidalTable(4, 6)
	require.Len(t, table, 4)

	// position 0: sin(0)=0 on even dims, cos(0)=1 on odd dims
	for i := 0; i < 6; i += 2 {
		assert.Zero(t, table[0][i])
		assert.InDelta(t, 1.0, table[0][i+1], 1e-12)
	}
	assert.InDelta(t, math.Sin(1), table[1][0], 1e-12)
	assert.InDelta(t, math.Cos(1), table[1][1], 1e-12)
}

func TestCheckpointRoundTrip(t *testing.T) {
	m, err := New(testConfig(), 11)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, m.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, m.Config(), loaded.Config())

	tokens := []int{0, 10, 5, 5}
	assert.Equal(t, m.Predict(tokens), loaded.Predict(tokens))
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}
