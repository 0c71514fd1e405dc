package model

import (
	"fmt"
	"math"
	rand "math/rand/v2"
	"sort"

	"github.com/handcoach/handcoach/internal/randutil"
)

// Config holds the transformer hyperparameters.
type Config struct {
	VocabSize int `json:"vocab_size"`
	Embed     int `json:"embed"`
	Heads     int `json:"heads"`
	Layers    int `json:"layers"`
	Hidden    int `json:"hidden"`
	MaxSeq    int `json:"max_seq"`
}

func (c Config) validate() error {
	if c.VocabSize < 1 || c.Embed < 1 || c.Heads < 1 || c.Layers < 1 || c.Hidden < 1 || c.MaxSeq < 2 {
		return fmt.Errorf("model: invalid config %+v", c)
	}
	if c.Embed%c.Heads != 0 {
		return fmt.Errorf("model: embed dim %d not divisible by %d heads", c.Embed, c.Heads)
	}
	return nil
}

// Transformer is a decoder-only causal sequence model. Attention at
// position t only reads positions <= t, so no explicit mask tensor is
// needed. Positions carry fixed sinusoidal encodings and token
// embeddings are scaled by sqrt(embed dim) before the sum.
type Transformer struct {
	cfg    Config
	state  map[string][][]*Value
	params []*Value
	pos    [][]float64
}

const initRange = 0.1

// New builds a transformer with freshly initialized weights. The same
// seed always yields the same weights.
func New(cfg Config, seed int64) (*Transformer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	rng := randutil.New(seed)

	state := map[string][][]*Value{
		"wte":     uniformMatrix(rng, cfg.VocabSize, cfg.Embed),
		"lm_head": uniformMatrix(rng, cfg.VocabSize, cfg.Embed),
	}
	for li := 0; li < cfg.Layers; li++ {
		state[layerKey(li, "attn_wq")] = normalMatrix(rng, cfg.Embed, cfg.Embed)
		state[layerKey(li, "attn_wk")] = normalMatrix(rng, cfg.Embed, cfg.Embed)
		state[layerKey(li, "attn_wv")] = normalMatrix(rng, cfg.Embed, cfg.Embed)
		state[layerKey(li, "attn_wo")] = normalMatrix(rng, cfg.Embed, cfg.Embed)
		state[layerKey(li, "mlp_fc1")] = normalMatrix(rng, cfg.Hidden, cfg.Embed)
		state[layerKey(li, "mlp_fc2")] = normalMatrix(rng, cfg.Embed, cfg.Hidden)
	}

	return &Transformer{
		cfg:    cfg,
		state:  state,
		params: collectParams(state),
		pos:    sinusoidalTable(cfg.MaxSeq, cfg.Embed),
	}, nil
}

// Config returns the hyperparameters the model was built with.
func (m *Transformer) Config() Config {
	return m.cfg
}

// Parameters returns every trainable scalar, in a stable order.
func (m *Transformer) Parameters() []*Value {
	return m.params
}

// Forward runs the full sequence through the model and returns the
// logits at the last position. Sequences longer than the position
// table keep only their most recent MaxSeq tokens.
func (m *Transformer) Forward(tokens []int) []*Value {
	if len(tokens) > m.cfg.MaxSeq {
		tokens = tokens[len(tokens)-m.cfg.MaxSeq:]
	}
	n := len(tokens)

	x := make([][]*Value, n)
	for pos, tok := range tokens {
		x[pos] = rmsnorm(m.embed(tok, pos))
	}

	headDim := m.cfg.Embed / m.cfg.Heads
	scale := V(1 / math.Sqrt(float64(headDim)))

	for li := 0; li < m.cfg.Layers; li++ {
		wq := m.state[layerKey(li, "attn_wq")]
		wk := m.state[layerKey(li, "attn_wk")]
		wv := m.state[layerKey(li, "attn_wv")]
		wo := m.state[layerKey(li, "attn_wo")]

		qs := make([][]*Value, n)
		ks := make([][]*Value, n)
		vs := make([][]*Value, n)
		for t := 0; t < n; t++ {
			normed := rmsnorm(x[t])
			qs[t] = linear(normed, wq)
			ks[t] = linear(normed, wk)
			vs[t] = linear(normed, wv)
		}

		for t := 0; t < n; t++ {
			attnOut := make([]*Value, 0, m.cfg.Embed)
			for h := 0; h < m.cfg.Heads; h++ {
				hs := h * headDim
				qH := qs[t][hs : hs+headDim]

				// each position attends to itself and everything before it
				scores := make([]*Value, t+1)
				for u := 0; u <= t; u++ {
					s := V(0)
					for j := 0; j < headDim; j++ {
						s = Add(s, Mul(qH[j], ks[u][hs+j]))
					}
					scores[u] = Mul(s, scale)
				}
				weights := Softmax(scores)

				headOut := make([]*Value, headDim)
				for j := 0; j < headDim; j++ {
					s := V(0)
					for u := 0; u <= t; u++ {
						s = Add(s, Mul(weights[u], vs[u][hs+j]))
					}
					headOut[j] = s
				}
				attnOut = append(attnOut, headOut...)
			}

			projected := linear(attnOut, wo)
			for i := range projected {
				projected[i] = Add(projected[i], x[t][i])
			}

			hidden := linear(rmsnorm(projected), m.state[layerKey(li, "mlp_fc1")])
			for i := range hidden {
				hidden[i] = ReLU(hidden[i])
			}
			out := linear(hidden, m.state[layerKey(li, "mlp_fc2")])
			for i := range out {
				out[i] = Add(out[i], projected[i])
			}
			x[t] = out
		}
	}

	return linear(x[n-1], m.state["lm_head"])
}

// Predict returns the raw logit values at the last position without
// running a backward pass.
func (m *Transformer) Predict(tokens []int) []float64 {
	logits := m.Forward(tokens)
	out := make([]float64, len(logits))
	for i, l := range logits {
		out[i] = l.Data
	}
	return out
}

func (m *Transformer) embed(token, pos int) []*Value {
	row := m.state["wte"][token]
	scale := math.Sqrt(float64(m.cfg.Embed))
	out := make([]*Value, m.cfg.Embed)
	for i := range out {
		out[i] = Add(Mul(row[i], V(scale)), V(m.pos[pos][i]))
	}
	return out
}

func layerKey(li int, name string) string {
	return fmt.Sprintf("layer%d.%s", li, name)
}

func linear(x []*Value, w [][]*Value) []*Value {
	out := make([]*Value, len(w))
	for o, row := range w {
		s := V(0)
		for i := range x {
			s = Add(s, Mul(row[i], x[i]))
		}
		out[o] = s
	}
	return out
}

func rmsnorm(x []*Value) []*Value {
	ms := V(0)
	for _, xi := range x {
		ms = Add(ms, Mul(xi, xi))
	}
	ms = Div(ms, V(float64(len(x))))
	scale := Pow(Add(ms, V(1e-5)), -0.5)
	out := make([]*Value, len(x))
	for i, xi := range x {
		out[i] = Mul(xi, scale)
	}
	return out
}

// sinusoidalTable builds the fixed position encodings: sines on even
// dimensions, cosines on odd ones, with geometrically spaced
// frequencies.
func sinusoidalTable(maxLen, dim int) [][]float64 {
	table := make([][]float64, maxLen)
	for pos := 0; pos < maxLen; pos++ {
		row := make([]float64, dim)
		for i := 0; i < dim; i += 2 {
			freq := math.Exp(float64(i) * -math.Log(10000) / float64(dim))
			row[i] = math.Sin(float64(pos) * freq)
			if i+1 < dim {
				row[i+1] = math.Cos(float64(pos) * freq)
			}
		}
		table[pos] = row
	}
	return table
}

func uniformMatrix(rng *rand.Rand, nout, nin int) [][]*Value {
	m := make([][]*Value, nout)
	for o := range m {
		row := make([]*Value, nin)
		for i := range row {
			row[i] = V((rng.Float64()*2 - 1) * initRange)
		}
		m[o] = row
	}
	return m
}

func normalMatrix(rng *rand.Rand, nout, nin int) [][]*Value {
	std := 1 / math.Sqrt(float64(nin))
	m := make([][]*Value, nout)
	for o := range m {
		row := make([]*Value, nin)
		for i := range row {
			row[i] = V(rng.NormFloat64() * std)
		}
		m[o] = row
	}
	return m
}

// collectParams flattens the state in sorted key order so the
// optimizer's moment slices stay aligned with the same parameters
// across save/load cycles.
func collectParams(state map[string][][]*Value) []*Value {
	keys := make([]string, 0, len(state))
	for k := range state {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var params []*Value
	for _, k := range keys {
		for _, row := range state[k] {
			params = append(params, row...)
		}
	}
	return params
}
