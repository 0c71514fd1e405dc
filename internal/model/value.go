// Package model implements a causal transformer over scalar autograd
// values. Every arithmetic op records its inputs and local derivatives
// so a single reverse sweep can accumulate gradients for training.
package model

import "math"

// Value is one node in the computation graph. Data is the forward
// result; Grad is filled in by Backward.
type Value struct {
	Data       float64
	Grad       float64
	children   []*Value
	localGrads []float64
}

// V wraps a constant or parameter scalar.
func V(x float64) *Value {
	return &Value{Data: x}
}

// Add returns a+b.
func Add(a, b *Value) *Value {
	return &Value{Data: a.Data + b.Data, children: []*Value{a, b}, localGrads: []float64{1, 1}}
}

// Sub returns a-b.
func Sub(a, b *Value) *Value {
	return Add(a, Neg(b))
}

// Mul returns a*b.
func Mul(a, b *Value) *Value {
	return &Value{Data: a.Data * b.Data, children: []*Value{a, b}, localGrads: []float64{b.Data, a.Data}}
}

// Neg returns -a.
func Neg(a *Value) *Value {
	return Mul(a, V(-1))
}

// Pow returns a^p for a constant exponent.
func Pow(a *Value, p float64) *Value {
	return &Value{Data: math.Pow(a.Data, p), children: []*Value{a}, localGrads: []float64{p * math.Pow(a.Data, p-1)}}
}

// Div returns a/b.
func Div(a, b *Value) *Value {
	return Mul(a, Pow(b, -1))
}

// Log returns the natural log of a.
func Log(a *Value) *Value {
	return &Value{Data: math.Log(a.Data), children: []*Value{a}, localGrads: []float64{1 / a.Data}}
}

// Exp returns e^a.
func Exp(a *Value) *Value {
	ed := math.Exp(a.Data)
	return &Value{Data: ed, children: []*Value{a}, localGrads: []float64{ed}}
}

// ReLU returns max(a, 0).
func ReLU(a *Value) *Value {
	if a.Data > 0 {
		return &Value{Data: a.Data, children: []*Value{a}, localGrads: []float64{1}}
	}
	return &Value{Data: 0, children: []*Value{a}, localGrads: []float64{0}}
}

// Softmax returns the probability distribution over the logits. The
// max is subtracted before exponentiation for numerical stability.
func Softmax(logits []*Value) []*Value {
	maxVal := logits[0].Data
	for i := 1; i < len(logits); i++ {
		if logits[i].Data > maxVal {
			maxVal = logits[i].Data
		}
	}
	exps := make([]*Value, len(logits))
	total := V(0)
	for i, l := range logits {
		e := Exp(Sub(l, V(maxVal)))
		exps[i] = e
		total = Add(total, e)
	}
	probs := make([]*Value, len(logits))
	for i := range exps {
		probs[i] = Div(exps[i], total)
	}
	return probs
}

// Backward accumulates d(out)/d(node) into Grad for every node
// reachable from out, in reverse topological order. Gradients add
// across calls; zero them between optimization steps.
func Backward(out *Value) {
	var topo []*Value
	visited := map[*Value]bool{}
	var build func(v *Value)
	build = func(v *Value) {
		if visited[v] {
			return
		}
		visited[v] = true
		for _, ch := range v.children {
			build(ch)
		}
		topo = append(topo, v)
	}
	build(out)

	out.Grad = 1
	for i := len(topo) - 1; i >= 0; i-- {
		v := topo[i]
		for j, ch := range v.children {
			ch.Grad += v.localGrads[j] * v.Grad
		}
	}
}
