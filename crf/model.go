// Package crf implements the discriminative conditional random field: a set
// of linear state scorers (bias + positional context weights) combined with
// per-state pseudocount logits.
package crf

import (
	"fmt"
	"math"

	"github.com/soedinglab/csblast/alphabet"
	"github.com/soedinglab/csblast/cserr"
)

// State is a single linear scorer: a bias, a W x A context-weight matrix,
// and a length-A pseudocount-weight vector whose softmax is the state's
// effective pseudocount distribution.
type State struct {
	Bias           float64
	ContextWeights [][]float64 // W x A
	PCWeights      []float64   // len A, logits
}

// Model is an ordered set of K states sharing a window width and alphabet.
type Model struct {
	Alphabet alphabet.Alphabet
	W        int
	Center   int
	States   []State
}

// New allocates a model with k zeroed states of window width w, ready to
// be trained from scratch or overwritten from a sampled component.
func New(a alphabet.Alphabet, w, k int) (*Model, error) {
	if w <= 0 || w%2 == 0 {
		return nil, fmt.Errorf("%w: window length must be odd and positive, got %d", cserr.ErrShapeMismatch, w)
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: model must have at least one state, got %d", cserr.ErrConfigConflict, k)
	}
	states := make([]State, k)
	for i := range states {
		cw := make([][]float64, w)
		for c := range cw {
			cw[c] = make([]float64, a.Size())
		}
		states[i] = State{ContextWeights: cw, PCWeights: make([]float64, a.Size())}
	}
	return &Model{Alphabet: a, W: w, Center: (w - 1) / 2, States: states}, nil
}

// K returns the number of states.
func (m *Model) K() int { return len(m.States) }

// Validate checks that every state's dimensions match W x A.
func (m *Model) Validate() error {
	a := m.Alphabet.Size()
	for k, s := range m.States {
		if len(s.ContextWeights) != m.W {
			return fmt.Errorf("%w: state %d has %d context columns, want %d", cserr.ErrShapeMismatch, k, len(s.ContextWeights), m.W)
		}
		for i, col := range s.ContextWeights {
			if len(col) != a {
				return fmt.Errorf("%w: state %d column %d has %d entries, want %d", cserr.ErrShapeMismatch, k, i, len(col), a)
			}
		}
		if len(s.PCWeights) != a {
			return fmt.Errorf("%w: state %d pc-weights has %d entries, want %d", cserr.ErrShapeMismatch, k, len(s.PCWeights), a)
		}
	}
	return nil
}

// Pseudocounts returns softmax(q_k), the state's effective pseudocount
// distribution. Shift-invariant: adding a constant to every entry of
// PCWeights leaves the result unchanged.
func (s State) Pseudocounts() []float64 {
	max := math.Inf(-1)
	for _, v := range s.PCWeights {
		if v > max {
			max = v
		}
	}
	out := make([]float64, len(s.PCWeights))
	sum := 0.0
	for i, v := range s.PCWeights {
		e := math.Exp(v - max)
		out[i] = e
		sum += e
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// NumParams returns the flat parameter-vector length for one state:
// 1 (bias) + W*A (context weights) + A (pc weights).
func (m *Model) NumParams() int {
	a := m.Alphabet.Size()
	return 1 + m.W*a + a
}

// Flatten writes the model's parameters into a flat vector ordered per
// state as [b_k, c_k row-major, q_k], matching the gradient vector layout
// exactly so gradients and parameters share one indexing scheme.
func (m *Model) Flatten() []float64 {
	perState := m.NumParams()
	a := m.Alphabet.Size()
	out := make([]float64, perState*len(m.States))
	for k, s := range m.States {
		base := k * perState
		out[base] = s.Bias
		off := base + 1
		for i, col := range s.ContextWeights {
			copy(out[off+i*a:off+(i+1)*a], col)
		}
		copy(out[off+m.W*a:off+m.W*a+a], s.PCWeights)
	}
	return out
}

// Unflatten loads a flat parameter vector produced by Flatten back into the
// model's states in place.
func (m *Model) Unflatten(theta []float64) error {
	perState := m.NumParams()
	if len(theta) != perState*len(m.States) {
		return fmt.Errorf("%w: parameter vector has %d entries, want %d", cserr.ErrShapeMismatch, len(theta), perState*len(m.States))
	}
	a := m.Alphabet.Size()
	for k := range m.States {
		base := k * perState
		m.States[k].Bias = theta[base]
		off := base + 1
		for i := range m.States[k].ContextWeights {
			copy(m.States[k].ContextWeights[i], theta[off+i*a:off+(i+1)*a])
		}
		copy(m.States[k].PCWeights, theta[off+m.W*a:off+m.W*a+a])
	}
	return nil
}

// ParamIndex returns the flat-vector offsets for state k's bias, and the
// base offsets of its context-weight and pc-weight blocks, per NumParams'
// layout.
func (m *Model) ParamIndex(k int) (bias, contextBase, pcBase int) {
	perState := m.NumParams()
	a := m.Alphabet.Size()
	base := k * perState
	return base, base + 1, base + 1 + m.W*a
}
