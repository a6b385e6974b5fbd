package alphabet

import (
	"fmt"
	"math"
)

// Background holds the reference distribution f(a) and the conditional
// substitution matrix f(a|b) used only as a denominator in log-likelihood
// computations.
type Background struct {
	Alphabet Alphabet
	F        []float64   // len A, sums to 1
	Cond     [][]float64 // A x A, Cond[b][a] = f(a|b); nil if unused
}

// NewUniform builds a uniform background over the given alphabet.
func NewUniform(a Alphabet) Background {
	n := a.Size()
	f := make([]float64, n)
	for i := range f {
		f[i] = 1.0 / float64(n)
	}
	return Background{Alphabet: a, F: f}
}

// NewBackground validates and wraps a caller-supplied background
// distribution, with an optional conditional substitution matrix.
func NewBackground(a Alphabet, f []float64, cond [][]float64) (Background, error) {
	if len(f) != a.Size() {
		return Background{}, fmt.Errorf("alphabet: background length %d != alphabet size %d", len(f), a.Size())
	}
	sum := 0.0
	for _, v := range f {
		if v <= 0 {
			return Background{}, fmt.Errorf("alphabet: background entries must be in (0,1], got %v", v)
		}
		sum += v
	}
	if math.Abs(sum-1) > 1e-6 {
		return Background{}, fmt.Errorf("alphabet: background does not sum to 1 (got %v)", sum)
	}
	if cond != nil {
		if len(cond) != a.Size() {
			return Background{}, fmt.Errorf("alphabet: substitution matrix has %d rows, want %d", len(cond), a.Size())
		}
		for _, row := range cond {
			if len(row) != a.Size() {
				return Background{}, fmt.Errorf("alphabet: substitution matrix row has %d entries, want %d", len(row), a.Size())
			}
		}
	}
	fc := make([]float64, len(f))
	copy(fc, f)
	return Background{Alphabet: a, F: fc, Cond: cond}, nil
}

// LogF returns log2(f(a)).
func (b Background) LogF(a int) float64 {
	return math.Log2(b.F[a])
}
