// Package context implements the generative context library: a mixture of
// positional profile components with prior weights and pseudocount vectors,
// trained by expectation-maximization.
package context

import (
	"fmt"
	"math"

	"github.com/soedinglab/csblast/alphabet"
	"github.com/soedinglab/csblast/cserr"
)

// Component is a single mixture element: a W x A profile (log- or
// linear-space depending on the owning Library's LogSpace flag), a prior
// weight, and a pseudocount distribution over the alphabet.
type Component struct {
	Profile      [][]float64 // W x A
	Prior        float64
	Pseudocounts []float64 // len A, sums to 1
}

// Library is an ordered set of K components sharing a window width and
// alphabet. Ownership is strictly hierarchical: a Library exclusively
// owns its components.
type Library struct {
	Alphabet   alphabet.Alphabet
	W          int
	Center     int
	Components []Component
	LogSpace   bool
	Iterations int
}

// New allocates a library with k components of window width w, each
// initialized to a uniform profile and pseudocount vector, and prior 1/k.
func New(a alphabet.Alphabet, w, k int) (*Library, error) {
	if w <= 0 || w%2 == 0 {
		return nil, fmt.Errorf("%w: window length must be odd and positive, got %d", cserr.ErrShapeMismatch, w)
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: library must have at least one component, got %d", cserr.ErrConfigConflict, k)
	}
	comps := make([]Component, k)
	uniform := 1.0 / float64(a.Size())
	for i := range comps {
		profile := make([][]float64, w)
		for c := range profile {
			profile[c] = make([]float64, a.Size())
			for x := range profile[c] {
				profile[c][x] = uniform
			}
		}
		pc := make([]float64, a.Size())
		for x := range pc {
			pc[x] = uniform
		}
		comps[i] = Component{Profile: profile, Prior: 1.0 / float64(k), Pseudocounts: pc}
	}
	return &Library{Alphabet: a, W: w, Center: (w - 1) / 2, Components: comps, LogSpace: false}, nil
}

// K returns the number of components.
func (l *Library) K() int { return len(l.Components) }

// Validate checks the shape invariants shared by every component: profile
// dimensions match W x A, and (unless the caller is mid-update) priors sum
// to 1.
func (l *Library) Validate() error {
	a := l.Alphabet.Size()
	priorSum := 0.0
	for k, c := range l.Components {
		if len(c.Profile) != l.W {
			return fmt.Errorf("%w: component %d has %d columns, want %d", cserr.ErrShapeMismatch, k, len(c.Profile), l.W)
		}
		for i, col := range c.Profile {
			if len(col) != a {
				return fmt.Errorf("%w: component %d column %d has %d entries, want %d", cserr.ErrShapeMismatch, k, i, len(col), a)
			}
		}
		if len(c.Pseudocounts) != a {
			return fmt.Errorf("%w: component %d pseudocounts has %d entries, want %d", cserr.ErrShapeMismatch, k, len(c.Pseudocounts), a)
		}
		priorSum += c.Prior
	}
	if math.Abs(priorSum-1) > 1e-6 {
		return fmt.Errorf("%w: priors sum to %v, want 1", cserr.ErrNumericalFault, priorSum)
	}
	return nil
}

// ToLogSpace converts every component's profile to log2 space in place.
// A zero linear entry becomes -Inf.
func (l *Library) ToLogSpace() {
	if l.LogSpace {
		return
	}
	for k := range l.Components {
		for i, col := range l.Components[k].Profile {
			for a, v := range col {
				if v <= 0 {
					l.Components[k].Profile[i][a] = math.Inf(-1)
				} else {
					l.Components[k].Profile[i][a] = math.Log2(v)
				}
			}
		}
	}
	l.LogSpace = true
}

// ToLinSpace converts every component's profile back to linear space in
// place.
func (l *Library) ToLinSpace() {
	if !l.LogSpace {
		return
	}
	for k := range l.Components {
		for i, col := range l.Components[k].Profile {
			for a, v := range col {
				l.Components[k].Profile[i][a] = math.Exp2(v)
			}
		}
	}
	l.LogSpace = false
}

// ColumnSum returns the sum over the alphabet of component k's column i:
// 1 in linear space, 0 in log space (logsumexp of a normalized column is
// 0).
func (l *Library) ColumnSum(k, i int) float64 {
	col := l.Components[k].Profile[i]
	if !l.LogSpace {
		sum := 0.0
		for _, v := range col {
			sum += v
		}
		return sum
	}
	max := math.Inf(-1)
	for _, v := range col {
		if v > max {
			max = v
		}
	}
	if math.IsInf(max, -1) {
		return math.Inf(-1)
	}
	sum := 0.0
	for _, v := range col {
		sum += math.Exp2(v - max)
	}
	return max + math.Log2(sum)
}
