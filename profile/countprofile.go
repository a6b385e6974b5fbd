// Package profile implements the count profile: a W-column matrix of
// residue counts or frequencies over an alphabet, plus a per-column
// effective-sequence-count N_eff.
package profile

import (
	"fmt"
	"math"

	"github.com/soedinglab/csblast/alphabet"
	"github.com/soedinglab/csblast/cserr"
)

// CountProfile is a W x A matrix of non-negative residue counts or
// frequencies, plus a per-column N_eff >= 1. IsCounts distinguishes the two
// representations; frequencies must sum to 1 +/- epsilon per column.
type CountProfile struct {
	Alphabet alphabet.Alphabet
	Data     [][]float64 // W x A
	NEff     []float64   // len W
	IsCounts bool
}

const columnSumEpsilon = 1e-6

// New allocates a zeroed frequency profile (IsCounts == false) of w columns
// with NEff initialized to 1.
func New(a alphabet.Alphabet, w int) (*CountProfile, error) {
	if w <= 0 {
		return nil, fmt.Errorf("%w: profile width must be positive, got %d", cserr.ErrShapeMismatch, w)
	}
	data := make([][]float64, w)
	neff := make([]float64, w)
	for i := range data {
		data[i] = make([]float64, a.Size())
		neff[i] = 1
	}
	return &CountProfile{Alphabet: a, Data: data, NEff: neff, IsCounts: false}, nil
}

// W returns the number of columns.
func (p *CountProfile) W() int { return len(p.Data) }

// Validate checks the shape invariants: every column has the right
// length, N_eff >= 1, and (for frequency profiles) columns sum to 1
// within epsilon.
func (p *CountProfile) Validate() error {
	a := p.Alphabet.Size()
	if len(p.NEff) != len(p.Data) {
		return fmt.Errorf("%w: NEff has %d entries, want %d", cserr.ErrShapeMismatch, len(p.NEff), len(p.Data))
	}
	for i, col := range p.Data {
		if len(col) != a {
			return fmt.Errorf("%w: column %d has %d entries, want %d", cserr.ErrShapeMismatch, i, len(col), a)
		}
		if p.NEff[i] < 1 {
			return fmt.Errorf("%w: column %d has NEff %v < 1", cserr.ErrShapeMismatch, i, p.NEff[i])
		}
		if !p.IsCounts {
			sum := 0.0
			for _, v := range col {
				sum += v
			}
			if math.Abs(sum-1) > columnSumEpsilon {
				return fmt.Errorf("%w: column %d sums to %v, want 1", cserr.ErrNumericalFault, i, sum)
			}
		}
	}
	return nil
}

// ToCounts returns a copy converted to raw counts (Data[i][a] = Freq * NEff[i]).
// If already counts, returns a copy unchanged.
func (p *CountProfile) ToCounts() *CountProfile {
	out := p.clone()
	if out.IsCounts {
		return out
	}
	for i, col := range out.Data {
		for a := range col {
			col[a] *= out.NEff[i]
		}
	}
	out.IsCounts = true
	return out
}

// ToFrequencies returns a copy converted to per-column frequencies
// (Data[i][a] = Count / NEff[i]). If already frequencies, returns a copy
// unchanged.
func (p *CountProfile) ToFrequencies() *CountProfile {
	out := p.clone()
	if !out.IsCounts {
		return out
	}
	for i, col := range out.Data {
		if out.NEff[i] == 0 {
			continue
		}
		for a := range col {
			col[a] /= out.NEff[i]
		}
	}
	out.IsCounts = false
	return out
}

func (p *CountProfile) clone() *CountProfile {
	data := make([][]float64, len(p.Data))
	for i, col := range p.Data {
		data[i] = append([]float64(nil), col...)
	}
	neff := append([]float64(nil), p.NEff...)
	return &CountProfile{Alphabet: p.Alphabet, Data: data, NEff: neff, IsCounts: p.IsCounts}
}
