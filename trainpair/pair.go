// Package trainpair defines the training pair (window x, target y) that
// every EM and CRF training routine consumes, and the corpus operations
// (shuffle, block partition) built on top of it.
package trainpair

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/soedinglab/csblast/cserr"
	"github.com/soedinglab/csblast/internal/csrand"
)

// Pair is one training example: a window of W alphabet indices (the
// middle column is the "center") and a target distribution over A
// letters.
type Pair struct {
	X []int     // len W, alphabet indices (may include the any-symbol)
	Y []float64 // len A, sums to 1
}

// Center returns the index of the middle column, (W-1)/2.
func (p Pair) Center() int { return (len(p.X) - 1) / 2 }

// NewPair validates and constructs a training pair: W must be odd and Y
// must sum to 1 within epsilon.
func NewPair(x []int, y []float64) (Pair, error) {
	if len(x) == 0 || len(x)%2 == 0 {
		return Pair{}, fmt.Errorf("%w: window length must be odd, got %d", cserr.ErrShapeMismatch, len(x))
	}
	sum := 0.0
	for _, v := range y {
		sum += v
	}
	if math.Abs(sum-1) > 1e-6 {
		return Pair{}, fmt.Errorf("%w: target does not sum to 1 (got %v)", cserr.ErrNumericalFault, sum)
	}
	xc := append([]int(nil), x...)
	yc := append([]float64(nil), y...)
	return Pair{X: xc, Y: yc}, nil
}

// Corpus is an immutable-during-training ordered collection of training
// pairs.
type Corpus struct {
	Pairs []Pair
	W     int
	A     int
}

// NewCorpus wraps pairs after checking that every pair shares the same
// window length and target dimension.
func NewCorpus(pairs []Pair) (Corpus, error) {
	if len(pairs) == 0 {
		return Corpus{}, fmt.Errorf("%w: empty corpus", cserr.ErrShapeMismatch)
	}
	w := len(pairs[0].X)
	a := len(pairs[0].Y)
	for i, p := range pairs {
		if len(p.X) != w {
			return Corpus{}, fmt.Errorf("%w: pair %d has window length %d, want %d", cserr.ErrShapeMismatch, i, len(p.X), w)
		}
		if len(p.Y) != a {
			return Corpus{}, fmt.Errorf("%w: pair %d has target length %d, want %d", cserr.ErrShapeMismatch, i, len(p.Y), a)
		}
	}
	return Corpus{Pairs: pairs, W: w, A: a}, nil
}

// Len returns the number of training pairs.
func (c Corpus) Len() int { return len(c.Pairs) }

// Shuffle returns a copy of the corpus with pairs permuted deterministically
// by rng (nil selects the default deterministic stream, per csrand).
func (c Corpus) Shuffle(rng *rand.Rand) Corpus {
	perm := csrand.PermRange(len(c.Pairs), rng)
	out := make([]Pair, len(c.Pairs))
	for i, p := range perm {
		out[i] = c.Pairs[p]
	}
	return Corpus{Pairs: out, W: c.W, A: c.A}
}

// Blocks partitions the corpus into b contiguous, near-equal mini-batches.
// This is a static partition of index order, not a random one —
// randomization, if wanted, happens once via Shuffle before Blocks is
// called.
func (c Corpus) Blocks(b int) [][]Pair {
	if b < 1 {
		b = 1
	}
	n := len(c.Pairs)
	if b > n {
		b = n
	}
	base := n / b
	rem := n % b
	blocks := make([][]Pair, b)
	pos := 0
	for i := 0; i < b; i++ {
		size := base
		if i < rem {
			size++
		}
		blocks[i] = c.Pairs[pos : pos+size]
		pos += size
	}
	return blocks
}

// DefaultNumBlocks picks a mini-batch count as a function of corpus size:
// roughly one block per 100 training pairs, never fewer than 1 nor more
// than n.
func DefaultNumBlocks(n int) int {
	if n <= 0 {
		return 1
	}
	b := n / 100
	if b < 1 {
		b = 1
	}
	if b > n {
		b = n
	}
	return b
}
