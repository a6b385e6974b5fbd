// Package emission implements the positional-weighted multinomial scoring
// kernel shared by context-library components and CRF states. Three
// scoring entry points — one per subject kind (count/frequency profile,
// sequence, CRF state) — take the place of a polymorphic subject
// hierarchy, favoring a tagged variant over dynamic dispatch.
package emission

import (
	"fmt"
	"math"

	"github.com/soedinglab/csblast/cserr"
)

// Weights holds the W positional weights w[0..W-1] built around a center
// column, decaying geometrically away from it.
type Weights struct {
	W      int
	Center int
	Values []float64
}

// NewWeights builds positional weights for a window of length w with the
// given center weight and decay factor:
//
//	w[c]     = weightCenter
//	w[c-i]   = w[c+i] = weightCenter * weightDecay^i   for i = 1..c
func NewWeights(w int, weightCenter, weightDecay float64) (Weights, error) {
	if w <= 0 || w%2 == 0 {
		return Weights{}, fmt.Errorf("%w: window length must be odd and positive, got %d", cserr.ErrShapeMismatch, w)
	}
	if weightCenter <= 0 {
		return Weights{}, fmt.Errorf("%w: weight_center must be positive, got %v", cserr.ErrConfigConflict, weightCenter)
	}
	if weightDecay <= 0 || weightDecay > 1 {
		return Weights{}, fmt.Errorf("%w: weight_decay must be in (0,1], got %v", cserr.ErrConfigConflict, weightDecay)
	}
	c := (w - 1) / 2
	values := make([]float64, w)
	values[c] = weightCenter
	decay := weightCenter
	for i := 1; i <= c; i++ {
		decay *= weightDecay
		values[c-i] = decay
		values[c+i] = decay
	}
	return Weights{W: w, Center: c, Values: values}, nil
}

// DefaultWeights builds positional weights using the module's default
// weight_center=1.6, weight_decay=0.85.
func DefaultWeights(w int) (Weights, error) {
	return NewWeights(w, 1.6, 0.85)
}

// overlap returns the inclusive [lo, hi] subject-index range visible to a
// window of length w centered at c, placed at subject offset j, clamped to a
// subject of length subjectLen: {max(0, j-c) .. min(L-1, j+c)}.
func overlap(c, subjectLen, j int) (lo, hi int) {
	lo = j - c
	if lo < 0 {
		lo = 0
	}
	hi = j + c
	if hi > subjectLen-1 {
		hi = subjectLen - 1
	}
	return lo, hi
}

// ScoreProfile computes score(k,j) against a count/frequency profile
// subject:
//
//	score(k,j) = sum_{i in overlap} w[i-j+c] * sum_a subject[i][a]*comp[i-j+c][a]
//
// comp holds the component's own W columns; if logSpace is false, the
// weighted sum is taken in linear space and log2'd once at the end so the
// return value is always a log2 score with base-2 semantics. If logSpace is true, comp's entries
// are already log2-scaled per-letter scores and are summed directly in
// log-space (no re-exponentiation), matching the fast path a library
// converted to log-space uses.
func ScoreProfile(w Weights, comp [][]float64, logSpace bool, subject [][]float64, j int) (float64, error) {
	if len(comp) != w.W {
		return 0, fmt.Errorf("%w: component has %d columns, want %d", cserr.ErrShapeMismatch, len(comp), w.W)
	}
	lo, hi := overlap(w.Center, len(subject), j)
	if logSpace {
		sum := 0.0
		for i := lo; i <= hi; i++ {
			wi := w.Values[i-j+w.Center]
			col := comp[i-j+w.Center]
			inner := 0.0
			for a := range subject[i] {
				inner += subject[i][a] * col[a]
			}
			sum += wi * inner
		}
		return sum, nil
	}
	sum := 0.0
	for i := lo; i <= hi; i++ {
		wi := w.Values[i-j+w.Center]
		col := comp[i-j+w.Center]
		inner := 0.0
		for a := range subject[i] {
			inner += subject[i][a] * col[a]
		}
		sum += wi * inner
	}
	if sum <= 0 {
		return math.Inf(-1), nil
	}
	return math.Log2(sum), nil
}

// ScoreSequence computes score(k,j) against a sequence subject:
//
//	score(k,j) = sum_{i in overlap} w[i-j+c] * comp[i-j+c][subject[i]]
//
// comp holds log2 per-letter scores. A subject position equal to anyIdx
// (the alphabet's any-symbol) contributes zero.
func ScoreSequence(w Weights, comp [][]float64, subject []int, anyIdx, j int) (float64, error) {
	if len(comp) != w.W {
		return 0, fmt.Errorf("%w: component has %d columns, want %d", cserr.ErrShapeMismatch, len(comp), w.W)
	}
	lo, hi := overlap(w.Center, len(subject), j)
	sum := 0.0
	for i := lo; i <= hi; i++ {
		if subject[i] == anyIdx {
			continue
		}
		wi := w.Values[i-j+w.Center]
		sum += wi * comp[i-j+w.Center][subject[i]]
	}
	return sum, nil
}

// ScoreCRFState computes score(k,j) for a CRF state:
//
//	score(k,j) = bias + sum_{i in overlap, subject[i] != any} w[i-j+c] * contextWeights[i-j+c][subject[i]]
func ScoreCRFState(w Weights, bias float64, contextWeights [][]float64, subject []int, anyIdx, j int) (float64, error) {
	if len(contextWeights) != w.W {
		return 0, fmt.Errorf("%w: state has %d context columns, want %d", cserr.ErrShapeMismatch, len(contextWeights), w.W)
	}
	lo, hi := overlap(w.Center, len(subject), j)
	sum := bias
	for i := lo; i <= hi; i++ {
		if subject[i] == anyIdx {
			continue
		}
		wi := w.Values[i-j+w.Center]
		sum += wi * contextWeights[i-j+w.Center][subject[i]]
	}
	return sum, nil
}
