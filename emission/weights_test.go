package emission

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWeightsShape(t *testing.T) {
	w, err := NewWeights(5, 1.6, 0.85)
	require.NoError(t, err)
	assert.Equal(t, 2, w.Center)
	assert.InDelta(t, 1.6, w.Values[2], 1e-9)
	assert.InDelta(t, 1.6*0.85, w.Values[1], 1e-9)
	assert.InDelta(t, 1.6*0.85, w.Values[3], 1e-9)
	assert.InDelta(t, 1.6*0.85*0.85, w.Values[0], 1e-9)
	assert.InDelta(t, 1.6*0.85*0.85, w.Values[4], 1e-9)
}

func TestNewWeightsRejectsEvenWindow(t *testing.T) {
	_, err := NewWeights(4, 1.6, 0.85)
	assert.Error(t, err)
}

func TestNewWeightsRejectsBadDecay(t *testing.T) {
	_, err := NewWeights(3, 1.6, 0)
	assert.Error(t, err)
	_, err = NewWeights(3, 1.6, 1.1)
	assert.Error(t, err)
}

func TestScoreSequenceSkipsAny(t *testing.T) {
	w, err := NewWeights(1, 1.0, 1.0)
	require.NoError(t, err)
	comp := [][]float64{{1.0, 2.0, 3.0}}
	anyIdx := 3
	subject := []int{anyIdx}
	score, err := ScoreSequence(w, comp, subject, anyIdx, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, score)

	subject = []int{1}
	score, err = ScoreSequence(w, comp, subject, anyIdx, 0)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, score, 1e-9)
}

func TestScoreCRFStateIncludesBias(t *testing.T) {
	w, err := NewWeights(1, 1.0, 1.0)
	require.NoError(t, err)
	cw := [][]float64{{0.5, 1.5}}
	score, err := ScoreCRFState(w, 3.0, cw, []int{1}, 2, 0)
	require.NoError(t, err)
	assert.InDelta(t, 4.5, score, 1e-9)
}

func TestScoreProfilePartialOverlapAtBoundary(t *testing.T) {
	w, err := NewWeights(3, 1.0, 1.0)
	require.NoError(t, err)
	comp := [][]float64{{1, 0}, {1, 0}, {1, 0}}
	// subject only has 2 columns; window centered at j=0 sees columns 0,1
	// but not the (nonexistent) column at index -1.
	subject := [][]float64{{1, 0}, {1, 0}}
	score, err := ScoreProfile(w, comp, false, subject, 0)
	require.NoError(t, err)
	assert.False(t, math.IsInf(score, -1))
}

func TestScoreProfileLogSpaceSumsDirectly(t *testing.T) {
	w, err := NewWeights(1, 1.0, 1.0)
	require.NoError(t, err)
	comp := [][]float64{{-1, -2}}
	subject := [][]float64{{1, 0}}
	score, err := ScoreProfile(w, comp, true, subject, 0)
	require.NoError(t, err)
	assert.InDelta(t, -1.0, score, 1e-9)
}
