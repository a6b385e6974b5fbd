package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soedinglab/csblast/alphabet"
)

func TestNewProfileValidates(t *testing.T) {
	a := alphabet.Nucleotide()
	p, err := New(a, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, p.W())
	for i := range p.Data {
		p.Data[i][0] = 1 // valid one-hot frequency column
	}
	assert.NoError(t, p.Validate())
}

func TestNewProfileRejectsEvenlessWidth(t *testing.T) {
	a := alphabet.Nucleotide()
	_, err := New(a, 0)
	assert.Error(t, err)
}

func TestCountsFrequenciesRoundTrip(t *testing.T) {
	a := alphabet.Nucleotide()
	p, err := New(a, 1)
	require.NoError(t, err)
	p.Data[0] = []float64{0.25, 0.25, 0.25, 0.25}
	p.NEff[0] = 10

	counts := p.ToCounts()
	assert.True(t, counts.IsCounts)
	for _, v := range counts.Data[0] {
		assert.InDelta(t, 2.5, v, 1e-9)
	}

	back := counts.ToFrequencies()
	assert.False(t, back.IsCounts)
	for _, v := range back.Data[0] {
		assert.InDelta(t, 0.25, v, 1e-9)
	}
}

func TestValidateRejectsBadColumnSum(t *testing.T) {
	a := alphabet.Nucleotide()
	p, err := New(a, 1)
	require.NoError(t, err)
	p.Data[0][0] = 0.9 // sums to 0.9, not 1
	assert.Error(t, p.Validate())
}
