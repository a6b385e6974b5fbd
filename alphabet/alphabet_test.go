package alphabet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAminoAcidCanonicalOrder(t *testing.T) {
	a := AminoAcid()
	assert.Equal(t, 20, a.Size())
	assert.Equal(t, "ACDEFGHIKLMNPQRSTVWY", a.String())
	assert.Equal(t, 20, a.Any())

	idx, ok := a.Index('A')
	require.True(t, ok)
	assert.Equal(t, 0, idx)

	idx, ok = a.Index('Y')
	require.True(t, ok)
	assert.Equal(t, 19, idx)

	idx, ok = a.Index('X')
	require.True(t, ok)
	assert.Equal(t, a.Any(), idx)
}

func TestNucleotide(t *testing.T) {
	a := Nucleotide()
	assert.Equal(t, 4, a.Size())
	assert.Equal(t, "ACGT", a.String())
	idx, ok := a.Index('N')
	require.True(t, ok)
	assert.Equal(t, 4, idx)
	assert.GreaterOrEqual(t, idx, a.Size())
}

func TestEncodeUnknownMapsToAny(t *testing.T) {
	a := AminoAcid()
	enc := a.Encode([]byte("AC-Z"))
	assert.Equal(t, []int{0, 1, a.Any(), a.Any()}, enc)
}

func TestNewRejectsDuplicateLetters(t *testing.T) {
	_, err := New([]byte("AA"), 'X')
	assert.Error(t, err)
}

func TestNewRejectsAnyCollision(t *testing.T) {
	_, err := New([]byte("ABC"), 'A')
	assert.Error(t, err)
}

func TestBackgroundUniform(t *testing.T) {
	a := AminoAcid()
	bg := NewUniform(a)
	sum := 0.0
	for _, v := range bg.F {
		sum += v
		assert.InDelta(t, 0.05, v, 1e-9)
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestNewBackgroundValidatesSum(t *testing.T) {
	a := Nucleotide()
	_, err := NewBackground(a, []float64{0.1, 0.1, 0.1, 0.1}, nil)
	assert.Error(t, err)

	bg, err := NewBackground(a, []float64{0.25, 0.25, 0.25, 0.25}, nil)
	require.NoError(t, err)
	assert.InDelta(t, -2.0, bg.LogF(0), 1e-9)
}
