package context

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soedinglab/csblast/alphabet"
)

func TestNewLibraryUniformInvariants(t *testing.T) {
	a := alphabet.AminoAcid()
	lib, err := New(a, 1, 2)
	require.NoError(t, err)
	require.NoError(t, lib.Validate())

	for k := range lib.Components {
		for i := range lib.Components[k].Profile {
			assert.InDelta(t, 1.0, lib.ColumnSum(k, i), 1e-9)
		}
	}
}

func TestToLogSpaceRoundTrip(t *testing.T) {
	a := alphabet.AminoAcid()
	lib, err := New(a, 1, 1)
	require.NoError(t, err)

	lib.ToLogSpace()
	assert.True(t, lib.LogSpace)
	assert.InDelta(t, 0.0, lib.ColumnSum(0, 0), 1e-6)

	lib.ToLinSpace()
	assert.False(t, lib.LogSpace)
	assert.InDelta(t, 1.0, lib.ColumnSum(0, 0), 1e-9)
}

// TestS2SetupHasIdenticalProfiles checks the library shape behind the
// equal-posterior case: K=2 components with equal priors, distinct one-hot
// pseudocounts and identical profiles still validate. The posterior split
// itself is checked in the posterior package.
func TestS2SetupHasIdenticalProfiles(t *testing.T) {
	a := alphabet.AminoAcid()
	lib, err := New(a, 1, 2)
	require.NoError(t, err)

	idxA, _ := a.Index('A')
	idxR, _ := a.Index('R')
	onehot := func(idx int) []float64 {
		v := make([]float64, a.Size())
		v[idx] = 1
		return v
	}
	lib.Components[0].Pseudocounts = onehot(idxA)
	lib.Components[1].Pseudocounts = onehot(idxR)
	lib.Components[0].Prior = 0.5
	lib.Components[1].Prior = 0.5
	require.NoError(t, lib.Validate())
	// profiles remain identical (both left at the uniform default) so the
	// emission score is identical for both components regardless of window.
	assert.Equal(t, lib.Components[0].Profile[0], lib.Components[1].Profile[0])
}
