package posterior

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soedinglab/csblast/alphabet"
	"github.com/soedinglab/csblast/context"
	"github.com/soedinglab/csblast/crf"
	"github.com/soedinglab/csblast/emission"
	"github.com/soedinglab/csblast/profile"
)

func sum(v []float64) float64 {
	s := 0.0
	for _, x := range v {
		s += x
	}
	return s
}

// TestLibraryPosteriorSumsToOne checks that the library posterior and its
// mixed pseudocount output are proper probability distributions.
func TestLibraryPosteriorSumsToOne(t *testing.T) {
	a := alphabet.AminoAcid()
	lib, err := context.New(a, 3, 3)
	require.NoError(t, err)
	w, err := emission.DefaultWeights(3)
	require.NoError(t, err)

	idxA, _ := a.Index('A')
	window := []int{idxA, idxA, idxA}
	post, mixed, err := Library(lib, w, window, a.Any(), Constant(0.3), 10)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, sum(post), 1e-9)
	assert.InDelta(t, 1.0, sum(mixed), 1e-9)
}

// TestLibraryProfilePosteriorSumsToOne checks that scoring a profile
// subject produces a proper posterior and a proper mixed distribution,
// mirroring TestLibraryPosteriorSumsToOne for the sequence-window path.
func TestLibraryProfilePosteriorSumsToOne(t *testing.T) {
	a := alphabet.AminoAcid()
	lib, err := context.New(a, 3, 3)
	require.NoError(t, err)
	w, err := emission.DefaultWeights(3)
	require.NoError(t, err)

	subject, err := profile.New(a, 5)
	require.NoError(t, err)
	idxA, _ := a.Index('A')
	for i := range subject.Data {
		subject.Data[i][idxA] = 1
	}

	post, mixed, err := LibraryProfile(lib, w, subject, 2, Constant(0.3))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, sum(post), 1e-9)
	assert.InDelta(t, 1.0, sum(mixed), 1e-9)
}

// TestLibraryProfileMatchesLibraryOnOneHotColumn checks that scoring a
// one-hot profile column against a library reproduces the same posterior
// and mixed distribution as scoring the equivalent sequence window,
// since a one-hot frequency column and a discrete residue carry the same
// information.
func TestLibraryProfileMatchesLibraryOnOneHotColumn(t *testing.T) {
	a := alphabet.AminoAcid()
	lib, err := context.New(a, 3, 2)
	require.NoError(t, err)
	lib.Components[0].Prior = 0.4
	lib.Components[1].Prior = 0.6
	w, err := emission.DefaultWeights(3)
	require.NoError(t, err)

	idxA, _ := a.Index('A')
	window := []int{idxA, idxA, idxA}
	postSeq, mixedSeq, err := Library(lib, w, window, a.Any(), Constant(0.3), 1)
	require.NoError(t, err)

	subject, err := profile.New(a, 3)
	require.NoError(t, err)
	for i := range subject.Data {
		subject.Data[i][idxA] = 1
	}
	postProf, mixedProf, err := LibraryProfile(lib, w, subject, 1, Constant(0.3))
	require.NoError(t, err)

	for i := range postSeq {
		assert.InDelta(t, postSeq[i], postProf[i], 1e-9)
	}
	for x := range mixedSeq {
		assert.InDelta(t, mixedSeq[x], mixedProf[x], 1e-9)
	}
}

// TestCRFPosteriorSumsToOne checks the same property for the
// discriminative path.
func TestCRFPosteriorSumsToOne(t *testing.T) {
	a := alphabet.AminoAcid()
	m, err := crf.New(a, 3, 2)
	require.NoError(t, err)
	w, err := emission.DefaultWeights(3)
	require.NoError(t, err)

	idxA, _ := a.Index('A')
	window := []int{idxA, idxA, idxA}
	post, mixed, err := CRF(m, w, window, a.Any())
	require.NoError(t, err)
	assert.InDelta(t, 1.0, sum(post), 1e-9)
	assert.InDelta(t, 1.0, sum(mixed), 1e-9)
}

// TestCRFSoftmaxShiftInvariance checks that adding a constant to every
// state's bias leaves the posterior unchanged.
func TestCRFSoftmaxShiftInvariance(t *testing.T) {
	a := alphabet.AminoAcid()
	m, err := crf.New(a, 1, 3)
	require.NoError(t, err)
	for k := range m.States {
		m.States[k].Bias = float64(k)
	}
	w, err := emission.DefaultWeights(1)
	require.NoError(t, err)
	idxA, _ := a.Index('A')
	window := []int{idxA}

	post1, _, err := CRF(m, w, window, a.Any())
	require.NoError(t, err)

	shifted, err := crf.New(a, 1, 3)
	require.NoError(t, err)
	for k := range shifted.States {
		shifted.States[k].Bias = m.States[k].Bias + 50
	}
	post2, _, err := CRF(shifted, w, window, a.Any())
	require.NoError(t, err)

	for i := range post1 {
		assert.InDelta(t, post1[i], post2[i], 1e-9)
	}
}

// TestS1UniformLibraryUniformPosterior checks that a single-component
// library assigns all posterior mass to the one component regardless of
// the window.
func TestS1UniformLibraryUniformPosterior(t *testing.T) {
	a := alphabet.AminoAcid()
	lib, err := context.New(a, 1, 1)
	require.NoError(t, err)
	w, err := emission.DefaultWeights(1)
	require.NoError(t, err)
	idxA, _ := a.Index('A')
	post, _, err := Library(lib, w, []int{idxA}, a.Any(), Constant(0.5), 5)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, post[0], 1e-9)
}

// TestS2IdenticalProfilesEqualPosterior checks that two components with
// identical profiles and equal priors split posterior mass evenly.
func TestS2IdenticalProfilesEqualPosterior(t *testing.T) {
	a := alphabet.AminoAcid()
	lib, err := context.New(a, 1, 2)
	require.NoError(t, err)
	lib.Components[0].Prior = 0.5
	lib.Components[1].Prior = 0.5
	w, err := emission.DefaultWeights(1)
	require.NoError(t, err)
	idxA, _ := a.Index('A')
	post, _, err := Library(lib, w, []int{idxA}, a.Any(), Constant(0.5), 5)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, post[0], 1e-9)
	assert.InDelta(t, 0.5, post[1], 1e-9)
}

func TestDivergenceDependentTau(t *testing.T) {
	adm := DivergenceDependent{A: 1.0, B: 10.0}
	assert.InDelta(t, 1.0, adm.Tau(1), 1e-9)
	assert.Less(t, adm.Tau(100), adm.Tau(1))
}
