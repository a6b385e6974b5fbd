package em

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soedinglab/csblast/alphabet"
	"github.com/soedinglab/csblast/context"
	"github.com/soedinglab/csblast/trainpair"
)

func makeCorpus(t *testing.T, a alphabet.Alphabet, pairs []trainpair.Pair) trainpair.Corpus {
	t.Helper()
	c, err := trainpair.NewCorpus(pairs)
	require.NoError(t, err)
	return c
}

func onehot(a alphabet.Alphabet, letter byte) []float64 {
	idx, _ := a.Index(letter)
	v := make([]float64, a.Size())
	v[idx] = 1
	return v
}

func TestMStepNormalizesAfterScan(t *testing.T) {
	a := alphabet.AminoAcid()
	lib, err := context.New(a, 3, 2)
	require.NoError(t, err)

	idxA, _ := a.Index('A')
	idxR, _ := a.Index('R')
	pairs := []trainpair.Pair{}
	for i := 0; i < 20; i++ {
		p, err := trainpair.NewPair([]int{idxA, idxA, idxA}, onehot(a, 'A'))
		require.NoError(t, err)
		pairs = append(pairs, p)
	}
	for i := 0; i < 20; i++ {
		p, err := trainpair.NewPair([]int{idxR, idxR, idxR}, onehot(a, 'R'))
		require.NoError(t, err)
		pairs = append(pairs, p)
	}
	corpus := makeCorpus(t, a, pairs)

	d, err := NewDriver(lib, Config{
		MaxScans:            5,
		MinScans:            1,
		LogLikelihoodChange: 1e-6,
		Blending:            1.0,
		NumBlocks:           2,
		StatePseudocount:    0.1,
		DataPseudocount:     0.1,
	})
	require.NoError(t, err)

	_, err = d.Run(corpus, nil)
	require.NoError(t, err)

	priorSum := 0.0
	for k := 0; k < lib.K(); k++ {
		priorSum += lib.Components[k].Prior
		for i := 0; i < lib.W; i++ {
			assert.InDelta(t, 1.0, lib.ColumnSum(k, i), 1e-9)
		}
	}
	assert.InDelta(t, 1.0, priorSum, 1e-6)
}

// TestS5SingleClusterCapturesFullMass checks that a single-component
// library trained on a corpus generated from one point captures all
// prior mass after one scan and reproduces the observed distribution at
// its center column, up to the data pseudocount.
func TestS5SingleClusterCapturesFullMass(t *testing.T) {
	a := alphabet.AminoAcid()
	lib, err := context.New(a, 1, 1)
	require.NoError(t, err)

	idxA, _ := a.Index('A')
	pairs := make([]trainpair.Pair, 50)
	for i := range pairs {
		p, err := trainpair.NewPair([]int{idxA}, onehot(a, 'A'))
		require.NoError(t, err)
		pairs[i] = p
	}
	corpus := makeCorpus(t, a, pairs)

	d, err := NewDriver(lib, Config{
		MaxScans:            1,
		MinScans:            1,
		LogLikelihoodChange: 1e-6,
		Blending:            1.0,
		NumBlocks:           1,
		StatePseudocount:    0,
		DataPseudocount:     0,
	})
	require.NoError(t, err)

	_, err = d.Run(corpus, nil)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, lib.Components[0].Prior, 1e-9)
	assert.InDelta(t, 1.0, lib.Components[0].Profile[0][idxA], 1e-9)
}
