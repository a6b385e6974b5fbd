package trainpair

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soedinglab/csblast/internal/csrand"
)

func mustPair(t *testing.T, x []int, y []float64) Pair {
	t.Helper()
	p, err := NewPair(x, y)
	require.NoError(t, err)
	return p
}

func TestNewPairRejectsEvenWindow(t *testing.T) {
	_, err := NewPair([]int{0, 1}, []float64{1, 0})
	assert.Error(t, err)
}

func TestNewPairRejectsBadTarget(t *testing.T) {
	_, err := NewPair([]int{0}, []float64{0.5, 0.2})
	assert.Error(t, err)
}

func TestCenter(t *testing.T) {
	p := mustPair(t, []int{0, 1, 2, 3, 4}, []float64{1, 0})
	assert.Equal(t, 2, p.Center())
}

func TestBlocksPartitionIsContiguousAndCovers(t *testing.T) {
	pairs := make([]Pair, 10)
	for i := range pairs {
		pairs[i] = mustPair(t, []int{i}, []float64{1, 0})
	}
	c, err := NewCorpus(pairs)
	require.NoError(t, err)

	blocks := c.Blocks(3)
	require.Len(t, blocks, 3)
	total := 0
	for _, b := range blocks {
		total += len(b)
	}
	assert.Equal(t, 10, total)
	// contiguity: concatenation reproduces original order
	var reassembled []Pair
	for _, b := range blocks {
		reassembled = append(reassembled, b...)
	}
	for i := range pairs {
		assert.Equal(t, pairs[i].X[0], reassembled[i].X[0])
	}
}

func TestShuffleIsDeterministicForSameSeed(t *testing.T) {
	pairs := make([]Pair, 20)
	for i := range pairs {
		pairs[i] = mustPair(t, []int{i}, []float64{1, 0})
	}
	c, err := NewCorpus(pairs)
	require.NoError(t, err)

	s1 := c.Shuffle(csrand.New(42))
	s2 := c.Shuffle(csrand.New(42))
	for i := range s1.Pairs {
		assert.Equal(t, s1.Pairs[i].X[0], s2.Pairs[i].X[0])
	}
}

func TestDefaultNumBlocks(t *testing.T) {
	assert.Equal(t, 1, DefaultNumBlocks(0))
	assert.Equal(t, 1, DefaultNumBlocks(50))
	assert.Equal(t, 10, DefaultNumBlocks(1000))
}
