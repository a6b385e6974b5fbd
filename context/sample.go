package context

import (
	"math/rand"

	"github.com/soedinglab/csblast/alphabet"
	"github.com/soedinglab/csblast/internal/csrand"
	"github.com/soedinglab/csblast/trainpair"
)

// SampleLibrary initializes a k-component library by drawing k training
// windows uniformly at random from corpus and turning each into a profile
// (one-hot per column, spread slightly by a Laplace pseudocount so no entry
// is exactly zero before the first EM scan), seeding the library from
// sampled windows rather than a flat uniform start.
func SampleLibrary(a alphabet.Alphabet, corpus trainpair.Corpus, k int, rng *rand.Rand) (*Library, error) {
	lib, err := New(a, corpus.W, k)
	if err != nil {
		return nil, err
	}
	if rng == nil {
		rng = csrand.New(0)
	}
	n := corpus.Len()
	const laplace = 1.0
	for c := 0; c < k; c++ {
		pair := corpus.Pairs[rng.Intn(n)]
		for i, x := range pair.X {
			col := lib.Components[c].Profile[i]
			for letter := range col {
				col[letter] = laplace
			}
			if x != a.Any() {
				col[x] += float64(a.Size()) // heavier mass on the observed letter
			}
			normalizeInPlace(col)
		}
		copy(lib.Components[c].Pseudocounts, lib.Components[c].Profile[lib.Center])
		lib.Components[c].Prior = 1.0 / float64(k)
	}
	return lib, nil
}

func normalizeInPlace(v []float64) {
	sum := 0.0
	for _, x := range v {
		sum += x
	}
	if sum == 0 {
		return
	}
	for i := range v {
		v[i] /= sum
	}
}
