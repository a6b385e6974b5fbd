package crf

import (
	"math"

	"github.com/soedinglab/csblast/context"
)

// FromLibrary jumpstarts a CRF model from a trained generative context
// library: each component's log-space profile becomes a state's context
// weights, and its pseudocount distribution becomes a state's pc-weight
// logits via log(p_k). This builds an initial CRF directly out of a
// converged profile library rather than starting from zero.
func FromLibrary(lib *context.Library) *Model {
	logLib := lib
	if !lib.LogSpace {
		clone := *lib
		clone.Components = append([]context.Component(nil), lib.Components...)
		for i, c := range lib.Components {
			profile := make([][]float64, len(c.Profile))
			for j, col := range c.Profile {
				profile[j] = append([]float64(nil), col...)
			}
			clone.Components[i] = context.Component{Profile: profile, Prior: c.Prior, Pseudocounts: c.Pseudocounts}
		}
		clone.ToLogSpace()
		logLib = &clone
	}

	m := &Model{
		Alphabet: logLib.Alphabet,
		W:        logLib.W,
		Center:   logLib.Center,
		States:   make([]State, logLib.K()),
	}
	for k, c := range logLib.Components {
		cw := make([][]float64, logLib.W)
		for i, col := range c.Profile {
			cw[i] = append([]float64(nil), col...)
		}
		q := make([]float64, logLib.Alphabet.Size())
		for a, p := range c.Pseudocounts {
			if p <= 0 {
				q[a] = math.Inf(-1)
			} else {
				q[a] = math.Log(p)
			}
		}
		m.States[k] = State{
			Bias:           math.Log(c.Prior),
			ContextWeights: cw,
			PCWeights:      q,
		}
	}
	return m
}
