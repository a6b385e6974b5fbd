package posterior

import (
	"fmt"

	"github.com/soedinglab/csblast/crf"
	"github.com/soedinglab/csblast/cserr"
	"github.com/soedinglab/csblast/emission"
)

// CRF computes the posterior state responsibilities and the mixed emission
// distribution for one column of a subject sequence against a discriminative
// model:
//
//	u_k    = ScoreCRFState(state k)
//	post_k = softmax(u)_k
//	p(a)   = Σ_k post_k * softmax(state_k.PCWeights)[a]
func CRF(m *crf.Model, w emission.Weights, window []int, anyIdx int) (post, mixed []float64, err error) {
	if len(window) != m.W {
		return nil, nil, fmt.Errorf("%w: window has %d columns, want %d", cserr.ErrShapeMismatch, len(window), m.W)
	}

	u := make([]float64, m.K())
	for k, s := range m.States {
		score, err := emission.ScoreCRFState(w, s.Bias, s.ContextWeights, window, anyIdx, m.Center)
		if err != nil {
			return nil, nil, err
		}
		u[k] = score
	}
	post, err = softmax(u)
	if err != nil {
		return nil, nil, err
	}

	a := m.Alphabet.Size()
	mixed = make([]float64, a)
	for k, s := range m.States {
		pc := s.Pseudocounts()
		for x, v := range pc {
			mixed[x] += post[k] * v
		}
	}
	return post, mixed, nil
}
