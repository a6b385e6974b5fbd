// Package crfgrad computes the regularized conditional negative log-likelihood and
// its analytic gradient for a CRF model against a training corpus. No
// automatic differentiation is used: every partial derivative below is
// worked out by hand.
package crfgrad

import "github.com/soedinglab/csblast/crf"

// PriorConfig holds the Gaussian prior hyperparameters applied to a CRF
// model's bias and context weights. Pseudocount logits (PCWeights) are
// left unregularized: softmax is already invariant to any uniform
// shift, and a converged pseudocount distribution should be free to sit
// anywhere on the simplex.
type PriorConfig struct {
	SigmaContext float64 // baseline std-dev for context weights at the center column
	SigmaDecay   float64 // per-column decay applied away from the center, in (0,1]
	SigmaBias    float64 // std-dev for the bias term
}

// columnSigma returns the standard deviation used for context weights at
// column i, decaying geometrically with distance from the center:
// sigma_i = SigmaContext * SigmaDecay^|i-center|.
func (p PriorConfig) columnSigma(i, center int) float64 {
	d := i - center
	if d < 0 {
		d = -d
	}
	sigma := p.SigmaContext
	for j := 0; j < d; j++ {
		sigma *= p.SigmaDecay
	}
	return sigma
}

// Evaluate returns the Gaussian penalty term and its gradient in the same
// flat layout as crf.Model.Flatten/Unflatten: [bias, context weights
// row-major, pc weights] per state. The pc-weight block of the gradient is
// always zero.
func (p PriorConfig) Evaluate(m *crf.Model) (value float64, grad []float64) {
	grad = make([]float64, m.NumParams()*m.K())
	for k, s := range m.States {
		biasIdx, contextBase, _ := m.ParamIndex(k)

		bVar := p.SigmaBias * p.SigmaBias
		value += 0.5 * s.Bias * s.Bias / bVar
		grad[biasIdx] = s.Bias / bVar

		a := m.Alphabet.Size()
		for i, col := range s.ContextWeights {
			sigma := p.columnSigma(i, m.Center)
			cVar := sigma * sigma
			for j, c := range col {
				value += 0.5 * c * c / cVar
				grad[contextBase+i*a+j] = c / cVar
			}
		}
	}
	return value, grad
}
