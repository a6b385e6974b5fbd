package optimize

import (
	"math"
	"math/rand"

	"github.com/soedinglab/csblast/internal/csrand"
)

// HMC draws Metropolis-corrected samples using leapfrog-integrated
// Hamiltonian dynamics against a block-subsampled Oracle: each Step can
// be pointed at a single mini-batch instead of the full corpus.
type HMC struct {
	StepSize      float64
	LeapfrogSteps int
	Rng           *rand.Rand
}

// Step runs one leapfrog trajectory from x against oracle evaluated on
// block/numBlocks, and accepts or rejects the proposal with the standard
// Metropolis criterion on total energy (potential + kinetic). It returns
// x unchanged on rejection.
func (h *HMC) Step(x []float64, oracle Oracle, block, numBlocks int) ([]float64, error) {
	rng := h.Rng
	if rng == nil {
		rng = csrand.New(0)
	}

	n := len(x)
	p0 := make([]float64, n)
	for i := range p0 {
		p0[i] = rng.NormFloat64()
	}

	u0, grad, err := oracle(x, block, numBlocks)
	if err != nil {
		return nil, err
	}

	xNew := append([]float64(nil), x...)
	p := append([]float64(nil), p0...)
	for i := range p {
		p[i] -= 0.5 * h.StepSize * grad[i]
	}

	for step := 0; step < h.LeapfrogSteps; step++ {
		for i := range xNew {
			xNew[i] += h.StepSize * p[i]
		}
		_, grad, err = oracle(xNew, block, numBlocks)
		if err != nil {
			return nil, err
		}
		last := step == h.LeapfrogSteps-1
		scale := h.StepSize
		if last {
			scale = 0.5 * h.StepSize
		}
		for i := range p {
			p[i] -= scale * grad[i]
		}
	}

	uNew, _, err := oracle(xNew, block, numBlocks)
	if err != nil {
		return nil, err
	}

	kinetic0, kinetic1 := 0.0, 0.0
	for i := range p0 {
		kinetic0 += p0[i] * p0[i]
		kinetic1 += p[i] * p[i]
	}
	h0 := u0 + 0.5*kinetic0
	h1 := uNew + 0.5*kinetic1

	if math.Log(rng.Float64()) < h0-h1 {
		return xNew, nil
	}
	return x, nil
}
