// Package posterior computes mixed emission probabilities by combining a
// column's observed letter with a library- or CRF-derived pseudocount
// distribution, blended according to an admixture rule.
package posterior

// Admixture decides how much weight (tau) the pseudocount distribution
// receives relative to the observed letter, as a function of a column's
// effective number of sequences (NEff).
type Admixture interface {
	Tau(neff float64) float64
}

// Constant always returns the same blending factor, ignoring NEff.
type Constant float64

// Tau implements Admixture.
func (c Constant) Tau(float64) float64 { return float64(c) }

// DivergenceDependent scales tau down as a column's evidence (NEff) grows,
// following the tau = A / (1 + (NEff-1)/B) rule: well-conserved columns
// with many effective sequences trust their own counts more and borrow
// less from the pseudocount distribution. NEff=1 (a single sequence, no
// real evidence) gives tau=A exactly.
type DivergenceDependent struct {
	A, B float64
}

// Tau implements Admixture.
func (d DivergenceDependent) Tau(neff float64) float64 {
	return d.A / (1 + (neff-1)/d.B)
}
