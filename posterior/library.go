package posterior

import (
	"fmt"
	"math"

	"github.com/soedinglab/csblast/context"
	"github.com/soedinglab/csblast/cserr"
	"github.com/soedinglab/csblast/emission"
	"github.com/soedinglab/csblast/profile"
)

// cloneToLogSpace returns lib unchanged if it is already log-space, or a
// deep-cloned log-space copy otherwise. Shared by every posterior
// computation that needs a log-space library to score against.
func cloneToLogSpace(lib *context.Library) *context.Library {
	if lib.LogSpace {
		return lib
	}
	clone := *lib
	clone.Components = append([]context.Component(nil), lib.Components...)
	for i, c := range lib.Components {
		prof := make([][]float64, len(c.Profile))
		for j, col := range c.Profile {
			prof[j] = append([]float64(nil), col...)
		}
		clone.Components[i] = context.Component{Profile: prof, Prior: c.Prior, Pseudocounts: c.Pseudocounts}
	}
	clone.ToLogSpace()
	return &clone
}

// LibraryResponsibilities computes only the posterior component
// responsibilities post_k for one window, without the admixture step,
// converting lib to log-space first if necessary. It returns the (possibly
// cloned) log-space library alongside post so callers needing both the
// responsibilities and the library's other fields (Center, Pseudocounts)
// don't have to convert twice. This is what EM training's E-step calls
// directly: the admixture blending in Library only matters for scoring.
func LibraryResponsibilities(lib *context.Library, w emission.Weights, window []int, anyIdx int) (logLib *context.Library, post []float64, err error) {
	logLib = cloneToLogSpace(lib)
	if len(window) != logLib.W {
		return nil, nil, fmt.Errorf("%w: window has %d columns, want %d", cserr.ErrShapeMismatch, len(window), logLib.W)
	}

	k := logLib.K()
	logR := make([]float64, k)
	for i, c := range logLib.Components {
		score, err := emission.ScoreSequence(w, c.Profile, window, anyIdx, logLib.Center)
		if err != nil {
			return nil, nil, err
		}
		logR[i] = math.Log(c.Prior) + score*math.Ln2
	}
	post, err = softmax(logR)
	if err != nil {
		return nil, nil, err
	}
	return logLib, post, nil
}

// Library computes the posterior component responsibilities and the
// admixed emission distribution for one column of a subject sequence
// against a context library:
//
//	r_k    = prior_k * 2^score_k
//	post_k = r_k / Σ_j r_j
//	p(a)   = Σ_k post_k * pseudocounts_k[a]
//	mixed(a) = (1-tau)*[x_center==a] + tau*p(a)
func Library(lib *context.Library, w emission.Weights, window []int, anyIdx int, adm Admixture, neff float64) (post, mixed []float64, err error) {
	logLib, post, err := LibraryResponsibilities(lib, w, window, anyIdx)
	if err != nil {
		return nil, nil, err
	}

	a := logLib.Alphabet.Size()
	p := make([]float64, a)
	for i, c := range logLib.Components {
		for x, v := range c.Pseudocounts {
			p[x] += post[i] * v
		}
	}

	tau := adm.Tau(neff)
	mixed = make([]float64, a)
	center := window[logLib.Center]
	for x := range mixed {
		delta := 0.0
		if x == center {
			delta = 1.0
		}
		mixed[x] = (1-tau)*delta + tau*p[x]
	}
	return post, mixed, nil
}

// LibraryProfile computes the posterior component responsibilities and
// the admixed emission distribution for one column j of a count or
// frequency profile subject against a context library. It is the
// profile-scoring counterpart of Library, for a caller that already holds
// a multi-sequence profile (e.g. from a multiple alignment) rather than a
// single residue window:
//
//	r_k      = prior_k * 2^score_k
//	post_k   = r_k / Σ_j r_j
//	p(a)     = Σ_k post_k * pseudocounts_k[a]
//	mixed(a) = (1-tau)*subject[j][a] + tau*p(a)
//
// tau is drawn from the subject's own column N_eff, since a profile
// column already carries its effective sequence count.
func LibraryProfile(lib *context.Library, w emission.Weights, subject *profile.CountProfile, j int, adm Admixture) (post, mixed []float64, err error) {
	logLib := cloneToLogSpace(lib)
	if subject.Alphabet.Size() != logLib.Alphabet.Size() {
		return nil, nil, fmt.Errorf("%w: subject alphabet size %d != library alphabet size %d", cserr.ErrShapeMismatch, subject.Alphabet.Size(), logLib.Alphabet.Size())
	}
	freq := subject
	if subject.IsCounts {
		freq = subject.ToFrequencies()
	}
	if j < 0 || j >= freq.W() {
		return nil, nil, fmt.Errorf("%w: column index %d out of range [0,%d)", cserr.ErrShapeMismatch, j, freq.W())
	}

	k := logLib.K()
	logR := make([]float64, k)
	for i, c := range logLib.Components {
		score, err := emission.ScoreProfile(w, c.Profile, true, freq.Data, j)
		if err != nil {
			return nil, nil, err
		}
		logR[i] = math.Log(c.Prior) + score*math.Ln2
	}
	post, err = softmax(logR)
	if err != nil {
		return nil, nil, err
	}

	a := logLib.Alphabet.Size()
	p := make([]float64, a)
	for i, c := range logLib.Components {
		for x, v := range c.Pseudocounts {
			p[x] += post[i] * v
		}
	}

	tau := adm.Tau(freq.NEff[j])
	mixed = make([]float64, a)
	for x := range mixed {
		mixed[x] = (1-tau)*freq.Data[j][x] + tau*p[x]
	}
	return post, mixed, nil
}

// softmax returns the normalized exponentials of logits, using the
// log-sum-exp trick for numerical stability. It fails when every logit is
// -Inf (every component scores zero probability for the column), which
// would otherwise divide 0 by 0 and return a silent NaN vector.
func softmax(logits []float64) ([]float64, error) {
	max := math.Inf(-1)
	for _, v := range logits {
		if v > max {
			max = v
		}
	}
	if math.IsInf(max, -1) {
		return nil, fmt.Errorf("%w: every component has zero probability for this column", cserr.ErrNumericalFault)
	}
	out := make([]float64, len(logits))
	sum := 0.0
	for i, v := range logits {
		e := math.Exp(v - max)
		out[i] = e
		sum += e
	}
	for i := range out {
		out[i] /= sum
	}
	return out, nil
}
