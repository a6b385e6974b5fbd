// Package csblast wires the emission, context-library, CRF, EM, gradient,
// optimizer and serialization packages into the entry points a
// collaborator (a pairwise search driver, an alignment parser, a CLI) would
// actually call: TrainLibrary, TrainCRF, Infer and InferProfile. It owns no algorithm of
// its own — everything here is composition.
package csblast

import (
	"fmt"

	"github.com/soedinglab/csblast/alphabet"
	"github.com/soedinglab/csblast/context"
	"github.com/soedinglab/csblast/crf"
	"github.com/soedinglab/csblast/crfgrad"
	"github.com/soedinglab/csblast/cserr"
	"github.com/soedinglab/csblast/em"
	"github.com/soedinglab/csblast/emission"
	"github.com/soedinglab/csblast/internal/csrand"
	"github.com/soedinglab/csblast/optimize"
	"github.com/soedinglab/csblast/posterior"
	"github.com/soedinglab/csblast/profile"
	"github.com/soedinglab/csblast/telemetry"
	"github.com/soedinglab/csblast/trainpair"
)

// LibraryConfig collects everything TrainLibrary needs beyond the corpus
// itself as a single flat struct rather than nested option objects.
type LibraryConfig struct {
	NumComponents int
	Seed          int64
	EM            em.Config
}

// TrainLibrary samples an initial context library from corpus and runs EM
// to convergence (or Config.EM.MaxScans, whichever comes first).
func TrainLibrary(a alphabet.Alphabet, corpus trainpair.Corpus, cfg LibraryConfig, progress telemetry.Callback) (*context.Library, bool, error) {
	if cfg.NumComponents <= 0 {
		return nil, false, fmt.Errorf("%w: NumComponents must be positive, got %d", cserr.ErrConfigConflict, cfg.NumComponents)
	}
	rng := csrand.New(cfg.Seed)
	lib, err := context.SampleLibrary(a, corpus, cfg.NumComponents, rng)
	if err != nil {
		return nil, false, err
	}

	driver, err := em.NewDriver(lib, cfg.EM)
	if err != nil {
		return nil, false, err
	}
	converged, err := driver.Run(corpus, progress)
	if err != nil {
		return nil, false, err
	}
	return lib, converged, nil
}

// CRFConfig collects everything TrainCRF needs beyond the corpus and an
// optional jumpstart library.
type CRFConfig struct {
	Window     int // ignored when Jumpstart is non-nil
	NumStates  int // ignored when Jumpstart is non-nil
	Jumpstart  *context.Library
	Weights    emission.Weights
	Prior      crfgrad.PriorConfig
	Background []float64
	Optimizer  optimize.LBFGS
}

// TrainCRF builds a CRF model — either freshly, or jumpstarted from a
// converged context library — and fits it to corpus with L-BFGS over the
// crfgrad-computed regularized gradient.
func TrainCRF(a alphabet.Alphabet, corpus trainpair.Corpus, cfg CRFConfig, progress telemetry.Callback) (*crf.Model, bool, error) {
	var m *crf.Model
	if cfg.Jumpstart != nil {
		m = crf.FromLibrary(cfg.Jumpstart)
	} else {
		var err error
		m, err = crf.New(a, cfg.Window, cfg.NumStates)
		if err != nil {
			return nil, false, err
		}
	}

	evaluator := &crfgrad.Evaluator{Model: m, Weights: cfg.Weights, Background: cfg.Background, Prior: cfg.Prior}

	oracle := func(theta []float64, block, numBlocks int) (float64, []float64, error) {
		if err := m.Unflatten(theta); err != nil {
			return 0, nil, err
		}
		res, err := evaluator.Evaluate(corpus, block, numBlocks)
		if err != nil {
			return 0, nil, err
		}
		return res.Value, res.Grad, nil
	}

	theta0 := m.Flatten()
	thetaFinal, converged, err := cfg.Optimizer.Minimize(theta0, oracle, progress)
	if err != nil {
		return nil, false, err
	}
	if err := m.Unflatten(thetaFinal); err != nil {
		return nil, false, err
	}
	return m, converged, nil
}

// Infer computes the mixed emission distribution for one window against
// either a converged context library or a trained CRF model — never
// both, matching this module's tagged-variant emission kernel rather than
// a shared interface.
func Infer(lib *context.Library, model *crf.Model, w emission.Weights, window []int, anyIdx int, adm posterior.Admixture, neff float64) (mixed []float64, err error) {
	switch {
	case lib != nil && model != nil:
		return nil, fmt.Errorf("%w: Infer takes exactly one of lib or model", cserr.ErrConfigConflict)
	case lib != nil:
		_, mixed, err = posterior.Library(lib, w, window, anyIdx, adm, neff)
		return mixed, err
	case model != nil:
		_, mixed, err = posterior.CRF(model, w, window, anyIdx)
		return mixed, err
	default:
		return nil, fmt.Errorf("%w: Infer requires either lib or model", cserr.ErrConfigConflict)
	}
}

// InferProfile is Infer's counterpart for a caller that already holds a
// count or frequency profile (e.g. built from a multiple alignment)
// instead of a single sequence window. Only a context library supports
// profile-shaped subjects; a CRF state's context weights score discrete
// residues, not per-column frequency distributions.
func InferProfile(lib *context.Library, w emission.Weights, subject *profile.CountProfile, j int, adm posterior.Admixture) ([]float64, error) {
	_, mixed, err := posterior.LibraryProfile(lib, w, subject, j, adm)
	return mixed, err
}
