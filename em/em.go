// Package em trains a context library by expectation-maximization over a
// corpus of training pairs, using online mini-batch sufficient statistics
// blended across blocks.
package em

import (
	"fmt"
	"math"

	"github.com/pbenner/threadpool"

	"github.com/soedinglab/csblast/context"
	"github.com/soedinglab/csblast/cserr"
	"github.com/soedinglab/csblast/emission"
	"github.com/soedinglab/csblast/internal/workers"
	"github.com/soedinglab/csblast/posterior"
	"github.com/soedinglab/csblast/telemetry"
	"github.com/soedinglab/csblast/trainpair"
)

// Config controls one training run.
type Config struct {
	MaxScans            int
	MinScans            int
	LogLikelihoodChange float64 // stop when the relative change drops below this
	Blending            float64 // eta, the online-EM running-statistics decay
	NumBlocks           int     // 0 selects trainpair.DefaultNumBlocks
	StatePseudocount    float64 // Dirichlet smoothing added to prior mass
	DataPseudocount     float64 // Dirichlet smoothing added to emission counts
	Weights             emission.Weights
	Pool                threadpool.ThreadPool
}

// sufficientStats holds the running, blended mixture statistics: per
// component prior mass and per-column emission counts.
type sufficientStats struct {
	priorMass []float64   // len K
	emissions [][][]float64 // K x W x A
}

func newSufficientStats(k, w, a int) sufficientStats {
	s := sufficientStats{priorMass: make([]float64, k), emissions: make([][][]float64, k)}
	for c := 0; c < k; c++ {
		s.emissions[c] = make([][]float64, w)
		for i := range s.emissions[c] {
			s.emissions[c][i] = make([]float64, a)
		}
	}
	return s
}

func (s *sufficientStats) addFrom(o sufficientStats) {
	for k := range s.priorMass {
		s.priorMass[k] += o.priorMass[k]
		for i := range s.emissions[k] {
			for a := range s.emissions[k][i] {
				s.emissions[k][i][a] += o.emissions[k][i][a]
			}
		}
	}
}

func (s *sufficientStats) scale(eta float64) {
	for k := range s.priorMass {
		s.priorMass[k] *= eta
		for i := range s.emissions[k] {
			for a := range s.emissions[k][i] {
				s.emissions[k][i][a] *= eta
			}
		}
	}
}

// Driver runs EM scans over a context library in place.
type Driver struct {
	Library *context.Library
	Config  Config

	running sufficientStats
}

// NewDriver builds a driver for lib with the given config, defaulting
// Weights when unset. An unset NumBlocks is resolved per scan by RunScan.
func NewDriver(lib *context.Library, cfg Config) (*Driver, error) {
	if cfg.Blending <= 0 || cfg.Blending > 1 {
		return nil, fmt.Errorf("%w: blending must be in (0,1], got %v", cserr.ErrConfigConflict, cfg.Blending)
	}
	if cfg.Weights.Values == nil {
		w, err := emission.DefaultWeights(lib.W)
		if err != nil {
			return nil, err
		}
		cfg.Weights = w
	}
	return &Driver{
		Library: lib,
		Config:  cfg,
		running: newSufficientStats(lib.K(), lib.W, lib.Alphabet.Size()),
	}, nil
}

// blockStats computes one block's sufficient statistics, parallelized
// across training pairs with per-worker accumulators merged in worker-id
// order.
func (d *Driver) blockStats(block []trainpair.Pair) (sufficientStats, float64, error) {
	k := d.Library.K()
	a := d.Library.Alphabet.Size()
	w := d.Library.W
	anyIdx := d.Library.Alphabet.Any()

	numThreads := 1
	if d.Config.Pool.NumberOfThreads() > 0 {
		numThreads = d.Config.Pool.NumberOfThreads()
	}
	partials := make([]sufficientStats, numThreads)
	logliks := make([]float64, numThreads)
	for i := range partials {
		partials[i] = newSufficientStats(k, w, a)
	}

	err := workers.Run(d.Config.Pool, len(block), func(worker int, r workers.Range) error {
		acc := &partials[worker]
		ll := 0.0
		for n := r.Begin; n < r.End; n++ {
			pair := block[n]
			logLib, post, err := posterior.LibraryResponsibilities(d.Library, d.Config.Weights, pair.X, anyIdx)
			if err != nil {
				return err
			}
			for c := 0; c < k; c++ {
				acc.priorMass[c] += post[c]
				for i, x := range pair.X {
					if i == logLib.Center {
						for letter, mass := range pair.Y {
							acc.emissions[c][i][letter] += post[c] * mass
						}
						continue
					}
					if x == anyIdx {
						continue
					}
					acc.emissions[c][i][x] += post[c]
				}
			}
			marginal := 0.0
			for c := 0; c < k; c++ {
				score, err := emission.ScoreSequence(d.Config.Weights, logLib.Components[c].Profile, pair.X, anyIdx, logLib.Center)
				if err != nil {
					return err
				}
				marginal += logLib.Components[c].Prior * math.Exp2(score)
			}
			if marginal > 0 {
				ll += math.Log2(marginal)
			}
		}
		logliks[worker] = ll
		return nil
	})
	if err != nil {
		return sufficientStats{}, 0, err
	}

	total := newSufficientStats(k, w, a)
	logLik := 0.0
	for i := 0; i < numThreads; i++ {
		total.addFrom(partials[i])
		logLik += logliks[i]
	}
	return total, logLik, nil
}

// mStep normalizes the running sufficient statistics into new priors,
// profiles and pseudocounts, skipping components with zero accumulated
// evidence.
func (d *Driver) mStep() {
	k := d.Library.K()
	a := d.Library.Alphabet.Size()
	priorTotal := 0.0
	for c := 0; c < k; c++ {
		priorTotal += d.running.priorMass[c] + d.Config.StatePseudocount
	}
	for c := 0; c < k; c++ {
		if d.running.priorMass[c] <= 0 {
			continue
		}
		d.Library.Components[c].Prior = (d.running.priorMass[c] + d.Config.StatePseudocount) / priorTotal
		for i := 0; i < d.Library.W; i++ {
			colTotal := 0.0
			for x := 0; x < a; x++ {
				colTotal += d.running.emissions[c][i][x] + d.Config.DataPseudocount
			}
			for x := 0; x < a; x++ {
				d.Library.Components[c].Profile[i][x] = (d.running.emissions[c][i][x] + d.Config.DataPseudocount) / colTotal
			}
		}
		copy(d.Library.Components[c].Pseudocounts, d.Library.Components[c].Profile[d.Library.Center])
	}
}

// RunScan performs one online-EM scan: the corpus is split into blocks,
// and after each block's statistics are folded into the running total
// (running = eta*running + block) an M-step immediately updates the
// library.
func (d *Driver) RunScan(corpus trainpair.Corpus, cb telemetry.Callback, scan int) (logLikelihood float64, stop bool, err error) {
	numBlocks := d.Config.NumBlocks
	if numBlocks <= 0 {
		numBlocks = trainpair.DefaultNumBlocks(corpus.Len())
	}
	blocks := corpus.Blocks(numBlocks)
	for b, block := range blocks {
		stats, ll, err := d.blockStats(block)
		if err != nil {
			return 0, false, err
		}
		d.running.scale(d.Config.Blending)
		d.running.addFrom(stats)
		d.mStep()
		logLikelihood += ll
		if cb != nil && cb(scan, b, ll, 0) {
			return logLikelihood, true, nil
		}
	}
	return logLikelihood, false, nil
}

// Run drives scans to convergence: it stops once MinScans have elapsed and
// the relative change in per-scan log-likelihood drops below
// LogLikelihoodChange, or once MaxScans is reached.
func (d *Driver) Run(corpus trainpair.Corpus, cb telemetry.Callback) (converged bool, err error) {
	prevLL := math.Inf(-1)
	for scan := 0; scan < d.Config.MaxScans; scan++ {
		ll, stop, err := d.RunScan(corpus, cb, scan)
		if err != nil {
			return false, err
		}
		d.Library.Iterations++
		if stop {
			return false, nil
		}
		if scan+1 >= d.Config.MinScans && !math.IsInf(prevLL, -1) {
			change := math.Abs(ll-prevLL) / math.Max(1, math.Abs(prevLL))
			if change < d.Config.LogLikelihoodChange {
				return true, nil
			}
		}
		prevLL = ll
	}
	return false, nil
}
