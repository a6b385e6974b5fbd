package crfgrad

import (
	"fmt"
	"math"

	"github.com/pbenner/threadpool"

	"github.com/soedinglab/csblast/crf"
	"github.com/soedinglab/csblast/cserr"
	"github.com/soedinglab/csblast/emission"
	"github.com/soedinglab/csblast/internal/workers"
	"github.com/soedinglab/csblast/trainpair"
)

// Result is the value and gradient of one Evaluate call, in
// crf.Model.Flatten's flat parameter layout.
type Result struct {
	Value float64
	Grad  []float64
}

// Evaluator computes the regularized conditional negative log-likelihood
// of a CRF model and its gradient against one block of a training corpus,
// so an optimizer can evaluate against a mini-batch instead of the full
// corpus.
type Evaluator struct {
	Model      *crf.Model
	Weights    emission.Weights
	Background []float64 // alphabet-length null distribution, used only for the reported baseline
	Prior      PriorConfig
	Pool       threadpool.ThreadPool
}

// accumulator holds one worker's running loss and flat gradient contribution
// across the pairs it's assigned, before the per-worker partials are summed
// into the block total.
type accumulator struct {
	loss float64
	grad []float64
}

// Evaluate computes the data term over corpus.Blocks(numBlocks)[block],
// scaled by that block's share f of the full corpus (len(block)/corpus.Len()),
// and the Gaussian prior's contribution scaled by the same f, so summing the
// returned value across all blocks of one epoch reproduces exactly one full
// data pass plus one full prior penalty. numBlocks==1 selects the whole
// corpus as a single block (f==1), the mode L-BFGS always calls with.
func (e *Evaluator) Evaluate(corpus trainpair.Corpus, block, numBlocks int) (Result, error) {
	if numBlocks <= 0 {
		numBlocks = 1
	}
	blocks := corpus.Blocks(numBlocks)
	if block < 0 || block >= len(blocks) {
		return Result{}, fmt.Errorf("%w: block %d out of range [0,%d)", cserr.ErrConfigConflict, block, len(blocks))
	}
	pairs := blocks[block]
	if len(pairs) == 0 {
		return Result{}, fmt.Errorf("%w: empty block", cserr.ErrShapeMismatch)
	}

	numParams := e.Model.NumParams() * e.Model.K()
	numThreads := 1
	if e.Pool.NumberOfThreads() > 0 {
		numThreads = e.Pool.NumberOfThreads()
	}
	partials := make([]accumulator, numThreads)
	for i := range partials {
		partials[i] = accumulator{grad: make([]float64, numParams)}
	}

	anyIdx := e.Model.Alphabet.Any()
	err := workers.Run(e.Pool, len(pairs), func(worker int, r workers.Range) error {
		acc := &partials[worker]
		for n := r.Begin; n < r.End; n++ {
			l, err := e.accumulatePair(pairs[n], anyIdx, acc.grad)
			if err != nil {
				return err
			}
			acc.loss += l
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	total := accumulator{grad: make([]float64, numParams)}
	for _, p := range partials {
		total.loss += p.loss
		for i, v := range p.grad {
			total.grad[i] += v
		}
	}

	totalN := float64(corpus.Len())
	value := total.loss / totalN
	grad := make([]float64, numParams)
	for i := range grad {
		grad[i] = total.grad[i] / totalN
	}

	f := float64(len(pairs)) / totalN
	priorVal, priorGrad := e.Prior.Evaluate(e.Model)
	value += f * priorVal
	for i := range grad {
		grad[i] += f * priorGrad[i]
	}

	return Result{Value: value, Grad: grad}, nil
}

// accumulatePair folds one training pair's loss and gradient into grad
// (which the caller pre-zeroed) and returns the pair's loss contribution.
//
// With P_k = softmax(u)_k, pc_k = softmax(q_k), r_a = sum_k P_k*pc_k[a],
// loss(n) = -sum_a y_a*log(r_a):
//
//	phi_k    = sum_a (y_a/r_a) * pc_k[a]
//	psi      = sum_k phi_k * P_k
//	dL/du_k  = P_k * (psi - phi_k)
//	dL/db_k  = dL/du_k
//	dL/dc_k[i][x_i] += dL/du_k * w[i-j+center]      (for i in the window overlap)
//	dL/dq_k[a]  = P_k * pc_k[a] * (phi_k - y_a/r_a)
func (e *Evaluator) accumulatePair(pair trainpair.Pair, anyIdx int, grad []float64) (float64, error) {
	m := e.Model
	k := m.K()
	a := m.Alphabet.Size()
	center := (len(pair.X) - 1) / 2

	u := make([]float64, k)
	pc := make([][]float64, k)
	for s, state := range m.States {
		score, err := emission.ScoreCRFState(e.Weights, state.Bias, state.ContextWeights, pair.X, anyIdx, center)
		if err != nil {
			return 0, err
		}
		u[s] = score
		pc[s] = state.Pseudocounts()
	}
	pState := softmax(u)

	r := make([]float64, a)
	for s := range m.States {
		for x, v := range pc[s] {
			r[x] += pState[s] * v
		}
	}
	for x, y := range pair.Y {
		if y > 0 && r[x] <= 0 {
			return 0, fmt.Errorf("%w: zero mixed probability for observed letter with positive target mass", cserr.ErrNumericalFault)
		}
	}

	loss := 0.0
	for x, y := range pair.Y {
		if y > 0 {
			loss -= y * math.Log(r[x])
		}
	}

	phi := make([]float64, k)
	for s := range m.States {
		sum := 0.0
		for x, y := range pair.Y {
			if y > 0 {
				sum += (y / r[x]) * pc[s][x]
			}
		}
		phi[s] = sum
	}
	psi := 0.0
	for s := range m.States {
		psi += phi[s] * pState[s]
	}

	overlapLo, overlapHi := center-m.Center, center+m.Center
	if overlapLo < 0 {
		overlapLo = 0
	}
	if overlapHi > len(pair.X)-1 {
		overlapHi = len(pair.X) - 1
	}

	for s := range m.States {
		dLdu := pState[s] * (psi - phi[s])
		biasIdx, contextBase, pcBase := m.ParamIndex(s)
		grad[biasIdx] += dLdu

		for i := overlapLo; i <= overlapHi; i++ {
			if pair.X[i] == anyIdx {
				continue
			}
			wi := e.Weights.Values[i-center+m.Center]
			grad[contextBase+i*a+pair.X[i]] += dLdu * wi
		}

		for x, p := range pc[s] {
			yTerm := 0.0
			if pair.Y[x] > 0 {
				yTerm = pair.Y[x] / r[x]
			}
			grad[pcBase+x] += pState[s] * p * (phi[s] - yTerm)
		}
	}

	return loss, nil
}

func softmax(logits []float64) []float64 {
	max := math.Inf(-1)
	for _, v := range logits {
		if v > max {
			max = v
		}
	}
	out := make([]float64, len(logits))
	sum := 0.0
	for i, v := range logits {
		ex := math.Exp(v - max)
		out[i] = ex
		sum += ex
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// BackgroundBaseline returns the average cross-entropy of every pair's
// target against Background, for telemetry comparison against the trained
// model's loss. It plays no role in Evaluate's gradient.
func (e *Evaluator) BackgroundBaseline(corpus trainpair.Corpus) float64 {
	if len(e.Background) == 0 {
		return 0
	}
	total := 0.0
	for _, p := range corpus.Pairs {
		for x, y := range p.Y {
			if y > 0 && e.Background[x] > 0 {
				total -= y * math.Log(e.Background[x])
			}
		}
	}
	return total / float64(len(corpus.Pairs))
}
