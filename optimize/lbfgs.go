// Package optimize provides the two parameter-search strategies this module
// offers on top of a caller-supplied gradient oracle: a deterministic
// L-BFGS minimizer and a stochastic Hamiltonian Monte Carlo sampler. Both
// treat the oracle as an opaque function; neither differentiates
// anything itself.
package optimize

import (
	"math"

	"github.com/soedinglab/csblast/telemetry"
)

// Oracle evaluates the training objective and its gradient at theta,
// optionally against just one block of the corpus (numBlocks==1 selects
// the full corpus).
type Oracle func(theta []float64, block, numBlocks int) (value float64, grad []float64, err error)

// LBFGS minimizes an Oracle with the limited-memory BFGS two-loop
// recursion and Armijo backtracking, grounded on the from-scratch L-BFGS
// used elsewhere in this codebase's lineage, minus its orthant-projection
// machinery: this module's prior is a smooth Gaussian, not an L1 term, so
// there is no non-smooth kink to route around.
type LBFGS struct {
	Memory            int
	MaxIterations     int
	GradientTolerance float64
}

// lbfgsMemory holds the last up-to-m (s,y,rho) correction triples.
type lbfgsMemory struct {
	n, m       int
	s, y       [][]float64
	rho        []float64
	k, size    int
}

func newLBFGSMemory(n, m int) *lbfgsMemory {
	if m < 1 {
		m = 1
	}
	return &lbfgsMemory{n: n, m: m, s: make([][]float64, m), y: make([][]float64, m), rho: make([]float64, m)}
}

func (l *lbfgsMemory) update(s, y []float64) {
	sy := dot(s, y)
	if sy <= 0 {
		return
	}
	idx := l.k % l.m
	l.s[idx] = append([]float64(nil), s...)
	l.y[idx] = append([]float64(nil), y...)
	l.rho[idx] = 1.0 / sy
	l.k++
	if l.size < l.m {
		l.size++
	}
}

func (l *lbfgsMemory) direction(grad []float64) []float64 {
	q := append([]float64(nil), grad...)
	if l.size == 0 {
		for i := range q {
			q[i] = -q[i]
		}
		return q
	}

	alpha := make([]float64, l.size)
	for i := l.size - 1; i >= 0; i-- {
		idx := ((l.k-1-(l.size-1-i))%l.m + l.m) % l.m
		alpha[i] = l.rho[idx] * dot(l.s[idx], q)
		for j := range q {
			q[j] -= alpha[i] * l.y[idx][j]
		}
	}

	latest := ((l.k-1)%l.m + l.m) % l.m
	yy := dot(l.y[latest], l.y[latest])
	if yy > 0 {
		gamma := dot(l.s[latest], l.y[latest]) / yy
		for i := range q {
			q[i] *= gamma
		}
	}

	for i := 0; i < l.size; i++ {
		idx := ((l.k-l.size+i)%l.m + l.m) % l.m
		beta := l.rho[idx] * dot(l.y[idx], q)
		for j := range q {
			q[j] += (alpha[i] - beta) * l.s[idx][j]
		}
	}

	for i := range q {
		q[i] = -q[i]
	}
	return q
}

func dot(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

func norm(a []float64) float64 {
	max := 0.0
	for _, v := range a {
		if av := math.Abs(v); av > max {
			max = av
		}
	}
	return max
}

// Minimize runs L-BFGS against oracle starting from x0, calling cb after
// every iteration with the negated current objective value as its
// log-likelihood argument (the block argument is always 0, and the "prior" argument
// is left at 0; L-BFGS trains against a single combined objective, not a
// separate likelihood/prior split). It stops when the gradient's max-norm
// drops below GradientTolerance, MaxIterations is reached, or the line
// search fails to find a decrease.
func (o *LBFGS) Minimize(x0 []float64, oracle Oracle, cb telemetry.Callback) (x []float64, converged bool, err error) {
	x = append([]float64(nil), x0...)
	mem := newLBFGSMemory(len(x), o.Memory)

	value, grad, err := oracle(x, 0, 1)
	if err != nil {
		return nil, false, err
	}

	for iter := 0; iter < o.MaxIterations; iter++ {
		if norm(grad) < o.GradientTolerance {
			return x, true, nil
		}

		dir := mem.direction(grad)
		step, xNew, valueNew, gradNew, err := backtrack(x, dir, value, grad, oracle)
		if err != nil {
			return nil, false, err
		}
		if step == 0 {
			return x, false, nil
		}

		s := make([]float64, len(x))
		y := make([]float64, len(x))
		for i := range x {
			s[i] = xNew[i] - x[i]
			y[i] = gradNew[i] - grad[i]
		}
		mem.update(s, y)

		x, value, grad = xNew, valueNew, gradNew
		if cb != nil && cb(iter, 0, -value, 0) {
			return x, false, nil
		}
	}
	return x, false, nil
}

// backtrack performs Armijo backtracking line search along dir, halving
// the step until sufficient decrease is observed or the budget of trials
// is exhausted.
func backtrack(x, dir []float64, value float64, grad []float64, oracle Oracle) (step float64, xNew []float64, valueNew float64, gradNew []float64, err error) {
	deriv := dot(dir, grad)
	if deriv >= 0 {
		return 0, nil, 0, nil, nil
	}
	const armijo = 1e-4
	step = 1.0
	xNew = make([]float64, len(x))
	for trial := 0; trial < 30; trial++ {
		for i := range x {
			xNew[i] = x[i] + step*dir[i]
		}
		v, g, err := oracle(xNew, 0, 1)
		if err != nil {
			return 0, nil, 0, nil, err
		}
		if v <= value+armijo*step*deriv {
			return step, xNew, v, g, nil
		}
		step *= 0.5
	}
	return 0, nil, 0, nil, nil
}
