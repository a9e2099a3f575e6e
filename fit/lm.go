// SPDX-License-Identifier: MIT

package fit

import (
	"errors"
	"fmt"
	"math"

	"github.com/katalvlaran/latboot/matrix"
)

// Damping schedule of the Levenberg–Marquardt iteration.
const (
	lambdaInit  = 1e-3
	lambdaUp    = 10.0
	lambdaDown  = 10.0
	lambdaMax   = 1e16
	diagFloor   = 1e-15 // minimum diagonal scale for parameters with no signal
	gradientTol = 1e-12 // |Jᵀr|∞ relative to 1+chi² counted as stationary
)

// problem is one weighted least-squares dataset: rows of x coordinates,
// observations y and weights w = 1/σ.
type problem struct {
	model Model
	grad  Gradienter // nil ⇒ finite differences
	xs    [][]float64
	ys    []float64
	w     []float64
}

// minimum is the outcome of one minimisation.
type minimum struct {
	params []float64
	chi2   float64
	iters  int
}

// chiSquare fills r with weighted residuals (y−f)·w and returns Σr².
func (pb *problem) chiSquare(p, r []float64) float64 {
	var sum float64
	for k, x := range pb.xs {
		r[k] = (pb.ys[k] - pb.model.Eval(p, x)) * pb.w[k]
		sum += r[k] * r[k]
	}

	return sum
}

// jacobian returns the weighted Jacobian ∂f/∂p (n×k) at p.
func (pb *problem) jacobian(p []float64) (*matrix.Dense, error) {
	rows := make([][]float64, len(pb.xs))
	for k, x := range pb.xs {
		row := make([]float64, len(p))
		if pb.grad != nil {
			pb.grad.Gradient(p, x, row)
		} else {
			pb.numericGradient(p, x, row)
		}
		for j := range row {
			row[j] *= pb.w[k]
		}
		rows[k] = row
	}

	return matrix.NewDenseFrom(rows)
}

// numericGradient uses central differences with a step scaled to |p_j|.
func (pb *problem) numericGradient(p, x, grad []float64) {
	q := make([]float64, len(p))
	copy(q, p)
	for j := range p {
		h := 1e-6 * math.Max(math.Abs(p[j]), 1)
		q[j] = p[j] + h
		up := pb.model.Eval(q, x)
		q[j] = p[j] - h
		dn := pb.model.Eval(q, x)
		q[j] = p[j]
		grad[j] = (up - dn) / (2 * h)
	}
}

// minimize runs Levenberg–Marquardt from p0.
// Blueprint:
//
//	Stage 1 (Prepare): evaluate chi² at p0; a non-finite start is fatal.
//	Stage 2 (Execute): solve (JᵀJ + λ·diag(JᵀJ))·δ = Jᵀr; accept δ when
//	                   chi² drops (λ shrinks), reject otherwise (λ grows).
//	Stage 3 (Stop):    converged on a small relative chi² decrease or step,
//	                   or when λ saturates at a stationary point. Running
//	                   out of iterations is ErrNonConvergence.
func minimize(pb *problem, p0 []float64, o *Options) (minimum, error) {
	// Stage 1: Prepare.
	k := len(p0)
	p := make([]float64, k)
	copy(p, p0)
	r := make([]float64, len(pb.xs))
	trial := make([]float64, k)
	rTrial := make([]float64, len(pb.xs))
	chi2 := pb.chiSquare(p, r)
	if !finite(chi2) {
		return minimum{}, fmt.Errorf("minimize: chi² at start is %g: %w", chi2, ErrNonConvergence)
	}

	// Stage 2: Iterate.
	var (
		lambda = lambdaInit
		jac    *matrix.Dense
		gram   *matrix.Dense
		g      []float64
		diag   []float64
		a      *matrix.Dense
		delta  []float64
		fresh  = true // jacobian must be recomputed at p
		err    error
	)
	for iter := 1; iter <= o.maxIter; iter++ {
		if fresh {
			if jac, err = pb.jacobian(p); err != nil {
				return minimum{}, fmt.Errorf("minimize: %w", err)
			}
			gram = jac.Gram()
			if g, err = jac.MulTVec(r); err != nil {
				return minimum{}, fmt.Errorf("minimize: %w", err)
			}
			if diag, err = gram.Diagonal(); err != nil {
				return minimum{}, fmt.Errorf("minimize: %w", err)
			}
			fresh = false
			if infNorm(g) <= gradientTol*(1+chi2) {
				return minimum{params: p, chi2: chi2, iters: iter}, nil
			}
		}

		damp := make([]float64, k)
		for j, d := range diag {
			damp[j] = lambda * math.Max(d, diagFloor)
		}
		if a, err = gram.AddDiagonal(damp); err != nil {
			return minimum{}, fmt.Errorf("minimize: %w", err)
		}
		delta, err = matrix.Solve(a, g)
		if err != nil && !errors.Is(err, matrix.ErrSingular) && !errors.Is(err, matrix.ErrNaNInf) {
			return minimum{}, fmt.Errorf("minimize: %w", err)
		}

		accepted := false
		var trialChi2 float64
		if err == nil {
			for j := range trial {
				trial[j] = p[j] + delta[j]
			}
			trialChi2 = pb.chiSquare(trial, rTrial)
			accepted = finite(trialChi2) && trialChi2 < chi2
		}
		if !accepted {
			lambda *= lambdaUp
			if lambda > lambdaMax {
				// No step, however short, lowers chi²: a numerical minimum.
				return minimum{params: p, chi2: chi2, iters: iter}, nil
			}
			continue
		}

		// Stage 3: accept and test convergence.
		drop := chi2 - trialChi2
		step := relStep(delta, p)
		copy(p, trial)
		copy(r, rTrial)
		chi2 = trialChi2
		lambda = math.Max(lambda/lambdaDown, 1e-12)
		fresh = true
		if drop <= o.tol*math.Max(chi2, 1e-300) || step <= o.tol || chi2 == 0 {
			return minimum{params: p, chi2: chi2, iters: iter}, nil
		}
	}

	return minimum{}, fmt.Errorf("minimize: %d iterations, chi²=%g: %w", o.maxIter, chi2, ErrNonConvergence)
}

// relStep is max_j |δ_j| / max(|p_j|, 1).
func relStep(delta, p []float64) float64 {
	var m float64
	for j, d := range delta {
		m = math.Max(m, math.Abs(d)/math.Max(math.Abs(p[j]), 1))
	}

	return m
}

func infNorm(v []float64) float64 {
	var m float64
	for _, x := range v {
		m = math.Max(m, math.Abs(x))
	}

	return m
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
