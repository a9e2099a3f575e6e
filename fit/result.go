// SPDX-License-Identifier: MIT

package fit

import (
	"fmt"
	"math"
	"slices"

	"github.com/katalvlaran/latboot/bootstrap"
	"github.com/katalvlaran/latboot/matrix"
)

// Result is the outcome of Fit: one Sample per parameter (central value
// from the central fit, replicas from the replica refits) and the central
// fit's chi-square.
type Result struct {
	Model          string             // Model.Name()
	Params         []string           // parameter names, Values order
	Values         []bootstrap.Sample // fitted parameters
	ChiSquare      float64            // central fit only
	DoF            int                // used points − parameters
	Used           []string           // labels of the points fitted
	Excluded       []string           // labels dropped for NaN
	FailedReplicas []int              // ReplicaNaN only

	model    Model
	central  []float64
	replicas [][]float64 // R × k
}

// ChiSquarePerDoF is ChiSquare/DoF, NaN when DoF ≤ 0.
func (r *Result) ChiSquarePerDoF() float64 {
	if r.DoF <= 0 {
		return math.NaN()
	}

	return r.ChiSquare / float64(r.DoF)
}

// NumUsed returns the number of points that entered the fit.
func (r *Result) NumUsed() int { return len(r.Used) }

// Param returns the Sample of the named parameter.
func (r *Result) Param(name string) (bootstrap.Sample, bool) {
	j := slices.Index(r.Params, name)
	if j < 0 {
		return bootstrap.Sample{}, false
	}

	return r.Values[j], true
}

// Evaluate returns the fitted curve at x as a Sample: the central value
// from the central parameters, replica i from replica i's parameters.
func (r *Result) Evaluate(x ...float64) (bootstrap.Sample, error) {
	if len(x) != r.model.Dim() {
		return bootstrap.Sample{}, fmt.Errorf("Evaluate: %d coordinates, want %d: %w", len(x), r.model.Dim(), ErrBadPoint)
	}
	reps := make([]float64, len(r.replicas))
	for i, p := range r.replicas {
		reps[i] = r.model.Eval(p, x)
	}

	return bootstrap.New(r.model.Eval(r.central, x), reps), nil
}

// Band evaluates a one-dimensional model on grid and reduces each point to
// central value ± bootstrap std-dev, the error band of the fitted curve.
func (r *Result) Band(grid []float64) ([]bootstrap.Estimate, error) {
	if r.model.Dim() != 1 {
		return nil, fmt.Errorf("Band: model %s has dim %d: %w", r.Model, r.model.Dim(), ErrBadPoint)
	}
	out := make([]bootstrap.Estimate, len(grid))
	for i, x := range grid {
		s, err := r.Evaluate(x)
		if err != nil {
			return nil, err
		}
		if out[i], err = s.Estimate(); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// Correlation returns the k×k correlation of the parameters across
// replicas. Replicas holding NaN (ReplicaNaN failures) are left out; fewer
// than two usable replicas fail with ErrTooFewPoints.
func (r *Result) Correlation() (*matrix.Dense, error) {
	rows := make([][]float64, 0, len(r.replicas))
	for _, p := range r.replicas {
		if !slices.ContainsFunc(p, math.IsNaN) {
			rows = append(rows, p)
		}
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("Correlation(%s): %d usable replicas: %w", r.Model, len(rows), ErrTooFewPoints)
	}
	x, err := matrix.NewDenseFrom(rows)
	if err != nil {
		return nil, fmt.Errorf("Correlation(%s): %w", r.Model, err)
	}
	cov, _, err := matrix.Covariance(x)
	if err != nil {
		return nil, fmt.Errorf("Correlation(%s): %w", r.Model, err)
	}

	return matrix.Correlation(cov)
}

// FromParams rebuilds a Result from stored parameter Samples (in
// m.Params() order) so that a fit read back from disk can be evaluated.
// Goodness-of-fit and point bookkeeping are not recoverable and stay zero.
func FromParams(m Model, values ...bootstrap.Sample) (*Result, error) {
	k := len(m.Params())
	if len(values) != k {
		return nil, fmt.Errorf("FromParams(%s): %d values for %d params: %w", m.Name(), len(values), k, ErrBadModel)
	}
	res := &Result{
		Model:   m.Name(),
		Params:  slices.Clone(m.Params()),
		Values:  slices.Clone(values),
		DoF:     -1,
		model:   m,
		central: make([]float64, k),
	}
	r := -1
	for j, v := range values {
		if v.IsZero() || !v.IsScalar() {
			return nil, fmt.Errorf("FromParams(%s): %s: %w", m.Name(), res.Params[j], bootstrap.ErrNotScalar)
		}
		if r >= 0 && v.Replicas() != r {
			return nil, fmt.Errorf("FromParams(%s): %s: %w", m.Name(), res.Params[j], bootstrap.ErrShapeMismatch)
		}
		r = v.Replicas()
		res.central[j] = v.Value()
	}
	res.replicas = make([][]float64, r)
	for i := range res.replicas {
		res.replicas[i] = make([]float64, k)
	}
	for j, v := range values {
		for i, x := range v.ReplicaValues() {
			res.replicas[i][j] = x
		}
	}

	return res, nil
}
