// SPDX-License-Identifier: MIT

package fit

import (
	"context"
	"fmt"
	"math"

	"github.com/katalvlaran/latboot/bootstrap"
	"golang.org/x/sync/errgroup"
)

// Point is one ensemble's contribution to a fit: Dim() x coordinates and
// one observation, all scalar Samples with the same replica count.
type Point struct {
	Label string
	X     []bootstrap.Sample
	Y     bootstrap.Sample
}

// NewPoint is shorthand for Point{Label: label, X: x, Y: y}.
func NewPoint(label string, y bootstrap.Sample, x ...bootstrap.Sample) Point {
	return Point{Label: label, X: x, Y: y}
}

// hasNaN reports whether any coordinate carries a NaN anywhere.
func (pt Point) hasNaN() bool {
	if pt.Y.HasNaN() {
		return true
	}
	for _, x := range pt.X {
		if x.HasNaN() {
			return true
		}
	}

	return false
}

// dataset is the filtered input in flat form: central values and, per
// point, the replica values of every coordinate.
type dataset struct {
	labels []string
	xs     [][]float64   // n × dim central
	ys     []float64     // n central
	xr     [][][]float64 // n × dim × R
	yr     [][]float64   // n × R
	w      []float64     // n weights
	r      int
}

// replica returns the x rows and y values of replica i.
func (d *dataset) replica(i int) ([][]float64, []float64) {
	xs := make([][]float64, len(d.xs))
	ys := make([]float64, len(d.ys))
	for k := range d.xs {
		row := make([]float64, len(d.xr[k]))
		for j, col := range d.xr[k] {
			row[j] = col[i]
		}
		xs[k] = row
		ys[k] = d.yr[k][i]
	}

	return xs, ys
}

// Fit runs the central fit and the R replica refits of m over points.
// Blueprint:
//
//	Stage 1 (Validate): model metadata and point shapes.
//	Stage 2 (Filter):   drop NaN rows; enforce the minimum point count.
//	Stage 3 (Prepare):  flatten central and replica values; weights 1/σ_y.
//	Stage 4 (Central):  minimise on central values (fatal on failure).
//	Stage 5 (Replica):  minimise every replica on a bounded errgroup.
//	Stage 6 (Finalize): assemble parameter Samples.
//
// Cancelling ctx stops scheduling further replica fits and returns its error.
func Fit(ctx context.Context, m Model, points []Point, opts ...Option) (*Result, error) {
	o := gatherOptions(opts...)

	// Stage 1: Validate.
	names := m.Params()
	k := len(names)
	if k == 0 || m.Dim() < 1 {
		return nil, fmt.Errorf("Fit(%s): %d params, dim %d: %w", m.Name(), k, m.Dim(), ErrBadModel)
	}
	p0 := o.initial
	if p0 == nil {
		p0 = m.Initial()
	}
	if len(p0) != k {
		return nil, fmt.Errorf("Fit(%s): %d initial values for %d params: %w", m.Name(), len(p0), k, ErrBadModel)
	}
	for _, pt := range points {
		if err := checkPoint(m, pt); err != nil {
			return nil, fmt.Errorf("Fit(%s): %w", m.Name(), err)
		}
	}

	// Stage 2: Filter.
	used := make([]Point, 0, len(points))
	var excluded []string
	for _, pt := range points {
		if pt.hasNaN() {
			o.logger.Debug("excluding point with NaN", "model", m.Name(), "point", pt.Label)
			excluded = append(excluded, pt.Label)
			continue
		}
		used = append(used, pt)
	}
	if need := o.required(k); len(used) < need {
		return nil, fmt.Errorf("Fit(%s): %d usable of %d points, need %d: %w",
			m.Name(), len(used), len(points), need, ErrTooFewPoints)
	}

	// Stage 3: Prepare.
	data, err := flatten(used)
	if err != nil {
		return nil, fmt.Errorf("Fit(%s): %w", m.Name(), err)
	}
	grad, _ := m.(Gradienter)

	// Stage 4: Central fit.
	central, err := minimize(&problem{model: m, grad: grad, xs: data.xs, ys: data.ys, w: data.w}, p0, &o)
	if err != nil {
		return nil, fmt.Errorf("Fit(%s): central: %w", m.Name(), err)
	}
	o.logger.Debug("central fit done", "model", m.Name(), "chi2", central.chi2, "iterations", central.iters)

	// Stage 5: Replica fits.
	reps := make([][]float64, data.r)
	failed := make([]bool, data.r)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for i := range data.r {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			xs, ys := data.replica(i)
			mi, err := minimize(&problem{model: m, grad: grad, xs: xs, ys: ys, w: data.w}, p0, &o)
			if err == nil {
				reps[i] = mi.params
				return nil
			}
			if o.policy == ReplicaNaN {
				reps[i] = nanVector(k)
				failed[i] = true
				return nil
			}

			return fmt.Errorf("replica %d: %w", i, err)
		})
	}
	if err = g.Wait(); err != nil {
		return nil, fmt.Errorf("Fit(%s): %w", m.Name(), err)
	}

	// Stage 6: Finalize.
	res := &Result{
		Model:     m.Name(),
		Params:    append([]string(nil), names...),
		Values:    make([]bootstrap.Sample, k),
		ChiSquare: central.chi2,
		DoF:       len(used) - k,
		Used:      data.labels,
		Excluded:  excluded,
		model:     m,
		central:   central.params,
		replicas:  reps,
	}
	col := make([]float64, data.r)
	for j := range names {
		for i, rep := range reps {
			col[i] = rep[j]
		}
		res.Values[j] = bootstrap.New(central.params[j], col)
	}
	for i, f := range failed {
		if f {
			res.FailedReplicas = append(res.FailedReplicas, i)
		}
	}
	if len(res.FailedReplicas) > 0 {
		o.logger.Warn("replica fits failed", "model", m.Name(), "count", len(res.FailedReplicas), "replicas", data.r)
	}

	return res, nil
}

// checkPoint verifies the coordinate count and that every coordinate is a
// non-empty scalar.
func checkPoint(m Model, pt Point) error {
	if len(pt.X) != m.Dim() {
		return fmt.Errorf("point %q: %d x coordinates, want %d: %w", pt.Label, len(pt.X), m.Dim(), ErrBadPoint)
	}
	for _, s := range append([]bootstrap.Sample{pt.Y}, pt.X...) {
		if s.IsZero() || !s.IsScalar() {
			return fmt.Errorf("point %q: coordinates must be scalar samples: %w", pt.Label, ErrBadPoint)
		}
	}

	return nil
}

// flatten extracts central and replica values and computes the weights.
// All coordinates of all points must share one replica count.
func flatten(points []Point) (*dataset, error) {
	d := &dataset{
		labels: make([]string, len(points)),
		xs:     make([][]float64, len(points)),
		ys:     make([]float64, len(points)),
		xr:     make([][][]float64, len(points)),
		yr:     make([][]float64, len(points)),
		w:      make([]float64, len(points)),
		r:      points[0].Y.Replicas(),
	}
	unit := false
	for k, pt := range points {
		d.labels[k] = pt.Label
		if pt.Y.Replicas() != d.r {
			return nil, fmt.Errorf("point %q: R=%d, want %d: %w", pt.Label, pt.Y.Replicas(), d.r, bootstrap.ErrShapeMismatch)
		}
		d.ys[k] = pt.Y.Value()
		d.yr[k] = pt.Y.ReplicaValues()
		d.xs[k] = make([]float64, len(pt.X))
		d.xr[k] = make([][]float64, len(pt.X))
		for j, x := range pt.X {
			if x.Replicas() != d.r {
				return nil, fmt.Errorf("point %q: x[%d] R=%d, want %d: %w", pt.Label, j, x.Replicas(), d.r, bootstrap.ErrShapeMismatch)
			}
			d.xs[k][j] = x.Value()
			d.xr[k][j] = x.ReplicaValues()
		}
		sigma := pt.Y.StdDev()[0]
		if !(sigma > 0) || math.IsInf(sigma, 0) {
			unit = true
		}
		d.w[k] = 1 / sigma
	}
	if unit {
		for k := range d.w {
			d.w[k] = 1
		}
	}

	return d, nil
}

func nanVector(k int) []float64 {
	v := make([]float64, k)
	for j := range v {
		v[j] = math.NaN()
	}

	return v
}
