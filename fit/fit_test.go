// SPDX-License-Identifier: MIT

package fit_test

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/katalvlaran/latboot/bootstrap"
	"github.com/katalvlaran/latboot/fit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// massPoints builds noiseless M·(1+L·x²) data: replica i uses M+δ_i so
// every replica fit has an exact solution too.
func massPoints(m, l float64, xs []float64, r int) []fit.Point {
	pts := make([]fit.Point, len(xs))
	for k, x := range xs {
		xr := make([]float64, r)
		yr := make([]float64, r)
		for i := range r {
			xr[i] = x
			yr[i] = (m + 0.01*float64(i-r/2)) * (1 + l*x*x)
		}
		pts[k] = fit.NewPoint(fmt.Sprintf("E%d", k), bootstrap.New(m*(1+l*x*x), yr), bootstrap.New(x, xr))
	}

	return pts
}

func TestMassAnsatzRecovery(t *testing.T) {
	const m, l, r = 2.0, 0.5, 20
	pts := massPoints(m, l, []float64{0.5, 0.8, 1.0, 1.2, 1.5}, r)

	res, err := fit.Fit(context.Background(), fit.MassAnsatz{}, pts)
	require.NoError(t, err)

	gotM, ok := res.Param("M")
	require.True(t, ok)
	gotL, ok := res.Param("L")
	require.True(t, ok)
	assert.InDelta(t, m, gotM.Value(), 1e-8)
	assert.InDelta(t, l, gotL.Value(), 1e-8)
	assert.InDelta(t, 0, res.ChiSquarePerDoF(), 1e-12)
	assert.Equal(t, 3, res.DoF)
	assert.Equal(t, 5, res.NumUsed())

	require.Equal(t, r, gotM.Replicas())
	for i, v := range gotM.ReplicaValues() {
		assert.InDelta(t, m+0.01*float64(i-r/2), v, 1e-8, "replica %d", i)
	}
	for _, v := range gotL.ReplicaValues() {
		assert.InDelta(t, l, v, 1e-8)
	}
	_, ok = res.Param("W")
	assert.False(t, ok)
}

// TestNaNPointExcluded: one NaN-mean ensemble among five leaves four.
func TestNaNPointExcluded(t *testing.T) {
	pts := massPoints(1.5, 0.3, []float64{0.5, 0.8, 1.0, 1.2, 1.5}, 10)
	bad := pts[2].Y.ReplicaValues()
	pts[2].Y = bootstrap.New(math.NaN(), bad)

	res, err := fit.Fit(context.Background(), fit.MassAnsatz{}, pts)
	require.NoError(t, err)
	assert.Equal(t, 4, res.NumUsed())
	assert.Equal(t, []string{"E0", "E1", "E3", "E4"}, res.Used)
	assert.Equal(t, []string{"E2"}, res.Excluded)
	assert.Equal(t, 2, res.DoF)

	// a NaN replica in x removes the row too
	xr := pts[0].X[0].ReplicaValues()
	xr[3] = math.NaN()
	pts[0].X[0] = bootstrap.New(pts[0].X[0].Value(), xr)
	res, err = fit.Fit(context.Background(), fit.MassAnsatz{}, pts)
	require.NoError(t, err)
	assert.Equal(t, 3, res.NumUsed())
}

func TestTooFewPoints(t *testing.T) {
	pts := massPoints(1, 1, []float64{0.5, 1.0}, 4)

	// default minimum is params+1
	_, err := fit.Fit(context.Background(), fit.MassAnsatz{}, pts)
	assert.ErrorIs(t, err, fit.ErrTooFewPoints)

	// fewer points than parameters always fails
	_, err = fit.Fit(context.Background(), fit.MassAnsatz{}, pts[:1], fit.WithMinPoints(1))
	assert.ErrorIs(t, err, fit.ErrTooFewPoints)

	// exactly params points is allowed when asked for; chi²/dof is undefined
	res, err := fit.Fit(context.Background(), fit.MassAnsatz{}, pts, fit.WithMinPoints(2))
	require.NoError(t, err)
	assert.True(t, math.IsNaN(res.ChiSquarePerDoF()))

	// NaN filtering counts against the minimum
	more := massPoints(1, 1, []float64{0.5, 1.0, 1.5}, 4)
	more[1].Y = bootstrap.New(math.NaN(), more[1].Y.ReplicaValues())
	_, err = fit.Fit(context.Background(), fit.MassAnsatz{}, more)
	assert.ErrorIs(t, err, fit.ErrTooFewPoints)
}

// TestLinearMatchesClosedForm compares against ordinary least squares
// (R = 0 ⇒ unit weights).
func TestLinearMatchesClosedForm(t *testing.T) {
	xs := []float64{0, 1, 2, 3, 4}
	ys := []float64{1, 3.1, 4.9, 7.2, 8.8}
	pts := make([]fit.Point, len(xs))
	for k := range xs {
		pts[k] = fit.NewPoint("", bootstrap.New(ys[k], nil), bootstrap.New(xs[k], nil))
	}

	res, err := fit.Fit(context.Background(), fit.Linear{}, pts)
	require.NoError(t, err)

	var sx, sy, sxx, sxy float64
	n := float64(len(xs))
	for k := range xs {
		sx += xs[k]
		sy += ys[k]
		sxx += xs[k] * xs[k]
		sxy += xs[k] * ys[k]
	}
	b := (n*sxy - sx*sy) / (n*sxx - sx*sx)
	a := (sy - b*sx) / n
	var rss float64
	for k := range xs {
		d := ys[k] - a - b*xs[k]
		rss += d * d
	}

	assert.InDelta(t, a, res.Values[0].Value(), 1e-9)
	assert.InDelta(t, b, res.Values[1].Value(), 1e-9)
	assert.InDelta(t, rss, res.ChiSquare, 1e-9)
	assert.InDelta(t, rss/3, res.ChiSquarePerDoF(), 1e-9)
	assert.Equal(t, 0, res.Values[0].Replicas())
}

// TestFuncFiniteDifferences fits y = a·exp(b·x) without an analytic gradient.
func TestFuncFiniteDifferences(t *testing.T) {
	model := fit.Func{
		Label: "exp",
		Names: []string{"a", "b"},
		Start: []float64{1, 0},
		F:     func(p, x []float64) float64 { return p[0] * math.Exp(p[1]*x[0]) },
	}
	var pts []fit.Point
	for _, x := range []float64{0, 0.25, 0.5, 0.75, 1} {
		y := 0.7 * math.Exp(-1.3*x)
		pts = append(pts, fit.NewPoint("", bootstrap.New(y, []float64{y, y}), bootstrap.New(x, []float64{x, x})))
	}

	res, err := fit.Fit(context.Background(), model, pts)
	require.NoError(t, err)
	assert.Equal(t, "exp", res.Model)
	assert.InDelta(t, 0.7, res.Values[0].Value(), 1e-6)
	assert.InDelta(t, -1.3, res.Values[1].Value(), 1e-6)
}

// TestDecayAnsatzTwoCoordinates recovers F, L, W from exact data.
func TestDecayAnsatzTwoCoordinates(t *testing.T) {
	const f, l, w = 0.12, 0.8, -0.05
	var pts []fit.Point
	for _, c := range [][2]float64{{0.2, 0.40}, {0.5, 0.40}, {0.8, 0.45}, {0.3, 0.55}, {0.6, 0.55}, {1.0, 0.60}} {
		y := f*(1+l*c[0]) + w*c[1]
		pts = append(pts, fit.NewPoint("", bootstrap.New(y, nil), bootstrap.New(c[0], nil), bootstrap.New(c[1], nil)))
	}

	res, err := fit.Fit(context.Background(), fit.DecayAnsatz{}, pts)
	require.NoError(t, err)
	want := []float64{f, l, w}
	for j, name := range []string{"F", "L", "W"} {
		s, ok := res.Param(name)
		require.True(t, ok)
		assert.InDelta(t, want[j], s.Value(), 1e-8, name)
	}
}

func TestReplicaPolicy(t *testing.T) {
	build := func() []fit.Point {
		pts := massPoints(2, 0.5, []float64{0.5, 0.8, 1.0, 1.2}, 6)
		yr := pts[1].Y.ReplicaValues()
		yr[4] = math.Inf(1) // replica 4 cannot be fitted
		pts[1].Y = bootstrap.New(pts[1].Y.Value(), yr)
		return pts
	}

	_, err := fit.Fit(context.Background(), fit.MassAnsatz{}, build())
	assert.ErrorIs(t, err, fit.ErrNonConvergence)

	res, err := fit.Fit(context.Background(), fit.MassAnsatz{}, build(), fit.WithReplicaPolicy(fit.ReplicaNaN))
	require.NoError(t, err)
	assert.Equal(t, []int{4}, res.FailedReplicas)
	m, _ := res.Param("M")
	assert.True(t, math.IsNaN(m.ReplicaValues()[4]))
	assert.False(t, math.IsNaN(m.ReplicaValues()[3]))
	assert.InDelta(t, 2, m.Value(), 1e-8)
}

// TestWorkerCountInvariance: replica outputs land at their own index
// whatever the parallelism.
func TestWorkerCountInvariance(t *testing.T) {
	pts := massPoints(1.2, 0.4, []float64{0.4, 0.7, 0.9, 1.3, 1.6}, 64)

	serial, err := fit.Fit(context.Background(), fit.MassAnsatz{}, pts, fit.WithWorkers(1))
	require.NoError(t, err)
	parallel, err := fit.Fit(context.Background(), fit.MassAnsatz{}, pts, fit.WithWorkers(8))
	require.NoError(t, err)

	for j := range serial.Values {
		assert.True(t, serial.Values[j].Equal(parallel.Values[j]))
	}
}

func TestShapeAndModelErrors(t *testing.T) {
	pts := massPoints(1, 1, []float64{0.5, 1.0, 1.5}, 4)
	pts[2] = fit.NewPoint("odd", bootstrap.New(1, []float64{1, 1}), bootstrap.New(1.5, []float64{1.5, 1.5}))
	_, err := fit.Fit(context.Background(), fit.MassAnsatz{}, pts)
	assert.ErrorIs(t, err, bootstrap.ErrShapeMismatch)

	_, err = fit.Fit(context.Background(), fit.DecayAnsatz{}, pts)
	assert.ErrorIs(t, err, fit.ErrBadPoint)

	_, err = fit.Fit(context.Background(), fit.MassAnsatz{}, pts, fit.WithInitial(1, 2, 3))
	assert.ErrorIs(t, err, fit.ErrBadModel)

	_, err = fit.Fit(context.Background(), fit.Func{F: func(_, _ []float64) float64 { return 0 }}, pts)
	assert.ErrorIs(t, err, fit.ErrBadModel)
}

func TestContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := fit.Fit(ctx, fit.MassAnsatz{}, massPoints(1, 1, []float64{0.5, 1.0, 1.5}, 8))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEvaluateBandFromParams(t *testing.T) {
	pts := massPoints(2, 0.5, []float64{0.5, 0.8, 1.0, 1.2, 1.5}, 10)
	res, err := fit.Fit(context.Background(), fit.MassAnsatz{}, pts)
	require.NoError(t, err)

	at1, err := res.Evaluate(1)
	require.NoError(t, err)
	assert.InDelta(t, 3, at1.Value(), 1e-8)
	assert.Equal(t, 10, at1.Replicas())

	_, err = res.Evaluate(1, 2)
	assert.ErrorIs(t, err, fit.ErrBadPoint)

	band, err := res.Band([]float64{0, 1, 2})
	require.NoError(t, err)
	require.Len(t, band, 3)
	assert.InDelta(t, 2, band[0].Value, 1e-8)
	assert.Greater(t, band[2].Uncertainty, band[0].Uncertainty)

	again, err := fit.FromParams(fit.MassAnsatz{}, res.Values...)
	require.NoError(t, err)
	at1b, err := again.Evaluate(1)
	require.NoError(t, err)
	assert.True(t, at1.Equal(at1b))

	_, err = fit.FromParams(fit.MassAnsatz{}, res.Values[0])
	assert.ErrorIs(t, err, fit.ErrBadModel)
	_, err = fit.FromParams(fit.MassAnsatz{}, res.Values[0], bootstrap.New(1, []float64{1}))
	assert.ErrorIs(t, err, bootstrap.ErrShapeMismatch)

	decay, err := fit.FromParams(fit.DecayAnsatz{}, bootstrap.New(1, nil), bootstrap.New(1, nil), bootstrap.New(1, nil))
	require.NoError(t, err)
	_, err = decay.Band([]float64{0})
	assert.ErrorIs(t, err, fit.ErrBadPoint)
}

func TestOptions(t *testing.T) {
	assert.Panics(t, func() { fit.WithWorkers(-1) })
	assert.Panics(t, func() { fit.WithMaxIterations(0) })
	assert.Panics(t, func() { fit.WithTolerance(math.NaN()) })
	assert.Panics(t, func() { fit.WithMinPoints(-2) })

	for _, s := range []string{"fail", "nan"} {
		p, err := fit.ParseReplicaPolicy(s)
		require.NoError(t, err)
		assert.Equal(t, s, p.String())
	}
	_, err := fit.ParseReplicaPolicy("drop")
	assert.ErrorIs(t, err, fit.ErrUnknownPolicy)

	m, ok := fit.ModelByName("decay")
	require.True(t, ok)
	assert.Equal(t, []string{"F", "L", "W"}, m.Params())
	_, ok = fit.ModelByName("cubic")
	assert.False(t, ok)
}

// TestBuiltinModels checks the documented shape of each built-in model and
// of Func defaults.
func TestBuiltinModels(t *testing.T) {
	cases := []struct {
		model   fit.Model
		name    string
		params  []string
		dim     int
		initial []float64
		p, x    []float64
		want    float64
	}{
		{fit.MassAnsatz{}, "mass", []string{"M", "L"}, 1, []float64{1, 0}, []float64{2, 0.5}, []float64{2}, 6},
		{fit.DecayAnsatz{}, "decay", []string{"F", "L", "W"}, 2, []float64{1, 0, 0}, []float64{2, 0.5, 3}, []float64{2, 0.1}, 4.3},
		{fit.Linear{}, "linear", []string{"A", "B"}, 1, []float64{0, 0}, []float64{1, 2}, []float64{3}, 7},
		{fit.Func{Names: []string{"c"}, F: func(p, _ []float64) float64 { return p[0] }}, "func", []string{"c"}, 1, []float64{0}, []float64{5}, []float64{0}, 5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.name, tc.model.Name())
			assert.Equal(t, tc.params, tc.model.Params())
			assert.Equal(t, tc.dim, tc.model.Dim())
			assert.Equal(t, tc.initial, tc.model.Initial())
			assert.InDelta(t, tc.want, tc.model.Eval(tc.p, tc.x), 1e-12)
		})
	}
}

// TestMaxIterations: a one-iteration cap cannot reach the minimum from a
// distant start.
func TestMaxIterations(t *testing.T) {
	pts := massPoints(50, 3, []float64{0.5, 0.8, 1.0, 1.2, 1.5}, 0)
	_, err := fit.Fit(context.Background(), fit.MassAnsatz{}, pts, fit.WithMaxIterations(1))
	assert.ErrorIs(t, err, fit.ErrNonConvergence)
}

func TestResultCorrelation(t *testing.T) {
	a := bootstrap.New(1, []float64{0.5, 1.5, 1.0, math.NaN()})
	b := bootstrap.New(2, []float64{1, 3, 2, 2})
	res, err := fit.FromParams(fit.Linear{}, a, b)
	require.NoError(t, err)

	corr, err := res.Correlation()
	require.NoError(t, err)
	r01, err := corr.At(0, 1)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, r01, 1e-12)

	one, err := fit.FromParams(fit.Linear{}, bootstrap.New(1, []float64{1}), bootstrap.New(2, []float64{2}))
	require.NoError(t, err)
	_, err = one.Correlation()
	assert.ErrorIs(t, err, fit.ErrTooFewPoints)
}
