// SPDX-License-Identifier: MIT

package bootstrap_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/latboot/bootstrap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBinaryReplicaWise checks (A∘B).samples[i] == A.samples[i] ∘ B.samples[i]
// and (A∘B).mean == A.mean ∘ B.mean for each binary operation.
func TestBinaryReplicaWise(t *testing.T) {
	a := bootstrap.New(2, []float64{1.5, 2.5, 2.25, 1.75})
	b := bootstrap.New(4, []float64{3.5, 4.5, 4.25, 3.75})

	tests := []struct {
		name string
		op   func(a, b bootstrap.Sample) (bootstrap.Sample, error)
		f    func(x, y float64) float64
	}{
		{"add", bootstrap.Sample.Add, func(x, y float64) float64 { return x + y }},
		{"sub", bootstrap.Sample.Sub, func(x, y float64) float64 { return x - y }},
		{"mul", bootstrap.Sample.Mul, func(x, y float64) float64 { return x * y }},
		{"div", bootstrap.Sample.Div, func(x, y float64) float64 { return x / y }},
		{"pow", bootstrap.Sample.Pow, math.Pow},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.op(a, b)
			require.NoError(t, err)
			require.Equal(t, tc.f(a.Value(), b.Value()), got.Value())

			ra, rb, rg := a.ReplicaValues(), b.ReplicaValues(), got.ReplicaValues()
			require.Len(t, rg, len(ra))
			for i := range ra {
				require.Equal(t, tc.f(ra[i], rb[i]), rg[i], "replica %d", i)
			}
		})
	}
}

// TestOperandsUnchanged ensures arithmetic never mutates its inputs.
func TestOperandsUnchanged(t *testing.T) {
	a := bootstrap.New(1, []float64{1, 2})
	b := bootstrap.New(3, []float64{3, 4})
	_, err := a.Add(b)
	require.NoError(t, err)
	_ = a.Neg()

	assert.Equal(t, []float64{1, 2}, a.ReplicaValues())
	assert.Equal(t, []float64{3, 4}, b.ReplicaValues())
}

// TestReplicaCountMismatch must fail, never truncate or pad.
func TestReplicaCountMismatch(t *testing.T) {
	a := bootstrap.New(1, []float64{1, 2, 3})
	b := bootstrap.New(1, []float64{1, 2})

	_, err := a.Add(b)
	assert.ErrorIs(t, err, bootstrap.ErrShapeMismatch)
	_, err = b.Mul(a)
	assert.ErrorIs(t, err, bootstrap.ErrShapeMismatch)
}

// TestShapeBroadcast covers scalar⊗array broadcasting and array mismatch.
func TestShapeBroadcast(t *testing.T) {
	w0 := bootstrap.New(2, []float64{1, 3})
	corr := mustArray(t, []int{3}, []float64{1, 2, 3}, [][]float64{{1, 1, 1}, {2, 2, 2}})

	got, err := corr.Mul(w0)
	require.NoError(t, err)
	assert.Equal(t, []int{3}, got.Shape())
	assert.Equal(t, []float64{2, 4, 6}, got.Mean())
	assert.Equal(t, [][]float64{{1, 1, 1}, {6, 6, 6}}, got.ReplicaSet())

	got, err = w0.Sub(corr) // scalar on the left takes the array shape
	require.NoError(t, err)
	assert.Equal(t, []int{3}, got.Shape())
	assert.Equal(t, []float64{1, 0, -1}, got.Mean())

	other := mustArray(t, []int{2}, []float64{1, 2}, [][]float64{{1, 1}, {2, 2}})
	_, err = corr.Add(other)
	assert.ErrorIs(t, err, bootstrap.ErrShapeMismatch)
}

// TestEmptyOperand rejects the zero Sample.
func TestEmptyOperand(t *testing.T) {
	_, err := bootstrap.New(1, nil).Add(bootstrap.Sample{})
	assert.ErrorIs(t, err, bootstrap.ErrEmptySample)
	assert.True(t, bootstrap.Sample{}.Sqrt().IsZero())
}

// TestScalarBroadcast applies a plain number to mean and every replica.
func TestScalarBroadcast(t *testing.T) {
	s := bootstrap.New(2, []float64{1, 4})

	assert.Equal(t, []float64{3, 6}, s.AddScalar(2).ReplicaValues())
	assert.Equal(t, 0.0, s.SubScalar(2).Value())
	assert.Equal(t, []float64{9, 6}, s.ScalarSub(10).ReplicaValues())
	assert.Equal(t, []float64{3, 12}, s.MulScalar(3).ReplicaValues())
	assert.Equal(t, []float64{0.5, 2}, s.DivScalar(2).ReplicaValues())
	assert.Equal(t, []float64{4, 1}, s.ScalarDiv(4).ReplicaValues())
	assert.Equal(t, []float64{1, 16}, s.PowScalar(2).ReplicaValues())
	assert.Equal(t, 4.0, s.PowScalar(2).Value())
}

// TestUnary covers the elementwise functions.
func TestUnary(t *testing.T) {
	s := bootstrap.New(4, []float64{1, 9})

	assert.Equal(t, []float64{1, 3}, s.Sqrt().ReplicaValues())
	assert.Equal(t, 2.0, s.Sqrt().Value())
	assert.Equal(t, []float64{-1, -9}, s.Neg().ReplicaValues())
	assert.Equal(t, []float64{1, 9}, s.Neg().Abs().ReplicaValues())
	assert.Equal(t, []float64{1, 81}, s.Square().ReplicaValues())
	assert.InDelta(t, math.Log(4), s.Log().Value(), 1e-15)
	assert.InDelta(t, 4, s.Log().Exp().Value(), 1e-12)
	assert.True(t, math.IsNaN(s.Neg().Sqrt().Value()))
	assert.Equal(t, []float64{2, 18}, s.Map(func(x float64) float64 { return 2 * x }).ReplicaValues())
}

// TestComparisons yield 1/0 indicator Samples.
func TestComparisons(t *testing.T) {
	a := bootstrap.New(1, []float64{1, 2, 3})
	b := bootstrap.New(2, []float64{2, 2, 2})

	lt, err := a.Less(b)
	require.NoError(t, err)
	assert.Equal(t, 1.0, lt.Value())
	assert.Equal(t, []float64{1, 0, 0}, lt.ReplicaValues())

	le, err := a.LessEqual(b)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 0}, le.ReplicaValues())

	gt, err := a.Greater(b)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 1}, gt.ReplicaValues())

	ge, err := a.GreaterEqual(b)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 1}, ge.ReplicaValues())

	eq, err := a.EqualTo(b)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 0}, eq.ReplicaValues())
}

// TestCalcStopsAtFirstError keeps the first error and short-circuits.
func TestCalcStopsAtFirstError(t *testing.T) {
	var c bootstrap.Calc
	a := bootstrap.New(1, []float64{1, 2})
	b := bootstrap.New(1, []float64{1})

	bad := c.Add(a, b)
	assert.True(t, bad.IsZero())
	next := c.Mul(a, a)
	assert.True(t, next.IsZero())
	assert.ErrorIs(t, c.Err(), bootstrap.ErrShapeMismatch)
}

// TestCalcFormula evaluates Z = 1 + k/P the same way as the direct methods.
func TestCalcFormula(t *testing.T) {
	var c bootstrap.Calc
	plaq := bootstrap.New(0.5, []float64{0.4, 0.6})

	z := c.AddScalar(c.ScalarDiv(-0.1, plaq), 1)
	f := c.Sqrt(c.Square(c.MulScalar(z, 2)))
	require.NoError(t, c.Err())
	assert.InDelta(t, 1.6, f.Value(), 1e-15)
	assert.InDelta(t, 2-0.2/0.4, f.ReplicaValues()[0], 1e-15)

	l := c.Log(c.Pow(plaq, bootstrap.Constant(2, 2)))
	require.NoError(t, c.Err())
	assert.InDelta(t, 2*math.Log(0.5), l.Value(), 1e-15)

	var empty bootstrap.Calc
	_ = empty.Square(bootstrap.Sample{})
	assert.ErrorIs(t, empty.Err(), bootstrap.ErrEmptySample)
}
