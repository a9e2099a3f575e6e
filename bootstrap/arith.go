// SPDX-License-Identifier: MIT

package bootstrap

import (
	"fmt"
	"math"
)

// Operation names used for error context.
const (
	opAdd   = "Add"
	opSub   = "Sub"
	opMul   = "Mul"
	opDiv   = "Div"
	opPow   = "Pow"
	opLess  = "Less"
	opLessE = "LessEqual"
	opGreat = "Greater"
	opGrE   = "GreaterEqual"
	opEqual = "Equal"
)

// binary applies f to the central values and to every replica pair.
//
// Broadcast rule: when shapes differ, a size-1 operand is broadcast over the
// other; any other shape difference is ErrShapeMismatch. Replica counts must
// match exactly; populations are never truncated or padded.
// Complexity: O(R·size).
func binary(op string, a, b Sample, f func(x, y float64) float64) (Sample, error) {
	// Stage 1 (Validate): both present, same R, compatible shapes.
	if a.IsZero() || b.IsZero() {
		return Sample{}, fmt.Errorf("%s: %w", op, ErrEmptySample)
	}
	if a.r != b.r {
		return Sample{}, fmt.Errorf("%s: replica counts %d and %d: %w", op, a.r, b.r, ErrShapeMismatch)
	}
	na, nb := len(a.mean), len(b.mean)
	shape := a.shape
	switch {
	case sameShape(a, b):
	case nb == 1:
	case na == 1:
		shape = b.shape
	default:
		return Sample{}, fmt.Errorf("%s: shapes %v and %v: %w", op, a.shape, b.shape, ErrShapeMismatch)
	}
	size := max(na, nb)

	// Stage 2 (Execute): central value, then replica-major loop.
	out := Sample{
		shape:    cloneInts(shape),
		mean:     make([]float64, size),
		replicas: make([]float64, a.r*size),
		r:        a.r,
	}
	var i, k int
	for k = 0; k < size; k++ {
		out.mean[k] = f(a.mean[k%na], b.mean[k%nb])
	}
	for i = 0; i < a.r; i++ {
		ra, rb, ro := a.replicas[i*na:(i+1)*na], b.replicas[i*nb:(i+1)*nb], out.replicas[i*size:(i+1)*size]
		for k = 0; k < size; k++ {
			ro[k] = f(ra[k%na], rb[k%nb])
		}
	}

	return out, nil
}

// sameShape reports whether a and b have identical shapes.
func sameShape(a, b Sample) bool {
	if len(a.shape) != len(b.shape) {
		return false
	}
	for i := range a.shape {
		if a.shape[i] != b.shape[i] {
			return false
		}
	}

	return true
}

// unary applies f elementwise to the central value and every replica.
func unary(s Sample, f func(x float64) float64) Sample {
	if s.IsZero() {
		return Sample{}
	}
	out := Sample{
		shape:    cloneInts(s.shape),
		mean:     make([]float64, len(s.mean)),
		replicas: make([]float64, len(s.replicas)),
		r:        s.r,
	}
	for k, v := range s.mean {
		out.mean[k] = f(v)
	}
	for k, v := range s.replicas {
		out.replicas[k] = f(v)
	}

	return out
}

// indicator maps a predicate to 1/0 so comparisons stay Samples.
func indicator(cond bool) float64 {
	if cond {
		return 1
	}

	return 0
}

// Add returns s + o.
func (s Sample) Add(o Sample) (Sample, error) {
	return binary(opAdd, s, o, func(x, y float64) float64 { return x + y })
}

// Sub returns s − o.
func (s Sample) Sub(o Sample) (Sample, error) {
	return binary(opSub, s, o, func(x, y float64) float64 { return x - y })
}

// Mul returns s × o.
func (s Sample) Mul(o Sample) (Sample, error) {
	return binary(opMul, s, o, func(x, y float64) float64 { return x * y })
}

// Div returns s / o. Division by zero follows IEEE-754 (±Inf or NaN).
func (s Sample) Div(o Sample) (Sample, error) {
	return binary(opDiv, s, o, func(x, y float64) float64 { return x / y })
}

// Pow returns s raised to the power o.
func (s Sample) Pow(o Sample) (Sample, error) {
	return binary(opPow, s, o, math.Pow)
}

// Less returns the 1/0 indicator of s < o.
func (s Sample) Less(o Sample) (Sample, error) {
	return binary(opLess, s, o, func(x, y float64) float64 { return indicator(x < y) })
}

// LessEqual returns the 1/0 indicator of s ≤ o.
func (s Sample) LessEqual(o Sample) (Sample, error) {
	return binary(opLessE, s, o, func(x, y float64) float64 { return indicator(x <= y) })
}

// Greater returns the 1/0 indicator of s > o.
func (s Sample) Greater(o Sample) (Sample, error) {
	return binary(opGreat, s, o, func(x, y float64) float64 { return indicator(x > y) })
}

// GreaterEqual returns the 1/0 indicator of s ≥ o.
func (s Sample) GreaterEqual(o Sample) (Sample, error) {
	return binary(opGrE, s, o, func(x, y float64) float64 { return indicator(x >= y) })
}

// EqualTo returns the 1/0 indicator of s == o, elementwise.
func (s Sample) EqualTo(o Sample) (Sample, error) {
	return binary(opEqual, s, o, func(x, y float64) float64 { return indicator(x == y) })
}

// AddScalar returns s + v; v is broadcast to the central value and every replica.
func (s Sample) AddScalar(v float64) Sample { return unary(s, func(x float64) float64 { return x + v }) }

// SubScalar returns s − v.
func (s Sample) SubScalar(v float64) Sample { return unary(s, func(x float64) float64 { return x - v }) }

// ScalarSub returns v − s.
func (s Sample) ScalarSub(v float64) Sample { return unary(s, func(x float64) float64 { return v - x }) }

// MulScalar returns s × v.
func (s Sample) MulScalar(v float64) Sample { return unary(s, func(x float64) float64 { return x * v }) }

// DivScalar returns s / v.
func (s Sample) DivScalar(v float64) Sample { return unary(s, func(x float64) float64 { return x / v }) }

// ScalarDiv returns v / s.
func (s Sample) ScalarDiv(v float64) Sample { return unary(s, func(x float64) float64 { return v / x }) }

// PowScalar returns s raised to the power v.
func (s Sample) PowScalar(v float64) Sample {
	return unary(s, func(x float64) float64 { return math.Pow(x, v) })
}

// Neg returns −s.
func (s Sample) Neg() Sample { return unary(s, func(x float64) float64 { return -x }) }

// Abs returns |s|.
func (s Sample) Abs() Sample { return unary(s, math.Abs) }

// Sqrt returns √s; negative inputs yield NaN.
func (s Sample) Sqrt() Sample { return unary(s, math.Sqrt) }

// Log returns the natural logarithm of s.
func (s Sample) Log() Sample { return unary(s, math.Log) }

// Exp returns eˢ.
func (s Sample) Exp() Sample { return unary(s, math.Exp) }

// Square returns s².
func (s Sample) Square() Sample { return unary(s, func(x float64) float64 { return x * x }) }

// Map applies an arbitrary elementwise function.
func (s Sample) Map(f func(float64) float64) Sample { return unary(s, f) }
