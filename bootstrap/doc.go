// SPDX-License-Identifier: MIT

// Package bootstrap implements Sample, a measured quantity carried together
// with its bootstrap replica population, and the arithmetic that propagates
// statistical uncertainty replica by replica.
//
// 🚀 What is a Sample?
//
//	A Sample holds a central value (the estimate on the full, unresampled
//	ensemble) and R replica estimates obtained by resampling the same raw
//	data with a shared assignment. Because every quantity derived from one
//	ensemble shares that assignment, replica i of A and replica i of B are
//	correlated exactly as the underlying measurements are, and elementwise
//	arithmetic carries those correlations through any formula.
//
// ✨ Key features:
//   - scalar and array (e.g. per-time-slice) shapes, row-major
//   - binary ops (Add, Sub, Mul, Div, Pow, comparisons) with scalar broadcast
//   - unary ops (Neg, Abs, Sqrt, Log, Exp, Square)
//   - reductions: StdDev about the replica mean, Estimate, percentile Interval
//   - Calc: a sticky-error helper for multi-step formulas
//   - Plan: a seeded, shared resampling scheme for raw measurements
//
// ⚙️ Usage:
//
//	plaq := bootstrap.New(0.58, plaqReplicas)
//	z, err := plaq.ScalarDiv(1.0)
//	if err != nil {
//	  // ErrShapeMismatch, ErrEmptySample ...
//	}
//	est, _ := z.Estimate()
//	fmt.Println(est) // 1.724 ± 0.003
//
// Samples are immutable: every operation returns a new value and never
// touches its operands.
package bootstrap
