// SPDX-License-Identifier: MIT

// Package matrix provides the small dense linear-algebra kernel used by the
// fitting engine: a row-major Dense matrix, normal-equation helpers and an
// LU factorisation with partial pivoting for solving the step equations of
// a least-squares minimiser.
//
// What & Why:
//
//	Extrapolation fits have a handful of parameters, so every linear system
//	is tiny (p×p with p ≤ 5). A flat row-major buffer with bounds-checked
//	accessors keeps the code easy to audit, and the per-replica refits stay
//	allocation-light because each worker owns its own matrices.
//
// Complexity:
//
//	At/Set are O(1) with bounds checks. Gram is O(r·c²). Factorize is O(n³)
//	and Solve O(n²) per right-hand side.
//
// Errors:
//
//	All failures are sentinels from errors.go and must be matched with
//	errors.Is. No function panics on user input.
package matrix
