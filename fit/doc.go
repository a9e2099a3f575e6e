// SPDX-License-Identifier: MIT

// Package fit implements the correlated bootstrap fitting engine.
//
// A fit takes one Point per ensemble, where every coordinate is a
// bootstrap.Sample sharing that ensemble's replica structure, and runs:
//
//	Stage 1 (Filter):  drop every point whose x or y carries a NaN (central
//	                   value or any replica); the whole row goes.
//	Stage 2 (Central): one Levenberg–Marquardt chi-square minimisation on the
//	                   central values. Its parameters are the reported point
//	                   estimates and its chi²/dof is the only goodness-of-fit
//	                   statistic reported.
//	Stage 3 (Replica): for every replica i the identical minimisation (same
//	                   model, same fixed starting point, same weights) on the
//	                   i-th replica values. The R parameter vectors become the
//	                   replica populations of the output parameter Samples.
//
// Weights are 1/σ with σ the bootstrap standard deviation of each y. When
// any σ is zero or undefined (R ≤ 1, constant data) all points are weighted
// equally instead.
//
// Replica fits are independent and run on a bounded errgroup; each writes
// only its own slot of a pre-sized output, so completion order never
// matters.
//
// Errors (sentinel):
//
//	– ErrTooFewPoints    fewer usable points than max(params, MinPoints).
//	– ErrNonConvergence  the central fit (or, under ReplicaFail, any replica
//	                     fit) did not converge.
//	– ErrBadModel        model metadata is inconsistent (no parameters,
//	                     initial vector of wrong length, Dim < 1).
//	– ErrBadPoint        a point has the wrong number of x coordinates or a
//	                     non-scalar coordinate.
//
// Example:
//
//	res, err := fit.Fit(ctx, fit.MassAnsatz{}, points, fit.WithWorkers(8))
//	if err != nil {
//	    return err
//	}
//	m, _ := res.Param("M")
//	fmt.Println(m.Estimate())
package fit
