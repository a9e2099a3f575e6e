// SPDX-License-Identifier: MIT

package fit

import "errors"

var (
	// ErrNonConvergence signals that the minimiser stopped without meeting
	// its convergence criteria (iteration cap, or a non-finite chi-square).
	ErrNonConvergence = errors.New("fit: minimiser did not converge")

	// ErrTooFewPoints is returned when, after NaN filtering, fewer points
	// remain than the fit requires.
	ErrTooFewPoints = errors.New("fit: too few usable points")

	// ErrBadModel indicates inconsistent model metadata or initial values.
	ErrBadModel = errors.New("fit: invalid model")

	// ErrBadPoint indicates a point whose coordinates do not match the model.
	ErrBadPoint = errors.New("fit: invalid point")

	// ErrUnknownPolicy is returned by ParseReplicaPolicy.
	ErrUnknownPolicy = errors.New("fit: unknown replica policy")
)
