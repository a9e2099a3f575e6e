// SPDX-License-Identifier: MIT

package bootstrap

import "errors"

var (
	// ErrShapeMismatch is returned when two Samples cannot be combined: their
	// replica counts differ, or their shapes differ and neither is a scalar.
	ErrShapeMismatch = errors.New("bootstrap: shape mismatch")

	// ErrEmptySample is returned when an operation receives the zero Sample.
	ErrEmptySample = errors.New("bootstrap: empty sample")

	// ErrBadShape indicates an invalid shape, or data whose length does not
	// match the declared shape.
	ErrBadShape = errors.New("bootstrap: invalid shape")

	// ErrNotScalar is returned by scalar-only reductions on array Samples.
	ErrNotScalar = errors.New("bootstrap: sample is not scalar")

	// ErrReplicaRange indicates a replica or element index outside valid bounds.
	ErrReplicaRange = errors.New("bootstrap: replica index out of range")

	// ErrBadPlan indicates invalid resampling parameters or data that does not
	// match the plan's configuration count.
	ErrBadPlan = errors.New("bootstrap: invalid resampling plan")
)
