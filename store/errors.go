// SPDX-License-Identifier: MIT

package store

import "github.com/hyp3rd/ewrap"

var (
	// ErrMalformedRecord is returned when a record lacks a required key or a
	// field cannot be decoded (x_samples without x_value, ragged arrays,
	// replica shapes differing from the central value).
	ErrMalformedRecord = ewrap.New("store: malformed record")

	// ErrInconsistentGrouping is returned when records merged under one key
	// disagree on a field, when a join key occurs twice on one side, or
	// when exactly one distinct value was required and several were found.
	ErrInconsistentGrouping = ewrap.New("store: inconsistent grouping")

	// ErrCodecNotFound is returned for an unregistered codec name.
	ErrCodecNotFound = ewrap.New("store: codec not found")
)
