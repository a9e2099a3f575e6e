// SPDX-License-Identifier: MIT

package renorm

import "errors"

var (
	// ErrUnknownChannel is returned for a label outside the enumeration,
	// or for a channel that has no renormalisation constant.
	ErrUnknownChannel = errors.New("renorm: unknown channel")

	// ErrBadCoupling indicates a non-positive or non-finite beta.
	ErrBadCoupling = errors.New("renorm: beta must be finite and > 0")
)
