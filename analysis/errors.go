// SPDX-License-Identifier: MIT

package analysis

import (
	"errors"

	"github.com/katalvlaran/latboot/store"
)

var (
	// ErrInconsistentGrouping is returned when a set of records that must
	// share one value (beta, ensemble) carries several.
	ErrInconsistentGrouping = store.ErrInconsistentGrouping

	// ErrNoRecords is returned when a stage receives nothing to work on.
	ErrNoRecords = errors.New("analysis: no records")

	// ErrBadGrid is returned by Band for an unusable grid request.
	ErrBadGrid = errors.New("analysis: invalid grid")
)
