// SPDX-License-Identifier: MIT

package analysis

import (
	"log/slog"

	"github.com/katalvlaran/latboot/fit"
	"github.com/katalvlaran/latboot/renorm"
	"github.com/katalvlaran/latboot/store"
)

// Sample names read from ensemble records.
const (
	SampleW0        = "w0"
	SamplePlaquette = "plaquette"
	SamplePCAC      = "mPCAC"
	SamplePSMass    = "ps_mass"
)

// Metadata written alongside fit results.
const (
	KeyPoints = "n_points"
	KeyModel  = "model"
)

// MassName returns "<ch>_mass".
func MassName(ch renorm.Channel) string { return string(ch) + "_mass" }

// SmearedMassName returns "smear_<ch>_mass".
func SmearedMassName(ch renorm.Channel) string { return "smear_" + string(ch) + "_mass" }

// MatrixElementName returns "<ch>_matrix_element".
func MatrixElementName(ch renorm.Channel) string { return string(ch) + "_matrix_element" }

// DecayConstantName returns "<ch>_decay_constant".
func DecayConstantName(ch renorm.Channel) string { return string(ch) + "_decay_constant" }

// Runner carries the logger and fit options shared by the analysis stages.
// The zero value is not usable; construct with NewRunner.
type Runner struct {
	log     *slog.Logger
	fitOpts []fit.Option
}

// NewRunner returns a Runner. A nil logger discards output. opts are
// passed to every fit the Runner performs; the Runner's logger is
// appended so fit diagnostics land in the same place.
func NewRunner(logger *slog.Logger, opts ...fit.Option) *Runner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	all := make([]fit.Option, 0, len(opts)+1)
	all = append(all, fit.WithLogger(logger))
	all = append(all, opts...)

	return &Runner{log: logger, fitOpts: all}
}

// skip logs a record that a stage filtered out.
func (r *Runner) skip(stage string, rec *store.Record, reason string) {
	r.log.Debug("record skipped", "stage", stage, "record", rec.Label(), "reason", reason)
}
