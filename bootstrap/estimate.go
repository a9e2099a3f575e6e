// SPDX-License-Identifier: MIT

package bootstrap

import (
	"fmt"
	"math"
)

// Estimate is the presentation-oriented reduction of a scalar Sample: a
// nominal value and its bootstrap uncertainty. It is lossy; replicas are gone.
type Estimate struct {
	Value       float64
	Uncertainty float64
}

// String formats the estimate as "nominal ± uncertainty".
func (e Estimate) String() string {
	return fmt.Sprintf("%g ± %g", e.Value, e.Uncertainty)
}

// Compact renders the estimate in parenthesised form with two significant
// digits of uncertainty, e.g. 0.1234(56). Non-finite or zero uncertainties
// fall back to the plain value.
func (e Estimate) Compact() string {
	if math.IsNaN(e.Value) || math.IsNaN(e.Uncertainty) || math.IsInf(e.Uncertainty, 0) || e.Uncertainty <= 0 {
		return fmt.Sprintf("%g", e.Value)
	}
	// decimals needed so the uncertainty shows two significant digits
	decimals := 1 - int(math.Floor(math.Log10(e.Uncertainty)))
	if decimals < 0 {
		decimals = 0
	}
	digits := math.Round(e.Uncertainty * math.Pow10(decimals))
	if digits >= 100 { // rounding carried into a third digit
		decimals--
		if decimals < 0 {
			decimals = 0
		}
		digits = math.Round(e.Uncertainty * math.Pow10(decimals))
	}

	return fmt.Sprintf("%.*f(%d)", decimals, e.Value, int64(digits))
}
