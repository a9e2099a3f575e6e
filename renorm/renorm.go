// SPDX-License-Identifier: MIT

package renorm

import (
	"fmt"
	"math"

	"github.com/katalvlaran/latboot/bootstrap"
)

// One-loop coefficients of the Wilson-fermion current renormalisation.
const (
	DeltaSigma1   = -12.82
	DeltaGammaMu  = -7.75
	DeltaGamma5Mu = -3.0
)

// Constant returns C(ch) for the renormalised currents {ps, v, av}.
func Constant(ch Channel) (float64, error) {
	switch ch {
	case PS, AV:
		return DeltaSigma1 + DeltaGamma5Mu, nil
	case V:
		return DeltaSigma1 + DeltaGammaMu, nil
	default:
		return 0, fmt.Errorf("Constant(%q): %w", string(ch), ErrUnknownChannel)
	}
}

// Factor evaluates Z(ch) = 1 + 2·C(ch)·(8/β)/(16·π²·⟨P⟩) replica-wise on the
// plaquette Sample. The result shares plaquette's shape and replica count.
func Factor(ch Channel, beta float64, plaquette bootstrap.Sample) (bootstrap.Sample, error) {
	c, err := Constant(ch)
	if err != nil {
		return bootstrap.Sample{}, err
	}
	if !(beta > 0) || math.IsInf(beta, 0) {
		return bootstrap.Sample{}, fmt.Errorf("Factor(%q, %g): %w", string(ch), beta, ErrBadCoupling)
	}
	if plaquette.IsZero() {
		return bootstrap.Sample{}, fmt.Errorf("Factor(%q): plaquette: %w", string(ch), bootstrap.ErrEmptySample)
	}
	num := 2 * c * (8 / beta)
	den := 16 * math.Pi * math.Pi

	return plaquette.MulScalar(den).ScalarDiv(num).AddScalar(1), nil
}

// FactorValue is Factor for a plain plaquette value.
func FactorValue(ch Channel, beta, plaquette float64) (float64, error) {
	z, err := Factor(ch, beta, bootstrap.New(plaquette, nil))
	if err != nil {
		return math.NaN(), err
	}

	return z.Value(), nil
}
