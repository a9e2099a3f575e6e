// SPDX-License-Identifier: MIT

// Package renorm holds the channel enumeration and the one-loop
// perturbative renormalisation of meson matrix elements.
//
// The multiplicative factor is
//
//	Z(ch) = 1 + 2·C(ch)·(8/β) / (16·π²·⟨P⟩)
//
// where ⟨P⟩ is the average plaquette of the ensemble. Because ⟨P⟩ is a
// bootstrap.Sample, Z is evaluated replica-wise and stays correlated with
// every other quantity of the same ensemble.
//
// C(ch) is defined for the renormalised currents only:
//
//	ps, av : Δ_Σ1 + Δ_γ5γμ = −15.82
//	v      : Δ_Σ1 + Δ_γμ   = −20.57
//
// The wider set {ps, v, t, s, av, at, rhoE1} is valid for mass
// extrapolations; asking for the constant of t, s, at or rhoE1 fails with
// ErrUnknownChannel.
package renorm
