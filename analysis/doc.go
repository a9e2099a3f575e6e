// SPDX-License-Identifier: MIT

// Package analysis turns ensemble records into derived observables and
// extrapolation fits.
//
// Stages:
//
//	DecayConstant     renormalised decay constant f = Z·⟨matrix element⟩
//	ExtrapolateDecay  chiral/continuum fit (w0·f)² = F·(1+L·x) + W·a
//	ExtrapolateMass   fit (w0·m_ch)² = M·(1 + L·(w0·m_ps)²)
//	ExtrapolateDeFT   per-beta linear fit log(m_ps²/m_PCAC) vs log(f_ps²)
//
// Every stage consumes *store.Record values and produces records that
// store.WriteSamples can persist and later stages can read back. Records
// lacking a quantity a stage needs are skipped and logged at debug level;
// malformed essential metadata aborts the stage.
//
// Series builders (W0VsPCAC, DecayVsPCAC, MassVsPCAC) reduce records to
// styled point estimates for plotting collaborators; Band evaluates a
// stored fit on a grid.
package analysis
