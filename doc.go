// SPDX-License-Identifier: MIT

// Package latboot post-processes lattice ensemble measurements into
// physical observables with bootstrap-propagated uncertainties, and fits
// chiral/continuum extrapolations across ensembles.
//
// Everything is organized under a handful of packages, leaf first:
//
//	bootstrap/  Sample: a central value plus R replicas, replica-wise arithmetic
//	matrix/     small dense linear algebra (LU solve, covariance)
//	renorm/     channel enumeration and the one-loop renormalisation factor Z
//	fit/        Levenberg–Marquardt central fit plus parallel replica refits
//	store/      JSON/MessagePack sample files, grouping, joins, CSV estimates
//	analysis/   decay constants, extrapolations, plot series and fit bands
//	style/      colour/marker palette for the plot series (YAML)
//	config/     LATBOOT_* environment settings
//	cmd/latboot  the command-line front end
//
// Quick start:
//
//	records, _ := store.Read("E1.json", "E2.json", "E3.json", "E4.json")
//	r := analysis.NewRunner(nil)
//	res, rec, err := r.ExtrapolateMass(ctx, records, renorm.V)
//	m, _ := res.Param("M")
//	fmt.Println(m.Estimate())
//	_ = store.WriteSamplesFile("fit_v.json", rec)
//
// Central values always come from the full ensemble; uncertainties are the
// spread of the replica population. Samples from the same ensemble must
// share replica count and replica order.
package latboot
