// SPDX-License-Identifier: MIT

// Package store reads and writes ensemble records: scalar metadata plus
// named bootstrap Samples.
//
// On disk a record is one JSON object (or MessagePack map) in which every
// Sample x occupies two keys, x_value holding the central value and
// x_samples the list of replicas; array Samples use nested arrays. Every
// other key is scalar metadata (ensemble_name, beta, mAS, Nt, Ns, ...).
// A file holds one object or an array of objects.
//
// JSON writes non-finite numbers as the strings "NaN", "Infinity" and
// "-Infinity" and reads them back, together with the bare NaN/Infinity
// tokens emitted by Python's json module. Written samples read back
// bit-identical; point-estimate CSV output is a lossy presentation view.
//
// Records are combined in two ways: Group merges records that share the
// value of a key (e.g. all stages' output for one ensemble, or the fit
// parameters of one channel), Join performs an inner join of two record
// sets on a key. Both fail with ErrInconsistentGrouping when two records
// disagree on a field.
package store
