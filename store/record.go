// SPDX-License-Identifier: MIT

package store

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"

	"github.com/hyp3rd/ewrap"

	"github.com/katalvlaran/latboot/bootstrap"
)

// Well-known metadata keys.
const (
	KeyEnsemble = "ensemble_name"
	KeyBeta     = "beta"
	KeyMass     = "mAS"
	KeyNt       = "Nt"
	KeyNs       = "Ns"
	KeyChannel  = "channel"
	KeyChi2     = "chi_sqr_dof"
)

// canonicalMeta fixes the leading column order of written metadata.
var canonicalMeta = []string{KeyEnsemble, KeyBeta, KeyMass, KeyNt, KeyNs, KeyChannel}

// Record is one ensemble's (or one fit's) metadata and named Samples.
// Metadata values are string, float64, int64 or bool.
type Record struct {
	meta    map[string]any
	samples map[string]bootstrap.Sample
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{meta: map[string]any{}, samples: map[string]bootstrap.Sample{}}
}

// SetMeta stores a scalar metadata value. Integers are kept as int64,
// floats as float64.
func (r *Record) SetMeta(key string, v any) error {
	nv, ok := normalizeScalar(v)
	if !ok {
		return ewrap.Wrapf(ErrMalformedRecord, "metadata %q has unsupported type %T", key, v)
	}
	r.meta[key] = nv

	return nil
}

// Meta returns the raw metadata value.
func (r *Record) Meta(key string) (any, bool) {
	v, ok := r.meta[key]

	return v, ok
}

// String returns a string metadata value.
func (r *Record) String(key string) (string, bool) {
	s, ok := r.meta[key].(string)

	return s, ok
}

// Float returns a numeric metadata value as float64.
func (r *Record) Float(key string) (float64, bool) {
	switch v := r.meta[key].(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	default:
		return math.NaN(), false
	}
}

// Int returns an integral metadata value.
func (r *Record) Int(key string) (int64, bool) {
	switch v := r.meta[key].(type) {
	case int64:
		return v, true
	case float64:
		if v == math.Trunc(v) && !math.IsInf(v, 0) {
			return int64(v), true
		}
	}

	return 0, false
}

// SetSample stores s under name (without the _samples suffix).
func (r *Record) SetSample(name string, s bootstrap.Sample) { r.samples[name] = s }

// Sample returns the named Sample; ok is false when the record does not
// carry it.
func (r *Record) Sample(name string) (bootstrap.Sample, bool) {
	s, ok := r.samples[name]

	return s, ok
}

// Has reports whether every named Sample is present.
func (r *Record) Has(names ...string) bool {
	for _, n := range names {
		if _, ok := r.samples[n]; !ok {
			return false
		}
	}

	return true
}

// Require returns ErrMalformedRecord naming the first absent Sample.
func (r *Record) Require(names ...string) error {
	for _, n := range names {
		if _, ok := r.samples[n]; !ok {
			return ewrap.Wrapf(ErrMalformedRecord, "record %s: missing sample %q", r.Label(), n)
		}
	}

	return nil
}

// MetaKeys returns the metadata keys, well-known keys first.
func (r *Record) MetaKeys() []string { return orderKeys(slices.Collect(maps.Keys(r.meta))) }

// SampleNames returns the Sample names in sorted order.
func (r *Record) SampleNames() []string { return slices.Sorted(maps.Keys(r.samples)) }

// Clone returns a shallow copy; Samples are immutable and shared.
func (r *Record) Clone() *Record {
	return &Record{meta: maps.Clone(r.meta), samples: maps.Clone(r.samples)}
}

// Merge copies every field of o into r. A field present in both with a
// different value fails with ErrInconsistentGrouping and leaves r untouched.
func (r *Record) Merge(o *Record) error {
	for k, v := range o.meta {
		if cur, ok := r.meta[k]; ok && !sameScalar(cur, v) {
			return ewrap.Wrapf(ErrInconsistentGrouping, "record %s: metadata %q: %v vs %v", r.Label(), k, cur, v)
		}
	}
	for k, s := range o.samples {
		if cur, ok := r.samples[k]; ok && !cur.Equal(s) {
			return ewrap.Wrapf(ErrInconsistentGrouping, "record %s: sample %q differs", r.Label(), k)
		}
	}
	maps.Copy(r.meta, o.meta)
	maps.Copy(r.samples, o.samples)

	return nil
}

// Equal reports field-by-field equality (Samples compared bitwise).
func (r *Record) Equal(o *Record) bool {
	return maps.EqualFunc(r.meta, o.meta, sameScalar) &&
		maps.EqualFunc(r.samples, o.samples, bootstrap.Sample.Equal)
}

// Label names the record in messages: its ensemble, else its channel.
func (r *Record) Label() string {
	if s, ok := r.String(KeyEnsemble); ok {
		return s
	}
	if s, ok := r.String(KeyChannel); ok {
		return s
	}

	return "<unnamed>"
}

// Ensemble is the typed view of the standard ensemble metadata.
type Ensemble struct {
	Name string
	Beta float64
	MAS  float64
	Nt   int
	Ns   int
}

// Ensemble extracts the standard metadata; a missing or mistyped key fails
// with ErrMalformedRecord.
func (r *Record) Ensemble() (Ensemble, error) {
	var e Ensemble
	var ok bool
	if e.Name, ok = r.String(KeyEnsemble); !ok {
		return e, ewrap.Wrapf(ErrMalformedRecord, "missing %q", KeyEnsemble)
	}
	if e.Beta, ok = r.Float(KeyBeta); !ok {
		return e, ewrap.Wrapf(ErrMalformedRecord, "record %s: missing %q", e.Name, KeyBeta)
	}
	if e.MAS, ok = r.Float(KeyMass); !ok {
		return e, ewrap.Wrapf(ErrMalformedRecord, "record %s: missing %q", e.Name, KeyMass)
	}
	nt, ok := r.Int(KeyNt)
	if !ok {
		return e, ewrap.Wrapf(ErrMalformedRecord, "record %s: missing %q", e.Name, KeyNt)
	}
	ns, ok := r.Int(KeyNs)
	if !ok {
		return e, ewrap.Wrapf(ErrMalformedRecord, "record %s: missing %q", e.Name, KeyNs)
	}
	e.Nt, e.Ns = int(nt), int(ns)

	return e, nil
}

// SetEnsemble writes the standard metadata keys.
func (r *Record) SetEnsemble(e Ensemble) {
	r.meta[KeyEnsemble] = e.Name
	r.meta[KeyBeta] = e.Beta
	r.meta[KeyMass] = e.MAS
	r.meta[KeyNt] = int64(e.Nt)
	r.meta[KeyNs] = int64(e.Ns)
}

// normalizeScalar maps Go scalars onto the metadata value set.
func normalizeScalar(v any) (any, bool) {
	switch x := v.(type) {
	case string, bool, float64, int64:
		return x, true
	case nil:
		return math.NaN(), true
	case float32:
		return float64(x), true
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		if x > math.MaxInt64 {
			return float64(x), true
		}
		return int64(x), true
	case uint:
		return int64(x), true
	default:
		return nil, false
	}
}

// sameScalar compares metadata values; floats bitwise so NaN == NaN, and
// an integral float equals the same int64.
func sameScalar(a, b any) bool {
	fa, aNum := asFloat(a)
	fb, bNum := asFloat(b)
	if aNum && bNum {
		return math.Float64bits(fa) == math.Float64bits(fb)
	}

	return a == b
}

func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int64:
		return float64(x), true
	}

	return 0, false
}

// formatScalar renders a metadata value for CSV cells and group keys.
func formatScalar(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

// orderKeys puts canonical metadata keys first, the rest sorted.
func orderKeys(keys []string) []string {
	slices.Sort(keys)
	out := make([]string, 0, len(keys))
	for _, k := range canonicalMeta {
		if _, found := slices.BinarySearch(keys, k); found {
			out = append(out, k)
		}
	}
	for _, k := range keys {
		if !slices.Contains(canonicalMeta, k) {
			out = append(out, k)
		}
	}

	return out
}
