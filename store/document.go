// SPDX-License-Identifier: MIT

package store

import (
	"math"
	"strings"

	"github.com/hyp3rd/ewrap"

	"github.com/katalvlaran/latboot/bootstrap"
)

// Key suffixes of the two halves of a stored Sample.
const (
	suffixValue   = "_value"
	suffixSamples = "_samples"
)

// ---------- tree → Record ----------

// recordsFromTree accepts a single object or an array of objects.
func recordsFromTree(tree any) ([]*Record, error) {
	switch x := tree.(type) {
	case map[string]any:
		r, err := recordFromDoc(x)
		if err != nil {
			return nil, err
		}
		return []*Record{r}, nil
	case []any:
		out := make([]*Record, 0, len(x))
		for i, e := range x {
			doc, ok := e.(map[string]any)
			if !ok {
				return nil, ewrap.Wrapf(ErrMalformedRecord, "element %d is %T, want object", i, e)
			}
			r, err := recordFromDoc(doc)
			if err != nil {
				return nil, ewrap.Wrapf(err, "element %d", i)
			}
			out = append(out, r)
		}
		return out, nil
	default:
		return nil, ewrap.Wrapf(ErrMalformedRecord, "top level is %T, want object or array", tree)
	}
}

// recordFromDoc splits a document into Samples (x_value + x_samples pairs)
// and scalar metadata.
func recordFromDoc(doc map[string]any) (*Record, error) {
	r := NewRecord()
	for key, raw := range doc {
		if name, ok := strings.CutSuffix(key, suffixSamples); ok && name != "" {
			central, found := doc[name+suffixValue]
			if !found {
				return nil, ewrap.Wrapf(ErrMalformedRecord, "%q has no %q", key, name+suffixValue)
			}
			s, err := decodeSample(central, raw)
			if err != nil {
				return nil, ewrap.Wrapf(err, "sample %q", name)
			}
			r.samples[name] = s
			continue
		}
		if name, ok := strings.CutSuffix(key, suffixValue); ok && name != "" {
			if _, paired := doc[name+suffixSamples]; paired {
				continue
			}
		}
		if err := r.SetMeta(key, raw); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// decodeSample rebuilds a Sample from its central value and replica list.
func decodeSample(central, replicas any) (bootstrap.Sample, error) {
	shape, mean, err := flattenNested(central)
	if err != nil {
		return bootstrap.Sample{}, err
	}
	list, ok := replicas.([]any)
	if !ok {
		return bootstrap.Sample{}, ewrap.Wrapf(ErrMalformedRecord, "replicas are %T, want array", replicas)
	}
	reps := make([][]float64, len(list))
	for i, e := range list {
		rs, vals, err := flattenNested(e)
		if err != nil {
			return bootstrap.Sample{}, ewrap.Wrapf(err, "replica %d", i)
		}
		if !equalShape(rs, shape) {
			return bootstrap.Sample{}, ewrap.Wrapf(ErrMalformedRecord, "replica %d has shape %v, want %v", i, rs, shape)
		}
		reps[i] = vals
	}
	s, err := bootstrap.NewArray(shape, mean, reps)
	if err != nil {
		return bootstrap.Sample{}, ewrap.Wrap(ErrMalformedRecord, err.Error())
	}

	return s, nil
}

// flattenNested turns a number or a rectangular nested array into a shape
// and row-major values. null decodes as NaN; the NaN/Infinity/-Infinity
// strings decode as their floats.
func flattenNested(v any) ([]int, []float64, error) {
	switch x := v.(type) {
	case float64:
		return nil, []float64{x}, nil
	case int64:
		return nil, []float64{float64(x)}, nil
	case nil:
		return nil, []float64{math.NaN()}, nil
	case string:
		if f, ok := nonFinite(strings.TrimPrefix(x, metaMark)); ok {
			return nil, []float64{f}, nil
		}
		return nil, nil, ewrap.Wrapf(ErrMalformedRecord, "string %q is not numeric", x)
	case []any:
		if len(x) == 0 {
			return nil, nil, ewrap.Wrap(ErrMalformedRecord, "empty array")
		}
		var inner []int
		vals := make([]float64, 0, len(x))
		for i, e := range x {
			s, ev, err := flattenNested(e)
			if err != nil {
				return nil, nil, err
			}
			if i == 0 {
				inner = s
			} else if !equalShape(s, inner) {
				return nil, nil, ewrap.Wrap(ErrMalformedRecord, "ragged array")
			}
			vals = append(vals, ev...)
		}
		return append([]int{len(x)}, inner...), vals, nil
	default:
		return nil, nil, ewrap.Wrapf(ErrMalformedRecord, "value of type %T is not numeric", v)
	}
}

func equalShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

// ---------- Record → tree ----------

// treeFromRecords produces an object for one record, an array otherwise.
func treeFromRecords(c Codec, records []*Record) any {
	if len(records) == 1 {
		return docFromRecord(c, records[0])
	}
	out := make([]any, len(records))
	for i, r := range records {
		out[i] = docFromRecord(c, r)
	}

	return out
}

func docFromRecord(c Codec, r *Record) map[string]any {
	doc := make(map[string]any, len(r.meta)+2*len(r.samples))
	for k, v := range r.meta {
		if f, ok := v.(float64); ok {
			doc[k] = c.Float(f, true)
			continue
		}
		doc[k] = v
	}
	for name, s := range r.samples {
		shape := s.Shape()
		doc[name+suffixValue] = nest(c, shape, s.Mean())
		set := s.ReplicaSet()
		reps := make([]any, len(set))
		for i, rep := range set {
			reps[i] = nest(c, shape, rep)
		}
		doc[name+suffixSamples] = reps
	}

	return doc
}

// nest rebuilds nested arrays of the given shape from row-major values.
func nest(c Codec, shape []int, vals []float64) any {
	if len(shape) == 0 {
		return c.Float(vals[0], false)
	}
	n := shape[0]
	stride := len(vals) / n
	out := make([]any, n)
	for i := range out {
		out[i] = nest(c, shape[1:], vals[i*stride:(i+1)*stride])
	}

	return out
}
