// SPDX-License-Identifier: MIT

package store

import "github.com/hyp3rd/ewrap"

// Grouped is a set of records merged by the value of one metadata key,
// kept in first-seen order.
type Grouped struct {
	key   string
	order []string
	byKey map[string]*Record
}

// Group merges records sharing the same value of key. The inputs are not
// modified. A record without key fails with ErrMalformedRecord; two records
// of one group that disagree on a field fail with ErrInconsistentGrouping.
func Group(key string, records []*Record) (*Grouped, error) {
	g := &Grouped{key: key, byKey: make(map[string]*Record)}
	for _, r := range records {
		v, ok := r.Meta(key)
		if !ok {
			return nil, ewrap.Wrapf(ErrMalformedRecord, "record %s has no %q", r.Label(), key)
		}
		id := formatScalar(v)
		cur, seen := g.byKey[id]
		if !seen {
			g.byKey[id] = r.Clone()
			g.order = append(g.order, id)
			continue
		}
		if err := cur.Merge(r); err != nil {
			return nil, ewrap.Wrapf(err, "group %s=%s", key, id)
		}
	}

	return g, nil
}

// Key returns the grouping key.
func (g *Grouped) Key() string { return g.key }

// Len returns the number of groups.
func (g *Grouped) Len() int { return len(g.order) }

// Keys returns the group values (formatted) in first-seen order.
func (g *Grouped) Keys() []string { return append([]string(nil), g.order...) }

// Get returns the merged record whose key equals value. Numeric values
// match regardless of int/float spelling (6 and 6.0 are one group).
func (g *Grouped) Get(value any) (*Record, bool) {
	nv, ok := normalizeScalar(value)
	if !ok {
		return nil, false
	}
	r, ok := g.byKey[formatScalar(nv)]

	return r, ok
}

// Records returns the merged records in first-seen order.
func (g *Grouped) Records() []*Record {
	out := make([]*Record, len(g.order))
	for i, id := range g.order {
		out[i] = g.byKey[id]
	}

	return out
}

// Join is an inner join of left and right on key: each left record with a
// right partner yields their merge, in left order; unmatched records on
// either side are dropped. A key value occurring twice on one side, or a
// field on which the partners disagree, fails with ErrInconsistentGrouping.
func Join(key string, left, right []*Record) ([]*Record, error) {
	index := make(map[string]*Record, len(right))
	for _, r := range right {
		v, ok := r.Meta(key)
		if !ok {
			return nil, ewrap.Wrapf(ErrMalformedRecord, "right record %s has no %q", r.Label(), key)
		}
		id := formatScalar(v)
		if _, dup := index[id]; dup {
			return nil, ewrap.Wrapf(ErrInconsistentGrouping, "right side has %s=%s twice", key, id)
		}
		index[id] = r
	}
	seen := make(map[string]bool, len(left))
	var out []*Record
	for _, l := range left {
		v, ok := l.Meta(key)
		if !ok {
			return nil, ewrap.Wrapf(ErrMalformedRecord, "left record %s has no %q", l.Label(), key)
		}
		id := formatScalar(v)
		if seen[id] {
			return nil, ewrap.Wrapf(ErrInconsistentGrouping, "left side has %s=%s twice", key, id)
		}
		seen[id] = true
		partner, ok := index[id]
		if !ok {
			continue
		}
		merged := l.Clone()
		if err := merged.Merge(partner); err != nil {
			return nil, err
		}
		out = append(out, merged)
	}

	return out, nil
}

// Distinct returns the single value of key shared by all records. No
// records, a missing key, or more than one distinct value fail with
// ErrInconsistentGrouping.
func Distinct(key string, records []*Record) (any, error) {
	var (
		val   any
		found bool
	)
	for _, r := range records {
		v, ok := r.Meta(key)
		if !ok {
			return nil, ewrap.Wrapf(ErrInconsistentGrouping, "record %s has no %q", r.Label(), key)
		}
		if found && !sameScalar(val, v) {
			return nil, ewrap.Wrapf(ErrInconsistentGrouping, "%q takes values %v and %v", key, val, v)
		}
		val, found = v, true
	}
	if !found {
		return nil, ewrap.Wrapf(ErrInconsistentGrouping, "no records to take %q from", key)
	}

	return val, nil
}
