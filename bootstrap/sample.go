// SPDX-License-Identifier: MIT

package bootstrap

import "fmt"

// Sample is a central value plus an ordered population of bootstrap replicas.
//
// Storage is row-major: mean holds Size() values and replicas holds
// Replicas()*Size() values, replica-major (replica i occupies
// replicas[i*size:(i+1)*size]). The zero Sample is empty and rejected by
// every operation with ErrEmptySample.
type Sample struct {
	shape    []int     // nil/empty for scalars
	mean     []float64 // central value, len == size
	replicas []float64 // len == r*size
	r        int       // replica count R
}

// New builds a scalar Sample from its central value and replica values.
// The replica slice is copied.
func New(mean float64, replicas []float64) Sample {
	reps := make([]float64, len(replicas))
	copy(reps, replicas)

	return Sample{mean: []float64{mean}, replicas: reps, r: len(replicas)}
}

// Constant returns a scalar Sample whose central value and all r replicas
// equal v, i.e. an exact quantity with zero bootstrap spread.
func Constant(v float64, r int) Sample {
	if r < 0 {
		r = 0
	}
	reps := make([]float64, r)
	for i := range reps {
		reps[i] = v
	}

	return Sample{mean: []float64{v}, replicas: reps, r: r}
}

// NewArray builds an array Sample of the given shape from a row-major
// central value and one row-major slice per replica.
// An empty shape declares a scalar. All inputs are copied.
//
// Errors:
//   - ErrBadShape if a dimension is not positive or a length does not match.
func NewArray(shape []int, mean []float64, replicas [][]float64) (Sample, error) {
	size, err := shapeSize(shape)
	if err != nil {
		return Sample{}, err
	}
	if len(mean) != size {
		return Sample{}, fmt.Errorf("NewArray: len(mean)=%d, size=%d: %w", len(mean), size, ErrBadShape)
	}
	s := Sample{
		shape:    cloneInts(shape),
		mean:     cloneFloats(mean),
		replicas: make([]float64, 0, len(replicas)*size),
		r:        len(replicas),
	}
	for i, rep := range replicas {
		if len(rep) != size {
			return Sample{}, fmt.Errorf("NewArray: replica %d has %d values, size=%d: %w", i, len(rep), size, ErrBadShape)
		}
		s.replicas = append(s.replicas, rep...)
	}

	return s, nil
}

// shapeSize returns the element count of shape (1 for a scalar).
func shapeSize(shape []int) (int, error) {
	size := 1
	for _, d := range shape {
		if d <= 0 {
			return 0, fmt.Errorf("shape %v: %w", shape, ErrBadShape)
		}
		size *= d
	}

	return size, nil
}

// IsZero reports whether s is the empty zero Sample.
func (s Sample) IsZero() bool { return s.mean == nil }

// Shape returns a copy of the Sample's shape (empty for scalars).
func (s Sample) Shape() []int { return cloneInts(s.shape) }

// Size returns the number of elements per value (1 for scalars).
func (s Sample) Size() int { return len(s.mean) }

// IsScalar reports whether the Sample holds a single element.
func (s Sample) IsScalar() bool { return len(s.mean) == 1 }

// Replicas returns the replica count R.
func (s Sample) Replicas() int { return s.r }

// Mean returns a copy of the central value (row-major).
func (s Sample) Mean() []float64 { return cloneFloats(s.mean) }

// Value returns the central value of the first element; for a scalar Sample
// that is the central value itself. The zero Sample yields NaN.
func (s Sample) Value() float64 {
	if s.IsZero() {
		return nan
	}

	return s.mean[0]
}

// Replica returns a copy of replica i (row-major, Size() values).
func (s Sample) Replica(i int) ([]float64, error) {
	if i < 0 || i >= s.r {
		return nil, fmt.Errorf("Replica(%d) of %d: %w", i, s.r, ErrReplicaRange)
	}
	size := len(s.mean)

	return cloneFloats(s.replicas[i*size : (i+1)*size]), nil
}

// ReplicaValues returns a copy of the first element of every replica, in
// replica order. For a scalar Sample this is the whole population.
func (s Sample) ReplicaValues() []float64 {
	size := len(s.mean)
	out := make([]float64, s.r)
	for i := range out {
		out[i] = s.replicas[i*size]
	}

	return out
}

// ReplicaSet returns a copy of every replica as its own row-major slice.
func (s Sample) ReplicaSet() [][]float64 {
	size := len(s.mean)
	out := make([][]float64, s.r)
	for i := range out {
		out[i] = cloneFloats(s.replicas[i*size : (i+1)*size])
	}

	return out
}

// SliceReplicas returns the Sample restricted to replicas [lo, hi), keeping
// shape and central value.
func (s Sample) SliceReplicas(lo, hi int) (Sample, error) {
	if s.IsZero() {
		return Sample{}, ErrEmptySample
	}
	if lo < 0 || hi > s.r || lo > hi {
		return Sample{}, fmt.Errorf("SliceReplicas(%d,%d) of %d: %w", lo, hi, s.r, ErrReplicaRange)
	}
	size := len(s.mean)

	return Sample{
		shape:    cloneInts(s.shape),
		mean:     cloneFloats(s.mean),
		replicas: cloneFloats(s.replicas[lo*size : hi*size]),
		r:        hi - lo,
	}, nil
}

// Element extracts one element of an array Sample as a scalar Sample, e.g.
// a single time slice of a correlator. idx must have one entry per dimension.
func (s Sample) Element(idx ...int) (Sample, error) {
	if s.IsZero() {
		return Sample{}, ErrEmptySample
	}
	if len(idx) != len(s.shape) {
		return Sample{}, fmt.Errorf("Element%v of shape %v: %w", idx, s.shape, ErrBadShape)
	}
	flat := 0
	for d, i := range idx {
		if i < 0 || i >= s.shape[d] {
			return Sample{}, fmt.Errorf("Element%v of shape %v: %w", idx, s.shape, ErrReplicaRange)
		}
		flat = flat*s.shape[d] + i
	}
	size := len(s.mean)
	out := Sample{mean: []float64{s.mean[flat]}, replicas: make([]float64, s.r), r: s.r}
	for i := 0; i < s.r; i++ {
		out.replicas[i] = s.replicas[i*size+flat]
	}

	return out, nil
}

// Equal reports whether a and b are bit-for-bit identical: same shape, same
// central value and same replica sequence. NaNs compare equal to NaNs.
func (s Sample) Equal(o Sample) bool {
	if s.r != o.r || len(s.mean) != len(o.mean) || len(s.shape) != len(o.shape) {
		return false
	}
	for i := range s.shape {
		if s.shape[i] != o.shape[i] {
			return false
		}
	}

	return sameBits(s.mean, o.mean) && sameBits(s.replicas, o.replicas)
}

// String renders the point estimate for debugging.
func (s Sample) String() string {
	if s.IsZero() {
		return "Sample{}"
	}
	if s.IsScalar() {
		est, _ := s.Estimate()
		return fmt.Sprintf("%v (R=%d)", est, s.r)
	}

	return fmt.Sprintf("Sample%v (R=%d)", s.shape, s.r)
}
