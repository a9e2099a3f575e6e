// SPDX-License-Identifier: MIT

package bootstrap

import (
	"fmt"
	"math/rand/v2"
)

// defaultPlanSeed is used when callers pass seed == 0, keeping the zero
// configuration reproducible.
const defaultPlanSeed uint64 = 1

// Plan is a fixed replica-assignment scheme: for each of R replicas, the list
// of N configuration indices drawn with replacement. Resampling every
// quantity of one ensemble through the same Plan is what makes replica i of
// one derived Sample correlate with replica i of another.
//
// A Plan is immutable after construction and safe for concurrent use.
type Plan struct {
	configs int
	draws   [][]int // R × N indices into the configuration list
}

// NewPlan draws a deterministic plan of the given replica count over
// configs configurations. Same (configs, replicas, seed) ⇒ same plan.
func NewPlan(configs, replicas int, seed uint64) (*Plan, error) {
	if configs <= 0 || replicas < 0 {
		return nil, fmt.Errorf("NewPlan(%d, %d): %w", configs, replicas, ErrBadPlan)
	}
	if seed == 0 {
		seed = defaultPlanSeed
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	p := &Plan{configs: configs, draws: make([][]int, replicas)}
	for i := range p.draws {
		row := make([]int, configs)
		for j := range row {
			row[j] = rng.IntN(configs)
		}
		p.draws[i] = row
	}

	return p, nil
}

// Configs returns the configuration count N the plan was drawn for.
func (p *Plan) Configs() int { return p.configs }

// Replicas returns the replica count R.
func (p *Plan) Replicas() int { return len(p.draws) }

// Resample turns one measurement per configuration into a scalar Sample:
// the central value is the plain average of data, replica i the average over
// the configurations selected by draw i.
func (p *Plan) Resample(data []float64) (Sample, error) {
	if len(data) != p.configs {
		return Sample{}, fmt.Errorf("Resample: %d values for %d configs: %w", len(data), p.configs, ErrBadPlan)
	}
	inv := 1.0 / float64(p.configs)
	var sum float64
	for _, v := range data {
		sum += v
	}
	s := Sample{mean: []float64{sum * inv}, replicas: make([]float64, len(p.draws)), r: len(p.draws)}
	for i, row := range p.draws {
		sum = 0
		for _, j := range row {
			sum += data[j]
		}
		s.replicas[i] = sum * inv
	}

	return s, nil
}

// ResampleSeries resamples per-configuration series (e.g. a correlator with
// one value per time slice) into an array Sample of shape [len(data[0])].
func (p *Plan) ResampleSeries(data [][]float64) (Sample, error) {
	if len(data) != p.configs {
		return Sample{}, fmt.Errorf("ResampleSeries: %d rows for %d configs: %w", len(data), p.configs, ErrBadPlan)
	}
	width := len(data[0])
	if width == 0 {
		return Sample{}, fmt.Errorf("ResampleSeries: empty rows: %w", ErrBadPlan)
	}
	for i, row := range data {
		if len(row) != width {
			return Sample{}, fmt.Errorf("ResampleSeries: row %d has %d values, want %d: %w", i, len(row), width, ErrBadPlan)
		}
	}
	inv := 1.0 / float64(p.configs)
	s := Sample{
		shape:    []int{width},
		mean:     make([]float64, width),
		replicas: make([]float64, len(p.draws)*width),
		r:        len(p.draws),
	}
	for _, row := range data {
		for t, v := range row {
			s.mean[t] += v * inv
		}
	}
	for i, draw := range p.draws {
		rep := s.replicas[i*width : (i+1)*width]
		for _, j := range draw {
			for t, v := range data[j] {
				rep[t] += v * inv
			}
		}
	}

	return s, nil
}
