// SPDX-License-Identifier: MIT

package bootstrap

// Calc evaluates a multi-step formula over Samples while remembering the
// first error, so a derivation reads as one expression and is checked once:
//
//	var c bootstrap.Calc
//	z := c.Add(one, c.Div(k, plaq))
//	f := c.Mul(me, z)
//	if err := c.Err(); err != nil { ... }
//
// Once an error is recorded every method returns the zero Sample.
// The zero value is ready to use. A Calc is not safe for concurrent use.
type Calc struct {
	err error
}

// Err returns the first error recorded, if any.
func (c *Calc) Err() error { return c.err }

func (c *Calc) step(f func() (Sample, error)) Sample {
	if c.err != nil {
		return Sample{}
	}
	s, err := f()
	if err != nil {
		c.err = err
		return Sample{}
	}

	return s
}

func (c *Calc) unary(s Sample, f func(Sample) Sample) Sample {
	if c.err != nil {
		return Sample{}
	}
	if s.IsZero() {
		c.err = ErrEmptySample
		return Sample{}
	}

	return f(s)
}

// Add records a + b.
func (c *Calc) Add(a, b Sample) Sample { return c.step(func() (Sample, error) { return a.Add(b) }) }

// Sub records a − b.
func (c *Calc) Sub(a, b Sample) Sample { return c.step(func() (Sample, error) { return a.Sub(b) }) }

// Mul records a × b.
func (c *Calc) Mul(a, b Sample) Sample { return c.step(func() (Sample, error) { return a.Mul(b) }) }

// Div records a / b.
func (c *Calc) Div(a, b Sample) Sample { return c.step(func() (Sample, error) { return a.Div(b) }) }

// Pow records a^b.
func (c *Calc) Pow(a, b Sample) Sample { return c.step(func() (Sample, error) { return a.Pow(b) }) }

// AddScalar records s + v.
func (c *Calc) AddScalar(s Sample, v float64) Sample {
	return c.unary(s, func(s Sample) Sample { return s.AddScalar(v) })
}

// MulScalar records s × v.
func (c *Calc) MulScalar(s Sample, v float64) Sample {
	return c.unary(s, func(s Sample) Sample { return s.MulScalar(v) })
}

// ScalarDiv records v / s.
func (c *Calc) ScalarDiv(v float64, s Sample) Sample {
	return c.unary(s, func(s Sample) Sample { return s.ScalarDiv(v) })
}

// Square records s².
func (c *Calc) Square(s Sample) Sample { return c.unary(s, Sample.Square) }

// Sqrt records √s.
func (c *Calc) Sqrt(s Sample) Sample { return c.unary(s, Sample.Sqrt) }

// Log records ln s.
func (c *Calc) Log(s Sample) Sample { return c.unary(s, Sample.Log) }
