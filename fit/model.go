// SPDX-License-Identifier: MIT

package fit

// Model is a parametric function y = f(p, x) with x of fixed dimension.
//
// Implementations must be safe for concurrent use: Eval is called from
// several replica fits at once.
type Model interface {
	// Name is a short identifier used in logs and output records.
	Name() string
	// Params lists parameter names in the order Eval expects them.
	Params() []string
	// Dim is the number of x coordinates per point.
	Dim() int
	// Initial is the fixed starting point shared by all fits.
	Initial() []float64
	// Eval returns f(p, x).
	Eval(p, x []float64) float64
}

// Gradienter is implemented by models with an analytic gradient. Gradient
// writes ∂f/∂p_j into grad (len(grad) == len(p)). Models without it are
// differentiated numerically.
type Gradienter interface {
	Gradient(p, x, grad []float64)
}

// MassAnsatz is y = M·(1 + L·x²).
type MassAnsatz struct{}

// Name returns "mass".
func (MassAnsatz) Name() string { return "mass" }

// Params returns M, L.
func (MassAnsatz) Params() []string { return []string{"M", "L"} }

// Dim returns 1.
func (MassAnsatz) Dim() int { return 1 }

// Initial starts at M=1, L=0.
func (MassAnsatz) Initial() []float64 { return []float64{1, 0} }

// Eval returns M·(1+L·x²).
func (MassAnsatz) Eval(p, x []float64) float64 {
	return p[0] * (1 + p[1]*x[0]*x[0])
}

// Gradient fills ∂y/∂M and ∂y/∂L.
func (MassAnsatz) Gradient(p, x, grad []float64) {
	x2 := x[0] * x[0]
	grad[0] = 1 + p[1]*x2
	grad[1] = p[0] * x2
}

// DecayAnsatz is the chiral-continuum form y = F·(1 + L·x) + W·a, with
// x = (w0·m_ps)² and a = 1/w0 as the two coordinates.
type DecayAnsatz struct{}

// Name returns "decay".
func (DecayAnsatz) Name() string { return "decay" }

// Params returns F, L, W.
func (DecayAnsatz) Params() []string { return []string{"F", "L", "W"} }

// Dim returns 2.
func (DecayAnsatz) Dim() int { return 2 }

// Initial starts at F=1, L=0, W=0.
func (DecayAnsatz) Initial() []float64 { return []float64{1, 0, 0} }

// Eval returns F·(1+L·x₀) + W·x₁.
func (DecayAnsatz) Eval(p, x []float64) float64 {
	return p[0]*(1+p[1]*x[0]) + p[2]*x[1]
}

// Gradient fills ∂y/∂F, ∂y/∂L and ∂y/∂W.
func (DecayAnsatz) Gradient(p, x, grad []float64) {
	grad[0] = 1 + p[1]*x[0]
	grad[1] = p[0] * x[0]
	grad[2] = x[1]
}

// Linear is y = A + B·x.
type Linear struct{}

// Name returns "linear".
func (Linear) Name() string { return "linear" }

// Params returns A, B.
func (Linear) Params() []string { return []string{"A", "B"} }

// Dim returns 1.
func (Linear) Dim() int { return 1 }

// Initial starts at A=0, B=0.
func (Linear) Initial() []float64 { return []float64{0, 0} }

// Eval returns A + B·x.
func (Linear) Eval(p, x []float64) float64 { return p[0] + p[1]*x[0] }

// Gradient fills ∂y/∂A and ∂y/∂B.
func (Linear) Gradient(_, x, grad []float64) {
	grad[0] = 1
	grad[1] = x[0]
}

// Func adapts a plain function to Model. It has no analytic gradient, so
// the Jacobian is taken by central finite differences.
type Func struct {
	Label string
	Names []string  // parameter names
	Dims  int       // x dimension; 0 means 1
	Start []float64 // initial values; nil means all zeros
	F     func(p, x []float64) float64
}

// Name returns Label, or "func" when it is empty.
func (f Func) Name() string {
	if f.Label == "" {
		return "func"
	}

	return f.Label
}

// Params returns Names.
func (f Func) Params() []string { return f.Names }

// Dim returns Dims, defaulting to 1.
func (f Func) Dim() int {
	if f.Dims <= 0 {
		return 1
	}

	return f.Dims
}

// Initial returns Start, or zeros when it is nil.
func (f Func) Initial() []float64 {
	if f.Start == nil {
		return make([]float64, len(f.Names))
	}

	return f.Start
}

// Eval calls F.
func (f Func) Eval(p, x []float64) float64 { return f.F(p, x) }

// ModelByName returns the built-in model with the given Name.
func ModelByName(name string) (Model, bool) {
	switch name {
	case MassAnsatz{}.Name():
		return MassAnsatz{}, true
	case DecayAnsatz{}.Name():
		return DecayAnsatz{}, true
	case Linear{}.Name():
		return Linear{}, true
	default:
		return nil, false
	}
}
