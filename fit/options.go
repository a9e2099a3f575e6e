// SPDX-License-Identifier: MIT

package fit

import (
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"slices"
)

// ---------- Defaults ----------

const (
	// DefaultMaxIterations caps accepted+rejected LM steps per minimisation.
	DefaultMaxIterations = 500

	// DefaultTolerance is the relative chi-square / step size below which a
	// minimisation is considered converged.
	DefaultTolerance = 1e-12

	// DefaultPolicy fails the whole fit when any replica fit fails.
	DefaultPolicy = ReplicaFail
)

// ---------- Replica failure policy ----------

// ReplicaPolicy decides what a non-converging replica fit does.
type ReplicaPolicy int

const (
	// ReplicaFail aborts the fit with ErrNonConvergence.
	ReplicaFail ReplicaPolicy = iota

	// ReplicaNaN stores NaN for every parameter of that replica and records
	// its index in Result.FailedReplicas.
	ReplicaNaN
)

// String returns the flag spelling of the policy.
func (p ReplicaPolicy) String() string {
	switch p {
	case ReplicaFail:
		return "fail"
	case ReplicaNaN:
		return "nan"
	default:
		return fmt.Sprintf("ReplicaPolicy(%d)", int(p))
	}
}

// ParseReplicaPolicy parses "fail" or "nan".
func ParseReplicaPolicy(s string) (ReplicaPolicy, error) {
	switch s {
	case "fail", "":
		return ReplicaFail, nil
	case "nan":
		return ReplicaNaN, nil
	default:
		return ReplicaFail, fmt.Errorf("ParseReplicaPolicy(%q): %w", s, ErrUnknownPolicy)
	}
}

// ---------- Panic messages ----------

const (
	panicWorkersInvalid   = "fit: WithWorkers: n must be >= 0"
	panicMaxIterInvalid   = "fit: WithMaxIterations: n must be > 0"
	panicToleranceInvalid = "fit: WithTolerance: tol must be finite and > 0"
	panicMinPointsInvalid = "fit: WithMinPoints: n must be >= 0"
)

// ---------- Options ----------

// Option configures a Fit call. Constructors panic only on nonsensical
// values (programmer error).
type Option func(*Options)

// Options is the effective configuration after applying Option setters.
type Options struct {
	workers   int           // 0 ⇒ GOMAXPROCS
	maxIter   int           // DefaultMaxIterations
	tol       float64       // DefaultTolerance
	minPoints int           // 0 ⇒ len(params)+1
	policy    ReplicaPolicy // DefaultPolicy
	initial   []float64     // nil ⇒ Model.Initial()
	logger    *slog.Logger  // discard by default
}

// WithWorkers bounds the number of concurrent replica fits. 0 selects
// runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	if n < 0 {
		panic(panicWorkersInvalid)
	}

	return func(o *Options) { o.workers = n }
}

// WithMaxIterations caps the number of LM iterations per minimisation.
func WithMaxIterations(n int) Option {
	if n <= 0 {
		panic(panicMaxIterInvalid)
	}

	return func(o *Options) { o.maxIter = n }
}

// WithTolerance sets the relative convergence tolerance.
func WithTolerance(tol float64) Option {
	if math.IsNaN(tol) || math.IsInf(tol, 0) || tol <= 0 {
		panic(panicToleranceInvalid)
	}

	return func(o *Options) { o.tol = tol }
}

// WithMinPoints raises the minimum number of usable points. Values below
// the parameter count are lifted to it; 0 restores the default params+1.
func WithMinPoints(n int) Option {
	if n < 0 {
		panic(panicMinPointsInvalid)
	}

	return func(o *Options) { o.minPoints = n }
}

// WithReplicaPolicy selects the replica failure policy.
func WithReplicaPolicy(p ReplicaPolicy) Option {
	return func(o *Options) { o.policy = p }
}

// WithInitial overrides the model's starting point for every fit.
func WithInitial(p ...float64) Option {
	cp := slices.Clone(p)

	return func(o *Options) { o.initial = cp }
}

// WithLogger routes debug output of the fit. nil keeps the discard logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.logger = l
		}
	}
}

// gatherOptions applies opts over the defaults.
func gatherOptions(opts ...Option) Options {
	o := Options{
		maxIter: DefaultMaxIterations,
		tol:     DefaultTolerance,
		policy:  DefaultPolicy,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers == 0 {
		o.workers = runtime.GOMAXPROCS(0)
	}

	return o
}

// required returns the minimum usable point count for k parameters.
func (o Options) required(k int) int {
	if o.minPoints == 0 {
		return k + 1
	}

	return max(o.minPoints, k)
}
