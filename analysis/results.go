// SPDX-License-Identifier: MIT

package analysis

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/katalvlaran/latboot/bootstrap"
	"github.com/katalvlaran/latboot/fit"
	"github.com/katalvlaran/latboot/store"
)

// ParamName returns the record field of a fit parameter: the bare name for
// an empty suffix, "<name>_<suffix>" otherwise.
func ParamName(param, suffix string) string {
	if suffix == "" {
		return param
	}

	return param + "_" + suffix
}

// ResultRecord stores a fit result as a record: one Sample per parameter,
// named by ParamName, plus model, chi_sqr_dof and n_points metadata and,
// with at least two replicas, corr_<p>_<q> for every parameter pair.
func ResultRecord(res *fit.Result, suffix string) *store.Record {
	out := store.NewRecord()
	for j, name := range res.Params {
		out.SetSample(ParamName(name, suffix), res.Values[j])
	}
	// the value types below are always accepted by SetMeta
	_ = out.SetMeta(KeyModel, res.Model)
	_ = out.SetMeta(store.KeyChi2, res.ChiSquarePerDoF())
	_ = out.SetMeta(KeyPoints, res.NumUsed())

	corr, err := res.Correlation()
	if err != nil {
		return out
	}
	for i := range res.Params {
		for j := i + 1; j < len(res.Params); j++ {
			v, _ := corr.At(i, j)
			_ = out.SetMeta(CorrelationKey(ParamName(res.Params[i], suffix), ParamName(res.Params[j], suffix)), v)
		}
	}

	return out
}

// CorrelationKey names the metadata field holding the replica correlation
// of two parameters.
func CorrelationKey(p, q string) string { return "corr_" + p + "_" + q }

// ResultFromRecord rebuilds an evaluable fit of m from the parameter
// Samples of rec, the inverse of ResultRecord.
func ResultFromRecord(rec *store.Record, m fit.Model, suffix string) (*fit.Result, error) {
	names := m.Params()
	values := make([]bootstrap.Sample, len(names))
	for j, p := range names {
		s, ok := rec.Sample(ParamName(p, suffix))
		if !ok {
			return nil, fmt.Errorf("ResultFromRecord(%s): record %s lacks %q: %w",
				m.Name(), rec.Label(), ParamName(p, suffix), store.ErrMalformedRecord)
		}
		values[j] = s
	}

	return fit.FromParams(m, values...)
}

// SingleBeta returns the beta shared by all records, or
// ErrInconsistentGrouping when there is none or more than one.
func SingleBeta(records []*store.Record) (float64, error) {
	v, err := store.Distinct(store.KeyBeta, records)
	if err != nil {
		return math.NaN(), err
	}
	switch b := v.(type) {
	case float64:
		return b, nil
	case int64:
		return float64(b), nil
	default:
		return math.NaN(), fmt.Errorf("SingleBeta: beta %v is %T: %w", v, v, store.ErrMalformedRecord)
	}
}

// BandPoint is one grid point of a fit band.
type BandPoint struct {
	X           float64 `json:"x"`
	Value       float64 `json:"value"`
	Uncertainty float64 `json:"uncertainty"`
}

// Band evaluates a one-dimensional fit on n evenly spaced points of
// [from, to], inclusive, as central value ± bootstrap std-dev.
func Band(res *fit.Result, from, to float64, n int) ([]BandPoint, error) {
	if n < 2 || !(to > from) || math.IsInf(from, 0) || math.IsInf(to, 0) {
		return nil, fmt.Errorf("Band: [%g, %g] with %d points: %w", from, to, n, ErrBadGrid)
	}
	grid := make([]float64, n)
	step := (to - from) / float64(n-1)
	for i := range grid {
		grid[i] = from + float64(i)*step
	}
	grid[n-1] = to

	est, err := res.Band(grid)
	if err != nil {
		return nil, err
	}
	out := make([]BandPoint, n)
	for i, e := range est {
		out[i] = BandPoint{X: grid[i], Value: e.Value, Uncertainty: e.Uncertainty}
	}

	return out, nil
}

// WriteBand writes band points as CSV with an x,value,uncertainty header.
func WriteBand(w io.Writer, points []BandPoint) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"x", "value", "uncertainty"}); err != nil {
		return err
	}
	for _, p := range points {
		row := []string{formatFloat(p.X), formatFloat(p.Value), formatFloat(p.Uncertainty)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()

	return cw.Error()
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
