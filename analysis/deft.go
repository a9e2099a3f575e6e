// SPDX-License-Identifier: MIT

package analysis

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/katalvlaran/latboot/bootstrap"
	"github.com/katalvlaran/latboot/fit"
	"github.com/katalvlaran/latboot/renorm"
	"github.com/katalvlaran/latboot/store"
)

// DeFTMinPoints is the fewest ensembles a per-beta DeFT fit accepts.
const DeFTMinPoints = 3

// DeFTSuffix returns the parameter suffix of the beta fit, "b6.6".
func DeFTSuffix(beta float64) string { return "b" + strconv.FormatFloat(beta, 'g', -1, 64) }

// ExtrapolateDeFT fits log(m_ps²/m_PCAC) = A + B·log(f_ps²) over the
// ensembles at one beta, requiring DeFTMinPoints of them whatever minimum
// the Runner was configured with. Records at other betas, or lacking ps_mass, mPCAC
// or a ps decay constant, are skipped. The returned record holds beta,
// A_b<beta>, B_b<beta> and chi_sqr_dof.
func (r *Runner) ExtrapolateDeFT(ctx context.Context, records []*store.Record, beta float64) (*fit.Result, *store.Record, error) {
	const stage = "extrapolate-deft"
	points := make([]fit.Point, 0, len(records))
	for _, rec := range records {
		if b, ok := rec.Float(store.KeyBeta); !ok || b != beta {
			continue
		}
		if !rec.Has(SamplePSMass, SamplePCAC) {
			r.skip(stage, rec, "missing ps_mass or mPCAC")
			continue
		}
		f, err := decayConstant(rec, renorm.PS, beta)
		if errors.Is(err, store.ErrMalformedRecord) {
			r.skip(stage, rec, "missing ps decay constant")
			continue
		}
		if err != nil {
			return nil, nil, fmt.Errorf("ExtrapolateDeFT(%g): ensemble %s: %w", beta, rec.Label(), err)
		}
		mps, _ := rec.Sample(SamplePSMass)
		pcac, _ := rec.Sample(SamplePCAC)

		var c bootstrap.Calc
		y := c.Log(c.Div(c.Square(mps), pcac))
		x := c.Log(c.Square(f))
		if err = c.Err(); err != nil {
			return nil, nil, fmt.Errorf("ExtrapolateDeFT(%g): ensemble %s: %w", beta, rec.Label(), err)
		}
		points = append(points, fit.NewPoint(rec.Label(), y, x))
	}

	// the per-beta minimum overrides any configured one
	opts := append(slices.Clone(r.fitOpts), fit.WithMinPoints(DeFTMinPoints))
	res, err := fit.Fit(ctx, fit.Linear{}, points, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("ExtrapolateDeFT(%g): %w", beta, err)
	}
	r.log.Info("deft fit", "beta", beta, "points", res.NumUsed(), "chi2_dof", res.ChiSquarePerDoF())

	out := ResultRecord(res, DeFTSuffix(beta))
	if err = out.SetMeta(store.KeyBeta, beta); err != nil {
		return nil, nil, err
	}

	return res, out, nil
}

// ExtrapolateDeFTAll runs ExtrapolateDeFT for every beta present, in
// ascending order. Betas with fewer than DeFTMinPoints usable ensembles
// are skipped; any other failure aborts.
func (r *Runner) ExtrapolateDeFTAll(ctx context.Context, records []*store.Record) ([]*store.Record, error) {
	var betas []float64
	for _, rec := range records {
		if b, ok := rec.Float(store.KeyBeta); ok && !slices.Contains(betas, b) {
			betas = append(betas, b)
		}
	}
	slices.Sort(betas)

	out := make([]*store.Record, 0, len(betas))
	for _, b := range betas {
		_, rec, err := r.ExtrapolateDeFT(ctx, records, b)
		if errors.Is(err, fit.ErrTooFewPoints) {
			r.log.Debug("beta skipped", "stage", "extrapolate-deft", "beta", b, "reason", err.Error())
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("ExtrapolateDeFTAll: %w", ErrNoRecords)
	}

	return out, nil
}
