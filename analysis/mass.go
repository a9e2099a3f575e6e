// SPDX-License-Identifier: MIT

package analysis

import (
	"context"
	"fmt"

	"github.com/katalvlaran/latboot/bootstrap"
	"github.com/katalvlaran/latboot/fit"
	"github.com/katalvlaran/latboot/renorm"
	"github.com/katalvlaran/latboot/store"
)

// ExtrapolateMass fits (w0·m_ch)² = M·(1 + L·(w0·m_ps)²) to the smeared
// meson masses of every record that carries w0, smear_ps_mass and
// smear_<ch>_mass. Other records are skipped. The returned record holds M,
// L, channel and chi_sqr_dof.
func (r *Runner) ExtrapolateMass(ctx context.Context, records []*store.Record, ch renorm.Channel) (*fit.Result, *store.Record, error) {
	const stage = "extrapolate-mass"
	if !ch.In(renorm.MassChannels()) {
		return nil, nil, fmt.Errorf("ExtrapolateMass(%q): %w", string(ch), renorm.ErrUnknownChannel)
	}
	psName, chName := SmearedMassName(renorm.PS), SmearedMassName(ch)

	points := make([]fit.Point, 0, len(records))
	for _, rec := range records {
		if !rec.Has(SampleW0, psName, chName) {
			r.skip(stage, rec, "missing w0, "+psName+" or "+chName)
			continue
		}
		w0, _ := rec.Sample(SampleW0)
		mps, _ := rec.Sample(psName)
		mch, _ := rec.Sample(chName)

		var c bootstrap.Calc
		x := c.Mul(w0, mps)
		y := c.Square(c.Mul(w0, mch))
		if err := c.Err(); err != nil {
			return nil, nil, fmt.Errorf("ExtrapolateMass(%s): ensemble %s: %w", ch, rec.Label(), err)
		}
		points = append(points, fit.NewPoint(rec.Label(), y, x))
	}

	res, err := fit.Fit(ctx, fit.MassAnsatz{}, points, r.fitOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("ExtrapolateMass(%s): %w", ch, err)
	}
	r.log.Info("mass extrapolation", "channel", ch.String(), "points", res.NumUsed(), "chi2_dof", res.ChiSquarePerDoF())

	out := ResultRecord(res, "")
	if err = out.SetMeta(store.KeyChannel, ch.String()); err != nil {
		return nil, nil, err
	}

	return res, out, nil
}
