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

// DecayConstant merges records describing one ensemble (they may come from
// separate measurement files) and returns a record holding the ensemble
// metadata and the renormalised <ch>_decay_constant Sample.
//
// Records naming more than one ensemble fail with ErrInconsistentGrouping;
// a missing plaquette or matrix element fails with store.ErrMalformedRecord.
func (r *Runner) DecayConstant(records []*store.Record, ch renorm.Channel) (*store.Record, error) {
	if !ch.In(renorm.DecayChannels()) {
		return nil, fmt.Errorf("DecayConstant(%q): %w", string(ch), renorm.ErrUnknownChannel)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("DecayConstant(%s): %w", ch, ErrNoRecords)
	}
	if _, err := store.Distinct(store.KeyEnsemble, records); err != nil {
		return nil, fmt.Errorf("DecayConstant(%s): %w", ch, err)
	}
	rec := records[0].Clone()
	for _, other := range records[1:] {
		if err := rec.Merge(other); err != nil {
			return nil, fmt.Errorf("DecayConstant(%s): %w", ch, err)
		}
	}

	ens, err := rec.Ensemble()
	if err != nil {
		return nil, fmt.Errorf("DecayConstant(%s): %w", ch, err)
	}
	f, err := decayConstant(rec, ch, ens.Beta)
	if err != nil {
		return nil, fmt.Errorf("DecayConstant(%s): ensemble %s: %w", ch, ens.Name, err)
	}
	r.log.Debug("decay constant", "ensemble", ens.Name, "channel", ch.String())

	out := store.NewRecord()
	out.SetEnsemble(ens)
	out.SetSample(DecayConstantName(ch), f)

	return out, nil
}

// decayConstant returns Z(ch)·<ch>_matrix_element. A record that already
// carries <ch>_decay_constant is used as is.
func decayConstant(rec *store.Record, ch renorm.Channel, beta float64) (bootstrap.Sample, error) {
	if f, ok := rec.Sample(DecayConstantName(ch)); ok {
		return f, nil
	}
	if err := rec.Require(SamplePlaquette, MatrixElementName(ch)); err != nil {
		return bootstrap.Sample{}, err
	}
	plaq, _ := rec.Sample(SamplePlaquette)
	me, _ := rec.Sample(MatrixElementName(ch))
	z, err := renorm.Factor(ch, beta, plaq)
	if err != nil {
		return bootstrap.Sample{}, err
	}

	return me.Mul(z)
}

// ExtrapolateDecay fits the chiral-continuum ansatz
//
//	(w0·f_ch)² = F·(1 + L·(w0·m_ps)²) + W/w0
//
// across ensembles. Blueprint:
//
//	Stage 1 (Select):  keep records carrying w0, ps_mass, <ch>_mass and a
//	                   decay constant (or matrix element plus plaquette),
//	                   and whose <ch>_mass replicas are all finite.
//	Stage 2 (Derive):  x = (w0·m_ps)², a = 1/w0, y = (w0·f)², replica-wise.
//	Stage 3 (Fit):     fit.DecayAnsatz.
//	Stage 4 (Record):  F_<ch>, L_<ch>, W_<ch>, channel, chi_sqr_dof.
//
// A selected record with no beta fails with store.ErrMalformedRecord.
func (r *Runner) ExtrapolateDecay(ctx context.Context, records []*store.Record, ch renorm.Channel) (*fit.Result, *store.Record, error) {
	const stage = "extrapolate-decay"
	if !ch.In(renorm.DecayChannels()) {
		return nil, nil, fmt.Errorf("ExtrapolateDecay(%q): %w", string(ch), renorm.ErrUnknownChannel)
	}

	// Stage 1 + 2: Select and Derive.
	points := make([]fit.Point, 0, len(records))
	for _, rec := range records {
		if !rec.Has(SampleW0, SamplePSMass, MassName(ch)) {
			r.skip(stage, rec, "missing w0, ps_mass or "+MassName(ch))
			continue
		}
		if !rec.Has(DecayConstantName(ch)) && !rec.Has(MatrixElementName(ch), SamplePlaquette) {
			r.skip(stage, rec, "missing "+MatrixElementName(ch))
			continue
		}
		if m, _ := rec.Sample(MassName(ch)); m.HasNaN() {
			r.skip(stage, rec, MassName(ch)+" has NaN replicas")
			continue
		}
		pt, err := decayPoint(rec, ch)
		if err != nil {
			return nil, nil, fmt.Errorf("ExtrapolateDecay(%s): %w", ch, err)
		}
		points = append(points, pt)
	}

	// Stage 3: Fit.
	res, err := fit.Fit(ctx, fit.DecayAnsatz{}, points, r.fitOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("ExtrapolateDecay(%s): %w", ch, err)
	}
	r.log.Info("decay extrapolation", "channel", ch.String(), "points", res.NumUsed(), "chi2_dof", res.ChiSquarePerDoF())

	// Stage 4: Record.
	out := ResultRecord(res, ch.String())
	if err = out.SetMeta(store.KeyChannel, ch.String()); err != nil {
		return nil, nil, err
	}

	return res, out, nil
}

func decayPoint(rec *store.Record, ch renorm.Channel) (fit.Point, error) {
	label := rec.Label()
	beta, ok := rec.Float(store.KeyBeta)
	if !ok {
		return fit.Point{}, fmt.Errorf("ensemble %s: %q: %w", label, store.KeyBeta, store.ErrMalformedRecord)
	}
	f, err := decayConstant(rec, ch, beta)
	if err != nil {
		return fit.Point{}, fmt.Errorf("ensemble %s: %w", label, err)
	}
	w0, _ := rec.Sample(SampleW0)
	mps, _ := rec.Sample(SamplePSMass)

	var c bootstrap.Calc
	x := c.Square(c.Mul(w0, mps))
	a := c.ScalarDiv(1, w0)
	y := c.Square(c.Mul(w0, f))
	if err = c.Err(); err != nil {
		return fit.Point{}, fmt.Errorf("ensemble %s: %w", label, err)
	}

	return fit.NewPoint(label, y, x, a), nil
}
