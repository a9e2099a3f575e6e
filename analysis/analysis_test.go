// SPDX-License-Identifier: MIT

package analysis_test

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/katalvlaran/latboot/analysis"
	"github.com/katalvlaran/latboot/bootstrap"
	"github.com/katalvlaran/latboot/fit"
	"github.com/katalvlaran/latboot/renorm"
	"github.com/katalvlaran/latboot/store"
	"github.com/katalvlaran/latboot/style"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flat is a noiseless Sample: every replica equals the central value.
func flat(v float64) bootstrap.Sample { return bootstrap.New(v, []float64{v, v, v}) }

func record(name string, beta float64, samples map[string]bootstrap.Sample) *store.Record {
	rec := store.NewRecord()
	rec.SetEnsemble(store.Ensemble{Name: name, Beta: beta, MAS: -1.01, Nt: 48, Ns: 24})
	for k, s := range samples {
		rec.SetSample(k, s)
	}

	return rec
}

func TestDecayConstant(t *testing.T) {
	plaq := bootstrap.New(0.6, []float64{0.59, 0.61, 0.6})
	me := bootstrap.New(0.1, []float64{0.1, 0.11, 0.09})
	// plaquette and matrix element arrive in separate files
	a := record("E1", 6.6, map[string]bootstrap.Sample{"plaquette": plaq})
	b := record("E1", 6.6, map[string]bootstrap.Sample{"ps_matrix_element": me})

	out, err := analysis.NewRunner(nil).DecayConstant([]*store.Record{a, b}, renorm.PS)
	require.NoError(t, err)

	ens, err := out.Ensemble()
	require.NoError(t, err)
	assert.Equal(t, store.Ensemble{Name: "E1", Beta: 6.6, MAS: -1.01, Nt: 48, Ns: 24}, ens)

	f, ok := out.Sample("ps_decay_constant")
	require.True(t, ok)
	z, err := renorm.FactorValue(renorm.PS, 6.6, 0.6)
	require.NoError(t, err)
	assert.InDelta(t, 0.1*z, f.Value(), 1e-15)
	for i, v := range f.ReplicaValues() {
		zi, err := renorm.FactorValue(renorm.PS, 6.6, plaq.ReplicaValues()[i])
		require.NoError(t, err)
		assert.InDelta(t, me.ReplicaValues()[i]*zi, v, 1e-15, "replica %d", i)
	}
	assert.False(t, out.Has("plaquette"))
}

func TestDecayConstantErrors(t *testing.T) {
	r := analysis.NewRunner(nil)
	full := record("E1", 6.6, map[string]bootstrap.Sample{"plaquette": flat(0.6), "ps_matrix_element": flat(0.1)})

	_, err := r.DecayConstant([]*store.Record{full}, renorm.T)
	assert.ErrorIs(t, err, renorm.ErrUnknownChannel)

	_, err = r.DecayConstant(nil, renorm.PS)
	assert.ErrorIs(t, err, analysis.ErrNoRecords)

	other := record("E2", 6.6, nil)
	_, err = r.DecayConstant([]*store.Record{full, other}, renorm.PS)
	assert.ErrorIs(t, err, analysis.ErrInconsistentGrouping)

	_, err = r.DecayConstant([]*store.Record{full}, renorm.V)
	assert.ErrorIs(t, err, store.ErrMalformedRecord)

	short := bootstrap.New(0.6, []float64{0.6, 0.6})
	mismatched := record("E1", 6.6, map[string]bootstrap.Sample{"plaquette": short, "ps_matrix_element": flat(0.1)})
	_, err = r.DecayConstant([]*store.Record{mismatched}, renorm.PS)
	assert.ErrorIs(t, err, bootstrap.ErrShapeMismatch)
}

func TestExtrapolateMass(t *testing.T) {
	const m, l = 2.0, 0.5
	var records []*store.Record
	for i, x := range []float64{0.2, 0.4, 0.6, 0.8, 1.0} {
		y := m * (1 + l*x*x)
		records = append(records, record(string(rune('A'+i)), 6.6, map[string]bootstrap.Sample{
			"w0":            flat(1),
			"smear_ps_mass": flat(x),
			"smear_v_mass":  flat(math.Sqrt(y)),
		}))
	}
	records = append(records, record("NoV", 6.6, map[string]bootstrap.Sample{"w0": flat(1), "smear_ps_mass": flat(0.3)}))

	res, out, err := analysis.NewRunner(nil).ExtrapolateMass(context.Background(), records, renorm.V)
	require.NoError(t, err)
	assert.Equal(t, 5, res.NumUsed())

	gotM, ok := out.Sample("M")
	require.True(t, ok)
	gotL, ok := out.Sample("L")
	require.True(t, ok)
	assert.InDelta(t, m, gotM.Value(), 1e-6)
	assert.InDelta(t, l, gotL.Value(), 1e-6)

	ch, _ := out.String(store.KeyChannel)
	assert.Equal(t, "v", ch)
	chi2, _ := out.Float(store.KeyChi2)
	assert.InDelta(t, 0, chi2, 1e-10)
	n, _ := out.Int(analysis.KeyPoints)
	assert.EqualValues(t, 5, n)

	_, _, err = analysis.NewRunner(nil).ExtrapolateMass(context.Background(), records, renorm.PS)
	assert.ErrorIs(t, err, renorm.ErrUnknownChannel)
}

func TestExtrapolateDecay(t *testing.T) {
	const (
		bigF, bigL, bigW = 0.1, 0.5, -0.02
		beta, plaq       = 6.6, 0.6
	)
	z, err := renorm.FactorValue(renorm.V, beta, plaq)
	require.NoError(t, err)

	w0s := []float64{1.5, 1.8, 2.0, 2.2, 2.5}
	mps := []float64{0.4, 0.35, 0.3, 0.32, 0.28}
	var records []*store.Record
	for i := range w0s {
		x := math.Pow(w0s[i]*mps[i], 2)
		y := bigF*(1+bigL*x) + bigW/w0s[i]
		f := math.Sqrt(y) / w0s[i]
		records = append(records, record(string(rune('A'+i)), beta, map[string]bootstrap.Sample{
			"w0":               flat(w0s[i]),
			"ps_mass":          flat(mps[i]),
			"v_mass":           flat(0.5),
			"v_matrix_element": flat(f / z),
			"plaquette":        flat(plaq),
		}))
	}
	nanMass := record("NaN", beta, map[string]bootstrap.Sample{
		"w0": flat(2), "ps_mass": flat(0.3), "plaquette": flat(plaq), "v_matrix_element": flat(0.05),
		"v_mass": bootstrap.New(0.5, []float64{0.5, math.NaN(), 0.5}),
	})
	noW0 := record("NoW0", beta, map[string]bootstrap.Sample{
		"ps_mass": flat(0.3), "v_mass": flat(0.5), "plaquette": flat(plaq), "v_matrix_element": flat(0.05),
	})
	records = append(records, nanMass, noW0)

	res, out, err := analysis.NewRunner(nil).ExtrapolateDecay(context.Background(), records, renorm.V)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, res.Used)
	assert.Empty(t, res.Excluded)

	for name, want := range map[string]float64{"F_v": bigF, "L_v": bigL, "W_v": bigW} {
		s, ok := out.Sample(name)
		require.True(t, ok, name)
		assert.InDelta(t, want, s.Value(), 1e-6, name)
	}
	ch, _ := out.String(store.KeyChannel)
	assert.Equal(t, "v", ch)
	model, _ := out.String(analysis.KeyModel)
	assert.Equal(t, "decay", model)
}

func TestExtrapolateDecayErrors(t *testing.T) {
	r := analysis.NewRunner(nil)
	_, _, err := r.ExtrapolateDecay(context.Background(), nil, renorm.T)
	assert.ErrorIs(t, err, renorm.ErrUnknownChannel)

	_, _, err = r.ExtrapolateDecay(context.Background(), nil, renorm.PS)
	assert.ErrorIs(t, err, fit.ErrTooFewPoints)

	noBeta := store.NewRecord()
	require.NoError(t, noBeta.SetMeta(store.KeyEnsemble, "E1"))
	for _, n := range []string{"w0", "ps_mass", "ps_decay_constant"} {
		noBeta.SetSample(n, flat(1))
	}
	_, _, err = r.ExtrapolateDecay(context.Background(), []*store.Record{noBeta}, renorm.PS)
	assert.ErrorIs(t, err, store.ErrMalformedRecord)
}

func deftRecords(beta, a, b float64, fs []float64, prefix string) []*store.Record {
	out := make([]*store.Record, len(fs))
	const mps = 0.5
	for i, f := range fs {
		x := math.Log(f * f)
		pcac := mps * mps / math.Exp(a+b*x)
		out[i] = record(prefix+string(rune('A'+i)), beta, map[string]bootstrap.Sample{
			"ps_mass":           flat(mps),
			"mPCAC":             flat(pcac),
			"ps_decay_constant": flat(f),
		})
	}

	return out
}

func TestExtrapolateDeFT(t *testing.T) {
	records := deftRecords(6.6, 1.0, 0.5, []float64{0.05, 0.06, 0.07, 0.08}, "L")
	records = append(records, deftRecords(6.7, 1.0, 0.5, []float64{0.05, 0.06}, "H")...)
	r := analysis.NewRunner(nil)

	res, out, err := r.ExtrapolateDeFT(context.Background(), records, 6.6)
	require.NoError(t, err)
	assert.Equal(t, 4, res.NumUsed())
	a, ok := out.Sample("A_b6.6")
	require.True(t, ok)
	b, ok := out.Sample("B_b6.6")
	require.True(t, ok)
	assert.InDelta(t, 1.0, a.Value(), 1e-8)
	assert.InDelta(t, 0.5, b.Value(), 1e-8)
	beta, _ := out.Float(store.KeyBeta)
	assert.Equal(t, 6.6, beta)

	_, _, err = r.ExtrapolateDeFT(context.Background(), records, 6.7)
	assert.ErrorIs(t, err, fit.ErrTooFewPoints)

	all, err := r.ExtrapolateDeFTAll(context.Background(), records)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].Has("A_b6.6", "B_b6.6"))

	_, err = r.ExtrapolateDeFTAll(context.Background(), records[4:])
	assert.ErrorIs(t, err, analysis.ErrNoRecords)
}

func TestExtrapolateDeFTIgnoresConfiguredMinPoints(t *testing.T) {
	records := deftRecords(6.6, 1.0, 0.5, []float64{0.05, 0.06, 0.07}, "L")
	r := analysis.NewRunner(nil, fit.WithMinPoints(5))

	res, out, err := r.ExtrapolateDeFT(context.Background(), records, 6.6)
	require.NoError(t, err)
	assert.Equal(t, 3, res.NumUsed())
	assert.True(t, out.Has("A_b6.6", "B_b6.6"))

	all, err := r.ExtrapolateDeFTAll(context.Background(), records)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSingleBeta(t *testing.T) {
	same := []*store.Record{record("A", 6.6, nil), record("B", 6.6, nil)}
	b, err := analysis.SingleBeta(same)
	require.NoError(t, err)
	assert.Equal(t, 6.6, b)

	_, err = analysis.SingleBeta(append(same, record("C", 6.7, nil)))
	assert.ErrorIs(t, err, analysis.ErrInconsistentGrouping)

	_, err = analysis.SingleBeta(nil)
	assert.ErrorIs(t, err, analysis.ErrInconsistentGrouping)
}

func TestResultRecordRoundTripAndBand(t *testing.T) {
	a := bootstrap.New(1, []float64{0.5, 1.5})
	b := bootstrap.New(2, []float64{2, 2})
	res, err := fit.FromParams(fit.Linear{}, a, b)
	require.NoError(t, err)

	rec := analysis.ResultRecord(res, "b6.6")
	assert.True(t, rec.Has("A_b6.6", "B_b6.6"))
	// B has no spread, so the correlation is undefined
	corr, ok := rec.Float(analysis.CorrelationKey("A_b6.6", "B_b6.6"))
	require.True(t, ok)
	assert.True(t, math.IsNaN(corr))

	back, err := analysis.ResultFromRecord(rec, fit.Linear{}, "b6.6")
	require.NoError(t, err)
	band, err := analysis.Band(back, 0, 1, 3)
	require.NoError(t, err)
	require.Len(t, band, 3)
	assert.Equal(t, []float64{0, 0.5, 1}, []float64{band[0].X, band[1].X, band[2].X})
	assert.InDelta(t, 2.0, band[1].Value, 1e-15)
	assert.InDelta(t, 0.5, band[1].Uncertainty, 1e-15)

	var sb strings.Builder
	require.NoError(t, analysis.WriteBand(&sb, band[:1]))
	assert.Equal(t, "x,value,uncertainty\n0,1,0.5\n", sb.String())

	_, err = analysis.ResultFromRecord(rec, fit.Linear{}, "")
	assert.ErrorIs(t, err, store.ErrMalformedRecord)

	_, err = analysis.Band(back, 1, 0, 3)
	assert.ErrorIs(t, err, analysis.ErrBadGrid)
	_, err = analysis.Band(back, 0, 1, 1)
	assert.ErrorIs(t, err, analysis.ErrBadGrid)
}

func TestSeries(t *testing.T) {
	w0 := bootstrap.New(2, []float64{2.1, 1.9})
	pcac := bootstrap.New(0.1, []float64{0.11, 0.09})
	records := []*store.Record{
		record("E3", 6.65, map[string]bootstrap.Sample{"w0": w0, "mPCAC": pcac}),
		record("E1", 6.6, map[string]bootstrap.Sample{"w0": w0, "mPCAC": pcac, "ps_decay_constant": w0}),
		record("E2", 6.6, map[string]bootstrap.Sample{"w0": w0}),
	}
	palette := style.Default()

	w0s := analysis.W0VsPCAC(records, palette)
	require.Len(t, w0s, 2)
	assert.Equal(t, "beta=6.6", w0s[0].Label)
	assert.Equal(t, "C0", w0s[0].Style.Color)
	assert.Equal(t, "beta=6.65", w0s[1].Label)
	require.Len(t, w0s[0].Points, 1)
	pt := w0s[0].Points[0]
	assert.Equal(t, "E1", pt.Ensemble)
	assert.InDelta(t, 0.2, pt.X, 1e-15)
	assert.InDelta(t, 2.0, pt.Y, 1e-15)
	assert.InDelta(t, 0.1, pt.YErr, 1e-12)
	assert.Equal(t, -1.01, pt.MAS)

	decay := analysis.DecayVsPCAC(records, palette)
	require.Len(t, decay, 1)
	assert.Equal(t, "ps", decay[0].Label)
	assert.Len(t, decay[0].Points, 1)

	assert.Empty(t, analysis.MassVsPCAC(records, palette))
}
