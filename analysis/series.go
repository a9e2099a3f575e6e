// SPDX-License-Identifier: MIT

package analysis

import (
	"math"
	"slices"

	"github.com/katalvlaran/latboot/bootstrap"
	"github.com/katalvlaran/latboot/renorm"
	"github.com/katalvlaran/latboot/store"
	"github.com/katalvlaran/latboot/style"
)

// SeriesPoint is one ensemble reduced to point estimates.
type SeriesPoint struct {
	Ensemble string  `json:"ensemble"`
	MAS      float64 `json:"mAS,omitempty"`
	X        float64 `json:"x"`
	XErr     float64 `json:"x_err"`
	Y        float64 `json:"y"`
	YErr     float64 `json:"y_err"`
}

// Series is one styled group of points, ready to be drawn.
type Series struct {
	Label  string        `json:"label"`
	Style  style.Style   `json:"style"`
	Points []SeriesPoint `json:"points"`
}

// MesonChannels are the channels drawn against the fermion mass.
func MesonChannels() []renorm.Channel {
	return []renorm.Channel{renorm.PS, renorm.V, renorm.T, renorm.AV, renorm.AT, renorm.S}
}

// W0VsPCAC groups records by beta (ascending) and pairs w0·m_PCAC with w0.
func W0VsPCAC(records []*store.Record, palette style.Palette) []Series {
	var betas []float64
	byBeta := map[float64][]*store.Record{}
	for _, rec := range records {
		b, ok := rec.Float(store.KeyBeta)
		if !ok {
			continue
		}
		if _, seen := byBeta[b]; !seen {
			betas = append(betas, b)
		}
		byBeta[b] = append(byBeta[b], rec)
	}
	slices.Sort(betas)

	out := make([]Series, 0, len(betas))
	for _, b := range betas {
		st, _ := palette.Beta(b)
		s := Series{Label: "beta=" + style.BetaKey(b), Style: st}
		for _, rec := range byBeta[b] {
			w0, ok1 := rec.Sample(SampleW0)
			pcac, ok2 := rec.Sample(SamplePCAC)
			if !ok1 || !ok2 {
				continue
			}
			x, err := w0.Mul(pcac)
			if err != nil {
				continue
			}
			if pt, ok := seriesPoint(rec, x, w0); ok {
				s.Points = append(s.Points, pt)
			}
		}
		if len(s.Points) > 0 {
			out = append(out, s)
		}
	}

	return out
}

// DecayVsPCAC pairs m_PCAC with <ch>_decay_constant per channel; no
// channels means ps, v and av.
func DecayVsPCAC(records []*store.Record, palette style.Palette, channels ...renorm.Channel) []Series {
	if len(channels) == 0 {
		channels = renorm.DecayChannels()
	}

	return versusPCAC(records, palette, channels, DecayConstantName)
}

// MassVsPCAC pairs m_PCAC with <ch>_mass per channel; no channels means
// MesonChannels.
func MassVsPCAC(records []*store.Record, palette style.Palette, channels ...renorm.Channel) []Series {
	if len(channels) == 0 {
		channels = MesonChannels()
	}

	return versusPCAC(records, palette, channels, MassName)
}

func versusPCAC(records []*store.Record, palette style.Palette, channels []renorm.Channel, field func(renorm.Channel) string) []Series {
	out := make([]Series, 0, len(channels))
	for _, ch := range channels {
		st, _ := palette.Channel(ch.String())
		s := Series{Label: ch.String(), Style: st}
		for _, rec := range records {
			pcac, ok1 := rec.Sample(SamplePCAC)
			y, ok2 := rec.Sample(field(ch))
			if !ok1 || !ok2 {
				continue
			}
			if pt, ok := seriesPoint(rec, pcac, y); ok {
				s.Points = append(s.Points, pt)
			}
		}
		if len(s.Points) > 0 {
			out = append(out, s)
		}
	}

	return out
}

// seriesPoint reduces x and y; non-scalar or non-finite estimates are
// dropped.
func seriesPoint(rec *store.Record, x, y bootstrap.Sample) (SeriesPoint, bool) {
	ex, err := x.Estimate()
	if err != nil || !finite(ex) {
		return SeriesPoint{}, false
	}
	ey, err := y.Estimate()
	if err != nil || !finite(ey) {
		return SeriesPoint{}, false
	}
	pt := SeriesPoint{Ensemble: rec.Label(), X: ex.Value, XErr: ex.Uncertainty, Y: ey.Value, YErr: ey.Uncertainty}
	if m, ok := rec.Float(store.KeyMass); ok && !math.IsNaN(m) && !math.IsInf(m, 0) {
		pt.MAS = m
	}

	return pt, true
}

func finite(e bootstrap.Estimate) bool {
	for _, v := range []float64{e.Value, e.Uncertainty} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}

	return true
}
