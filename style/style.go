// SPDX-License-Identifier: MIT

// Package style maps physical labels (beta values, channels) onto plot
// styling. A Palette is plain data handed to the series builders; there is
// no package-level mutable state.
package style

import (
	"maps"
	"os"
	"strconv"

	"github.com/hyp3rd/ewrap"
	"gopkg.in/yaml.v3"
)

// Style is how one group is drawn.
type Style struct {
	Color  string `yaml:"color"  json:"color"`
	Marker string `yaml:"marker" json:"marker"`
	Tag    string `yaml:"tag,omitempty" json:"tag,omitempty"` // axis-label spelling, defaults to the label
}

// Palette holds styles keyed by formatted beta and by channel label.
type Palette struct {
	Betas    map[string]Style `yaml:"betas"`
	Channels map[string]Style `yaml:"channels"`
}

// Default returns the palette of the published figures.
func Default() Palette {
	return Palette{
		Betas: map[string]Style{
			"6.6":  {Color: "C0", Marker: "o"},
			"6.65": {Color: "C1", Marker: "^"},
			"6.7":  {Color: "C2", Marker: "v"},
			"6.75": {Color: "C3", Marker: "s"},
			"6.8":  {Color: "C4", Marker: "x"},
			"6.9":  {Color: "C5", Marker: "+"},
		},
		Channels: map[string]Style{
			"ps":    {Color: "C0", Marker: "o"},
			"v":     {Color: "C1", Marker: "^"},
			"t":     {Color: "C2", Marker: "v"},
			"s":     {Color: "C3", Marker: "s"},
			"av":    {Color: "C4", Marker: "x"},
			"at":    {Color: "C5", Marker: "+"},
			"rhoE1": {Color: "C6", Marker: "*", Tag: `v^\prime`},
		},
	}
}

// BetaKey formats beta the way palette keys are written.
func BetaKey(beta float64) string { return strconv.FormatFloat(beta, 'g', -1, 64) }

// Beta returns the style of beta. An unknown beta is drawn with its own
// value as the colour label and a circle marker; ok reports a palette hit.
func (p Palette) Beta(beta float64) (s Style, ok bool) {
	key := BetaKey(beta)
	if s, ok = p.Betas[key]; ok {
		return s, true
	}

	return Style{Color: key, Marker: "o", Tag: key}, false
}

// Channel returns the style of a channel, falling back like Beta.
func (p Palette) Channel(ch string) (s Style, ok bool) {
	if s, ok = p.Channels[ch]; ok {
		if s.Tag == "" {
			s.Tag = ch
		}
		return s, true
	}

	return Style{Color: ch, Marker: "o", Tag: ch}, false
}

// Parse decodes a YAML palette and overlays it on Default: entries in the
// document replace the defaults of the same key, the rest are kept.
func Parse(data []byte) (Palette, error) {
	var doc Palette
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Palette{}, ewrap.Wrap(err, "failed to unmarshal palette")
	}
	p := Default()
	for k, s := range doc.Betas {
		if f, err := strconv.ParseFloat(k, 64); err == nil {
			k = BetaKey(f) // "7.0" and "7" name the same beta
		}
		p.Betas[k] = s
	}
	maps.Copy(p.Channels, doc.Channels)

	return p, nil
}

// Load reads a YAML palette file; an empty path returns Default.
func Load(path string) (Palette, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Palette{}, ewrap.Wrapf(err, "read palette %s", path)
	}

	return Parse(data)
}
