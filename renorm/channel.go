// SPDX-License-Identifier: MIT

package renorm

import (
	"fmt"
	"slices"
)

// Channel is a meson interpolating-operator label.
type Channel string

// Known channels.
const (
	PS    Channel = "ps"    // pseudoscalar
	V     Channel = "v"     // vector
	T     Channel = "t"     // tensor
	S     Channel = "s"     // scalar
	AV    Channel = "av"    // axial vector
	AT    Channel = "at"    // axial tensor
	RhoE1 Channel = "rhoE1" // first excited vector
)

var (
	allChannels   = []Channel{PS, V, T, S, AV, AT, RhoE1}
	decayChannels = []Channel{PS, V, AV}
	// ps is the abscissa of the mass fits, never a fitted channel
	massChannels = []Channel{V, T, S, AV, AT, RhoE1}
)

// Channels returns every known label in canonical order.
func Channels() []Channel { return slices.Clone(allChannels) }

// DecayChannels returns the channels with a renormalisation constant.
func DecayChannels() []Channel { return slices.Clone(decayChannels) }

// MassChannels returns the channels accepted by mass extrapolations.
func MassChannels() []Channel { return slices.Clone(massChannels) }

// ParseChannel validates a label against the full enumeration.
func ParseChannel(s string) (Channel, error) {
	ch := Channel(s)
	if !slices.Contains(allChannels, ch) {
		return "", fmt.Errorf("ParseChannel(%q): %w", s, ErrUnknownChannel)
	}

	return ch, nil
}

// In reports whether ch belongs to set.
func (ch Channel) In(set []Channel) bool { return slices.Contains(set, ch) }

// String returns the label.
func (ch Channel) String() string { return string(ch) }
