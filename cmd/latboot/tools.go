// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/hyp3rd/ewrap"
	"github.com/spf13/cobra"

	"github.com/katalvlaran/latboot/analysis"
	"github.com/katalvlaran/latboot/fit"
	"github.com/katalvlaran/latboot/renorm"
	"github.com/katalvlaran/latboot/store"
	"github.com/katalvlaran/latboot/style"
)

func newJoinCmd(a *app) *cobra.Command {
	var (
		key         string
		left, right []string
		output      string
	)
	cmd := &cobra.Command{
		Use:   "join",
		Short: "Inner-join two sets of sample files on a metadata key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			l, err := store.Read(left...)
			if err != nil {
				return err
			}
			r, err := store.Read(right...)
			if err != nil {
				return err
			}
			joined, err := store.Join(key, l, r)
			if err != nil {
				return err
			}
			a.logger.Info("joined", "key", key, "left", len(l), "right", len(r), "matched", len(joined))
			c := store.ForPath(output)

			return a.write(output, func(w io.Writer) error { return store.WriteSamples(w, c, joined...) })
		},
	}
	f := cmd.Flags()
	f.StringVar(&key, "key", store.KeyEnsemble, "metadata field to join on")
	f.StringSliceVar(&left, "left", nil, "left-hand sample files")
	f.StringSliceVar(&right, "right", nil, "right-hand sample files")
	f.StringVar(&output, "output", store.Stdout, "where to write the joined samples")
	_ = cmd.MarkFlagRequired("left")
	_ = cmd.MarkFlagRequired("right")

	return cmd
}

// seriesKinds maps a series name onto its builder.
var seriesKinds = map[string]func([]*store.Record, style.Palette) []analysis.Series{
	"w0-pcac": analysis.W0VsPCAC,
	"decay-pcac": func(r []*store.Record, p style.Palette) []analysis.Series {
		return analysis.DecayVsPCAC(r, p)
	},
	"mass-pcac": func(r []*store.Record, p style.Palette) []analysis.Series {
		return analysis.MassVsPCAC(r, p)
	},
}

func newSeriesCmd(a *app) *cobra.Command {
	var palette, output string
	cmd := &cobra.Command{
		Use:       "series {w0-pcac|decay-pcac|mass-pcac} FILE...",
		Short:     "Reduce records to styled plot series (JSON)",
		Args:      cobra.MinimumNArgs(2),
		ValidArgs: []string{"w0-pcac", "decay-pcac", "mass-pcac"},
		RunE: func(cmd *cobra.Command, args []string) error {
			build, ok := seriesKinds[args[0]]
			if !ok {
				return fmt.Errorf("unknown series %q", args[0])
			}
			if !cmd.Flags().Changed("palette") {
				palette = a.settings.Palette
			}
			pal, err := style.Load(palette)
			if err != nil {
				return err
			}
			records, err := store.Read(args[1:]...)
			if err != nil {
				return err
			}
			series := build(records, pal)
			a.logger.Debug("series built", "kind", args[0], "groups", len(series))

			return a.write(output, func(w io.Writer) error {
				data, err := json.MarshalIndent(series, "", "  ")
				if err != nil {
					return ewrap.Wrap(err, "encode series")
				}
				_, err = w.Write(append(data, '\n'))

				return err
			})
		},
	}
	cmd.Flags().StringVar(&palette, "palette", "", "YAML palette overriding the default styles")
	cmd.Flags().StringVar(&output, "output", store.Stdout, "where to write the series")

	return cmd
}

func newBandCmd(a *app) *cobra.Command {
	var (
		model, channel, output string
		beta, from, to         float64
		points                 int
	)
	cmd := &cobra.Command{
		Use:   "band FITFILE",
		Short: "Evaluate a stored fit on a grid as central value ± bootstrap error",
		Long: "Mass fits are looked up by --channel, linear (DeFT) fits by --beta.\n" +
			"Output is CSV with x, value and uncertainty columns.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, ok := fit.ModelByName(model)
			if !ok {
				return ewrap.Wrapf(fit.ErrBadModel, "model %q", model)
			}
			var (
				key, suffix string
				value       any
			)
			switch model {
			case "mass":
				ch, err := renorm.ParseChannel(channel)
				if err != nil {
					return err
				}
				key, value = store.KeyChannel, ch.String()
			case "linear":
				key, value, suffix = store.KeyBeta, beta, analysis.DeFTSuffix(beta)
			default:
				return ewrap.Wrapf(fit.ErrBadModel, "no band for model %q", model)
			}
			grouped, err := store.ReadGrouped(key, args[0])
			if err != nil {
				return err
			}
			rec, ok := grouped.Get(value)
			if !ok {
				return ewrap.Wrapf(store.ErrMalformedRecord, "%s has no fit with %s = %v", args[0], key, value)
			}
			res, err := analysis.ResultFromRecord(rec, m, suffix)
			if err != nil {
				return err
			}
			band, err := analysis.Band(res, from, to, points)
			if err != nil {
				return err
			}

			return a.write(output, func(w io.Writer) error { return analysis.WriteBand(w, band) })
		},
	}
	f := cmd.Flags()
	f.StringVar(&model, "model", "mass", "mass or linear")
	f.StringVar(&channel, "channel", "", "channel of a mass fit")
	f.Float64Var(&beta, "beta", 0, "beta of a linear fit")
	f.Float64Var(&from, "from", 0, "grid start")
	f.Float64Var(&to, "to", 1, "grid end")
	f.IntVar(&points, "points", 50, "grid points")
	f.StringVar(&output, "output", store.Stdout, "where to write the band")

	return cmd
}
