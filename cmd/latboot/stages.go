// SPDX-License-Identifier: MIT

package main

import (
	"github.com/spf13/cobra"

	"github.com/katalvlaran/latboot/renorm"
	"github.com/katalvlaran/latboot/store"
)

func newDecayConstantCmd(a *app) *cobra.Command {
	var (
		out     outputs
		channel string
	)
	cmd := &cobra.Command{
		Use:   "decay-constant FILE...",
		Short: "Renormalise the matrix element of one ensemble into a decay constant",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := renorm.ParseChannel(channel)
			if err != nil {
				return err
			}
			records, err := store.Read(args...)
			if err != nil {
				return err
			}
			r, err := a.runner()
			if err != nil {
				return err
			}
			rec, err := r.DecayConstant(records, ch)
			if err != nil {
				return err
			}

			return a.emit(out, rec)
		},
	}
	out.register(cmd)
	cmd.Flags().StringVar(&channel, "channel", "", "ps, v or av")
	_ = cmd.MarkFlagRequired("channel")

	return cmd
}

func newExtrapolateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extrapolate",
		Short: "Fit extrapolation models across ensembles",
	}
	cmd.AddCommand(
		newExtrapolateChannelCmd(a, "decay", "Chiral-continuum fit of a decay constant"),
		newExtrapolateChannelCmd(a, "mass", "Fit (w0·m_ch)² against (w0·m_ps)"),
		newExtrapolateDeFTCmd(a),
	)

	return cmd
}

func newExtrapolateChannelCmd(a *app, kind, short string) *cobra.Command {
	var (
		out     outputs
		channel string
	)
	cmd := &cobra.Command{
		Use:   kind + " FILE...",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := renorm.ParseChannel(channel)
			if err != nil {
				return err
			}
			records, err := store.Read(args...)
			if err != nil {
				return err
			}
			r, err := a.runner()
			if err != nil {
				return err
			}
			var rec *store.Record
			if kind == "decay" {
				_, rec, err = r.ExtrapolateDecay(cmd.Context(), records, ch)
			} else {
				_, rec, err = r.ExtrapolateMass(cmd.Context(), records, ch)
			}
			if err != nil {
				return err
			}

			return a.emit(out, rec)
		},
	}
	out.register(cmd)
	cmd.Flags().StringVar(&channel, "channel", "", "meson channel")
	_ = cmd.MarkFlagRequired("channel")

	return cmd
}

func newExtrapolateDeFTCmd(a *app) *cobra.Command {
	var (
		out  outputs
		beta float64
	)
	cmd := &cobra.Command{
		Use:   "deft FILE...",
		Short: "Per-beta linear fit of log(m_ps²/m_PCAC) against log(f_ps²)",
		Long: "Fits one beta when --beta is given, otherwise every beta with enough\n" +
			"ensembles; betas with too few are skipped.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := store.Read(args...)
			if err != nil {
				return err
			}
			r, err := a.runner()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("beta") {
				results, err := r.ExtrapolateDeFTAll(cmd.Context(), records)
				if err != nil {
					return err
				}
				return a.emit(out, results...)
			}
			_, rec, err := r.ExtrapolateDeFT(cmd.Context(), records, beta)
			if err != nil {
				return err
			}

			return a.emit(out, rec)
		},
	}
	out.register(cmd)
	cmd.Flags().Float64Var(&beta, "beta", 0, "fit only this beta")

	return cmd
}
