// SPDX-License-Identifier: MIT

package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/hyp3rd/ewrap"
	"github.com/spf13/cobra"

	"github.com/katalvlaran/latboot/analysis"
	"github.com/katalvlaran/latboot/config"
	"github.com/katalvlaran/latboot/store"
)

// app holds what every subcommand shares once the root has run.
type app struct {
	settings config.Settings
	logger   *slog.Logger
	stdout   io.Writer
}

// output flags common to the analysis stages.
type outputs struct {
	mean    string
	samples string
}

func (o *outputs) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.mean, "output-file-mean", store.Stdout, "where to write point estimates (CSV, - for stdout)")
	cmd.Flags().StringVar(&o.samples, "output-file-samples", "", "where to write bootstrap samples (.json or .msgpack)")
}

func newRootCmd() *cobra.Command {
	a := &app{stdout: os.Stdout}
	var (
		logLevel string
		workers  int
		policy   string
	)
	root := &cobra.Command{
		Use:           "latboot",
		Short:         "Bootstrap analysis of lattice ensemble measurements",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			s, err := config.Load()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("log-level") {
				s.LogLevel = logLevel
			}
			if flags.Changed("workers") {
				s.Workers = workers
			}
			if flags.Changed("replica-policy") {
				s.ReplicaPolicy = policy
			}
			if err = s.Validate(); err != nil {
				return err
			}
			if a.logger, err = s.Logger(cmd.ErrOrStderr()); err != nil {
				return err
			}
			a.settings = s
			a.stdout = cmd.OutOrStdout()

			return nil
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
	pf.IntVar(&workers, "workers", 0, "parallel replica fits (0 = GOMAXPROCS)")
	pf.StringVar(&policy, "replica-policy", "fail", "on a failed replica fit: fail or nan")

	root.AddCommand(
		newDecayConstantCmd(a),
		newExtrapolateCmd(a),
		newJoinCmd(a),
		newSeriesCmd(a),
		newBandCmd(a),
	)

	return root
}

// runner builds an analysis.Runner from the settings.
func (a *app) runner() (*analysis.Runner, error) {
	opts, err := a.settings.FitOptions(a.logger)
	if err != nil {
		return nil, err
	}

	return analysis.NewRunner(a.logger, opts...), nil
}

// write sends output to path atomically, or to the command's stdout for "-".
func (a *app) write(path string, fn func(io.Writer) error) error {
	if path == store.Stdout {
		return fn(a.stdout)
	}

	return store.WriteFile(path, fn)
}

// emit writes the point estimates of records to o.mean and, when set, their
// samples to o.samples.
func (a *app) emit(o outputs, records ...*store.Record) error {
	if err := a.write(o.mean, func(w io.Writer) error { return store.WritePointEstimates(w, records...) }); err != nil {
		return ewrap.Wrap(err, "write point estimates")
	}
	if o.samples == "" {
		return nil
	}
	c := store.ForPath(o.samples)
	if err := a.write(o.samples, func(w io.Writer) error { return store.WriteSamples(w, c, records...) }); err != nil {
		return ewrap.Wrap(err, "write samples")
	}
	a.logger.Info("samples written", "path", o.samples, "records", len(records))

	return nil
}
