// SPDX-License-Identifier: MIT

// Package config loads run settings from LATBOOT_* environment variables
// and turns them into loggers and fit options.
package config

import (
	"io"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/hyp3rd/ewrap"

	"github.com/katalvlaran/latboot/fit"
)

// ErrInvalidSetting is returned by Validate and the derived constructors.
var ErrInvalidSetting = ewrap.New("config: invalid setting")

// Settings are the tunables shared by every command. Command-line flags
// override the environment.
type Settings struct {
	Workers       int    `env:"LATBOOT_WORKERS"        envDefault:"0"`
	ReplicaPolicy string `env:"LATBOOT_REPLICA_POLICY" envDefault:"fail"`
	MaxIterations int    `env:"LATBOOT_MAX_ITERATIONS" envDefault:"500"`
	MinPoints     int    `env:"LATBOOT_MIN_POINTS"     envDefault:"0"`
	LogLevel      string `env:"LATBOOT_LOG_LEVEL"      envDefault:"info"`
	LogFormat     string `env:"LATBOOT_LOG_FORMAT"     envDefault:"text"`
	Palette       string `env:"LATBOOT_PALETTE"`
}

// Load parses Settings from the environment.
func Load() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, ewrap.Wrap(err, "parse env")
	}

	return s, nil
}

// Validate checks ranges and enumerations.
func (s Settings) Validate() error {
	switch {
	case s.Workers < 0:
		return ewrap.Wrapf(ErrInvalidSetting, "workers %d", s.Workers)
	case s.MaxIterations <= 0:
		return ewrap.Wrapf(ErrInvalidSetting, "max iterations %d", s.MaxIterations)
	case s.MinPoints < 0:
		return ewrap.Wrapf(ErrInvalidSetting, "min points %d", s.MinPoints)
	}
	if _, err := fit.ParseReplicaPolicy(s.ReplicaPolicy); err != nil {
		return ewrap.Wrap(ErrInvalidSetting, err.Error())
	}
	if _, err := ParseLevel(s.LogLevel); err != nil {
		return err
	}
	if f := strings.ToLower(s.LogFormat); f != "text" && f != "json" {
		return ewrap.Wrapf(ErrInvalidSetting, "log format %q", s.LogFormat)
	}

	return nil
}

// ParseLevel maps debug, info, warn and error onto slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, ewrap.Wrapf(ErrInvalidSetting, "log level %q", s)
	}

	return l, nil
}

// Logger builds a text or JSON slog logger writing to w.
func (s Settings) Logger(w io.Writer) (*slog.Logger, error) {
	level, err := ParseLevel(s.LogLevel)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(s.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}

	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// FitOptions converts the fit-related settings.
func (s Settings) FitOptions(logger *slog.Logger) ([]fit.Option, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	policy, _ := fit.ParseReplicaPolicy(s.ReplicaPolicy)

	return []fit.Option{
		fit.WithWorkers(s.Workers),
		fit.WithMaxIterations(s.MaxIterations),
		fit.WithMinPoints(s.MinPoints),
		fit.WithReplicaPolicy(policy),
		fit.WithLogger(logger),
	}, nil
}
