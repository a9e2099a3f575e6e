// SPDX-License-Identifier: MIT

// Command latboot runs the bootstrap analysis stages over sample files.
//
//	latboot decay-constant E1.json --channel ps --output-file-samples E1_fps.json
//	latboot extrapolate decay data/*.json --channel v
//	latboot extrapolate mass data/*.json --channel av --output-file-samples fit_av.json
//	latboot series w0-pcac data/*.json --palette palette.yaml
//
// Settings come from LATBOOT_* environment variables; flags override them.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "latboot:", err)
		os.Exit(1)
	}
}
