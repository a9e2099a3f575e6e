// SPDX-License-Identifier: MIT

package store

import (
	"encoding/csv"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/hyp3rd/ewrap"

	"github.com/katalvlaran/latboot/bootstrap"
)

// Stdout is the path spelling that selects standard output.
const Stdout = "-"

// WriteSamples encodes records losslessly: one object for a single record,
// an array otherwise.
func WriteSamples(w io.Writer, c Codec, records ...*Record) error {
	data, err := c.Marshal(treeFromRecords(c, records))
	if err != nil {
		return err
	}
	if _, err = w.Write(data); err != nil {
		return ewrap.Wrap(err, "write samples")
	}

	return nil
}

// WritePointEstimates writes one CSV row per record: metadata columns, then
// a <name>_value and <name>_uncertainty pair per Sample (array Samples get
// one pair per element, <name>_<index>). Fields a record lacks are empty.
func WritePointEstimates(w io.Writer, records ...*Record) error {
	metaSet := map[string]struct{}{}
	cols := map[string]int{} // sample name → element count
	for _, r := range records {
		for k := range r.meta {
			metaSet[k] = struct{}{}
		}
		for name, s := range r.samples {
			cols[name] = max(cols[name], s.Size())
		}
	}
	metaKeys := orderKeys(slices.Collect(maps.Keys(metaSet)))
	names := slices.Sorted(maps.Keys(cols))

	header := append([]string(nil), metaKeys...)
	for _, n := range names {
		for _, col := range columnNames(n, cols[n]) {
			header = append(header, col+suffixValue, col+"_uncertainty")
		}
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return ewrap.Wrap(err, "write csv header")
	}
	for _, r := range records {
		row := make([]string, 0, len(header))
		for _, k := range metaKeys {
			if v, ok := r.meta[k]; ok {
				row = append(row, formatScalar(v))
			} else {
				row = append(row, "")
			}
		}
		for _, n := range names {
			row = append(row, estimateCells(r.samples[n], cols[n])...)
		}
		if err := cw.Write(row); err != nil {
			return ewrap.Wrap(err, "write csv row")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return ewrap.Wrap(err, "flush csv")
	}

	return nil
}

func columnNames(name string, size int) []string {
	if size == 1 {
		return []string{name}
	}
	out := make([]string, size)
	for i := range out {
		out[i] = name + "_" + strconv.Itoa(i)
	}

	return out
}

// estimateCells formats size (value, uncertainty) pairs; an absent or
// smaller Sample pads with empty cells.
func estimateCells(s bootstrap.Sample, size int) []string {
	out := make([]string, 0, 2*size)
	var ests []bootstrap.Estimate
	if !s.IsZero() {
		ests = s.Estimates()
	}
	for i := range size {
		if i >= len(ests) {
			out = append(out, "", "")
			continue
		}
		out = append(out,
			strconv.FormatFloat(ests[i].Value, 'g', -1, 64),
			strconv.FormatFloat(ests[i].Uncertainty, 'g', -1, 64))
	}

	return out
}

// WriteFile runs write against path atomically: output goes to a temporary
// file in the same directory that is renamed over path only when write
// succeeds, so a failed write leaves nothing behind. Path "-" writes to
// standard output directly.
func WriteFile(path string, write func(io.Writer) error) error {
	if path == Stdout {
		return write(os.Stdout)
	}
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".tmp*")
	if err != nil {
		return ewrap.Wrapf(err, "create temp for %s", path)
	}
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}
	if err = write(tmp); err != nil {
		cleanup()
		return err
	}
	if err = tmp.Chmod(0o644); err != nil {
		cleanup()
		return ewrap.Wrapf(err, "chmod %s", tmp.Name())
	}
	if err = tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return ewrap.Wrapf(err, "close %s", tmp.Name())
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return ewrap.Wrapf(err, "rename to %s", path)
	}

	return nil
}

// WriteSamplesFile writes records to path with the codec chosen by ForPath.
func WriteSamplesFile(path string, records ...*Record) error {
	c := ForPath(path)

	return WriteFile(path, func(w io.Writer) error { return WriteSamples(w, c, records...) })
}

// WritePointEstimatesFile writes the CSV view of records to path ("-" for
// standard output).
func WritePointEstimatesFile(path string, records ...*Record) error {
	return WriteFile(path, func(w io.Writer) error { return WritePointEstimates(w, records...) })
}
