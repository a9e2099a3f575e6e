// SPDX-License-Identifier: MIT

package store

import (
	"io"
	"os"

	"github.com/hyp3rd/ewrap"
)

// Read loads every record of every file, in argument order and then
// in-file order. The codec is chosen per file by ForPath.
func Read(paths ...string) ([]*Record, error) {
	var out []*Record
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, ewrap.Wrapf(err, "read %s", p)
		}
		recs, err := Decode(ForPath(p), data)
		if err != nil {
			return nil, ewrap.Wrapf(err, "decode %s", p)
		}
		out = append(out, recs...)
	}

	return out, nil
}

// ReadFrom decodes all records from r with the given codec.
func ReadFrom(r io.Reader, c Codec) ([]*Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, ewrap.Wrap(err, "read records")
	}

	return Decode(c, data)
}

// Decode parses records from an encoded document.
func Decode(c Codec, data []byte) ([]*Record, error) {
	tree, err := c.Unmarshal(data)
	if err != nil {
		return nil, err
	}

	return recordsFromTree(tree)
}

// ReadGrouped loads paths and merges the records by the value of key.
func ReadGrouped(key string, paths ...string) (*Grouped, error) {
	recs, err := Read(paths...)
	if err != nil {
		return nil, err
	}

	return Group(key, recs)
}
