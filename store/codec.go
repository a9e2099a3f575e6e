// SPDX-License-Identifier: MIT

package store

import (
	"bytes"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/hyp3rd/ewrap"
	"github.com/shamaton/msgpack/v2"
)

// Codec names registered by default.
const (
	CodecJSON    = "json"
	CodecMsgpack = "msgpack"
)

// Codec converts between bytes and a generic document tree made of
// map[string]any, []any, string, bool, int64, float64 and nil.
type Codec interface {
	// Marshal encodes a document tree.
	Marshal(v any) ([]byte, error)
	// Unmarshal decodes into a normalised document tree.
	Unmarshal(data []byte) (any, error)
	// Float returns the tree representation of a float. meta is set for
	// metadata values, which must keep their float type on a round trip.
	Float(v float64, meta bool) any
}

// Registry manages codec constructors.
type Registry struct {
	codecs map[string]func() Codec
}

// NewRegistry returns a registry with the JSON and MessagePack codecs.
func NewRegistry() *Registry {
	r := &Registry{codecs: make(map[string]func() Codec)}
	r.Register(CodecJSON, func() Codec { return &JSONCodec{} })
	r.Register(CodecMsgpack, func() Codec { return &MsgpackCodec{} })

	return r
}

// Register adds or replaces a codec constructor.
func (r *Registry) Register(name string, create func() Codec) { r.codecs[name] = create }

// New returns the codec registered under name.
func (r *Registry) New(name string) (Codec, error) {
	create, ok := r.codecs[name]
	if !ok {
		return nil, ewrap.Wrap(ErrCodecNotFound, name)
	}

	return create(), nil
}

var defaultRegistry = NewRegistry()

// ForPath picks the codec from the file extension: .msgpack and .mpk
// select MessagePack, anything else JSON.
func ForPath(path string) Codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".msgpack", ".mpk":
		c, _ := defaultRegistry.New(CodecMsgpack)
		return c
	default:
		c, _ := defaultRegistry.New(CodecJSON)
		return c
	}
}

// ---------- JSON ----------

// Spellings of non-finite floats in JSON documents.
const (
	tokenNaN    = "NaN"
	tokenPosInf = "Infinity"
	tokenNegInf = "-Infinity"

	// metaMark prefixes a non-finite token outside numeric arrays, where a
	// plain "NaN" may be an ordinary string.
	metaMark = "\x00"
)

// JSONCodec reads and writes JSON with goccy/go-json. Numbers are kept as
// json.Number while decoding so integer and float metadata stay distinct
// and floats parse back to the exact bits written.
type JSONCodec struct{}

// Marshal encodes v with two-space indentation.
func (*JSONCodec) Marshal(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, ewrap.Wrap(err, "failed to marshal json")
	}

	return append(data, '\n'), nil
}

// Unmarshal accepts standard JSON plus Python's bare NaN/Infinity tokens.
func (*JSONCodec) Unmarshal(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(quotePythonTokens(data)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, ewrap.Wrap(err, "failed to unmarshal json")
	}

	return normalizeTree(v)
}

// Float uses the shortest exact decimal; integral metadata floats get a
// trailing ".0" so they are not read back as integers, and so does -0 so
// its sign survives. Non-finite metadata floats carry metaMark.
func (*JSONCodec) Float(v float64, meta bool) any {
	if tok, ok := nonFiniteToken(v); ok {
		if meta {
			return metaMark + tok
		}
		return tok
	}
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if (meta || math.Signbit(v)) && !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}

	return json.Number(s)
}

// ---------- MessagePack ----------

// MsgpackCodec reads and writes MessagePack with shamaton/msgpack. Floats
// are stored natively, non-finite values included.
type MsgpackCodec struct{}

// Marshal encodes v.
func (*MsgpackCodec) Marshal(v any) ([]byte, error) {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return nil, ewrap.Wrap(err, "failed to marshal msgpack")
	}

	return data, nil
}

// Unmarshal decodes into a normalised tree.
func (*MsgpackCodec) Unmarshal(data []byte) (any, error) {
	var v any
	if err := msgpack.Unmarshal(data, &v); err != nil {
		return nil, ewrap.Wrap(err, "failed to unmarshal msgpack")
	}

	return normalizeTree(v)
}

// Float returns v unchanged.
func (*MsgpackCodec) Float(v float64, _ bool) any { return v }

// ---------- normalisation ----------

// normalizeTree converts decoder output into the common tree: string keyed
// maps, int64 for integers, float64 for floats and the non-finite string
// tokens.
func normalizeTree(v any) (any, error) {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			n, err := normalizeTree(e)
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			key, ok := k.(string)
			if !ok {
				return nil, ewrap.Wrapf(ErrMalformedRecord, "non-string map key %v", k)
			}
			n, err := normalizeTree(e)
			if err != nil {
				return nil, err
			}
			out[key] = n
		}
		return out, nil
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			n, err := normalizeTree(e)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case json.Number:
		s := string(x)
		if !strings.ContainsAny(s, ".eE") {
			if i, err := strconv.ParseInt(s, 10, 64); err == nil {
				return i, nil
			}
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, ewrap.Wrapf(ErrMalformedRecord, "number %q", s)
		}
		return f, nil
	case string:
		if tok, ok := strings.CutPrefix(x, metaMark); ok {
			if f, ok := nonFinite(tok); ok {
				return f, nil
			}
		}
		return x, nil
	case nil:
		return nil, nil
	default:
		if n, ok := normalizeScalar(x); ok {
			return n, nil
		}
		return nil, ewrap.Wrapf(ErrMalformedRecord, "unsupported value of type %T", v)
	}
}

// nonFiniteToken spells NaN and ±Inf; ok is false for finite v.
func nonFiniteToken(v float64) (string, bool) {
	switch {
	case math.IsNaN(v):
		return tokenNaN, true
	case math.IsInf(v, 1):
		return tokenPosInf, true
	case math.IsInf(v, -1):
		return tokenNegInf, true
	}

	return "", false
}

// nonFinite recognises the string spellings of NaN and ±Inf.
func nonFinite(s string) (float64, bool) {
	switch s {
	case tokenNaN:
		return math.NaN(), true
	case tokenPosInf:
		return math.Inf(1), true
	case tokenNegInf:
		return math.Inf(-1), true
	}

	return 0, false
}

// quotePythonTokens rewrites bare NaN, Infinity and -Infinity outside of
// string literals into quoted, metaMark-prefixed spellings so a strict JSON
// decoder accepts them and they never collide with ordinary strings. Input without such tokens is returned as is.
func quotePythonTokens(data []byte) []byte {
	if !bytes.Contains(data, []byte(tokenNaN)) && !bytes.Contains(data, []byte(tokenPosInf)) {
		return data
	}
	out := make([]byte, 0, len(data)+16)
	inString, escaped := false, false
	for i := 0; i < len(data); i++ {
		c := data[i]
		if inString {
			out = append(out, c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		if c == '"' {
			inString = true
			out = append(out, c)
			continue
		}
		matched := false
		for _, tok := range []string{tokenNegInf, tokenPosInf, tokenNaN} {
			if bytes.HasPrefix(data[i:], []byte(tok)) {
				out = append(out, `"\u0000`...)
				out = append(out, tok...)
				out = append(out, '"')
				i += len(tok) - 1
				matched = true
				break
			}
		}
		if !matched {
			out = append(out, c)
		}
	}

	return out
}
