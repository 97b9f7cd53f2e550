// Package persist provides codec-based serialization and atomic file writes
// for reports and aggregation snapshots.
package persist

import (
	"encoding/gob"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
	"gopkg.in/yaml.v3"
)

// Codec turns a value into bytes on a stream and back.
type Codec interface {
	Encode(w io.Writer, state any) error
	Decode(r io.Reader, state any) error
	// Extension is the file suffix including the dot, e.g. ".gob.lz4".
	Extension() string
}

const (
	jsonIndent = "  "
	yamlIndent = 2
)

// streamCodec adapts a pair of encode/decode functions to Codec and prefixes
// their errors with the format name.
type streamCodec struct {
	name   string
	ext    string
	encode func(w io.Writer, state any) error
	decode func(r io.Reader, state any) error
}

func (c streamCodec) Encode(w io.Writer, state any) error {
	if err := c.encode(w, state); err != nil {
		return fmt.Errorf("%s encode: %w", c.name, err)
	}

	return nil
}

func (c streamCodec) Decode(r io.Reader, state any) error {
	if err := c.decode(r, state); err != nil {
		return fmt.Errorf("%s decode: %w", c.name, err)
	}

	return nil
}

func (c streamCodec) Extension() string { return c.ext }

func decodeJSON(r io.Reader, state any) error { return json.NewDecoder(r).Decode(state) }

// NewJSONCodec returns a JSON codec indenting with two spaces.
func NewJSONCodec() Codec {
	return streamCodec{
		name: "json",
		ext:  ".json",
		encode: func(w io.Writer, state any) error {
			enc := json.NewEncoder(w)
			enc.SetIndent("", jsonIndent)

			return enc.Encode(state)
		},
		decode: decodeJSON,
	}
}

// NewCompactJSONCodec returns a JSON codec writing one line per value.
func NewCompactJSONCodec() Codec {
	return streamCodec{
		name:   "json",
		ext:    ".json",
		encode: func(w io.Writer, state any) error { return json.NewEncoder(w).Encode(state) },
		decode: decodeJSON,
	}
}

// NewYAMLCodec returns a YAML codec indenting with two spaces.
func NewYAMLCodec() Codec {
	return streamCodec{
		name: "yaml",
		ext:  ".yaml",
		encode: func(w io.Writer, state any) error {
			enc := yaml.NewEncoder(w)
			enc.SetIndent(yamlIndent)

			if err := enc.Encode(state); err != nil {
				return err
			}

			return enc.Close()
		},
		decode: func(r io.Reader, state any) error { return yaml.NewDecoder(r).Decode(state) },
	}
}

// NewGobCodec returns a gob codec. Gob streams are only readable by Go.
func NewGobCodec() Codec {
	return streamCodec{
		name:   "gob",
		ext:    ".gob",
		encode: func(w io.Writer, state any) error { return gob.NewEncoder(w).Encode(state) },
		decode: func(r io.Reader, state any) error { return gob.NewDecoder(r).Decode(state) },
	}
}

// lz4Codec wraps another codec in an LZ4 frame.
type lz4Codec struct {
	inner Codec
}

// NewLZ4Codec compresses the output of inner with LZ4 and appends ".lz4" to
// its extension. Errors from inner are returned unwrapped.
func NewLZ4Codec(inner Codec) Codec {
	return lz4Codec{inner: inner}
}

func (c lz4Codec) Encode(w io.Writer, state any) error {
	zw := lz4.NewWriter(w)
	if err := c.inner.Encode(zw, state); err != nil {
		return err
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("lz4 close: %w", err)
	}

	return nil
}

func (c lz4Codec) Decode(r io.Reader, state any) error {
	return c.inner.Decode(lz4.NewReader(r), state)
}

func (c lz4Codec) Extension() string { return c.inner.Extension() + ".lz4" }
