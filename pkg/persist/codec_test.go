package persist

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testState is a struct for round-trip codec testing.
type testState struct {
	Name   string         `json:"name"   yaml:"name"`
	Count  int            `json:"count"  yaml:"count"`
	Values map[string]int `json:"values" yaml:"values"`
}

func TestCodecs_RoundTrip(t *testing.T) {
	t.Parallel()

	codecs := map[string]Codec{
		"json":     NewJSONCodec(),
		"yaml":     NewYAMLCodec(),
		"gob":      NewGobCodec(),
		"gob_lz4":  NewLZ4Codec(NewGobCodec()),
		"json_lz4": NewLZ4Codec(NewJSONCodec()),
		"compact":  NewCompactJSONCodec(),
	}

	original := testState{
		Name:   "round-trip",
		Count:  42,
		Values: map[string]int{"a": 1, "b": 2},
	}

	for name, codec := range codecs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer

			require.NoError(t, codec.Encode(&buf, original))

			var decoded testState

			require.NoError(t, codec.Decode(&buf, &decoded))
			assert.Equal(t, original, decoded)
		})
	}
}

func TestCodecs_Extension(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ".json", NewJSONCodec().Extension())
	assert.Equal(t, ".yaml", NewYAMLCodec().Extension())
	assert.Equal(t, ".gob", NewGobCodec().Extension())
	assert.Equal(t, ".gob.lz4", NewLZ4Codec(NewGobCodec()).Extension())
}

func TestJSONCodec_CompactNoIndent(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, NewCompactJSONCodec().Encode(&buf, testState{Name: "compact", Count: 1}))

	// Compact JSON has at most one trailing newline (from json.Encoder).
	assert.LessOrEqual(t, strings.Count(buf.String(), "\n"), 1)
}

func TestJSONCodec_PrettyPrint(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, NewJSONCodec().Encode(&buf, testState{Name: "pretty", Count: 1}))
	assert.Contains(t, buf.String(), jsonIndent+`"name"`)
}

func TestCodecs_DecodeError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		codec Codec
		want  string
	}{
		{name: "json", codec: NewJSONCodec(), want: "json decode"},
		{name: "yaml", codec: NewYAMLCodec(), want: "yaml decode"},
		{name: "gob", codec: NewGobCodec(), want: "gob decode"},
		{name: "lz4", codec: NewLZ4Codec(NewGobCodec()), want: "gob decode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var decoded testState

			err := tt.codec.Decode(strings.NewReader("{{{ not valid: [data"), &decoded)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCodecs_EncodeError(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	// Channels and functions cannot be encoded.
	err := NewJSONCodec().Encode(&buf, make(chan int))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "json encode")

	err = NewGobCodec().Encode(&buf, func() {})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gob encode")

	err = NewLZ4Codec(NewGobCodec()).Encode(&buf, func() {})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gob encode")
}

func TestLZ4Codec_Compresses(t *testing.T) {
	t.Parallel()

	state := testState{Name: strings.Repeat("com/example/Foo.bar()V ", 500)}

	var plain, compressed bytes.Buffer

	require.NoError(t, NewGobCodec().Encode(&plain, state))
	require.NoError(t, NewLZ4Codec(NewGobCodec()).Encode(&compressed, state))

	assert.Less(t, compressed.Len(), plain.Len())
}
