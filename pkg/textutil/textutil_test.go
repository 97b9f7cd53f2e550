package textutil

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsBinary(t *testing.T) {
	t.Parallel()

	assert.False(t, IsBinary(nil))
	assert.False(t, IsBinary([]byte("A true\nM1\n")))
	assert.True(t, IsBinary([]byte{'A', 0, 'B'}))
	assert.True(t, IsBinary([]byte{0}))
}

func TestIsBinary_SniffBoundary(t *testing.T) {
	t.Parallel()

	data := bytes.Repeat([]byte("a"), BinarySniffLength+10)

	data[BinarySniffLength-1] = 0
	assert.True(t, IsBinary(data))

	data[BinarySniffLength-1] = 'a'
	data[BinarySniffLength+1] = 0
	assert.False(t, IsBinary(data))
}

func TestSniffBinary_DoesNotConsume(t *testing.T) {
	t.Parallel()

	r := bufio.NewReaderSize(strings.NewReader("A true\nM1\n"), BinarySniffLength)

	binary, err := SniffBinary(r)
	require.NoError(t, err)
	assert.False(t, binary)

	rest, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "A true\nM1\n", string(rest))
}

func TestSniffBinary_DetectsNull(t *testing.T) {
	t.Parallel()

	r := bufio.NewReaderSize(bytes.NewReader([]byte{0x7f, 'E', 'L', 'F', 0, 1}), BinarySniffLength)

	binary, err := SniffBinary(r)
	require.NoError(t, err)
	assert.True(t, binary)
}

func TestSniffBinary_SmallBuffer(t *testing.T) {
	t.Parallel()

	r := bufio.NewReaderSize(strings.NewReader(strings.Repeat("x", 100)), 16)

	binary, err := SniffBinary(r)
	require.NoError(t, err)
	assert.False(t, binary)
}

func TestSkipBOM(t *testing.T) {
	t.Parallel()

	r := bufio.NewReader(strings.NewReader("\xEF\xBB\xBFA true\n"))
	require.NoError(t, SkipBOM(r))

	rest, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "A true\n", string(rest))

	plain := bufio.NewReader(strings.NewReader("A"))
	require.NoError(t, SkipBOM(plain))

	rest, err = io.ReadAll(plain)
	require.NoError(t, err)
	assert.Equal(t, "A", string(rest))

	require.NoError(t, SkipBOM(bufio.NewReader(strings.NewReader(""))))
}
