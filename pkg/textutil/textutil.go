// Package textutil inspects the leading bytes of text streams.
package textutil

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
)

// BinarySniffLength is the maximum number of bytes scanned for null-byte
// detection. Matches the heuristic used by Git and most editors.
const BinarySniffLength = 8000

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// IsBinary returns true if data contains a null byte within the first
// BinarySniffLength bytes. Empty data is not binary.
func IsBinary(data []byte) bool {
	if len(data) > BinarySniffLength {
		data = data[:BinarySniffLength]
	}

	return bytes.IndexByte(data, 0) >= 0
}

// SniffBinary peeks at the start of r without consuming it and reports
// whether the stream looks binary. r must buffer at least BinarySniffLength
// bytes for the whole window to be inspected.
func SniffBinary(r *bufio.Reader) (bool, error) {
	head, err := r.Peek(BinarySniffLength)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return false, fmt.Errorf("sniff: %w", err)
	}

	return IsBinary(head), nil
}

// SkipBOM discards a leading UTF-8 byte order mark, if present.
func SkipBOM(r *bufio.Reader) error {
	head, err := r.Peek(len(utf8BOM))
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("peek bom: %w", err)
	}

	if bytes.Equal(head, utf8BOM) {
		_, err = r.Discard(len(utf8BOM))
		if err != nil {
			return fmt.Errorf("skip bom: %w", err)
		}
	}

	return nil
}
