// Package coverage parses per-test coverage record files and aggregates them
// into a per-method execution table.
//
// A record file holds one test execution. Its first line is
// "<testIdentifier> <passed>" and every following line is an opaque method
// signature reported as covered by that test.
package coverage

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Sentinel errors for record parsing.
var (
	// ErrEmptyRecord indicates a record file without any line.
	ErrEmptyRecord = errors.New("empty record")
	// ErrMalformedHeader indicates a first line that does not split into exactly two fields.
	ErrMalformedHeader = errors.New("malformed record header")
)

const (
	headerSeparator = " "
	passedLiteral   = "true"
)

// Record is one parsed per-test coverage record.
type Record struct {
	TestID  string
	Passed  bool
	Methods []string
}

// ParseRecord reads a record from r.
// Blank signature lines are ignored and CRLF line endings are accepted.
// Lines have no length limit; coverage.max_record_size bounds whole files.
func ParseRecord(r io.Reader) (Record, error) {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}

	header, more, err := readLine(br)
	if err != nil {
		return Record{}, fmt.Errorf("read header: %w", err)
	}

	if header == "" && !more {
		return Record{}, ErrEmptyRecord
	}

	testID, passed, err := parseHeader(header)
	if err != nil {
		return Record{}, err
	}

	rec := Record{TestID: testID, Passed: passed}

	for more {
		var line string

		line, more, err = readLine(br)
		if err != nil {
			return Record{}, fmt.Errorf("read methods: %w", err)
		}

		if line != "" {
			rec.Methods = append(rec.Methods, line)
		}
	}

	return rec, nil
}

// readLine returns the next line without its "\n" or "\r\n" terminator.
// more is false once the input is exhausted.
func readLine(br *bufio.Reader) (line string, more bool, err error) {
	line, err = br.ReadString('\n')

	switch {
	case errors.Is(err, io.EOF):
		more, err = false, nil
	case err != nil:
		return "", false, err
	default:
		more = true
	}

	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")

	return line, more, nil
}

// parseHeader splits the header on single spaces. Trailing empty fields are
// dropped before counting, so "A true " is accepted while "A  true" is not.
func parseHeader(line string) (testID string, passed bool, err error) {
	fields := strings.Split(line, headerSeparator)

	for len(fields) > 0 && fields[len(fields)-1] == "" {
		fields = fields[:len(fields)-1]
	}

	if len(fields) != 2 {
		return "", false, fmt.Errorf("%w: %q", ErrMalformedHeader, line)
	}

	return fields[0], strings.EqualFold(fields[1], passedLiteral), nil
}
