package export

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/Sumatoshi-tech/sbfl/pkg/ranking"
	"github.com/Sumatoshi-tech/sbfl/pkg/suspicion"
)

// CSVHeader is the first line of every CSV export.
const CSVHeader = "Method Name,Tarantula Suspicion,SBI Suspicion,Jaccard Suspicion,Ochai Suspicion"

const csvScoreColumns = 4

// ErrMalformedCSV indicates a CSV export that cannot be read back.
var ErrMalformedCSV = errors.New("malformed suspicion csv")

// CSV writes the comma-separated suspicion table. Method names are written
// verbatim without quoting.
type CSV struct{}

// Name implements Exporter.
func (CSV) Name() string { return FormatCSV }

// Extension implements Exporter.
func (CSV) Extension() string { return ".csv" }

// Export implements Exporter.
func (c CSV) Export(path string, report *Report) error {
	return exportAtomic(path, c.Name(), func(w io.Writer) error {
		return WriteCSV(w, report.Entries)
	})
}

// WriteCSV writes the header and one row per entry, in the given order.
func WriteCSV(w io.Writer, entries []ranking.Entry) error {
	_, err := io.WriteString(w, CSVHeader+"\n")
	if err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	var line strings.Builder

	for _, entry := range entries {
		line.Reset()
		line.WriteString(entry.Method)

		for _, v := range entry.Scores.Keys() {
			line.WriteByte(',')
			line.WriteString(FormatScore(v))
		}

		line.WriteByte('\n')

		_, err = io.WriteString(w, line.String())
		if err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	return nil
}

// Range in which scores are written in plain decimal notation. Outside it
// they use scientific notation with an "E" exponent, e.g. "1.0E-4".
const (
	plainScoreMin = 1e-3
	plainScoreMax = 1e7
)

// FormatScore renders v the way Java's Double.toString does: the shortest
// digits that round-trip, always with a fractional part ("1.0", "0.5").
// NaN is written as "NaN" and infinities as "Infinity" / "-Infinity".
func FormatScore(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case v == 0:
		if math.Signbit(v) {
			return "-0.0"
		}

		return "0.0"
	}

	if abs := math.Abs(v); abs >= plainScoreMin && abs < plainScoreMax {
		return withFraction(strconv.FormatFloat(v, 'f', -1, 64))
	}

	mantissa, exp, _ := strings.Cut(strconv.FormatFloat(v, 'E', -1, 64), "E")

	// Go pads the exponent ("E-04", "E+07"); Java does not.
	n, err := strconv.Atoi(exp)
	if err != nil {
		return strconv.FormatFloat(v, 'E', -1, 64)
	}

	return withFraction(mantissa) + "E" + strconv.Itoa(n)
}

func withFraction(digits string) string {
	if strings.Contains(digits, ".") {
		return digits
	}

	return digits + ".0"
}

// ParseScore is the inverse of FormatScore.
func ParseScore(s string) (float64, error) {
	switch s {
	case "NaN":
		return math.NaN(), nil
	case "Infinity":
		return math.Inf(1), nil
	case "-Infinity":
		return math.Inf(-1), nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse score %q: %w", s, err)
	}

	return v, nil
}

// Row is one line of a CSV export read back from disk.
type Row struct {
	Method string
	Scores suspicion.Scores
}

// ReadCSV reads a CSV export. Method names may contain commas: the last four
// fields are scores and everything before them is the name.
func ReadCSV(path string) ([]Row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()

	return ParseCSV(file)
}

// ParseCSV parses CSV export content from r.
func ParseCSV(r io.Reader) ([]Row, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}

		return nil, fmt.Errorf("%w: missing header", ErrMalformedCSV)
	}

	if strings.TrimSuffix(scanner.Text(), "\r") != CSVHeader {
		return nil, fmt.Errorf("%w: unexpected header %q", ErrMalformedCSV, scanner.Text())
	}

	var rows []Row

	for lineNo := 2; scanner.Scan(); lineNo++ {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if line == "" {
			continue
		}

		row, err := parseRow(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}

		rows = append(rows, row)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	return rows, nil
}

func parseRow(line string) (Row, error) {
	fields := strings.Split(line, ",")
	if len(fields) < csvScoreColumns+1 {
		return Row{}, fmt.Errorf("%w: want at least %d fields, got %d", ErrMalformedCSV, csvScoreColumns+1, len(fields))
	}

	split := len(fields) - csvScoreColumns

	var values [csvScoreColumns]float64

	for i, field := range fields[split:] {
		v, err := ParseScore(field)
		if err != nil {
			return Row{}, fmt.Errorf("%w: %w", ErrMalformedCSV, err)
		}

		values[i] = v
	}

	return Row{
		Method: strings.Join(fields[:split], ","),
		Scores: suspicion.Scores{Tarantula: values[0], SBI: values[1], Jaccard: values[2], Ochiai: values[3]},
	}, nil
}
