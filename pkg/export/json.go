package export

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/Sumatoshi-tech/sbfl/pkg/persist"
)

// ErrInvalidReport is returned when a JSON report does not match the schema.
var ErrInvalidReport = errors.New("invalid report")

//go:embed report-schema.json
var reportSchema []byte

// ReportSchema returns the JSON Schema for JSON reports.
func ReportSchema() []byte {
	return bytes.Clone(reportSchema)
}

// JSON writes the report document as indented JSON.
type JSON struct{}

// Name implements Exporter.
func (JSON) Name() string { return FormatJSON }

// Extension implements Exporter.
func (JSON) Extension() string { return persist.NewJSONCodec().Extension() }

// Export implements Exporter.
func (j JSON) Export(path string, report *Report) error {
	return exportAtomic(path, j.Name(), func(w io.Writer) error {
		return persist.NewJSONCodec().Encode(w, report.Document())
	})
}

// YAML writes the report document as YAML.
type YAML struct{}

// Name implements Exporter.
func (YAML) Name() string { return FormatYAML }

// Extension implements Exporter.
func (YAML) Extension() string { return persist.NewYAMLCodec().Extension() }

// Export implements Exporter.
func (y YAML) Export(path string, report *Report) error {
	return exportAtomic(path, y.Name(), func(w io.Writer) error {
		return persist.NewYAMLCodec().Encode(w, report.Document())
	})
}

// ValidationError lists schema violations found in a JSON report.
type ValidationError struct {
	Problems []string
}

// Error implements error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidReport, strings.Join(e.Problems, "; "))
}

// Unwrap returns ErrInvalidReport.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidReport
}

// Validate checks data against the report schema. Schema violations are
// returned as *ValidationError.
func Validate(data []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(reportSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidReport, err)
	}

	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))

	for _, verr := range result.Errors() {
		problems = append(problems, fmt.Sprintf("%s: %s", verr.Field(), verr.Description()))
	}

	return &ValidationError{Problems: problems}
}

// ReadJSON decodes and validates a JSON report from r.
func ReadJSON(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}

	err = Validate(data)
	if err != nil {
		return nil, err
	}

	var doc Document

	err = persist.NewJSONCodec().Decode(bytes.NewReader(data), &doc)
	if err != nil {
		return nil, err
	}

	return &doc, nil
}
