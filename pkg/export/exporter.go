package export

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Sumatoshi-tech/sbfl/pkg/persist"
)

// Format names accepted by ForFormat.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatXLSX = "xlsx"
	FormatHTML = "html"
)

// DefaultFileName is the CSV file written into the record directory.
const DefaultFileName = "Suspicion.csv"

// ErrUnknownFormat is returned for an unsupported export format.
var ErrUnknownFormat = errors.New("unknown export format")

// Exporter renders a report to a file.
type Exporter interface {
	// Name returns the format name (e.g. "csv").
	Name() string
	// Extension returns the file extension including the dot.
	Extension() string
	// Export writes report to path, replacing any existing file atomically.
	Export(path string, report *Report) error
}

// Formats returns every supported format name.
func Formats() []string {
	return []string{FormatCSV, FormatJSON, FormatYAML, FormatXLSX, FormatHTML}
}

// ForFormat returns the exporter for name (case-insensitive).
func ForFormat(name string) (Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case FormatCSV:
		return CSV{}, nil
	case FormatJSON:
		return JSON{}, nil
	case FormatYAML, "yml":
		return YAML{}, nil
	case FormatXLSX:
		return XLSX{}, nil
	case FormatHTML:
		return NewHTML(0), nil
	default:
		return nil, fmt.Errorf("%w: %q (supported: %s)", ErrUnknownFormat, name, strings.Join(Formats(), ", "))
	}
}

// ForFormats resolves names into exporters, dropping duplicates and keeping
// the first occurrence order.
func ForFormats(names []string) ([]Exporter, error) {
	exporters := make([]Exporter, 0, len(names))
	seen := make([]string, 0, len(names))

	for _, name := range names {
		exp, err := ForFormat(name)
		if err != nil {
			return nil, err
		}

		if slices.Contains(seen, exp.Name()) {
			continue
		}

		seen = append(seen, exp.Name())
		exporters = append(exporters, exp)
	}

	return exporters, nil
}

// OutputPath returns the path an exporter writes to for the CSV file name
// fileName inside dir. The CSV keeps fileName; other formats swap the extension.
func OutputPath(dir, fileName string, exp Exporter) string {
	if exp.Name() == FormatCSV {
		return filepath.Join(dir, fileName)
	}

	base := strings.TrimSuffix(fileName, filepath.Ext(fileName))

	return filepath.Join(dir, base+exp.Extension())
}

func exportAtomic(path, format string, write func(w io.Writer) error) error {
	err := persist.WriteFileAtomic(path, write)
	if err != nil {
		return fmt.Errorf("export %s to %s: %w", format, path, err)
	}

	return nil
}
