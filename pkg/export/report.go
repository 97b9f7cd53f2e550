// Package export writes ranked suspicion results to files: the mandatory CSV
// plus optional JSON, YAML, XLSX and HTML renditions.
package export

import (
	"math"
	"time"

	"github.com/Sumatoshi-tech/sbfl/pkg/coverage"
	"github.com/Sumatoshi-tech/sbfl/pkg/ranking"
	"github.com/Sumatoshi-tech/sbfl/pkg/suspicion"
)

// ReportVersion is the document version written to JSON and YAML reports.
const ReportVersion = "1"

// Report is everything an exporter needs to render one run.
type Report struct {
	Directory      string
	GeneratedAt    time.Time
	ForcedFailures int
	TotalPassed    int
	TotalFailed    int
	Records        int
	Skipped        int

	// Entries are ranked, most suspicious first.
	Entries []ranking.Entry
}

// NewReport builds a report from an aggregation table and its ranked entries.
func NewReport(dir string, forcedFailures int, table *coverage.Table, entries []ranking.Entry) *Report {
	return &Report{
		Directory:      dir,
		GeneratedAt:    time.Now().UTC(),
		ForcedFailures: forcedFailures,
		TotalPassed:    table.TotalPassed,
		TotalFailed:    table.TotalFailed,
		Records:        table.Records,
		Skipped:        table.Skipped,
		Entries:        entries,
	}
}

// Document is the structured form of a report shared by the JSON and YAML
// exporters. Non-finite scores are encoded as null.
type Document struct {
	Version     string        `json:"version"      yaml:"version"`
	Directory   string        `json:"directory"    yaml:"directory"`
	GeneratedAt time.Time     `json:"generated_at" yaml:"generated_at"`
	Totals      Totals        `json:"totals"       yaml:"totals"`
	Formulas    []FormulaInfo `json:"formulas"     yaml:"formulas"`
	Entries     []DocEntry    `json:"entries"      yaml:"entries"`
}

// Totals summarizes the run.
type Totals struct {
	Passed         int `json:"passed"          yaml:"passed"`
	Failed         int `json:"failed"          yaml:"failed"`
	Records        int `json:"records"         yaml:"records"`
	Skipped        int `json:"skipped"         yaml:"skipped"`
	Methods        int `json:"methods"         yaml:"methods"`
	ForcedFailures int `json:"forced_failures" yaml:"forced_failures"`
}

// FormulaInfo describes one scoring formula.
type FormulaInfo struct {
	Name        string `json:"name"         yaml:"name"`
	DisplayName string `json:"display_name" yaml:"display_name"`
	Description string `json:"description"  yaml:"description"`
}

// DocEntry is one ranked method.
type DocEntry struct {
	Rank      int       `json:"rank"       yaml:"rank"`
	Method    string    `json:"method"     yaml:"method"`
	PassCount int       `json:"pass_count" yaml:"pass_count"`
	FailCount int       `json:"fail_count" yaml:"fail_count"`
	Scores    DocScores `json:"scores"     yaml:"scores"`
}

// DocScores holds the four scores; nil marks NaN or an infinity.
type DocScores struct {
	Tarantula *float64 `json:"tarantula" yaml:"tarantula"`
	SBI       *float64 `json:"sbi"       yaml:"sbi"`
	Jaccard   *float64 `json:"jaccard"   yaml:"jaccard"`
	Ochiai    *float64 `json:"ochiai"    yaml:"ochiai"`
}

// Document converts the report into its structured form.
func (r *Report) Document() *Document {
	doc := &Document{
		Version:     ReportVersion,
		Directory:   r.Directory,
		GeneratedAt: r.GeneratedAt,
		Totals: Totals{
			Passed:         r.TotalPassed,
			Failed:         r.TotalFailed,
			Records:        r.Records,
			Skipped:        r.Skipped,
			Methods:        len(r.Entries),
			ForcedFailures: r.ForcedFailures,
		},
		Entries: make([]DocEntry, 0, len(r.Entries)),
	}

	for _, formula := range suspicion.Formulas().All() {
		doc.Formulas = append(doc.Formulas, FormulaInfo{
			Name:        formula.Name(),
			DisplayName: formula.DisplayName(),
			Description: formula.Description(),
		})
	}

	for i, entry := range r.Entries {
		doc.Entries = append(doc.Entries, DocEntry{
			Rank:      i + 1,
			Method:    entry.Method,
			PassCount: entry.Stats.PassCount,
			FailCount: entry.Stats.FailCount,
			Scores:    docScores(entry.Scores),
		})
	}

	return doc
}

func docScores(s suspicion.Scores) DocScores {
	return DocScores{
		Tarantula: finite(s.Tarantula),
		SBI:       finite(s.SBI),
		Jaccard:   finite(s.Jaccard),
		Ochiai:    finite(s.Ochiai),
	}
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}

	return &v
}
