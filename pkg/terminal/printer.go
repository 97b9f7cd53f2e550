// Package terminal renders run summaries and ranked methods for humans.
package terminal

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/Sumatoshi-tech/sbfl/pkg/coverage"
	"github.com/Sumatoshi-tech/sbfl/pkg/ranking"
	"github.com/Sumatoshi-tech/sbfl/pkg/suspicion"
)

// DefaultTop is the number of ranked methods printed by default.
const DefaultTop = 10

const (
	scoreThresholdHigh   = 0.8
	scoreThresholdMedium = 0.5
	scorePrecision       = 4
	maxMethodWidth       = 80
)

// Printer writes human-readable run output.
type Printer struct {
	w       io.Writer
	top     int
	noColor bool

	high   *color.Color
	medium *color.Color
	dim    *color.Color
	ok     *color.Color
}

// Option configures a Printer.
type Option func(*Printer)

// WithTop limits the ranked table to n rows. n <= 0 prints every method.
func WithTop(n int) Option {
	return func(p *Printer) { p.top = n }
}

// WithNoColor disables ANSI colors regardless of the terminal.
func WithNoColor(disabled bool) Option {
	return func(p *Printer) { p.noColor = disabled }
}

// NewPrinter creates a Printer writing to w. Nil w means stdout.
func NewPrinter(w io.Writer, opts ...Option) *Printer {
	if w == nil {
		w = os.Stdout
	}

	p := &Printer{w: w, top: DefaultTop}

	for _, opt := range opts {
		opt(p)
	}

	p.high = p.newColor(color.FgRed, color.Bold)
	p.medium = p.newColor(color.FgYellow)
	p.dim = p.newColor(color.Faint)
	p.ok = p.newColor(color.FgGreen)

	return p
}

func (p *Printer) newColor(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)

	if p.noColor {
		c.DisableColor()
	} else {
		c.EnableColor()
	}

	return c
}

// Empty reports a run that found no usable records.
func (p *Printer) Empty(dir string, table *coverage.Table) {
	skipped := 0
	if table != nil {
		skipped = table.Skipped
	}

	p.dim.Fprintf(p.w, "No coverage records found in %s (%s skipped); nothing written.\n",
		dir, humanize.Comma(int64(skipped)))
}

// Summary prints run totals.
func (p *Printer) Summary(table *coverage.Table) {
	fmt.Fprintf(p.w, "Records: %s (%s passed, %s failed, %s skipped)  Methods: %s\n",
		humanize.Comma(int64(table.Records)),
		p.ok.Sprint(humanize.Comma(int64(table.TotalPassed))),
		p.high.Sprint(humanize.Comma(int64(table.TotalFailed))),
		humanize.Comma(int64(table.Skipped)),
		humanize.Comma(int64(table.Len())),
	)
}

// Ranking prints the most suspicious methods as a table.
func (p *Printer) Ranking(entries []ranking.Entry) {
	shown := ranking.Top(entries, p.top)

	tbl := table.NewWriter()
	tbl.SetOutputMirror(p.w)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Format.Header = text.FormatDefault
	tbl.Style().Format.Footer = text.FormatDefault
	tbl.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 2, WidthMax: maxMethodWidth},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})

	tbl.AppendHeader(table.Row{"#", "Method", "Tarantula", "SBI", "Jaccard", "Ochiai"})

	for i, entry := range shown {
		tbl.AppendRow(p.row(i+1, entry))
	}

	tbl.AppendFooter(table.Row{"", fmt.Sprintf("Showing %s of %s methods",
		humanize.Comma(int64(len(shown))), humanize.Comma(int64(len(entries))))})

	tbl.Render()
}

func (p *Printer) row(rank int, entry ranking.Entry) table.Row {
	s := entry.Scores

	return table.Row{
		rank,
		entry.Method,
		p.colorScore(s.Tarantula),
		FormatScore(s.SBI),
		FormatScore(s.Jaccard),
		FormatScore(s.Ochiai),
	}
}

func (p *Printer) colorScore(v float64) string {
	formatted := FormatScore(v)

	switch {
	case math.IsNaN(v):
		return p.dim.Sprint(formatted)
	case v >= scoreThresholdHigh:
		return p.high.Sprint(formatted)
	case v >= scoreThresholdMedium:
		return p.medium.Sprint(formatted)
	default:
		return formatted
	}
}

// Files lists written output files with their sizes.
func (p *Printer) Files(paths []string) {
	for _, path := range paths {
		size := "?"

		if info, err := os.Stat(path); err == nil {
			size = humanize.Bytes(uint64(info.Size())) //nolint:gosec // file sizes are non-negative.
		}

		fmt.Fprintf(p.w, "%s %s %s\n", p.ok.Sprint("wrote"), path, p.dim.Sprintf("(%s)", size))
	}
}

// Formulas prints the registered formulas with their descriptions.
func (p *Printer) Formulas() {
	for _, m := range suspicion.Formulas().All() {
		fmt.Fprintf(p.w, "%-10s %s\n", m.DisplayName(), p.dim.Sprint(m.Description()))
	}
}

// FormatScore renders a score with fixed precision for display.
func FormatScore(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	default:
		return strconv.FormatFloat(v, 'f', scorePrecision, 64)
	}
}
