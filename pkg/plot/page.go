package plot

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/components"

	"github.com/Sumatoshi-tech/sbfl/pkg/ranking"
	"github.com/Sumatoshi-tech/sbfl/pkg/suspicion"
)

// DefaultTop is the number of methods charted when no limit is given.
const DefaultTop = 20

// maxLabelRunes caps axis label length. Longer names keep their tail.
const maxLabelRunes = 48

// missingValue is the echarts placeholder for a gap in a series.
const missingValue = "-"

// SuspicionPage builds the chart page for a ranked result.
type SuspicionPage struct {
	Title string
	Top   int
	Theme Theme
}

// NewSuspicionPage creates a page charting the top n methods. n <= 0 uses DefaultTop.
func NewSuspicionPage(title string, n int) *SuspicionPage {
	if n <= 0 {
		n = DefaultTop
	}

	return &SuspicionPage{Title: title, Top: n, Theme: ThemeLight}
}

// Render writes the HTML page for entries, which must already be ranked.
func (p *SuspicionPage) Render(w io.Writer, entries []ranking.Entry) error {
	cOpts := NewChartOpts(p.Theme)

	page := components.NewPage()
	page.PageTitle = p.Title
	page.SetLayout(components.PageFlexLayout)

	top := ranking.Top(entries, p.Top)

	page.AddCharts(
		BuildBarChart(cOpts, fmt.Sprintf("Top %d suspicious methods", len(top)),
			Labels(top), FormulaSeries(cOpts, top), "suspicion"),
		BuildLineChart(cOpts, "Tarantula by rank",
			rankLabels(len(entries)), []Series{{
				Name:  "Tarantula",
				Data:  values(entries, func(s suspicion.Scores) float64 { return s.Tarantula }),
				Color: cOpts.SeriesColor(0),
			}}, "tarantula"),
	)

	err := page.Render(w)
	if err != nil {
		return fmt.Errorf("render chart page: %w", err)
	}

	return nil
}

// FormulaSeries returns one series per formula, in ranking priority order.
func FormulaSeries(cOpts *ChartOpts, entries []ranking.Entry) []Series {
	pick := []struct {
		name string
		get  func(suspicion.Scores) float64
	}{
		{"Tarantula", func(s suspicion.Scores) float64 { return s.Tarantula }},
		{"SBI", func(s suspicion.Scores) float64 { return s.SBI }},
		{"Jaccard", func(s suspicion.Scores) float64 { return s.Jaccard }},
		{"Ochiai", func(s suspicion.Scores) float64 { return s.Ochiai }},
	}

	series := make([]Series, 0, len(pick))

	for i, f := range pick {
		series = append(series, Series{Name: f.name, Data: values(entries, f.get), Color: cOpts.SeriesColor(i)})
	}

	return series
}

// Labels returns shortened method names for axis labels.
func Labels(entries []ranking.Entry) []string {
	labels := make([]string, len(entries))

	for i, entry := range entries {
		labels[i] = shorten(entry.Method)
	}

	return labels
}

// ChartValue maps non-finite scores to the echarts gap placeholder.
func ChartValue(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return missingValue
	}

	return v
}

func values(entries []ranking.Entry, get func(suspicion.Scores) float64) []any {
	out := make([]any, len(entries))

	for i, entry := range entries {
		out[i] = ChartValue(get(entry.Scores))
	}

	return out
}

func rankLabels(n int) []string {
	labels := make([]string, n)

	for i := range labels {
		labels[i] = strconv.Itoa(i + 1)
	}

	return labels
}

func shorten(s string) string {
	runes := []rune(s)
	if len(runes) <= maxLabelRunes {
		return s
	}

	return "…" + string(runes[len(runes)-maxLabelRunes+1:])
}
