package export

import (
	"fmt"
	"io"

	"github.com/Sumatoshi-tech/sbfl/pkg/plot"
)

// HTML writes an interactive chart page of the most suspicious methods.
type HTML struct {
	Top   int
	Theme plot.Theme
}

// NewHTML creates an HTML exporter charting the top n methods.
func NewHTML(n int) HTML {
	return HTML{Top: n, Theme: plot.ThemeLight}
}

// Name implements Exporter.
func (HTML) Name() string { return FormatHTML }

// Extension implements Exporter.
func (HTML) Extension() string { return ".html" }

// Export implements Exporter.
func (h HTML) Export(path string, report *Report) error {
	return exportAtomic(path, h.Name(), func(w io.Writer) error {
		page := plot.NewSuspicionPage(fmt.Sprintf("Suspicion: %s", report.Directory), h.Top)
		page.Theme = h.Theme

		return page.Render(w, report.Entries)
	})
}
