package plot

import (
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// Series is one named data series. Values may be numbers or "-" for gaps.
type Series struct {
	Name  string
	Data  []any
	Color string // Optional.
}

// ChartOpts paints charts with one palette.
type ChartOpts struct {
	palette Palette
}

// NewChartOpts creates ChartOpts for theme.
func NewChartOpts(theme Theme) *ChartOpts {
	return &ChartOpts{palette: PaletteFor(theme)}
}

// SeriesColor returns the color for the i-th formula series.
func (c *ChartOpts) SeriesColor(i int) string {
	return c.palette.Formula[i%len(c.palette.Formula)]
}

// axes describes the frame shared by every suspicion chart.
type axes struct {
	title  string
	x, y   string
	height string
	// rotate tilts x labels, for long method names.
	rotate float64
}

func (c *ChartOpts) global(a axes) []charts.GlobalOpts {
	muted := &opts.TextStyle{Color: c.palette.Muted}
	axisLine := &opts.AxisLine{LineStyle: &opts.LineStyle{Color: c.palette.Axis}}

	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			Width:           "100%",
			Height:          a.height,
			BackgroundColor: c.palette.Background,
			Theme:           c.palette.ECharts,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:      a.title,
			Left:       "center",
			TitleStyle: &opts.TextStyle{Color: c.palette.Text},
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Type: "scroll", Top: "10%", Left: "center", TextStyle: muted}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", End: 100}, opts.DataZoom{Type: "inside"}),
		charts.WithXAxisOpts(opts.XAxis{
			Name:      a.x,
			AxisLabel: &opts.AxisLabel{Color: c.palette.Muted, Rotate: a.rotate},
			AxisLine:  axisLine,
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:      a.y,
			AxisLabel: &opts.AxisLabel{Color: c.palette.Muted},
			AxisLine:  axisLine,
			SplitLine: &opts.SplitLine{Show: opts.Bool(true), LineStyle: &opts.LineStyle{Color: c.palette.Grid}},
		}),
		charts.WithGridOpts(opts.Grid{Top: "20%", Bottom: "25%", Left: "5%", Right: "5%", ContainLabel: opts.Bool(true)}),
	}
}

func convert[T any](data []any, wrap func(any) T) []T {
	out := make([]T, len(data))
	for i, v := range data {
		out[i] = wrap(v)
	}

	return out
}

// BuildBarChart groups every series per label, one bar each.
func BuildBarChart(c *ChartOpts, title string, labels []string, series []Series, yName string) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(c.global(axes{title: title, y: yName, height: "560px", rotate: 30})...)
	bar.SetXAxis(labels)

	for _, s := range series {
		var style []charts.SeriesOpts
		if s.Color != "" {
			style = append(style, charts.WithItemStyleOpts(opts.ItemStyle{Color: s.Color}))
		}

		bar.AddSeries(s.Name, convert(s.Data, func(v any) opts.BarData { return opts.BarData{Value: v} }), style...)
	}

	return bar
}

// BuildLineChart plots each series against rank positions.
func BuildLineChart(c *ChartOpts, title string, labels []string, series []Series, yName string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(c.global(axes{title: title, x: "rank", y: yName, height: "420px"})...)
	line.SetXAxis(labels)

	for _, s := range series {
		var style []charts.SeriesOpts
		if s.Color != "" {
			style = append(style,
				charts.WithItemStyleOpts(opts.ItemStyle{Color: s.Color}),
				charts.WithLineStyleOpts(opts.LineStyle{Color: s.Color}),
			)
		}

		line.AddSeries(s.Name, convert(s.Data, func(v any) opts.LineData { return opts.LineData{Value: v} }), style...)
	}

	return line
}
