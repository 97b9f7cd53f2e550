package plot

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/sbfl/pkg/ranking"
	"github.com/Sumatoshi-tech/sbfl/pkg/suspicion"
)

func TestSuspicionPage_Render(t *testing.T) {
	t.Parallel()

	entries := []ranking.Entry{
		{Method: "com/example/Foo.bar()V", Scores: suspicion.Scores{Tarantula: 1, SBI: 1, Jaccard: 0.5, Ochiai: math.NaN()}},
		{Method: "com/example/Foo.baz()V", Scores: suspicion.Scores{Tarantula: 0.25}},
	}

	var buf bytes.Buffer

	require.NoError(t, NewSuspicionPage("Suspicion report", 0).Render(&buf, entries))

	html := buf.String()
	assert.Contains(t, html, "Suspicion report")
	assert.Contains(t, html, "com/example/Foo.bar()V")
	assert.Contains(t, html, "Tarantula")
}

func TestChartValue(t *testing.T) {
	t.Parallel()

	assert.Equal(t, missingValue, ChartValue(math.NaN()))
	assert.Equal(t, missingValue, ChartValue(math.Inf(1)))
	assert.InDelta(t, 0.5, ChartValue(0.5), 0)
}

func TestLabels_Shorten(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("a/", 40) + "Foo.bar()V"
	labels := Labels([]ranking.Entry{{Method: "short"}, {Method: long}})

	assert.Equal(t, "short", labels[0])
	assert.Len(t, []rune(labels[1]), maxLabelRunes)
	assert.True(t, strings.HasSuffix(labels[1], "Foo.bar()V"))
}

func TestFormulaSeries(t *testing.T) {
	t.Parallel()

	series := FormulaSeries(NewChartOpts(ThemeDark), []ranking.Entry{
		{Scores: suspicion.Scores{Tarantula: 0.1, SBI: 0.2, Jaccard: 0.3, Ochiai: math.Inf(1)}},
	})

	require.Len(t, series, 4)
	assert.Equal(t, []string{"Tarantula", "SBI", "Jaccard", "Ochiai"},
		[]string{series[0].Name, series[1].Name, series[2].Name, series[3].Name})
	assert.Equal(t, []any{missingValue}, series[3].Data)
	assert.NotEmpty(t, series[0].Color)
}
