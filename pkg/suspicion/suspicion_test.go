package suspicion

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const delta = 1e-12

func TestTarantula(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		ef, ep, nf, np float64
		expected       float64
	}{
		{name: "balanced", ef: 1, ep: 1, nf: 1, np: 1, expected: 0.5},
		{name: "only_failing", ef: 2, ep: 0, nf: 2, np: 3, expected: 1},
		{name: "only_passing", ef: 0, ep: 2, nf: 1, np: 2, expected: 0},
		{name: "all_zero", ef: 0, ep: 0, nf: 0, np: 0, expected: 0},
		{name: "zero_pass_denominator", ef: 1, ep: 0, nf: 1, np: 0, expected: 1},
		{name: "mixed", ef: 3, ep: 1, nf: 1, np: 4, expected: (3.0 / 4) / (3.0/4 + 1.0/5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Tarantula(tt.ef, tt.ep, tt.nf, tt.np)
			assert.InDelta(t, tt.expected, got, delta)
		})
	}
}

func TestSBI(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.25, SBI(1, 3), delta)
	assert.InDelta(t, 1.0, SBI(4, 0), delta)
	assert.Zero(t, SBI(0, 0))
}

func TestJaccard(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.5, Jaccard(1, 1, 1), delta)
	assert.InDelta(t, 2.0, Jaccard(2, 0, 1), delta)
	assert.Zero(t, Jaccard(3, 0, 0))
}

func TestOchiai(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 1/math.Sqrt2, Ochiai(1, 1, 1), delta)
	assert.InDelta(t, 0.0, Ochiai(0, 1, 1), delta)
}

func TestZeroDenominatorsReturnExactZero(t *testing.T) {
	t.Parallel()

	got := []float64{
		Tarantula(0, 0, 0, 0),
		SBI(0, 0),
		Jaccard(5, 0, 0),
	}

	for _, v := range got {
		assert.False(t, math.IsNaN(v))
		assert.Zero(t, v)
	}
}

func TestOchiaiIsUnguarded(t *testing.T) {
	t.Parallel()

	assert.True(t, math.IsNaN(Ochiai(0, 0, 0)), "0/0 must stay NaN")
	assert.True(t, math.IsNaN(Ochiai(0, 3, 0)), "nf == 0 with ef == 0 is 0/0")
	assert.True(t, math.IsInf(Ochiai(2, 0, 0), 1), "nf == 0 with ef > 0 is +Inf")
}

func TestCompute(t *testing.T) {
	t.Parallel()

	scores := Compute(Spectrum{ExecFailed: 1, ExecPassed: 1, TotalFailed: 1, TotalPassed: 1})

	assert.InDelta(t, 0.5, scores.Tarantula, delta)
	assert.InDelta(t, 0.5, scores.SBI, delta)
	assert.InDelta(t, 0.5, scores.Jaccard, delta)
	assert.InDelta(t, 1/math.Sqrt2, scores.Ochiai, delta)
}

func TestFormulas_MatchCompute(t *testing.T) {
	t.Parallel()

	spectrum := Spectrum{ExecFailed: 3, ExecPassed: 2, TotalFailed: 4, TotalPassed: 6}
	scores := Compute(spectrum)

	reg := Formulas()
	assert.Equal(t, []string{NameTarantula, NameSBI, NameJaccard, NameOchiai}, reg.Names())

	values := reg.ComputeAll(spectrum)
	require.Len(t, values, 4)
	assert.InDelta(t, scores.Tarantula, values[NameTarantula], delta)
	assert.InDelta(t, scores.SBI, values[NameSBI], delta)
	assert.InDelta(t, scores.Jaccard, values[NameJaccard], delta)
	assert.InDelta(t, scores.Ochiai, values[NameOchiai], delta)

	for _, m := range reg.All() {
		assert.NotEmpty(t, m.DisplayName())
		assert.NotEmpty(t, m.Description())
	}
}
