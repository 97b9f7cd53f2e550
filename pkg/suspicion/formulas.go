package suspicion

import (
	"github.com/Sumatoshi-tech/sbfl/pkg/metrics"
)

// Formula names as registered in the formula registry.
const (
	NameTarantula = "tarantula"
	NameSBI       = "sbi"
	NameJaccard   = "jaccard"
	NameOchiai    = "ochiai"
)

// Formulas returns a registry holding the four formulas in ranking priority
// order. A fresh registry is built on every call.
func Formulas() *metrics.Registry[Spectrum, float64] {
	reg := metrics.NewRegistry[Spectrum, float64]()

	for _, m := range formulaMetrics() {
		// Names are distinct constants; Register cannot fail here.
		_ = reg.Register(m)
	}

	return reg
}

func formulaMetrics() []metrics.Func[Spectrum, float64] {
	return []metrics.Func[Spectrum, float64]{
		{
			MetricMeta: metrics.MetricMeta{
				MetricName:        NameTarantula,
				MetricDisplayName: "Tarantula",
				MetricDescription: "failRatio / (failRatio + passRatio), failRatio = ef/(ef+nf), passRatio = ep/(ep+np). " +
					"Range [0, 1]; 0 when a denominator is zero.",
			},
			Fn: func(s Spectrum) float64 {
				ef, ep, nf, np := s.values()

				return Tarantula(ef, ep, nf, np)
			},
		},
		{
			MetricMeta: metrics.MetricMeta{
				MetricName:        NameSBI,
				MetricDisplayName: "SBI",
				MetricDescription: "ef / (ef + ep). Range [0, 1]; 0 when the method was never executed.",
			},
			Fn: func(s Spectrum) float64 {
				ef, ep, _, _ := s.values()

				return SBI(ef, ep)
			},
		},
		{
			MetricMeta: metrics.MetricMeta{
				MetricName:        NameJaccard,
				MetricDisplayName: "Jaccard",
				MetricDescription: "ef / (nf + ep). 0 when the denominator is zero.",
			},
			Fn: func(s Spectrum) float64 {
				ef, ep, nf, _ := s.values()

				return Jaccard(ef, ep, nf)
			},
		},
		{
			MetricMeta: metrics.MetricMeta{
				MetricName:        NameOchiai,
				MetricDisplayName: "Ochiai",
				MetricDescription: "ef / sqrt(nf * (ef + ep)). Unguarded: NaN or +Inf when the denominator is zero.",
			},
			Fn: func(s Spectrum) float64 {
				ef, ep, nf, _ := s.values()

				return Ochiai(ef, ep, nf)
			},
		},
	}
}
