// Package suspicion implements the spectrum-based fault localization formulas
// (Tarantula, SBI, Jaccard, Ochiai) and the total order used to rank methods.
//
// Parameter names follow the SBFL literature:
//   - ef: failing executions attributed to the method.
//   - ep: passing executions attributed to the method.
//   - nf: total failed tests in the run.
//   - np: total passed tests in the run.
//
// Every division except Ochiai's returns exactly 0 when its denominator is zero.
// Ochiai is unguarded and yields NaN or +Inf on a zero denominator.
package suspicion

import "math"

// Tarantula computes failRatio / (failRatio + passRatio), where
// failRatio = ef/(ef+nf) and passRatio = ep/(ep+np).
func Tarantula(ef, ep, nf, np float64) float64 {
	failRatio := safeDiv(ef, ef+nf)
	passRatio := safeDiv(ep, ep+np)

	return safeDiv(failRatio, failRatio+passRatio)
}

// SBI computes ef / (ef + ep).
func SBI(ef, ep float64) float64 {
	return safeDiv(ef, ef+ep)
}

// Jaccard computes ef / (nf + ep).
func Jaccard(ef, ep, nf float64) float64 {
	return safeDiv(ef, nf+ep)
}

// Ochiai computes ef / sqrt(nf * (ef + ep)).
// The division is not guarded: a zero denominator yields NaN (0/0) or +Inf.
func Ochiai(ef, ep, nf float64) float64 {
	return ef / math.Sqrt(nf*(ef+ep))
}

func safeDiv(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}

	return numerator / denominator
}

// Spectrum is the per-method execution spectrum plus the run totals that
// serve as denominators.
type Spectrum struct {
	ExecFailed  int
	ExecPassed  int
	TotalFailed int
	TotalPassed int
}

func (s Spectrum) values() (ef, ep, nf, np float64) {
	return float64(s.ExecFailed), float64(s.ExecPassed), float64(s.TotalFailed), float64(s.TotalPassed)
}

// Scores holds the four suspiciousness values computed for one method.
type Scores struct {
	Tarantula float64 `json:"tarantula" yaml:"tarantula"`
	SBI       float64 `json:"sbi"       yaml:"sbi"`
	Jaccard   float64 `json:"jaccard"   yaml:"jaccard"`
	Ochiai    float64 `json:"ochiai"    yaml:"ochiai"`
}

// Compute evaluates all four formulas for the spectrum.
func Compute(s Spectrum) Scores {
	ef, ep, nf, np := s.values()

	return Scores{
		Tarantula: Tarantula(ef, ep, nf, np),
		SBI:       SBI(ef, ep),
		Jaccard:   Jaccard(ef, ep, nf),
		Ochiai:    Ochiai(ef, ep, nf),
	}
}

// Keys returns the scores in ranking priority order.
func (s Scores) Keys() [4]float64 {
	return [4]float64{s.Tarantula, s.SBI, s.Jaccard, s.Ochiai}
}
