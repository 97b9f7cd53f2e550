// Package ranking scores an aggregation table and orders methods by
// descending suspiciousness.
package ranking

import (
	"slices"

	"github.com/Sumatoshi-tech/sbfl/pkg/coverage"
	"github.com/Sumatoshi-tech/sbfl/pkg/suspicion"
)

// Entry is one ranked method: its signature, aggregated stats and scores.
type Entry struct {
	Method string               `json:"method"`
	Stats  coverage.MethodStats `json:"stats"`
	Scores suspicion.Scores     `json:"scores"`
}

// Spectrum maps method stats and run totals onto formula inputs.
//
// MethodStats counters are incremented crosswise (a failing test bumps
// PassCount), so they are read crosswise here: ef = PassCount, the number of
// failing tests that executed the method, and ep = FailCount, the number of
// passing ones. nf = TotalFailed and np = TotalPassed.
func Spectrum(stats coverage.MethodStats, totalFailed, totalPassed int) suspicion.Spectrum {
	return suspicion.Spectrum{
		ExecFailed:  stats.PassCount,
		ExecPassed:  stats.FailCount,
		TotalFailed: totalFailed,
		TotalPassed: totalPassed,
	}
}

// Score computes the four scores for every method in table, in first-seen order.
// The run totals are read once and shared by every method.
func Score(table *coverage.Table) []Entry {
	entries := make([]Entry, 0, table.Len())
	totalFailed, totalPassed := table.TotalFailed, table.TotalPassed

	for _, method := range table.Order {
		stats := *table.Methods[method]

		entries = append(entries, Entry{
			Method: method,
			Stats:  stats,
			Scores: suspicion.Compute(Spectrum(stats, totalFailed, totalPassed)),
		})
	}

	return entries
}

// Sort orders entries by descending suspiciousness (Tarantula, SBI, Jaccard,
// Ochiai; NaN lowest). The sort is stable, so full ties keep their input order.
func Sort(entries []Entry) {
	slices.SortStableFunc(entries, func(a, b Entry) int {
		return suspicion.Compare(a.Scores, b.Scores)
	})
}

// Rank scores and sorts every method in table.
func Rank(table *coverage.Table) []Entry {
	entries := Score(table)
	Sort(entries)

	return entries
}

// Top returns at most n leading entries. n <= 0 returns all entries.
func Top(entries []Entry, n int) []Entry {
	if n <= 0 || n >= len(entries) {
		return entries
	}

	return entries[:n]
}
