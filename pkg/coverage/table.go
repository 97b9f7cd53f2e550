package coverage

// MethodStats counts the tests whose record lists a method.
//
// The increment pairing is inverted relative to the field names: a passing
// test increments FailCount and a failing test increments PassCount. Scoring
// reads them crosswise, so PassCount is the failing-execution count ef.
type MethodStats struct {
	PassCount int `json:"pass_count" yaml:"pass_count"`
	FailCount int `json:"fail_count" yaml:"fail_count"`
}

// Total returns PassCount + FailCount.
func (s MethodStats) Total() int {
	return s.PassCount + s.FailCount
}

// Table is the run-scoped aggregation result: per-method stats plus the
// totals used as scoring denominators. A Table belongs to exactly one run.
type Table struct {
	// Methods maps a method signature to its stats.
	Methods map[string]*MethodStats `json:"methods"`

	// Order lists method signatures in first-seen order.
	Order []string `json:"order"`

	TotalPassed int `json:"total_passed"`
	TotalFailed int `json:"total_failed"`

	// Records is the number of records folded into the table.
	Records int `json:"records"`

	// Skipped is the number of files ignored as empty, malformed or unreadable.
	Skipped int `json:"skipped"`
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{Methods: make(map[string]*MethodStats)}
}

// Len returns the number of distinct methods.
func (t *Table) Len() int {
	return len(t.Order)
}

// Empty reports whether the table holds no method.
func (t *Table) Empty() bool {
	return t.Len() == 0
}

// Stats returns a copy of the stats recorded for signature.
func (t *Table) Stats(signature string) (MethodStats, bool) {
	stats, ok := t.Methods[signature]
	if !ok {
		return MethodStats{}, false
	}

	return *stats, true
}

// Observe folds one record into the table using passed as the test result.
// The caller decides passed, which may differ from the recorded flag.
func (t *Table) Observe(rec Record, passed bool) {
	t.Records++

	if passed {
		t.TotalPassed++
	} else {
		t.TotalFailed++
	}

	for _, signature := range rec.Methods {
		stats, ok := t.Methods[signature]
		if !ok {
			stats = &MethodStats{}
			t.Methods[signature] = stats
			t.Order = append(t.Order, signature)
		}

		if passed {
			stats.FailCount++
		} else {
			stats.PassCount++
		}
	}
}
