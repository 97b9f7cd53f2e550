package coverage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTable_ObserveCreatesLazily(t *testing.T) {
	t.Parallel()

	table := NewTable()
	assert.True(t, table.Empty())

	table.Observe(Record{TestID: "A"}, true)
	assert.True(t, table.Empty(), "a record without methods creates no entry")
	assert.Equal(t, 1, table.TotalPassed)

	table.Observe(Record{TestID: "B", Methods: []string{"M2", "M1"}}, false)
	table.Observe(Record{TestID: "C", Methods: []string{"M1"}}, true)

	assert.Equal(t, 2, table.Len())
	assert.Equal(t, []string{"M2", "M1"}, table.Order)
	assert.Equal(t, 3, table.Records)

	m1, ok := table.Stats("M1")
	assert.True(t, ok)
	assert.Equal(t, MethodStats{PassCount: 1, FailCount: 1}, m1)
	assert.Equal(t, 2, m1.Total())
}

func TestTable_StatsReturnsCopy(t *testing.T) {
	t.Parallel()

	table := NewTable()
	table.Observe(Record{Methods: []string{"M"}}, true)

	stats, _ := table.Stats("M")
	stats.FailCount = 99

	again, _ := table.Stats("M")
	assert.Equal(t, 1, again.FailCount)

	_, ok := table.Stats("missing")
	assert.False(t, ok)
}
