package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircularBuffer_EvictsOldest(t *testing.T) {
	b := NewCircularBuffer[int](3)
	for i := 1; i <= 5; i++ {
		b.Add(i)
	}

	assert.Equal(t, 3, b.Len())
	assert.Equal(t, []int{3, 4, 5}, b.Items())
}

func TestCircularBuffer_Empty(t *testing.T) {
	b := NewCircularBuffer[int](3)
	assert.Equal(t, 0, b.Len())
	assert.Nil(t, b.Items())
}

func TestScanMetrics_SummarizePerStrategy(t *testing.T) {
	m := NewScanMetrics(16)

	m.Record(ScanEvent{Strategy: "indexed", Duration: 10 * time.Microsecond, MatchCount: 2, LineLength: 40})
	m.Record(ScanEvent{Strategy: "indexed", Duration: 30 * time.Microsecond, MatchCount: 1, LineLength: 60, CacheHit: true})
	m.Record(ScanEvent{Strategy: "fuzzy", Duration: 100 * time.Microsecond, MatchCount: 0, LineLength: 900})

	summaries := m.Summarize()
	require.Len(t, summaries, 2)

	indexed := summaries[0]
	assert.Equal(t, "indexed", indexed.Strategy)
	assert.Equal(t, 2, indexed.Scans)
	assert.Equal(t, 3, indexed.Matches)
	assert.Equal(t, 1, indexed.CacheHits)
	assert.Equal(t, 20*time.Microsecond, indexed.AverageTime)
	assert.Equal(t, 50, indexed.AverageLine)

	assert.Equal(t, "fuzzy", summaries[1].Strategy)
	assert.Equal(t, 1, summaries[1].Scans)
}

func TestScanMetrics_TimestampDefaulted(t *testing.T) {
	m := NewScanMetrics(4)
	m.Record(ScanEvent{Strategy: "direct"})

	events := m.Events()
	require.Len(t, events, 1)
	assert.False(t, events[0].Timestamp.IsZero())
}
