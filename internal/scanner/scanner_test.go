package scanner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peopledex/peopledex/internal/index"
	"github.com/peopledex/peopledex/internal/person"
	"github.com/peopledex/peopledex/internal/telemetry"
)

func newTestScanner(t *testing.T, records []*person.Record) *Scanner {
	t.Helper()

	idx, err := index.New(16)
	require.NoError(t, err)
	idx.BuildIndexes(records)

	s, err := New(idx, Options{})
	require.NoError(t, err)
	s.SetRecords(records)
	return s
}

func defaultRecords() []*person.Record {
	return []*person.Record{
		{FullName: "John Smith", Company: person.Company{Name: "Acme"}},
		{FullName: "Jane Doe", Company: person.Company{Name: "Globex"}},
	}
}

func TestScanLine_RepeatedName_CountedSeparately(t *testing.T) {
	s := newTestScanner(t, defaultRecords())

	mentions := s.ScanLine("John Smith met John Smith again", true)

	require.Len(t, mentions, 2)
	assert.Equal(t, 0, mentions[0].Start)
	assert.Equal(t, "John Smith", mentions[0].Text)
	assert.Equal(t, "John Smith", mentions[1].Text)
	assert.Greater(t, mentions[1].Start, mentions[0].End)
}

func TestScanLine_SubstringIsNotAMention(t *testing.T) {
	s := newTestScanner(t, []*person.Record{{FullName: "John"}})

	// "John" inside "Johnson" must not match.
	mentions := s.ScanLine("Johnson attended the meeting", true)

	assert.Empty(t, mentions)
}

func TestScanLine_CaseInsensitive(t *testing.T) {
	s := newTestScanner(t, defaultRecords())

	mentions := s.ScanLine("talked to JOHN SMITH and jane doe", true)

	require.Len(t, mentions, 2)
	assert.Equal(t, "JOHN SMITH", mentions[0].Text)
	assert.Equal(t, "jane doe", mentions[1].Text)
}

func TestScanLine_EmptyLine(t *testing.T) {
	s := newTestScanner(t, defaultRecords())

	mentions := s.ScanLine("", true)

	assert.NotNil(t, mentions)
	assert.Empty(t, mentions)
}

func TestScanLine_MentionCarriesRecord(t *testing.T) {
	s := newTestScanner(t, defaultRecords())

	mentions := s.ScanLine("ping Jane Doe about the launch", true)

	require.Len(t, mentions, 1)
	require.NotNil(t, mentions[0].Record)
	assert.Equal(t, "Jane Doe", mentions[0].Record.FullName)
	assert.Equal(t, "Globex", mentions[0].Record.Company.Name)
}

func TestScanLine_StrategySelectionByLength(t *testing.T) {
	s := newTestScanner(t, defaultRecords())

	short := "John Smith was here"
	medium := "John Smith " + strings.Repeat("x ", 100)
	long := "John Smith " + strings.Repeat("y ", 400)

	tests := []struct {
		name     string
		line     string
		strategy Strategy
	}{
		{"short line uses the index", short, StrategyIndexed},
		{"medium line scans directly", medium, StrategyDirect},
		{"long line uses fuzzy pruning", long, StrategyFuzzy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.strategy, s.strategyFor(tt.line, true))

			// Every strategy finds the same single mention.
			mentions := s.ScanLine(tt.line, true)
			require.Len(t, mentions, 1)
			assert.Equal(t, "John Smith", mentions[0].Text)
			assert.Equal(t, tt.strategy, mentions[0].Strategy)
		})
	}
}

func TestScanLine_OverlappingNames_BothReported(t *testing.T) {
	// Given: two names sharing the word "Smith"
	records := []*person.Record{
		{FullName: "John Smith"},
		{FullName: "Smith Jones"},
	}
	s := newTestScanner(t, records)

	base := "John Smith Jones"
	tests := []struct {
		name     string
		line     string
		strategy Strategy
	}{
		{"short line uses the index", base, StrategyIndexed},
		{"medium line scans directly", base + strings.Repeat(" x", 100), StrategyDirect},
		{"long line uses fuzzy pruning", base + strings.Repeat(" y", 400), StrategyFuzzy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.strategy, s.strategyFor(tt.line, true))

			// When: the line containing the overlapping span is scanned
			mentions := s.ScanLine(tt.line, true)

			// Then: both names are reported independently
			require.Len(t, mentions, 2)
			assert.Equal(t, "John Smith", mentions[0].Text)
			assert.Equal(t, 0, mentions[0].Start)
			assert.Equal(t, "Smith Jones", mentions[1].Text)
			assert.Equal(t, 5, mentions[1].Start)
		})
	}

	// The legacy scan agrees.
	s.SetRecords(records)
	legacy := s.ScanLine(base, false)
	require.Len(t, legacy, 2)
	assert.Equal(t, "John Smith", legacy[0].Text)
	assert.Equal(t, "Smith Jones", legacy[1].Text)
}

func TestScanLine_NonASCIIName_EveryStrategy(t *testing.T) {
	records := []*person.Record{{FullName: "Émile Zola"}}
	s := newTestScanner(t, records)

	base := "met Émile Zola today"
	tests := []struct {
		name     string
		line     string
		strategy Strategy
	}{
		{"short line uses the index", base, StrategyIndexed},
		{"medium line scans directly", base + strings.Repeat(" x", 100), StrategyDirect},
		{"long line uses fuzzy pruning", base + strings.Repeat(" y", 400), StrategyFuzzy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.strategy, s.strategyFor(tt.line, true))

			mentions := s.ScanLine(tt.line, true)

			// The multi-byte first letter still marks a word start, so
			// every strategy finds the name.
			require.Len(t, mentions, 1)
			assert.Equal(t, "Émile Zola", mentions[0].Text)
			assert.Equal(t, 4, mentions[0].Start)
		})
	}

	s.SetRecords(records)
	legacy := s.ScanLine(base, false)
	require.Len(t, legacy, 1)
	assert.Equal(t, "Émile Zola", legacy[0].Text)
}

func TestScanLine_LegacyMatchesOptimized(t *testing.T) {
	s := newTestScanner(t, defaultRecords())
	line := "John Smith introduced Jane Doe to johnsmithers"

	optimized := s.ScanLine(line, true)
	s.SetRecords(defaultRecords()) // purge cache between runs
	legacy := s.ScanLine(line, false)

	require.Len(t, legacy, len(optimized))
	for i := range legacy {
		assert.Equal(t, optimized[i].Start, legacy[i].Start)
		assert.Equal(t, optimized[i].End, legacy[i].End)
		assert.Equal(t, optimized[i].Text, legacy[i].Text)
	}
}

func TestScanLine_CacheHitRecorded(t *testing.T) {
	metrics := telemetry.NewScanMetrics(16)

	idx, err := index.New(16)
	require.NoError(t, err)
	idx.BuildIndexes(defaultRecords())
	s, err := New(idx, Options{Metrics: metrics})
	require.NoError(t, err)
	s.SetRecords(defaultRecords())

	line := "lunch with John Smith"
	first := s.ScanLine(line, true)
	second := s.ScanLine(line, true)

	assert.Equal(t, first, second)

	events := metrics.Events()
	require.Len(t, events, 2)
	assert.False(t, events[0].CacheHit)
	assert.True(t, events[1].CacheHit)
}

func TestSetRecords_PurgesCache(t *testing.T) {
	s := newTestScanner(t, defaultRecords())

	line := "lunch with John Smith"
	require.Len(t, s.ScanLine(line, true), 1)

	// Drop John Smith from the record set; cached result must not survive.
	s.SetRecords([]*person.Record{{FullName: "Jane Doe"}})

	assert.Empty(t, s.ScanLine(line, false), "stale cache entry surfaced after record change")
}

func TestScanLine_MultipleNamesOrderedByPosition(t *testing.T) {
	s := newTestScanner(t, defaultRecords())

	mentions := s.ScanLine("Jane Doe then John Smith", true)

	require.Len(t, mentions, 2)
	assert.Equal(t, "Jane Doe", mentions[0].Text)
	assert.Equal(t, "John Smith", mentions[1].Text)
	assert.Less(t, mentions[0].Start, mentions[1].Start)
}
