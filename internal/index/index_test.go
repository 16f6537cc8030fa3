package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/peopledex/peopledex/internal/errors"
	"github.com/peopledex/peopledex/internal/person"
)

func testRecords() []*person.Record {
	return []*person.Record{
		{
			FullName:   "John Smith",
			Position:   "Backend Engineer",
			Department: "Platform",
			Company:    person.Company{Name: "Acme"},
		},
		{
			FullName: "Bob Johnson",
			Position: "Designer",
			Company:  person.Company{Name: "Acme"},
		},
		{
			FullName:   "Jane Doe",
			Position:   "Engineering Manager",
			Department: "Platform",
			Company:    person.Company{Name: "Globex"},
		},
	}
}

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := New(16)
	require.NoError(t, err)
	idx.BuildIndexes(testRecords())
	return idx
}

func TestFindByName_CaseInsensitive(t *testing.T) {
	idx := newTestIndex(t)

	// Every casing/spacing variant resolves to the same record.
	for _, query := range []string{"John Smith", "john smith", "JOHN  SMITH", " john\tsmith "} {
		records, err := idx.FindByName(query, 10)
		require.NoError(t, err, "query %q", query)
		require.Len(t, records, 1, "query %q", query)
		assert.Equal(t, "John Smith", records[0].FullName)
	}
}

func TestFindByName_NoMatch(t *testing.T) {
	idx := newTestIndex(t)

	records, err := idx.FindByName("Nobody Here", 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFindByName_EmptyQueryRejected(t *testing.T) {
	idx := newTestIndex(t)

	for _, query := range []string{"", "   ", "\t"} {
		_, err := idx.FindByName(query, 10)
		require.Error(t, err, "query %q", query)
		assert.Equal(t, apperrors.ErrCodeInvalidQuery, apperrors.GetCode(err))
	}
}

func TestFindByPrefix_AnchorsAtNameStart(t *testing.T) {
	idx := newTestIndex(t)

	// "jo" matches "John Smith" but not "Bob Johnson": the prefix anchors
	// at the start of the whole name, not at word starts.
	records, err := idx.FindByPrefix("jo", 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "John Smith", records[0].FullName)
}

func TestFindByPrefix_FullNameIsItsOwnPrefix(t *testing.T) {
	idx := newTestIndex(t)

	records, err := idx.FindByPrefix("jane doe", 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Jane Doe", records[0].FullName)
}

func TestFindFuzzy_ToleratesMisspelling(t *testing.T) {
	idx := newTestIndex(t)

	records, err := idx.FindFuzzy("Jhon Smith", 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "John Smith", records[0].FullName)
}

func TestFindByCompany(t *testing.T) {
	idx := newTestIndex(t)

	records, err := idx.FindByCompany("acme", 10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	records, err = idx.FindByCompany("Globex", 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Jane Doe", records[0].FullName)
}

func TestFindByName_LimitApplied(t *testing.T) {
	idx, err := New(16)
	require.NoError(t, err)
	idx.BuildIndexes([]*person.Record{
		{FullName: "John Smith", Company: person.Company{Name: "Acme"}},
		{FullName: "John Smith", Company: person.Company{Name: "Globex"}},
	})

	records, err := idx.FindByName("john smith", 1)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestCache_HitCounterIncrements(t *testing.T) {
	idx := newTestIndex(t)

	_, err := idx.FindByName("john smith", 10)
	require.NoError(t, err)
	_, err = idx.FindByName("john smith", 10)
	require.NoError(t, err)

	stats := idx.Stats()
	assert.Equal(t, 1, stats["cache_hits"])
	assert.Equal(t, 1, stats["cache_misses"])
}

func TestCache_DistinctLimitsAreDistinctEntries(t *testing.T) {
	idx := newTestIndex(t)

	_, err := idx.FindByName("john smith", 1)
	require.NoError(t, err)
	_, err = idx.FindByName("john smith", 10)
	require.NoError(t, err)

	stats := idx.Stats()
	assert.Equal(t, 0, stats["cache_hits"])
	assert.Equal(t, 2, stats["cache_misses"])
}

func TestCache_EvictsOldestWhenFull(t *testing.T) {
	// Given: an index with a two-entry cache and no repeat lookups
	idx, err := New(2)
	require.NoError(t, err)
	idx.BuildIndexes(testRecords())

	// When: three distinct queries fill the cache past capacity
	_, err = idx.FindByName("john smith", 10)
	require.NoError(t, err)
	_, err = idx.FindByName("jane doe", 10)
	require.NoError(t, err)
	_, err = idx.FindByName("bob johnson", 10)
	require.NoError(t, err)

	// Then: the oldest entry was evicted, so repeating it misses again
	_, err = idx.FindByName("john smith", 10)
	require.NoError(t, err)
	stats := idx.Stats()
	assert.Equal(t, 0, stats["cache_hits"])
	assert.Equal(t, 4, stats["cache_misses"])
}

func TestBuildIndexes_ReplacesAndPurges(t *testing.T) {
	idx := newTestIndex(t)

	// Warm the cache.
	_, err := idx.FindByName("john smith", 10)
	require.NoError(t, err)

	// Rebuild with a different record set.
	idx.BuildIndexes([]*person.Record{{FullName: "New Person"}})

	records, err := idx.FindByName("john smith", 10)
	require.NoError(t, err)
	assert.Empty(t, records, "old records must not survive a rebuild")

	records, err = idx.FindByName("new person", 10)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestNamesWithPrefix(t *testing.T) {
	idx := newTestIndex(t)

	assert.Equal(t, []string{"john smith"}, idx.NamesWithPrefix("john"))
	assert.Nil(t, idx.NamesWithPrefix("zzz"))
	assert.Nil(t, idx.NamesWithPrefix(""))
}

func TestNamesWithFuzzyKey(t *testing.T) {
	idx := newTestIndex(t)

	key := person.FuzzyKey("john smith")
	assert.Contains(t, idx.NamesWithFuzzyKey(key), "john smith")
}

func TestSharesBigram(t *testing.T) {
	idx := newTestIndex(t)

	assert.True(t, idx.SharesBigram("john smith", "I saw JOHN yesterday"))
	assert.False(t, idx.SharesBigram("john smith", "zzz qqq vvv"))
}

func TestSearchFullText_Ranking(t *testing.T) {
	idx := newTestIndex(t)

	// "john" is an exact name word of John Smith (+10) and a substring of
	// Bob Johnson's name (+5); John Smith must rank first.
	records, err := idx.SearchFullText("john", 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "John Smith", records[0].FullName)
	assert.Equal(t, "Bob Johnson", records[1].FullName)
}

func TestSearchFullText_MatchesOtherFields(t *testing.T) {
	idx := newTestIndex(t)

	records, err := idx.SearchFullText("platform", 10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	records, err = idx.SearchFullText("globex", 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Jane Doe", records[0].FullName)
}

func TestSearchFullText_NotesAreNotSearched(t *testing.T) {
	// Given: a record whose notes hold a word found nowhere else
	idx, err := New(16)
	require.NoError(t, err)
	idx.BuildIndexes([]*person.Record{
		{
			FullName: "Jane Doe",
			Position: "Designer",
			Notes:    "met at the zephyr conference",
		},
	})

	// When: that word is queried
	records, err := idx.SearchFullText("zephyr", 10)

	// Then: notes contribute neither candidates nor score
	require.NoError(t, err)
	assert.Empty(t, records)

	// The position still scores as usual.
	records, err = idx.SearchFullText("designer", 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Jane Doe", records[0].FullName)
}

func TestSearchFullText_EmptyQueryRejected(t *testing.T) {
	idx := newTestIndex(t)

	_, err := idx.SearchFullText("  ?! ", 10)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInvalidQuery, apperrors.GetCode(err))
}
