// Package index maintains the in-memory search structures over person
// records: an exact-name map, a company map, a whole-name prefix index, a
// character bigram index, a fuzzy phonetic-key index, and a full-text word
// index. All lookups are case-insensitive and served from these structures;
// a bounded LRU cache fronts the query operations.
package index

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	apperrors "github.com/peopledex/peopledex/internal/errors"
	"github.com/peopledex/peopledex/internal/person"
)

// DefaultCacheSize bounds the query result cache.
const DefaultCacheSize = 1000

// nameSet maps an index key to the set of canonical names filed under it.
type nameSet map[string]map[string]struct{}

func (ns nameSet) add(key, name string) {
	set, ok := ns[key]
	if !ok {
		set = make(map[string]struct{})
		ns[key] = set
	}
	set[name] = struct{}{}
}

func (ns nameSet) sortedNames(key string) []string {
	set, ok := ns[key]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Index holds every search structure. A full rebuild replaces all of them
// atomically and purges the cache, so queries never see a half-built state.
type Index struct {
	mu sync.RWMutex

	byName    map[string][]*person.Record
	byCompany map[string][]*person.Record

	prefixes nameSet
	bigrams  nameSet
	fuzzy    nameSet
	words    nameSet

	cache     *lru.Cache[string, []*person.Record]
	cacheHits int
	cacheMiss int
}

// New creates an empty index with a bounded result cache. The cache evicts
// its least recently used entry when full.
func New(cacheSize int) (*Index, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, []*person.Record](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create result cache: %w", err)
	}

	idx := &Index{cache: cache}
	idx.reset()
	return idx, nil
}

// reset replaces all structures with empty ones. Caller holds mu (or owns
// the index exclusively).
func (idx *Index) reset() {
	idx.byName = make(map[string][]*person.Record)
	idx.byCompany = make(map[string][]*person.Record)
	idx.prefixes = make(nameSet)
	idx.bigrams = make(nameSet)
	idx.fuzzy = make(nameSet)
	idx.words = make(nameSet)
}

// BuildIndexes rebuilds every structure from the given records. Previous
// contents are replaced, not merged, and the result cache is purged.
func (idx *Index) BuildIndexes(records []*person.Record) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.reset()

	for _, rec := range records {
		name := rec.Key()
		if name == "" {
			continue
		}
		idx.byName[name] = append(idx.byName[name], rec)

		if rec.Company.Name != "" {
			company := person.NormalizeName(rec.Company.Name)
			idx.byCompany[company] = append(idx.byCompany[company], rec)
		}

		for i := 1; i <= len(name); i++ {
			idx.prefixes.add(name[:i], name)
		}
		for i := 0; i+2 <= len(name); i++ {
			idx.bigrams.add(name[i:i+2], name)
		}
		idx.fuzzy.add(person.FuzzyKey(name), name)

		for _, word := range recordWords(rec) {
			idx.words.add(word, name)
		}
	}

	idx.cache.Purge()
}

// recordWords tokenizes every searchable field of a record.
func recordWords(rec *person.Record) []string {
	seen := make(map[string]struct{})
	var words []string

	fields := []string{rec.FullName, rec.Position, rec.Department, rec.Company.Name}
	for _, field := range fields {
		for _, word := range person.Tokenize(field) {
			if _, dup := seen[word]; dup {
				continue
			}
			seen[word] = struct{}{}
			words = append(words, word)
		}
	}
	return words
}

// Clear empties the index and cache.
func (idx *Index) Clear() {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.reset()
	idx.cache.Purge()
}

// FindByName returns records whose full name matches exactly, ignoring case
// and surrounding/repeated whitespace.
func (idx *Index) FindByName(name string, limit int) ([]*person.Record, error) {
	norm := person.NormalizeName(name)
	if norm == "" {
		return nil, errEmptyQuery("name")
	}

	key := cacheKey("name", norm, limit)
	if cached, ok := idx.cacheGet(key); ok {
		return cached, nil
	}

	idx.mu.RLock()
	records := capResults(idx.byName[norm], limit)
	idx.mu.RUnlock()

	idx.cachePut(key, records)
	return records, nil
}

// FindByCompany returns records belonging to the given company.
func (idx *Index) FindByCompany(company string, limit int) ([]*person.Record, error) {
	norm := person.NormalizeName(company)
	if norm == "" {
		return nil, errEmptyQuery("company")
	}

	key := cacheKey("company", norm, limit)
	if cached, ok := idx.cacheGet(key); ok {
		return cached, nil
	}

	idx.mu.RLock()
	records := capResults(idx.byCompany[norm], limit)
	idx.mu.RUnlock()

	idx.cachePut(key, records)
	return records, nil
}

// FindByPrefix returns records whose full name starts with the given prefix.
// The prefix anchors at the start of the whole name, not at word starts:
// "jo" finds "John Smith" but not "Bob Johnson".
func (idx *Index) FindByPrefix(prefix string, limit int) ([]*person.Record, error) {
	norm := person.NormalizeName(prefix)
	if norm == "" {
		return nil, errEmptyQuery("prefix")
	}

	key := cacheKey("prefix", norm, limit)
	if cached, ok := idx.cacheGet(key); ok {
		return cached, nil
	}

	idx.mu.RLock()
	records := capResults(idx.gatherNames(idx.prefixes.sortedNames(norm)), limit)
	idx.mu.RUnlock()

	idx.cachePut(key, records)
	return records, nil
}

// FindFuzzy returns records whose fuzzy key matches the query's fuzzy key,
// tolerating minor spelling differences.
func (idx *Index) FindFuzzy(query string, limit int) ([]*person.Record, error) {
	norm := person.NormalizeName(query)
	if norm == "" {
		return nil, errEmptyQuery("query")
	}

	key := cacheKey("fuzzy", norm, limit)
	if cached, ok := idx.cacheGet(key); ok {
		return cached, nil
	}

	idx.mu.RLock()
	records := capResults(idx.gatherNames(idx.fuzzy.sortedNames(person.FuzzyKey(norm))), limit)
	idx.mu.RUnlock()

	idx.cachePut(key, records)
	return records, nil
}

// gatherNames flattens records for a sorted list of canonical names.
// Caller holds mu.
func (idx *Index) gatherNames(names []string) []*person.Record {
	var records []*person.Record
	for _, name := range names {
		records = append(records, idx.byName[name]...)
	}
	return records
}

// NamesWithPrefix returns every canonical name starting with the prefix.
// Used by the line scanner to narrow candidates at a word offset.
func (idx *Index) NamesWithPrefix(prefix string) []string {
	if prefix == "" {
		return nil
	}
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.prefixes.sortedNames(prefix)
}

// NamesWithFuzzyKey returns every canonical name filed under a fuzzy key.
func (idx *Index) NamesWithFuzzyKey(key string) []string {
	if key == "" {
		return nil
	}
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.fuzzy.sortedNames(key)
}

// SharesBigram reports whether any bigram of the canonical name occurs in
// the text. A cheap pre-filter before exact substring verification.
func (idx *Index) SharesBigram(name, text string) bool {
	lower := strings.ToLower(text)
	for i := 0; i+2 <= len(name); i++ {
		if strings.Contains(lower, name[i:i+2]) {
			return true
		}
	}
	return false
}

// RecordsForName returns the records filed under a canonical name.
func (idx *Index) RecordsForName(name string) []*person.Record {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return append([]*person.Record(nil), idx.byName[name]...)
}

// Stats reports index sizes and cache effectiveness counters.
func (idx *Index) Stats() map[string]any {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	total := 0
	for _, records := range idx.byName {
		total += len(records)
	}

	return map[string]any{
		"people":       len(idx.byName),
		"records":      total,
		"companies":    len(idx.byCompany),
		"prefixes":     len(idx.prefixes),
		"bigrams":      len(idx.bigrams),
		"fuzzy_keys":   len(idx.fuzzy),
		"words":        len(idx.words),
		"cache_len":    idx.cache.Len(),
		"cache_hits":   idx.cacheHits,
		"cache_misses": idx.cacheMiss,
	}
}

func (idx *Index) cacheGet(key string) ([]*person.Record, bool) {
	records, ok := idx.cache.Get(key)
	idx.mu.Lock()
	if ok {
		idx.cacheHits++
	} else {
		idx.cacheMiss++
	}
	idx.mu.Unlock()
	if !ok {
		return nil, false
	}
	return append([]*person.Record(nil), records...), true
}

func (idx *Index) cachePut(key string, records []*person.Record) {
	idx.cache.Add(key, append([]*person.Record(nil), records...))
}

// cacheKey builds a collision-free cache key. NUL separators cannot occur
// in normalized query text.
func cacheKey(op, arg string, limit int) string {
	return op + "\x00" + arg + "\x00" + strconv.Itoa(limit)
}

func capResults(records []*person.Record, limit int) []*person.Record {
	out := append([]*person.Record(nil), records...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func errEmptyQuery(field string) error {
	return apperrors.New(apperrors.ErrCodeInvalidQuery,
		"search text must be a non-empty string", nil).WithDetail("field", field)
}
