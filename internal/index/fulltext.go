package index

import (
	"sort"
	"strings"

	"github.com/peopledex/peopledex/internal/person"
)

// Relevance contributions per matched query word.
const (
	scoreExactNameWord  = 10 // query word equals a word of the person's name
	scoreNameSubstring  = 5  // query word is a substring of the name
	scoreCompanyWord    = 3  // query word matches the company name
	scoreOtherSubstring = 2  // query word occurs in position or department
)

// SearchFullText scores records against every word of the query and returns
// them ordered by descending relevance, ties broken alphabetically by name.
func (idx *Index) SearchFullText(query string, limit int) ([]*person.Record, error) {
	words := person.Tokenize(query)
	if len(words) == 0 {
		return nil, errEmptyQuery("query")
	}

	key := cacheKey("fulltext", strings.Join(words, " "), limit)
	if cached, ok := idx.cacheGet(key); ok {
		return cached, nil
	}

	idx.mu.RLock()
	names := idx.fullTextCandidates(words)

	type scored struct {
		name  string
		rec   *person.Record
		score int
	}
	var results []scored
	for _, name := range names {
		for _, rec := range idx.byName[name] {
			if score := scoreRecord(rec, words); score > 0 {
				results = append(results, scored{name: name, rec: rec, score: score})
			}
		}
	}
	idx.mu.RUnlock()

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].score != results[j].score {
			return results[i].score > results[j].score
		}
		return results[i].name < results[j].name
	})

	records := make([]*person.Record, 0, len(results))
	for _, s := range results {
		records = append(records, s.rec)
	}
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	idx.cachePut(key, records)
	return records, nil
}

// fullTextCandidates collects canonical names whose indexed words exactly
// match or contain a query word. Caller holds mu.
func (idx *Index) fullTextCandidates(queryWords []string) []string {
	set := make(map[string]struct{})
	for _, qw := range queryWords {
		for indexed, names := range idx.words {
			if indexed == qw || strings.Contains(indexed, qw) {
				for name := range names {
					set[name] = struct{}{}
				}
			}
		}
	}

	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// scoreRecord sums the relevance contributions of every query word against
// one record.
func scoreRecord(rec *person.Record, queryWords []string) int {
	name := rec.Key()
	nameWords := make(map[string]struct{})
	for _, w := range person.Tokenize(rec.FullName) {
		nameWords[w] = struct{}{}
	}

	company := person.NormalizeName(rec.Company.Name)
	position := strings.ToLower(rec.Position)
	department := strings.ToLower(rec.Department)

	score := 0
	for _, qw := range queryWords {
		switch {
		case hasWord(nameWords, qw):
			score += scoreExactNameWord
		case strings.Contains(name, qw):
			score += scoreNameSubstring
		case company != "" && strings.Contains(company, qw):
			score += scoreCompanyWord
		case strings.Contains(position, qw) ||
			strings.Contains(department, qw):
			score += scoreOtherSubstring
		}
	}
	return score
}

func hasWord(words map[string]struct{}, w string) bool {
	_, ok := words[w]
	return ok
}
