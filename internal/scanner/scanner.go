package scanner

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/peopledex/peopledex/internal/index"
	"github.com/peopledex/peopledex/internal/person"
	"github.com/peopledex/peopledex/internal/telemetry"
)

// Scanner detects name occurrences in lines of text.
//
// The scanner owns a bounded per-line result cache keyed by the exact line
// text. The cache is purged whenever the record set changes, so stale results
// can never surface.
type Scanner struct {
	mu sync.RWMutex

	index *index.Index
	// names holds every known canonical name, sorted, longest first within
	// equal prefixes is irrelevant: each name is matched independently.
	names []string
	// byName maps a canonical name to its records; mentions report the first.
	byName map[string][]*person.Record

	thresholds Thresholds
	cache      *lru.Cache[string, []Mention]
	metrics    *telemetry.ScanMetrics
}

// Options configures a Scanner.
type Options struct {
	Thresholds Thresholds
	CacheSize  int
	Metrics    *telemetry.ScanMetrics
}

// New creates a scanner backed by the given search index.
func New(idx *index.Index, opts Options) (*Scanner, error) {
	if idx == nil {
		return nil, fmt.Errorf("scanner: nil index")
	}
	if opts.Thresholds.ShortMax <= 0 || opts.Thresholds.MediumMax <= 0 {
		opts.Thresholds = DefaultThresholds()
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultCacheSize
	}

	cache, err := lru.New[string, []Mention](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create scan cache: %w", err)
	}

	return &Scanner{
		index:      idx,
		byName:     make(map[string][]*person.Record),
		thresholds: opts.Thresholds,
		cache:      cache,
		metrics:    opts.Metrics,
	}, nil
}

// SetRecords replaces the known record set and invalidates the scan cache.
// The backing index is rebuilt from the same records so the candidate
// structures never disagree with the scanner's names.
func (s *Scanner) SetRecords(records []*person.Record) {
	s.index.BuildIndexes(records)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.byName = make(map[string][]*person.Record)
	for _, rec := range records {
		key := rec.Key()
		if key == "" {
			continue
		}
		s.byName[key] = append(s.byName[key], rec)
	}

	s.names = make([]string, 0, len(s.byName))
	for name := range s.byName {
		s.names = append(s.names, name)
	}
	sort.Strings(s.names)

	s.cache.Purge()
}

// ScanLine returns every whole-word, case-insensitive occurrence of any known
// name in the line. Occurrences of the same name are reported separately;
// overlapping matches of different names are independent. An empty line
// returns an empty result without error.
//
// useOptimized selects the length-based strategy; false forces the legacy
// linear scan over every known name.
func (s *Scanner) ScanLine(line string, useOptimized bool) []Mention {
	if line == "" {
		return []Mention{}
	}

	start := time.Now()

	if cached, ok := s.cache.Get(line); ok {
		s.record(telemetry.ScanEvent{
			Strategy:   string(s.strategyFor(line, useOptimized)),
			Duration:   time.Since(start),
			MatchCount: len(cached),
			LineLength: len(line),
			CacheHit:   true,
		})
		return append([]Mention(nil), cached...)
	}

	strategy := s.strategyFor(line, useOptimized)

	var mentions []Mention
	switch strategy {
	case StrategyIndexed:
		mentions = s.scanIndexed(line)
	case StrategyFuzzy:
		mentions = s.scanFuzzy(line)
	default:
		mentions = s.scanLinear(line, strategy)
	}

	sort.Slice(mentions, func(i, j int) bool {
		if mentions[i].Start != mentions[j].Start {
			return mentions[i].Start < mentions[j].Start
		}
		return mentions[i].End < mentions[j].End
	})

	s.cache.Add(line, mentions)

	s.record(telemetry.ScanEvent{
		Strategy:   string(strategy),
		Duration:   time.Since(start),
		MatchCount: len(mentions),
		LineLength: len(line),
	})

	if len(mentions) > 0 {
		slog.Debug("line scan matched",
			slog.String("strategy", string(strategy)),
			slog.Int("matches", len(mentions)),
			slog.Int("line_length", len(line)))
	}

	return mentions
}

// strategyFor selects the detection strategy for a line.
func (s *Scanner) strategyFor(line string, useOptimized bool) Strategy {
	if !useOptimized {
		return StrategyLegacy
	}
	switch {
	case len(line) <= s.thresholds.ShortMax:
		return StrategyIndexed
	case len(line) <= s.thresholds.MediumMax:
		return StrategyDirect
	default:
		return StrategyFuzzy
	}
}

// scanLinear checks every known name against the line. Used for the direct
// (medium line) and legacy strategies.
func (s *Scanner) scanLinear(line string, strategy Strategy) []Mention {
	s.mu.RLock()
	names := s.names
	s.mu.RUnlock()

	var mentions []Mention
	for _, name := range names {
		mentions = append(mentions, s.occurrences(line, name, strategy)...)
	}
	return mentions
}

// scanIndexed resolves short lines through the prefix index: each word start
// in the line is a potential name start, and the prefix index narrows the
// candidate names to verify at that offset.
func (s *Scanner) scanIndexed(line string) []Mention {
	lower := strings.ToLower(line)

	var mentions []Mention
	seen := make(map[string]struct{})

	for _, start := range wordStarts(lower) {
		word := wordAt(lower, start)
		for _, name := range s.index.NamesWithPrefix(word) {
			if _, ok := s.knownName(name); !ok {
				continue
			}
			end := start + len(name)
			if end > len(lower) || lower[start:end] != name {
				continue
			}
			if !person.IsWordBoundary(line, start, end) {
				continue
			}
			spanKey := fmt.Sprintf("%s:%d", name, start)
			if _, dup := seen[spanKey]; dup {
				continue
			}
			seen[spanKey] = struct{}{}
			mentions = append(mentions, s.mention(line, name, start, end, StrategyIndexed))
		}
	}
	return mentions
}

// scanFuzzy handles long lines: fuzzy keys of 1..3-word windows of the line
// select candidate names from the fuzzy index, a bigram check discards
// unrelated candidates cheaply, and survivors are verified with an exact
// substring scan.
func (s *Scanner) scanFuzzy(line string) []Mention {
	candidates := make(map[string]struct{})

	words := person.Tokenize(line)
	for width := 1; width <= 3; width++ {
		for i := 0; i+width <= len(words); i++ {
			key := person.FuzzyKey(strings.Join(words[i:i+width], " "))
			for _, name := range s.index.NamesWithFuzzyKey(key) {
				candidates[name] = struct{}{}
			}
		}
	}

	names := make([]string, 0, len(candidates))
	for name := range candidates {
		if _, ok := s.knownName(name); !ok {
			continue
		}
		if !s.index.SharesBigram(name, line) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var mentions []Mention
	for _, name := range names {
		mentions = append(mentions, s.occurrences(line, name, StrategyFuzzy)...)
	}
	return mentions
}

// occurrences finds every whole-word occurrence of one canonical name,
// repeated until no more are found.
func (s *Scanner) occurrences(line, name string, strategy Strategy) []Mention {
	lower := strings.ToLower(line)

	var mentions []Mention
	offset := 0
	for offset < len(lower) {
		idx := strings.Index(lower[offset:], name)
		if idx < 0 {
			break
		}
		start := offset + idx
		end := start + len(name)
		if person.IsWordBoundary(line, start, end) {
			mentions = append(mentions, s.mention(line, name, start, end, strategy))
			offset = end
		} else {
			offset = start + 1
		}
	}
	return mentions
}

// mention builds a Mention for a verified span.
func (s *Scanner) mention(line, name string, start, end int, strategy Strategy) Mention {
	records, _ := s.knownName(name)
	var rec *person.Record
	if len(records) > 0 {
		rec = records[0]
	}
	return Mention{
		Record:   rec,
		Start:    start,
		End:      end,
		Text:     line[start:end],
		Strategy: strategy,
	}
}

// knownName returns the records for a canonical name known to this scanner.
func (s *Scanner) knownName(name string) ([]*person.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records, ok := s.byName[name]
	return records, ok
}

// record emits a telemetry event if a collector is configured.
func (s *Scanner) record(event telemetry.ScanEvent) {
	if s.metrics != nil {
		s.metrics.Record(event)
	}
}

// wordStarts returns the byte offsets where words begin in the line.
// Runes are decoded so names with non-ASCII letters get word starts too.
func wordStarts(lower string) []int {
	var starts []int
	inWord := false
	for i, r := range lower {
		isWord := person.IsWordRune(r)
		if isWord && !inWord {
			starts = append(starts, i)
		}
		inWord = isWord
	}
	return starts
}

// wordAt returns the word beginning at the given byte offset.
func wordAt(lower string, start int) string {
	end := start
	for end < len(lower) {
		r, size := utf8.DecodeRuneInString(lower[end:])
		if !person.IsWordRune(r) {
			break
		}
		end += size
	}
	return lower[start:end]
}
