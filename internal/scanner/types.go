// Package scanner finds whole-word, case-insensitive occurrences of known
// person names in single lines of text. The matching strategy is selected by
// line length: short lines use the prefix index, medium lines use a direct
// word-boundary scan, long lines prune candidates through the fuzzy-key and
// bigram indexes before verifying exact matches.
package scanner

import "github.com/peopledex/peopledex/internal/person"

// Strategy identifies which detection path resolved a mention.
type Strategy string

const (
	// StrategyIndexed resolves short lines through the prefix index.
	StrategyIndexed Strategy = "indexed"
	// StrategyDirect scans medium lines name-by-name with boundary checks.
	StrategyDirect Strategy = "direct"
	// StrategyFuzzy prunes candidates on long lines via fuzzy keys/bigrams.
	StrategyFuzzy Strategy = "fuzzy"
	// StrategyLegacy is the unconditional linear scan used when optimization
	// is explicitly disabled.
	StrategyLegacy Strategy = "legacy"
)

// Mention is one detected occurrence of a known name in a line.
type Mention struct {
	// Record is the matching person record. When several records share the
	// canonical name, the first indexed record is reported.
	Record *person.Record
	// Start and End delimit the matched character span ([Start, End)).
	Start int
	End   int
	// Text is the exact matched substring as it appears in the line.
	Text string
	// Strategy is the detection path that produced this mention.
	Strategy Strategy
}

// Thresholds selects the strategy by line length.
type Thresholds struct {
	// ShortMax is the maximum length for the indexed strategy.
	ShortMax int `yaml:"short_max" json:"short_max"`
	// MediumMax is the maximum length for the direct strategy; longer lines
	// use the fuzzy strategy.
	MediumMax int `yaml:"medium_max" json:"medium_max"`
}

// DefaultThresholds returns the default strategy thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{ShortMax: 120, MediumMax: 600}
}

// DefaultCacheSize bounds the per-line scan cache.
const DefaultCacheSize = 500
