// Package mentions aggregates name mentions across the document corpus.
//
// A full scan produces one MentionCount per canonical name, merging records
// of the same person from multiple company documents into a single bucket.
// Definition documents are excluded so a person's own bio never counts as a
// mention. Individual document read failures are logged and skipped; the
// scan always completes for the rest of the corpus.
package mentions

import (
	"context"
	"log/slog"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/peopledex/peopledex/internal/person"
	"github.com/peopledex/peopledex/internal/scanner"
	"github.com/peopledex/peopledex/internal/vault"
)

// taskLinePattern matches checkbox-bullet lines: a -, *, + or numbered-list
// marker followed by [ ], [x] or [X].
var taskLinePattern = regexp.MustCompile(`^\s*(?:[-*+]|\d+[.)])\s+\[(?: |x|X)\]`)

// IsTaskLine classifies a non-blank line as a task line.
func IsTaskLine(line string) bool {
	return taskLinePattern.MatchString(line)
}

// fileContribution is what one document adds to the canonical buckets.
type fileContribution struct {
	text int
	task int
}

// Counter orchestrates corpus-wide mention counting.
type Counter struct {
	mu sync.RWMutex

	store   vault.Store
	scanner *scanner.Scanner

	// counts maps canonical names to their aggregate buckets. The whole map
	// is replaced on each full scan.
	counts map[string]*person.MentionCount

	queue queue

	batchSize  int
	queueDelay time.Duration
	now        func() time.Time
}

// Options configures a Counter.
type Options struct {
	// BatchSize is how many queued documents one queue tick rescans (default 5).
	BatchSize int
	// QueueDelay is the pause between queue ticks (default 250ms).
	QueueDelay time.Duration
	// QueueCapacity bounds the rescan queue (default 256).
	QueueCapacity int
}

// NewCounter creates a counter over the given store and scanner.
func NewCounter(store vault.Store, lineScanner *scanner.Scanner, opts Options) *Counter {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 5
	}
	if opts.QueueDelay <= 0 {
		opts.QueueDelay = 250 * time.Millisecond
	}
	if opts.QueueCapacity <= 0 {
		opts.QueueCapacity = 256
	}

	return &Counter{
		store:      store,
		scanner:    lineScanner,
		counts:     make(map[string]*person.MentionCount),
		queue:      newQueue(opts.QueueCapacity),
		batchSize:  opts.BatchSize,
		queueDelay: opts.QueueDelay,
		now:        time.Now,
	}
}

// PerformFullScan rebuilds every mention count from scratch: all buckets are
// reset to zero for every known canonical name, then every non-definition
// document contributes its mentions. Previous counts are replaced, never
// merged.
func (c *Counter) PerformFullScan(ctx context.Context, records []*person.Record) error {
	start := c.now()

	c.scanner.SetRecords(records)

	counts := make(map[string]*person.MentionCount)
	for _, rec := range records {
		key := rec.Key()
		if key == "" {
			continue
		}
		if _, ok := counts[key]; !ok {
			counts[key] = person.NewMentionCount(key)
		}
	}

	c.mu.Lock()
	c.counts = counts
	c.mu.Unlock()

	paths, err := c.store.ListDocuments(ctx)
	if err != nil {
		return err
	}

	scanned, skipped := 0, 0
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}

		meta, err := c.store.ReadMetadata(ctx, path)
		if err != nil {
			slog.Warn("mention scan: unreadable document skipped",
				slog.String("path", path),
				slog.String("error", err.Error()))
			skipped++
			continue
		}
		if meta.IsDefinition() {
			continue
		}

		content, err := c.store.ReadDocument(ctx, path)
		if err != nil {
			slog.Warn("mention scan: read failed, document skipped",
				slog.String("path", path),
				slog.String("error", err.Error()))
			skipped++
			continue
		}

		c.applyFile(path, c.scanContent(content))
		scanned++
	}

	slog.Info("full mention scan complete",
		slog.Int("documents", scanned),
		slog.Int("skipped", skipped),
		slog.Int("people", len(counts)),
		slog.Duration("duration", c.now().Sub(start)))

	return nil
}

// scanContent scans one document body line by line and returns each
// mentioned canonical name's contribution. Blank lines are skipped; task
// lines count toward task mentions, everything else toward text mentions.
func (c *Counter) scanContent(content string) map[string]*fileContribution {
	contributions := make(map[string]*fileContribution)

	for _, line := range splitLines(content) {
		if isBlank(line) {
			continue
		}
		task := IsTaskLine(line)

		for _, m := range c.scanner.ScanLine(line, true) {
			if m.Record == nil {
				continue
			}
			key := m.Record.Key()
			fc, ok := contributions[key]
			if !ok {
				fc = &fileContribution{}
				contributions[key] = fc
			}
			if task {
				fc.task++
			} else {
				fc.text++
			}
		}
	}

	return contributions
}

// applyFile adds one document's contribution to the canonical buckets.
func (c *Counter) applyFile(path string, contributions map[string]*fileContribution) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	for key, fc := range contributions {
		bucket, ok := c.counts[key]
		if !ok {
			// Mentions only resolve against known records, so the bucket
			// exists unless the record set changed mid-scan.
			bucket = person.NewMentionCount(key)
			c.counts[key] = bucket
		}

		bucket.TextMentions += fc.text
		bucket.TaskMentions += fc.task
		bucket.TotalMentions += fc.text + fc.task
		bucket.LastUpdated = now
		bucket.Files[path] = &person.FileMentionCount{
			TextMentions: fc.text,
			TaskMentions: fc.task,
			LastScanned:  now,
		}
	}
}

// removeFileContribution subtracts a document's prior counts from every
// bucket that references it. Incremental rescans call this before re-adding
// fresh counts so per-file totals stay exact.
func (c *Counter) removeFileContribution(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, bucket := range c.counts {
		fc, ok := bucket.Files[path]
		if !ok {
			continue
		}
		bucket.TextMentions -= fc.TextMentions
		bucket.TaskMentions -= fc.TaskMentions
		bucket.TotalMentions -= fc.TextMentions + fc.TaskMentions
		bucket.LastUpdated = c.now()
		delete(bucket.Files, path)
	}
}

// RescanFile incrementally rescans one document: its prior contribution is
// subtracted, then fresh counts are added. Documents that became definition
// documents (or unreadable) simply lose their contribution.
func (c *Counter) RescanFile(ctx context.Context, path string) error {
	c.removeFileContribution(path)

	meta, err := c.store.ReadMetadata(ctx, path)
	if err != nil {
		slog.Warn("incremental rescan: unreadable document",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return err
	}
	if meta.IsDefinition() {
		return nil
	}

	content, err := c.store.ReadDocument(ctx, path)
	if err != nil {
		slog.Warn("incremental rescan: read failed",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return err
	}

	c.applyFile(path, c.scanContent(content))
	return nil
}

// GetMentionCount returns the bucket for a name (any casing/spacing), or nil
// if the canonical name is unknown. The returned value is a snapshot.
func (c *Counter) GetMentionCount(name string) *person.MentionCount {
	key := person.NormalizeName(name)

	c.mu.RLock()
	defer c.mu.RUnlock()

	bucket, ok := c.counts[key]
	if !ok {
		return nil
	}
	return copyBucket(bucket)
}

// NameCount pairs a canonical name with its total mention count.
type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// GetTopMentioned returns up to limit names ordered by descending total
// mentions, ties broken alphabetically.
func (c *Counter) GetTopMentioned(limit int) []NameCount {
	c.mu.RLock()
	results := make([]NameCount, 0, len(c.counts))
	for name, bucket := range c.counts {
		results = append(results, NameCount{Name: name, Count: bucket.TotalMentions})
	}
	c.mu.RUnlock()

	sort.Slice(results, func(i, j int) bool {
		if results[i].Count != results[j].Count {
			return results[i].Count > results[j].Count
		}
		return results[i].Name < results[j].Name
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// Counts returns a snapshot of every bucket keyed by canonical name.
func (c *Counter) Counts() map[string]*person.MentionCount {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snapshot := make(map[string]*person.MentionCount, len(c.counts))
	for name, bucket := range c.counts {
		snapshot[name] = copyBucket(bucket)
	}
	return snapshot
}

func copyBucket(bucket *person.MentionCount) *person.MentionCount {
	out := *bucket
	out.Files = make(map[string]*person.FileMentionCount, len(bucket.Files))
	for path, fc := range bucket.Files {
		fcCopy := *fc
		out.Files[path] = &fcCopy
	}
	return &out
}

// splitLines splits content on newlines, tolerating CRLF terminators.
func splitLines(content string) []string {
	lines := make([]string, 0, 64)
	start := 0
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			line := content[start:i]
			if len(line) > 0 && line[len(line)-1] == '\r' {
				line = line[:len(line)-1]
			}
			lines = append(lines, line)
			start = i + 1
		}
	}
	lines = append(lines, content[start:])
	return lines
}

func isBlank(line string) bool {
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case ' ', '\t', '\r':
		default:
			return false
		}
	}
	return true
}
