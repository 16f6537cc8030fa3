// Package telemetry collects per-scan performance metrics for diagnostics.
// All data is held in memory in a fixed-capacity ring buffer - nothing is
// reported externally.
package telemetry

import (
	"sync"
	"time"
)

// ScanEvent records one line-scan invocation.
type ScanEvent struct {
	Strategy   string
	Duration   time.Duration
	MatchCount int
	LineLength int
	CacheHit   bool
	Timestamp  time.Time
}

// CircularBuffer is a fixed-capacity FIFO buffer.
type CircularBuffer[T any] struct {
	items    []T
	head     int // next write position
	size     int
	capacity int
	mu       sync.RWMutex
}

// NewCircularBuffer creates a new circular buffer with the given capacity.
func NewCircularBuffer[T any](capacity int) *CircularBuffer[T] {
	if capacity <= 0 {
		capacity = 100
	}
	return &CircularBuffer[T]{
		items:    make([]T, capacity),
		capacity: capacity,
	}
}

// Add adds an item to the buffer. If full, the oldest item is evicted.
func (b *CircularBuffer[T]) Add(item T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.items[b.head] = item
	b.head = (b.head + 1) % b.capacity

	if b.size < b.capacity {
		b.size++
	}
}

// Items returns all items in FIFO order (oldest first).
func (b *CircularBuffer[T]) Items() []T {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.size == 0 {
		return nil
	}

	result := make([]T, 0, b.size)
	start := (b.head - b.size + b.capacity) % b.capacity
	for i := 0; i < b.size; i++ {
		result = append(result, b.items[(start+i)%b.capacity])
	}
	return result
}

// Len returns the current number of items.
func (b *CircularBuffer[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.size
}

// StrategySummary aggregates scan events for one strategy.
type StrategySummary struct {
	Strategy    string        `json:"strategy"`
	Scans       int           `json:"scans"`
	Matches     int           `json:"matches"`
	CacheHits   int           `json:"cache_hits"`
	TotalTime   time.Duration `json:"total_time"`
	AverageTime time.Duration `json:"average_time"`
	AverageLine int           `json:"average_line_length"`
}

// ScanMetrics records scan events and summarizes them per strategy.
type ScanMetrics struct {
	events *CircularBuffer[ScanEvent]
}

// NewScanMetrics creates a collector retaining the last capacity events.
func NewScanMetrics(capacity int) *ScanMetrics {
	return &ScanMetrics{events: NewCircularBuffer[ScanEvent](capacity)}
}

// Record adds one scan event.
func (m *ScanMetrics) Record(event ScanEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	m.events.Add(event)
}

// Events returns the retained events, oldest first.
func (m *ScanMetrics) Events() []ScanEvent {
	return m.events.Items()
}

// Summarize aggregates retained events by strategy.
func (m *ScanMetrics) Summarize() []StrategySummary {
	byStrategy := make(map[string]*StrategySummary)
	order := make([]string, 0, 4)
	lineTotals := make(map[string]int)

	for _, e := range m.events.Items() {
		s, ok := byStrategy[e.Strategy]
		if !ok {
			s = &StrategySummary{Strategy: e.Strategy}
			byStrategy[e.Strategy] = s
			order = append(order, e.Strategy)
		}
		s.Scans++
		s.Matches += e.MatchCount
		s.TotalTime += e.Duration
		lineTotals[e.Strategy] += e.LineLength
		if e.CacheHit {
			s.CacheHits++
		}
	}

	summaries := make([]StrategySummary, 0, len(order))
	for _, name := range order {
		s := byStrategy[name]
		if s.Scans > 0 {
			s.AverageTime = s.TotalTime / time.Duration(s.Scans)
			s.AverageLine = lineTotals[name] / s.Scans
		}
		summaries = append(summaries, *s)
	}
	return summaries
}
