package parser

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dgallion1/pdfsuite/internal/document"
)

type sample struct {
	timestamp  time.Time
	durationMs int64
}

// StatsSnapshot is a point-in-time aggregate of adapter latency samples.
type StatsSnapshot struct {
	Count int     `json:"count"`
	MinMs int64   `json:"min_ms"`
	MaxMs int64   `json:"max_ms"`
	AvgMs float64 `json:"avg_ms"`
	P50Ms float64 `json:"p50_ms"`
	P95Ms float64 `json:"p95_ms"`
	P99Ms float64 `json:"p99_ms"`
}

// LatencyStats tracks recent call latencies within a rolling window.
type LatencyStats struct {
	mu      sync.Mutex
	samples []sample
	maxAge  time.Duration
}

func NewLatencyStats(maxAge time.Duration) *LatencyStats {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &LatencyStats{
		samples: make([]sample, 0, 256),
		maxAge:  maxAge,
	}
}

func (s *LatencyStats) Record(durationMs int64) {
	if durationMs < 0 {
		durationMs = 0
	}
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	s.samples = append(s.samples, sample{
		timestamp:  now,
		durationMs: durationMs,
	})
}

func (s *LatencyStats) Snapshot() StatsSnapshot {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	if len(s.samples) == 0 {
		return StatsSnapshot{}
	}

	values := make([]int64, 0, len(s.samples))
	var sum int64
	for _, sm := range s.samples {
		values = append(values, sm.durationMs)
		sum += sm.durationMs
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

	return StatsSnapshot{
		Count: len(values),
		MinMs: values[0],
		MaxMs: values[len(values)-1],
		AvgMs: float64(sum) / float64(len(values)),
		P50Ms: percentile(values, 50),
		P95Ms: percentile(values, 95),
		P99Ms: percentile(values, 99),
	}
}

func (s *LatencyStats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.maxAge)
	writeIdx := 0
	for _, sm := range s.samples {
		if !sm.timestamp.Before(cutoff) {
			s.samples[writeIdx] = sm
			writeIdx++
		}
	}
	s.samples = s.samples[:writeIdx]
}

func percentile(sortedValues []int64, pct float64) float64 {
	if len(sortedValues) == 0 {
		return 0
	}
	if pct <= 0 {
		return float64(sortedValues[0])
	}
	if pct >= 100 {
		return float64(sortedValues[len(sortedValues)-1])
	}

	index := (float64(len(sortedValues)-1) * pct) / 100.0
	lower := int(index)
	upper := lower + 1
	if upper >= len(sortedValues) {
		return float64(sortedValues[lower])
	}
	weight := index - float64(lower)
	lo := float64(sortedValues[lower])
	hi := float64(sortedValues[upper])
	return lo + ((hi - lo) * weight)
}

// AdapterStats keeps one latency window per adapter operation.
type AdapterStats struct {
	Parse     *LatencyStats
	PageText  *LatencyStats
	Thumbnail *LatencyStats
	Write     *LatencyStats
}

func NewAdapterStats(maxAge time.Duration) *AdapterStats {
	return &AdapterStats{
		Parse:     NewLatencyStats(maxAge),
		PageText:  NewLatencyStats(maxAge),
		Thumbnail: NewLatencyStats(maxAge),
		Write:     NewLatencyStats(maxAge),
	}
}

// Snapshot returns every window keyed by operation name.
func (s *AdapterStats) Snapshot() map[string]StatsSnapshot {
	return map[string]StatsSnapshot{
		"parse":     s.Parse.Snapshot(),
		"page_text": s.PageText.Snapshot(),
		"thumbnail": s.Thumbnail.Snapshot(),
		"write":     s.Write.Snapshot(),
	}
}

type instrumented struct {
	next  Adapter
	stats *AdapterStats
}

// Instrument wraps next so every call records its latency in stats.
func Instrument(next Adapter, stats *AdapterStats) Adapter {
	return &instrumented{next: next, stats: stats}
}

func since(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}

func (a *instrumented) Parse(ctx context.Context, name string, data []byte) (*document.Document, error) {
	start := time.Now()
	defer func() { a.stats.Parse.Record(since(start)) }()
	return a.next.Parse(ctx, name, data)
}

func (a *instrumented) PageText(ctx context.Context, doc *document.Document, index int) (string, error) {
	start := time.Now()
	defer func() { a.stats.PageText.Record(since(start)) }()
	return a.next.PageText(ctx, doc, index)
}

func (a *instrumented) RenderThumbnail(ctx context.Context, doc *document.Document, index int) (document.Thumbnail, error) {
	start := time.Now()
	defer func() { a.stats.Thumbnail.Record(since(start)) }()
	return a.next.RenderThumbnail(ctx, doc, index)
}

func (a *instrumented) Write(ctx context.Context, parts ...document.Selection) ([]byte, error) {
	start := time.Now()
	defer func() { a.stats.Write.Record(since(start)) }()
	return a.next.Write(ctx, parts...)
}

func (a *instrumented) RenderHighlighted(ctx context.Context, doc *document.Document, index int, terms []string) (document.Thumbnail, error) {
	start := time.Now()
	defer func() { a.stats.Thumbnail.Record(since(start)) }()
	if h, ok := a.next.(Highlighter); ok {
		return h.RenderHighlighted(ctx, doc, index, terms)
	}
	return a.next.RenderThumbnail(ctx, doc, index)
}
