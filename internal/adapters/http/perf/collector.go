// Package perf keeps a rolling window of request and query timings for the
// admin performance page.
package perf

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRingSize is the number of timings kept in memory.
const DefaultRingSize = 5000

// Kind tells a request timing from a query timing.
type Kind uint8

const (
	KindRequest Kind = iota
	KindQuery
)

// Entry is one timing.
type Entry struct {
	Kind       Kind
	Label      string // "GET /horarios" or "SELECT booking"
	StatusCode int    // zero for queries
	DurationMs float64
	At         time.Time
}

// Collector is a fixed-size ring of entries. Once full, the oldest entry is
// overwritten. Nothing is aggregated until Snapshot is called.
type Collector struct {
	mu      sync.Mutex
	ring    []Entry
	next    int
	written atomic.Int64
}

// NewCollector creates a collector holding up to size entries.
// A non-positive size falls back to DefaultRingSize.
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Collector{ring: make([]Entry, size)}
}

// Record stores e, overwriting the oldest entry when the ring is full.
func (c *Collector) Record(e Entry) {
	c.mu.Lock()
	c.ring[c.next] = e
	c.next = (c.next + 1) % len(c.ring)
	c.mu.Unlock()
	c.written.Add(1)
}

// TotalRecorded returns how many entries were ever recorded, including overwritten ones.
func (c *Collector) TotalRecorded() int64 {
	return c.written.Load()
}

// LabelStat aggregates the timings of one label.
type LabelStat struct {
	Label   string
	Count   int
	AvgMs   float64
	MaxMs   float64
	totalMs float64
}

// Percentiles are the p50/p95/p99 of a set of durations, in milliseconds.
type Percentiles struct {
	P50, P95, P99 float64
}

// Snapshot is the aggregated view of the ring since a point in time.
type Snapshot struct {
	Since          time.Time
	Requests       int
	ServerErrors   int // responses with status >= 500
	Queries        int
	Request        Percentiles
	Query          Percentiles
	SlowestPaths   []LabelStat
	SlowestQueries []LabelStat
}

// Snapshot aggregates the entries recorded at or after since and keeps the
// topN slowest labels of each kind by average duration.
func (c *Collector) Snapshot(since time.Time, topN int) Snapshot {
	c.mu.Lock()
	entries := make([]Entry, len(c.ring))
	copy(entries, c.ring)
	c.mu.Unlock()

	snap := Snapshot{Since: since}
	var reqDur, qDur []float64
	reqStats := make(map[string]*LabelStat)
	qStats := make(map[string]*LabelStat)

	for _, e := range entries {
		if e.At.IsZero() || e.At.Before(since) {
			continue
		}
		if e.Kind == KindQuery {
			snap.Queries++
			qDur = append(qDur, e.DurationMs)
			add(qStats, e)
			continue
		}
		snap.Requests++
		if e.StatusCode >= 500 {
			snap.ServerErrors++
		}
		reqDur = append(reqDur, e.DurationMs)
		add(reqStats, e)
	}

	snap.Request = percentiles(reqDur)
	snap.Query = percentiles(qDur)
	snap.SlowestPaths = slowest(reqStats, topN)
	snap.SlowestQueries = slowest(qStats, topN)
	return snap
}

func add(stats map[string]*LabelStat, e Entry) {
	s, ok := stats[e.Label]
	if !ok {
		s = &LabelStat{Label: e.Label}
		stats[e.Label] = s
	}
	s.Count++
	s.totalMs += e.DurationMs
	s.MaxMs = math.Max(s.MaxMs, e.DurationMs)
}

func percentiles(durations []float64) Percentiles {
	if len(durations) == 0 {
		return Percentiles{}
	}
	sort.Float64s(durations)
	return Percentiles{
		P50: rank(durations, 50),
		P95: rank(durations, 95),
		P99: rank(durations, 99),
	}
}

// rank interpolates the p-th percentile of a sorted, non-empty slice.
func rank(sorted []float64, p float64) float64 {
	pos := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

func slowest(stats map[string]*LabelStat, n int) []LabelStat {
	out := make([]LabelStat, 0, len(stats))
	for _, s := range stats {
		s.AvgMs = s.totalMs / float64(s.Count)
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AvgMs != out[j].AvgMs {
			return out[i].AvgMs > out[j].AvgMs
		}
		return out[i].Label < out[j].Label
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
