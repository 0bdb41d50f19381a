package metrics

import (
	"math"
	"sort"
	"sync"
	"time"
)

const defaultLatencyCapacity = 500

// Collector accumulates request counts and a bounded window of latency
// samples for the lifetime of the process.
type Collector struct {
	mu        sync.RWMutex
	startTime time.Time
	total     uint64
	byPath    map[string]uint64

	// Fixed-capacity ring of the most recent latency samples, in ms.
	latencies []float64
	pos       int
	filled    bool
}

// LatencySummary is the aggregate view over the current latency window.
type LatencySummary struct {
	Avg   float64 `json:"avg"`
	P50   float64 `json:"p50"`
	P95   float64 `json:"p95"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

// Snapshot is the JSON document served by /metrics.
type Snapshot struct {
	RequestsTotal  uint64            `json:"requests_total"`
	RequestsByPath map[string]uint64 `json:"requests_by_path"`
	UptimeSec      float64           `json:"uptime_sec"`
	LatencyMs      LatencySummary    `json:"latency_ms"`
}

func NewCollector() *Collector {
	return NewCollectorWithCapacity(defaultLatencyCapacity)
}

func NewCollectorWithCapacity(capacity int) *Collector {
	if capacity <= 0 {
		capacity = defaultLatencyCapacity
	}
	return &Collector{
		startTime: time.Now(),
		byPath:    make(map[string]uint64),
		latencies: make([]float64, capacity),
	}
}

// Record registers one completed request for path with the given latency.
func (c *Collector) Record(path string, latency time.Duration) {
	ms := float64(latency.Microseconds()) / 1000.0

	c.mu.Lock()
	defer c.mu.Unlock()

	c.total++
	c.byPath[path]++

	c.latencies[c.pos] = ms
	c.pos++
	if c.pos == len(c.latencies) {
		c.pos = 0
		c.filled = true
	}
}

// Snapshot computes the current aggregate view.
func (c *Collector) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	byPath := make(map[string]uint64, len(c.byPath))
	for path, count := range c.byPath {
		byPath[path] = count
	}

	return Snapshot{
		RequestsTotal:  c.total,
		RequestsByPath: byPath,
		UptimeSec:      round2(time.Since(c.startTime).Seconds()),
		LatencyMs:      c.summarize(),
	}
}

// Reset zeroes all counters and the latency window. Uptime keeps running.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.total = 0
	c.byPath = make(map[string]uint64)
	c.latencies = make([]float64, len(c.latencies))
	c.pos = 0
	c.filled = false
}

// Uptime reports how long the collector has been running.
func (c *Collector) Uptime() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Since(c.startTime)
}

func (c *Collector) summarize() LatencySummary {
	count := c.pos
	if c.filled {
		count = len(c.latencies)
	}
	if count == 0 {
		return LatencySummary{}
	}

	samples := make([]float64, count)
	copy(samples, c.latencies[:count])
	sort.Float64s(samples)

	var sum float64
	for _, s := range samples {
		sum += s
	}

	return LatencySummary{
		Avg:   round2(sum / float64(count)),
		P50:   round2(percentile(samples, 0.50)),
		P95:   round2(percentile(samples, 0.95)),
		Max:   round2(samples[count-1]),
		Count: count,
	}
}

// percentile picks from sorted samples by nearest-rank.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := int(math.Ceil(p*float64(len(sorted)))) - 1
	if rank < 0 {
		rank = 0
	}
	if rank >= len(sorted) {
		rank = len(sorted) - 1
	}
	return sorted[rank]
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
