// Package profiler - Operation timing for evaluation pipelines.
package profiler

import (
	"sort"
	"sync"
	"time"
)

// TimeTracker tracks operation timing statistics.
type TimeTracker struct {
	name      string
	totalTime time.Duration
	minTime   time.Duration
	maxTime   time.Duration
	count     int64
}

// OperationStats is a snapshot of a TimeTracker.
type OperationStats struct {
	Name  string        `json:"name"  yaml:"name"`
	Count int64         `json:"count" yaml:"count"`
	Total time.Duration `json:"total" yaml:"total"`
	Min   time.Duration `json:"min"   yaml:"min"`
	Max   time.Duration `json:"max"   yaml:"max"`
	Mean  time.Duration `json:"mean"  yaml:"mean"`
}

// Profiler records how long named operations take. It is safe for concurrent use.
type Profiler struct {
	mu             sync.Mutex
	operationTimes map[string]*TimeTracker
}

// New creates an empty Profiler.
func New() *Profiler {
	return &Profiler{
		operationTimes: make(map[string]*TimeTracker),
	}
}

// StartOperation begins timing an operation.
//
// Arguments:
// - name: The name of the operation to track
//
// Returns:
// - A function to call when the operation completes
func (p *Profiler) StartOperation(name string) func() {
	start := time.Now()
	return func() {
		p.Record(name, time.Since(start))
	}
}

// Record adds one completed operation of the given duration.
func (p *Profiler) Record(name string, duration time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	tracker, exists := p.operationTimes[name]
	if !exists {
		tracker = &TimeTracker{
			name:    name,
			minTime: duration,
			maxTime: duration,
		}
		p.operationTimes[name] = tracker
	}

	tracker.totalTime += duration
	tracker.count++

	if duration < tracker.minTime {
		tracker.minTime = duration
	}
	if duration > tracker.maxTime {
		tracker.maxTime = duration
	}
}

// Summary returns the statistics of every operation, sorted by name.
func (p *Profiler) Summary() []OperationStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	stats := make([]OperationStats, 0, len(p.operationTimes))
	for _, tracker := range p.operationTimes {
		stats = append(stats, OperationStats{
			Name:  tracker.name,
			Count: tracker.count,
			Total: tracker.totalTime,
			Min:   tracker.minTime,
			Max:   tracker.maxTime,
			Mean:  tracker.totalTime / time.Duration(tracker.count),
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		return stats[i].Name < stats[j].Name
	})
	return stats
}
