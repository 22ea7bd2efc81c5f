// Package monitoring holds the process-wide diagnostic logger and the
// failure counters the control loop reports into. Counters exist so
// per-cycle recoveries (bad telemetry, failed solves) stay visible in
// operation without making any of them fatal.
package monitoring

import (
	"log"
	"sort"
	"sync"
	"sync/atomic"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Counter is a named monotonic event counter, safe for concurrent use.
type Counter struct {
	name string
	n    atomic.Int64
}

// Add increments the counter by one.
func (c *Counter) Add() { c.n.Add(1) }

// Value returns the current count.
func (c *Counter) Value() int64 { return c.n.Load() }

// Name returns the counter's registered name.
func (c *Counter) Name() string { return c.name }

var (
	countersMu sync.Mutex
	counters   = map[string]*Counter{}
)

// NewCounter registers and returns a counter with the given name.
// Calling it twice with the same name returns the same counter.
func NewCounter(name string) *Counter {
	countersMu.Lock()
	defer countersMu.Unlock()
	if c, ok := counters[name]; ok {
		return c
	}
	c := &Counter{name: name}
	counters[name] = c
	return c
}

// Snapshot returns all registered counters sorted by name.
func Snapshot() []*Counter {
	countersMu.Lock()
	defer countersMu.Unlock()
	out := make([]*Counter, 0, len(counters))
	for _, c := range counters {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// LogCounters writes every registered counter through Logf, typically
// at shutdown.
func LogCounters() {
	for _, c := range Snapshot() {
		Logf("counter %s=%d", c.Name(), c.Value())
	}
}
