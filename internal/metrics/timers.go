// Package metrics measures how long each stage of a report run takes.
package metrics

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

type Timers struct {
	Timers map[string]*Timer `json:"Timers,omitempty"`
	last   string
	now    func() time.Time
}

func NewTimers() Timers {
	return Timers{Timers: make(map[string]*Timer), now: time.Now}
}

// set starts a timer, or stops it when it already exists.
func (ts *Timers) set(k string) {
	if ts.now == nil {
		ts.now = time.Now
	}
	if _, ok := ts.Timers[k]; !ok {
		ts.Timers[k] = &Timer{start: ts.now()}
	} else {
		ts.Timers[k].Total = ts.now().Sub(ts.Timers[k].start).Seconds()
	}
}

// Set check last timer, stop and add a new one (lap).
func (ts *Timers) Set(k string) {
	if ts.last != "" {
		ts.set(ts.last)
	}
	ts.set(k)
	ts.last = k
}

// Add a new timer, or stop an existing one.
func (ts *Timers) Add(k string) {
	ts.set(k)
}

// String renders the stopped timers sorted by name, e.g. "parse=0.010s render=0.002s".
func (ts *Timers) String() string {
	keys := make([]string, 0, len(ts.Timers))
	for k := range ts.Timers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, fmt.Sprintf("%s=%.3fs", k, ts.Timers[k].Total))
	}
	return strings.Join(out, " ")
}

type Timer struct {
	start time.Time

	// Total time in seconds
	Total float64 `json:"seconds"`
}
