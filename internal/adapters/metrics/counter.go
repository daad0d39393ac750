// Package metrics implements an in-process metrics tracker.
package metrics

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/bool64/stats"
)

var _ stats.Tracker = (*Counter)(nil)

// Sample is the value of one metric and label set.
type Sample struct {
	Name   string
	Labels string
	Value  float64
}

// Counter accumulates metric values per name and label set.
type Counter struct {
	mu     sync.Mutex
	values map[string]Sample
}

// NewCounter creates an empty Counter.
func NewCounter() *Counter {
	return &Counter{values: make(map[string]Sample)}
}

// Add increments the named metric.
func (c *Counter) Add(_ context.Context, name string, increment float64, labelsAndValues ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id, labels := series(name, labelsAndValues)
	s := c.values[id]
	s.Name, s.Labels = name, labels
	s.Value += increment
	c.values[id] = s
}

// Set sets the named metric to an absolute value.
func (c *Counter) Set(_ context.Context, name string, absolute float64, labelsAndValues ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id, labels := series(name, labelsAndValues)
	c.values[id] = Sample{Name: name, Labels: labels, Value: absolute}
}

// Total returns the sum of the named metric over all label sets.
func (c *Counter) Total(name string) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var total float64
	for _, s := range c.values {
		if s.Name == name {
			total += s.Value
		}
	}
	return total
}

// Snapshot returns all samples ordered by name and labels.
func (c *Counter) Snapshot() []Sample {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := slices.Sorted(maps.Keys(c.values))
	out := make([]Sample, len(ids))
	for i, id := range ids {
		out[i] = c.values[id]
	}
	return out
}

// series renders labels as k=v pairs in the given order. A trailing label without value is dropped.
func series(name string, labelsAndValues []string) (string, string) {
	pairs := make([]string, 0, len(labelsAndValues)/2)
	for i := 0; i+1 < len(labelsAndValues); i += 2 {
		pairs = append(pairs, labelsAndValues[i]+"="+labelsAndValues[i+1])
	}
	labels := strings.Join(pairs, ",")
	return name + "{" + labels + "}", labels
}
