package batch

import (
	"context"
	"sort"
	"sync"
)

// Collector is a Sink that keeps every result in memory
type Collector struct {
	mu      sync.Mutex
	results []Result
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Consume(_ context.Context, result Result) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, result)
	return nil
}

// Results returns the collected results in input order
func (c *Collector) Results() []Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Result, len(c.results))
	copy(out, c.results)
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}
