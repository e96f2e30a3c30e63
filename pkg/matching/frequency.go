package matching

import (
	"sort"
	"sync"

	"github.com/Ramsey-B/clover/pkg/models"
)

// VectorFrequency is how often one distinct match vector has been observed
type VectorFrequency struct {
	Key    string
	Vector *models.MatchVector
	Count  int64
}

type frequencyEntry struct {
	vector *models.MatchVector
	count  int64
}

// FrequencyTable counts observations of each distinct match vector.
// Vectors are grouped by content (field, score and match flag).
type FrequencyTable struct {
	mu      sync.Mutex
	entries map[string]*frequencyEntry
	total   int64
}

// NewFrequencyTable creates an empty table
func NewFrequencyTable() *FrequencyTable {
	return &FrequencyTable{
		entries: make(map[string]*frequencyEntry),
	}
}

// Increment records one observation of v and returns the new count
func (t *FrequencyTable) Increment(v *models.MatchVector) int64 {
	key := v.Key()

	t.mu.Lock()
	defer t.mu.Unlock()

	t.total++
	entry, ok := t.entries[key]
	if !ok {
		t.entries[key] = &frequencyEntry{vector: v.Clone(), count: 1}
		return 1
	}
	entry.count++
	return entry.count
}

// Get returns the number of observations of v, 0 when never seen
func (t *FrequencyTable) Get(v *models.MatchVector) int64 {
	key := v.Key()

	t.mu.Lock()
	defer t.mu.Unlock()

	if entry, ok := t.entries[key]; ok {
		return entry.count
	}
	return 0
}

// Len returns the number of distinct vectors observed
func (t *FrequencyTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Total returns the number of observations across all vectors
func (t *FrequencyTable) Total() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total
}

// Snapshot returns a copy of every entry ordered by count descending, then key
func (t *FrequencyTable) Snapshot() []VectorFrequency {
	t.mu.Lock()
	out := make([]VectorFrequency, 0, len(t.entries))
	for key, entry := range t.entries {
		out = append(out, VectorFrequency{Key: key, Vector: entry.vector.Clone(), Count: entry.count})
	}
	t.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}
