package datatools

import (
	"fmt"
	"slices"
	"strings"

	"reports/internal/dataset"
)

// Count is one distinct value and how many times it was seen.
type Count struct {
	Value any
	N     int
}

// Counter is a frequency table keyed by value equality. It remembers the
// order in which values were first seen.
type Counter struct {
	index   map[any]int
	entries []Count
}

// NewCounter returns an empty Counter.
func NewCounter() *Counter { return &Counter{index: make(map[any]int)} }

// Add counts one occurrence of v.
func (c *Counter) Add(v any) {
	k := dataset.Key(v)
	if i, ok := c.index[k]; ok {
		c.entries[i].N++
		return
	}
	c.index[k] = len(c.entries)
	c.entries = append(c.entries, Count{Value: dataset.Normalize(v), N: 1})
}

// Get returns how many times v was counted.
func (c *Counter) Get(v any) int {
	if i, ok := c.index[dataset.Key(v)]; ok {
		return c.entries[i].N
	}
	return 0
}

// Len returns the number of distinct values.
func (c *Counter) Len() int { return len(c.entries) }

// Entries returns every count in first-seen order.
func (c *Counter) Entries() []Count { return slices.Clone(c.entries) }

// MostCommon returns the n highest counts, highest first. Equal counts keep
// first-seen order. n < 0 returns every entry.
func (c *Counter) MostCommon(n int) []Count {
	out := c.Entries()
	slices.SortStableFunc(out, func(a, b Count) int { return b.N - a.N })
	if n >= 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

func (c *Counter) String() string {
	parts := make([]string, len(c.entries))
	for i, e := range c.MostCommon(-1) {
		parts[i] = fmt.Sprintf("%s: %d", dataset.Format(e.Value), e.N)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
