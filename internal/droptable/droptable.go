// Weighted random selection over an ordered list of entries.
package droptable

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

// ErrInvalidInput is returned for empty or degenerate tables.
var ErrInvalidInput = errors.New("droptable: invalid input")

// Entry pairs an item with its relative weight.
type Entry[T any] struct {
	Item   T
	Weight float64
}

// Table resolves a weighted random selection. Weights need not sum to any
// particular value; they are normalized at pick time.
type Table[T any] struct {
	entries []Entry[T]
	total   float64
}

// New validates entries and builds a table. The entries slice is copied.
func New[T any](entries []Entry[T]) (*Table[T], error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no entries", ErrInvalidInput)
	}
	total := 0.0
	for i, e := range entries {
		if e.Weight < 0 || math.IsNaN(e.Weight) || math.IsInf(e.Weight, 0) {
			return nil, fmt.Errorf("%w: entry %d has weight %v", ErrInvalidInput, i, e.Weight)
		}
		total += e.Weight
	}
	if total <= 0 {
		return nil, fmt.Errorf("%w: total weight is zero", ErrInvalidInput)
	}
	cp := make([]Entry[T], len(entries))
	copy(cp, entries)
	return &Table[T]{entries: cp, total: total}, nil
}

// Pick draws one item using rng.
func (t *Table[T]) Pick(rng *rand.Rand) T {
	return t.PickAt(rng.Float64() * t.total)
}

// PickAt resolves the item for a draw r in [0, Total()). Entries are walked in
// order and the first positive-weight entry whose running sum reaches r wins.
// If drift leaves nothing selected the last entry is returned.
func (t *Table[T]) PickAt(r float64) T {
	sum := 0.0
	for _, e := range t.entries {
		sum += e.Weight
		if e.Weight > 0 && sum >= r {
			return e.Item
		}
	}
	return t.entries[len(t.entries)-1].Item
}

// Total returns the sum of all weights.
func (t *Table[T]) Total() float64 { return t.total }

// Len returns the number of entries.
func (t *Table[T]) Len() int { return len(t.entries) }

// Entries returns a copy of the table's entries.
func (t *Table[T]) Entries() []Entry[T] {
	cp := make([]Entry[T], len(t.entries))
	copy(cp, t.entries)
	return cp
}

// Pick is a one-shot helper that validates entries and draws a single item.
func Pick[T any](entries []Entry[T], rng *rand.Rand) (T, error) {
	t, err := New(entries)
	if err != nil {
		var zero T
		return zero, err
	}
	return t.Pick(rng), nil
}
