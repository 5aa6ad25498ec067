package droptable

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func TestNewRejectsDegenerateTables(t *testing.T) {
	cases := map[string][]Entry[string]{
		"empty":    nil,
		"zero":     {{Item: "a", Weight: 0}, {Item: "b", Weight: 0}},
		"negative": {{Item: "a", Weight: 1}, {Item: "b", Weight: -1}},
		"nan":      {{Item: "a", Weight: math.NaN()}},
	}
	for name, entries := range cases {
		if _, err := New(entries); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("%s: expected ErrInvalidInput, got %v", name, err)
		}
	}
}

func TestPickHelperPropagatesError(t *testing.T) {
	_, err := Pick[string](nil, rand.New(rand.NewSource(1)))
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestPickAtBoundaries(t *testing.T) {
	tbl, err := New([]Entry[string]{{"a", 1}, {"b", 3}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	cases := []struct {
		r    float64
		want string
	}{
		{0, "a"},
		{0.5, "a"},
		{1, "a"},
		{1.0001, "b"},
		{3.9999, "b"},
		{100, "b"}, // past the end falls back to the last entry
	}
	for _, c := range cases {
		if got := tbl.PickAt(c.r); got != c.want {
			t.Errorf("PickAt(%v) = %s, want %s", c.r, got, c.want)
		}
	}
}

func TestPickAtSkipsZeroWeight(t *testing.T) {
	tbl, err := New([]Entry[string]{{"never", 0}, {"always", 2}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := tbl.PickAt(0); got != "always" {
		t.Fatalf("zero weight entry selected at r=0")
	}
}

func TestPickDistributionConverges(t *testing.T) {
	tbl, err := New([]Entry[int]{{0, 1}, {1, 3}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	rng := rand.New(rand.NewSource(42))
	const n = 100000
	counts := [2]int{}
	for i := 0; i < n; i++ {
		counts[tbl.Pick(rng)]++
	}
	freq := float64(counts[1]) / n
	if math.Abs(freq-0.75) > 0.01 {
		t.Fatalf("second entry frequency %.4f, want ~0.75", freq)
	}
}

func TestEntriesAreCopied(t *testing.T) {
	src := []Entry[string]{{"a", 1}}
	tbl, _ := New(src)
	src[0].Weight = 0
	if tbl.Total() != 1 {
		t.Fatalf("table should not alias the input slice")
	}
	out := tbl.Entries()
	out[0].Item = "z"
	if tbl.PickAt(0.5) != "a" {
		t.Fatalf("Entries should return a copy")
	}
}
