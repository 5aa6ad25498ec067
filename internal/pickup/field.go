// Live pickup bookkeeping for the simulated scene.
package pickup

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"petswarm-sim/internal/geom"
)

// Field holds the pickups currently in the scene in spawn order.
type Field struct {
	items []*Breakable
	byID  map[string]*Breakable
}

// NewField returns an empty field.
func NewField() *Field {
	return &Field{byID: make(map[string]*Breakable)}
}

// Add inserts a pickup. Destroyed pickups drop out on the next Prune.
func (f *Field) Add(b *Breakable) {
	if _, ok := f.byID[b.ID]; ok {
		return
	}
	f.items = append(f.items, b)
	f.byID[b.ID] = b
}

// Get looks up a live pickup by id.
func (f *Field) Get(id string) (*Breakable, bool) {
	b, ok := f.byID[id]
	if !ok || !b.Alive() {
		return nil, false
	}
	return b, true
}

// Prune removes destroyed pickups and returns how many were dropped.
func (f *Field) Prune() int {
	live := f.items[:0]
	removed := 0
	for _, b := range f.items {
		if b.Alive() {
			live = append(live, b)
			continue
		}
		delete(f.byID, b.ID)
		removed++
	}
	for i := len(live); i < len(f.items); i++ {
		f.items[i] = nil
	}
	f.items = live
	return removed
}

// Live returns a snapshot of the live pickups.
func (f *Field) Live() []*Breakable {
	out := make([]*Breakable, 0, len(f.items))
	for _, b := range f.items {
		if b.Alive() {
			out = append(out, b)
		}
	}
	return out
}

// Len counts live pickups.
func (f *Field) Len() int {
	n := 0
	for _, b := range f.items {
		if b.Alive() {
			n++
		}
	}
	return n
}

// Nearest returns the live pickup closest to pos on the ground plane.
func (f *Field) Nearest(pos mgl64.Vec3) (*Breakable, bool) {
	var best *Breakable
	bestDist := math.Inf(1)
	for _, b := range f.items {
		if !b.Alive() {
			continue
		}
		if d := geom.FlatDistance(pos, b.Position); d < bestDist {
			best, bestDist = b, d
		}
	}
	return best, best != nil
}
