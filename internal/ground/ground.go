// Ground height probes used to seat pets and pickups on the terrain.
package ground

import "math"

// Probe answers a downward height query at a horizontal point. ok is false
// when nothing is below the point.
type Probe interface {
	GroundHeight(x, z float64) (height float64, ok bool)
}

// Plane is an infinite flat floor.
type Plane struct {
	Height float64
}

// GroundHeight always hits.
func (p Plane) GroundHeight(x, z float64) (float64, bool) { return p.Height, true }

// Hills is a bounded rolling heightfield. Queries outside the bounds miss.
type Hills struct {
	MinX, MaxX float64
	MinZ, MaxZ float64
	Base       float64
	Amplitude  float64
	Wavelength float64
}

// GroundHeight returns base + amplitude·sin(x·k)·cos(z·k) inside the bounds.
func (h Hills) GroundHeight(x, z float64) (float64, bool) {
	if x < h.MinX || x > h.MaxX || z < h.MinZ || z > h.MaxZ {
		return 0, false
	}
	if h.Wavelength <= 0 || h.Amplitude == 0 {
		return h.Base, true
	}
	k := 2 * math.Pi / h.Wavelength
	return h.Base + h.Amplitude*math.Sin(x*k)*math.Cos(z*k), true
}

// ProbeFunc adapts a function to Probe.
type ProbeFunc func(x, z float64) (float64, bool)

// GroundHeight calls f.
func (f ProbeFunc) GroundHeight(x, z float64) (float64, bool) { return f(x, z) }

// HeightOr queries p and returns fallback on a miss or a nil probe.
func HeightOr(p Probe, x, z, fallback float64) float64 {
	if p == nil {
		return fallback
	}
	if h, ok := p.GroundHeight(x, z); ok {
		return h
	}
	return fallback
}
