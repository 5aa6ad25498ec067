package ground

import "testing"

func TestHillsBounds(t *testing.T) {
	h := Hills{MinX: -10, MaxX: 10, MinZ: -10, MaxZ: 10, Base: 1, Amplitude: 2, Wavelength: 8}
	if _, ok := h.GroundHeight(11, 0); ok {
		t.Fatalf("expected miss outside bounds")
	}
	y, ok := h.GroundHeight(2, 0) // sin(pi/2)·cos(0) = 1
	if !ok || y < 2.999 || y > 3.001 {
		t.Fatalf("expected ~3, got %f (%v)", y, ok)
	}
}

func TestHeightOr(t *testing.T) {
	miss := ProbeFunc(func(x, z float64) (float64, bool) { return 0, false })
	if HeightOr(miss, 0, 0, 4) != 4 {
		t.Fatalf("expected fallback on miss")
	}
	if HeightOr(nil, 0, 0, 5) != 5 {
		t.Fatalf("expected fallback on nil probe")
	}
	if HeightOr(Plane{Height: 2}, 0, 0, 5) != 2 {
		t.Fatalf("expected plane height")
	}
}
