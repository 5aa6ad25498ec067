package geom

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestPoseAxes(t *testing.T) {
	cases := []struct {
		yaw     float64
		forward mgl64.Vec3
		right   mgl64.Vec3
	}{
		{0, mgl64.Vec3{0, 0, 1}, mgl64.Vec3{1, 0, 0}},
		{math.Pi / 2, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 0, -1}},
		{math.Pi, mgl64.Vec3{0, 0, -1}, mgl64.Vec3{-1, 0, 0}},
	}
	for _, c := range cases {
		p := Pose{Yaw: c.yaw}
		if !p.Forward().ApproxEqualThreshold(c.forward, 1e-9) {
			t.Errorf("yaw %.2f forward = %v, want %v", c.yaw, p.Forward(), c.forward)
		}
		if !p.Right().ApproxEqualThreshold(c.right, 1e-9) {
			t.Errorf("yaw %.2f right = %v, want %v", c.yaw, p.Right(), c.right)
		}
	}
}

func TestLerpClamps(t *testing.T) {
	a := mgl64.Vec3{0, 0, 0}
	b := mgl64.Vec3{10, 0, 0}
	if got := Lerp(a, b, 0.25); got.X() != 2.5 {
		t.Fatalf("Lerp 0.25 = %v", got)
	}
	if got := Lerp(a, b, 3); got != b {
		t.Fatalf("Lerp should clamp above 1, got %v", got)
	}
	if got := Lerp(a, b, -1); got != a {
		t.Fatalf("Lerp should clamp below 0, got %v", got)
	}
}

func TestFlatDistanceIgnoresHeight(t *testing.T) {
	d := FlatDistance(mgl64.Vec3{0, 100, 0}, mgl64.Vec3{3, -5, 4})
	if d != 5 {
		t.Fatalf("expected 5, got %f", d)
	}
}

func TestYawTowards(t *testing.T) {
	if y := YawTowards(mgl64.Vec3{}, mgl64.Vec3{1, 0, 0}, 0); math.Abs(y-math.Pi/2) > 1e-9 {
		t.Fatalf("expected pi/2, got %f", y)
	}
	if y := YawTowards(mgl64.Vec3{1, 2, 3}, mgl64.Vec3{1, 9, 3}, 0.7); y != 0.7 {
		t.Fatalf("expected fallback, got %f", y)
	}
}
