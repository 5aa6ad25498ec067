// Vector helpers shared by the formation, swarm and spawn packages.
//
// The world is Y-up. Yaw is measured in radians around +Y with yaw 0 facing
// +Z, so Forward(0) = (0,0,1) and Right(0) = (1,0,0).
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Pose is a world position plus a heading around the vertical axis.
type Pose struct {
	Position mgl64.Vec3
	Yaw      float64
}

// Forward returns the unit vector the pose is facing, flattened to the ground plane.
func (p Pose) Forward() mgl64.Vec3 {
	return mgl64.Vec3{math.Sin(p.Yaw), 0, math.Cos(p.Yaw)}
}

// Right returns the unit vector to the right of the facing direction.
func (p Pose) Right() mgl64.Vec3 {
	return mgl64.Vec3{math.Cos(p.Yaw), 0, -math.Sin(p.Yaw)}
}

// Flat drops the vertical component.
func Flat(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v.X(), 0, v.Z()}
}

// FlatDistance is the horizontal distance between two points.
func FlatDistance(a, b mgl64.Vec3) float64 {
	return math.Hypot(a.X()-b.X(), a.Z()-b.Z())
}

// Lerp interpolates from a to b. t is clamped to [0,1].
func Lerp(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	t = mgl64.Clamp(t, 0, 1)
	return a.Add(b.Sub(a).Mul(t))
}

// YawTowards returns the yaw that faces from -> to on the ground plane.
// When the points coincide horizontally the fallback is returned.
func YawTowards(from, to mgl64.Vec3, fallback float64) float64 {
	dx := to.X() - from.X()
	dz := to.Z() - from.Z()
	if dx == 0 && dz == 0 {
		return fallback
	}
	return math.Atan2(dx, dz)
}
