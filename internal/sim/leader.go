package sim

import (
	"github.com/go-gl/mathgl/mgl64"

	"petswarm-sim/internal/geom"
	"petswarm-sim/internal/ground"
)

// Autopilot walks the leader around a waypoint loop at constant speed.
type Autopilot struct {
	pose      geom.Pose
	waypoints []mgl64.Vec3
	next      int
	speed     float64
	ground    ground.Probe
	baseY     float64
}

// NewAutopilot places the leader at start on the ground.
func NewAutopilot(start mgl64.Vec3, waypoints []mgl64.Vec3, speed float64, probe ground.Probe) *Autopilot {
	a := &Autopilot{
		waypoints: waypoints,
		speed:     speed,
		ground:    probe,
		baseY:     start.Y(),
	}
	a.pose.Position = mgl64.Vec3{start.X(), ground.HeightOr(probe, start.X(), start.Z(), start.Y()), start.Z()}
	if len(waypoints) > 0 {
		a.pose.Yaw = geom.YawTowards(a.pose.Position, waypoints[0], 0)
	}
	return a
}

// Pose implements swarm.Leader.
func (a *Autopilot) Pose() geom.Pose { return a.pose }

// Step moves toward the current waypoint, advancing to the next one on
// arrival. Overshoot is dropped rather than carried into the next leg.
func (a *Autopilot) Step(dt float64) {
	if len(a.waypoints) == 0 || a.speed <= 0 || dt <= 0 {
		return
	}
	target := a.waypoints[a.next]
	from := a.pose.Position
	dist := geom.FlatDistance(from, target)
	travel := a.speed * dt

	var to mgl64.Vec3
	if dist <= travel {
		to = target
		a.next = (a.next + 1) % len(a.waypoints)
	} else {
		dir := geom.Flat(target.Sub(from)).Normalize()
		to = from.Add(dir.Mul(travel))
	}
	a.pose.Yaw = geom.YawTowards(from, to, a.pose.Yaw)
	a.pose.Position = mgl64.Vec3{to.X(), ground.HeightOr(a.ground, to.X(), to.Z(), a.baseY), to.Z()}
}

// Waypoint returns the index of the waypoint being walked to.
func (a *Autopilot) Waypoint() int { return a.next }
