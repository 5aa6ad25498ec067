// Formation slot planning for followers trailing a leader, and ring slots
// around an attack target.
package formation

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"petswarm-sim/internal/geom"
)

// Defaults mirror the tuning used by the pet follow behaviour.
const (
	DefaultRowWidth   = 5
	DefaultSpacing    = 1.3
	DefaultStartDepth = 3.5
	DefaultRowDepth   = 1.5
	DefaultCurveBias  = 0.5
)

// Planner arranges followers into rows behind a leader. Outer slots of a row
// sit closer to the leader than the row's nominal depth, giving a crescent.
type Planner struct {
	RowWidth   int
	Spacing    float64
	StartDepth float64
	RowDepth   float64
	CurveBias  float64
}

// Slot describes where one follower sits relative to the leader.
type Slot struct {
	Row     int     `json:"row"`
	Column  int     `json:"column"`
	RowSize int     `json:"row_size"`
	Lateral float64 `json:"lateral"`
	Depth   float64 `json:"depth"`
}

// DefaultPlanner returns a planner with the stock tuning.
func DefaultPlanner() Planner {
	return Planner{
		RowWidth:   DefaultRowWidth,
		Spacing:    DefaultSpacing,
		StartDepth: DefaultStartDepth,
		RowDepth:   DefaultRowDepth,
		CurveBias:  DefaultCurveBias,
	}
}

// Slot computes the offsets for the 0-based index out of total followers.
// A total smaller than index+1 is widened so the result stays well defined.
func (p Planner) Slot(index, total int) Slot {
	width := p.RowWidth
	if width <= 0 {
		width = DefaultRowWidth
	}
	if index < 0 {
		index = 0
	}
	if total < index+1 {
		total = index + 1
	}

	row := index / width
	col := index % width
	rowSize := width
	totalRows := (total + width - 1) / width
	if row == totalRows-1 {
		if rem := total % width; rem > 0 {
			rowSize = rem
		}
	}

	lateral := (float64(col) - float64(rowSize-1)*0.5) * p.Spacing
	depth := p.StartDepth + float64(row)*p.RowDepth - math.Abs(lateral)*p.CurveBias
	return Slot{Row: row, Column: col, RowSize: rowSize, Lateral: lateral, Depth: depth}
}

// Target returns the world position of a slot given the leader pose. The
// vertical component is the leader's; callers resolve ground height.
func (p Planner) Target(leader geom.Pose, index, total int) mgl64.Vec3 {
	s := p.Slot(index, total)
	return leader.Position.
		Sub(leader.Forward().Mul(s.Depth)).
		Add(leader.Right().Mul(s.Lateral))
}

// RingAngle is the angle of a slot on a ring shared by total members.
func RingAngle(index, total int) float64 {
	if total < 1 {
		total = 1
	}
	return float64(index) / float64(total) * 2 * math.Pi
}

// RingSlot places a member on a horizontal circle of radius around center.
func RingSlot(center mgl64.Vec3, index, total int, radius float64) mgl64.Vec3 {
	a := RingAngle(index, total)
	return center.Add(mgl64.Vec3{math.Cos(a), 0, math.Sin(a)}.Mul(radius))
}
