// Timed pickup placement with a minimum-separation constraint.
package spawn

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"

	"petswarm-sim/internal/geom"
	"petswarm-sim/internal/ground"
)

// ErrPlacementExhausted is returned when every candidate in a cycle was rejected.
var ErrPlacementExhausted = errors.New("spawn: placement attempts exhausted")

// DefaultMaxAttempts bounds the candidates drawn per cycle.
const DefaultMaxAttempts = 10

// Area is the horizontal rectangle pickups are placed in. FloorY is used
// when the ground probe misses.
type Area struct {
	MinX, MaxX float64
	MinZ, MaxZ float64
	FloorY     float64
}

// Config tunes a Placer.
type Config struct {
	Area          Area
	MaxLive       int
	Interval      float64 // seconds between attempts
	SpawnHeight   float64 // added on top of the ground height
	MinSeparation float64
	MaxAttempts   int
	Yaw           float64 // fixed orientation of placed pickups
}

// Liveness is implemented by whatever the factory instantiates.
type Liveness interface {
	Alive() bool
}

// Factory instantiates a pickup at pos facing yaw. A nil Liveness leaves a
// permanent obstacle: the record is never pruned and keeps counting toward
// MaxLive.
type Factory func(pos mgl64.Vec3, yaw float64) Liveness

// Placement describes one successful spawn.
type Placement struct {
	Position mgl64.Vec3
	Yaw      float64
	Attempts int
	Handle   Liveness
}

type record struct {
	pos    mgl64.Vec3
	handle Liveness
}

// Placer periodically places pickups by rejection sampling. A cycle may fail
// even when free space exists; the next cycle simply tries again.
type Placer struct {
	cfg       Config
	probe     ground.Probe
	factory   Factory
	history   []record
	timer     float64
	randFloat func() float64
}

// NewPlacer builds a placer. rng may be nil.
func NewPlacer(cfg Config, probe ground.Probe, factory Factory, rng *rand.Rand) *Placer {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &Placer{cfg: cfg, probe: probe, factory: factory, randFloat: rng.Float64}
}

// Track adds an externally created pickup to the separation history. A nil h
// marks a permanent obstacle that is never pruned and counts toward MaxLive.
func (p *Placer) Track(pos mgl64.Vec3, h Liveness) {
	p.history = append(p.history, record{pos: pos, handle: h})
}

// Tick advances the spawn timer by dt seconds and attempts a placement when
// the interval elapses. Exhausted attempts skip the cycle silently.
func (p *Placer) Tick(dt float64) (Placement, bool) {
	p.prune()
	if p.cfg.MaxLive > 0 && len(p.history) >= p.cfg.MaxLive {
		return Placement{}, false
	}
	p.timer += dt
	if p.timer < p.cfg.Interval {
		return Placement{}, false
	}
	p.timer = 0
	pl, err := p.TryPlace()
	if err != nil {
		return Placement{}, false
	}
	return pl, true
}

// TryPlace runs one bounded rejection-sampling cycle.
func (p *Placer) TryPlace() (Placement, error) {
	p.prune()
	for i := 1; i <= p.cfg.MaxAttempts; i++ {
		pos := p.candidate()
		if !p.fits(pos) {
			continue
		}
		var h Liveness
		if p.factory != nil {
			h = p.factory(pos, p.cfg.Yaw)
		}
		p.history = append(p.history, record{pos: pos, handle: h})
		return Placement{Position: pos, Yaw: p.cfg.Yaw, Attempts: i, Handle: h}, nil
	}
	return Placement{}, fmt.Errorf("%w after %d candidates", ErrPlacementExhausted, p.cfg.MaxAttempts)
}

// Live returns the number of tracked pickups still alive.
func (p *Placer) Live() int {
	p.prune()
	return len(p.history)
}

func (p *Placer) candidate() mgl64.Vec3 {
	a := p.cfg.Area
	x := a.MinX + p.randFloat()*(a.MaxX-a.MinX)
	z := a.MinZ + p.randFloat()*(a.MaxZ-a.MinZ)
	y := ground.HeightOr(p.probe, x, z, a.FloorY) + p.cfg.SpawnHeight
	return mgl64.Vec3{x, y, z}
}

func (p *Placer) fits(pos mgl64.Vec3) bool {
	for _, r := range p.history {
		if geom.FlatDistance(pos, r.pos) < p.cfg.MinSeparation {
			return false
		}
	}
	return true
}

func (p *Placer) prune() {
	live := p.history[:0]
	for _, r := range p.history {
		if r.handle == nil || r.handle.Alive() {
			live = append(live, r)
		}
	}
	for i := len(live); i < len(p.history); i++ {
		p.history[i] = record{}
	}
	p.history = live
}
