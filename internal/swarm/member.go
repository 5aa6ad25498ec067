// Pet swarm behaviour: per-member follow/attack state machine and the
// registry that orders members into formation slots.
package swarm

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"

	"petswarm-sim/internal/formation"
	"petswarm-sim/internal/geom"
	"petswarm-sim/internal/ground"
)

// State is the behaviour a member is currently running.
type State string

const (
	Following State = "following"
	Attacking State = "attacking"
)

// phaseRange bounds the random animation phase assigned on creation and on
// every new attack order.
const phaseRange = 10.0

// Target is anything the swarm can be ordered to attack.
type Target interface {
	TargetID() string
	TargetPosition() mgl64.Vec3
	Alive() bool
	// ApplyDamage returns whether the target survived the hit.
	ApplyDamage(amount float64) bool
}

// Leader is the entity the swarm follows.
type Leader interface {
	Pose() geom.Pose
}

// Roster yields a member's live formation slot.
type Roster interface {
	Slot(m *Member) (index, total int, ok bool)
}

// Params tunes movement and animation.
type Params struct {
	FollowSpeed  float64 // smoothing rate per second
	JumpHeight   float64
	JumpSpeed    float64 // radians of bounce phase per second
	BaseHeight   float64
	PhaseSpread  float64 // per-slot bounce phase offset while following
	AttackRadius float64
	StopDistance float64
	AttackBounce float64
}

// DefaultParams returns the stock pet tuning.
func DefaultParams() Params {
	return Params{
		FollowSpeed:  5,
		JumpHeight:   0.5,
		JumpSpeed:    10,
		BaseHeight:   0.3,
		PhaseSpread:  0.5,
		AttackRadius: 1.5,
		StopDistance: 0.5,
		AttackBounce: 0.5,
	}
}

// MemberConfig wires a member to its collaborators.
type MemberConfig struct {
	ID         string
	Name       string
	Position   mgl64.Vec3
	Damage     float64
	AttackRate float64 // seconds between hits
	Params     Params
	Planner    formation.Planner
	Leader     Leader
	Ground     ground.Probe
	Roster     Roster
	Rand       *rand.Rand
}

// Member is one pet. It is driven by Tick and owns no goroutines.
type Member struct {
	ID   string
	Name string

	pos         mgl64.Vec3
	yaw         float64
	state       State
	target      Target
	phase       float64
	attackTimer float64
	damage      float64
	attackRate  float64
	slot        int
	total       int

	params  Params
	planner formation.Planner
	leader  Leader
	ground  ground.Probe
	roster  Roster
	rng     *rand.Rand
}

// Strike reports a damage tick landed during Tick.
type Strike struct {
	MemberID    string
	TargetID    string
	Damage      float64
	TargetAlive bool
}

// NewMember builds a member in the Following state with a random bounce phase.
func NewMember(cfg MemberConfig) *Member {
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	m := &Member{
		ID:         cfg.ID,
		Name:       cfg.Name,
		pos:        cfg.Position,
		state:      Following,
		damage:     cfg.Damage,
		attackRate: cfg.AttackRate,
		total:      1,
		params:     cfg.Params,
		planner:    cfg.Planner,
		leader:     cfg.Leader,
		ground:     cfg.Ground,
		roster:     cfg.Roster,
		rng:        rng,
	}
	m.phase = m.rng.Float64() * phaseRange
	return m
}

// SetTarget orders the member to attack t, or to resume following when t is
// nil or already destroyed. Only the animation phase is redrawn; time since
// the last hit carries over, so repeated orders do not delay the next strike.
func (m *Member) SetTarget(t Target) {
	if !valid(t) {
		m.state = Following
		m.target = nil
		return
	}
	m.state = Attacking
	m.target = t
	m.phase = m.rng.Float64() * phaseRange
}

// Tick advances the member by dt seconds. It reports a Strike when a damage
// tick was applied this step.
func (m *Member) Tick(dt float64) (Strike, bool) {
	if m.state == Attacking {
		if valid(m.target) {
			return m.attack(dt)
		}
		m.state = Following
		m.target = nil
	}
	m.follow(dt)
	return Strike{}, false
}

func (m *Member) follow(dt float64) {
	if m.leader == nil {
		return
	}
	idx, total, ok := m.lookupSlot()
	if !ok {
		return
	}
	m.slot, m.total = idx, total

	lp := m.leader.Pose()
	target := m.planner.Target(lp, idx, total)
	g := m.groundAt(target)

	smooth := geom.Lerp(m.pos, target, dt*m.params.FollowSpeed)
	m.phase += dt * m.params.JumpSpeed
	y := g + m.params.BaseHeight + math.Abs(math.Sin(m.phase+float64(idx)*m.params.PhaseSpread))*m.params.JumpHeight

	m.pos = mgl64.Vec3{smooth.X(), y, smooth.Z()}
	m.yaw = geom.YawTowards(m.pos, lp.Position, m.yaw)
}

func (m *Member) attack(dt float64) (Strike, bool) {
	// Unregistered members keep the last slot they were given.
	if idx, total, ok := m.lookupSlot(); ok {
		m.slot, m.total = idx, total
	}
	center := m.target.TargetPosition()
	slotPos := formation.RingSlot(center, m.slot, m.total, m.params.AttackRadius)

	var strike Strike
	hit := false
	if geom.FlatDistance(m.pos, slotPos) > m.params.StopDistance {
		move := geom.Lerp(m.pos, slotPos, dt*m.params.FollowSpeed*2)
		m.pos = mgl64.Vec3{move.X(), m.groundAt(move) + m.params.BaseHeight, move.Z()}
	} else {
		m.phase += dt * m.params.JumpSpeed * 2
		bounce := math.Abs(math.Sin(m.phase)) * m.params.AttackBounce
		m.pos = mgl64.Vec3{slotPos.X(), m.groundAt(slotPos) + m.params.BaseHeight + bounce, slotPos.Z()}

		m.attackTimer += dt
		if m.attackTimer >= m.attackRate {
			alive := m.target.ApplyDamage(m.damage)
			m.attackTimer = 0
			strike = Strike{MemberID: m.ID, TargetID: m.target.TargetID(), Damage: m.damage, TargetAlive: alive}
			hit = true
		}
	}
	m.yaw = geom.YawTowards(m.pos, center, m.yaw)
	return strike, hit
}

func (m *Member) lookupSlot() (int, int, bool) {
	if m.roster == nil {
		return 0, 0, false
	}
	return m.roster.Slot(m)
}

// groundAt resolves the terrain height under p, falling back to the leader's
// height, or zero without a leader.
func (m *Member) groundAt(p mgl64.Vec3) float64 {
	fallback := 0.0
	if m.leader != nil {
		fallback = m.leader.Pose().Position.Y()
	}
	return ground.HeightOr(m.ground, p.X(), p.Z(), fallback)
}

func valid(t Target) bool {
	return t != nil && t.Alive()
}

// MemberState is a read-only view of a member for telemetry and UIs.
type MemberState struct {
	ID          string
	Name        string
	State       State
	Position    mgl64.Vec3
	Yaw         float64
	TargetID    string
	Slot        int
	Total       int
	Phase       float64
	AttackTimer float64
	Damage      float64
	AttackRate  float64
}

// Snapshot returns the member's current state.
func (m *Member) Snapshot() MemberState {
	s := MemberState{
		ID:          m.ID,
		Name:        m.Name,
		State:       m.state,
		Position:    m.pos,
		Yaw:         m.yaw,
		Slot:        m.slot,
		Total:       m.total,
		Phase:       m.phase,
		AttackTimer: m.attackTimer,
		Damage:      m.damage,
		AttackRate:  m.attackRate,
	}
	if m.target != nil {
		s.TargetID = m.target.TargetID()
	}
	return s
}

// State returns the current behaviour.
func (m *Member) State() State { return m.state }

// Position returns the current world position.
func (m *Member) Position() mgl64.Vec3 { return m.pos }

// Phase returns the bounce animation phase.
func (m *Member) Phase() float64 { return m.phase }

// Target returns the current attack target, nil while following.
func (m *Member) Target() Target { return m.target }
