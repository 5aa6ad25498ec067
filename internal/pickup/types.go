package pickup

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Kind names a pickup variety.
type Kind string

const (
	KindCoin    Kind = "coin"
	KindChest   Kind = "chest"
	KindCrystal Kind = "crystal"
)

// Rewarder receives the reward when a pickup breaks.
type Rewarder interface {
	Credit(amount int)
}

// Spec describes how a kind of pickup is built.
type Spec struct {
	Kind      Kind
	MaxHealth float64
	Reward    int
}

// Breakable is a target that loses health when hit and pays out once on
// destruction.
type Breakable struct {
	ID       string
	Kind     Kind
	Position mgl64.Vec3
	Yaw      float64

	maxHealth float64
	health    float64
	reward    int
	destroyed bool
	rewarder  Rewarder
	onBreak   []func(*Breakable)
}

// New builds a pickup at full health. rewarder may be nil.
func New(spec Spec, pos mgl64.Vec3, rewarder Rewarder) *Breakable {
	return &Breakable{
		ID:        uuid.New().String(),
		Kind:      spec.Kind,
		Position:  pos,
		maxHealth: spec.MaxHealth,
		health:    spec.MaxHealth,
		reward:    spec.Reward,
		rewarder:  rewarder,
	}
}

// OnBreak registers a hook fired once when the pickup is destroyed.
func (b *Breakable) OnBreak(fn func(*Breakable)) {
	b.onBreak = append(b.onBreak, fn)
}

// ApplyDamage lowers health and reports whether the pickup is still alive.
// Damage to an already destroyed pickup is ignored.
func (b *Breakable) ApplyDamage(amount float64) bool {
	if b.destroyed {
		return false
	}
	if amount > 0 {
		b.health -= amount
	}
	if b.health <= 0 {
		b.health = 0
		b.destroy()
		return false
	}
	return true
}

func (b *Breakable) destroy() {
	b.destroyed = true
	if b.rewarder != nil {
		b.rewarder.Credit(b.reward)
	}
	for _, fn := range b.onBreak {
		fn(b)
	}
}

// Alive reports whether the pickup has not been destroyed.
func (b *Breakable) Alive() bool { return b != nil && !b.destroyed }

// Health returns the remaining health.
func (b *Breakable) Health() float64 { return b.health }

// MaxHealth returns the starting health.
func (b *Breakable) MaxHealth() float64 { return b.maxHealth }

// Reward returns the coins paid on destruction.
func (b *Breakable) Reward() int { return b.reward }

// TargetID implements swarm.Target.
func (b *Breakable) TargetID() string { return b.ID }

// TargetPosition implements swarm.Target.
func (b *Breakable) TargetPosition() mgl64.Vec3 { return b.Position }

// DamageRow records one hit landed on a pickup.
type DamageRow struct {
	SessionID   string    `json:"session_id"`
	PetID       string    `json:"pet_id"`
	PickupID    string    `json:"pickup_id"`
	PickupKind  Kind      `json:"pickup_kind"`
	Damage      float64   `json:"damage"`
	HealthAfter float64   `json:"health_after"`
	Destroyed   bool      `json:"destroyed"`
	Reward      int       `json:"reward,omitempty"`
	Timestamp   time.Time `json:"ts"`
}
