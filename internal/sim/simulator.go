// Simulator orchestrating the pet swarm, pickups and the economy
package sim

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"petswarm-sim/internal/config"
	"petswarm-sim/internal/droptable"
	"petswarm-sim/internal/economy"
	"petswarm-sim/internal/formation"
	"petswarm-sim/internal/ground"
	"petswarm-sim/internal/hatchery"
	"petswarm-sim/internal/pickup"
	"petswarm-sim/internal/scenario"
	"petswarm-sim/internal/spawn"
	"petswarm-sim/internal/swarm"
	"petswarm-sim/internal/telemetry"
)

// TelemetryWriter is an interface to support different output writers.
type TelemetryWriter interface {
	Write(telemetry.PetRow) error
}

// Optional: Writers can also support batch mode
type batchWriter interface {
	WriteBatch([]telemetry.PetRow) error
}

var (
	// ErrNoPickup is returned by Attack("nearest") when nothing is alive.
	ErrNoPickup = errors.New("no live pickup")
	// ErrUnknownPickup is returned when attacking an id that is not alive.
	ErrUnknownPickup = errors.New("unknown pickup")
	// ErrNoPets is returned when an attack is ordered with an empty swarm.
	ErrNoPets = errors.New("swarm has no pets")
)

// AttackTarget selects the pickup closest to the leader.
const AttackTarget = "nearest"

// AttackResult reports who was sent where.
type AttackResult struct {
	PickupID   string      `json:"pickup_id"`
	PickupKind pickup.Kind `json:"pickup_kind"`
	PetIDs     []string    `json:"pet_ids"`
}

// PickupView is a read-only pickup for APIs.
type PickupView struct {
	ID        string      `json:"id"`
	Kind      pickup.Kind `json:"kind"`
	X         float64     `json:"x"`
	Y         float64     `json:"y"`
	Z         float64     `json:"z"`
	Health    float64     `json:"health"`
	MaxHealth float64     `json:"max_health"`
	Reward    int         `json:"reward"`
}

// EggView is a read-only catalog entry for APIs.
type EggView struct {
	Name       string `json:"name"`
	Price      int    `json:"price"`
	Affordable bool   `json:"affordable"`
}

// Simulator owns the world and steps it on a fixed tick. All exported methods
// are safe for concurrent use.
type Simulator struct {
	sessionID    string
	cfg          *config.SimulationConfig
	writer       TelemetryWriter
	tickInterval time.Duration
	rand         *rand.Rand
	now          func() time.Time
	gen          *telemetry.Generator
	log          *slog.Logger

	leader      *Autopilot
	probe       ground.Probe
	planner     formation.Planner
	params      swarm.Params
	registry    *swarm.Registry
	field       *pickup.Field
	placer      *spawn.Placer
	pickupKinds *droptable.Table[pickup.Spec]
	wallet      *economy.Wallet
	hatchery    *hatchery.Hatchery
	runner      *scenario.Runner

	ticks     int64
	elapsed   float64
	hatched   int
	destroyed int
	lastTotal int

	pendingDamage  []pickup.DamageRow
	pendingEvents  []telemetry.SwarmEventRow
	pendingHatches []telemetry.HatchRow
	commands       []Command
	subscribers    map[int]chan telemetry.SimulationStateRow
	nextSub        int

	mu sync.Mutex
}

// NewSimulator builds the world described by cfg. rng and now may be nil.
func NewSimulator(sessionID string, cfg *config.SimulationConfig, writer TelemetryWriter, tickInterval time.Duration, rng *rand.Rand, now func() time.Time) (*Simulator, error) {
	if cfg == nil {
		return nil, errors.New("nil simulation config")
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if now == nil {
		now = time.Now
	}
	if sessionID == "" {
		sessionID = uuid.New().String()
	}
	if tickInterval <= 0 {
		tickInterval = 100 * time.Millisecond
	}

	s := &Simulator{
		sessionID:    sessionID,
		cfg:          cfg,
		writer:       writer,
		tickInterval: tickInterval,
		rand:         rng,
		now:          now,
		gen:          telemetry.NewGenerator(sessionID, now),
		log:          slog.Default(),
		probe:        probeFromConfig(cfg),
		planner:      plannerFromConfig(cfg.Formation),
		params:       paramsFromConfig(cfg.PetParams),
		registry:     swarm.NewRegistry(),
		field:        pickup.NewField(),
		wallet:       economy.NewWallet(cfg.Session.StartingCoins),
		runner:       scenario.NewRunner(nil),
		subscribers:  make(map[int]chan telemetry.SimulationStateRow),
	}

	waypoints := make([]mgl64.Vec3, 0, len(cfg.Player.Waypoints))
	for _, w := range cfg.Player.Waypoints {
		waypoints = append(waypoints, w.Vec())
	}
	s.leader = NewAutopilot(cfg.Player.Start.Vec(), waypoints, cfg.Player.Speed, s.probe)

	var err error
	if s.pickupKinds, err = pickupTableFromConfig(cfg.Pickups); err != nil {
		return nil, err
	}
	eggs, err := eggsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	s.hatchery = hatchery.New(eggs, s.wallet, hatchery.SpawnerFunc(s.spawnPet), rand.New(rand.NewSource(rng.Int63())))
	s.placer = spawn.NewPlacer(spawnConfigFromConfig(cfg.Spawner), s.probe, s.spawnPickup, rand.New(rand.NewSource(rng.Int63())))

	s.wallet.Subscribe(func(balance int) {
		s.log.Debug("balance changed", "coins", balance)
	})

	for _, name := range cfg.StartingPets {
		p, ok := cfg.Pet(name)
		if !ok {
			return nil, fmt.Errorf("unknown starting pet %q", name)
		}
		if _, err := s.spawnPet(petFromConfig(p)); err != nil {
			return nil, err
		}
	}
	// starting pets do not count toward hatch triggers
	s.hatched = 0
	s.lastTotal = s.registry.Len()
	return s, nil
}

// SetScenario installs an autopilot script. nil clears it.
func (s *Simulator) SetScenario(sc *scenario.Scenario) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runner = scenario.NewRunner(sc)
}

// SetLogger replaces the logger used outside Run.
func (s *Simulator) SetLogger(l *slog.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l != nil {
		s.log = l
	}
}

// SessionID returns the session identity stamped on every row.
func (s *Simulator) SessionID() string { return s.sessionID }

// GetConfig returns the simulation configuration.
func (s *Simulator) GetConfig() *config.SimulationConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// Attack orders every pet at a pickup. target is a pickup id or "nearest".
func (s *Simulator) Attack(target string) (AttackResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.attackLocked(target)
	s.recordCommand(SourceExternal, "attack", target, err)
	return res, err
}

func (s *Simulator) attackLocked(target string) (AttackResult, error) {
	if s.registry.Len() == 0 {
		return AttackResult{}, ErrNoPets
	}
	var b *pickup.Breakable
	if target == "" || target == AttackTarget {
		var ok bool
		if b, ok = s.field.Nearest(s.leader.Pose().Position); !ok {
			return AttackResult{}, ErrNoPickup
		}
	} else {
		var ok bool
		if b, ok = s.field.Get(target); !ok {
			return AttackResult{}, fmt.Errorf("%w: %s", ErrUnknownPickup, target)
		}
	}
	members := s.registry.BroadcastAttack(b)
	ids := memberIDs(members)
	s.emit(telemetry.SwarmEventAttackCommand, ids, b.ID, string(b.Kind))
	s.log.Info("swarm attack", "pickup_id", b.ID, "kind", b.Kind, "pets", len(ids))
	return AttackResult{PickupID: b.ID, PickupKind: b.Kind, PetIDs: ids}, nil
}

// BuyEgg purchases an egg and hatches its pet into the swarm.
func (s *Simulator) BuyEgg(egg string) (hatchery.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.buyLocked(egg)
	s.recordCommand(SourceExternal, "buy_egg", egg, err)
	return res, err
}

func (s *Simulator) buyLocked(egg string) (hatchery.Result, error) {
	res, err := s.hatchery.Buy(egg)
	if err != nil {
		if res.Pet.Name != "" {
			s.log.Error("hatch spawn failed", "egg", egg, "pet", res.Pet.Name, "err", err)
		}
		return res, err
	}
	s.pendingHatches = append(s.pendingHatches, telemetry.HatchRow{
		SessionID:    s.sessionID,
		Egg:          res.Egg,
		Pet:          res.Pet.Name,
		PetID:        res.PetID,
		Price:        res.Price,
		BalanceAfter: res.BalanceAfter,
		Timestamp:    s.now().UTC(),
	})
	s.log.Info("egg hatched", "egg", res.Egg, "pet", res.Pet.Name, "pet_id", res.PetID, "coins", res.BalanceAfter)
	return res, nil
}

// spawnPet is the hatchery spawner. Callers hold s.mu or are the constructor.
func (s *Simulator) spawnPet(p hatchery.Pet) (string, error) {
	params := s.params
	if p.MoveSpeed > 0 {
		params.FollowSpeed = p.MoveSpeed
	}
	id := uuid.New().String()
	m := swarm.NewMember(swarm.MemberConfig{
		ID:         id,
		Name:       p.Name,
		Position:   s.leader.Pose().Position,
		Damage:     p.Damage,
		AttackRate: p.AttackRate,
		Params:     params,
		Planner:    s.planner,
		Leader:     s.leader,
		Ground:     s.probe,
		Roster:     s.registry,
		Rand:       rand.New(rand.NewSource(s.rand.Int63())),
	})
	if !s.registry.Register(m) {
		return "", fmt.Errorf("register pet %s: already registered", id)
	}
	s.hatched++
	s.emit(telemetry.SwarmEventHatch, []string{id}, "", p.Name)
	return id, nil
}

// spawnPickup is the placer factory.
func (s *Simulator) spawnPickup(pos mgl64.Vec3, yaw float64) spawn.Liveness {
	spec := s.pickupKinds.Pick(s.rand)
	b := pickup.New(spec, pos, s.wallet)
	b.Yaw = yaw
	b.OnBreak(s.pickupDestroyed)
	s.field.Add(b)
	s.emit(telemetry.SwarmEventPickupSpawned, nil, b.ID, string(b.Kind))
	return b
}

func (s *Simulator) pickupDestroyed(b *pickup.Breakable) {
	s.destroyed++
	var ids []string
	for _, m := range s.registry.All() {
		if t := m.Target(); t != nil && t.TargetID() == b.ID {
			ids = append(ids, m.ID)
		}
	}
	s.emit(telemetry.SwarmEventPickupDestroyed, ids, b.ID, fmt.Sprintf("%s reward=%d", b.Kind, b.Reward()))
	s.log.Info("pickup destroyed", "pickup_id", b.ID, "kind", b.Kind, "reward", b.Reward())
}

// Subscribe returns a channel receiving a state row after every tick. Slow
// subscribers miss rows rather than stall the simulation.
func (s *Simulator) Subscribe(buffer int) (<-chan telemetry.SimulationStateRow, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan telemetry.SimulationStateRow, buffer)
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = ch
	s.mu.Unlock()
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			s.mu.Unlock()
			close(ch)
		})
	}
}

// SubscribeBalance returns a channel carrying the wallet balance, primed with
// the current value. Only the latest balance is kept when the reader lags.
func (s *Simulator) SubscribeBalance() (<-chan int, func()) {
	ch := make(chan int, 1)
	var (
		mu     sync.Mutex
		closed bool
	)
	unsubscribe := s.wallet.Subscribe(func(balance int) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case ch <- balance:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- balance
		}
	})
	s.wallet.Notify()
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			unsubscribe()
			mu.Lock()
			closed = true
			close(ch)
			mu.Unlock()
		})
	}
}

// Pet returns the telemetry row of one pet.
func (s *Simulator) Pet(id string) (telemetry.PetRow, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.registry.Get(id)
	if !ok {
		return telemetry.PetRow{}, false
	}
	return s.gen.PetRow(m.Snapshot()), true
}

// TelemetrySnapshot returns the latest state for all pets.
func (s *Simulator) TelemetrySnapshot() []telemetry.PetRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen.PetRows(s.registry.All())
}

// State returns the current session state row.
func (s *Simulator) State() telemetry.SimulationStateRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateRowLocked()
}

// Pickups lists live pickups.
func (s *Simulator) Pickups() []PickupView {
	s.mu.Lock()
	defer s.mu.Unlock()
	live := s.field.Live()
	out := make([]PickupView, 0, len(live))
	for _, b := range live {
		out = append(out, PickupView{
			ID:        b.ID,
			Kind:      b.Kind,
			X:         b.Position.X(),
			Y:         b.Position.Y(),
			Z:         b.Position.Z(),
			Health:    b.Health(),
			MaxHealth: b.MaxHealth(),
			Reward:    b.Reward(),
		})
	}
	return out
}

// Eggs lists the egg catalog with affordability at the current balance.
func (s *Simulator) Eggs() []EggView {
	s.mu.Lock()
	defer s.mu.Unlock()
	eggs := s.hatchery.Eggs()
	out := make([]EggView, 0, len(eggs))
	for _, e := range eggs {
		out = append(out, EggView{Name: e.Name, Price: e.Price, Affordable: s.hatchery.CanAfford(e.Name)})
	}
	return out
}

func (s *Simulator) stateRowLocked() telemetry.SimulationStateRow {
	attacking := 0
	for _, m := range s.registry.All() {
		if m.State() == swarm.Attacking {
			attacking++
		}
	}
	lp := s.leader.Pose().Position
	return telemetry.SimulationStateRow{
		SessionID: s.sessionID,
		Tick:      s.ticks,
		Coins:     s.wallet.Balance(),
		Earned:    s.wallet.Earned(),
		Pets:      s.registry.Len(),
		Attacking: attacking,
		Pickups:   s.field.Len(),
		Phase:     s.runner.Current().Name,
		LeaderX:   lp.X(),
		LeaderZ:   lp.Z(),
		Timestamp: s.now().UTC(),
	}
}

func memberIDs(ms []*swarm.Member) []string {
	ids := make([]string, len(ms))
	for i, m := range ms {
		ids[i] = m.ID
	}
	return ids
}
