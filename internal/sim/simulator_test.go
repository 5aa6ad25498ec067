package sim

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"petswarm-sim/internal/config"
	"petswarm-sim/internal/hatchery"
	"petswarm-sim/internal/scenario"
	"petswarm-sim/internal/swarm"
	"petswarm-sim/internal/telemetry"
)

const testDt = 0.1

func testConfig() *config.SimulationConfig {
	cfg := &config.SimulationConfig{
		Session: config.Session{StartingCoins: 100},
		Pets: []config.Pet{
			{Name: "cat", Damage: 10, AttackRate: 0.5},
			{Name: "dog", Damage: 15, AttackRate: 0.5},
		},
		Eggs: []config.Egg{
			{Name: "basic", Price: 100, Drops: []config.Drop{{Pet: "dog", Weight: 1}}},
			{Name: "golden", Price: 1000, Drops: []config.Drop{{Pet: "dog", Weight: 1}}},
		},
		StartingPets: []string{"cat", "cat"},
		Pickups: config.Pickups{Kinds: []config.PickupKind{
			{Kind: "coin", MaxHealth: 20, Reward: 5, Weight: 1},
		}},
		Spawner: config.Spawner{
			Area:      config.Area{MinX: -5, MaxX: 5, MinZ: -5, MaxZ: 5},
			MaxLive:   5,
			IntervalS: 1000,
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

func newTestSimulator(t *testing.T, w TelemetryWriter) *Simulator {
	t.Helper()
	now := func() time.Time { return time.Unix(1700000000, 0) }
	s, err := NewSimulator("session-test", testConfig(), w, 100*time.Millisecond, rand.New(rand.NewSource(7)), now)
	if err != nil {
		t.Fatalf("NewSimulator: %v", err)
	}
	return s
}

func placePickup(t *testing.T, s *Simulator) string {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.placer.TryPlace(); err != nil {
		t.Fatalf("place pickup: %v", err)
	}
	live := s.field.Live()
	return live[len(live)-1].ID
}

func countEvents(rows []telemetry.SwarmEventRow, typ string) int {
	n := 0
	for _, r := range rows {
		if r.EventType == typ {
			n++
		}
	}
	return n
}

func TestSimulator_TickGeneratesTelemetry(t *testing.T) {
	w := &recordingWriter{}
	s := newTestSimulator(t, w)

	st := s.Step(context.Background(), testDt)

	if len(w.pets) != 2 {
		t.Fatalf("expected rows for 2 pets, got %d", len(w.pets))
	}
	for _, row := range w.pets {
		if row.PetID == "" || row.SessionID != "session-test" || row.Total != 2 {
			t.Errorf("pet row incomplete: %+v", row)
		}
	}
	if st.Tick != 1 || st.Coins != 100 || st.Pets != 2 || len(w.states) != 1 {
		t.Fatalf("unexpected state %+v", st)
	}
	if got := countEvents(w.events, telemetry.SwarmEventHatch); got != 2 {
		t.Fatalf("expected hatch events for starting pets, got %d", got)
	}
}

func TestSimulator_AttackNearestBreaksPickup(t *testing.T) {
	w := &recordingWriter{}
	s := newTestSimulator(t, w)

	if _, err := s.Attack(AttackTarget); !errors.Is(err, ErrNoPickup) {
		t.Fatalf("expected ErrNoPickup, got %v", err)
	}
	id := placePickup(t, s)
	res, err := s.Attack(AttackTarget)
	if err != nil {
		t.Fatalf("attack: %v", err)
	}
	if res.PickupID != id || len(res.PetIDs) != 2 {
		t.Fatalf("unexpected attack result %+v", res)
	}

	ctx := context.Background()
	for i := 0; i < 200 && len(s.Pickups()) > 0; i++ {
		s.Step(ctx, testDt)
	}
	if len(s.Pickups()) != 0 {
		t.Fatalf("pickup should have been destroyed")
	}
	// one more tick lets the pets notice and fall back into formation
	s.Step(ctx, testDt)

	st := s.State()
	if st.Coins != 105 || st.Earned != 5 {
		t.Fatalf("reward not credited: %+v", st)
	}
	destroyedRows := 0
	for _, d := range w.damage {
		if d.PickupID != id {
			t.Fatalf("damage on unexpected pickup %s", d.PickupID)
		}
		if d.Destroyed {
			destroyedRows++
			if d.Reward != 5 || d.HealthAfter != 0 {
				t.Fatalf("unexpected killing blow %+v", d)
			}
		}
	}
	if destroyedRows != 1 {
		t.Fatalf("expected exactly one killing blow, got %d", destroyedRows)
	}
	if countEvents(w.events, telemetry.SwarmEventAttackCommand) != 1 ||
		countEvents(w.events, telemetry.SwarmEventPickupDestroyed) != 1 ||
		countEvents(w.events, telemetry.SwarmEventRetargetFollow) != 2 {
		t.Fatalf("unexpected events %+v", w.events)
	}
	for _, p := range s.TelemetrySnapshot() {
		if p.State != string(swarm.Following) || p.TargetID != "" {
			t.Fatalf("pet should follow again: %+v", p)
		}
	}
}

func TestSimulator_AttackUnknownPickup(t *testing.T) {
	s := newTestSimulator(t, nil)
	if _, err := s.Attack("nope"); !errors.Is(err, ErrUnknownPickup) {
		t.Fatalf("expected ErrUnknownPickup, got %v", err)
	}
	cmds := s.Commands()
	if len(cmds) != 1 || cmds[0].Name != "attack" || cmds[0].Error == "" || cmds[0].Source != SourceExternal {
		t.Fatalf("command not recorded: %+v", cmds)
	}
}

func TestSimulator_BuyEgg(t *testing.T) {
	w := &recordingWriter{}
	s := newTestSimulator(t, w)

	if _, err := s.BuyEgg("golden"); err == nil {
		t.Fatalf("expected insufficient funds")
	}
	if _, err := s.BuyEgg("mystery"); !errors.Is(err, hatchery.ErrUnknownEgg) {
		t.Fatalf("expected ErrUnknownEgg, got %v", err)
	}
	res, err := s.BuyEgg("basic")
	if err != nil {
		t.Fatalf("buy: %v", err)
	}
	if res.Pet.Name != "dog" || res.BalanceAfter != 0 || res.PetID == "" {
		t.Fatalf("unexpected result %+v", res)
	}
	st := s.Step(context.Background(), testDt)
	if st.Pets != 3 || st.Coins != 0 {
		t.Fatalf("unexpected state after buy %+v", st)
	}
	if len(w.hatches) != 1 || w.hatches[0].PetID != res.PetID {
		t.Fatalf("hatch row not written: %+v", w.hatches)
	}
	if countEvents(w.events, telemetry.SwarmEventFormationChange) != 1 {
		t.Fatalf("expected a formation change event: %+v", w.events)
	}
	for _, p := range w.pets {
		if p.Total != 3 {
			t.Fatalf("formation not widened: %+v", p)
		}
	}
	if n := len(s.Commands()); n != 3 {
		t.Fatalf("expected 3 recorded commands, got %d", n)
	}
}

func TestSimulator_Eggs(t *testing.T) {
	s := newTestSimulator(t, nil)
	eggs := s.Eggs()
	if len(eggs) != 2 || eggs[0].Name != "basic" || !eggs[0].Affordable || eggs[1].Affordable {
		t.Fatalf("unexpected catalog %+v", eggs)
	}
}

func TestSimulator_Subscribe(t *testing.T) {
	s := newTestSimulator(t, nil)
	ch, cancel := s.Subscribe(1)
	s.Step(context.Background(), testDt)
	// buffer full: this row is dropped rather than blocking
	s.Step(context.Background(), testDt)
	row := <-ch
	if row.Tick != 1 {
		t.Fatalf("expected first tick, got %d", row.Tick)
	}
	cancel()
	cancel()
	if _, ok := <-ch; ok {
		t.Fatalf("channel should be closed")
	}
	s.Step(context.Background(), testDt)
}

func TestSimulator_ScenarioAutoBuyAndPhase(t *testing.T) {
	s := newTestSimulator(t, nil)
	s.SetScenario(&scenario.Scenario{
		Name: "test",
		Phases: []scenario.Phase{
			{
				Name:     "shop",
				Actions:  []scenario.Action{{Type: scenario.ActionAutoBuy, Egg: "basic"}},
				Triggers: []scenario.Trigger{{Event: scenario.EventPetsHatched, Value: 1, Next: "rest"}},
			},
			{Name: "rest"},
		},
	})
	st := s.Step(context.Background(), testDt)
	if st.Pets != 3 || st.Coins != 0 {
		t.Fatalf("auto buy did not run: %+v", st)
	}
	if st.Phase != "rest" {
		t.Fatalf("expected phase rest, got %q", st.Phase)
	}
	cmds := s.Commands()
	if len(cmds) != 1 || cmds[0].Source != SourceScenario {
		t.Fatalf("scenario command not recorded: %+v", cmds)
	}
}

func TestSimulator_ScenarioAutoAttack(t *testing.T) {
	s := newTestSimulator(t, nil)
	s.SetScenario(&scenario.Scenario{
		Name:   "hunt",
		Phases: []scenario.Phase{{Name: "hunt", Actions: []scenario.Action{{Type: scenario.ActionAutoAttack}}}},
	})
	placePickup(t, s)
	st := s.Step(context.Background(), testDt)
	if st.Attacking != 2 {
		t.Fatalf("expected both pets attacking, got %+v", st)
	}
}

func TestSimulator_PatrolToggle(t *testing.T) {
	cfg := testConfig()
	cfg.Player.Waypoints = []config.Vec3{{X: 10}}
	off := false
	s, err := NewSimulator("s", cfg, nil, time.Second, rand.New(rand.NewSource(1)), nil)
	if err != nil {
		t.Fatalf("NewSimulator: %v", err)
	}
	s.SetScenario(&scenario.Scenario{
		Name:   "stay",
		Phases: []scenario.Phase{{Name: "stay", Actions: []scenario.Action{{Type: scenario.ActionPatrol, Enabled: &off}}}},
	})
	if st := s.Step(context.Background(), 1); st.LeaderX != 0 {
		t.Fatalf("leader should stay put, got x=%v", st.LeaderX)
	}
	s.SetScenario(nil)
	if st := s.Step(context.Background(), 1); st.LeaderX <= 0 {
		t.Fatalf("leader should walk toward the waypoint, got x=%v", st.LeaderX)
	}
}

func TestSimulator_Run(t *testing.T) {
	w := &recordingWriter{}
	s := newTestSimulator(t, w)
	ctx, cancel := context.WithTimeout(context.Background(), 350*time.Millisecond)
	defer cancel()
	s.Run(ctx)
	if s.State().Tick < 1 {
		t.Fatalf("expected ticks while running")
	}
}

func TestNewSimulator_Errors(t *testing.T) {
	if _, err := NewSimulator("s", nil, nil, 0, nil, nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
	cfg := testConfig()
	cfg.StartingPets = []string{"griffin"}
	if _, err := NewSimulator("s", cfg, nil, 0, nil, nil); err == nil {
		t.Fatalf("expected error for unknown starting pet")
	}
}

func TestSimulator_SubscribeBalance(t *testing.T) {
	s := newTestSimulator(t, nil)
	ch, cancel := s.SubscribeBalance()
	if got := <-ch; got != 100 {
		t.Fatalf("expected primed balance 100, got %d", got)
	}
	if _, err := s.BuyEgg("basic"); err != nil {
		t.Fatalf("buy: %v", err)
	}
	if got := <-ch; got != 0 {
		t.Fatalf("expected balance 0 after buy, got %d", got)
	}
	cancel()
	cancel()
	if _, ok := <-ch; ok {
		t.Fatalf("channel should be closed")
	}
	// balance changes after cancel must not reach the closed channel
	s.wallet.Credit(5)
	if got := s.State().Coins; got != 5 {
		t.Fatalf("expected 5 coins, got %d", got)
	}
}

func TestSimulator_SubscribeBalanceKeepsLatest(t *testing.T) {
	s := newTestSimulator(t, nil)
	ch, cancel := s.SubscribeBalance()
	defer cancel()
	if _, err := s.BuyEgg("basic"); err != nil {
		t.Fatalf("buy: %v", err)
	}
	if got := <-ch; got != 0 {
		t.Fatalf("lagging reader should see the latest balance, got %d", got)
	}
}

func TestSimulator_Pet(t *testing.T) {
	s := newTestSimulator(t, nil)
	rows := s.TelemetrySnapshot()
	row, ok := s.Pet(rows[1].PetID)
	if !ok || row.PetID != rows[1].PetID || row.PetName != "cat" {
		t.Fatalf("unexpected pet lookup %+v %v", row, ok)
	}
	if _, ok := s.Pet("nope"); ok {
		t.Fatalf("expected unknown pet to be missing")
	}
}
