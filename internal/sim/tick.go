package sim

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"petswarm-sim/internal/logging"
	"petswarm-sim/internal/pickup"
	"petswarm-sim/internal/scenario"
	"petswarm-sim/internal/swarm"
	"petswarm-sim/internal/telemetry"
)

// Run starts the simulation loop and stops when the context is done.
func (s *Simulator) Run(ctx context.Context) {
	log := logging.FromContext(ctx)
	s.mu.Lock()
	script := s.runner.Name()
	s.mu.Unlock()
	log.Info("starting simulator", "tick_interval", s.tickInterval, "session_id", s.sessionID, "scenario", script)
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	dt := s.tickInterval.Seconds()
	for {
		select {
		case <-ticker.C:
			s.Step(ctx, dt)
		case <-ctx.Done():
			log.Info("stopping simulator", "ticks", s.State().Tick)
			return
		}
	}
}

// tickOutput is everything one step hands to the writers.
type tickOutput struct {
	pets    []telemetry.PetRow
	damage  []pickup.DamageRow
	events  []telemetry.SwarmEventRow
	hatches []telemetry.HatchRow
	state   telemetry.SimulationStateRow
}

// Step advances the world by dt seconds and flushes the resulting rows.
func (s *Simulator) Step(ctx context.Context, dt float64) telemetry.SimulationStateRow {
	log := logging.FromContext(ctx)

	s.mu.Lock()
	out := s.advance(log, dt)
	s.publish(out.state)
	s.mu.Unlock()

	s.flush(log, out)
	return out.state
}

func (s *Simulator) advance(log *slog.Logger, dt float64) tickOutput {
	s.ticks++
	s.elapsed += dt

	if s.patrolling() {
		s.leader.Step(dt)
	}
	if pl, ok := s.placer.Tick(dt); ok {
		log.Debug("pickup placed", "x", pl.Position.X(), "z", pl.Position.Z(), "attempts", pl.Attempts)
	}
	s.runActions(log)

	for _, m := range s.registry.All() {
		before := m.State()
		target := m.Target()
		strike, hit := m.Tick(dt)
		if hit {
			s.recordStrike(strike, target)
		}
		if before == swarm.Attacking && m.State() == swarm.Following {
			s.emit(telemetry.SwarmEventRetargetFollow, []string{m.ID}, targetID(target), "")
		}
	}
	if n := s.field.Prune(); n > 0 {
		log.Debug("pruned pickups", "count", n)
	}
	if total := s.registry.Len(); total != s.lastTotal {
		s.emit(telemetry.SwarmEventFormationChange, memberIDs(s.registry.All()), "", formationDetail(s.lastTotal, total))
		s.lastTotal = total
	}

	prev := s.runner.Current().Name
	for _, phase := range s.runner.Advance(s.totals()) {
		log.Info("scenario phase changed", "scenario", s.runner.Name(), "from", prev, "to", phase)
		prev = phase
	}

	out := tickOutput{
		pets:    s.gen.PetRows(s.registry.All()),
		damage:  s.pendingDamage,
		events:  s.pendingEvents,
		hatches: s.pendingHatches,
		state:   s.stateRowLocked(),
	}
	s.pendingDamage, s.pendingEvents, s.pendingHatches = nil, nil, nil
	return out
}

func (s *Simulator) recordStrike(st swarm.Strike, target swarm.Target) {
	row := pickup.DamageRow{
		SessionID: s.sessionID,
		PetID:     st.MemberID,
		PickupID:  st.TargetID,
		Damage:    st.Damage,
		Destroyed: !st.TargetAlive,
		Timestamp: s.now().UTC(),
	}
	if b, ok := target.(*pickup.Breakable); ok {
		row.PickupKind = b.Kind
		row.HealthAfter = b.Health()
		if row.Destroyed {
			row.Reward = b.Reward()
		}
	}
	s.pendingDamage = append(s.pendingDamage, row)
}

// patrolling reports whether the leader walks its waypoints. Without a
// scenario, or when the phase says nothing, it does.
func (s *Simulator) patrolling() bool {
	a, ok := s.runner.Action(scenario.ActionPatrol)
	return !ok || a.On()
}

func (s *Simulator) runActions(log *slog.Logger) {
	if a, ok := s.runner.Action(scenario.ActionAutoBuy); ok && a.On() && s.hatchery.CanAfford(a.Egg) {
		_, err := s.buyLocked(a.Egg)
		s.recordCommand(SourceScenario, "buy_egg", a.Egg, err)
		if err != nil {
			log.Warn("auto buy failed", "egg", a.Egg, "err", err)
		}
	}
	if a, ok := s.runner.Action(scenario.ActionAutoAttack); ok && a.On() && s.field.Len() > 0 && !s.anyAttacking() {
		_, err := s.attackLocked(AttackTarget)
		s.recordCommand(SourceScenario, "attack", AttackTarget, err)
		if err != nil {
			log.Warn("auto attack failed", "err", err)
		}
	}
}

func (s *Simulator) anyAttacking() bool {
	for _, m := range s.registry.All() {
		if m.State() == swarm.Attacking {
			return true
		}
	}
	return false
}

func (s *Simulator) totals() scenario.Totals {
	return scenario.Totals{
		scenario.EventCoinsEarned:      s.wallet.Earned(),
		scenario.EventPetsHatched:      s.hatched,
		scenario.EventPickupsDestroyed: s.destroyed,
		scenario.EventTimeElapsed:      int(s.elapsed),
	}
}

func (s *Simulator) flush(log *slog.Logger, out tickOutput) {
	if s.writer == nil {
		return
	}
	writeRows(log, "pet", s.writer, out.pets, func(bw batchWriter, r []telemetry.PetRow) error { return bw.WriteBatch(r) },
		func(w TelemetryWriter, r telemetry.PetRow) error { return w.Write(r) })
	if w, ok := s.writer.(DamageWriter); ok {
		writeRows(log, "damage", w, out.damage, func(bw batchDamageWriter, r []pickup.DamageRow) error { return bw.WriteDamages(r) },
			func(w DamageWriter, r pickup.DamageRow) error { return w.WriteDamage(r) })
	}
	if w, ok := s.writer.(SwarmEventWriter); ok {
		writeRows(log, "swarm event", w, out.events, func(bw batchSwarmEventWriter, r []telemetry.SwarmEventRow) error { return bw.WriteSwarmEvents(r) },
			func(w SwarmEventWriter, r telemetry.SwarmEventRow) error { return w.WriteSwarmEvent(r) })
	}
	if w, ok := s.writer.(HatchWriter); ok {
		writeRows(log, "hatch", w, out.hatches, func(bw batchHatchWriter, r []telemetry.HatchRow) error { return bw.WriteHatches(r) },
			func(w HatchWriter, r telemetry.HatchRow) error { return w.WriteHatch(r) })
	}
	if w, ok := s.writer.(StateWriter); ok {
		if err := w.WriteState(out.state); err != nil {
			log.Error("state write failed", "err", err)
		}
	}
}

// writeRows prefers the writer's batch form B when it has one.
func writeRows[W any, B any, R any](log *slog.Logger, kind string, w W, rows []R, batch func(B, []R) error, single func(W, R) error) {
	if len(rows) == 0 {
		return
	}
	if bw, ok := any(w).(B); ok {
		if err := batch(bw, rows); err != nil {
			log.Error("batch write failed", "kind", kind, "rows", len(rows), "err", err)
		}
		return
	}
	for _, r := range rows {
		if err := single(w, r); err != nil {
			log.Error("write failed", "kind", kind, "err", err)
		}
	}
}

// publish must run with s.mu held so unsubscribe cannot close a channel
// mid-send.
func (s *Simulator) publish(row telemetry.SimulationStateRow) {
	for _, ch := range s.subscribers {
		select {
		case ch <- row:
		default:
		}
	}
}

func targetID(t swarm.Target) string {
	if t == nil {
		return ""
	}
	return t.TargetID()
}

func formationDetail(from, to int) string {
	return fmt.Sprintf("size %d->%d", from, to)
}
