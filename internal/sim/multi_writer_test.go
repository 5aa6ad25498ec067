package sim

import (
	"errors"
	"testing"

	"petswarm-sim/internal/pickup"
	"petswarm-sim/internal/telemetry"
)

// petOnlyWriter accepts pet rows and nothing else.
type petOnlyWriter struct {
	rows []telemetry.PetRow
}

func (w *petOnlyWriter) Write(r telemetry.PetRow) error {
	w.rows = append(w.rows, r)
	return nil
}

// recordingWriter accepts every row kind in batch form.
type recordingWriter struct {
	pets      []telemetry.PetRow
	damage    []pickup.DamageRow
	events    []telemetry.SwarmEventRow
	hatches   []telemetry.HatchRow
	states    []telemetry.SimulationStateRow
	admin     bool
	commander Commander
	closed    bool
	err       error
}

func (w *recordingWriter) Write(r telemetry.PetRow) error { return w.WriteBatch([]telemetry.PetRow{r}) }
func (w *recordingWriter) WriteBatch(r []telemetry.PetRow) error {
	w.pets = append(w.pets, r...)
	return w.err
}
func (w *recordingWriter) WriteDamage(r pickup.DamageRow) error {
	return w.WriteDamages([]pickup.DamageRow{r})
}
func (w *recordingWriter) WriteDamages(r []pickup.DamageRow) error {
	w.damage = append(w.damage, r...)
	return nil
}
func (w *recordingWriter) WriteSwarmEvent(r telemetry.SwarmEventRow) error {
	w.events = append(w.events, r)
	return nil
}
func (w *recordingWriter) WriteHatch(r telemetry.HatchRow) error {
	w.hatches = append(w.hatches, r)
	return nil
}
func (w *recordingWriter) WriteState(r telemetry.SimulationStateRow) error {
	w.states = append(w.states, r)
	return nil
}
func (w *recordingWriter) SetAdminStatus(l bool)    { w.admin = l }
func (w *recordingWriter) SetCommander(c Commander) { w.commander = c }
func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestMultiWriterFansOutByKind(t *testing.T) {
	pets := &petOnlyWriter{}
	rec := &recordingWriter{}
	mw := NewMultiWriter(pets, nil, rec)

	if err := mw.WriteBatch([]telemetry.PetRow{{PetID: "a"}, {PetID: "b"}}); err != nil {
		t.Fatalf("write batch: %v", err)
	}
	if err := mw.WriteDamages([]pickup.DamageRow{{PickupID: "p"}}); err != nil {
		t.Fatalf("write damages: %v", err)
	}
	if err := mw.WriteSwarmEvents([]telemetry.SwarmEventRow{{EventType: telemetry.SwarmEventHatch}}); err != nil {
		t.Fatalf("write events: %v", err)
	}
	if err := mw.WriteHatch(telemetry.HatchRow{Egg: "basic"}); err != nil {
		t.Fatalf("write hatch: %v", err)
	}
	if err := mw.WriteState(telemetry.SimulationStateRow{Tick: 1}); err != nil {
		t.Fatalf("write state: %v", err)
	}

	if len(pets.rows) != 2 || len(rec.pets) != 2 {
		t.Fatalf("pet rows not fanned out: %d %d", len(pets.rows), len(rec.pets))
	}
	if len(rec.damage) != 1 || len(rec.events) != 1 || len(rec.hatches) != 1 || len(rec.states) != 1 {
		t.Fatalf("unexpected recording: %+v", rec)
	}
}

func TestMultiWriterJoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	failing := &recordingWriter{err: boom}
	ok := &petOnlyWriter{}
	mw := NewMultiWriter(failing, ok)
	err := mw.Write(telemetry.PetRow{PetID: "a"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined error, got %v", err)
	}
	if len(ok.rows) != 1 {
		t.Fatalf("later writers should still receive the row")
	}
}

func TestMultiWriterForwardsHooks(t *testing.T) {
	rec := &recordingWriter{}
	mw := NewMultiWriter(&petOnlyWriter{}, rec)
	mw.SetAdminStatus(true)
	var c Commander = &Simulator{}
	mw.SetCommander(c)
	if err := mw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !rec.admin || rec.commander == nil || !rec.closed {
		t.Fatalf("hooks not forwarded: %+v", rec)
	}
}
