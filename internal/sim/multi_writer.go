package sim

import (
	"errors"
	"io"

	"petswarm-sim/internal/pickup"
	"petswarm-sim/internal/telemetry"
)

// MultiWriter fans every row kind out to the writers that accept it.
type MultiWriter struct {
	writers []TelemetryWriter
}

// NewMultiWriter creates a new MultiWriter. nil writers are skipped.
func NewMultiWriter(writers ...TelemetryWriter) *MultiWriter {
	mw := &MultiWriter{}
	for _, w := range writers {
		if w != nil {
			mw.writers = append(mw.writers, w)
		}
	}
	return mw
}

// fanOut calls fn on every writer implementing W, batching through B when
// possible. Every writer is tried and the errors are joined.
func fanOut[W any, B any, R any](writers []TelemetryWriter, rows []R, batch func(B, []R) error, single func(W, R) error) error {
	var errs []error
	for _, tw := range writers {
		if bw, ok := tw.(B); ok {
			errs = append(errs, batch(bw, rows))
			continue
		}
		w, ok := tw.(W)
		if !ok {
			continue
		}
		for _, r := range rows {
			if err := single(w, r); err != nil {
				errs = append(errs, err)
				break
			}
		}
	}
	return errors.Join(errs...)
}

// Write sends a pet row to all writers.
func (mw *MultiWriter) Write(row telemetry.PetRow) error {
	return mw.WriteBatch([]telemetry.PetRow{row})
}

// WriteBatch sends multiple pet rows to all writers, using batch if supported.
func (mw *MultiWriter) WriteBatch(rows []telemetry.PetRow) error {
	return fanOut(mw.writers, rows,
		func(b batchWriter, r []telemetry.PetRow) error { return b.WriteBatch(r) },
		func(w TelemetryWriter, r telemetry.PetRow) error { return w.Write(r) })
}

// WriteDamage sends a damage row to all damage writers.
func (mw *MultiWriter) WriteDamage(row pickup.DamageRow) error {
	return mw.WriteDamages([]pickup.DamageRow{row})
}

// WriteDamages sends multiple damage rows to all damage writers.
func (mw *MultiWriter) WriteDamages(rows []pickup.DamageRow) error {
	return fanOut(mw.writers, rows,
		func(b batchDamageWriter, r []pickup.DamageRow) error { return b.WriteDamages(r) },
		func(w DamageWriter, r pickup.DamageRow) error { return w.WriteDamage(r) })
}

// WriteSwarmEvent sends a swarm event to all event writers.
func (mw *MultiWriter) WriteSwarmEvent(row telemetry.SwarmEventRow) error {
	return mw.WriteSwarmEvents([]telemetry.SwarmEventRow{row})
}

// WriteSwarmEvents sends multiple swarm events to all event writers.
func (mw *MultiWriter) WriteSwarmEvents(rows []telemetry.SwarmEventRow) error {
	return fanOut(mw.writers, rows,
		func(b batchSwarmEventWriter, r []telemetry.SwarmEventRow) error { return b.WriteSwarmEvents(r) },
		func(w SwarmEventWriter, r telemetry.SwarmEventRow) error { return w.WriteSwarmEvent(r) })
}

// WriteHatch sends a hatch row to all hatch writers.
func (mw *MultiWriter) WriteHatch(row telemetry.HatchRow) error {
	return mw.WriteHatches([]telemetry.HatchRow{row})
}

// WriteHatches sends multiple hatch rows to all hatch writers.
func (mw *MultiWriter) WriteHatches(rows []telemetry.HatchRow) error {
	return fanOut(mw.writers, rows,
		func(b batchHatchWriter, r []telemetry.HatchRow) error { return b.WriteHatches(r) },
		func(w HatchWriter, r telemetry.HatchRow) error { return w.WriteHatch(r) })
}

// WriteState sends a state row to all state writers.
func (mw *MultiWriter) WriteState(row telemetry.SimulationStateRow) error {
	return mw.WriteStates([]telemetry.SimulationStateRow{row})
}

// WriteStates sends multiple state rows to all state writers.
func (mw *MultiWriter) WriteStates(rows []telemetry.SimulationStateRow) error {
	return fanOut(mw.writers, rows,
		func(b batchStateWriter, r []telemetry.SimulationStateRow) error { return b.WriteStates(r) },
		func(w StateWriter, r telemetry.SimulationStateRow) error { return w.WriteState(r) })
}

// SetAdminStatus forwards the admin UI status to writers that show it.
func (mw *MultiWriter) SetAdminStatus(listening bool) {
	for _, w := range mw.writers {
		if aw, ok := w.(AdminStatusWriter); ok {
			aw.SetAdminStatus(listening)
		}
	}
}

// SetCommander forwards the command surface to interactive writers.
func (mw *MultiWriter) SetCommander(c Commander) {
	for _, w := range mw.writers {
		if cs, ok := w.(CommandSink); ok {
			cs.SetCommander(c)
		}
	}
}

// Close closes every writer that holds resources.
func (mw *MultiWriter) Close() error {
	var errs []error
	for _, w := range mw.writers {
		if c, ok := w.(io.Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}
