// Writer implementation printing telemetry to STDOUT
package sim

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"petswarm-sim/internal/config"
	"petswarm-sim/internal/pickup"
	"petswarm-sim/internal/telemetry"
)

// StdoutWriter prints rows to STDOUT, colorized on a terminal and as JSON
// lines otherwise.
type StdoutWriter struct {
	out      io.Writer
	colorize bool
	color    *ColorStdoutWriter
}

// NewStdoutWriter picks the output style from whether STDOUT is a terminal.
func NewStdoutWriter(cfg *config.SimulationConfig) *StdoutWriter {
	return newStdoutWriter(cfg, os.Stdout, term.IsTerminal(int(os.Stdout.Fd())))
}

func newStdoutWriter(cfg *config.SimulationConfig, out io.Writer, colorize bool) *StdoutWriter {
	w := &StdoutWriter{out: out, colorize: colorize}
	if colorize {
		w.color = &ColorStdoutWriter{cfg: cfg, out: out, petColors: make(map[string]string)}
	}
	return w
}

func (w *StdoutWriter) printJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w.out, string(data))
	return err
}

// Write outputs a single pet row.
func (w *StdoutWriter) Write(row telemetry.PetRow) error {
	if w.colorize {
		return w.color.Write(row)
	}
	return w.printJSON(row)
}

// WriteBatch outputs multiple pet rows.
func (w *StdoutWriter) WriteBatch(rows []telemetry.PetRow) error {
	for _, r := range rows {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteDamage prints a damage row.
func (w *StdoutWriter) WriteDamage(d pickup.DamageRow) error {
	if w.colorize {
		return w.color.WriteDamage(d)
	}
	return w.printJSON(d)
}

// WriteSwarmEvent prints a swarm event.
func (w *StdoutWriter) WriteSwarmEvent(e telemetry.SwarmEventRow) error {
	if w.colorize {
		return w.color.WriteSwarmEvent(e)
	}
	return w.printJSON(e)
}

// WriteHatch prints an egg purchase.
func (w *StdoutWriter) WriteHatch(h telemetry.HatchRow) error {
	if w.colorize {
		return w.color.WriteHatch(h)
	}
	return w.printJSON(h)
}

// WriteState prints a state row.
func (w *StdoutWriter) WriteState(row telemetry.SimulationStateRow) error {
	if w.colorize {
		return w.color.WriteState(row)
	}
	return w.printJSON(row)
}
