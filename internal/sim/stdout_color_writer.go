// ColorStdoutWriter prints human-friendly, colorized telemetry to STDOUT.
package sim

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"petswarm-sim/internal/config"
	"petswarm-sim/internal/pickup"
	"petswarm-sim/internal/swarm"
	"petswarm-sim/internal/telemetry"
)

const (
	colorReset   = "\x1b[0m"
	colorRed     = "\x1b[31m"
	colorGreen   = "\x1b[32m"
	colorYellow  = "\x1b[33m"
	colorBlue    = "\x1b[34m"
	colorMagenta = "\x1b[35m"
	colorCyan    = "\x1b[36m"
	colorWhite   = "\x1b[37m"
	colorGray    = "\x1b[90m"
)

// ColorStdoutWriter prints rows using ANSI colors.
type ColorStdoutWriter struct {
	cfg       *config.SimulationConfig
	out       io.Writer
	once      sync.Once
	petColors map[string]string
	colorIdx  int
}

var petPalette = []string{colorRed, colorGreen, colorYellow, colorBlue, colorMagenta, colorCyan}

// NewColorStdoutWriter creates a ColorStdoutWriter writing to os.Stdout.
func NewColorStdoutWriter(cfg *config.SimulationConfig) *ColorStdoutWriter {
	return &ColorStdoutWriter{
		cfg:       cfg,
		out:       os.Stdout,
		petColors: make(map[string]string),
	}
}

func (w *ColorStdoutWriter) petColor(name string) string {
	if c, ok := w.petColors[name]; ok {
		return c
	}
	c := petPalette[w.colorIdx%len(petPalette)]
	w.petColors[name] = c
	w.colorIdx++
	return c
}

func (w *ColorStdoutWriter) printOverview() {
	if w.cfg == nil {
		return
	}

	fmt.Fprintln(w.out, "Simulation Configuration:")
	tw := tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Starting Coins:\t%d\n", w.cfg.Session.StartingCoins)
	fmt.Fprintf(tw, "Starting Pets:\t%s\n", strings.Join(w.cfg.StartingPets, ", "))
	fmt.Fprintf(tw, "Row Width:\t%d\n", w.cfg.Formation.RowWidth)
	fmt.Fprintf(tw, "Max Pickups:\t%d\n", w.cfg.Spawner.MaxLive)
	fmt.Fprintf(tw, "Spawn Interval (s):\t%.1f\n", w.cfg.Spawner.IntervalS)
	fmt.Fprintf(tw, "Terrain:\t%s\n", w.cfg.Terrain.Type)
	if w.cfg.Scenario != "" {
		fmt.Fprintf(tw, "Scenario:\t%s\n", w.cfg.Scenario)
	}
	tw.Flush()

	fmt.Fprintln(w.out, "\nPets:")
	tw = tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Name\tDamage\tAttack Rate\n")
	for _, p := range w.cfg.Pets {
		fmt.Fprintf(tw, "%s%s%s\t%.0f\t%.2fs\n", w.petColor(p.Name), p.Name, colorReset, p.Damage, p.AttackRate)
	}
	tw.Flush()

	if len(w.cfg.Eggs) > 0 {
		fmt.Fprintln(w.out, "\nEggs:")
		tw = tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "Name\tPrice\tDrops\n")
		for _, e := range w.cfg.Eggs {
			drops := make([]string, 0, len(e.Drops))
			for _, d := range e.Drops {
				drops = append(drops, fmt.Sprintf("%s:%g", d.Pet, d.Weight))
			}
			fmt.Fprintf(tw, "%s\t%d\t%s\n", e.Name, e.Price, strings.Join(drops, " "))
		}
		tw.Flush()
	}
	fmt.Fprintln(w.out)
}

func (w *ColorStdoutWriter) stamp(ts time.Time) {
	fmt.Fprintf(w.out, "%s[%s]%s ", colorGray, ts.Format(time.RFC3339), colorReset)
}

// Write outputs a single pet row in colorized format.
func (w *ColorStdoutWriter) Write(row telemetry.PetRow) error {
	w.once.Do(w.printOverview)

	stateColor := colorGreen
	if row.State == string(swarm.Attacking) {
		stateColor = colorRed
	}

	w.stamp(row.Timestamp)
	fmt.Fprintf(w.out, "%spet=%s%s ", w.petColor(row.PetName), row.PetName, colorReset)
	fmt.Fprintf(w.out, "%sid=%s%s ", colorWhite, shortID(row.PetID), colorReset)
	fmt.Fprintf(w.out, "%spos=(%.2f,%.2f,%.2f)%s ", colorYellow, row.X, row.Y, row.Z, colorReset)
	fmt.Fprintf(w.out, "%syaw=%.2f%s ", colorCyan, row.Yaw, colorReset)
	fmt.Fprintf(w.out, "%sslot=%d/%d%s ", colorBlue, row.Slot, row.Total, colorReset)
	fmt.Fprintf(w.out, "%sstate=%s%s", stateColor, row.State, colorReset)
	if row.TargetID != "" {
		fmt.Fprintf(w.out, " %starget=%s%s", colorMagenta, shortID(row.TargetID), colorReset)
	}
	fmt.Fprintln(w.out)
	return nil
}

// WriteBatch outputs multiple pet rows.
func (w *ColorStdoutWriter) WriteBatch(rows []telemetry.PetRow) error {
	for _, r := range rows {
		_ = w.Write(r)
	}
	return nil
}

// WriteDamage prints a hit on a pickup.
func (w *ColorStdoutWriter) WriteDamage(d pickup.DamageRow) error {
	w.once.Do(w.printOverview)
	w.stamp(d.Timestamp)
	fmt.Fprintf(w.out, "%sHIT%s pet=%s pickup=%s kind=%s dmg=%.1f hp=%.1f",
		colorRed, colorReset, shortID(d.PetID), shortID(d.PickupID), d.PickupKind, d.Damage, d.HealthAfter)
	if d.Destroyed {
		fmt.Fprintf(w.out, " %sdestroyed +%d%s", colorYellow, d.Reward, colorReset)
	}
	fmt.Fprintln(w.out)
	return nil
}

// WriteSwarmEvent prints a swarm coordination event.
func (w *ColorStdoutWriter) WriteSwarmEvent(e telemetry.SwarmEventRow) error {
	w.once.Do(w.printOverview)
	w.stamp(e.Timestamp)
	fmt.Fprintf(w.out, "%sSWARM%s type=%s pets=%d", colorCyan, colorReset, e.EventType, len(e.PetIDs))
	if e.PickupID != "" {
		fmt.Fprintf(w.out, " pickup=%s", shortID(e.PickupID))
	}
	if e.Detail != "" {
		fmt.Fprintf(w.out, " detail=%q", e.Detail)
	}
	fmt.Fprintln(w.out)
	return nil
}

// WriteHatch prints an egg purchase.
func (w *ColorStdoutWriter) WriteHatch(h telemetry.HatchRow) error {
	w.once.Do(w.printOverview)
	w.stamp(h.Timestamp)
	fmt.Fprintf(w.out, "%sHATCH%s egg=%s pet=%s%s%s price=%d coins=%d\n",
		colorMagenta, colorReset, h.Egg, w.petColor(h.Pet), h.Pet, colorReset, h.Price, h.BalanceAfter)
	return nil
}

// WriteState prints session state.
func (w *ColorStdoutWriter) WriteState(row telemetry.SimulationStateRow) error {
	w.once.Do(w.printOverview)
	w.stamp(row.Timestamp)
	fmt.Fprintf(w.out, "%sSTATE%s tick=%d coins=%d earned=%d pets=%d attacking=%d pickups=%d",
		colorBlue, colorReset, row.Tick, row.Coins, row.Earned, row.Pets, row.Attacking, row.Pickups)
	if row.Phase != "" {
		fmt.Fprintf(w.out, " phase=%s", row.Phase)
	}
	fmt.Fprintln(w.out)
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
