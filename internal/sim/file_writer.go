package sim

import (
	"encoding/json"
	"errors"
	"os"

	"petswarm-sim/internal/pickup"
	"petswarm-sim/internal/telemetry"
)

// FilePaths names the JSONL file for each row kind. Empty paths other than
// Pets skip that log.
type FilePaths struct {
	Pets   string
	Damage string
	Swarm  string
	State  string
	Hatch  string
}

// jsonlLog is one open JSONL file. A nil log discards rows.
type jsonlLog struct {
	f   *os.File
	enc *json.Encoder
}

func (l *jsonlLog) encode(v any) error {
	if l == nil {
		return nil
	}
	return l.enc.Encode(v)
}

func (l *jsonlLog) close() error {
	if l == nil {
		return nil
	}
	return l.f.Close()
}

// FileWriter writes every row kind to JSONL files.
type FileWriter struct {
	pets   *jsonlLog
	damage *jsonlLog
	swarm  *jsonlLog
	state  *jsonlLog
	hatch  *jsonlLog
}

// NewFileWriter creates the configured files, truncating existing ones.
func NewFileWriter(paths FilePaths) (*FileWriter, error) {
	if paths.Pets == "" {
		return nil, errors.New("pet telemetry path is required")
	}
	fw := &FileWriter{}
	targets := []struct {
		path string
		dst  **jsonlLog
	}{
		{paths.Pets, &fw.pets},
		{paths.Damage, &fw.damage},
		{paths.Swarm, &fw.swarm},
		{paths.State, &fw.state},
		{paths.Hatch, &fw.hatch},
	}
	for _, t := range targets {
		if t.path == "" {
			continue
		}
		f, err := os.Create(t.path)
		if err != nil {
			fw.Close()
			return nil, err
		}
		*t.dst = &jsonlLog{f: f, enc: json.NewEncoder(f)}
	}
	return fw, nil
}

// Write logs a single pet row.
func (f *FileWriter) Write(row telemetry.PetRow) error {
	return f.pets.encode(row)
}

// WriteBatch logs multiple pet rows.
func (f *FileWriter) WriteBatch(rows []telemetry.PetRow) error {
	for _, r := range rows {
		if err := f.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteDamage logs a single damage row, if enabled.
func (f *FileWriter) WriteDamage(d pickup.DamageRow) error {
	return f.damage.encode(d)
}

// WriteSwarmEvent logs a single swarm event row, if enabled.
func (f *FileWriter) WriteSwarmEvent(e telemetry.SwarmEventRow) error {
	return f.swarm.encode(e)
}

// WriteState logs a simulation state row, if enabled.
func (f *FileWriter) WriteState(row telemetry.SimulationStateRow) error {
	return f.state.encode(row)
}

// WriteHatch logs an egg purchase, if enabled.
func (f *FileWriter) WriteHatch(row telemetry.HatchRow) error {
	return f.hatch.encode(row)
}

// Close closes all open files.
func (f *FileWriter) Close() error {
	return errors.Join(f.pets.close(), f.damage.close(), f.swarm.close(), f.state.close(), f.hatch.close())
}
