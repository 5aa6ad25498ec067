package sim

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"

	"petswarm-sim/internal/pickup"
	"petswarm-sim/internal/telemetry"
)

// greptimeClient is the subset of the ingester client the writer uses.
type greptimeClient interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

// GreptimeOptions locate the GreptimeDB gRPC endpoint.
type GreptimeOptions struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
}

// GreptimeDBWriter writes every row kind to GreptimeDB via the ingester client.
type GreptimeDBWriter struct {
	client      greptimeClient
	petTable    string
	damageTable string
	swarmTable  string
	stateTable  string
	hatchTable  string
	timeout     time.Duration
	log         *slog.Logger
}

// NewGreptimeDBWriter connects to GreptimeDB. Tables are created on first write.
func NewGreptimeDBWriter(opts GreptimeOptions) (*GreptimeDBWriter, error) {
	if opts.Host == "" {
		return nil, fmt.Errorf("greptime host is required")
	}
	cfg := greptime.NewConfig(opts.Host).WithDatabase(opts.Database)
	if opts.Port > 0 {
		cfg = cfg.WithPort(opts.Port)
	}
	if opts.Username != "" {
		cfg = cfg.WithAuth(opts.Username, opts.Password)
	}
	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("greptime client: %w", err)
	}
	return newGreptimeDBWriter(client), nil
}

func newGreptimeDBWriter(client greptimeClient) *GreptimeDBWriter {
	return &GreptimeDBWriter{
		client:      client,
		petTable:    telemetry.PetTableName,
		damageTable: telemetry.DamageTableName,
		swarmTable:  telemetry.SwarmTableName,
		stateTable:  telemetry.StateTableName,
		hatchTable:  telemetry.HatchTableName,
		timeout:     5 * time.Second,
		log:         slog.Default(),
	}
}

// column is one table column; tag and ts mark its semantic role.
type column struct {
	name string
	typ  types.ColumnType
	tag  bool
	ts   bool
}

func newTable(name string, cols []column) (*table.Table, error) {
	tbl, err := table.New(name)
	if err != nil {
		return nil, err
	}
	for _, c := range cols {
		switch {
		case c.tag:
			err = tbl.AddTagColumn(c.name, c.typ)
		case c.ts:
			err = tbl.AddTimestampColumn(c.name, c.typ)
		default:
			err = tbl.AddFieldColumn(c.name, c.typ)
		}
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", name, c.name, err)
		}
	}
	return tbl, nil
}

func (w *GreptimeDBWriter) write(name string, tbl *table.Table, rows int) error {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()
	if _, err := w.client.Write(ctx, tbl); err != nil {
		w.log.Error("greptime write failed", "table", name, "err", err)
		return err
	}
	w.log.Debug("greptime write", "table", name, "rows", rows)
	return nil
}

var petColumns = []column{
	{name: "session_id", typ: types.STRING, tag: true},
	{name: "pet_id", typ: types.STRING, tag: true},
	{name: "pet_name", typ: types.STRING},
	{name: "state", typ: types.STRING},
	{name: "x", typ: types.FLOAT64},
	{name: "y", typ: types.FLOAT64},
	{name: "z", typ: types.FLOAT64},
	{name: "yaw", typ: types.FLOAT64},
	{name: "target_id", typ: types.STRING},
	{name: "slot", typ: types.INT64},
	{name: "total", typ: types.INT64},
	{name: "ts", typ: types.TIMESTAMP_MILLISECOND, ts: true},
}

// Write inserts a single pet row.
func (w *GreptimeDBWriter) Write(row telemetry.PetRow) error {
	return w.WriteBatch([]telemetry.PetRow{row})
}

// WriteBatch inserts multiple pet rows.
func (w *GreptimeDBWriter) WriteBatch(rows []telemetry.PetRow) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := newTable(w.petTable, petColumns)
	if err != nil {
		return err
	}
	for _, r := range rows {
		if err := tbl.AddRow(r.SessionID, r.PetID, r.PetName, r.State, r.X, r.Y, r.Z, r.Yaw,
			r.TargetID, int64(r.Slot), int64(r.Total), r.Timestamp); err != nil {
			return err
		}
	}
	return w.write(w.petTable, tbl, len(rows))
}

var damageColumns = []column{
	{name: "session_id", typ: types.STRING, tag: true},
	{name: "pickup_id", typ: types.STRING, tag: true},
	{name: "pet_id", typ: types.STRING},
	{name: "pickup_kind", typ: types.STRING},
	{name: "damage", typ: types.FLOAT64},
	{name: "health_after", typ: types.FLOAT64},
	{name: "destroyed", typ: types.BOOLEAN},
	{name: "reward", typ: types.INT64},
	{name: "ts", typ: types.TIMESTAMP_MILLISECOND, ts: true},
}

// WriteDamage inserts a single damage row.
func (w *GreptimeDBWriter) WriteDamage(row pickup.DamageRow) error {
	return w.WriteDamages([]pickup.DamageRow{row})
}

// WriteDamages inserts multiple damage rows.
func (w *GreptimeDBWriter) WriteDamages(rows []pickup.DamageRow) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := newTable(w.damageTable, damageColumns)
	if err != nil {
		return err
	}
	for _, r := range rows {
		if err := tbl.AddRow(r.SessionID, r.PickupID, r.PetID, string(r.PickupKind), r.Damage,
			r.HealthAfter, r.Destroyed, int64(r.Reward), r.Timestamp); err != nil {
			return err
		}
	}
	return w.write(w.damageTable, tbl, len(rows))
}

var swarmColumns = []column{
	{name: "session_id", typ: types.STRING, tag: true},
	{name: "event_type", typ: types.STRING, tag: true},
	{name: "pet_ids", typ: types.JSON},
	{name: "pickup_id", typ: types.STRING},
	{name: "detail", typ: types.STRING},
	{name: "ts", typ: types.TIMESTAMP_MILLISECOND, ts: true},
}

// WriteSwarmEvent inserts a single swarm event.
func (w *GreptimeDBWriter) WriteSwarmEvent(row telemetry.SwarmEventRow) error {
	return w.WriteSwarmEvents([]telemetry.SwarmEventRow{row})
}

// WriteSwarmEvents inserts multiple swarm events. Pet ids are stored as a
// JSON array.
func (w *GreptimeDBWriter) WriteSwarmEvents(rows []telemetry.SwarmEventRow) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := newTable(w.swarmTable, swarmColumns)
	if err != nil {
		return err
	}
	for _, r := range rows {
		ids := r.PetIDs
		if ids == nil {
			ids = []string{}
		}
		b, err := json.Marshal(ids)
		if err != nil {
			return err
		}
		if err := tbl.AddRow(r.SessionID, r.EventType, string(b), r.PickupID, r.Detail, r.Timestamp); err != nil {
			return err
		}
	}
	return w.write(w.swarmTable, tbl, len(rows))
}

var stateColumns = []column{
	{name: "session_id", typ: types.STRING, tag: true},
	{name: "tick", typ: types.INT64},
	{name: "coins", typ: types.INT64},
	{name: "earned", typ: types.INT64},
	{name: "pets", typ: types.INT64},
	{name: "attacking", typ: types.INT64},
	{name: "pickups", typ: types.INT64},
	{name: "phase", typ: types.STRING},
	{name: "leader_x", typ: types.FLOAT64},
	{name: "leader_z", typ: types.FLOAT64},
	{name: "ts", typ: types.TIMESTAMP_MILLISECOND, ts: true},
}

// WriteState inserts a session state row.
func (w *GreptimeDBWriter) WriteState(row telemetry.SimulationStateRow) error {
	return w.WriteStates([]telemetry.SimulationStateRow{row})
}

// WriteStates inserts multiple session state rows.
func (w *GreptimeDBWriter) WriteStates(rows []telemetry.SimulationStateRow) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := newTable(w.stateTable, stateColumns)
	if err != nil {
		return err
	}
	for _, r := range rows {
		if err := tbl.AddRow(r.SessionID, r.Tick, int64(r.Coins), int64(r.Earned), int64(r.Pets),
			int64(r.Attacking), int64(r.Pickups), r.Phase, r.LeaderX, r.LeaderZ, r.Timestamp); err != nil {
			return err
		}
	}
	return w.write(w.stateTable, tbl, len(rows))
}

var hatchColumns = []column{
	{name: "session_id", typ: types.STRING, tag: true},
	{name: "egg", typ: types.STRING, tag: true},
	{name: "pet", typ: types.STRING},
	{name: "pet_id", typ: types.STRING},
	{name: "price", typ: types.INT64},
	{name: "balance_after", typ: types.INT64},
	{name: "ts", typ: types.TIMESTAMP_MILLISECOND, ts: true},
}

// WriteHatch inserts an egg purchase.
func (w *GreptimeDBWriter) WriteHatch(row telemetry.HatchRow) error {
	return w.WriteHatches([]telemetry.HatchRow{row})
}

// WriteHatches inserts multiple egg purchases.
func (w *GreptimeDBWriter) WriteHatches(rows []telemetry.HatchRow) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := newTable(w.hatchTable, hatchColumns)
	if err != nil {
		return err
	}
	for _, r := range rows {
		if err := tbl.AddRow(r.SessionID, r.Egg, r.Pet, r.PetID, int64(r.Price), int64(r.BalanceAfter), r.Timestamp); err != nil {
			return err
		}
	}
	return w.write(w.hatchTable, tbl, len(rows))
}
