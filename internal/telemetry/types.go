// Telemetry rows written by the simulator sinks
package telemetry

import (
	"os"
	"time"
)

// PetRow represents one pet telemetry record for GreptimeDB.
type PetRow struct {
	SessionID string    `json:"session_id"` // TAG
	PetID     string    `json:"pet_id"`     // TAG
	PetName   string    `json:"pet_name"`
	State     string    `json:"state"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Z         float64   `json:"z"`
	Yaw       float64   `json:"yaw"`
	TargetID  string    `json:"target_id,omitempty"`
	Slot      int       `json:"slot"`
	Total     int       `json:"total"`
	Timestamp time.Time `json:"ts"` // TIME INDEX
}

// Swarm event types.
const (
	SwarmEventAttackCommand   = "attack_command"
	SwarmEventRetargetFollow  = "retarget_follow"
	SwarmEventFormationChange = "formation_change"
	SwarmEventHatch           = "hatch"
	SwarmEventPickupSpawned   = "pickup_spawned"
	SwarmEventPickupDestroyed = "pickup_destroyed"
)

// SwarmEventRow represents a swarm coordination event.
type SwarmEventRow struct {
	SessionID string    `json:"session_id"`
	EventType string    `json:"event_type"`
	PetIDs    []string  `json:"pet_ids"`
	PickupID  string    `json:"pickup_id,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"ts"`
}

// SimulationStateRow captures per-tick session state.
type SimulationStateRow struct {
	SessionID string    `json:"session_id"`
	Tick      int64     `json:"tick"`
	Coins     int       `json:"coins"`
	Earned    int       `json:"earned"`
	Pets      int       `json:"pets"`
	Attacking int       `json:"attacking"`
	Pickups   int       `json:"pickups"`
	Phase     string    `json:"phase,omitempty"`
	LeaderX   float64   `json:"leader_x"`
	LeaderZ   float64   `json:"leader_z"`
	Timestamp time.Time `json:"ts"`
}

// HatchRow records an egg purchase.
type HatchRow struct {
	SessionID    string    `json:"session_id"`
	Egg          string    `json:"egg"`
	Pet          string    `json:"pet"`
	PetID        string    `json:"pet_id"`
	Price        int       `json:"price"`
	BalanceAfter int       `json:"balance_after"`
	Timestamp    time.Time `json:"ts"`
}

// Default GreptimeDB table names. Each can be overridden through the
// environment.
var (
	PetTableName    = envOr("GREPTIMEDB_TABLE", "pet_telemetry")
	SwarmTableName  = envOr("SWARM_EVENT_TABLE", "swarm_events")
	StateTableName  = envOr("SIMULATION_STATE_TABLE", "simulation_state")
	HatchTableName  = envOr("HATCH_TABLE", "hatch_events")
	DamageTableName = envOr("PICKUP_DAMAGE_TABLE", "pickup_damage")
)

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func (PetRow) TableName() string { return PetTableName }
