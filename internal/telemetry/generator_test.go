package telemetry

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"petswarm-sim/internal/swarm"
)

func TestPetRow(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("x", 3600))
	gen := NewGenerator("session-1", func() time.Time { return ts })
	row := gen.PetRow(swarm.MemberState{
		ID:       "pet-1",
		Name:     "cat",
		State:    swarm.Attacking,
		Position: mgl64.Vec3{1, 2, 3},
		Yaw:      0.5,
		TargetID: "p1",
		Slot:     2,
		Total:    4,
	})
	if row.SessionID != "session-1" || row.PetID != "pet-1" || row.PetName != "cat" {
		t.Errorf("unexpected ids: %+v", row)
	}
	if row.State != "attacking" || row.TargetID != "p1" {
		t.Errorf("unexpected state: %+v", row)
	}
	if row.X != 1 || row.Y != 2 || row.Z != 3 || row.Slot != 2 || row.Total != 4 {
		t.Errorf("unexpected position/slot: %+v", row)
	}
	if !row.Timestamp.Equal(ts) || row.Timestamp.Location() != time.UTC {
		t.Errorf("expected UTC timestamp, got %v", row.Timestamp)
	}
}

func TestPetRowsOrder(t *testing.T) {
	reg := swarm.NewRegistry()
	for _, id := range []string{"a", "b", "c"} {
		reg.Register(swarm.NewMember(swarm.MemberConfig{ID: id}))
	}
	rows := NewGenerator("s", nil).PetRows(reg.All())
	if len(rows) != 3 || rows[0].PetID != "a" || rows[2].PetID != "c" {
		t.Fatalf("unexpected rows %+v", rows)
	}
}

func TestSwarmEventNeverNilIDs(t *testing.T) {
	ev := NewGenerator("s", nil).SwarmEvent(SwarmEventPickupSpawned, nil, "p1", "coin")
	if ev.PetIDs == nil {
		t.Fatalf("pet ids should encode as an empty list")
	}
	if ev.EventType != SwarmEventPickupSpawned || ev.PickupID != "p1" || ev.Detail != "coin" {
		t.Fatalf("unexpected event %+v", ev)
	}
}

func TestTableNameDefault(t *testing.T) {
	if (PetRow{}).TableName() != PetTableName {
		t.Fatalf("table name mismatch")
	}
}
