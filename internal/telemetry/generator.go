package telemetry

import (
	"time"

	"petswarm-sim/internal/swarm"
)

// Generator turns live swarm state into telemetry rows.
type Generator struct {
	SessionID string
	now       func() time.Time
}

// NewGenerator creates a generator for a session. now may be nil.
func NewGenerator(sessionID string, now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{SessionID: sessionID, now: now}
}

// PetRow converts a member snapshot.
func (g *Generator) PetRow(s swarm.MemberState) PetRow {
	return PetRow{
		SessionID: g.SessionID,
		PetID:     s.ID,
		PetName:   s.Name,
		State:     string(s.State),
		X:         s.Position.X(),
		Y:         s.Position.Y(),
		Z:         s.Position.Z(),
		Yaw:       s.Yaw,
		TargetID:  s.TargetID,
		Slot:      s.Slot,
		Total:     s.Total,
		Timestamp: g.now().UTC(),
	}
}

// PetRows snapshots every member in order.
func (g *Generator) PetRows(members []*swarm.Member) []PetRow {
	rows := make([]PetRow, 0, len(members))
	for _, m := range members {
		rows = append(rows, g.PetRow(m.Snapshot()))
	}
	return rows
}

// SwarmEvent builds an event row stamped with the generator clock.
func (g *Generator) SwarmEvent(eventType string, petIDs []string, pickupID, detail string) SwarmEventRow {
	if petIDs == nil {
		petIDs = []string{}
	}
	return SwarmEventRow{
		SessionID: g.SessionID,
		EventType: eventType,
		PetIDs:    petIDs,
		PickupID:  pickupID,
		Detail:    detail,
		Timestamp: g.now().UTC(),
	}
}
