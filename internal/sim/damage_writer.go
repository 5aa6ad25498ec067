package sim

import "petswarm-sim/internal/pickup"

// DamageWriter handles hits landed on pickups.
type DamageWriter interface {
	WriteDamage(pickup.DamageRow) error
}

// Optional: damage writers may support batch mode.
type batchDamageWriter interface {
	WriteDamages([]pickup.DamageRow) error
}
