package sim

import "petswarm-sim/internal/telemetry"

// HatchWriter handles egg purchase rows.
type HatchWriter interface {
	WriteHatch(telemetry.HatchRow) error
}

// Optional: hatch writers may support batch mode.
type batchHatchWriter interface {
	WriteHatches([]telemetry.HatchRow) error
}
