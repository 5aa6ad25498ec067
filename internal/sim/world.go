// Builders translating simulation config into core components
package sim

import (
	"fmt"

	"petswarm-sim/internal/config"
	"petswarm-sim/internal/droptable"
	"petswarm-sim/internal/formation"
	"petswarm-sim/internal/ground"
	"petswarm-sim/internal/hatchery"
	"petswarm-sim/internal/pickup"
	"petswarm-sim/internal/spawn"
	"petswarm-sim/internal/swarm"
)

func plannerFromConfig(f config.Formation) formation.Planner {
	return formation.Planner{
		RowWidth:   f.RowWidth,
		Spacing:    f.Spacing,
		StartDepth: f.StartDepth,
		RowDepth:   f.RowDepth,
		CurveBias:  f.CurveBias,
	}
}

func paramsFromConfig(p config.PetParams) swarm.Params {
	return swarm.Params{
		FollowSpeed:  p.FollowSpeed,
		JumpHeight:   p.JumpHeight,
		JumpSpeed:    p.JumpSpeed,
		BaseHeight:   p.BaseHeight,
		PhaseSpread:  p.PhaseSpread,
		AttackRadius: p.AttackRadius,
		StopDistance: p.StopDistance,
		AttackBounce: p.AttackBounce,
	}
}

func probeFromConfig(cfg *config.SimulationConfig) ground.Probe {
	t := cfg.Terrain
	if t.Type != "hills" {
		return ground.Plane{Height: t.Height}
	}
	a := cfg.Spawner.Area
	return ground.Hills{
		MinX:       a.MinX,
		MaxX:       a.MaxX,
		MinZ:       a.MinZ,
		MaxZ:       a.MaxZ,
		Base:       t.Height,
		Amplitude:  t.Amplitude,
		Wavelength: t.Wavelength,
	}
}

func spawnConfigFromConfig(s config.Spawner) spawn.Config {
	return spawn.Config{
		Area: spawn.Area{
			MinX:   s.Area.MinX,
			MaxX:   s.Area.MaxX,
			MinZ:   s.Area.MinZ,
			MaxZ:   s.Area.MaxZ,
			FloorY: s.Area.FloorY,
		},
		MaxLive:       s.MaxLive,
		Interval:      s.IntervalS,
		SpawnHeight:   s.SpawnHeight,
		MinSeparation: s.MinSeparation,
		MaxAttempts:   s.MaxAttempts,
		Yaw:           s.Yaw,
	}
}

func pickupTableFromConfig(p config.Pickups) (*droptable.Table[pickup.Spec], error) {
	entries := make([]droptable.Entry[pickup.Spec], 0, len(p.Kinds))
	for _, k := range p.Kinds {
		entries = append(entries, droptable.Entry[pickup.Spec]{
			Item:   pickup.Spec{Kind: pickup.Kind(k.Kind), MaxHealth: k.MaxHealth, Reward: k.Reward},
			Weight: k.Weight,
		})
	}
	tbl, err := droptable.New(entries)
	if err != nil {
		return nil, fmt.Errorf("pickup kinds: %w", err)
	}
	return tbl, nil
}

func petFromConfig(p config.Pet) hatchery.Pet {
	return hatchery.Pet{Name: p.Name, Damage: p.Damage, AttackRate: p.AttackRate, MoveSpeed: p.MoveSpeed}
}

func eggsFromConfig(cfg *config.SimulationConfig) ([]hatchery.Egg, error) {
	eggs := make([]hatchery.Egg, 0, len(cfg.Eggs))
	for _, e := range cfg.Eggs {
		drops := make([]droptable.Entry[hatchery.Pet], 0, len(e.Drops))
		for _, d := range e.Drops {
			p, ok := cfg.Pet(d.Pet)
			if !ok {
				return nil, fmt.Errorf("egg %s: unknown pet %q", e.Name, d.Pet)
			}
			drops = append(drops, droptable.Entry[hatchery.Pet]{Item: petFromConfig(p), Weight: d.Weight})
		}
		egg, err := hatchery.NewEgg(e.Name, e.Price, drops)
		if err != nil {
			return nil, err
		}
		eggs = append(eggs, egg)
	}
	return eggs, nil
}
