package sim

import "petswarm-sim/internal/hatchery"

// Commander is the command surface interactive writers drive.
type Commander interface {
	Attack(target string) (AttackResult, error)
	BuyEgg(egg string) (hatchery.Result, error)
}

// CommandSink allows writers to receive the simulator's command surface.
type CommandSink interface {
	SetCommander(Commander)
}
