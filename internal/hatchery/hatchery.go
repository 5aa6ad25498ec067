// Egg purchases: debit the price, roll the egg's drop table and hand the
// hatched pet to a spawner.
package hatchery

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"petswarm-sim/internal/droptable"
)

// ErrUnknownEgg is returned when buying an egg that is not in the catalog.
var ErrUnknownEgg = errors.New("hatchery: unknown egg")

// Pet is the definition a hatch resolves to.
type Pet struct {
	Name       string  `json:"name"`
	Damage     float64 `json:"damage"`
	AttackRate float64 `json:"attack_rate"`
	MoveSpeed  float64 `json:"move_speed"`
}

// Egg is a purchasable drop table.
type Egg struct {
	Name  string
	Price int
	Drops *droptable.Table[Pet]
}

// NewEgg validates the drop entries and builds an egg.
func NewEgg(name string, price int, drops []droptable.Entry[Pet]) (Egg, error) {
	if price < 0 {
		return Egg{}, fmt.Errorf("egg %s: negative price %d", name, price)
	}
	tbl, err := droptable.New(drops)
	if err != nil {
		return Egg{}, fmt.Errorf("egg %s: %w", name, err)
	}
	return Egg{Name: name, Price: price, Drops: tbl}, nil
}

// Purse is the economy collaborator.
type Purse interface {
	Balance() int
	Debit(amount int) error
}

// Spawner turns a hatched pet into a live swarm member.
type Spawner interface {
	SpawnPet(p Pet) (id string, err error)
}

// SpawnerFunc adapts a function to Spawner.
type SpawnerFunc func(p Pet) (string, error)

// SpawnPet calls f.
func (f SpawnerFunc) SpawnPet(p Pet) (string, error) { return f(p) }

// Result describes a completed hatch.
type Result struct {
	Egg          string
	Pet          Pet
	PetID        string
	Price        int
	BalanceAfter int
}

// Hatchery sells eggs.
type Hatchery struct {
	eggs    map[string]Egg
	purse   Purse
	spawner Spawner
	rng     *rand.Rand
}

// New creates a hatchery over a catalog of eggs.
func New(eggs []Egg, purse Purse, spawner Spawner, rng *rand.Rand) *Hatchery {
	m := make(map[string]Egg, len(eggs))
	for _, e := range eggs {
		m[e.Name] = e
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &Hatchery{eggs: m, purse: purse, spawner: spawner, rng: rng}
}

// Egg looks up an egg by name.
func (h *Hatchery) Egg(name string) (Egg, bool) {
	e, ok := h.eggs[name]
	return e, ok
}

// Eggs returns the catalog sorted by price then name.
func (h *Hatchery) Eggs() []Egg {
	out := make([]Egg, 0, len(h.eggs))
	for _, e := range h.eggs {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Price != out[j].Price {
			return out[i].Price < out[j].Price
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// CanAfford reports whether the purse covers the egg's price.
func (h *Hatchery) CanAfford(name string) bool {
	e, ok := h.eggs[name]
	return ok && h.purse.Balance() >= e.Price
}

// Buy debits the egg price, rolls the drop table and spawns the pet. Nothing
// is debited when the purchase is refused. A spawn failure after the debit
// is returned with the rolled pet so callers can report it.
func (h *Hatchery) Buy(name string) (Result, error) {
	egg, ok := h.eggs[name]
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownEgg, name)
	}
	if err := h.purse.Debit(egg.Price); err != nil {
		return Result{}, fmt.Errorf("buy %s: %w", name, err)
	}
	pet := egg.Drops.Pick(h.rng)
	res := Result{Egg: name, Pet: pet, Price: egg.Price, BalanceAfter: h.purse.Balance()}
	if h.spawner == nil {
		return res, nil
	}
	id, err := h.spawner.SpawnPet(pet)
	if err != nil {
		return res, fmt.Errorf("spawn %s: %w", pet.Name, err)
	}
	res.PetID = id
	return res, nil
}
