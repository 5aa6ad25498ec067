package hatchery

import (
	"errors"
	"math/rand"
	"testing"

	"petswarm-sim/internal/droptable"
	"petswarm-sim/internal/economy"
)

var (
	cat    = Pet{Name: "cat", Damage: 10, AttackRate: 1}
	dragon = Pet{Name: "dragon", Damage: 50, AttackRate: 0.5}
)

func starterEgg(t *testing.T) Egg {
	t.Helper()
	e, err := NewEgg("starter", 100, []droptable.Entry[Pet]{{Item: cat, Weight: 90}, {Item: dragon, Weight: 10}})
	if err != nil {
		t.Fatalf("NewEgg: %v", err)
	}
	return e
}

func TestNewEgg_Invalid(t *testing.T) {
	if _, err := NewEgg("empty", 10, nil); !errors.Is(err, droptable.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := NewEgg("neg", -1, []droptable.Entry[Pet]{{Item: cat, Weight: 1}}); err == nil {
		t.Fatalf("expected error for negative price")
	}
}

func TestBuy_DebitsThenSpawns(t *testing.T) {
	w := economy.NewWallet(150)
	var spawned []Pet
	sp := SpawnerFunc(func(p Pet) (string, error) {
		if w.Balance() != 50 {
			t.Fatalf("spawn ran before debit, balance %d", w.Balance())
		}
		spawned = append(spawned, p)
		return "pet-1", nil
	})
	h := New([]Egg{starterEgg(t)}, w, sp, rand.New(rand.NewSource(1)))

	res, err := h.Buy("starter")
	if err != nil {
		t.Fatalf("Buy: %v", err)
	}
	if res.PetID != "pet-1" || res.BalanceAfter != 50 || res.Price != 100 {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(spawned) != 1 || spawned[0] != res.Pet {
		t.Fatalf("spawned %v, result pet %v", spawned, res.Pet)
	}
}

func TestBuy_InsufficientFunds(t *testing.T) {
	w := economy.NewWallet(99)
	calls := 0
	h := New([]Egg{starterEgg(t)}, w, SpawnerFunc(func(Pet) (string, error) { calls++; return "", nil }), nil)
	_, err := h.Buy("starter")
	if !errors.Is(err, economy.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if w.Balance() != 99 || calls != 0 {
		t.Fatalf("refused purchase must not debit or spawn")
	}
	if h.CanAfford("starter") {
		t.Fatalf("CanAfford should be false")
	}
}

func TestBuy_UnknownEgg(t *testing.T) {
	h := New(nil, economy.NewWallet(1000), nil, nil)
	if _, err := h.Buy("golden"); !errors.Is(err, ErrUnknownEgg) {
		t.Fatalf("expected ErrUnknownEgg, got %v", err)
	}
}

func TestBuy_SpawnFailureKeepsRoll(t *testing.T) {
	w := economy.NewWallet(100)
	boom := errors.New("boom")
	h := New([]Egg{starterEgg(t)}, w, SpawnerFunc(func(Pet) (string, error) { return "", boom }), rand.New(rand.NewSource(1)))
	res, err := h.Buy("starter")
	if !errors.Is(err, boom) {
		t.Fatalf("expected spawn error, got %v", err)
	}
	if res.Pet.Name == "" || w.Balance() != 0 {
		t.Fatalf("expected rolled pet and debit, got %+v balance %d", res, w.Balance())
	}
}

func TestBuy_DropRatesConverge(t *testing.T) {
	const n = 20000
	w := economy.NewWallet(100 * n)
	h := New([]Egg{starterEgg(t)}, w, nil, rand.New(rand.NewSource(99)))
	dragons := 0
	for i := 0; i < n; i++ {
		res, err := h.Buy("starter")
		if err != nil {
			t.Fatalf("Buy: %v", err)
		}
		if res.Pet.Name == "dragon" {
			dragons++
		}
	}
	freq := float64(dragons) / n
	if freq < 0.085 || freq > 0.115 {
		t.Fatalf("dragon frequency %.3f, want ~0.10", freq)
	}
	if w.Balance() != 0 {
		t.Fatalf("expected wallet drained, got %d", w.Balance())
	}
}

func TestEggsSorted(t *testing.T) {
	a, _ := NewEgg("b", 10, []droptable.Entry[Pet]{{Item: cat, Weight: 1}})
	b, _ := NewEgg("a", 10, []droptable.Entry[Pet]{{Item: cat, Weight: 1}})
	c, _ := NewEgg("c", 5, []droptable.Entry[Pet]{{Item: cat, Weight: 1}})
	h := New([]Egg{a, b, c}, economy.NewWallet(0), nil, nil)
	eggs := h.Eggs()
	if eggs[0].Name != "c" || eggs[1].Name != "a" || eggs[2].Name != "b" {
		t.Fatalf("unexpected order %v", []string{eggs[0].Name, eggs[1].Name, eggs[2].Name})
	}
}
