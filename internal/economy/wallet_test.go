package economy

import (
	"errors"
	"testing"
)

func TestWalletCreditDebit(t *testing.T) {
	w := NewWallet(10)
	w.Credit(5)
	if w.Balance() != 15 || w.Earned() != 5 {
		t.Fatalf("unexpected balance %d earned %d", w.Balance(), w.Earned())
	}
	if err := w.Debit(15); err != nil {
		t.Fatalf("Debit: %v", err)
	}
	if w.Balance() != 0 {
		t.Fatalf("expected 0, got %d", w.Balance())
	}
}

func TestWalletDebitRefused(t *testing.T) {
	w := NewWallet(3)
	err := w.Debit(4)
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if w.Balance() != 3 {
		t.Fatalf("balance changed on refused debit: %d", w.Balance())
	}
	if err := w.Debit(-1); err == nil {
		t.Fatalf("expected error for negative debit")
	}
}

func TestWalletSubscribeUnsubscribe(t *testing.T) {
	w := NewWallet(0)
	var seen []int
	unsub := w.Subscribe(func(b int) { seen = append(seen, b) })
	w.Credit(2)
	w.Credit(0) // ignored, no notification
	_ = w.Debit(1)
	w.Notify()
	unsub()
	unsub()
	w.Credit(10)

	want := []int{2, 1, 1}
	if len(seen) != len(want) {
		t.Fatalf("notifications = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("notifications = %v, want %v", seen, want)
		}
	}
}

func TestWalletListenerMayReenter(t *testing.T) {
	w := NewWallet(0)
	var got int
	w.Subscribe(func(int) { got = w.Balance() })
	w.Credit(7)
	if got != 7 {
		t.Fatalf("listener read %d", got)
	}
}
