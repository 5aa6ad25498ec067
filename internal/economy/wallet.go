// Coin balance with change notifications.
package economy

import (
	"errors"
	"fmt"
	"sync"
)

// ErrInsufficientFunds is returned when a debit exceeds the balance.
var ErrInsufficientFunds = errors.New("economy: insufficient funds")

// BalanceListener receives the new balance after every change.
type BalanceListener func(balance int)

// Wallet tracks the player's coins. Listeners are invoked synchronously,
// outside the wallet lock, in subscription order.
type Wallet struct {
	mu        sync.Mutex
	balance   int
	earned    int
	nextID    int
	listeners []listener
}

type listener struct {
	id int
	fn BalanceListener
}

// NewWallet creates a wallet with an opening balance.
func NewWallet(opening int) *Wallet {
	return &Wallet{balance: opening}
}

// Balance returns the current coin count.
func (w *Wallet) Balance() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.balance
}

// Earned returns the total credited since creation.
func (w *Wallet) Earned() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.earned
}

// Credit adds coins. Non-positive amounts are ignored.
func (w *Wallet) Credit(amount int) {
	if amount <= 0 {
		return
	}
	w.mu.Lock()
	w.balance += amount
	w.earned += amount
	bal, ls := w.balance, w.snapshot()
	w.mu.Unlock()
	notify(ls, bal)
}

// Debit removes coins, refusing when the balance is too low.
func (w *Wallet) Debit(amount int) error {
	if amount < 0 {
		return fmt.Errorf("economy: negative debit %d", amount)
	}
	w.mu.Lock()
	if w.balance < amount {
		bal := w.balance
		w.mu.Unlock()
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, bal, amount)
	}
	w.balance -= amount
	bal, ls := w.balance, w.snapshot()
	w.mu.Unlock()
	notify(ls, bal)
	return nil
}

// Subscribe registers fn and returns a func that removes it. Calling the
// returned func more than once is harmless.
func (w *Wallet) Subscribe(fn BalanceListener) (unsubscribe func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.nextID++
	id := w.nextID
	w.listeners = append(w.listeners, listener{id: id, fn: fn})
	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		for i, l := range w.listeners {
			if l.id == id {
				w.listeners = append(w.listeners[:i:i], w.listeners[i+1:]...)
				return
			}
		}
	}
}

// Notify pushes the current balance to all listeners without changing it,
// e.g. after a UI is attached.
func (w *Wallet) Notify() {
	w.mu.Lock()
	bal, ls := w.balance, w.snapshot()
	w.mu.Unlock()
	notify(ls, bal)
}

func (w *Wallet) snapshot() []listener {
	ls := make([]listener, len(w.listeners))
	copy(ls, w.listeners)
	return ls
}

func notify(ls []listener, balance int) {
	for _, l := range ls {
		l.fn(balance)
	}
}
