// Package promo tracks the promo code a session has applied. Validation and
// the discount amount come from the backend; this package only remembers
// the result and applies it to totals.
package promo

import (
	"context"
	"errors"
	"strings"
	"sync"
)

var ErrEmptyCode = errors.New("enter a promo code")

type State struct {
	Code     string  `json:"code"`
	Discount float64 `json:"discountAmount"`
}

// Applier validates a code and returns the discount it grants.
type Applier interface {
	ApplyPromo(ctx context.Context, token, code string) (float64, error)
}

// Book holds the promo state of every live session.
type Book struct {
	mu      sync.Mutex
	states  map[string]State
	applier Applier
}

func NewBook(applier Applier) *Book {
	return &Book{
		states:  make(map[string]State),
		applier: applier,
	}
}

func (b *Book) Get(sessionID string) State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.states[sessionID]
}

// Apply sends code to the backend. On success the session's discount is the
// granted amount; on any failure it drops to zero and the error is returned.
func (b *Book) Apply(ctx context.Context, sessionID, token, code string) (State, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return b.Get(sessionID), ErrEmptyCode
	}

	amount, err := b.applier.ApplyPromo(ctx, token, code)
	if err != nil || amount < 0 {
		amount = 0
	}
	state := State{Code: code, Discount: amount}

	b.mu.Lock()
	b.states[sessionID] = state
	b.mu.Unlock()

	return state, err
}

func (b *Book) Reset(sessionID string) {
	b.mu.Lock()
	delete(b.states, sessionID)
	b.mu.Unlock()
}

// Leave is called when the shopper navigates away from the cart. The promo
// survives only when the next stop is checkout.
func (b *Book) Leave(sessionID, nextPath string) bool {
	if strings.HasPrefix(nextPath, "/checkout") {
		return false
	}
	b.Reset(sessionID)
	return true
}

func (b *Book) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.states)
}

// Total is the payable amount after a discount, never below zero.
func Total(subtotal, discount float64) float64 {
	return max(subtotal-discount, 0)
}
