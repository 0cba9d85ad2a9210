package cart

import (
	"context"
	"log/slog"
	"sync"

	"github.com/loganlanou/storefront/internal/events"
	"github.com/loganlanou/storefront/internal/types"
)

// Owner identifies whose cart a Store holds. Guests are identified by their
// session id alone; authenticated shoppers also carry a user id and the
// bearer token used for remote persistence.
type Owner struct {
	SessionID string
	UserID    string
	Token     string
}

func (o Owner) Authenticated() bool {
	return o.UserID != ""
}

// StoreKey is the registry key for the owner's cart.
func (o Owner) StoreKey() string {
	if o.Authenticated() {
		return "user:" + o.UserID
	}
	return "session:" + o.SessionID
}

// Persister loads and saves a cart for an owner.
type Persister interface {
	Load(ctx context.Context, owner Owner) ([]LineItem, error)
	Save(ctx context.Context, owner Owner, items []LineItem) error
}

// OrderRecorder receives ordered products after a successful checkout.
type OrderRecorder interface {
	RecordOrder(ctx context.Context, sessionID string, items []types.OrderedStub) error
}

type Publisher interface {
	Publish(ctx context.Context, ev events.Event)
}

type Options struct {
	// ImageBaseURL prefixes relative product image paths.
	ImageBaseURL string
	History      OrderRecorder
	Events       Publisher
}

// Store is one owner's cart. All mutations are serialized and each one is
// followed by a save; save failures are logged and the in-memory cart stays
// authoritative.
type Store struct {
	mu        sync.Mutex
	owner     Owner
	items     []LineItem
	persister Persister
	opts      Options
}

func NewStore(owner Owner, persister Persister, opts Options) *Store {
	return &Store{
		owner:     owner,
		persister: persister,
		opts:      opts,
	}
}

func (s *Store) Owner() Owner {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.owner
}

func (s *Store) setOwner(owner Owner) {
	s.mu.Lock()
	s.owner = owner
	s.mu.Unlock()
}

// Reload replaces the in-memory cart with the persisted one. On failure the
// current cart is kept.
func (s *Store) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hydrateLocked(ctx)
}

func (s *Store) hydrateLocked(ctx context.Context) error {
	items, err := s.persister.Load(ctx, s.owner)
	if err != nil {
		slog.Error("failed to load cart", "error", err, "owner", s.owner.StoreKey())
		return err
	}
	s.items = items
	return nil
}

// Items returns a copy of the cart's line items in insertion order.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneItems(s.items)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Subtotal sums price times quantity over every line.
func (s *Store) Subtotal() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total float64
	for _, it := range s.items {
		total += it.LineTotal()
	}
	return total
}

// TotalQtyForProduct sums the quantity of every variant of productID.
func (s *Store) TotalQtyForProduct(productID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalQtyLocked(productID)
}

func (s *Store) totalQtyLocked(productID string) int {
	total := 0
	for _, it := range s.items {
		if it.ProductID == productID {
			total += it.Qty
		}
	}
	return total
}

func (s *Store) indexLocked(key string) int {
	for i, it := range s.items {
		if it.Key == key {
			return i
		}
	}
	return -1
}

// Add puts qty units of a product variant in the cart and returns how many
// were actually added. Quantities below 1 count as 1. When the product's
// stock is known the addition is clamped to the remaining headroom across
// all of its variants; with no headroom nothing is added.
func (s *Store) Add(ctx context.Context, p types.Product, qty int, variants map[string]string) int {
	if qty < 1 {
		qty = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	total := s.totalQtyLocked(p.ID)
	if p.Stock != nil && total+qty > *p.Stock {
		allowed := *p.Stock - total
		if allowed <= 0 {
			return 0
		}
		qty = allowed
	}

	item := newLineItem(p, variants, s.opts.ImageBaseURL)
	if i := s.indexLocked(item.Key); i >= 0 {
		s.items[i].Qty += qty
	} else {
		item.Qty = qty
		s.items = append(s.items, item)
	}

	s.persistLocked(ctx)
	return qty
}

// Remove deletes the line for a product variant. It reports whether a line
// was removed.
func (s *Store) Remove(ctx context.Context, productID string, variants map[string]string) bool {
	key := Key(productID, variants)

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(key)
	if i < 0 {
		return false
	}
	s.items = append(s.items[:i:i], s.items[i+1:]...)

	s.persistLocked(ctx)
	return true
}

// UpdateQty sets the quantity of an existing line. The result is capped at
// the stock left after the product's other variants and never drops below
// 1. It returns the stored quantity and whether the line exists.
func (s *Store) UpdateQty(ctx context.Context, productID string, variants map[string]string, qty int) (int, bool) {
	key := Key(productID, variants)

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(key)
	if i < 0 {
		return 0, false
	}
	item := &s.items[i]

	if item.Stock != nil {
		otherQty := s.totalQtyLocked(productID) - item.Qty
		if qty+otherQty > *item.Stock {
			qty = *item.Stock - otherQty
		}
	}
	if qty < 1 {
		qty = 1
	}
	item.Qty = qty

	s.persistLocked(ctx)
	return qty, true
}

// Clear empties the cart. Unless silent, a guest cart also announces the
// change to the session's other tabs.
func (s *Store) Clear(ctx context.Context, silent bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked(ctx, silent)
}

func (s *Store) clearLocked(ctx context.Context, silent bool) {
	s.items = nil
	s.persistLocked(ctx)

	if !silent && !s.owner.Authenticated() && s.opts.Events != nil {
		s.opts.Events.Publish(ctx, events.Event{
			Topic:     events.TopicCartUpdated,
			SessionID: s.owner.SessionID,
		})
	}
}

// CheckoutSuccess records the order's products in the recently ordered
// history and silently clears the cart. Orders without items are ignored.
func (s *Store) CheckoutSuccess(ctx context.Context, order *types.Order) {
	if order == nil || order.Items == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.opts.History != nil {
		stubs := make([]types.OrderedStub, 0, len(order.Items))
		for _, it := range order.Items {
			stubs = append(stubs, types.OrderedStub{
				ProductID:   it.ProductID,
				Category:    it.Category,
				SubCategory: it.SubCategory,
			})
		}
		if err := s.opts.History.RecordOrder(ctx, s.owner.SessionID, stubs); err != nil {
			slog.Error("failed to record ordered products", "error", err, "session_id", s.owner.SessionID)
		}
	}

	s.clearLocked(ctx, true)
}

func (s *Store) persistLocked(ctx context.Context) {
	if s.persister == nil {
		return
	}
	if err := s.persister.Save(ctx, s.owner, cloneItems(s.items)); err != nil {
		slog.Error("failed to save cart", "error", err, "owner", s.owner.StoreKey())
	}
}
