package cart

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	store    *Store
	lastUsed time.Time
}

// Registry hands out one Store per owner, hydrating it from its persister
// the first time it is requested.
type Registry struct {
	mu        sync.Mutex
	stores    map[string]*entry
	persister Persister
	opts      Options
	now       func() time.Time
}

func NewRegistry(persister Persister, opts Options) *Registry {
	return &Registry{
		stores:    make(map[string]*entry),
		persister: persister,
		opts:      opts,
		now:       time.Now,
	}
}

// Get returns the owner's cart. A failed hydration returns an empty cart
// that is not kept, so the following Get retries the load.
func (r *Registry) Get(ctx context.Context, owner Owner) *Store {
	key := owner.StoreKey()

	r.mu.Lock()
	if e, ok := r.stores[key]; ok {
		e.lastUsed = r.now()
		r.mu.Unlock()
		if e.store.Owner() != owner {
			e.store.setOwner(owner)
		}
		return e.store
	}

	s := NewStore(owner, r.persister, r.opts)
	// Hold the store until it is hydrated so concurrent requests for the
	// same owner wait instead of mutating an empty cart.
	s.mu.Lock()
	r.stores[key] = &entry{store: s, lastUsed: r.now()}
	r.mu.Unlock()

	err := s.hydrateLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		// Forget the empty cart so the next request loads again.
		r.mu.Lock()
		if e, ok := r.stores[key]; ok && e.store == s {
			delete(r.stores, key)
		}
		r.mu.Unlock()
	}
	return s
}

// Evict drops the owner's cart from memory. The persisted copy is kept.
func (r *Registry) Evict(owner Owner) {
	r.mu.Lock()
	delete(r.stores, owner.StoreKey())
	r.mu.Unlock()
}

// EvictIdle drops every cart not requested since cutoff and returns how many
// were dropped.
func (r *Registry) EvictIdle(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for key, e := range r.stores {
		if e.lastUsed.Before(cutoff) {
			delete(r.stores, key)
			n++
		}
	}
	return n
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}
