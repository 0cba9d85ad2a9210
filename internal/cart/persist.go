package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/loganlanou/storefront/internal/backend"
	"github.com/loganlanou/storefront/internal/localstore"
)

// LocalPersister keeps guest carts in the session's local storage.
type LocalPersister struct {
	store *localstore.Store
}

func NewLocalPersister(store *localstore.Store) *LocalPersister {
	return &LocalPersister{store: store}
}

func (p *LocalPersister) Load(ctx context.Context, owner Owner) ([]LineItem, error) {
	var items []LineItem
	if _, err := p.store.Get(ctx, owner.SessionID, localstore.KeyCart, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (p *LocalPersister) Save(ctx context.Context, owner Owner, items []LineItem) error {
	if items == nil {
		items = []LineItem{}
	}
	return p.store.Set(ctx, owner.SessionID, localstore.KeyCart, items)
}

// RemoteCartAPI is the slice of the backend client used for user carts.
type RemoteCartAPI interface {
	GetCart(ctx context.Context, token, userID string) (json.RawMessage, error)
	PutCart(ctx context.Context, token, userID string, cart any) error
}

// RemotePersister keeps authenticated carts on the backend, keyed by user id.
type RemotePersister struct {
	api RemoteCartAPI
}

func NewRemotePersister(api RemoteCartAPI) *RemotePersister {
	return &RemotePersister{api: api}
}

func (p *RemotePersister) Load(ctx context.Context, owner Owner) ([]LineItem, error) {
	raw, err := p.api.GetCart(ctx, owner.Token, owner.UserID)
	if errors.Is(err, backend.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch user cart: %w", err)
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var items []LineItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode user cart: %w", err)
	}
	return items, nil
}

func (p *RemotePersister) Save(ctx context.Context, owner Owner, items []LineItem) error {
	if items == nil {
		items = []LineItem{}
	}
	if err := p.api.PutCart(ctx, owner.Token, owner.UserID, items); err != nil {
		return fmt.Errorf("save user cart: %w", err)
	}
	return nil
}

// Router picks the remote persister for authenticated owners and the local
// one for guests.
type Router struct {
	Local  Persister
	Remote Persister
}

func (r Router) pick(owner Owner) Persister {
	if owner.Authenticated() && r.Remote != nil {
		return r.Remote
	}
	return r.Local
}

func (r Router) Load(ctx context.Context, owner Owner) ([]LineItem, error) {
	return r.pick(owner).Load(ctx, owner)
}

func (r Router) Save(ctx context.Context, owner Owner, items []LineItem) error {
	return r.pick(owner).Save(ctx, owner, items)
}
