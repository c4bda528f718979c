package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dmitrijs2005/billboard/internal/client/models"
	"github.com/dmitrijs2005/billboard/internal/logging"
)

// TokenSource yields the current bearer token, "" when signed out.
type TokenSource interface {
	AuthToken() string
}

// SavedStore is the saved-bills part of the API.
type SavedStore interface {
	ListSaved(ctx context.Context, token string) ([]models.Bill, error)
	SaveBill(ctx context.Context, token string, billID int64) error
	UnsaveBill(ctx context.Context, token string, billID int64) error
}

// Catalog receives every bill record the client sees.
type Catalog interface {
	UpsertMany(ctx context.Context, bills []models.Bill) error
}

// SavedCache mirrors the signed-in user's saved bills. Toggles are applied
// locally before the request is sent; when the request fails the cache is
// reloaded from the server instead of being rolled back.
//
// Toggles are not serialized against each other or against Refresh: the last
// reload to finish wins.
type SavedCache struct {
	tokens  TokenSource
	store   SavedStore
	catalog Catalog
	log     logging.Logger

	mu    sync.RWMutex
	ids   map[int64]struct{}
	bills []models.Bill

	// refreshes started by OnSession listeners
	wg sync.WaitGroup
}

// NewSavedCache returns an empty cache. catalog may be nil.
func NewSavedCache(tokens TokenSource, store SavedStore, catalog Catalog, log logging.Logger) *SavedCache {
	return &SavedCache{
		tokens:  tokens,
		store:   store,
		catalog: catalog,
		log:     log.With("component", "saved"),
		ids:     map[int64]struct{}{},
	}
}

// Refresh replaces the cache with the server's list. Without a token the
// cache is emptied and no request is made.
func (c *SavedCache) Refresh(ctx context.Context) error {
	token := c.tokens.AuthToken()
	if token == "" {
		c.resetIf(token, nil)
		return nil
	}

	bills, err := c.store.ListSaved(ctx, token)
	if err != nil {
		return fmt.Errorf("list saved bills: %w", err)
	}

	if !c.resetIf(token, bills) {
		c.log.Debug(ctx, "session changed while loading saved bills, result dropped")
		return nil
	}
	c.remember(ctx, bills)
	return nil
}

// resetIf replaces the state with bills, keeping the first record of each id,
// unless the session token is no longer token. The token is checked under the
// cache lock so a result for a previous session never overwrites a newer one.
func (c *SavedCache) resetIf(token string, bills []models.Bill) bool {
	ids := make(map[int64]struct{}, len(bills))
	list := make([]models.Bill, 0, len(bills))
	for _, b := range bills {
		if _, dup := ids[b.ID]; dup {
			continue
		}
		ids[b.ID] = struct{}{}
		list = append(list, b)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tokens.AuthToken() != token {
		return false
	}
	c.ids = ids
	c.bills = list
	return true
}

// IsSaved reports whether id is in the cache.
func (c *SavedCache) IsSaved(id int64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.ids[id]
	return ok
}

// ToggleSave saves bill when it is not saved and unsaves it otherwise. The
// cache changes before the request. On failure the cache is reloaded and the
// request error is returned. Without a token it does nothing.
func (c *SavedCache) ToggleSave(ctx context.Context, bill models.Bill) error {
	token := c.tokens.AuthToken()
	if token == "" {
		return nil
	}

	c.mu.Lock()
	_, saved := c.ids[bill.ID]
	if saved {
		delete(c.ids, bill.ID)
		c.bills = without(c.bills, bill.ID)
	} else {
		c.ids[bill.ID] = struct{}{}
		c.bills = append([]models.Bill{bill}, without(c.bills, bill.ID)...)
	}
	c.mu.Unlock()

	var err error
	if saved {
		err = c.store.UnsaveBill(ctx, token, bill.ID)
	} else {
		err = c.store.SaveBill(ctx, token, bill.ID)
		if err == nil {
			c.remember(ctx, []models.Bill{bill})
		}
	}
	if err == nil {
		return nil
	}

	c.log.Warn(ctx, "toggle failed, reloading saved bills", "bill_id", bill.ID, "unsave", saved, "error", err)
	if rerr := c.Refresh(ctx); rerr != nil {
		c.log.Error(ctx, "reload after failed toggle", "error", rerr)
	}
	return err
}

// SavedIDs returns the saved ids in ascending order.
func (c *SavedCache) SavedIDs() []int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]int64, 0, len(c.ids))
	for id := range c.ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// SavedBills returns the saved records, most recently saved first.
func (c *SavedCache) SavedBills() []models.Bill {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.Bill{}, c.bills...)
}

// OnSession returns a session listener that refreshes the cache in the
// background whenever the session token changes. Refreshes stop early once
// ctx is cancelled; Wait blocks until they have all returned.
func (c *SavedCache) OnSession(ctx context.Context) func(Snapshot) {
	var (
		mu   sync.Mutex
		last string
	)
	return func(s Snapshot) {
		mu.Lock()
		changed := s.AuthToken != last
		last = s.AuthToken
		mu.Unlock()
		if !changed {
			return
		}
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			if err := c.Refresh(ctx); err != nil {
				c.log.Warn(ctx, "refresh on session change", "error", err)
			}
		}()
	}
}

// Wait blocks until every refresh started by an OnSession listener returns.
func (c *SavedCache) Wait() {
	c.wg.Wait()
}

func (c *SavedCache) remember(ctx context.Context, bills []models.Bill) {
	if c.catalog == nil || len(bills) == 0 {
		return
	}
	if err := c.catalog.UpsertMany(ctx, bills); err != nil {
		c.log.Debug(ctx, "catalog write failed", "error", err)
	}
}

func without(bills []models.Bill, id int64) []models.Bill {
	out := make([]models.Bill, 0, len(bills))
	for _, b := range bills {
		if b.ID != id {
			out = append(out, b)
		}
	}
	return out
}
