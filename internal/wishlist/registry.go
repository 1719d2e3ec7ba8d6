package wishlist

import (
	"strings"
	"sync"

	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
)

// Registry records which buyers watch which items. Each watch is kept from
// both sides: item -> watchers for notification fan-out and buyer -> items
// for the buyer's wishlist. Both preserve insertion order. Safe for
// concurrent use.
//
// Relations are not pruned when an item is deleted; item ids are never
// reused, so a dangling relation can never receive fan-out.
type Registry struct {
	mu       sync.RWMutex
	watchers map[int64][]string
	items    map[string][]int64
	index    map[relation]struct{}
}

type relation struct {
	itemID  int64
	buyerID string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		watchers: make(map[int64][]string),
		items:    make(map[string][]int64),
		index:    make(map[relation]struct{}),
	}
}

// Watch adds buyerID to the watchers of itemID. Item existence is the
// caller's concern. Re-adding an existing relation reports a conflict and
// changes nothing.
func (r *Registry) Watch(itemID int64, buyerID string) error {
	buyerID = strings.TrimSpace(buyerID)
	if buyerID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "buyer identity is required")
	}

	key := relation{itemID: itemID, buyerID: buyerID}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.index[key]; exists {
		return pkgerrors.New(pkgerrors.CodeConflict, "item already in wishlist")
	}
	r.index[key] = struct{}{}
	r.watchers[itemID] = append(r.watchers[itemID], buyerID)
	r.items[buyerID] = append(r.items[buyerID], itemID)
	return nil
}

// WatchersOf returns the buyers watching itemID in the order they started.
func (r *Registry) WatchersOf(itemID int64) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.watchers[itemID]))
	copy(out, r.watchers[itemID])
	return out
}

// ItemsFor returns the item ids on buyerID's wishlist in the order added.
func (r *Registry) ItemsFor(buyerID string) []int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]int64, len(r.items[buyerID]))
	copy(out, r.items[buyerID])
	return out
}
