package sellers

import (
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
)

// Seller is an immutable registration record.
type Seller struct {
	ID           string    `json:"id"`
	Endpoint     string    `json:"endpoint"`
	RegisteredAt time.Time `json:"registered_at"`
}

// Registry tracks registered sellers by identity. Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	sellers map[string]Seller
	now     func() time.Time
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sellers: make(map[string]Seller),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Register stores the seller's endpoint. A previously seen identity is a conflict.
func (r *Registry) Register(id, endpoint string) (Seller, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Seller{}, pkgerrors.New(pkgerrors.CodeValidation, "seller identity is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sellers[id]; exists {
		return Seller{}, pkgerrors.New(pkgerrors.CodeConflict, "seller identity already registered")
	}
	seller := Seller{
		ID:           id,
		Endpoint:     strings.TrimSpace(endpoint),
		RegisteredAt: r.now(),
	}
	r.sellers[id] = seller
	return seller, nil
}

// Lookup returns the registration for id.
func (r *Registry) Lookup(id string) (Seller, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seller, ok := r.sellers[id]
	return seller, ok
}

// IsRegistered reports whether id has been registered.
func (r *Registry) IsRegistered(id string) bool {
	_, ok := r.Lookup(id)
	return ok
}

// Count returns the number of registered sellers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sellers)
}
