package catalog

import (
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/marketplace-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
)

type record struct {
	item       Item
	foldedName string
}

// Store owns the item records. Items live in an id-indexed table where slot
// i holds id i+1; deleted slots stay nil so ids are never reused and
// iteration follows insertion order. Safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	slots []*record
	live  int
	now   func() time.Time
}

// NewStore returns an empty catalog whose first assigned id is 1.
func NewStore() *Store {
	return &Store{now: func() time.Time { return time.Now().UTC() }}
}

// Add validates the candidate and stores it under the next sequential id.
// Ratings start unrated.
func (s *Store) Add(in ItemInput) (Item, error) {
	in, err := in.normalize()
	if err != nil {
		return Item{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	rec := &record{
		item: Item{
			ID:          int64(len(s.slots)) + 1,
			Name:        in.Name,
			Category:    in.Category,
			Price:       in.Price,
			Quantity:    in.Quantity,
			Description: in.Description,
			SellerID:    in.SellerID,
			Rating:      RatingUnrated,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		foldedName: fold(in.Name),
	}
	s.slots = append(s.slots, rec)
	s.live++
	return rec.item, nil
}

// Get returns the item with the given id.
func (s *Store) Get(id int64) (Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, err := s.lookup(id)
	if err != nil {
		return Item{}, err
	}
	return rec.item, nil
}

// Update replaces quantity and price; every other field is left untouched.
func (s *Store) Update(id int64, quantity int, price decimal.Decimal) (Item, error) {
	if err := validateStock(quantity, price); err != nil {
		return Item{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.lookup(id)
	if err != nil {
		return Item{}, err
	}
	rec.item.Quantity = quantity
	rec.item.Price = price
	rec.item.UpdatedAt = s.now()
	return rec.item, nil
}

// Delete removes the item and returns its final snapshot.
func (s *Store) Delete(id int64) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.lookup(id)
	if err != nil {
		return Item{}, err
	}
	s.slots[id-1] = nil
	s.live--
	return rec.item, nil
}

// Buy decrements stock by quantity when enough is available. The check and
// the decrement happen under one lock so concurrent buyers cannot oversell.
func (s *Store) Buy(id int64, quantity int) (Item, error) {
	if quantity <= 0 {
		return Item{}, pkgerrors.New(pkgerrors.CodeValidation, "purchase quantity must be positive").
			WithDetails(map[string]any{"quantity": quantity})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.lookup(id)
	if err != nil {
		return Item{}, err
	}
	if quantity > rec.item.Quantity {
		return Item{}, pkgerrors.New(pkgerrors.CodeInsufficientStock, "not enough stock available").
			WithDetails(map[string]any{"requested": quantity, "available": rec.item.Quantity})
	}
	rec.item.Quantity -= quantity
	rec.item.UpdatedAt = s.now()
	return rec.item, nil
}

// SetRating stores the derived average for id.
func (s *Store) SetRating(id int64, rating float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.lookup(id)
	if err != nil {
		return err
	}
	rec.item.Rating = rating
	return nil
}

// Search returns live items whose name contains name (case-insensitively) and
// whose category satisfies the filter. An empty name matches everything.
func (s *Store) Search(name string, category enums.Category) []Item {
	needle := fold(strings.TrimSpace(name))

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(rec *record) bool {
		return category.Matches(rec.item.Category) && strings.Contains(rec.foldedName, needle)
	})
}

// BySeller returns every live item owned by sellerID; unknown sellers yield none.
func (s *Store) BySeller(sellerID string) []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(rec *record) bool {
		return rec.item.SellerID == sellerID
	})
}

// Len returns the number of live items.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.live
}

func (s *Store) collect(keep func(*record) bool) []Item {
	items := make([]Item, 0)
	for _, rec := range s.slots {
		if rec == nil || !keep(rec) {
			continue
		}
		items = append(items, rec.item)
	}
	return items
}

func (s *Store) lookup(id int64) (*record, error) {
	if id < 1 || id > int64(len(s.slots)) || s.slots[id-1] == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found").
			WithDetails(map[string]any{"item_id": id})
	}
	return s.slots[id-1], nil
}

func fold(value string) string {
	return cases.Fold().String(value)
}
