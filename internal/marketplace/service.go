package marketplace

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/marketplace-backend/internal/catalog"
	"github.com/angelmondragon/marketplace-backend/internal/notifications"
	"github.com/angelmondragon/marketplace-backend/internal/ratings"
	"github.com/angelmondragon/marketplace-backend/internal/sellers"
	"github.com/angelmondragon/marketplace-backend/internal/wishlist"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
	"github.com/angelmondragon/marketplace-backend/pkg/logger"
	"github.com/angelmondragon/marketplace-backend/pkg/metrics"
	"github.com/shopspring/decimal"
)

const (
	opRegisterSeller     = "register_seller"
	opAddItem            = "add_item"
	opUpdateItem         = "update_item"
	opDeleteItem         = "delete_item"
	opSearch             = "search"
	opItemsBySeller      = "items_by_seller"
	opBuyItem            = "buy_item"
	opAddToWishlist      = "add_to_wishlist"
	opRateItem           = "rate_item"
	opWishlist           = "wishlist"
	opFetchNotifications = "fetch_notifications"
)

// ServiceParams wires the stores behind the facade.
type ServiceParams struct {
	Sellers       *sellers.Registry
	Catalog       *catalog.Store
	Ratings       *ratings.Ledger
	Wishlist      *wishlist.Registry
	Notifications *notifications.Dispatcher
	Logger        *logger.Logger
	Metrics       *metrics.Marketplace
	// EnforceOwnership restricts UpdateItem/DeleteItem to the seller that
	// listed the item. Off by default: any registered seller may mutate.
	EnforceOwnership bool
}

// Service composes the stores into the remote marketplace operations.
//
// Every store locks itself, but operations spanning several stores also take
// mu: mutations hold it exclusively until their notifications are enqueued
// and catalog reads share it, so no reader sees a purchase whose
// notifications are still missing. Mailbox fetches bypass mu entirely.
type Service struct {
	mu sync.RWMutex

	sellers          *sellers.Registry
	catalog          *catalog.Store
	ratings          *ratings.Ledger
	wishlist         *wishlist.Registry
	notifications    *notifications.Dispatcher
	logg             *logger.Logger
	metrics          *metrics.Marketplace
	enforceOwnership bool
}

// NewService validates and wires the facade dependencies.
func NewService(params ServiceParams) (*Service, error) {
	switch {
	case params.Sellers == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "seller registry required")
	case params.Catalog == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "catalog store required")
	case params.Ratings == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "rating ledger required")
	case params.Wishlist == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "wishlist registry required")
	case params.Notifications == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notification dispatcher required")
	case params.Logger == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &Service{
		sellers:          params.Sellers,
		catalog:          params.Catalog,
		ratings:          params.Ratings,
		wishlist:         params.Wishlist,
		notifications:    params.Notifications,
		logg:             params.Logger,
		metrics:          params.Metrics,
		enforceOwnership: params.EnforceOwnership,
	}, nil
}

// NewInMemory builds a facade over fresh, empty stores.
func NewInMemory(logg *logger.Logger, m *metrics.Marketplace, enforceOwnership bool) (*Service, error) {
	return NewService(ServiceParams{
		Sellers:          sellers.NewRegistry(),
		Catalog:          catalog.NewStore(),
		Ratings:          ratings.NewLedger(),
		Wishlist:         wishlist.NewRegistry(),
		Notifications:    notifications.NewDispatcher(),
		Logger:           logg,
		Metrics:          m,
		EnforceOwnership: enforceOwnership,
	})
}

// ItemInput is the seller-supplied description of a new listing.
type ItemInput struct {
	Name        string
	Category    enums.Category
	Price       decimal.Decimal
	Quantity    int
	Description string
}

// RegisterSeller records a new seller identity.
func (s *Service) RegisterSeller(ctx context.Context, sellerID, endpoint string) OperationResult {
	start := time.Now()
	ctx = s.logg.WithFields(s.logg.WithSellerID(ctx, sellerID), map[string]any{"endpoint": endpoint})

	s.mu.Lock()
	_, err := s.sellers.Register(sellerID, endpoint)
	registered := s.sellers.Count()
	s.mu.Unlock()
	if err != nil {
		return s.fail(ctx, opRegisterSeller, start, err)
	}

	s.metrics.SetRegisteredSellers(registered)
	return s.succeed(ctx, opRegisterSeller, start, succeeded("Seller registered successfully"))
}

// AddItem lists a new item for a registered seller. The assigned id is
// returned in the result and embedded in its message.
func (s *Service) AddItem(ctx context.Context, sellerID string, in ItemInput) OperationResult {
	start := time.Now()
	ctx = s.logg.WithSellerID(ctx, sellerID)

	s.mu.Lock()
	item, err := s.addItemLocked(sellerID, in)
	size := s.catalog.Len()
	s.mu.Unlock()
	if err != nil {
		return s.fail(ctx, opAddItem, start, err)
	}

	s.metrics.SetCatalogItems(size)
	result := succeeded(fmt.Sprintf("Item added successfully with ID %d", item.ID))
	result.ItemID = item.ID
	return s.succeed(s.logg.WithItemID(ctx, item.ID), opAddItem, start, result)
}

func (s *Service) addItemLocked(sellerID string, in ItemInput) (catalog.Item, error) {
	if err := s.requireSeller(sellerID); err != nil {
		return catalog.Item{}, err
	}
	return s.catalog.Add(catalog.ItemInput{
		SellerID:    sellerID,
		Name:        in.Name,
		Category:    in.Category,
		Price:       in.Price,
		Quantity:    in.Quantity,
		Description: in.Description,
	})
}

// UpdateItem replaces an item's quantity and price and notifies its watchers.
func (s *Service) UpdateItem(ctx context.Context, sellerID string, itemID int64, quantity int, price decimal.Decimal) OperationResult {
	start := time.Now()
	ctx = s.logg.WithItemID(s.logg.WithSellerID(ctx, sellerID), itemID)

	s.mu.Lock()
	delivered, err := s.updateItemLocked(sellerID, itemID, quantity, price)
	s.mu.Unlock()
	if err != nil {
		return s.fail(ctx, opUpdateItem, start, err)
	}

	s.metrics.AddNotifications(string(enums.NotificationKindWatcher), delivered)
	ctx = s.logg.WithField(ctx, "notified", delivered)
	return s.succeed(ctx, opUpdateItem, start, succeeded("Item updated successfully"))
}

func (s *Service) updateItemLocked(sellerID string, itemID int64, quantity int, price decimal.Decimal) (int, error) {
	if err := s.requireOwner(sellerID, itemID); err != nil {
		return 0, err
	}
	item, err := s.catalog.Update(itemID, quantity, price)
	if err != nil {
		return 0, err
	}
	return s.fanOut(enums.ItemEventUpdated, item), nil
}

// DeleteItem removes an item from the catalog. Watch relations and already
// enqueued notifications are left as they are.
func (s *Service) DeleteItem(ctx context.Context, sellerID string, itemID int64) OperationResult {
	start := time.Now()
	ctx = s.logg.WithItemID(s.logg.WithSellerID(ctx, sellerID), itemID)

	s.mu.Lock()
	err := s.requireOwner(sellerID, itemID)
	if err == nil {
		_, err = s.catalog.Delete(itemID)
	}
	size := s.catalog.Len()
	s.mu.Unlock()
	if err != nil {
		return s.fail(ctx, opDeleteItem, start, err)
	}

	s.metrics.SetCatalogItems(size)
	return s.succeed(ctx, opDeleteItem, start, succeeded("Item deleted successfully"))
}

// Search returns items whose name contains name case-insensitively and whose
// category matches; enums.CategoryAny matches every category.
func (s *Service) Search(ctx context.Context, name string, category enums.Category) []catalog.Item {
	start := time.Now()

	s.mu.RLock()
	items := s.catalog.Search(name, category)
	s.mu.RUnlock()

	ctx = s.logg.WithFields(ctx, map[string]any{"name": name, "category": category.String(), "results": len(items)})
	s.observe(ctx, opSearch, start, metrics.OutcomeOK)
	return items
}

// ItemsBySeller lists a seller's items; unknown sellers get an empty list.
func (s *Service) ItemsBySeller(ctx context.Context, sellerID string) []catalog.Item {
	start := time.Now()
	sellerID = strings.TrimSpace(sellerID)

	s.mu.RLock()
	items := s.catalog.BySeller(sellerID)
	s.mu.RUnlock()

	ctx = s.logg.WithFields(s.logg.WithSellerID(ctx, sellerID), map[string]any{"results": len(items)})
	s.observe(ctx, opItemsBySeller, start, metrics.OutcomeOK)
	return items
}

// BuyItem takes quantity units out of stock, tells the owning seller about
// the sale and notifies every current watcher. Stock is decremented before
// the messages are formatted so they carry the remaining quantity.
func (s *Service) BuyItem(ctx context.Context, itemID int64, quantity int, buyerID string) OperationResult {
	start := time.Now()
	ctx = s.logg.WithFields(s.logg.WithItemID(s.logg.WithBuyerID(ctx, buyerID), itemID), map[string]any{"quantity": quantity})

	s.mu.Lock()
	delivered, err := s.buyItemLocked(itemID, quantity, buyerID)
	s.mu.Unlock()
	if err != nil {
		return s.fail(ctx, opBuyItem, start, err)
	}

	s.metrics.AddNotifications(string(enums.NotificationKindSeller), 1)
	s.metrics.AddNotifications(string(enums.NotificationKindWatcher), delivered)
	ctx = s.logg.WithField(ctx, "notified", delivered)
	return s.succeed(ctx, opBuyItem, start, succeeded("Purchase successful"))
}

func (s *Service) buyItemLocked(itemID int64, quantity int, buyerID string) (int, error) {
	buyerID = strings.TrimSpace(buyerID)
	if buyerID == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "buyer identity is required")
	}
	item, err := s.catalog.Buy(itemID, quantity)
	if err != nil {
		return 0, err
	}
	s.notifications.Enqueue(item.SellerID, notifications.SellerSaleMessage(item, quantity, buyerID))
	return s.fanOut(enums.ItemEventPurchased, item), nil
}

// AddToWishlist makes buyerID a watcher of an existing item.
func (s *Service) AddToWishlist(ctx context.Context, itemID int64, buyerID string) OperationResult {
	start := time.Now()
	ctx = s.logg.WithItemID(s.logg.WithBuyerID(ctx, buyerID), itemID)

	s.mu.Lock()
	_, err := s.catalog.Get(itemID)
	if err == nil {
		err = s.wishlist.Watch(itemID, buyerID)
	}
	s.mu.Unlock()
	if err != nil {
		return s.fail(ctx, opAddToWishlist, start, err)
	}
	return s.succeed(ctx, opAddToWishlist, start, succeeded("Item added to wishlist"))
}

// RateItem records buyerID's score for an item and refreshes its average.
func (s *Service) RateItem(ctx context.Context, itemID int64, score int, buyerID string) OperationResult {
	start := time.Now()
	ctx = s.logg.WithFields(s.logg.WithItemID(s.logg.WithBuyerID(ctx, buyerID), itemID), map[string]any{"rating": score})

	s.mu.Lock()
	avg, err := s.rateItemLocked(itemID, score, buyerID)
	s.mu.Unlock()
	if err != nil {
		return s.fail(ctx, opRateItem, start, err)
	}

	ctx = s.logg.WithField(ctx, "average", avg)
	return s.succeed(ctx, opRateItem, start, succeeded(fmt.Sprintf("Rating successful, average rating updated to %.1f", avg)))
}

func (s *Service) rateItemLocked(itemID int64, score int, buyerID string) (float64, error) {
	if _, err := s.catalog.Get(itemID); err != nil {
		return 0, err
	}
	avg, err := s.ratings.Rate(itemID, buyerID, score)
	if err != nil {
		return 0, err
	}
	if err := s.catalog.SetRating(itemID, avg); err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store derived rating")
	}
	return avg, nil
}

// Wishlist returns the still-listed items buyerID has added to their wishlist.
func (s *Service) Wishlist(ctx context.Context, buyerID string) []catalog.Item {
	start := time.Now()
	buyerID = strings.TrimSpace(buyerID)

	s.mu.RLock()
	ids := s.wishlist.ItemsFor(buyerID)
	items := make([]catalog.Item, 0, len(ids))
	for _, id := range ids {
		if item, err := s.catalog.Get(id); err == nil {
			items = append(items, item)
		}
	}
	s.mu.RUnlock()

	ctx = s.logg.WithFields(s.logg.WithBuyerID(ctx, buyerID), map[string]any{"results": len(items)})
	s.observe(ctx, opWishlist, start, metrics.OutcomeOK)
	return items
}

// FetchNotifications drains and returns recipient's mailbox. It only
// contends with the mailbox lock, never with catalog mutations.
func (s *Service) FetchNotifications(ctx context.Context, recipient string) []string {
	start := time.Now()
	messages := s.notifications.Drain(recipient)

	s.metrics.AddDrained(len(messages))
	ctx = s.logg.WithFields(ctx, map[string]any{"recipient": recipient, "messages": len(messages)})
	s.observe(ctx, opFetchNotifications, start, metrics.OutcomeOK)
	return messages
}

// fanOut formats one message for event and enqueues a copy for every buyer
// watching the item right now. Callers hold mu.
func (s *Service) fanOut(event enums.ItemEvent, item catalog.Item) int {
	watchers := s.wishlist.WatchersOf(item.ID)
	if len(watchers) == 0 {
		return 0
	}
	return s.notifications.Broadcast(watchers, notifications.WatcherMessage(event, item))
}

func (s *Service) requireSeller(sellerID string) error {
	if !s.sellers.IsRegistered(strings.TrimSpace(sellerID)) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "seller identity not recognized")
	}
	return nil
}

func (s *Service) requireOwner(sellerID string, itemID int64) error {
	if err := s.requireSeller(sellerID); err != nil {
		return err
	}
	item, err := s.catalog.Get(itemID)
	if err != nil {
		return err
	}
	if s.enforceOwnership && item.SellerID != strings.TrimSpace(sellerID) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "item is listed by another seller")
	}
	return nil
}

func (s *Service) succeed(ctx context.Context, op string, start time.Time, result OperationResult) OperationResult {
	s.observe(ctx, op, start, metrics.OutcomeOK)
	return result
}

func (s *Service) fail(ctx context.Context, op string, start time.Time, err error) OperationResult {
	result := failed(err)
	ctx = s.logg.WithFields(ctx, map[string]any{"operation": op, "outcome": string(result.Code), "reason": result.Message})
	if pkgerrors.MetadataFor(result.Code).Business {
		s.logg.Info(ctx, "marketplace.operation.rejected")
	} else {
		s.logg.Error(ctx, "marketplace.operation.failed", err)
	}
	s.metrics.ObserveOperation(op, string(result.Code), time.Since(start))
	return result
}

func (s *Service) observe(ctx context.Context, op string, start time.Time, outcome string) {
	elapsed := time.Since(start)
	s.metrics.ObserveOperation(op, outcome, elapsed)
	ctx = s.logg.WithFields(ctx, map[string]any{"operation": op, "outcome": outcome, "duration_ms": elapsed.Milliseconds()})
	s.logg.Info(ctx, "marketplace.operation")
}
