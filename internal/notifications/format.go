package notifications

import (
	"fmt"
	"strings"

	"github.com/angelmondragon/marketplace-backend/internal/catalog"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
)

// WatcherMessage describes item after event for the item's watchers. item
// must reflect the state after the event (e.g. post-purchase quantity).
func WatcherMessage(event enums.ItemEvent, item catalog.Item) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The following item has been %s:\n", event)
	fmt.Fprintf(&b, "Item ID: %d, Name: %s, Price: $%s, Category: %s\n",
		item.ID, item.Name, item.Price.StringFixed(2), item.Category.DisplayName())
	if item.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", item.Description)
	}
	fmt.Fprintf(&b, "Quantity Remaining: %d\n", item.Quantity)
	fmt.Fprintf(&b, "Rating: %s | Seller: %s", FormatRating(item.Rating), item.SellerID)
	return b.String()
}

// SellerSaleMessage tells the owning seller who bought how much of item.
func SellerSaleMessage(item catalog.Item, quantity int, buyerID string) string {
	return fmt.Sprintf("Item Sold: %s (ID %d), Quantity: %d, Buyer: %s, Remaining: %d",
		item.Name, item.ID, quantity, buyerID, item.Quantity)
}

// FormatRating renders an average as "4.0 / 5", or "unrated" for the sentinel.
func FormatRating(rating float64) string {
	if rating == catalog.RatingUnrated {
		return "unrated"
	}
	return fmt.Sprintf("%.1f / 5", rating)
}
