package rpc

import (
	"github.com/angelmondragon/marketplace-backend/internal/catalog"
	"github.com/angelmondragon/marketplace-backend/internal/marketplace"
)

type RegisterSellerRequest struct {
	SellerID string `json:"seller_id"`
	Endpoint string `json:"endpoint"`
}

// AddItemRequest carries the price as a decimal string, e.g. "499.99".
type AddItemRequest struct {
	SellerID    string `json:"seller_id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Price       string `json:"price"`
	Quantity    int    `json:"quantity"`
	Description string `json:"description"`
}

type UpdateItemRequest struct {
	SellerID string `json:"seller_id"`
	ItemID   int64  `json:"item_id"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
}

type DeleteItemRequest struct {
	SellerID string `json:"seller_id"`
	ItemID   int64  `json:"item_id"`
}

// SearchRequest filters by name substring; an empty category means ANY.
type SearchRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

type ItemsBySellerRequest struct {
	SellerID string `json:"seller_id"`
}

type BuyItemRequest struct {
	ItemID   int64  `json:"item_id"`
	Quantity int    `json:"quantity"`
	BuyerID  string `json:"buyer_id"`
}

type AddToWishlistRequest struct {
	ItemID  int64  `json:"item_id"`
	BuyerID string `json:"buyer_id"`
}

type RateItemRequest struct {
	ItemID  int64  `json:"item_id"`
	Rating  int    `json:"rating"`
	BuyerID string `json:"buyer_id"`
}

type WishlistRequest struct {
	BuyerID string `json:"buyer_id"`
}

type FetchNotificationsRequest struct {
	Recipient string `json:"recipient"`
}

// OperationResponse mirrors marketplace.OperationResult on the wire.
type OperationResponse = marketplace.OperationResult

type ItemsResponse struct {
	Items []catalog.Item `json:"items"`
}

type NotificationsResponse struct {
	Messages []string `json:"messages"`
}
