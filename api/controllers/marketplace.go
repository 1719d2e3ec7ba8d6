package controllers

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/marketplace-backend/api/responses"
	"github.com/angelmondragon/marketplace-backend/api/validators"
	"github.com/angelmondragon/marketplace-backend/internal/catalog"
	"github.com/angelmondragon/marketplace-backend/internal/marketplace"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
	"github.com/angelmondragon/marketplace-backend/pkg/logger"
)

// Marketplace is the operation surface served over HTTP.
type Marketplace interface {
	RegisterSeller(ctx context.Context, sellerID, endpoint string) marketplace.OperationResult
	AddItem(ctx context.Context, sellerID string, in marketplace.ItemInput) marketplace.OperationResult
	UpdateItem(ctx context.Context, sellerID string, itemID int64, quantity int, price decimal.Decimal) marketplace.OperationResult
	DeleteItem(ctx context.Context, sellerID string, itemID int64) marketplace.OperationResult
	Search(ctx context.Context, name string, category enums.Category) []catalog.Item
	ItemsBySeller(ctx context.Context, sellerID string) []catalog.Item
	BuyItem(ctx context.Context, itemID int64, quantity int, buyerID string) marketplace.OperationResult
	AddToWishlist(ctx context.Context, itemID int64, buyerID string) marketplace.OperationResult
	RateItem(ctx context.Context, itemID int64, score int, buyerID string) marketplace.OperationResult
	Wishlist(ctx context.Context, buyerID string) []catalog.Item
	FetchNotifications(ctx context.Context, recipient string) []string
}

type registerSellerRequest struct {
	SellerID string `json:"seller_id" validate:"required,max=128"`
	Endpoint string `json:"endpoint" validate:"max=256"`
}

type addItemRequest struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Category    string          `json:"category" validate:"required"`
	Price       decimal.Decimal `json:"price" validate:"gte=0"`
	Quantity    int             `json:"quantity" validate:"gte=0"`
	Description string          `json:"description" validate:"max=2000"`
}

type updateItemRequest struct {
	Quantity *int             `json:"quantity" validate:"required,gte=0"`
	Price    *decimal.Decimal `json:"price" validate:"required,gte=0"`
}

type purchaseRequest struct {
	BuyerID  string `json:"buyer_id" validate:"required,max=128"`
	Quantity int    `json:"quantity" validate:"gt=0"`
}

type watchRequest struct {
	BuyerID string `json:"buyer_id" validate:"required,max=128"`
}

type rateRequest struct {
	BuyerID string `json:"buyer_id" validate:"required,max=128"`
	Rating  int    `json:"rating" validate:"gte=1,lte=5"`
}

type itemsResponse struct {
	Items []catalog.Item `json:"items"`
}

type notificationsResponse struct {
	Recipient string   `json:"recipient"`
	Messages  []string `json:"messages"`
}

func RegisterSeller(svc Marketplace, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerSellerRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeResult(r.Context(), logg, w, svc.RegisterSeller(r.Context(), req.SellerID, req.Endpoint))
	}
}

func AddItem(svc Marketplace, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sellerID, err := validators.RequirePathParam(r, "sellerId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var req addItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		category, err := enums.ParseCategory(req.Category)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item category").
				WithDetails(map[string]any{"category": req.Category}))
			return
		}

		writeResult(ctx, logg, w, svc.AddItem(ctx, sellerID, marketplace.ItemInput{
			Name:        req.Name,
			Category:    category,
			Price:       req.Price,
			Quantity:    req.Quantity,
			Description: req.Description,
		}))
	}
}

func UpdateItem(svc Marketplace, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sellerID, itemID, err := sellerItemParams(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var req updateItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		writeResult(ctx, logg, w, svc.UpdateItem(ctx, sellerID, itemID, *req.Quantity, *req.Price))
	}
}

func DeleteItem(svc Marketplace, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sellerID, itemID, err := sellerItemParams(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		writeResult(ctx, logg, w, svc.DeleteItem(ctx, sellerID, itemID))
	}
}

// SearchItems filters by ?name= (substring, case-insensitive) and ?category=.
func SearchItems(svc Marketplace, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		category, err := validators.ParseCategoryQuery(r, "category")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		name := validators.SanitizeString(r.URL.Query().Get("name"), 200)
		responses.WriteSuccess(w, itemsResponse{Items: svc.Search(ctx, name, category)})
	}
}

func SellerItems(svc Marketplace, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sellerID, err := validators.RequirePathParam(r, "sellerId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, itemsResponse{Items: svc.ItemsBySeller(ctx, sellerID)})
	}
}

func BuyItem(svc Marketplace, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		itemID, err := validators.ParseItemID(r, "itemId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var req purchaseRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		writeResult(ctx, logg, w, svc.BuyItem(ctx, itemID, req.Quantity, req.BuyerID))
	}
}

func AddToWishlist(svc Marketplace, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		itemID, err := validators.ParseItemID(r, "itemId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var req watchRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		writeResult(ctx, logg, w, svc.AddToWishlist(ctx, itemID, req.BuyerID))
	}
}

func RateItem(svc Marketplace, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		itemID, err := validators.ParseItemID(r, "itemId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var req rateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		writeResult(ctx, logg, w, svc.RateItem(ctx, itemID, req.Rating, req.BuyerID))
	}
}

func BuyerWishlist(svc Marketplace, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		buyerID, err := validators.RequirePathParam(r, "buyerId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, itemsResponse{Items: svc.Wishlist(ctx, buyerID)})
	}
}

// FetchNotifications drains the recipient's mailbox, so it is a POST.
func FetchNotifications(svc Marketplace, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		recipient, err := validators.RequirePathParam(r, "recipient")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, notificationsResponse{
			Recipient: recipient,
			Messages:  svc.FetchNotifications(ctx, recipient),
		})
	}
}

func sellerItemParams(r *http.Request) (string, int64, error) {
	sellerID, err := validators.RequirePathParam(r, "sellerId")
	if err != nil {
		return "", 0, err
	}
	itemID, err := validators.ParseItemID(r, "itemId")
	if err != nil {
		return "", 0, err
	}
	return sellerID, itemID, nil
}

func writeResult(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, result marketplace.OperationResult) {
	if !result.Success {
		responses.WriteError(ctx, logg, w, result.Err())
		return
	}
	responses.WriteSuccess(w, result)
}
