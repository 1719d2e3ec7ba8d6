package rpc

import (
	"context"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc"

	"github.com/angelmondragon/marketplace-backend/internal/catalog"
	"github.com/angelmondragon/marketplace-backend/internal/marketplace"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
)

// Client calls a remote marketplace over an established connection. Mutating
// calls report transport faults as a failed result with DEPENDENCY_ERROR;
// listing calls return the error.
type Client struct {
	conn grpc.ClientConnInterface
}

func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

func (c *Client) invoke(ctx context.Context, method string, req, resp any) error {
	return c.conn.Invoke(ctx, fullMethod(method), req, resp, grpc.CallContentSubtype(CodecName))
}

func (c *Client) operation(ctx context.Context, method string, req any) marketplace.OperationResult {
	var resp OperationResponse
	if err := c.invoke(ctx, method, req, &resp); err != nil {
		return marketplace.OperationResult{Success: false, Message: err.Error(), Code: pkgerrors.CodeDependency}
	}
	return resp
}

func (c *Client) RegisterSeller(ctx context.Context, sellerID, endpoint string) marketplace.OperationResult {
	return c.operation(ctx, MethodRegisterSeller, &RegisterSellerRequest{SellerID: sellerID, Endpoint: endpoint})
}

func (c *Client) AddItem(ctx context.Context, sellerID string, in marketplace.ItemInput) marketplace.OperationResult {
	return c.operation(ctx, MethodAddItem, &AddItemRequest{
		SellerID:    sellerID,
		Name:        in.Name,
		Category:    in.Category.String(),
		Price:       in.Price.String(),
		Quantity:    in.Quantity,
		Description: in.Description,
	})
}

func (c *Client) UpdateItem(ctx context.Context, sellerID string, itemID int64, quantity int, price decimal.Decimal) marketplace.OperationResult {
	return c.operation(ctx, MethodUpdateItem, &UpdateItemRequest{SellerID: sellerID, ItemID: itemID, Quantity: quantity, Price: price.String()})
}

func (c *Client) DeleteItem(ctx context.Context, sellerID string, itemID int64) marketplace.OperationResult {
	return c.operation(ctx, MethodDeleteItem, &DeleteItemRequest{SellerID: sellerID, ItemID: itemID})
}

func (c *Client) BuyItem(ctx context.Context, itemID int64, quantity int, buyerID string) marketplace.OperationResult {
	return c.operation(ctx, MethodBuyItem, &BuyItemRequest{ItemID: itemID, Quantity: quantity, BuyerID: buyerID})
}

func (c *Client) AddToWishlist(ctx context.Context, itemID int64, buyerID string) marketplace.OperationResult {
	return c.operation(ctx, MethodAddToWishlist, &AddToWishlistRequest{ItemID: itemID, BuyerID: buyerID})
}

func (c *Client) RateItem(ctx context.Context, itemID int64, score int, buyerID string) marketplace.OperationResult {
	return c.operation(ctx, MethodRateItem, &RateItemRequest{ItemID: itemID, Rating: score, BuyerID: buyerID})
}

func (c *Client) Search(ctx context.Context, name string, category enums.Category) ([]catalog.Item, error) {
	var resp ItemsResponse
	if err := c.invoke(ctx, MethodSearch, &SearchRequest{Name: name, Category: category.String()}, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (c *Client) ItemsBySeller(ctx context.Context, sellerID string) ([]catalog.Item, error) {
	var resp ItemsResponse
	if err := c.invoke(ctx, MethodItemsBySeller, &ItemsBySellerRequest{SellerID: sellerID}, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (c *Client) Wishlist(ctx context.Context, buyerID string) ([]catalog.Item, error) {
	var resp ItemsResponse
	if err := c.invoke(ctx, MethodWishlist, &WishlistRequest{BuyerID: buyerID}, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (c *Client) FetchNotifications(ctx context.Context, recipient string) ([]string, error) {
	var resp NotificationsResponse
	if err := c.invoke(ctx, MethodFetchNotifications, &FetchNotificationsRequest{Recipient: recipient}, &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}
