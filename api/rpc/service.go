package rpc

import (
	"context"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/angelmondragon/marketplace-backend/internal/catalog"
	"github.com/angelmondragon/marketplace-backend/internal/marketplace"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "marketplace.Marketplace"

const (
	MethodRegisterSeller     = "RegisterSeller"
	MethodAddItem            = "AddItem"
	MethodUpdateItem         = "UpdateItem"
	MethodDeleteItem         = "DeleteItem"
	MethodSearch             = "Search"
	MethodItemsBySeller      = "ItemsBySeller"
	MethodBuyItem            = "BuyItem"
	MethodAddToWishlist      = "AddToWishlist"
	MethodRateItem           = "RateItem"
	MethodWishlist           = "Wishlist"
	MethodFetchNotifications = "FetchNotifications"
)

// Marketplace is the operation surface served over gRPC.
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

func fullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

// unary adapts a typed call into a grpc.MethodDesc, running interceptors the
// same way generated stubs do.
func unary[Req, Resp any](name string, call func(context.Context, Marketplace, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			req := new(Req)
			if err := dec(req); err != nil {
				return nil, err
			}
			svc := srv.(Marketplace)
			if interceptor == nil {
				return call(ctx, svc, req)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
			return interceptor(ctx, req, info, func(ctx context.Context, r any) (any, error) {
				return call(ctx, svc, r.(*Req))
			})
		},
	}
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*Marketplace)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodRegisterSeller, registerSeller),
		unary(MethodAddItem, addItem),
		unary(MethodUpdateItem, updateItem),
		unary(MethodDeleteItem, deleteItem),
		unary(MethodSearch, search),
		unary(MethodItemsBySeller, itemsBySeller),
		unary(MethodBuyItem, buyItem),
		unary(MethodAddToWishlist, addToWishlist),
		unary(MethodRateItem, rateItem),
		unary(MethodWishlist, wishlist),
		unary(MethodFetchNotifications, fetchNotifications),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "marketplace.proto",
}

// Register attaches svc to s under ServiceName.
func Register(s grpc.ServiceRegistrar, svc Marketplace) {
	s.RegisterService(&serviceDesc, svc)
}

func registerSeller(ctx context.Context, svc Marketplace, req *RegisterSellerRequest) (*OperationResponse, error) {
	res := svc.RegisterSeller(ctx, req.SellerID, req.Endpoint)
	return &res, nil
}

func addItem(ctx context.Context, svc Marketplace, req *AddItemRequest) (*OperationResponse, error) {
	category, err := enums.ParseCategory(req.Category)
	if err != nil {
		return rejected(pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item category")), nil
	}
	price, perr := parsePrice(req.Price)
	if perr != nil {
		return rejected(perr), nil
	}
	res := svc.AddItem(ctx, req.SellerID, marketplace.ItemInput{
		Name:        req.Name,
		Category:    category,
		Price:       price,
		Quantity:    req.Quantity,
		Description: req.Description,
	})
	return &res, nil
}

func updateItem(ctx context.Context, svc Marketplace, req *UpdateItemRequest) (*OperationResponse, error) {
	price, perr := parsePrice(req.Price)
	if perr != nil {
		return rejected(perr), nil
	}
	res := svc.UpdateItem(ctx, req.SellerID, req.ItemID, req.Quantity, price)
	return &res, nil
}

func deleteItem(ctx context.Context, svc Marketplace, req *DeleteItemRequest) (*OperationResponse, error) {
	res := svc.DeleteItem(ctx, req.SellerID, req.ItemID)
	return &res, nil
}

func search(ctx context.Context, svc Marketplace, req *SearchRequest) (*ItemsResponse, error) {
	category, err := enums.ParseCategoryFilter(req.Category)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	return &ItemsResponse{Items: svc.Search(ctx, req.Name, category)}, nil
}

func itemsBySeller(ctx context.Context, svc Marketplace, req *ItemsBySellerRequest) (*ItemsResponse, error) {
	return &ItemsResponse{Items: svc.ItemsBySeller(ctx, req.SellerID)}, nil
}

func buyItem(ctx context.Context, svc Marketplace, req *BuyItemRequest) (*OperationResponse, error) {
	res := svc.BuyItem(ctx, req.ItemID, req.Quantity, req.BuyerID)
	return &res, nil
}

func addToWishlist(ctx context.Context, svc Marketplace, req *AddToWishlistRequest) (*OperationResponse, error) {
	res := svc.AddToWishlist(ctx, req.ItemID, req.BuyerID)
	return &res, nil
}

func rateItem(ctx context.Context, svc Marketplace, req *RateItemRequest) (*OperationResponse, error) {
	res := svc.RateItem(ctx, req.ItemID, req.Rating, req.BuyerID)
	return &res, nil
}

func wishlist(ctx context.Context, svc Marketplace, req *WishlistRequest) (*ItemsResponse, error) {
	return &ItemsResponse{Items: svc.Wishlist(ctx, req.BuyerID)}, nil
}

func fetchNotifications(ctx context.Context, svc Marketplace, req *FetchNotificationsRequest) (*NotificationsResponse, error) {
	return &NotificationsResponse{Messages: svc.FetchNotifications(ctx, req.Recipient)}, nil
}

func parsePrice(raw string) (decimal.Decimal, *pkgerrors.Error) {
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "price must be a decimal number").
			WithDetails(map[string]any{"price": raw})
	}
	return price, nil
}

func rejected(err *pkgerrors.Error) *OperationResponse {
	return &OperationResponse{Success: false, Message: err.Message(), Code: err.Code()}
}
