package handler

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/rl1809/cloth-store/internal/core/domain"
	"github.com/rl1809/cloth-store/internal/core/service"
	"github.com/rl1809/cloth-store/internal/port"
)

const storeServiceName = "clothstore.v1.StoreService"

// StoreServer is the server API of clothstore.v1.StoreService.
type StoreServer interface {
	AddItem(context.Context, *AddItemRequest) (*ItemResponse, error)
	UpdateStock(context.Context, *UpdateStockRequest) (*UpdateStockResponse, error)
	SearchItems(context.Context, *SearchItemsRequest) (*ItemListResponse, error)
	ListItems(context.Context, *ListRequest) (*ItemListResponse, error)
	AddCustomer(context.Context, *AddCustomerRequest) (*CustomerResponse, error)
	ListCustomers(context.Context, *ListRequest) (*CustomerListResponse, error)
	RecordPurchase(context.Context, *RecordPurchaseRequest) (*RecordPurchaseResponse, error)
	ListPurchases(context.Context, *ListRequest) (*PurchaseListResponse, error)
}

var storeServiceDesc = grpc.ServiceDesc{
	ServiceName: storeServiceName,
	HandlerType: (*StoreServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "AddItem", Handler: unaryHandler("AddItem", StoreServer.AddItem)},
		{MethodName: "UpdateStock", Handler: unaryHandler("UpdateStock", StoreServer.UpdateStock)},
		{MethodName: "SearchItems", Handler: unaryHandler("SearchItems", StoreServer.SearchItems)},
		{MethodName: "ListItems", Handler: unaryHandler("ListItems", StoreServer.ListItems)},
		{MethodName: "AddCustomer", Handler: unaryHandler("AddCustomer", StoreServer.AddCustomer)},
		{MethodName: "ListCustomers", Handler: unaryHandler("ListCustomers", StoreServer.ListCustomers)},
		{MethodName: "RecordPurchase", Handler: unaryHandler("RecordPurchase", StoreServer.RecordPurchase)},
		{MethodName: "ListPurchases", Handler: unaryHandler("ListPurchases", StoreServer.ListPurchases)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "clothstore/v1/store",
}

func RegisterStoreServer(s grpc.ServiceRegistrar, srv StoreServer) {
	s.RegisterService(&storeServiceDesc, srv)
}

func unaryHandler[Req, Resp any](method string, call func(StoreServer, context.Context, *Req) (*Resp, error)) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	fullMethod := "/" + storeServiceName + "/" + method

	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(StoreServer), ctx, in)
		}

		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(StoreServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

type GRPCHandler struct {
	store    *service.StoreService
	purchase purchaseFlow
	logger   *zap.Logger
}

func NewGRPCHandler(store *service.StoreService, idempotency port.IdempotencyStore, logger *zap.Logger) *GRPCHandler {
	return &GRPCHandler{
		store:    store,
		purchase: purchaseFlow{store: store, idempotency: idempotency, logger: logger},
		logger:   logger,
	}
}

func (h *GRPCHandler) AddItem(ctx context.Context, req *AddItemRequest) (*ItemResponse, error) {
	if req.Name == "" {
		return nil, status.Error(codes.InvalidArgument, "missing required fields")
	}

	item := h.store.AddItem(service.NewItem{
		Name:     req.Name,
		Category: req.Category,
		Size:     req.Size,
		Color:    req.Color,
		Price:    req.Price,
		Stock:    req.Stock,
	})
	resp := toItemResponse(item)
	return &resp, nil
}

func (h *GRPCHandler) UpdateStock(ctx context.Context, req *UpdateStockRequest) (*UpdateStockResponse, error) {
	update, err := h.store.UpdateStock(req.ItemID, req.Delta)
	if err != nil {
		return nil, h.toStatus(err)
	}
	resp := toStockResponse(update)
	return &resp, nil
}

func (h *GRPCHandler) SearchItems(ctx context.Context, req *SearchItemsRequest) (*ItemListResponse, error) {
	field, err := domain.ParseSearchField(req.Field)
	if err != nil {
		return nil, h.toStatus(err)
	}
	resp := toItemList(h.store.Search(req.Query, field))
	return &resp, nil
}

func (h *GRPCHandler) ListItems(ctx context.Context, _ *ListRequest) (*ItemListResponse, error) {
	resp := toItemList(h.store.Inventory())
	return &resp, nil
}

func (h *GRPCHandler) AddCustomer(ctx context.Context, req *AddCustomerRequest) (*CustomerResponse, error) {
	if req.Name == "" {
		return nil, status.Error(codes.InvalidArgument, "missing required fields")
	}
	resp := toCustomerResponse(h.store.AddCustomer(req.Name, req.Contact))
	return &resp, nil
}

func (h *GRPCHandler) ListCustomers(ctx context.Context, _ *ListRequest) (*CustomerListResponse, error) {
	resp := toCustomerList(h.store.Customers())
	return &resp, nil
}

func (h *GRPCHandler) RecordPurchase(ctx context.Context, req *RecordPurchaseRequest) (*RecordPurchaseResponse, error) {
	resp, err := h.purchase.record(ctx, *req)
	if err != nil {
		return nil, h.toStatus(err)
	}
	return &resp, nil
}

func (h *GRPCHandler) ListPurchases(ctx context.Context, _ *ListRequest) (*PurchaseListResponse, error) {
	purchases := h.store.Purchases()

	resp := PurchaseListResponse{Purchases: make([]PurchaseResponse, 0, len(purchases)), Empty: len(purchases) == 0}
	for _, p := range purchases {
		resp.Purchases = append(resp.Purchases, toPurchaseResponse(p, h.store.Total(p)))
	}
	return &resp, nil
}

func (h *GRPCHandler) toStatus(err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, service.ErrInsufficientStock):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, ErrDuplicateRequest):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, service.ErrInvalidQuantity), errors.Is(err, domain.ErrInvalidSearchField):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	default:
		h.logger.Error("rpc failed", zap.Error(err))
		return status.Error(codes.Internal, "internal error")
	}
}
