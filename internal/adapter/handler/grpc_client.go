package handler

import (
	"context"

	"google.golang.org/grpc"
)

// StoreClient calls clothstore.v1.StoreService with the JSON codec.
type StoreClient struct {
	cc grpc.ClientConnInterface
}

func NewStoreClient(cc grpc.ClientConnInterface) *StoreClient {
	return &StoreClient{cc: cc}
}

func (c *StoreClient) invoke(ctx context.Context, method string, in, out any, opts ...grpc.CallOption) error {
	opts = append(opts, grpc.CallContentSubtype(CodecName))
	return c.cc.Invoke(ctx, "/"+storeServiceName+"/"+method, in, out, opts...)
}

func (c *StoreClient) AddItem(ctx context.Context, in *AddItemRequest, opts ...grpc.CallOption) (*ItemResponse, error) {
	out := new(ItemResponse)
	if err := c.invoke(ctx, "AddItem", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *StoreClient) UpdateStock(ctx context.Context, in *UpdateStockRequest, opts ...grpc.CallOption) (*UpdateStockResponse, error) {
	out := new(UpdateStockResponse)
	if err := c.invoke(ctx, "UpdateStock", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *StoreClient) SearchItems(ctx context.Context, in *SearchItemsRequest, opts ...grpc.CallOption) (*ItemListResponse, error) {
	out := new(ItemListResponse)
	if err := c.invoke(ctx, "SearchItems", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *StoreClient) ListItems(ctx context.Context, opts ...grpc.CallOption) (*ItemListResponse, error) {
	out := new(ItemListResponse)
	if err := c.invoke(ctx, "ListItems", &ListRequest{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *StoreClient) AddCustomer(ctx context.Context, in *AddCustomerRequest, opts ...grpc.CallOption) (*CustomerResponse, error) {
	out := new(CustomerResponse)
	if err := c.invoke(ctx, "AddCustomer", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *StoreClient) ListCustomers(ctx context.Context, opts ...grpc.CallOption) (*CustomerListResponse, error) {
	out := new(CustomerListResponse)
	if err := c.invoke(ctx, "ListCustomers", &ListRequest{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *StoreClient) RecordPurchase(ctx context.Context, in *RecordPurchaseRequest, opts ...grpc.CallOption) (*RecordPurchaseResponse, error) {
	out := new(RecordPurchaseResponse)
	if err := c.invoke(ctx, "RecordPurchase", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *StoreClient) ListPurchases(ctx context.Context, opts ...grpc.CallOption) (*PurchaseListResponse, error) {
	out := new(PurchaseListResponse)
	if err := c.invoke(ctx, "ListPurchases", &ListRequest{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
