package handler

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/rl1809/cloth-store/internal/core/service"
	"github.com/rl1809/cloth-store/internal/port"
)

var ErrDuplicateRequest = errors.New("duplicate request")

const idempotencyKeyPrefix = "purchase:"

// purchaseFlow runs a purchase request through the idempotency store (when a
// request id is given) and the store service. Both transports use it.
type purchaseFlow struct {
	store       *service.StoreService
	idempotency port.IdempotencyStore
	logger      *zap.Logger
}

func (f purchaseFlow) record(ctx context.Context, req RecordPurchaseRequest) (RecordPurchaseResponse, error) {
	key := ""
	if req.RequestID != "" && f.idempotency != nil {
		key = idempotencyKeyPrefix + req.RequestID
		ok, err := f.idempotency.SetIdempotency(ctx, key)
		if err != nil {
			return RecordPurchaseResponse{}, fmt.Errorf("idempotency check failed: %w", err)
		}
		if !ok {
			return RecordPurchaseResponse{}, ErrDuplicateRequest
		}
	}

	purchase, err := f.store.RecordPurchase(ctx, req.CustomerID, toLineItems(req.Items))
	if err != nil || purchase == nil {
		f.release(ctx, key)
	}
	if err != nil {
		return RecordPurchaseResponse{}, err
	}
	if purchase == nil {
		return RecordPurchaseResponse{Recorded: false, Message: "no items added to the purchase"}, nil
	}

	resp := toPurchaseResponse(*purchase, f.store.Total(*purchase))
	return RecordPurchaseResponse{Recorded: true, Message: "purchase recorded", Purchase: &resp}, nil
}

func (f purchaseFlow) release(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := f.idempotency.ReleaseIdempotency(ctx, key); err != nil {
		f.logger.Warn("failed to release idempotency key", zap.String("key", key), zap.Error(err))
	}
}
