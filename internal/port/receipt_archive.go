package port

import (
	"context"

	"github.com/rl1809/cloth-store/internal/core/domain"
)

type ReceiptArchive interface {
	// SavePurchase stores a committed purchase with its lines
	SavePurchase(ctx context.Context, purchase domain.Purchase) error
}
