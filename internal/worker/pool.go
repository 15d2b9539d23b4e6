package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rl1809/cloth-store/internal/core/domain"
	"github.com/rl1809/cloth-store/internal/port"
)

const defaultSaveTimeout = 5 * time.Second

// Pool drains the store's receipt queue into a ReceiptArchive.
type Pool struct {
	archive port.ReceiptArchive
	logger  *zap.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewPool(archive port.ReceiptArchive, logger *zap.Logger, timeout time.Duration) *Pool {
	if timeout <= 0 {
		timeout = defaultSaveTimeout
	}
	return &Pool{archive: archive, logger: logger, timeout: timeout}
}

// Start launches count workers. They exit once queue is closed and drained.
// A nil queue starts nothing.
func (p *Pool) Start(count int, queue <-chan domain.Purchase) {
	if queue == nil {
		return
	}
	for i := 0; i < count; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			p.workerLoop(id, queue)
		}(i)
	}
	p.logger.Info("started archive workers", zap.Int("count", count))
}

func (p *Pool) Wait() {
	p.wg.Wait()
}

func (p *Pool) workerLoop(id int, queue <-chan domain.Purchase) {
	for purchase := range queue {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)

		if err := p.archive.SavePurchase(ctx, purchase); err != nil {
			// The in-memory purchase stands; only the archive copy is lost.
			p.logger.Error("failed to archive purchase",
				zap.Int("worker", id),
				zap.Int("purchase_id", purchase.ID),
				zap.Error(err))
		} else {
			p.logger.Debug("archived purchase",
				zap.Int("worker", id),
				zap.Int("purchase_id", purchase.ID))
		}

		cancel()
	}
}
