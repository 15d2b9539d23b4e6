package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/rl1809/cloth-store/internal/adapter/storage"
	"github.com/rl1809/cloth-store/internal/core/domain"
	"github.com/rl1809/cloth-store/internal/core/service"
	"github.com/rl1809/cloth-store/internal/port"
	"github.com/rl1809/cloth-store/internal/worker"
)

type options struct {
	stock    int
	requests int
	copies   int
	queue    int
	workers  int
}

type result struct {
	success    int
	soldOut    int
	duplicate  int
	finalStock int
	purchases  int
	elapsed    time.Duration
}

func main() {
	var opts options
	pflag.IntVar(&opts.stock, "stock", 20, "initial stock of the contested item")
	pflag.IntVar(&opts.requests, "requests", 50, "number of distinct purchase requests")
	pflag.IntVar(&opts.copies, "copies", 2, "times each request id is sent concurrently")
	pflag.IntVar(&opts.queue, "queue", 100, "receipt queue size")
	pflag.IntVar(&opts.workers, "workers", 4, "archive workers draining the receipt queue")
	verbose := pflag.BoolP("verbose", "v", false, "log every store operation")
	pflag.Parse()

	logger := zap.NewNop()
	if *verbose {
		var err error
		if logger, err = zap.NewDevelopment(); err != nil {
			log.Fatalf("failed to init logger: %v", err)
		}
	}

	res := run(context.Background(), opts, storage.NewMemoryIdempotency(time.Minute), logger)
	expected := min(opts.stock, opts.requests)

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Initial Stock:    %d\n", opts.stock)
	fmt.Printf("Total Requests:   %d x %d copies\n", opts.requests, opts.copies)
	fmt.Printf("Successful:       %d\n", res.success)
	fmt.Printf("Sold Out:         %d\n", res.soldOut)
	fmt.Printf("Duplicates:       %d\n", res.duplicate)
	fmt.Printf("Purchases Logged: %d\n", res.purchases)
	fmt.Printf("Duration:         %v\n", res.elapsed)
	fmt.Println("==========================================")

	// Assertions
	if res.success == expected && res.purchases == expected {
		fmt.Printf("PASS: Exactly %d purchases succeeded\n", res.success)
	} else {
		fmt.Printf("FAIL: Expected %d purchases, got %d (%d logged)\n", expected, res.success, res.purchases)
	}

	fmt.Printf("Final Stock: %d\n", res.finalStock)
	if res.finalStock == opts.stock-expected {
		fmt.Printf("PASS: Stock settled at %d\n", res.finalStock)
	} else {
		fmt.Printf("FAIL: Expected stock %d, got %d\n", opts.stock-expected, res.finalStock)
	}
}

// run sends every request id opts.copies times at once, each a single-unit
// purchase of one contested item.
func run(ctx context.Context, opts options, idempotency port.IdempotencyStore, logger *zap.Logger) result {
	store := service.NewStoreService(logger, service.PricingCurrent, opts.queue)
	item := store.AddItem(service.NewItem{
		Name:     "Limited Hoodie",
		Category: "Top",
		Size:     "M",
		Color:    "Black",
		Price:    decimal.RequireFromString("1499.00"),
		Stock:    opts.stock,
	})
	customer := store.AddCustomer("Stress Tester", "0000000000")

	// Drain the receipt queue in background
	pool := worker.NewPool(storage.NewLogArchive(logger), logger, 0)
	pool.Start(opts.workers, store.Receipts())

	var success, soldOut, duplicate atomic.Int32
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < opts.requests; i++ {
		key := "purchase:" + uuid.NewString()
		for c := 0; c < opts.copies; c++ {
			wg.Add(1)
			go func() {
				defer wg.Done()

				ok, err := idempotency.SetIdempotency(ctx, key)
				if err != nil {
					logger.Error("idempotency check failed", zap.String("key", key), zap.Error(err))
					soldOut.Add(1)
					return
				}
				if !ok {
					duplicate.Add(1)
					return
				}

				_, err = store.RecordPurchase(ctx, customer.ID, []domain.LineItem{{ItemID: item.ID, Quantity: 1}})
				if err == nil {
					success.Add(1)
					return
				}

				if !errors.Is(err, service.ErrInsufficientStock) {
					logger.Error("purchase failed", zap.Error(err))
				}
				soldOut.Add(1)
				if err := idempotency.ReleaseIdempotency(ctx, key); err != nil {
					logger.Warn("failed to release idempotency key", zap.String("key", key), zap.Error(err))
				}
			}()
		}
	}

	wg.Wait()
	elapsed := time.Since(start)

	store.Close()
	pool.Wait()

	return result{
		success:    int(success.Load()),
		soldOut:    int(soldOut.Load()),
		duplicate:  int(duplicate.Load()),
		finalStock: store.Inventory()[0].Stock,
		purchases:  len(store.Purchases()),
		elapsed:    elapsed,
	}
}
