package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/rl1809/cloth-store/internal/core/domain"
)

func newSeededStore(t *testing.T) *StoreService {
	t.Helper()
	s := NewStoreService(zap.NewNop(), PricingCurrent, 0)
	SeedDemo(s)
	return s
}

func stockOf(t *testing.T, s *StoreService, itemID int) int {
	t.Helper()
	for _, item := range s.Inventory() {
		if item.ID == itemID {
			return item.Stock
		}
	}
	t.Fatalf("item %d not in inventory", itemID)
	return 0
}

func TestAddItem_SequentialIDs(t *testing.T) {
	s := NewStoreService(nil, PricingCurrent, 0)

	for want := 1; want <= 5; want++ {
		item := s.AddItem(NewItem{Name: "item", Price: decimal.NewFromInt(1), Stock: 1})
		assert.Equal(t, want, item.ID)
	}

	items := s.Inventory()
	require.Len(t, items, 5)
	for i, item := range items {
		assert.Equal(t, i+1, item.ID)
	}
}

func TestAddItem_NegativeInputsAccepted(t *testing.T) {
	s := NewStoreService(nil, PricingCurrent, 0)

	item := s.AddItem(NewItem{Name: "odd", Price: decimal.NewFromInt(-5), Stock: -3})

	assert.Equal(t, -3, item.Stock)
	assert.True(t, item.Price.Equal(decimal.NewFromInt(-5)))
}

func TestUpdateStock(t *testing.T) {
	tests := []struct {
		name        string
		itemID      int
		delta       int
		wantStock   int
		wantClamped bool
		wantErr     error
	}{
		{name: "restock", itemID: 1, delta: 10, wantStock: 60},
		{name: "partial removal", itemID: 1, delta: -20, wantStock: 30},
		{name: "exact removal", itemID: 1, delta: -50, wantStock: 0},
		{name: "removal beyond stock clamps", itemID: 1, delta: -1000, wantStock: 0, wantClamped: true},
		{name: "unknown item", itemID: 99, delta: 1, wantErr: ErrItemNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSeededStore(t)

			update, err := s.UpdateStock(tt.itemID, tt.delta)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.ErrorIs(t, err, ErrNotFound)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantStock, update.Stock)
			assert.Equal(t, tt.wantClamped, update.Clamped)
			assert.Equal(t, tt.wantStock, stockOf(t, s, tt.itemID))
		})
	}
}

func TestUpdateStock_ClampLogsWarning(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	s := NewStoreService(zap.New(core), PricingCurrent, 0)
	SeedDemo(s)

	_, err := s.UpdateStock(2, -31)
	require.NoError(t, err)

	entries := logs.FilterMessage("stock cannot be negative, set to 0").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(2), entries[0].ContextMap()["item_id"])
}

func TestSearch(t *testing.T) {
	s := newSeededStore(t)
	s.AddItem(NewItem{Name: "SHIRT dress", Category: "Top", Color: "Green", Price: decimal.NewFromInt(1)})

	tests := []struct {
		name    string
		query   string
		field   domain.SearchField
		wantIDs []int
	}{
		{name: "name is case-insensitive substring", query: "shirt", field: domain.SearchByName, wantIDs: []int{1, 4, 5}},
		{name: "category", query: "TOP", field: domain.SearchByCategory, wantIDs: []int{1, 4, 5}},
		{name: "color", query: "re", field: domain.SearchByColor, wantIDs: []int{3, 5}},
		{name: "id exact match", query: "1", field: domain.SearchByID, wantIDs: []int{1}},
		{name: "id has no partial match", query: "", field: domain.SearchByID, wantIDs: []int{}},
		{name: "no match", query: "hat", field: domain.SearchByName, wantIDs: []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := s.Search(tt.query, tt.field)

			ids := make([]int, 0, len(results))
			for _, item := range results {
				ids = append(ids, item.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestAddCustomer_AllowsDuplicates(t *testing.T) {
	s := NewStoreService(nil, PricingCurrent, 0)

	first := s.AddCustomer("Alice Smith", "9876543210")
	second := s.AddCustomer("Alice Smith", "9876543210")

	assert.Equal(t, 1, first.ID)
	assert.Equal(t, 2, second.ID)
	assert.Len(t, s.Customers(), 2)
}

func TestRecordPurchase_Success(t *testing.T) {
	s := newSeededStore(t)
	fixed := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	purchase, err := s.RecordPurchase(context.Background(), 1, []domain.LineItem{{ItemID: 1, Quantity: 10}})
	require.NoError(t, err)
	require.NotNil(t, purchase)

	assert.Equal(t, 1, purchase.ID)
	assert.Equal(t, 1, purchase.CustomerID)
	assert.Equal(t, "Alice Smith", purchase.CustomerName)
	assert.Equal(t, fixed, purchase.CreatedAt)
	assert.Equal(t, 10, purchase.Quantity(1))
	assert.Equal(t, 40, stockOf(t, s, 1))
	assert.Equal(t, "5999.90", s.Total(*purchase).StringFixed(2))
}

func TestRecordPurchase_InsufficientStockLeavesStockUnchanged(t *testing.T) {
	s := newSeededStore(t)
	_, err := s.RecordPurchase(context.Background(), 1, []domain.LineItem{{ItemID: 1, Quantity: 10}})
	require.NoError(t, err)

	purchase, err := s.RecordPurchase(context.Background(), 1, []domain.LineItem{{ItemID: 1, Quantity: 999}})

	require.ErrorIs(t, err, ErrInsufficientStock)
	assert.Nil(t, purchase)
	assert.Equal(t, 40, stockOf(t, s, 1))
	assert.Len(t, s.Purchases(), 1)
}

func TestRecordPurchase_Atomicity(t *testing.T) {
	tests := []struct {
		name       string
		customerID int
		lines      []domain.LineItem
		wantErr    error
	}{
		{
			name:       "later line exceeds stock",
			customerID: 1,
			lines:      []domain.LineItem{{ItemID: 1, Quantity: 5}, {ItemID: 2, Quantity: 5}, {ItemID: 3, Quantity: 21}},
			wantErr:    ErrInsufficientStock,
		},
		{
			name:       "later line unknown item",
			customerID: 1,
			lines:      []domain.LineItem{{ItemID: 1, Quantity: 5}, {ItemID: 42, Quantity: 1}},
			wantErr:    ErrItemNotFound,
		},
		{
			name:       "unknown customer with valid lines",
			customerID: 7,
			lines:      []domain.LineItem{{ItemID: 1, Quantity: 1}},
			wantErr:    ErrCustomerNotFound,
		},
		{
			name:       "zero quantity",
			customerID: 1,
			lines:      []domain.LineItem{{ItemID: 1, Quantity: 1}, {ItemID: 2, Quantity: 0}},
			wantErr:    ErrInvalidQuantity,
		},
		{
			name:       "negative quantity",
			customerID: 1,
			lines:      []domain.LineItem{{ItemID: 1, Quantity: -3}},
			wantErr:    ErrInvalidQuantity,
		},
		{
			name:       "repeated item exceeds stock in total",
			customerID: 1,
			lines:      []domain.LineItem{{ItemID: 3, Quantity: 15}, {ItemID: 3, Quantity: 10}},
			wantErr:    ErrInsufficientStock,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSeededStore(t)
			before := s.Inventory()

			purchase, err := s.RecordPurchase(context.Background(), tt.customerID, tt.lines)

			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, purchase)
			assert.Equal(t, before, s.Inventory())
			assert.Empty(t, s.Purchases())

			// the purchase counter did not move
			s.AddCustomer("x", "y")
			next, err := s.RecordPurchase(context.Background(), 1, []domain.LineItem{{ItemID: 1, Quantity: 1}})
			require.NoError(t, err)
			assert.Equal(t, 1, next.ID)
		})
	}
}

func TestRecordPurchase_UnknownCustomerCheckedFirst(t *testing.T) {
	s := newSeededStore(t)

	_, err := s.RecordPurchase(context.Background(), 99, []domain.LineItem{{ItemID: 42, Quantity: 0}})

	require.ErrorIs(t, err, ErrCustomerNotFound)
	require.ErrorIs(t, err, ErrNotFound)
	assert.False(t, errors.Is(err, ErrItemNotFound))
}

func TestRecordPurchase_EmptyIsNoop(t *testing.T) {
	s := newSeededStore(t)

	purchase, err := s.RecordPurchase(context.Background(), 1, nil)

	require.NoError(t, err)
	assert.Nil(t, purchase)
	assert.Empty(t, s.Purchases())
	assert.Equal(t, 50, stockOf(t, s, 1))
}

func TestRecordPurchase_EmptyForUnknownCustomer(t *testing.T) {
	s := newSeededStore(t)

	purchase, err := s.RecordPurchase(context.Background(), 99, nil)

	require.ErrorIs(t, err, ErrCustomerNotFound)
	assert.Nil(t, purchase)
	assert.Empty(t, s.Purchases())
}

func TestRecordPurchase_RepeatedItemLastQuantityWins(t *testing.T) {
	s := newSeededStore(t)

	purchase, err := s.RecordPurchase(context.Background(), 2, []domain.LineItem{
		{ItemID: 2, Quantity: 3},
		{ItemID: 1, Quantity: 1},
		{ItemID: 2, Quantity: 4},
	})
	require.NoError(t, err)

	require.Len(t, purchase.Lines, 2)
	assert.Equal(t, 2, purchase.Lines[0].ItemID)
	assert.Equal(t, 4, purchase.Lines[0].Quantity)
	assert.Equal(t, 1, purchase.Lines[1].ItemID)
	// both decrements apply
	assert.Equal(t, 23, stockOf(t, s, 2))
}

func TestRecordPurchase_CancelledContext(t *testing.T) {
	s := newSeededStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.RecordPurchase(ctx, 1, []domain.LineItem{{ItemID: 1, Quantity: 1}})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 50, stockOf(t, s, 1))
}

func TestTotal_PricingModes(t *testing.T) {
	for _, tt := range []struct {
		mode      PricingMode
		wantTotal string
	}{
		{mode: PricingCurrent, wantTotal: "7000.00"},
		{mode: PricingSnapshot, wantTotal: "5999.90"},
	} {
		t.Run(string(tt.mode), func(t *testing.T) {
			s := NewStoreService(nil, tt.mode, 0)
			SeedDemo(s)
			require.Equal(t, tt.mode, s.PricingMode())

			purchase, err := s.RecordPurchase(context.Background(), 1, []domain.LineItem{{ItemID: 1, Quantity: 10}})
			require.NoError(t, err)

			// reprice the item after the sale
			s.items[1].Price = decimal.NewFromInt(700)

			assert.Equal(t, tt.wantTotal, s.Total(*purchase).StringFixed(2))
		})
	}
}

func TestParsePricingMode(t *testing.T) {
	mode, err := ParsePricingMode("")
	require.NoError(t, err)
	assert.Equal(t, PricingCurrent, mode)
	assert.Equal(t, PricingCurrent, NewStoreService(nil, "", 0).PricingMode())

	mode, err = ParsePricingMode("snapshot")
	require.NoError(t, err)
	assert.Equal(t, PricingSnapshot, mode)

	_, err = ParsePricingMode("frozen")
	require.ErrorIs(t, err, ErrInvalidPricing)
}

func TestReceiptQueue(t *testing.T) {
	s := NewStoreService(nil, PricingCurrent, 1)
	SeedDemo(s)

	_, err := s.RecordPurchase(context.Background(), 1, []domain.LineItem{{ItemID: 1, Quantity: 2}})
	require.NoError(t, err)
	// queue is full now, the second receipt is dropped but the purchase stands
	_, err = s.RecordPurchase(context.Background(), 2, []domain.LineItem{{ItemID: 2, Quantity: 1}})
	require.NoError(t, err)

	receipt := <-s.Receipts()
	assert.Equal(t, 1, receipt.ID)
	assert.Equal(t, 2, receipt.Quantity(1))
	assert.Len(t, s.Purchases(), 2)

	s.Close()
	_, err = s.RecordPurchase(context.Background(), 1, []domain.LineItem{{ItemID: 1, Quantity: 1}})
	require.NoError(t, err)
	assert.Nil(t, s.Receipts())
}

func TestRecordPurchase_Concurrent(t *testing.T) {
	initialStock := 20
	totalRequests := 50

	s := NewStoreService(nil, PricingCurrent, 0)
	item := s.AddItem(NewItem{Name: "Limited Hoodie", Price: decimal.NewFromInt(1), Stock: initialStock})
	customer := s.AddCustomer("buyer", "000")

	var successCount atomic.Int32
	var failCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.RecordPurchase(context.Background(), customer.ID, []domain.LineItem{{ItemID: item.ID, Quantity: 1}})
			if err == nil {
				successCount.Add(1)
				return
			}
			if !errors.Is(err, ErrInsufficientStock) {
				t.Errorf("unexpected error: %v", err)
			}
			failCount.Add(1)
		}()
	}

	wg.Wait()

	assert.Equal(t, int32(initialStock), successCount.Load())
	assert.Equal(t, int32(totalRequests-initialStock), failCount.Load())
	assert.Equal(t, 0, stockOf(t, s, item.ID))

	purchases := s.Purchases()
	require.Len(t, purchases, initialStock)
	for i, p := range purchases {
		assert.Equal(t, i+1, p.ID)
	}
}
