package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rl1809/cloth-store/internal/core/domain"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrItemNotFound      = fmt.Errorf("item %w", ErrNotFound)
	ErrCustomerNotFound  = fmt.Errorf("customer %w", ErrNotFound)
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrInvalidPricing    = errors.New("invalid pricing mode")
)

// PricingMode selects which unit price purchase totals are computed with.
type PricingMode string

const (
	// PricingCurrent prices every line with the item's current catalog price,
	// so a later price change also changes historical totals.
	PricingCurrent PricingMode = "current"
	// PricingSnapshot prices every line with the price captured at commit time.
	PricingSnapshot PricingMode = "snapshot"
)

func ParsePricingMode(s string) (PricingMode, error) {
	switch mode := PricingMode(s); mode {
	case "":
		return PricingCurrent, nil
	case PricingCurrent, PricingSnapshot:
		return mode, nil
	default:
		return "", fmt.Errorf("%q: %w", s, ErrInvalidPricing)
	}
}

type NewItem struct {
	Name     string
	Category string
	Size     string
	Color    string
	Price    decimal.Decimal
	Stock    int
}

// StockUpdate reports the outcome of a stock change. Clamped is set when the
// requested decrement exceeded the available stock and stock was set to zero.
type StockUpdate struct {
	ItemID  int
	Stock   int
	Clamped bool
}

// StoreService owns the catalog, the customer roster and the purchase log.
// All operations are serialized by one mutex, which also makes the two phases
// of RecordPurchase a single critical section.
type StoreService struct {
	mu      sync.Mutex
	logger  *zap.Logger
	pricing PricingMode
	now     func() time.Time

	items         map[int]*domain.Item
	itemOrder     []int
	customers     map[int]*domain.Customer
	customerOrder []int
	purchases     []domain.Purchase

	nextItemID     int
	nextCustomerID int
	nextPurchaseID int

	receipts chan domain.Purchase
}

// NewStoreService creates an empty store. queueSize > 0 enables the receipt
// queue returned by Receipts.
func NewStoreService(logger *zap.Logger, pricing PricingMode, queueSize int) *StoreService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pricing == "" {
		pricing = PricingCurrent
	}

	s := &StoreService{
		logger:         logger,
		pricing:        pricing,
		now:            time.Now,
		items:          make(map[int]*domain.Item),
		customers:      make(map[int]*domain.Customer),
		nextItemID:     1,
		nextCustomerID: 1,
		nextPurchaseID: 1,
	}
	if queueSize > 0 {
		s.receipts = make(chan domain.Purchase, queueSize)
	}
	return s
}

func (s *StoreService) AddItem(in NewItem) domain.Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := &domain.Item{
		ID:       s.nextItemID,
		Name:     in.Name,
		Category: in.Category,
		Size:     in.Size,
		Color:    in.Color,
		Price:    in.Price,
		Stock:    in.Stock,
	}
	s.items[item.ID] = item
	s.itemOrder = append(s.itemOrder, item.ID)
	s.nextItemID++

	s.logger.Info("item added",
		zap.Int("item_id", item.ID),
		zap.String("name", item.Name),
		zap.Int("stock", item.Stock))

	return *item
}

// UpdateStock adds delta to the item's stock. A result below zero is clamped
// to zero and reported through StockUpdate.Clamped; it is not an error.
func (s *StoreService) UpdateStock(itemID, delta int) (StockUpdate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[itemID]
	if !ok {
		return StockUpdate{}, fmt.Errorf("item %d: %w", itemID, ErrItemNotFound)
	}

	clamped := s.adjustStockLocked(item, delta)
	return StockUpdate{ItemID: itemID, Stock: item.Stock, Clamped: clamped}, nil
}

func (s *StoreService) adjustStockLocked(item *domain.Item, delta int) bool {
	item.Stock += delta
	if item.Stock >= 0 {
		return false
	}

	item.Stock = 0
	s.logger.Warn("stock cannot be negative, set to 0",
		zap.Int("item_id", item.ID),
		zap.String("name", item.Name),
		zap.Int("delta", delta))
	return true
}

// Search returns the items matching query on field, in insertion order.
func (s *StoreService) Search(query string, field domain.SearchField) []domain.Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	results := make([]domain.Item, 0)
	for _, id := range s.itemOrder {
		item := s.items[id]
		if field.Match(*item, query) {
			results = append(results, *item)
		}
	}
	return results
}

func (s *StoreService) AddCustomer(name, contact string) domain.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()

	customer := &domain.Customer{
		ID:      s.nextCustomerID,
		Name:    name,
		Contact: contact,
	}
	s.customers[customer.ID] = customer
	s.customerOrder = append(s.customerOrder, customer.ID)
	s.nextCustomerID++

	s.logger.Info("customer added",
		zap.Int("customer_id", customer.ID),
		zap.String("name", customer.Name))

	return *customer
}

// RecordPurchase validates every line against the catalog and, only if all
// lines pass, decrements stock and appends a purchase record. On any error the
// store is left unchanged. The customer is checked first; for a known
// customer an empty line list records nothing and returns nil, nil.
func (s *StoreService) RecordPurchase(ctx context.Context, customerID int, lines []domain.LineItem) (*domain.Purchase, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	customer, ok := s.customers[customerID]
	if !ok {
		s.logger.Info("purchase rejected: unknown customer", zap.Int("customer_id", customerID))
		return nil, fmt.Errorf("customer %d: %w", customerID, ErrCustomerNotFound)
	}

	if len(lines) == 0 {
		s.logger.Info("purchase has no items, nothing recorded", zap.Int("customer_id", customerID))
		return nil, nil
	}

	if err := s.validateLinesLocked(lines); err != nil {
		s.logger.Info("purchase rejected",
			zap.Int("customer_id", customerID),
			zap.Error(err))
		return nil, err
	}

	// Commit. Repeated item ids keep their first position and the last quantity.
	recorded := make([]domain.PurchaseLine, 0, len(lines))
	position := make(map[int]int, len(lines))
	for _, line := range lines {
		item := s.items[line.ItemID]
		s.adjustStockLocked(item, -line.Quantity)

		committed := domain.PurchaseLine{
			ItemID:    line.ItemID,
			Quantity:  line.Quantity,
			UnitPrice: item.Price,
		}
		if i, seen := position[line.ItemID]; seen {
			recorded[i] = committed
			continue
		}
		position[line.ItemID] = len(recorded)
		recorded = append(recorded, committed)
	}

	purchase := domain.Purchase{
		ID:           s.nextPurchaseID,
		CustomerID:   customer.ID,
		CustomerName: customer.Name,
		Lines:        recorded,
		CreatedAt:    s.now(),
	}
	s.purchases = append(s.purchases, purchase)
	s.nextPurchaseID++

	s.logger.Info("purchase recorded",
		zap.Int("purchase_id", purchase.ID),
		zap.Int("customer_id", customer.ID),
		zap.Int("lines", len(purchase.Lines)))

	s.publishLocked(purchase)

	out := purchase.Clone()
	return &out, nil
}

// validateLinesLocked checks lines in input order. Quantities of a repeated
// item id are summed before comparing against stock.
func (s *StoreService) validateLinesLocked(lines []domain.LineItem) error {
	requested := make(map[int]int, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 {
			return fmt.Errorf("item %d: quantity %d: %w", line.ItemID, line.Quantity, ErrInvalidQuantity)
		}

		item, ok := s.items[line.ItemID]
		if !ok {
			return fmt.Errorf("item %d: %w", line.ItemID, ErrItemNotFound)
		}

		requested[line.ItemID] += line.Quantity
		if requested[line.ItemID] > item.Stock {
			return fmt.Errorf("item %d (%s): available %d, requested %d: %w",
				item.ID, item.Name, item.Stock, requested[line.ItemID], ErrInsufficientStock)
		}
	}
	return nil
}

func (s *StoreService) publishLocked(purchase domain.Purchase) {
	if s.receipts == nil {
		return
	}

	select {
	case s.receipts <- purchase.Clone():
	default:
		s.logger.Warn("receipt queue full, purchase not archived", zap.Int("purchase_id", purchase.ID))
	}
}

// Inventory returns all catalog entries in insertion order.
func (s *StoreService) Inventory() []domain.Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]domain.Item, 0, len(s.itemOrder))
	for _, id := range s.itemOrder {
		items = append(items, *s.items[id])
	}
	return items
}

func (s *StoreService) Customers() []domain.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()

	customers := make([]domain.Customer, 0, len(s.customerOrder))
	for _, id := range s.customerOrder {
		customers = append(customers, *s.customers[id])
	}
	return customers
}

// Purchases returns the purchase log in chronological order.
func (s *StoreService) Purchases() []domain.Purchase {
	s.mu.Lock()
	defer s.mu.Unlock()

	purchases := make([]domain.Purchase, 0, len(s.purchases))
	for _, p := range s.purchases {
		purchases = append(purchases, p.Clone())
	}
	return purchases
}

// Total computes the purchase total according to the store's pricing mode.
func (s *StoreService) Total(p domain.Purchase) decimal.Decimal {
	if s.pricing == PricingSnapshot {
		return p.Total(domain.SnapshotPrice)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return p.Total(func(line domain.PurchaseLine) (decimal.Decimal, bool) {
		item, ok := s.items[line.ItemID]
		if !ok {
			s.logger.Warn("item not found in inventory, left out of total",
				zap.Int("purchase_id", p.ID),
				zap.Int("item_id", line.ItemID))
			return decimal.Zero, false
		}
		return item.Price, true
	})
}

func (s *StoreService) PricingMode() PricingMode {
	return s.pricing
}

// Receipts returns the queue of committed purchases, or nil when disabled.
func (s *StoreService) Receipts() <-chan domain.Purchase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.receipts
}

// Close closes the receipt queue. Purchases recorded afterwards are not queued.
func (s *StoreService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.receipts != nil {
		close(s.receipts)
		s.receipts = nil
	}
}
