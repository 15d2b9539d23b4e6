package domain

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is one requested (item, quantity) pair of a purchase.
type LineItem struct {
	ItemID   int
	Quantity int
}

// PurchaseLine is a committed line of a purchase record.
type PurchaseLine struct {
	ItemID    int
	Quantity  int
	UnitPrice decimal.Decimal // catalog price at commit time
}

type Purchase struct {
	ID           int
	CustomerID   int
	CustomerName string
	Lines        []PurchaseLine
	CreatedAt    time.Time
}

// PriceFunc resolves the unit price of a line. ok is false when no price is known.
type PriceFunc func(line PurchaseLine) (price decimal.Decimal, ok bool)

// SnapshotPrice prices a line with the unit price captured at commit time.
func SnapshotPrice(line PurchaseLine) (decimal.Decimal, bool) {
	return line.UnitPrice, true
}

// Total sums price * quantity over all lines. Lines without a price are skipped.
func (p Purchase) Total(price PriceFunc) decimal.Decimal {
	total := decimal.Zero
	for _, line := range p.Lines {
		unit, ok := price(line)
		if !ok {
			continue
		}
		total = total.Add(unit.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}

// Quantity returns the recorded quantity for itemID, or 0.
func (p Purchase) Quantity(itemID int) int {
	for _, line := range p.Lines {
		if line.ItemID == itemID {
			return line.Quantity
		}
	}
	return 0
}

func (p Purchase) Clone() Purchase {
	p.Lines = slices.Clone(p.Lines)
	return p
}
