package storage

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rl1809/cloth-store/internal/core/domain"
)

func getMySQLDB(t *testing.T) *sql.DB {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(localhost:3306)/clothstore?parseTime=true"
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	return db
}

func TestSavePurchase_Success(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	runID := uuid.NewString()
	adapter := NewMySQLAdapter(db, runID)

	if err := adapter.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema failed: %v", err)
	}

	purchase := domain.Purchase{
		ID:           1,
		CustomerID:   1,
		CustomerName: "Alice Smith",
		Lines: []domain.PurchaseLine{
			{ItemID: 1, Quantity: 10, UnitPrice: decimal.RequireFromString("599.99")},
			{ItemID: 2, Quantity: 1, UnitPrice: decimal.RequireFromString("1299.00")},
		},
		CreatedAt: time.Now(),
	}

	if err := adapter.SavePurchase(ctx, purchase); err != nil {
		t.Fatalf("SavePurchase failed: %v", err)
	}

	// Verify purchase row
	var name string
	db.QueryRowContext(ctx, `SELECT customer_name FROM purchases WHERE run_id = ? AND id = 1`, runID).Scan(&name)
	if name != "Alice Smith" {
		t.Errorf("expected customer Alice Smith, got %q", name)
	}

	// Verify lines
	var total decimal.Decimal
	db.QueryRowContext(ctx, `
		SELECT SUM(quantity * unit_price) FROM purchase_lines WHERE run_id = ? AND purchase_id = 1`,
		runID).Scan(&total)
	if total.StringFixed(2) != "7298.90" {
		t.Errorf("expected archived total 7298.90, got %s", total.StringFixed(2))
	}

	// Cleanup
	db.ExecContext(ctx, `DELETE FROM purchase_lines WHERE run_id = ?`, runID)
	db.ExecContext(ctx, `DELETE FROM purchases WHERE run_id = ?`, runID)
}

func TestSavePurchase_DuplicateRollsBack(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	runID := uuid.NewString()
	adapter := NewMySQLAdapter(db, runID)

	if err := adapter.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema failed: %v", err)
	}

	purchase := domain.Purchase{
		ID:           7,
		CustomerID:   2,
		CustomerName: "Bob Johnson",
		Lines:        []domain.PurchaseLine{{ItemID: 3, Quantity: 1, UnitPrice: decimal.RequireFromString("1999.50")}},
		CreatedAt:    time.Now(),
	}

	if err := adapter.SavePurchase(ctx, purchase); err != nil {
		t.Fatalf("first SavePurchase failed: %v", err)
	}

	purchase.Lines = append(purchase.Lines, domain.PurchaseLine{ItemID: 4, Quantity: 1, UnitPrice: decimal.NewFromInt(799)})
	if err := adapter.SavePurchase(ctx, purchase); err == nil {
		t.Error("expected error for duplicate purchase")
	}

	// The second line must not have been written
	var count int
	db.QueryRowContext(ctx, `SELECT COUNT(*) FROM purchase_lines WHERE run_id = ? AND purchase_id = 7`, runID).Scan(&count)
	if count != 1 {
		t.Errorf("expected 1 line, got %d", count)
	}

	db.ExecContext(ctx, `DELETE FROM purchase_lines WHERE run_id = ?`, runID)
	db.ExecContext(ctx, `DELETE FROM purchases WHERE run_id = ?`, runID)
}
