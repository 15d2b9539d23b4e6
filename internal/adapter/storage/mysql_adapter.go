package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rl1809/cloth-store/internal/core/domain"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS purchases (
		run_id        CHAR(36)     NOT NULL,
		id            BIGINT       NOT NULL,
		customer_id   BIGINT       NOT NULL,
		customer_name VARCHAR(255) NOT NULL,
		created_at    DATETIME(6)  NOT NULL,
		PRIMARY KEY (run_id, id)
	)`,
	`CREATE TABLE IF NOT EXISTS purchase_lines (
		run_id      CHAR(36)       NOT NULL,
		purchase_id BIGINT         NOT NULL,
		item_id     BIGINT         NOT NULL,
		quantity    INT            NOT NULL,
		unit_price  DECIMAL(12, 2) NOT NULL,
		PRIMARY KEY (run_id, purchase_id, item_id)
	)`,
}

// MySQLAdapter archives committed purchases. Purchase ids restart at 1 with
// every process, so rows are keyed by the run id of the store instance.
type MySQLAdapter struct {
	db    *sql.DB
	runID string
}

func NewMySQLAdapter(db *sql.DB, runID string) *MySQLAdapter {
	return &MySQLAdapter{db: db, runID: runID}
}

func (m *MySQLAdapter) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (m *MySQLAdapter) SavePurchase(ctx context.Context, purchase domain.Purchase) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO purchases (run_id, id, customer_id, customer_name, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		m.runID, purchase.ID, purchase.CustomerID, purchase.CustomerName, purchase.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert purchase: %w", err)
	}

	for _, line := range purchase.Lines {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO purchase_lines (run_id, purchase_id, item_id, quantity, unit_price)
			VALUES (?, ?, ?, ?, ?)`,
			m.runID, purchase.ID, line.ItemID, line.Quantity, line.UnitPrice,
		)
		if err != nil {
			return fmt.Errorf("insert purchase line: %w", err)
		}
	}

	return tx.Commit()
}
