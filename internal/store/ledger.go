package store

import (
	"context"
	"database/sql"
	"fmt"

	"stocktrail/internal/model"
)

// ListItemAuditLogs returns the most recent audit entries for an item,
// newest first.
func ListItemAuditLogs(ctx context.Context, db *sql.DB, itemID int64, limit int) ([]model.AuditLog, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, item_id, action, quantity_change, timestamp
		 FROM audit_logs WHERE item_id = ?
		 ORDER BY timestamp DESC, id DESC LIMIT ?`, itemID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing audit logs: %w", err)
	}
	defer rows.Close()

	var logs []model.AuditLog
	for rows.Next() {
		var l model.AuditLog
		if err := rows.Scan(&l.ID, &l.ItemID, &l.Action, &l.QuantityChange, &l.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning audit log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// ListItemTransactions returns the most recent stock transactions for an
// item, newest first.
func ListItemTransactions(ctx context.Context, db *sql.DB, itemID int64, limit int) ([]model.StockTransaction, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, item_id, quantity, type, timestamp
		 FROM stock_transactions WHERE item_id = ?
		 ORDER BY timestamp DESC, id DESC LIMIT ?`, itemID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing stock transactions: %w", err)
	}
	defer rows.Close()

	var txns []model.StockTransaction
	for rows.Next() {
		var t model.StockTransaction
		if err := rows.Scan(&t.ID, &t.ItemID, &t.Quantity, &t.Type, &t.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning stock transaction: %w", err)
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}
