package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"stocktrail/internal/model"
)

// ItemPatch is a partial item update. Nil fields are left unchanged.
type ItemPatch struct {
	Name      *string
	Quantity  *int
	Location  *string
	SKU       *string
	SectionID *int64
}

// CreateItem creates an item together with its CREATE audit entry and
// initial ADD stock transaction, all in one database transaction. The
// ledger entries are written even when the initial quantity is zero.
func CreateItem(ctx context.Context, db *sql.DB, name string, quantity int, location, sku string, sectionID, organizationID, createdBy int64) (*model.Item, error) {
	if sku == "" {
		sku = fmt.Sprintf("SKU-%d", time.Now().UnixMilli())
	}
	if quantity < 0 {
		quantity = 0
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO items (name, quantity, location, sku, section_id, organization_id, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		name, quantity, location, sku, sectionID, organizationID, createdBy,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO audit_logs (item_id, action, quantity_change) VALUES (?, ?, ?)`,
		id, model.AuditActionCreate, quantity,
	); err != nil {
		return nil, fmt.Errorf("recording creation audit: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO stock_transactions (item_id, quantity, type) VALUES (?, ?, ?)`,
		id, quantity, model.TransactionTypeAdd,
	); err != nil {
		return nil, fmt.Errorf("recording initial stock: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing item creation: %w", err)
	}

	return GetItem(ctx, db, id)
}

// GetItem returns an item by ID.
func GetItem(ctx context.Context, db *sql.DB, id int64) (*model.Item, error) {
	item := &model.Item{}
	err := db.QueryRowContext(ctx,
		`SELECT id, name, quantity, location, sku, section_id, organization_id, created_by, created_at, updated_at
		 FROM items WHERE id = ?`, id,
	).Scan(&item.ID, &item.Name, &item.Quantity, &item.Location, &item.SKU,
		&item.SectionID, &item.OrganizationID, &item.CreatedBy, &item.CreatedAt, &item.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListSectionItems returns the items of a section ordered by name.
func ListSectionItems(ctx context.Context, db *sql.DB, sectionID int64) ([]model.Item, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, quantity, location, sku, section_id, organization_id, created_by, created_at, updated_at
		 FROM items WHERE section_id = ? ORDER BY name`, sectionID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing section items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		var item model.Item
		if err := rows.Scan(&item.ID, &item.Name, &item.Quantity, &item.Location, &item.SKU,
			&item.SectionID, &item.OrganizationID, &item.CreatedBy, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// UpdateItem applies a partial update to an item. When the patch changes
// the quantity, an ADJUST audit entry and a matching stock transaction are
// recorded in the same database transaction; an unchanged quantity or a
// patch without one produces no ledger entries. Returns nil if the item
// does not exist.
func UpdateItem(ctx context.Context, db *sql.DB, id int64, patch ItemPatch) (*model.Item, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var current int
	err = tx.QueryRowContext(ctx,
		`SELECT quantity FROM items WHERE id = ?`, id,
	).Scan(&current)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting current quantity: %w", err)
	}

	query := `UPDATE items SET updated_at = CURRENT_TIMESTAMP`
	var args []any
	if patch.Name != nil {
		query += `, name = ?`
		args = append(args, *patch.Name)
	}
	if patch.Quantity != nil {
		query += `, quantity = ?`
		args = append(args, *patch.Quantity)
	}
	if patch.Location != nil {
		query += `, location = ?`
		args = append(args, *patch.Location)
	}
	if patch.SKU != nil {
		query += `, sku = ?`
		args = append(args, *patch.SKU)
	}
	if patch.SectionID != nil {
		query += `, section_id = ?`
		args = append(args, *patch.SectionID)
	}
	query += ` WHERE id = ?`
	args = append(args, id)

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("updating item: %w", err)
	}

	if patch.Quantity != nil && *patch.Quantity != current {
		delta := *patch.Quantity - current

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO audit_logs (item_id, action, quantity_change) VALUES (?, ?, ?)`,
			id, model.AuditActionAdjust, delta,
		); err != nil {
			return nil, fmt.Errorf("recording adjustment audit: %w", err)
		}

		txnType := model.TransactionTypeAdd
		magnitude := delta
		if delta < 0 {
			txnType = model.TransactionTypeRemove
			magnitude = -delta
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO stock_transactions (item_id, quantity, type) VALUES (?, ?, ?)`,
			id, magnitude, txnType,
		); err != nil {
			return nil, fmt.Errorf("recording stock transaction: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing item update: %w", err)
	}

	return GetItem(ctx, db, id)
}

// DeleteItem removes an item, recording a terminal DELETE audit entry with
// the negated current quantity before the row is deleted. Returns false if
// the item does not exist.
func DeleteItem(ctx context.Context, db *sql.DB, id int64) (bool, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var quantity int
	err = tx.QueryRowContext(ctx,
		`SELECT quantity FROM items WHERE id = ?`, id,
	).Scan(&quantity)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("getting item quantity: %w", err)
	}

	// Audit entry first so its timestamp never postdates the removal.
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO audit_logs (item_id, action, quantity_change) VALUES (?, ?, ?)`,
		id, model.AuditActionDelete, -quantity,
	); err != nil {
		return false, fmt.Errorf("recording deletion audit: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id); err != nil {
		return false, fmt.Errorf("deleting item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing item deletion: %w", err)
	}
	return true, nil
}
