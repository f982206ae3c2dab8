package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
//
// audit_logs and stock_transactions intentionally carry no foreign key to
// items: both are append-only ledgers and the terminal DELETE entry must
// survive the removal of the item it describes.
const schema = `
CREATE TABLE IF NOT EXISTS organizations (
    id         INTEGER PRIMARY KEY,
    name       TEXT NOT NULL,
    code       TEXT NOT NULL UNIQUE,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS users (
    id              INTEGER PRIMARY KEY,
    email           TEXT NOT NULL UNIQUE,
    name            TEXT NOT NULL,
    password_hash   TEXT NOT NULL,
    organization_id INTEGER REFERENCES organizations(id),
    created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS sections (
    id              INTEGER PRIMARY KEY,
    name            TEXT NOT NULL,
    description     TEXT,
    parent_id       INTEGER REFERENCES sections(id) ON DELETE CASCADE,
    organization_id INTEGER NOT NULL REFERENCES organizations(id),
    created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_sections_parent ON sections(parent_id);
CREATE INDEX IF NOT EXISTS idx_sections_organization ON sections(organization_id);

CREATE TABLE IF NOT EXISTS items (
    id              INTEGER PRIMARY KEY,
    name            TEXT NOT NULL,
    quantity        INTEGER NOT NULL DEFAULT 0,
    location        TEXT NOT NULL DEFAULT '',
    sku             TEXT NOT NULL,
    section_id      INTEGER NOT NULL REFERENCES sections(id) ON DELETE CASCADE,
    organization_id INTEGER NOT NULL REFERENCES organizations(id),
    created_by      INTEGER NOT NULL REFERENCES users(id),
    created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_items_section ON items(section_id);

CREATE TABLE IF NOT EXISTS audit_logs (
    id              INTEGER PRIMARY KEY,
    item_id         INTEGER NOT NULL,
    action          TEXT NOT NULL CHECK (action IN ('CREATE', 'ADJUST', 'DELETE')),
    quantity_change INTEGER NOT NULL,
    timestamp       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_audit_logs_item ON audit_logs(item_id);

CREATE TABLE IF NOT EXISTS stock_transactions (
    id        INTEGER PRIMARY KEY,
    item_id   INTEGER NOT NULL,
    quantity  INTEGER NOT NULL CHECK (quantity >= 0),
    type      TEXT NOT NULL CHECK (type IN ('ADD', 'REMOVE')),
    timestamp DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_stock_transactions_item ON stock_transactions(item_id);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
