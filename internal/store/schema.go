package store

import (
	"context"
	"fmt"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS customers (
		id         BIGSERIAL PRIMARY KEY,
		name       VARCHAR(255) NOT NULL,
		email      VARCHAR(255) NOT NULL UNIQUE,
		password   VARCHAR(255) NOT NULL,
		address    VARCHAR(255) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS service_requests (
		id          BIGSERIAL PRIMARY KEY,
		customer_id BIGINT NOT NULL REFERENCES customers (id) ON UPDATE CASCADE ON DELETE CASCADE,
		total_cost  NUMERIC(12,2) NOT NULL DEFAULT 0,
		kind        VARCHAR(16) NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT check_service_kind CHECK (kind IN ('sale', 'repair'))
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id             BIGSERIAL PRIMARY KEY,
		name           VARCHAR(255) NOT NULL,
		description    VARCHAR(255) NOT NULL,
		price          NUMERIC(12,2) NOT NULL,
		stock_quantity INTEGER NOT NULL DEFAULT 0,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT check_positive_price CHECK (price >= 0),
		CONSTRAINT check_stock_positive CHECK (stock_quantity >= 0)
	)`,
	`CREATE TABLE IF NOT EXISTS product_variants (
		id             BIGSERIAL PRIMARY KEY,
		product_id     BIGINT NOT NULL REFERENCES products (id) ON UPDATE CASCADE ON DELETE CASCADE,
		size           VARCHAR(32) NOT NULL,
		color          VARCHAR(32) NOT NULL,
		stock_quantity INTEGER NOT NULL DEFAULT 0,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT check_variant_stock_positive CHECK (stock_quantity >= 0)
	)`,
	`CREATE TABLE IF NOT EXISTS repairs (
		id            BIGSERIAL PRIMARY KEY,
		service_id    BIGINT NOT NULL REFERENCES service_requests (id) ON UPDATE CASCADE ON DELETE CASCADE,
		description   VARCHAR(255) NOT NULL,
		status        VARCHAR(16) NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		start_date    TIMESTAMPTZ,
		finished_date TIMESTAMPTZ,
		CONSTRAINT check_repair_status CHECK (status IN ('pending', 'in_progress', 'completed'))
	)`,
	`CREATE TABLE IF NOT EXISTS item_requests (
		id                 BIGSERIAL PRIMARY KEY,
		service_id         BIGINT NOT NULL REFERENCES service_requests (id) ON UPDATE CASCADE ON DELETE CASCADE,
		product_variant_id BIGINT NOT NULL REFERENCES product_variants (id) ON UPDATE CASCADE ON DELETE CASCADE,
		quantity           INTEGER NOT NULL,
		unit_price         NUMERIC(12,2) NOT NULL,
		created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT unique_request_variant UNIQUE (service_id, product_variant_id),
		CONSTRAINT check_positive_quantity CHECK (quantity > 0),
		CONSTRAINT check_positive_unit_price CHECK (unit_price >= 0)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_service_requests_customer ON service_requests (customer_id)`,
	`CREATE INDEX IF NOT EXISTS idx_product_variants_product ON product_variants (product_id)`,
	`CREATE INDEX IF NOT EXISTS idx_repairs_service ON repairs (service_id)`,
	`CREATE INDEX IF NOT EXISTS idx_item_requests_variant ON item_requests (product_variant_id)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS customers (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		name       TEXT NOT NULL,
		email      TEXT NOT NULL UNIQUE,
		password   TEXT NOT NULL,
		address    TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS service_requests (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		customer_id INTEGER NOT NULL REFERENCES customers (id) ON UPDATE CASCADE ON DELETE CASCADE,
		total_cost  NUMERIC NOT NULL DEFAULT 0,
		kind        TEXT NOT NULL CHECK (kind IN ('sale', 'repair')),
		created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		name           TEXT NOT NULL,
		description    TEXT NOT NULL,
		price          NUMERIC NOT NULL CHECK (price >= 0),
		stock_quantity INTEGER NOT NULL DEFAULT 0 CHECK (stock_quantity >= 0),
		created_at     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS product_variants (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		product_id     INTEGER NOT NULL REFERENCES products (id) ON UPDATE CASCADE ON DELETE CASCADE,
		size           TEXT NOT NULL,
		color          TEXT NOT NULL,
		stock_quantity INTEGER NOT NULL DEFAULT 0 CHECK (stock_quantity >= 0),
		created_at     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS repairs (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		service_id    INTEGER NOT NULL REFERENCES service_requests (id) ON UPDATE CASCADE ON DELETE CASCADE,
		description   TEXT NOT NULL,
		status        TEXT NOT NULL CHECK (status IN ('pending', 'in_progress', 'completed')),
		created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		start_date    TIMESTAMP,
		finished_date TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS item_requests (
		id                 INTEGER PRIMARY KEY AUTOINCREMENT,
		service_id         INTEGER NOT NULL REFERENCES service_requests (id) ON UPDATE CASCADE ON DELETE CASCADE,
		product_variant_id INTEGER NOT NULL REFERENCES product_variants (id) ON UPDATE CASCADE ON DELETE CASCADE,
		quantity           INTEGER NOT NULL CHECK (quantity > 0),
		unit_price         NUMERIC NOT NULL CHECK (unit_price >= 0),
		created_at         TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (service_id, product_variant_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_service_requests_customer ON service_requests (customer_id)`,
	`CREATE INDEX IF NOT EXISTS idx_product_variants_product ON product_variants (product_id)`,
	`CREATE INDEX IF NOT EXISTS idx_repairs_service ON repairs (service_id)`,
	`CREATE INDEX IF NOT EXISTS idx_item_requests_variant ON item_requests (product_variant_id)`,
}

// Migrate creates the shop tables for the gateway's dialect. It is idempotent.
func Migrate(ctx context.Context, g Gateway) error {
	stmts := postgresSchema
	if g.Dialect() == SQLite {
		stmts = sqliteSchema
	}
	return g.InTx(ctx, func(q Querier) error {
		for i, s := range stmts {
			if _, err := q.Exec(ctx, s); err != nil {
				return fmt.Errorf("apply schema statement %d: %w", i, err)
			}
		}
		return nil
	})
}
