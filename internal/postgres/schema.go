package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is applied statement by statement at startup; every statement is
// written to be safe to re-run.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id           UUID PRIMARY KEY,
		sku          TEXT NOT NULL UNIQUE,
		name         TEXT NOT NULL,
		description  TEXT NOT NULL DEFAULT '',
		price_cents  INT  NOT NULL CHECK (price_cents >= 0),
		currency     TEXT NOT NULL DEFAULT 'USD',
		stock        INT  NOT NULL CHECK (stock >= 0),
		active       BOOLEAN NOT NULL DEFAULT TRUE,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS customers (
		id           UUID PRIMARY KEY,
		principal_id TEXT NOT NULL UNIQUE,
		name         TEXT NOT NULL,
		email        TEXT NOT NULL UNIQUE,
		phone        TEXT,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id          UUID PRIMARY KEY,
		customer_id UUID NOT NULL REFERENCES customers(id),
		status      TEXT NOT NULL DEFAULT 'pending',
		total_cents INT  NOT NULL DEFAULT 0 CHECK (total_cents >= 0),
		placed_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id               UUID PRIMARY KEY,
		order_id         UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		product_id       UUID NOT NULL REFERENCES products(id) ON DELETE RESTRICT,
		position         INT  NOT NULL,
		quantity         INT  NOT NULL CHECK (quantity > 0),
		unit_price_cents INT  NOT NULL CHECK (unit_price_cents >= 0)
	)`,
	`CREATE INDEX IF NOT EXISTS order_items_order_idx ON order_items(order_id)`,
	`CREATE TABLE IF NOT EXISTS notification_jobs (
		id           UUID PRIMARY KEY,
		order_id     UUID NOT NULL REFERENCES orders(id),
		recipient    TEXT NOT NULL,
		payload      JSONB NOT NULL,
		status       TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending','sent','error')),
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		processed_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS notification_jobs_pending_idx
		ON notification_jobs(created_at) WHERE status = 'pending'`,
}

func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for i, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i, err)
		}
	}
	return nil
}
