package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

var _ Store = (*Repo)(nil)
var _ Queue = (*Repo)(nil)

// PlaceOrder runs the whole placement as one transaction: resolve the
// customer, create the pending order, then per item (in caller order) read
// the catalog row, decrement stock conditionally and snapshot the unit price.
// The conditional UPDATE is the sole arbiter under concurrency: if another
// placement already took the stock, zero rows are affected and everything
// rolls back.
func (r *Repo) PlaceOrder(ctx context.Context, p Principal, items []ItemInput) (*PlacedOrder, error) {
	if !p.Authenticated() {
		return nil, ErrUnauthenticated
	}
	if len(items) == 0 {
		return nil, ErrInvalidQuantity
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var customerID string
	err = tx.QueryRow(ctx, `SELECT id FROM customers WHERE principal_id=$1`, p.ID).Scan(&customerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCustomerNotFound
	} else if err != nil {
		return nil, err
	}

	for _, it := range items {
		if it.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
	}

	orderID := uuid.NewString()
	if _, err := tx.Exec(ctx, `
		INSERT INTO orders(id, customer_id, status, total_cents)
		VALUES ($1, $2, 'pending', 0)
	`, orderID, customerID); err != nil {
		return nil, err
	}

	for pos, it := range items {
		var price int
		var active bool
		err := tx.QueryRow(ctx,
			`SELECT price_cents, active FROM products WHERE id=$1`, it.ProductID,
		).Scan(&price, &active)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductUnavailable
		} else if err != nil {
			return nil, err
		}
		if !active {
			return nil, ErrProductUnavailable
		}

		ct, err := tx.Exec(ctx, `
			UPDATE products SET stock = stock - $2, updated_at = now()
			WHERE id = $1 AND stock >= $2
		`, it.ProductID, it.Quantity)
		if err != nil {
			return nil, err
		}
		if ct.RowsAffected() == 0 {
			return nil, ErrInsufficientStock
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items(id, order_id, product_id, position, quantity, unit_price_cents)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, uuid.NewString(), orderID, it.ProductID, pos, it.Quantity, price); err != nil {
			return nil, err
		}
	}

	total, err := recomputeTotal(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &PlacedOrder{OrderID: orderID, CustomerID: customerID, TotalCents: total, Items: items}, nil
}

// recomputeTotal is the post-mutation hook for line-item changes: it rewrites
// the stored total from the current items inside the caller's transaction, so
// no reader ever observes an order inconsistent with its lines. Idempotent.
func recomputeTotal(ctx context.Context, tx pgx.Tx, orderID string) (int, error) {
	var total int
	err := tx.QueryRow(ctx, `
		UPDATE orders
		SET total_cents = COALESCE(
			(SELECT SUM(quantity * unit_price_cents) FROM order_items WHERE order_id = $1), 0),
		    updated_at = now()
		WHERE id = $1
		RETURNING total_cents
	`, orderID).Scan(&total)
	return total, err
}

func (r *Repo) GetOrder(ctx context.Context, orderID string) (*Order, string, error) {
	var o Order
	var owner string
	err := r.DB.QueryRow(ctx, `
		SELECT o.id, o.customer_id, o.status, o.total_cents, o.placed_at, o.updated_at, c.principal_id
		FROM orders o JOIN customers c ON c.id = o.customer_id
		WHERE o.id = $1
	`, orderID).Scan(&o.ID, &o.CustomerID, &o.Status, &o.TotalCents, &o.PlacedAt, &o.UpdatedAt, &owner)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, "", ErrOrderNotFound
	} else if err != nil {
		return nil, "", err
	}
	return &o, owner, nil
}

// ComputeTotal is the recompute-on-read variant used for verification. It
// must always match the stored total maintained by recomputeTotal.
func (r *Repo) ComputeTotal(ctx context.Context, p Principal, orderID string) (int, error) {
	owner, err := r.ownerPrincipal(ctx, orderID)
	if err != nil {
		return 0, err
	}
	if !CanReadOrder(p, owner) {
		return 0, ErrOrderNotFound
	}
	var total int
	err = r.DB.QueryRow(ctx, `
		SELECT COALESCE(SUM(quantity * unit_price_cents), 0)
		FROM order_items WHERE order_id = $1
	`, orderID).Scan(&total)
	return total, err
}

func (r *Repo) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, sku, name, description, price_cents, currency, stock, active, created_at, updated_at
		FROM products WHERE active ORDER BY sku
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.Description, &p.PriceCents,
			&p.Currency, &p.Stock, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) ownerPrincipal(ctx context.Context, orderID string) (string, error) {
	var owner string
	err := r.DB.QueryRow(ctx, `
		SELECT c.principal_id
		FROM orders o JOIN customers c ON c.id = o.customer_id
		WHERE o.id = $1
	`, orderID).Scan(&owner)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrOrderNotFound
	}
	return owner, err
}
