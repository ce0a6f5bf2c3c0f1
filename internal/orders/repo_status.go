package orders

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SetStatus performs the guarded transition under a row lock. Authorization
// runs here, inside the elevated operation, never via ambient row filtering:
// owners may only cancel a pending order; privileged callers may walk any
// graph edge. The payment-notification enqueue is part of the same
// transaction, so a rolled-back transition leaves no job behind.
func (r *Repo) SetStatus(ctx context.Context, p Principal, orderID string, next Status) (*StatusChange, error) {
	if !p.Authenticated() {
		return nil, ErrUnauthenticated
	}
	if !ValidStatus(next) {
		return nil, ErrInvalidTransition
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var cur Status
	var total int
	var owner, custName, custEmail string
	err = tx.QueryRow(ctx, `
		SELECT o.status, o.total_cents, c.principal_id, c.name, c.email
		FROM orders o JOIN customers c ON c.id = o.customer_id
		WHERE o.id = $1
		FOR UPDATE OF o
	`, orderID).Scan(&cur, &total, &owner, &custName, &custEmail)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	} else if err != nil {
		return nil, err
	}

	if !p.Privileged {
		if p.ID != owner {
			return nil, ErrForbidden
		}
		if !CustomerMayRequest(cur, next) {
			return nil, ErrForbidden
		}
	} else if !CanTransition(cur, next) {
		return nil, ErrInvalidTransition
	}

	if _, err := tx.Exec(ctx, `
		UPDATE orders SET status = $2, updated_at = now() WHERE id = $1
	`, orderID, next); err != nil {
		return nil, err
	}

	sc := &StatusChange{OrderID: orderID, From: cur, To: next, TotalCents: total}
	if ShouldNotify(cur, next) {
		payload, err := json.Marshal(NotificationPayload{
			OrderID:      orderID,
			CustomerName: custName,
			TotalCents:   total,
		})
		if err != nil {
			return nil, err
		}
		jobID := uuid.NewString()
		if _, err := tx.Exec(ctx, `
			INSERT INTO notification_jobs(id, order_id, recipient, payload, status)
			VALUES ($1, $2, $3, $4, 'pending')
		`, jobID, orderID, custEmail, payload); err != nil {
			return nil, err
		}
		sc.Enqueued = true
		sc.JobID = jobID
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return sc, nil
}
